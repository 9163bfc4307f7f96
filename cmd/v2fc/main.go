// v2fc is a tool which compresses a raw packed sample stream into a v2f
// compressed stream, given a codec header file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gici-uab/v2f-codec-sub000"
	"github.com/gici-uab/v2f-codec-sub000/decorr"
	"github.com/gici-uab/v2f-codec-sub000/quant"
	"github.com/mewkiz/pkg/osutil"
	"github.com/pkg/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	fs := flag.NewFlagSet("v2fc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		force         bool
		quantMode     string
		step          int
		decorrMode    string
		samplesPerRow int
		shadowRanges  string
		timingPath    string
	)
	fs.BoolVar(&force, "f", false, "force overwrite of an existing output file")
	fs.StringVar(&quantMode, "q", "", "override quantizer mode (none, uniform)")
	fs.IntVar(&step, "s", 0, "override quantizer step size")
	fs.StringVar(&decorrMode, "d", "", "override decorrelator mode (none, left, 2-left, jpeg-ls, fgij)")
	fs.IntVar(&samplesPerRow, "w", 0, "override samples per row")
	fs.StringVar(&shadowRanges, "y", "", "comma-separated shadow row ranges, e.g. 0:15,100:115")
	fs.StringVar(&timingPath, "t", "", "write elapsed compression time to this path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 64
		}
		return 1
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(stderr, "usage: v2fc [flags] raw-path header-path compressed-path")
		return 64
	}
	rawPath, headerPath, compressedPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	if err := compress(rawPath, headerPath, compressedPath, force, quantMode, step, decorrMode, samplesPerRow, shadowRanges, timingPath); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func compress(rawPath, headerPath, compressedPath string, force bool, quantMode string, step int, decorrMode string, samplesPerRow int, shadowRanges, timingPath string) error {
	if !force && osutil.Exists(compressedPath) {
		return errors.Errorf("compressed file %q already present; use -f flag to force overwrite", compressedPath)
	}

	c, err := v2f.Open(headerPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer c.Close()

	var o v2f.Overrides
	if quantMode != "" {
		m, err := quant.ParseMode(quantMode)
		if err != nil {
			return errors.WithStack(err)
		}
		o.QuantizerMode = &m
	}
	if step != 0 {
		o.StepSize = &step
	}
	if decorrMode != "" {
		m, err := decorr.ParseMode(decorrMode)
		if err != nil {
			return errors.WithStack(err)
		}
		o.DecorrelatorMode = &m
	}
	if samplesPerRow != 0 {
		o.SamplesPerRow = &samplesPerRow
	}
	if err := c.Apply(o); err != nil {
		return errors.WithStack(err)
	}
	if shadowRanges != "" {
		ranges, err := v2f.ParseShadowRanges(shadowRanges)
		if err != nil {
			return errors.WithStack(err)
		}
		c.ShadowRanges = ranges
	}

	raw, err := os.Open(rawPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer raw.Close()

	out, err := os.Create(compressedPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	start := time.Now()
	if err := v2f.Compress(raw, out, c); err != nil {
		return errors.WithStack(err)
	}
	if timingPath != "" {
		elapsed := time.Since(start)
		if err := os.WriteFile(timingPath, []byte(elapsed.String()+"\n"), 0o644); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
