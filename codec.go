package v2f

import (
	"os"
	"strconv"
	"strings"

	"github.com/gici-uab/v2f-codec-sub000/decorr"
	"github.com/gici-uab/v2f-codec-sub000/forest"
	"github.com/gici-uab/v2f-codec-sub000/quant"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// ShadowRange is a caller-flagged range of raster rows, passed through the
// CLI and carried on a Codec for a downstream hook outside this module's
// scope; the core itself never reads or writes shadow ranges.
type ShadowRange struct {
	Start, End int
}

// ParseShadowRanges parses the -y flag's comma-separated "start:end" list,
// validating non-overlap, non-decreasing order, and an even row-count span
// per range. An empty string yields a nil, nil result.
func ParseShadowRanges(s string) ([]ShadowRange, error) {
	const op = "v2f.ParseShadowRanges"
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ranges := make([]ShadowRange, 0, len(parts))
	prevEnd := -1
	for _, p := range parts {
		kv := strings.SplitN(p, ":", 2)
		if len(kv) != 2 {
			return nil, verr.New(op, verr.KindInvalidParameter, "malformed shadow range %q; want start:end", p)
		}
		start, err := strconv.Atoi(kv[0])
		if err != nil {
			return nil, verr.New(op, verr.KindInvalidParameter, "malformed shadow range start %q", kv[0])
		}
		end, err := strconv.Atoi(kv[1])
		if err != nil {
			return nil, verr.New(op, verr.KindInvalidParameter, "malformed shadow range end %q", kv[1])
		}
		if start < 0 || end < start {
			return nil, verr.New(op, verr.KindInvalidParameter, "shadow range %d:%d is not a valid non-decreasing span", start, end)
		}
		if (end-start+1)%2 != 0 {
			return nil, verr.New(op, verr.KindInvalidParameter, "shadow range %d:%d spans an odd number of rows", start, end)
		}
		if start <= prevEnd {
			return nil, verr.New(op, verr.KindInvalidParameter, "shadow range %d:%d overlaps or precedes the previous range (end %d)", start, end, prevEnd)
		}
		ranges = append(ranges, ShadowRange{Start: start, End: end})
		prevEnd = end
	}
	return ranges, nil
}

// Codec bundles the three coding stages that a compress/decompress call
// needs. It owns no goroutines; concurrent use from two goroutines is
// undefined, matching the teacher's Encoder/Decoder.
type Codec struct {
	Quantizer    *quant.Quantizer
	Decorrelator *decorr.Decorrelator
	Forest       *forest.Forest
	ShadowRanges []ShadowRange

	file *os.File // non-nil only when the codec owns the header file handle (Open)
}

// Open reads a codec descriptor from the header file at path and returns a
// ready Codec. Close releases the underlying file handle.
func Open(path string) (*Codec, error) {
	const op = "v2f.Open"
	f, err := os.Open(path)
	if err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	d, err := ReadDescriptor(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c, err := NewCodec(d, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.file = f
	return c, nil
}

// NewCodec builds a Codec from an already-parsed descriptor, with an
// initial decorrelator samples_per_row (0 unless the caller overrides it).
func NewCodec(d *Descriptor, samplesPerRow int) (*Codec, error) {
	const op = "v2f.NewCodec"
	if d.Forest == nil {
		return nil, verr.New(op, verr.KindInvalidParameter, "descriptor carries no forest")
	}
	q, err := quant.New(d.QuantizerMode, d.QuantizerStepSize, d.MaxSampleValue)
	if err != nil {
		return nil, err
	}
	dec, err := decorr.New(d.DecorrelatorMode, d.MaxSampleValue, samplesPerRow)
	if err != nil {
		return nil, err
	}
	return &Codec{Quantizer: q, Decorrelator: dec, Forest: d.Forest}, nil
}

// Overrides holds the caller-supplied per-run overrides of §6.4: any nil
// field leaves the corresponding Codec stage unchanged.
type Overrides struct {
	QuantizerMode    *quant.Mode
	StepSize         *int
	DecorrelatorMode *decorr.Mode
	SamplesPerRow    *int
}

// Apply rebuilds the quantizer and/or decorrelator stage with o's non-nil
// fields, leaving MaxSampleValue untouched.
func (c *Codec) Apply(o Overrides) error {
	qMode, step := c.Quantizer.Mode, c.Quantizer.StepSize
	if o.QuantizerMode != nil {
		qMode = *o.QuantizerMode
	}
	if o.StepSize != nil {
		step = *o.StepSize
	}
	q, err := quant.New(qMode, step, c.Quantizer.MaxSampleValue)
	if err != nil {
		return err
	}

	dMode, spr := c.Decorrelator.Mode, c.Decorrelator.SamplesPerRow
	if o.DecorrelatorMode != nil {
		dMode = *o.DecorrelatorMode
	}
	if o.SamplesPerRow != nil {
		spr = *o.SamplesPerRow
	}
	dec, err := decorr.New(dMode, c.Decorrelator.MaxSampleValue, spr)
	if err != nil {
		return err
	}

	c.Quantizer = q
	c.Decorrelator = dec
	return nil
}

// Close releases the header file handle opened by Open. Close is a no-op
// for a Codec built with NewCodec.
func (c *Codec) Close() error {
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}
