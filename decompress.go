package v2f

import (
	"bufio"
	"bytes"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/sample"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Decompress reads envelopes from compressed, inverts c's forest decoder,
// decorrelator, and quantizer one block at a time, and writes raw packed
// samples to out. It stops cleanly on a clean end of the compressed stream.
func Decompress(compressed io.Reader, out io.Writer, c *Codec) error {
	const op = "v2f.Decompress"
	bw := bufio.NewWriter(out)
	sw, err := sample.NewWriter(bw, sample.Width(c.Forest.BytesPerSample))
	if err != nil {
		return err
	}
	decoder := c.Forest.NewDecoder()
	for {
		payload, sampleCount, err := ReadEnvelope(compressed, c.Forest.BytesPerWord)
		if err != nil {
			if verr.Is(err, verr.KindUnexpectedEOF) {
				if err := bw.Flush(); err != nil {
					return verr.Wrap(op, verr.KindIO, err)
				}
				return nil
			}
			return err
		}
		samples, err := decoder.DecodeBlock(bytes.NewReader(payload), len(payload), sampleCount)
		if err != nil {
			return err
		}
		if err := c.Decorrelator.Invert(samples); err != nil {
			return err
		}
		c.Quantizer.Dequantize(samples)
		if err := sw.Write(samples); err != nil {
			return err
		}
	}
}
