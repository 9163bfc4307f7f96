package v2f

import (
	"bytes"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/sample"
	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Compress reads raw packed samples from raw, runs them through c's
// quantizer, decorrelator, and forest coder one block at a time, and writes
// the resulting envelopes to out. It stops cleanly when raw ends on a
// sample boundary.
func Compress(raw io.Reader, out io.Writer, c *Codec) error {
	const op = "v2f.Compress"
	sr, err := sample.NewReader(raw, sample.Width(c.Forest.BytesPerSample))
	if err != nil {
		return err
	}
	coder := c.Forest.NewCoder()
	buf := make([]int, MaxBlockSize)
	for {
		n, rerr := sr.Read(buf)
		if rerr != nil && !verr.Is(rerr, verr.KindUnexpectedEOF) {
			return rerr
		}
		if n > 0 {
			block := append([]int(nil), buf[:n]...)
			c.Quantizer.Quantize(block)
			if err := c.Decorrelator.Apply(block); err != nil {
				return err
			}
			var payload bytes.Buffer
			if err := coder.EncodeBlock(block, &payload); err != nil {
				return err
			}
			if err := WriteEnvelope(out, payload.Bytes(), n, c.Forest.BytesPerWord); err != nil {
				return err
			}
		}
		if rerr != nil {
			return nil
		}
	}
}
