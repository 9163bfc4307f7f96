// Package sample implements the big-endian packed sample transcoding that
// forms the boundary between the codec core and raw raster streams.
package sample

import (
	"io"

	"github.com/icza/bitio"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Width is the on-wire size of a sample, in bytes.
type Width int

// Supported sample widths.
const (
	Width1 Width = 1
	Width2 Width = 2
)

// Valid reports whether w is a supported width.
func (w Width) Valid() bool {
	return w == Width1 || w == Width2
}

// Reader reads packed big-endian unsigned samples from an underlying byte
// stream.
type Reader struct {
	br    *bitio.Reader
	width Width
}

// NewReader returns a Reader that reads samples of the given width from r.
func NewReader(r io.Reader, width Width) (*Reader, error) {
	const op = "sample.NewReader"
	if !width.Valid() {
		return nil, verr.New(op, verr.KindInvalidParameter, "unsupported sample width %d", width)
	}
	return &Reader{br: bitio.NewReader(r), width: width}, nil
}

// Read fills buf with up to len(buf) samples and returns the number actually
// read.
//
// If the stream ends exactly on a sample boundary before buf is full, Read
// returns the samples read so far and a *verr.Error of KindUnexpectedEOF. If
// the stream ends in the middle of a sample, Read returns a *verr.Error of
// KindCorruptedData. Any other read failure is reported as KindIO.
func (r *Reader) Read(buf []int) (n int, err error) {
	const op = "sample.Reader.Read"
	for n = 0; n < len(buf); n++ {
		var v int
		for b := 0; b < int(r.width); b++ {
			c, rerr := r.br.ReadByte()
			if rerr != nil {
				if rerr == io.EOF {
					if b == 0 {
						return n, verr.New(op, verr.KindUnexpectedEOF, "clean end of stream after %d samples", n)
					}
					return n, verr.New(op, verr.KindCorruptedData, "stream ended mid-sample at byte %d of a %d-byte sample", b, r.width)
				}
				return n, verr.Wrap(op, verr.KindIO, rerr)
			}
			v = v<<8 | int(c)
		}
		buf[n] = v
	}
	return n, nil
}

// Writer writes packed big-endian unsigned samples to an underlying byte
// stream.
type Writer struct {
	bw    *bitio.Writer
	width Width
}

// NewWriter returns a Writer that writes samples of the given width to w.
func NewWriter(w io.Writer, width Width) (*Writer, error) {
	const op = "sample.NewWriter"
	if !width.Valid() {
		return nil, verr.New(op, verr.KindInvalidParameter, "unsupported sample width %d", width)
	}
	return &Writer{bw: bitio.NewWriter(w), width: width}, nil
}

// Write writes every sample in buf at full width.
func (w *Writer) Write(buf []int) error {
	const op = "sample.Writer.Write"
	for _, v := range buf {
		for shift := (int(w.width) - 1) * 8; shift >= 0; shift -= 8 {
			if err := w.bw.WriteByte(byte(v >> shift)); err != nil {
				return verr.Wrap(op, verr.KindIO, err)
			}
		}
	}
	return nil
}
