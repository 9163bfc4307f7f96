package forest

import (
	"io"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Decoder consumes fixed-size codewords and produces the decoded symbol
// sequence, walking the same Forest a Coder encoded against. A Decoder is
// reset to root 0 at the start of every block.
type Decoder struct {
	f       *Forest
	rootIdx int
}

// NewDecoder returns a Decoder over f.
func (f *Forest) NewDecoder() *Decoder {
	return &Decoder{f: f}
}

// Reset returns the cursor to root 0, ready for a new block.
func (d *Decoder) Reset() {
	d.rootIdx = 0
}

// DecodeBlock reads compressedBytes bytes of codewords from r (a multiple
// of bytes_per_word) and returns the decoded samples, stopping early once
// maxSamples have been produced. A block is complete when either budget is
// exhausted; whichever triggers first ends decoding without error.
func (d *Decoder) DecodeBlock(r io.ByteReader, compressedBytes, maxSamples int) ([]int, error) {
	const op = "forest.Decoder.DecodeBlock"
	if compressedBytes <= 0 || compressedBytes%d.f.BytesPerWord != 0 {
		return nil, verr.New(op, verr.KindCorruptedData, "compressed block size %d is not a positive multiple of bytes_per_word %d", compressedBytes, d.f.BytesPerWord)
	}
	d.Reset()
	out := make([]int, 0, maxSamples)
	nWords := compressedBytes / d.f.BytesPerWord
	for i := 0; i < nWords && len(out) < maxSamples; i++ {
		word, err := readWord(r, d.f.BytesPerWord)
		if err != nil {
			return out, verr.Wrap(op, verr.KindIO, err)
		}
		root := d.f.Roots[d.rootIdx]
		if word >= root.RootIncludedCount() {
			return out, verr.New(op, verr.KindCorruptedData, "codeword %d exceeds root included count %d", word, root.RootIncludedCount())
		}
		e := &root.Entries[root.EntriesByWord[word]]
		out = append(out, e.Samples...)
		d.rootIdx = e.ChildrenCount
		if d.rootIdx >= len(d.f.Roots) {
			return out, verr.New(op, verr.KindCorruptedData, "root transition index %d exceeds root count %d", d.rootIdx, len(d.f.Roots))
		}
	}
	if len(out) > maxSamples {
		out = out[:maxSamples]
	}
	return out, nil
}

func readWord(r io.ByteReader, bytesPerWord int) (int, error) {
	var v int
	for i := 0; i < bytesPerWord; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<8 | int(b)
	}
	return v, nil
}
