package forest

import (
	"fmt"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Coder walks a Forest to turn a sequence of input symbols into fixed-size
// codewords. A Coder is reset to root 0 at the start of every block; it is
// the only mutable state touched during coding, never the shared Forest.
type Coder struct {
	f        *Forest
	rootIdx  int
	curRoot  *Root
	curEntry int32 // index into curRoot.Entries; -1 means "not yet entered" (block start)
}

// NewCoder returns a Coder over f.
func (f *Forest) NewCoder() *Coder {
	return &Coder{f: f}
}

// Reset returns the cursor to root 0, ready for a new block.
func (c *Coder) Reset() {
	c.rootIdx = 0
	c.curRoot = c.f.Roots[0]
	c.curEntry = -1
}

// EncodeBlock encodes symbols as a sequence of bytes_per_word-byte
// big-endian codewords written to w, emitting one final codeword for
// whatever entry the cursor lands on at the end of the block. The forest's
// invariants guarantee every index encountered while descending is in
// range; a violation there indicates a malformed Forest and panics rather
// than returning a *verr.Error, per the package's internal/public error
// split.
func (c *Coder) EncodeBlock(symbols []int, w io.ByteWriter) error {
	const op = "forest.Coder.EncodeBlock"
	if len(symbols) == 0 {
		return verr.New(op, verr.KindInvalidParameter, "empty block")
	}
	c.Reset()
	for _, s := range symbols {
		if s < 0 || s > c.f.MaxExpectedValue {
			return verr.New(op, verr.KindInvalidParameter, "symbol %d out of range [0,%d]", s, c.f.MaxExpectedValue)
		}
		if c.curEntry < 0 {
			idx, ok := c.curRoot.dispatch(s)
			if !ok {
				panic(fmt.Sprintf("%s: root %d cannot dispatch symbol %d", op, c.rootIdx, s))
			}
			c.curEntry = idx
			continue
		}
		e := &c.curRoot.Entries[c.curEntry]
		if s < e.ChildrenCount {
			c.curEntry = e.Children[s]
			continue
		}
		if err := writeWord(w, e.Word, c.f.BytesPerWord); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
		c.rootIdx = e.ChildrenCount
		if c.rootIdx >= len(c.f.Roots) {
			panic(fmt.Sprintf("%s: entry children_count %d is not a valid root index", op, c.rootIdx))
		}
		c.curRoot = c.f.Roots[c.rootIdx]
		idx, ok := c.curRoot.dispatch(s)
		if !ok {
			panic(fmt.Sprintf("%s: root %d cannot dispatch symbol %d", op, c.rootIdx, s))
		}
		c.curEntry = idx
	}
	e := &c.curRoot.Entries[c.curEntry]
	for !e.Included {
		e = &c.curRoot.Entries[e.Children[0]]
	}
	if err := writeWord(w, e.Word, c.f.BytesPerWord); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	return nil
}

func writeWord(w io.ByteWriter, word, bytesPerWord int) error {
	if bytesPerWord == 2 {
		if err := w.WriteByte(byte(word >> 8)); err != nil {
			return err
		}
	}
	return w.WriteByte(byte(word))
}
