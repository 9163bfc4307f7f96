package forest

import (
	"encoding/binary"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Write serializes f in the layout Read expects. Trailing root slots that
// alias an earlier *Root (by pointer identity, as produced by Read or by a
// builder following the same convention) are written once and not repeated,
// matching the header's alias-handling rule.
func (f *Forest) Write(w io.Writer) error {
	const op = "forest.Forest.Write"
	if err := f.validate(op); err != nil {
		return err
	}

	explicitRootCount := len(f.Roots)
	for explicitRootCount > 1 && f.Roots[explicitRootCount-1] == f.Roots[explicitRootCount-2] {
		explicitRootCount--
	}

	var totalEntryCount uint32
	for _, root := range f.Roots[:explicitRootCount] {
		totalEntryCount += uint32(len(root.Entries))
	}

	if err := binary.Write(w, binary.BigEndian, totalEntryCount); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint8(f.BytesPerWord)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint8(f.BytesPerSample)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(f.MaxExpectedValue)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(explicitRootCount-1)); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}

	for _, root := range f.Roots[:explicitRootCount] {
		if err := writeRoot(op, w, root, f.BytesPerWord, f.BytesPerSample); err != nil {
			return err
		}
	}
	return nil
}

func writeRoot(op string, w io.Writer, root *Root, bytesPerWord, bytesPerSample int) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(root.Entries))); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(root.EntriesByWord))); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}

	for i := range root.Entries {
		e := &root.Entries[i]
		if err := binary.Write(w, binary.BigEndian, uint32(i)); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
		if err := binary.Write(w, binary.BigEndian, uint32(e.ChildrenCount)); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
		for _, c := range e.Children {
			if err := binary.Write(w, binary.BigEndian, uint32(c)); err != nil {
				return verr.Wrap(op, verr.KindIO, err)
			}
		}
		if !e.Included {
			continue
		}
		if err := binary.Write(w, binary.BigEndian, uint16(len(e.Samples))); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
		for _, s := range e.Samples {
			if err := writeFixedWidth(w, s, bytesPerSample); err != nil {
				return verr.Wrap(op, verr.KindIO, err)
			}
		}
		if err := writeFixedWidth(w, e.Word, bytesPerWord); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
	}

	if err := binary.Write(w, binary.BigEndian, uint32(len(root.ChildEntries))); err != nil {
		return verr.Wrap(op, verr.KindIO, err)
	}
	for k, entryIdx := range root.ChildEntries {
		if err := binary.Write(w, binary.BigEndian, uint32(entryIdx)); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
		if err := writeFixedWidth(w, root.FirstSymbol+k, bytesPerSample); err != nil {
			return verr.Wrap(op, verr.KindIO, err)
		}
	}
	return nil
}

func writeFixedWidth(w io.Writer, v, width int) error {
	var buf [2]byte
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	_, err := w.Write(buf[:width])
	return err
}
