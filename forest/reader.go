package forest

import (
	"encoding/binary"
	"io"

	"github.com/gici-uab/v2f-codec-sub000/verr"
)

// Read parses a forest definition from r in the three-pass style described
// by the header layout: header and per-root scalars are read and range
// checked first, then each root's entry table is read into a pool indexed
// by position, then a final resolution pass builds entries_by_word and
// validates that child indices and root transitions stay within range.
//
// Any short read surfaces as KindIO; any value outside its documented range
// surfaces as KindCorruptedData. No partially built Forest is ever returned
// on error.
func Read(r io.Reader) (*Forest, error) {
	const op = "forest.Read"

	var totalEntryCount uint32
	if err := binary.Read(r, binary.BigEndian, &totalEntryCount); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if totalEntryCount < 2 || totalEntryCount > 1<<32-2 {
		return nil, verr.New(op, verr.KindCorruptedData, "total_entry_count out of range; expected [2,2^32-2], got %d", totalEntryCount)
	}

	var bytesPerWord, bytesPerSample uint8
	if err := binary.Read(r, binary.BigEndian, &bytesPerWord); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if bytesPerWord != 1 && bytesPerWord != 2 {
		return nil, verr.New(op, verr.KindCorruptedData, "bytes_per_word out of range; expected 1 or 2, got %d", bytesPerWord)
	}
	if err := binary.Read(r, binary.BigEndian, &bytesPerSample); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	if bytesPerSample != 1 && bytesPerSample != 2 {
		return nil, verr.New(op, verr.KindCorruptedData, "bytes_per_sample out of range; expected 1 or 2, got %d", bytesPerSample)
	}

	var maxExpectedValue uint16
	if err := binary.Read(r, binary.BigEndian, &maxExpectedValue); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	M := int(maxExpectedValue)

	var rootCountMinus1 uint16
	if err := binary.Read(r, binary.BigEndian, &rootCountMinus1); err != nil {
		return nil, verr.Wrap(op, verr.KindIO, err)
	}
	explicitRootCount := int(rootCountMinus1) + 1
	if explicitRootCount < 1 || explicitRootCount > M+1 {
		return nil, verr.New(op, verr.KindCorruptedData, "root_count out of range; expected [1,%d], got %d", M+1, explicitRootCount)
	}

	explicitRoots := make([]*Root, explicitRootCount)
	var sumEntries uint32
	for j := 0; j < explicitRootCount; j++ {
		root, nEntries, err := readRoot(op, r, j, M, int(bytesPerWord), int(bytesPerSample))
		if err != nil {
			return nil, err
		}
		explicitRoots[j] = root
		sumEntries += uint32(nEntries)
	}
	if sumEntries != totalEntryCount {
		return nil, verr.New(op, verr.KindCorruptedData, "sum of root_entry_count (%d) does not match total_entry_count (%d)", sumEntries, totalEntryCount)
	}

	roots := make([]*Root, M+1)
	for k := 0; k <= M; k++ {
		if k < explicitRootCount {
			roots[k] = explicitRoots[k]
		} else {
			roots[k] = explicitRoots[explicitRootCount-1]
		}
	}

	f := &Forest{
		MaxExpectedValue: M,
		BytesPerWord:     int(bytesPerWord),
		BytesPerSample:   int(bytesPerSample),
		Roots:            roots,
	}
	if err := f.validate(op); err != nil {
		return nil, err
	}
	for _, root := range explicitRoots {
		if err := resolveRoot(op, root, len(roots)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// readRoot reads one explicit root record (pass 2) at logical position j.
// It returns the root with its children_count-keyed indices left exactly as
// stored on disk (indices into this root's own entry pool); resolveRoot
// performs the final range-check pass once the full root array is known.
func readRoot(op string, r io.Reader, j, M, bytesPerWord, bytesPerSample int) (*Root, int, error) {
	var rootEntryCount uint32
	if err := binary.Read(r, binary.BigEndian, &rootEntryCount); err != nil {
		return nil, 0, verr.Wrap(op, verr.KindIO, err)
	}
	if rootEntryCount < 1 {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d: root_entry_count must be >= 1, got %d", j, rootEntryCount)
	}

	var rootIncludedCount uint32
	if err := binary.Read(r, binary.BigEndian, &rootIncludedCount); err != nil {
		return nil, 0, verr.Wrap(op, verr.KindIO, err)
	}
	if rootIncludedCount > rootEntryCount {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d: root_included_count %d exceeds root_entry_count %d", j, rootIncludedCount, rootEntryCount)
	}

	var entries []Entry
	for i := 0; i < int(rootEntryCount); i++ {
		var index uint32
		if err := binary.Read(r, binary.BigEndian, &index); err != nil {
			return nil, 0, verr.Wrap(op, verr.KindIO, err)
		}
		if int(index) != i {
			return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d entry %d: index_i mismatch; expected %d, got %d", j, i, i, index)
		}

		var childrenCount uint32
		if err := binary.Read(r, binary.BigEndian, &childrenCount); err != nil {
			return nil, 0, verr.Wrap(op, verr.KindIO, err)
		}
		if int(childrenCount) > M+1 {
			return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d entry %d: children_count %d exceeds max_expected_value+1 (%d)", j, i, childrenCount, M+1)
		}

		children := make([]int32, childrenCount)
		for c := range children {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, 0, verr.Wrap(op, verr.KindIO, err)
			}
			if idx >= rootEntryCount {
				return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d entry %d: child index %d exceeds root_entry_count %d", j, i, idx, rootEntryCount)
			}
			children[c] = int32(idx)
		}

		e := Entry{ChildrenCount: int(childrenCount), Children: children}
		if int(childrenCount) != M+1 {
			e.Included = true
			var sampleCount uint16
			if err := binary.Read(r, binary.BigEndian, &sampleCount); err != nil {
				return nil, 0, verr.Wrap(op, verr.KindIO, err)
			}
			if sampleCount < 1 {
				return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d entry %d: sample_count must be >= 1, got %d", j, i, sampleCount)
			}
			samples := make([]int, sampleCount)
			for s := range samples {
				v, err := readFixedWidth(r, bytesPerSample)
				if err != nil {
					return nil, 0, verr.Wrap(op, verr.KindIO, err)
				}
				samples[s] = v
			}
			e.Samples = samples

			word, err := readFixedWidth(r, bytesPerWord)
			if err != nil {
				return nil, 0, verr.Wrap(op, verr.KindIO, err)
			}
			if word >= int(rootIncludedCount) {
				return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d entry %d: word %d exceeds root_included_count %d", j, i, word, rootIncludedCount)
			}
			e.Word = word
		}
		entries = append(entries, e)
	}

	var rootChildrenCount uint32
	if err := binary.Read(r, binary.BigEndian, &rootChildrenCount); err != nil {
		return nil, 0, verr.Wrap(op, verr.KindIO, err)
	}
	firstSymbol := M + 1 - int(rootChildrenCount)
	if firstSymbol != j {
		return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d: shape implies first symbol %d, expected %d (full or missing-%d)", j, firstSymbol, j, j)
	}

	childEntries := make([]int32, rootChildrenCount)
	for k := range childEntries {
		var childEntryIndex uint32
		if err := binary.Read(r, binary.BigEndian, &childEntryIndex); err != nil {
			return nil, 0, verr.Wrap(op, verr.KindIO, err)
		}
		if childEntryIndex >= rootEntryCount {
			return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d: child_entry_index %d exceeds root_entry_count %d", j, childEntryIndex, rootEntryCount)
		}
		inputSymbol, err := readFixedWidth(r, bytesPerSample)
		if err != nil {
			return nil, 0, verr.Wrap(op, verr.KindIO, err)
		}
		if inputSymbol != firstSymbol+k {
			return nil, 0, verr.New(op, verr.KindCorruptedData, "root %d: input_symbol mismatch at position %d; expected %d, got %d", j, k, firstSymbol+k, inputSymbol)
		}
		childEntries[k] = int32(childEntryIndex)
	}

	root := &Root{
		Entries:      entries,
		FirstSymbol:  firstSymbol,
		ChildEntries: childEntries,
	}
	return root, int(rootEntryCount), nil
}

// resolveRoot performs pass 3: builds entries_by_word as the inverse of the
// per-entry Word field, and validates that every codeword in
// [0,root_included_count) is assigned exactly once, plus that every
// included entry's children_count (reused as a root index on transition)
// stays within the full root pool.
func resolveRoot(op string, root *Root, rootPoolSize int) error {
	var includedCount int
	for i := range root.Entries {
		if root.Entries[i].Included {
			includedCount++
		}
	}
	byWord := make([]int32, includedCount)
	seen := make([]bool, includedCount)
	for i := range root.Entries {
		e := &root.Entries[i]
		if !e.Included {
			continue
		}
		if e.Word < 0 || e.Word >= includedCount {
			return verr.New(op, verr.KindCorruptedData, "entry %d: word %d out of range [0,%d)", i, e.Word, includedCount)
		}
		if seen[e.Word] {
			return verr.New(op, verr.KindCorruptedData, "codeword %d assigned to more than one entry", e.Word)
		}
		seen[e.Word] = true
		byWord[e.Word] = int32(i)
		if e.ChildrenCount >= rootPoolSize {
			return verr.New(op, verr.KindCorruptedData, "entry %d: children_count %d is not a valid root index", i, e.ChildrenCount)
		}
	}
	for w, ok := range seen {
		if !ok {
			return verr.New(op, verr.KindCorruptedData, "codeword %d never assigned", w)
		}
	}
	root.EntriesByWord = byWord
	return nil
}

func readFixedWidth(r io.Reader, width int) (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		return 0, err
	}
	v := 0
	for i := 0; i < width; i++ {
		v = v<<8 | int(buf[i])
	}
	return v, nil
}
