package forest

import "github.com/gici-uab/v2f-codec-sub000/verr"

// NewMinimal builds the identity forest for the given codeword width: a
// single root with one included, childless entry per possible symbol value,
// whose word equals the symbol itself. Every root slot aliases that one
// root, since every entry's children_count is 0 and the coder/decoder never
// transition away from root 0. Used as a sanity-check codec in tests.
func NewMinimal(bytesPerWord int) (*Forest, error) {
	const op = "forest.NewMinimal"
	if bytesPerWord != 1 && bytesPerWord != 2 {
		return nil, verr.New(op, verr.KindInvalidParameter, "bytes_per_word must be 1 or 2, got %d", bytesPerWord)
	}
	n := 1 << uint(8*bytesPerWord)

	entries := make([]Entry, n)
	childEntries := make([]int32, n)
	entriesByWord := make([]int32, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{
			Included:      true,
			ChildrenCount: 0,
			Word:          i,
			Samples:       []int{i},
		}
		childEntries[i] = int32(i)
		entriesByWord[i] = int32(i)
	}
	root := &Root{
		Entries:       entries,
		EntriesByWord: entriesByWord,
		FirstSymbol:   0,
		ChildEntries:  childEntries,
	}

	roots := make([]*Root, n)
	for i := range roots {
		roots[i] = root
	}
	f := &Forest{
		MaxExpectedValue: n - 1,
		BytesPerWord:     bytesPerWord,
		BytesPerSample:   bytesPerWord,
		Roots:            roots,
	}
	if err := f.validate(op); err != nil {
		return nil, err
	}
	return f, nil
}
