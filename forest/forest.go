// Package forest implements the V2F entropy coder's forest of symbol-trees:
// the arena-backed data model, its three-pass binary serialization, the
// minimal identity forest used for bootstrapping and tests, and the coder
// and decoder that walk it.
package forest

import "github.com/gici-uab/v2f-codec-sub000/verr"

// Entry is one node of a root's entry pool, addressed by position within
// that pool. A non-included entry is a pure interior node: ChildrenCount
// equals MaxExpectedValue+1 and Children covers every possible input
// symbol. An included entry carries a codeword and its decoded samples;
// its ChildrenCount is reused for two purposes: as the bound below which an
// incoming symbol still descends within this same root (Children[s]), and,
// once exceeded, as the index of the root the coder/decoder transitions to
// after emitting Word.
type Entry struct {
	Included      bool
	ChildrenCount int
	Children      []int32 // indices into the owning root's Entries, len == ChildrenCount
	Word          int
	Samples       []int
}

// Root is one decoder state: an entry pool (entries_by_index), an inverse
// codeword map (entries_by_word), and the root-level dispatch table used to
// pick the first entry touched after entering this root.
type Root struct {
	Entries       []Entry // entries_by_index
	EntriesByWord []int32 // entries_by_word: codeword -> index into Entries
	FirstSymbol   int     // i for a missing-i root, 0 for a full root
	ChildEntries  []int32 // root_children_count indices into Entries, offset by FirstSymbol
}

// RootIncludedCount is the number of distinct codewords this root assigns.
func (r *Root) RootIncludedCount() int {
	return len(r.EntriesByWord)
}

// dispatch resolves the entry a fresh arrival at this root transitions to
// on input symbol s, honoring the missing-i offset.
func (r *Root) dispatch(s int) (int32, bool) {
	idx := s - r.FirstSymbol
	if idx < 0 || idx >= len(r.ChildEntries) {
		return 0, false
	}
	return r.ChildEntries[idx], true
}

// Forest is an immutable, shared-arena collection of root trees. Roots is
// always indexed over the full logical range [0, MaxExpectedValue]; when
// fewer roots are explicitly distinct, trailing slots alias an earlier
// *Root pointer rather than copying it.
type Forest struct {
	MaxExpectedValue int
	BytesPerWord     int
	BytesPerSample   int
	Roots            []*Root
}

// validate checks the forest-level invariants that are cheap to check after
// construction, regardless of whether the forest came from the reader or
// the minimal builder.
func (f *Forest) validate(op string) error {
	if f.BytesPerWord != 1 && f.BytesPerWord != 2 {
		return verr.New(op, verr.KindCorruptedData, "bytes_per_word out of range; expected 1 or 2, got %d", f.BytesPerWord)
	}
	if f.BytesPerSample != 1 && f.BytesPerSample != 2 {
		return verr.New(op, verr.KindCorruptedData, "bytes_per_sample out of range; expected 1 or 2, got %d", f.BytesPerSample)
	}
	if f.MaxExpectedValue < 0 || f.MaxExpectedValue > 65535 {
		return verr.New(op, verr.KindCorruptedData, "max_expected_value out of range; expected [0,65535], got %d", f.MaxExpectedValue)
	}
	if len(f.Roots) != f.MaxExpectedValue+1 {
		return verr.New(op, verr.KindCorruptedData, "root pool length %d does not cover the full [0,%d] index space", len(f.Roots), f.MaxExpectedValue)
	}
	return nil
}
