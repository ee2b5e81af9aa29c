package dict

import "github.com/google/btree"

type cmpKey struct {
	A, B string
}

func lessCmpKey(a, b cmpKey) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// CmpDict holds observed (A, B) pairs from "A CMP B" instructions,
// keyed and ordered by A so that a prefix scan can enumerate every
// pair whose A matches a query's prefix (spec §4.3).
type CmpDict struct {
	tree *btree.BTreeG[cmpKey]
}

// NewCmpDict returns an empty CMP dictionary.
func NewCmpDict() *CmpDict {
	return &CmpDict{tree: btree.NewG(32, lessCmpKey)}
}

// SetFromBytes replaces the dictionary's contents from a flat stream
// of repeating [size:u8][A:size][B:size] records. Records whose size
// falls outside [2,15] are valid framing but contribute no dictionary
// entry (chosen policy, see DESIGN.md's Open Question note); the
// overall call still returns true as long as the byte stream itself
// decodes to a whole number of records. SetFromBytes returns false,
// leaving the dictionary unchanged, if raw ends mid-record.
func (d *CmpDict) SetFromBytes(raw []byte) bool {
	tree := btree.NewG[cmpKey](32, lessCmpKey)
	off := 0
	for off < len(raw) {
		size := int(raw[off])
		off++
		if off+2*size > len(raw) {
			return false
		}
		a := raw[off : off+size]
		off += size
		b := raw[off : off+size]
		off += size
		if size < 2 || size > MaxEntryLen {
			continue
		}
		tree.ReplaceOrInsert(cmpKey{A: string(a), B: string(b)})
	}
	d.tree = tree
	return true
}

// Len returns the number of distinct (A, B) pairs.
func (d *CmpDict) Len() int {
	if d.tree == nil {
		return 0
	}
	return d.tree.Len()
}

// Suggest returns, in ascending-A order, every B whose paired A is a
// prefix of x, up to capacity entries.
func (d *CmpDict) Suggest(x []byte, capacity int) [][]byte {
	out := make([][]byte, 0, capacity)
	if d.tree == nil || capacity <= 0 {
		return out
	}
	maxLen := MaxEntryLen
	if len(x) < maxLen {
		maxLen = len(x)
	}
	for l := 2; l <= maxLen && len(out) < capacity; l++ {
		prefix := string(x[:l])
		d.tree.AscendGreaterOrEqual(cmpKey{A: prefix}, func(k cmpKey) bool {
			if k.A != prefix {
				return false
			}
			out = append(out, []byte(k.B))
			return len(out) < capacity
		})
	}
	return out
}
