package mutator

import "github.com/moeing-labs/centifuzz/shardrng"

// cmpSuggestionCap bounds how many CMP suggestions OverwriteFromCmpDictionary
// requests per offset; a handful is plenty since only one is used.
const cmpSuggestionCap = 4

func flipBit(m *Mutator, data *[]byte) bool {
	d := *data
	if len(d) == 0 {
		return false
	}
	byteIdx := m.rng.Intn(len(d))
	bitIdx := m.rng.Intn(8)
	d[byteIdx] ^= 1 << uint(bitIdx)
	return true
}

func swapBytes(m *Mutator, data *[]byte) bool {
	d := *data
	if len(d) < 2 {
		return false
	}
	i := m.rng.Intn(len(d))
	j := m.rng.Intn(len(d) - 1)
	if j >= i {
		j++
	}
	d[i], d[j] = d[j], d[i]
	return true
}

func changeByte(m *Mutator, data *[]byte) bool {
	d := *data
	if len(d) == 0 {
		return false
	}
	idx := m.rng.Intn(len(d))
	d[idx] = byte(m.rng.Next())
	return true
}

func overwriteFromDictionary(m *Mutator, data *[]byte) bool {
	d := *data
	entry, ok := m.staticDict.Pick(m.rng)
	if !ok || len(entry) == 0 || len(entry) > len(d) {
		return false
	}
	offset := m.rng.Intn(len(d) - len(entry) + 1)
	copy(d[offset:], entry)
	return true
}

func overwriteFromCmpDictionary(m *Mutator, data *[]byte) bool {
	d := *data
	n := len(d)
	if n == 0 || m.cmpDict.Len() == 0 {
		return false
	}
	for _, off := range randomPermutation(m.rng, n) {
		remaining := n - off
		suggestions := m.cmpDict.Suggest(d[off:], cmpSuggestionCap)
		for _, s := range suggestions {
			if len(s) > 0 && len(s) <= remaining {
				copy(d[off:], s)
				return true
			}
		}
	}
	return false
}

func insertBytes(m *Mutator, data *[]byte) bool {
	d := *data
	want := 1 + m.rng.Intn(16)
	k := m.roundUpToAdd(len(d), want)
	if k == 0 {
		return false
	}
	pos := m.rng.Intn(len(d) + 1)
	*data = insertAt(d, pos, m.rng.Bytes(k))
	return true
}

func insertFromDictionary(m *Mutator, data *[]byte) bool {
	d := *data
	entry, ok := m.staticDict.Pick(m.rng)
	if !ok {
		return false
	}
	k := m.roundUpToAdd(len(d), len(entry))
	if k == 0 {
		return false
	}
	chunk := alignEntry(entry, k, m.rng)
	pos := m.rng.Intn(len(d) + 1)
	*data = insertAt(d, pos, chunk)
	return true
}

func eraseBytes(m *Mutator, data *[]byte) bool {
	d := *data
	n := len(d)
	remove := m.roundDownToRemove(n, 1+m.rng.Intn(16))
	if remove <= 0 {
		return false
	}
	offset := m.rng.Intn(n - remove + 1)
	*data = append(d[:offset], d[offset+remove:]...)
	return true
}

// alignEntry returns exactly k bytes derived from entry: the entry
// itself when it already is k bytes long, a truncation when entry is
// longer, or the entry padded with fresh random bytes when shorter.
// This keeps InsertFromDictionary's size change exactly k, which is
// what round_up_to_add computed as alignment/max-len-safe.
func alignEntry(entry []byte, k int, r *shardrng.RNG) []byte {
	if k <= len(entry) {
		return append([]byte{}, entry[:k]...)
	}
	out := make([]byte, 0, k)
	out = append(out, entry...)
	out = append(out, r.Bytes(k-len(entry))...)
	return out
}

func insertAt(d []byte, pos int, ins []byte) []byte {
	out := make([]byte, 0, len(d)+len(ins))
	out = append(out, d[:pos]...)
	out = append(out, ins...)
	out = append(out, d[pos:]...)
	return out
}

func randomPermutation(r *shardrng.RNG, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
