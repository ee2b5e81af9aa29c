// Package mutator implements the pluggable byte-array mutation engine
// (spec §4.4): a static dictionary, a CMP-argument dictionary, size
// alignment and max-length constraints, and weighted crossover.
//
// Grounded on store/fuzz/fuzz.go's getRandValue/getRand8Bytes: the
// teacher's own random-byte-with-constraints generator (avoid
// recreating a magic-byte sequence, mask to effective bits) is the
// direct ancestor of this package's dictionary-aware overwrite and
// bit-flip primitives, generalized from a one-off stress-test
// generator into a stateful, reusable mutation engine.
package mutator

import (
	"github.com/moeing-labs/centifuzz/dict"
	"github.com/moeing-labs/centifuzz/shardrng"
)

// Unbounded is the sentinel MaxLen value meaning "no length limit".
const Unbounded = -1

// Mutator is a stateful, single-threaded-by-convention mutation
// engine. One Mutator is constructed per fuzzing thread/shard.
type Mutator struct {
	rng *shardrng.RNG

	staticDict *dict.StaticDict
	cmpDict    *dict.CmpDict

	knobs     Knobs
	alignment int
	maxLen    int

	sameSize     []primitive
	increaseSize []primitive
	decreaseSize []primitive
}

// New constructs a Mutator with the given knobs and a non-zero seed
// (a zero seed is remapped by shardrng.New). Default alignment is 1
// (no constraint) and default max length is Unbounded.
func New(knobs Knobs, seed uint64) *Mutator {
	m := &Mutator{
		rng:        shardrng.New(seed),
		staticDict: dict.NewStaticDict(),
		cmpDict:    dict.NewCmpDict(),
		knobs:      knobs,
		alignment:  1,
		maxLen:     Unbounded,
	}
	m.rebuildFamilies()
	return m
}

func (m *Mutator) rebuildFamilies() {
	m.sameSize = []primitive{
		{"FlipBit", m.knobs.FlipBitWeight, flipBit},
		{"SwapBytes", m.knobs.SwapBytesWeight, swapBytes},
		{"ChangeByte", m.knobs.ChangeByteWeight, changeByte},
		{"OverwriteFromDictionary", m.knobs.OverwriteFromDictionaryWeight, overwriteFromDictionary},
		{"OverwriteFromCmpDictionary", m.knobs.OverwriteFromCmpDictWeight, overwriteFromCmpDictionary},
	}
	m.increaseSize = []primitive{
		{"InsertBytes", m.knobs.InsertBytesWeight, insertBytes},
		{"InsertFromDictionary", m.knobs.InsertFromDictionaryWeight, insertFromDictionary},
	}
	m.decreaseSize = []primitive{
		{"EraseBytes", m.knobs.EraseBytesWeight, eraseBytes},
	}
}

// AddToDictionary adds entries to the static dictionary.
func (m *Mutator) AddToDictionary(entries [][]byte) {
	m.staticDict.Add(entries...)
}

// SetCmpDictionary replaces the CMP dictionary from a raw
// [size][A][B]-record byte stream. Returns false (dictionary left
// unchanged) if the stream is malformed; the mutator continues
// operating without CMP suggestions in that case (spec §7).
func (m *Mutator) SetCmpDictionary(raw []byte) bool {
	return m.cmpDict.SetFromBytes(raw)
}

// SetSizeAlignment sets the size alignment used by size-changing
// primitives. Rejects a alignment incompatible with the current max
// length (spec §4.4).
func (m *Mutator) SetSizeAlignment(a int) bool {
	if a <= 0 {
		return false
	}
	if m.maxLen != Unbounded && m.maxLen%a != 0 {
		return false
	}
	m.alignment = a
	return true
}

// SetMaxLen sets the maximum mutant length. Rejects a value
// incompatible with the current alignment.
func (m *Mutator) SetMaxLen(ml int) bool {
	if ml <= 0 {
		return false
	}
	if ml%m.alignment != 0 {
		return false
	}
	m.maxLen = ml
	return true
}

// Mutate applies one random mutation family to data, returning
// whether a mutation occurred. It composes the three size-family
// dispatchers, redrawing a family by weight (up to 3 attempts in all,
// so the same family may be drawn again) if the chosen family's
// dispatcher fails outright.
func (m *Mutator) Mutate(data *[]byte) bool {
	families := []struct {
		weight int
		fn     func(*[]byte) bool
	}{
		{m.knobs.SameSizeWeight, m.MutateSameSize},
		{m.knobs.IncreaseSizeWeight, m.MutateIncreaseSize},
		{m.knobs.DecreaseSizeWeight, m.MutateDecreaseSize},
	}
	total := 0
	for _, f := range families {
		total += f.weight
	}
	if total <= 0 {
		return false
	}
	for attempt := 0; attempt < len(families); attempt++ {
		idx := weightedIndex(m.rng, func(i int) int { return families[i].weight }, len(families), total)
		if families[idx].fn(data) {
			return true
		}
	}
	return false
}

// MutateSameSize applies a mutation that never changes len(*data).
func (m *Mutator) MutateSameSize(data *[]byte) bool {
	return m.dispatch(m.sameSize, data)
}

// MutateIncreaseSize applies a mutation that grows *data.
func (m *Mutator) MutateIncreaseSize(data *[]byte) bool {
	return m.dispatch(m.increaseSize, data)
}

// MutateDecreaseSize applies a mutation that shrinks *data.
func (m *Mutator) MutateDecreaseSize(data *[]byte) bool {
	return m.dispatch(m.decreaseSize, data)
}
