package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSizeAlignmentRejectsIncompatibleMaxLen(t *testing.T) {
	m := New(DefaultKnobs(), 1)
	require.True(t, m.SetMaxLen(100))
	assert.False(t, m.SetSizeAlignment(7)) // 100 % 7 != 0
	assert.True(t, m.SetSizeAlignment(4))  // 100 % 4 == 0
}

func TestSetMaxLenRejectsIncompatibleAlignment(t *testing.T) {
	m := New(DefaultKnobs(), 1)
	require.True(t, m.SetSizeAlignment(4))
	assert.False(t, m.SetMaxLen(10))
	assert.True(t, m.SetMaxLen(12))
}

func TestMutateNeverEmptiesInput(t *testing.T) {
	m := New(DefaultKnobs(), 42)
	for i := 0; i < 500; i++ {
		data := []byte{1, 2, 3}
		m.Mutate(&data)
		assert.NotEmpty(t, data)
	}
}

func TestMutateOneByteInputEraseFails(t *testing.T) {
	m := New(DefaultKnobs(), 5)
	data := []byte{0x42}
	ok := m.MutateDecreaseSize(&data)
	assert.False(t, ok)
	assert.Len(t, data, 1)
}

func TestMutateRespectsAlignmentAndMaxLen(t *testing.T) {
	m := New(DefaultKnobs(), 9)
	require.True(t, m.SetSizeAlignment(4))
	require.True(t, m.SetMaxLen(16))
	for i := 0; i < 300; i++ {
		data := make([]byte, 5)
		if m.MutateIncreaseSize(&data) {
			assert.LessOrEqual(t, len(data), 16)
			assert.Equal(t, 0, len(data)%4)
		}
		data2 := make([]byte, 5)
		if m.MutateDecreaseSize(&data2) {
			assert.Equal(t, 4, len(data2))
		}
	}
}

func TestSwapBytesRequiresTwoBytes(t *testing.T) {
	m := New(DefaultKnobs(), 3)
	data := []byte{1}
	assert.False(t, m.dispatch([]primitive{{"SwapBytes", 1, swapBytes}}, &data))
}

func TestOverwriteFromDictionaryUsesAddedEntries(t *testing.T) {
	m := New(DefaultKnobs(), 11)
	m.AddToDictionary([][]byte{[]byte("AB")})
	data := []byte{0, 0, 0, 0}
	found := false
	for i := 0; i < 200 && !found; i++ {
		d := append([]byte{}, data...)
		if overwriteFromDictionary(m, &d) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSetCmpDictionaryMalformedReturnsFalse(t *testing.T) {
	m := New(DefaultKnobs(), 2)
	ok := m.SetCmpDictionary([]byte{5, 1, 2}) // declares size 5, only 2 follow
	assert.False(t, ok)
}

func TestMutateManyProducesExactCountAndNonEmpty(t *testing.T) {
	m := New(DefaultKnobs(), 77)
	inputs := [][]byte{{1, 2, 3}, {4, 5}, {6}}
	var out [][]byte
	m.MutateMany(inputs, 50, 40, &out)
	require.Len(t, out, 50)
	for _, mutant := range out {
		assert.NotEmpty(t, mutant)
	}
}

func TestCrossOverInsertGrows(t *testing.T) {
	m := New(DefaultKnobs(), 13)
	data := []byte{1, 2, 3}
	other := []byte{9, 9, 9, 9, 9}
	before := len(data)
	if m.CrossOverInsert(&data, other) {
		assert.Greater(t, len(data), before)
	}
}

func TestCrossOverOverwriteKeepsLength(t *testing.T) {
	m := New(DefaultKnobs(), 21)
	data := []byte{1, 2, 3, 4}
	other := []byte{9, 9}
	before := len(data)
	ok := m.CrossOverOverwrite(&data, other)
	require.True(t, ok)
	assert.Equal(t, before, len(data))
}

// FuzzMutateNeverEmpties is the mutator testing itself: seeds Go's
// native fuzzing engine to search for any input the mutator would
// ever reduce to zero bytes, matching the spirit of the teacher's own
// dtfuzz/itfuzz/btfuzz harnesses under datatree/fuzz, indextree/fuzz
// and indextree/b/cppbtree/fuzz.
func FuzzMutateNeverEmpties(f *testing.F) {
	f.Add([]byte{1})
	f.Add([]byte{1, 2, 3, 4, 5})
	f.Fuzz(func(t *testing.T, seed []byte) {
		if len(seed) == 0 {
			t.Skip()
		}
		m := New(DefaultKnobs(), 12345)
		data := append([]byte{}, seed...)
		m.Mutate(&data)
		if len(data) == 0 {
			t.Fatalf("mutation emptied a non-empty input")
		}
	})
}
