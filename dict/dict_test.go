package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeing-labs/centifuzz/shardrng"
)

func TestStaticDictAddAndPick(t *testing.T) {
	d := NewStaticDict()
	d.Add([]byte("abc"), []byte("de"), []byte(""), make([]byte, 16))
	assert.Equal(t, 2, d.Len()) // empty and 16-byte entries dropped

	r := shardrng.New(1)
	entry, ok := d.Pick(r)
	require.True(t, ok)
	assert.True(t, string(entry) == "abc" || string(entry) == "de")
}

func TestStaticDictAddIsIdempotentAndCommutative(t *testing.T) {
	a := NewStaticDict()
	a.Add([]byte("x"), []byte("y"))
	a.Add([]byte("y"), []byte("x"))

	b := NewStaticDict()
	b.Add([]byte("y"), []byte("x"))
	b.Add([]byte("x"), []byte("y"))

	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, 2, a.Len())
}

func TestStaticDictAddFromText(t *testing.T) {
	d := NewStaticDict()
	text := "# a comment\n\nkw1=\"\\x41\\x42\"\n\"literal\\\"quote\"\n"
	require.NoError(t, d.AddFromText(text))
	assert.Equal(t, 2, d.Len())
}

func TestStaticDictAddFromTextMalformed(t *testing.T) {
	d := NewStaticDict()
	err := d.AddFromText("not-quoted\n")
	assert.Error(t, err)
}

func TestCmpDictSetFromBytesRejectsSizes(t *testing.T) {
	d := NewCmpDict()
	// one record with size=1 (rejected), one with size=3 (accepted)
	raw := []byte{1, 'a', 'b'}
	raw = append(raw, 3, 'a', 'b', 'c', 'x', 'y', 'z')
	ok := d.SetFromBytes(raw)
	require.True(t, ok)
	assert.Equal(t, 1, d.Len())
}

func TestCmpDictSetFromBytesTruncated(t *testing.T) {
	d := NewCmpDict()
	raw := []byte{5, 'a', 'b'} // declares size 5 but only 2 bytes follow
	ok := d.SetFromBytes(raw)
	assert.False(t, ok)
}

func TestCmpDictSuggestPrefixScan(t *testing.T) {
	d := NewCmpDict()
	var raw []byte
	raw = append(raw, 4, 'A', 'B', 'C', 'D', 'W', 'X', 'Y', 'Z')
	raw = append(raw, 2, 'A', 'B', '9', '9')
	require.True(t, d.SetFromBytes(raw))

	out := d.Suggest([]byte("ABCDEF"), 8)
	require.Len(t, out, 2)
	assert.Equal(t, "99", string(out[0]))
	assert.Equal(t, "WXYZ", string(out[1]))
}

func TestCmpDictSuggestRespectsCapacity(t *testing.T) {
	d := NewCmpDict()
	var raw []byte
	raw = append(raw, 2, 'A', 'B', '1', '1')
	raw = append(raw, 3, 'A', 'B', 'C', '2', '2', '2')
	require.True(t, d.SetFromBytes(raw))

	out := d.Suggest([]byte("ABCXYZ"), 1)
	require.Len(t, out, 1)
}
