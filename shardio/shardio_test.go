package shardio

import (
	"testing"

	"github.com/moeing-labs/centifuzz/shardrng"
	"github.com/moeing-labs/centifuzz/storage/localfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterThenReadShardRoundTrip(t *testing.T) {
	fb, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	w := NewWriter(fb, "corpus.0", "features.0")
	w.Append([]byte("input-one"), []uint64{1, 2, 3})
	w.Append([]byte("input-two"), []uint64{4})
	w.Close()

	var got [][]byte
	var featuresByInput = map[string][]uint64{}
	err = ReadShard(fb, "corpus.0", "features.0", func(input []byte, fv []uint64) {
		got = append(got, input)
		featuresByInput[string(input)] = fv
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []uint64{1, 2, 3}, featuresByInput["input-one"])
	assert.Equal(t, []uint64{4}, featuresByInput["input-two"])
}

func TestReadShardMissingFeaturesYieldsEmpty(t *testing.T) {
	fb, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	w := NewWriter(fb, "corpus.0", "features.0")
	w.corpus.Append([]byte("orphan"))
	w.Close()

	var sawEmpty bool
	err = ReadShard(fb, "corpus.0", "features.0", func(input []byte, fv []uint64) {
		if string(input) == "orphan" {
			sawEmpty = len(fv) == 0
		}
	})
	require.NoError(t, err)
	assert.True(t, sawEmpty)
}

func TestReadShardMissingFilesIsNotAnError(t *testing.T) {
	fb, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	called := false
	err = ReadShard(fb, "no-corpus", "no-features", func([]byte, []uint64) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestPackParseFeatureRecordRoundTrip(t *testing.T) {
	hash := shardrng.Hash([]byte("x"))
	rec := packFeatureRecord([]uint64{9, 8, 7}, hash)
	fv, h, ok := parseFeatureRecord(rec)
	require.True(t, ok)
	assert.Equal(t, hash, h)
	assert.Equal(t, []uint64{9, 8, 7}, fv)
}
