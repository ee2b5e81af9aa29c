package feature

import (
	"testing"

	"github.com/moeing-labs/centifuzz/shardrng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := Encode(DomainCmp, 12345)
	d, idx := Decode(f)
	assert.Equal(t, DomainCmp, d)
	assert.EqualValues(t, 12345, idx)
}

func TestPCFeatureRoundTrip(t *testing.T) {
	f := PCFeature(0xABCDEF)
	pc, ok := ToPC(f)
	require.True(t, ok)
	assert.EqualValues(t, 0xABCDEF, pc)

	_, ok = ToPC(Encode(DomainCmp, 1))
	assert.False(t, ok)
}

func TestCountUnseenAndPruneFrequentAdmitsFirstSighting(t *testing.T) {
	s := NewSet(32)
	f1, f2 := PCFeature(1), PCFeature(2)

	fv := []uint64{f1, f2}
	unseen := s.CountUnseenAndPruneFrequent(&fv)
	assert.True(t, unseen)
	assert.ElementsMatch(t, []uint64{f1, f2}, fv)

	s.IncrementFrequencies(fv)

	// f1 has now been observed once; an input carrying only f1 no
	// longer contributes anything new and must be rejected.
	fv2 := []uint64{f1}
	unseen2 := s.CountUnseenAndPruneFrequent(&fv2)
	assert.False(t, unseen2)
}

func TestFrequencySaturatesAtThreshold(t *testing.T) {
	s := NewSet(3)
	f := PCFeature(7)
	for i := 0; i < 10; i++ {
		fv := []uint64{f}
		s.CountUnseenAndPruneFrequent(&fv)
		s.IncrementFrequencies(fv)
	}
	assert.Equal(t, uint8(3), s.FrequencyOf(f))
}

func TestFrequentFeatureIsPrunedFromVector(t *testing.T) {
	s := NewSet(2)
	f1, f2 := PCFeature(1), PCFeature(2)
	s.IncrementFrequencies([]uint64{f1})
	s.IncrementFrequencies([]uint64{f1})
	// f1 is now at threshold; f2 has never been seen.
	fv := []uint64{f1, f2}
	unseen := s.CountUnseenAndPruneFrequent(&fv)
	assert.True(t, unseen)
	assert.Equal(t, []uint64{f2}, fv)
}

func TestFrequencyNeverDecreases(t *testing.T) {
	s := NewSet(32)
	f := PCFeature(9)
	var last uint8
	for i := 0; i < 20; i++ {
		s.IncrementFrequencies([]uint64{f})
		cur := s.FrequencyOf(f)
		assert.GreaterOrEqual(t, cur, last)
		last = cur
	}
}

func TestCorpusAddAndUniformRandom(t *testing.T) {
	fs := NewSet(32)
	c := NewCorpus()
	r := shardrng.New(1)

	f1, f2 := PCFeature(1), PCFeature(2)
	c.Add([]byte("X"), []uint64{f1, f2}, nil, fs, NoFrontier{})
	assert.Equal(t, 1, c.NumActive())
	assert.Equal(t, 1, c.NumTotal())

	rec, ok := c.UniformRandom(r)
	require.True(t, ok)
	assert.Equal(t, []byte("X"), rec.Input)
}

func TestCorpusPruneRespectsMaxSize(t *testing.T) {
	fs := NewSet(32)
	c := NewCorpus()
	r := shardrng.New(2)
	for i := 0; i < 20; i++ {
		c.Add([]byte{byte(i)}, []uint64{PCFeature(uint64(i))}, nil, fs, NoFrontier{})
	}
	c.Prune(fs, NoFrontier{}, 5, r)
	assert.LessOrEqual(t, c.NumActive(), 5)
	assert.Equal(t, 20, c.NumTotal())
}

func TestCorpusPruneDiscardsZeroWeightRecords(t *testing.T) {
	fs := NewSet(32)
	c := NewCorpus()
	r := shardrng.New(3)
	c.Add([]byte("no-features"), nil, nil, fs, NoFrontier{})
	for i := 0; i < 5; i++ {
		c.Add([]byte{byte(i)}, []uint64{PCFeature(uint64(i))}, nil, fs, NoFrontier{})
	}
	c.Prune(fs, NoFrontier{}, 100, r)
	for _, rec := range c.records {
		assert.NotEqual(t, "no-features", string(rec.Input))
	}
}

func TestCorpusWeightedRandomFavorsRareFeatures(t *testing.T) {
	fs := NewSet(32)
	c := NewCorpus()
	r := shardrng.New(4)

	rare, common := PCFeature(100), PCFeature(200)
	c.Add([]byte("rare"), []uint64{rare}, nil, fs, NoFrontier{})
	c.Add([]byte("common"), []uint64{common}, nil, fs, NoFrontier{})
	c.Add([]byte("chaff"), nil, nil, fs, NoFrontier{}) // zero-weight filler

	// Make "common" look much more frequently observed than "rare".
	for i := 0; i < 20; i++ {
		fs.IncrementFrequencies([]uint64{common})
	}
	// Pruning down to 2 forces a weight recompute and drops the
	// zero-weight filler, leaving rare and common with fresh weights.
	c.Prune(fs, NoFrontier{}, 2, r)
	require.Equal(t, 2, c.NumActive())

	rareWins := 0
	trials := 500
	for i := 0; i < trials; i++ {
		rec, _ := c.WeightedRandom(r)
		if string(rec.Input) == "rare" {
			rareWins++
		}
	}
	assert.Greater(t, rareWins, trials/2)
}
