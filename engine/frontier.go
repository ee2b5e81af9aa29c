package engine

import "github.com/moeing-labs/centifuzz/feature"

// defaultFrontier treats every feature currently carried by exactly
// one corpus record as being "on the frontier": it is the sole
// evidence the fuzzer has for whatever code path produced it, so
// inputs carrying it are worth favoring further. This is recomputed
// from scratch on demand rather than tracked incrementally, matching
// spec §4.7 step 7's "optionally recompute the coverage frontier"
// phrasing.
type defaultFrontier struct {
	inFrontier map[uint64]struct{}
}

func newDefaultFrontier() *defaultFrontier {
	return &defaultFrontier{inFrontier: make(map[uint64]struct{})}
}

func (f *defaultFrontier) Compute(c *feature.Corpus) {
	counts := make(map[uint64]int)
	c.Each(func(rec feature.Record) {
		for _, ft := range rec.Features {
			counts[ft]++
		}
	})
	f.inFrontier = make(map[uint64]struct{}, len(counts))
	for ft, n := range counts {
		if n == 1 {
			f.inFrontier[ft] = struct{}{}
		}
	}
}

func (f *defaultFrontier) IsInFrontier(ft uint64) bool {
	_, ok := f.inFrontier[ft]
	return ok
}
