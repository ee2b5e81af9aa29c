package feature

import (
	"math"
	"sort"

	"github.com/moeing-labs/centifuzz/shardrng"
)

// frontierBoost multiplies the weight of any record that still
// carries a feature inside the coverage frontier, biasing selection
// and pruning towards inputs near unexplored functions (spec §9).
const frontierBoost = 4

// Record is one corpus entry: the input bytes together with the
// feature vector and CMP-argument stream it produced, plus the
// weight last computed for it.
type Record struct {
	Input    []byte
	Features []uint64
	CmpArgs  []byte
	Weight   int
}

// Corpus holds the shard's currently retained inputs. Admission is
// decided by the caller (via Set.CountUnseenAndPruneFrequent) before
// Add is called; Corpus itself only tracks what has been kept and how
// heavily each entry should be favored for mutation and survival.
type Corpus struct {
	records    []Record
	totalAdded int
}

// NewCorpus returns an empty Corpus.
func NewCorpus() *Corpus {
	return &Corpus{}
}

// Add appends a new record, computing its initial weight from fs and
// fr. Slices are copied so the caller's buffers can be reused.
func (c *Corpus) Add(input []byte, features []uint64, cmpArgs []byte, fs *Set, fr Frontier) {
	rec := Record{
		Input:    append([]byte(nil), input...),
		Features: append([]uint64(nil), features...),
		CmpArgs:  append([]byte(nil), cmpArgs...),
	}
	rec.Weight = weightOf(rec.Features, fs, fr)
	c.records = append(c.records, rec)
	c.totalAdded++
}

// NumActive returns how many records are currently retained.
func (c *Corpus) NumActive() int { return len(c.records) }

// NumTotal returns how many records have ever been admitted,
// including ones since pruned away.
func (c *Corpus) NumTotal() int { return c.totalAdded }

// Each calls fn once per currently retained record, in storage order.
// Used by frontier computation, which needs to see every record's
// feature vector without copying the whole slice out.
func (c *Corpus) Each(fn func(Record)) {
	for _, rec := range c.records {
		fn(rec)
	}
}

// UniformRandom returns an equiprobable random record.
func (c *Corpus) UniformRandom(r *shardrng.RNG) (Record, bool) {
	if len(c.records) == 0 {
		return Record{}, false
	}
	return c.records[r.Intn(len(c.records))], true
}

// WeightedRandom returns a record chosen with probability
// proportional to its current weight, falling back to UniformRandom
// if every record carries zero weight.
func (c *Corpus) WeightedRandom(r *shardrng.RNG) (Record, bool) {
	if len(c.records) == 0 {
		return Record{}, false
	}
	total := 0
	for _, rec := range c.records {
		total += rec.Weight
	}
	if total <= 0 {
		return c.UniformRandom(r)
	}
	x := r.Intn(total)
	for _, rec := range c.records {
		if x < rec.Weight {
			return rec, true
		}
		x -= rec.Weight
	}
	return c.records[len(c.records)-1], true
}

// Prune discards records down to maxSize. Weights are recomputed
// first against the latest fs/fr state, any record left with zero
// weight is dropped unconditionally (it covers nothing this corpus
// still values), and the remaining excess is chosen by
// Efraimidis-Spirakis weighted reservoir sampling: each surviving
// candidate draws key = u^(1/weight) for u uniform in (0,1), and the
// toRemove candidates with the smallest keys are discarded. Low
// weight pushes the key towards zero more often, so rarer-feature
// inputs survive preferentially without a hard cutoff.
func (c *Corpus) Prune(fs *Set, fr Frontier, maxSize int, r *shardrng.RNG) {
	for i := range c.records {
		c.records[i].Weight = weightOf(c.records[i].Features, fs, fr)
	}

	candidates := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		if rec.Weight <= 0 {
			continue
		}
		candidates = append(candidates, rec)
	}

	toRemove := len(candidates) - maxSize
	if toRemove <= 0 {
		c.records = candidates
		return
	}

	type scored struct {
		rec Record
		key float64
	}
	scoredList := make([]scored, len(candidates))
	for i, rec := range candidates {
		u := r.Float64()
		if u <= 0 {
			u = 1e-12
		}
		scoredList[i] = scored{rec: rec, key: math.Pow(u, 1.0/float64(rec.Weight))}
	}
	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].key < scoredList[j].key })

	kept := make([]Record, 0, maxSize)
	for _, s := range scoredList[toRemove:] {
		kept = append(kept, s.rec)
	}
	c.records = kept
}

// Stats is a small JSON-serializable snapshot used by the corpus-stats
// telemetry dump (spec §6).
type Stats struct {
	NumActive int `json:"num_active"`
	NumTotal  int `json:"num_total"`
}

// PrintStats returns the current corpus statistics.
func (c *Corpus) PrintStats() Stats {
	return Stats{NumActive: c.NumActive(), NumTotal: c.NumTotal()}
}

// weightOf derives a record's selection weight from the rarity of its
// rarest feature, boosted if any feature sits in the coverage
// frontier. A record with no features at all is worthless and always
// weighted zero, which Prune treats as immediately discardable.
func weightOf(features []uint64, fs *Set, fr Frontier) int {
	if len(features) == 0 {
		return 0
	}
	minFreq := uint8(255)
	inFrontier := false
	for _, f := range features {
		if freq := fs.FrequencyOf(f); freq < minFreq {
			minFreq = freq
		}
		if fr != nil && fr.IsInFrontier(f) {
			inFrontier = true
		}
	}
	w := 256 / (int(minFreq) + 1)
	if inFrontier {
		w *= frontierBoost
	}
	return w
}
