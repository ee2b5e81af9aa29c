package feature

// DefaultFrequencyThreshold is the saturating counter value at which
// a feature is considered "frequent" and stripped from further
// feature vectors, absent an explicit env override.
const DefaultFrequencyThreshold uint8 = 32

// Set is the process-wide feature -> saturating-counter frequency
// table. Frequencies never decrease during a run (spec §3 invariant
// (c)); the zero-value counter, meaning "never observed", is
// represented by the feature's simple absence from the map.
type Set struct {
	freq      map[uint64]uint8
	threshold uint8
}

// NewSet returns an empty Set with the given frequent-feature
// threshold.
func NewSet(threshold uint8) *Set {
	if threshold == 0 {
		threshold = DefaultFrequencyThreshold
	}
	return &Set{freq: make(map[uint64]uint8), threshold: threshold}
}

// FrequencyOf returns a feature's current saturating count (0 if
// never observed).
func (s *Set) FrequencyOf(f uint64) uint8 {
	return s.freq[f]
}

// CountUnseenAndPruneFrequent removes from fv every feature whose
// frequency has already reached the threshold, and reports whether
// any feature remaining in fv has never been observed (frequency 0).
// This is the admission test: an input is worth keeping only if it
// still carries an unseen, non-frequent feature (spec §3 invariants
// (a)/(b)).
func (s *Set) CountUnseenAndPruneFrequent(fv *[]uint64) bool {
	kept := (*fv)[:0]
	sawUnseen := false
	for _, f := range *fv {
		if s.freq[f] >= s.threshold {
			continue
		}
		kept = append(kept, f)
		if s.freq[f] == 0 {
			sawUnseen = true
		}
	}
	*fv = kept
	return sawUnseen
}

// IncrementFrequencies increments the saturating counter for every
// feature in fv. Call only after CountUnseenAndPruneFrequent, per
// spec §4.5.
func (s *Set) IncrementFrequencies(fv []uint64) {
	for _, f := range fv {
		if s.freq[f] < s.threshold {
			s.freq[f]++
		}
	}
}

// Size returns the number of distinct features with frequency >= 1.
func (s *Set) Size() int {
	return len(s.freq)
}

// ToCoveragePCs returns the PC indices recovered from every observed
// 8-bit-counter feature.
func (s *Set) ToCoveragePCs() []uint64 {
	pcs := make([]uint64, 0, len(s.freq))
	for f := range s.freq {
		if pc, ok := ToPC(f); ok {
			pcs = append(pcs, pc)
		}
	}
	return pcs
}

// CountFeatures returns how many distinct features have been
// observed within domain d.
func (s *Set) CountFeatures(d Domain) int {
	n := 0
	for f := range s.freq {
		dom, _ := Decode(f)
		if dom == d {
			n++
		}
	}
	return n
}
