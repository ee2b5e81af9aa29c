package engine

import "github.com/moeing-labs/centifuzz/shardrng"

// permutation returns a Fisher-Yates shuffle of [0, n).
func permutation(n int, r *shardrng.RNG) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// peerShardIndex picks the next shard to absorb from, guaranteed
// different from my own index (spec §4.7 step 6): (my + 1 + rng() mod
// (N-1)) mod N.
func peerShardIndex(my, n int, r *shardrng.RNG) int {
	if n <= 1 {
		return my
	}
	return (my + 1 + r.Intn(n-1)) % n
}
