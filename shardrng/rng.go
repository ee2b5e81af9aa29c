// Package shardrng provides the deterministic PRNG, content hashing and
// little-endian packing helpers shared by the rest of centifuzz. It plays
// the same low-level, no-nonsense role datatree/hasher.go plays for the
// teacher: small, allocation-light, and the one place every other package
// reaches for a random draw or a stable digest.
package shardrng

import (
	"encoding/hex"

	sha256 "github.com/minio/sha256-simd"
)

// nonZeroFallback is substituted for a caller-supplied seed of zero.
// Seeds are never zero: a zero xorshift128+ state never advances.
const nonZeroFallback = 0x9e3779b97f4a7c15

// RNG is a seedable, non-cryptographic PRNG with 128 bits of state and
// a period of at least 2^64 for either half. Two RNGs constructed from
// the same seed produce identical sequences, which is what lets a
// shard's mutation choices be replayed byte-for-byte from its seed.
type RNG struct {
	s0, s1 uint64
}

// New constructs an RNG from seed, splitting it into two lanes with
// splitmix64 so that nearby seeds do not produce correlated streams.
func New(seed uint64) *RNG {
	if seed == 0 {
		seed = nonZeroFallback
	}
	sm := seed
	next := func() uint64 {
		sm += 0x9e3779b97f4a7c15
		z := sm
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	r := &RNG{s0: next(), s1: next()}
	if r.s0 == 0 && r.s1 == 0 {
		r.s1 = nonZeroFallback
	}
	return r
}

// Next returns the next pseudo-random 64-bit value (xorshift128+).
func (r *RNG) Next() uint64 {
	x, y := r.s0, r.s1
	r.s0 = y
	x ^= x << 23
	x ^= x >> 17
	x ^= y ^ (y >> 26)
	r.s1 = x
	return x + y
}

// Intn returns a pseudo-random integer in [0, n). Panics if n <= 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("shardrng: Intn called with n <= 0")
	}
	return int(r.Next() % uint64(n))
}

// Bool returns true with probability num/den.
func (r *RNG) Bool(num, den int) bool {
	if den <= 0 {
		return false
	}
	return r.Intn(den) < num
}

// Float64 returns a pseudo-random value in [0, 1).
func (r *RNG) Float64() float64 {
	// 53 bits of mantissa, matching math/rand's convention.
	return float64(r.Next()>>11) / (1 << 53)
}

// Bytes fills and returns a slice of n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i += 8 {
		v := r.Next()
		for j := 0; j < 8 && i+j < n; j++ {
			out[i+j] = byte(v >> (8 * uint(j)))
		}
	}
	return out
}

// hashSize is chosen so Hash always renders as exactly 40 hex chars,
// matching spec's "any stable 40-hex-char function" requirement. We
// get there by truncating a real cryptographic digest (sha256-simd,
// the teacher's own hash of choice) to 20 bytes rather than adopting
// a different algorithm outright.
const hashSize = 20

// Hash returns a stable 40-hex-char digest of b.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:hashSize])
}
