package shardrng

import "encoding/binary"

// PackFeatures serializes a feature vector as a little-endian u64
// array, the format used for both in-memory transfer and the features
// shard file (spec §6).
func PackFeatures(fv []uint64) []byte {
	out := make([]byte, 8*len(fv))
	for i, f := range fv {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], f)
	}
	return out
}

// UnpackFeatures is the inverse of PackFeatures. b's length must be a
// multiple of 8; a short trailing remainder is ignored.
func UnpackFeatures(b []byte) []uint64 {
	n := len(b) / 8
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return out
}
