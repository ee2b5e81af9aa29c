// Package shardio streams the append-only corpus and features files
// that make up a shard, and appends new records to them. It plays the
// role datatree/load.go plays for the teacher: read fixed-shape
// records from a file until the stream runs out, tolerating a
// truncated tail rather than treating it as corruption.
package shardio

import (
	"github.com/moeing-labs/centifuzz/shardrng"
)

// hashLen is the width of the hex-encoded content hash appended to
// every features-file record.
const hashLen = 40

// packFeatureRecord concatenates a feature vector (little-endian u64
// array) with the 40-byte hex hash of the input that produced it, per
// spec's feature-vector-plus-hash packing.
func packFeatureRecord(features []uint64, hash string) []byte {
	if len(hash) != hashLen {
		panic("shardio: hash must be exactly 40 hex characters")
	}
	body := shardrng.PackFeatures(features)
	out := make([]byte, 0, len(body)+hashLen)
	out = append(out, body...)
	out = append(out, hash...)
	return out
}

// parseFeatureRecord splits a features-file payload back into its
// feature vector and hash. ok is false if the payload is too short to
// even hold a hash, which the reader treats the same as a missing
// record.
func parseFeatureRecord(payload []byte) (features []uint64, hash string, ok bool) {
	if len(payload) < hashLen {
		return nil, "", false
	}
	split := len(payload) - hashLen
	if split%8 != 0 {
		return nil, "", false
	}
	hash = string(payload[split:])
	features = shardrng.UnpackFeatures(payload[:split])
	return features, hash, true
}
