package shardio

import (
	"github.com/moeing-labs/centifuzz/blob"
	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/shardrng"
)

// Callback receives one corpus entry during ReadShard. features is
// nil when the input's hash was not found in the features file,
// signaling that the caller must re-execute the input to recover its
// coverage.
type Callback func(input []byte, features []uint64)

// ReadShard implements the shard reader (spec §4.6): it loads the
// features file fully into a hash -> feature-vector map, then streams
// the corpus file frame by frame, looking up each input's features by
// its content hash. A features file that does not exist yet (a fresh
// shard) is treated as empty, not an error.
func ReadShard(fb execproto.FileBackend, corpusPath, featuresPath string, fn Callback) error {
	byHash, err := loadFeatureIndex(fb, featuresPath)
	if err != nil {
		return err
	}

	frames, err := blob.ReadAllFrames(fb, corpusPath)
	if err != nil {
		return err
	}
	for _, fr := range frames {
		fv := byHash[shardrng.Hash(fr.Payload)]
		fn(fr.Payload, fv)
	}
	return nil
}

// loadFeatureIndex reads the whole features file into memory. Records
// that fail to parse (malformed length, truncated tail) are skipped;
// per spec §7, a partial/corrupt shard file is absorbed by the
// reader rather than treated as fatal.
func loadFeatureIndex(fb execproto.FileBackend, featuresPath string) (map[string][]uint64, error) {
	frames, err := blob.ReadAllFrames(fb, featuresPath)
	if err != nil {
		return nil, err
	}
	byHash := make(map[string][]uint64, len(frames))
	for _, fr := range frames {
		features, hash, ok := parseFeatureRecord(fr.Payload)
		if !ok {
			continue
		}
		byHash[hash] = features
	}
	return byHash, nil
}
