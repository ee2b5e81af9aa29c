package shardio

import (
	"fmt"

	"github.com/moeing-labs/centifuzz/blob"
	"github.com/moeing-labs/centifuzz/execproto"
	"github.com/moeing-labs/centifuzz/shardrng"
)

// Writer appends new records to a shard's own corpus and features
// files in lockstep. Appends to either file are totally ordered
// within a shard (spec §5); Writer does not attempt to make the pair
// atomic across the two files, matching spec §4.1's requirement that
// readers tolerate any append-consistent prefix.
type Writer struct {
	corpus   *blob.Writer
	features *blob.Writer
}

// NewWriter opens (creating if necessary) the corpus and features
// files at the given paths for appending. Failure to open the
// shard's own files is a configuration error the shard cannot run
// without, so NewWriter panics rather than returning an error the
// caller could accidentally ignore (spec §7).
func NewWriter(fb execproto.FileBackend, corpusPath, featuresPath string) *Writer {
	corpus, err := blob.NewWriter(fb, corpusPath)
	if err != nil {
		panic(fmt.Sprintf("shardio: %v", err))
	}
	features, err := blob.NewWriter(fb, featuresPath)
	if err != nil {
		panic(fmt.Sprintf("shardio: %v", err))
	}
	return &Writer{corpus: corpus, features: features}
}

// Append records a newly admitted input: its raw bytes go to the
// corpus file, and its feature vector plus content hash go to the
// features file. Returns the input's content hash so the caller can
// use it for corpus_dir mirroring or crash reporting.
func (w *Writer) Append(input []byte, features []uint64) string {
	hash := shardrng.Hash(input)
	w.corpus.Append(input)
	w.features.Append(packFeatureRecord(features, hash))
	return hash
}

// AppendFeaturesOnly appends a features-file record for an input that
// is already present in the corpus file (used when re-executing
// to_rerun inputs discovered during a shard load, per spec §4.7 step
// 3, where only the features file needs the new record).
func (w *Writer) AppendFeaturesOnly(input []byte, features []uint64) {
	w.features.Append(packFeatureRecord(features, shardrng.Hash(input)))
}

// AppendCorpusOnly appends an input's raw bytes to the corpus file
// without touching the features file (used by merge_from, whose
// admitted inputs already have their features known or separately
// recovered via AppendFeaturesOnly during rerun, per spec §4.7 step 4).
func (w *Writer) AppendCorpusOnly(input []byte) {
	w.corpus.Append(input)
}

// Sync flushes both underlying files.
func (w *Writer) Sync() {
	w.corpus.Sync()
	w.features.Sync()
}

// Close closes both underlying files.
func (w *Writer) Close() {
	w.corpus.Close()
	w.features.Close()
}
