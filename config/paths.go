package config

import (
	"path/filepath"
	"strconv"
)

// ShardPaths derives the well-known workdir file names for a given
// binary hash and shard index, per spec §6's work directory layout.
type ShardPaths struct {
	Corpus    string
	Features  string
	Distilled string
}

// Paths returns the shard file paths for shard index s under e's
// workdir, keyed by binaryHash (the content hash of the target
// binary, so switching binaries never mixes corpora).
func (e Environment) Paths(binaryHash string, s int) ShardPaths {
	return ShardPaths{
		Corpus:    filepath.Join(e.Workdir, corpusName(binaryHash, s)),
		Features:  filepath.Join(e.Workdir, featuresName(binaryHash, s)),
		Distilled: filepath.Join(e.Workdir, distilledName(binaryHash, s)),
	}
}

// MergePaths returns the shard file paths for our own shard index
// under an alternate workdir, used by the merge_from startup step.
func (e Environment) MergePaths(binaryHash string) ShardPaths {
	alt := Environment{Workdir: e.MergeFrom}
	return alt.Paths(binaryHash, e.MyShardIndex)
}

// CrashPath returns the path a reproducer for the given input hash
// should be written to.
func (e Environment) CrashPath(hash string) string {
	return filepath.Join(e.Workdir, "crashes", hash)
}

// CorpusDirMirrorPath returns where an accepted input should be
// mirrored under corpus_dir, one file per input keyed by its hash.
// Returns ok=false if corpus_dir mirroring is disabled.
func (e Environment) CorpusDirMirrorPath(hash string) (string, bool) {
	if e.CorpusDir == "" {
		return "", false
	}
	return filepath.Join(e.CorpusDir, hash), true
}

func corpusName(binaryHash string, s int) string {
	return join("corpus", binaryHash, s)
}

func featuresName(binaryHash string, s int) string {
	return join("features", binaryHash, s)
}

func distilledName(binaryHash string, s int) string {
	return "distilled-" + binaryHash + "." + strconv.Itoa(s)
}

func join(prefix, binaryHash string, s int) string {
	return prefix + "." + binaryHash + "." + strconv.Itoa(s)
}
