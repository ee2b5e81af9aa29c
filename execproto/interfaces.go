// Package execproto declares the collaborators the fuzzing engine treats
// as external: the target-execution callback and the remote/local file
// driver. Both are expressed as interfaces so a downstream build can
// swap in a different backend at construction time, the Go analogue of
// the teacher's weak-symbol override of its remote-file API.
package execproto

import "context"

// InputResult is one input's execution outcome inside a BatchResult.
type InputResult struct {
	Features []uint64
	CmpArgs  []byte
	// Log is whatever diagnostic text the target printed while running
	// this input. It has no fixed schema; the function filter is the
	// one grading step that reads it (spec §4.7 step 4), matching it
	// against the configured function-name substrings.
	Log string
}

// BatchResult is what Executor.Execute returns for a batch of inputs.
type BatchResult struct {
	Results            []InputResult
	ExitCode           int
	FailureDescription string
	Log                string
	// NumOutputsRead is how many results were durably recorded before
	// a failure interrupted the batch. Used to localize crashes: the
	// input at this index is the presumed crasher.
	NumOutputsRead int
}

// Executor runs a target binary on a batch of byte-array inputs and
// reports per-input coverage features plus exit status. It is the one
// suspension point the loop cannot avoid blocking on.
type Executor interface {
	Execute(ctx context.Context, binary string, inputs [][]byte) (BatchResult, bool)
}

// FileBackend is the {mkdir, open, append, read, close} surface the
// loop needs from a workdir. A local-disk implementation lives in
// storage/localfs; a remote filesystem is a drop-in replacement.
type FileBackend interface {
	Mkdir(path string) error
	Open(path string) (ReadHandle, error)
	Append(path string) (AppendHandle, error)
}

// ReadHandle supports streaming reads of a shard file, safe to call
// against a file another shard process is concurrently appending to.
type ReadHandle interface {
	ReadAll() ([]byte, error)
	Close() error
}

// AppendHandle is the single-writer append side of a shard file.
type AppendHandle interface {
	Append(b []byte) (offset int64, err error)
	Size() (int64, error)
	Sync() error
	Close() error
}
