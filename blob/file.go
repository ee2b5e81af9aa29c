package blob

import (
	"fmt"

	"github.com/moeing-labs/centifuzz/execproto"
)

// Writer appends packed blobs to a single shard file. Per spec §5, a
// shard file has exactly one writer for its whole lifetime; an I/O
// failure here is a fatal assertion (spec §7), so Append panics
// rather than returning an error the loop could accidentally ignore.
type Writer struct {
	h execproto.AppendHandle
}

// NewWriter opens path for appending via fb, creating it if absent.
func NewWriter(fb execproto.FileBackend, path string) (*Writer, error) {
	h, err := fb.Append(path)
	if err != nil {
		return nil, fmt.Errorf("blob: open append handle for %s: %w", path, err)
	}
	return &Writer{h: h}, nil
}

// Append packs payload and appends the frame, returning the byte
// offset the frame starts at.
func (w *Writer) Append(payload []byte) int64 {
	off, err := w.h.Size()
	if err != nil {
		panic(fmt.Sprintf("blob: own-shard append failed (size): %v", err))
	}
	if _, err := w.h.Append(Pack(payload)); err != nil {
		panic(fmt.Sprintf("blob: own-shard append failed: %v", err))
	}
	return off
}

// Sync flushes durably. Fatal on failure per §7's own-shard write
// durability requirement.
func (w *Writer) Sync() {
	if err := w.h.Sync(); err != nil {
		panic(fmt.Sprintf("blob: own-shard sync failed: %v", err))
	}
}

// Close releases the underlying handle.
func (w *Writer) Close() error {
	return w.h.Close()
}

// ReadAllFrames reads the whole file at path (which may be growing
// under a concurrent writer in another process) and returns every
// complete frame currently in it, silently ignoring a trailing
// truncated frame per spec §4.1.
func ReadAllFrames(fb execproto.FileBackend, path string) ([]Frame, error) {
	h, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	raw, err := h.ReadAll()
	if err != nil {
		return nil, err
	}
	frames, _ := Unpack(raw)
	return frames, nil
}
