// Package localfs is the one concrete execproto.FileBackend shipped
// in this repo: a thin wrapper over the local filesystem. Grounded on
// datatree/load.go's direct os.Open/os.Mkdir usage; a remote
// filesystem driver is out of scope (spec §1) but is a drop-in
// replacement for this type at construction time (spec §9's
// weak-symbol note).
package localfs

import (
	"os"
	"path/filepath"

	"github.com/moeing-labs/centifuzz/execproto"
)

// Backend roots every path under Root.
type Backend struct {
	Root string
}

// New returns a Backend rooted at root, creating root if absent.
func New(root string) (*Backend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Backend{Root: root}, nil
}

// resolve scopes a relative path under Root; an absolute path (as
// config.Environment.Paths produces, since workdir is itself
// typically absolute) passes through unchanged. This is what lets
// merge_from address a shard file under a different workdir than the
// one this Backend was constructed with.
func (b *Backend) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.Root, path)
}

func (b *Backend) Mkdir(path string) error {
	return os.MkdirAll(b.resolve(path), 0o755)
}

func (b *Backend) Open(path string) (execproto.ReadHandle, error) {
	f, err := os.Open(b.resolve(path))
	if os.IsNotExist(err) {
		return emptyReadHandle{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileReadHandle{f: f}, nil
}

func (b *Backend) Append(path string) (execproto.AppendHandle, error) {
	if err := os.MkdirAll(filepath.Dir(b.resolve(path)), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(b.resolve(path), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileAppendHandle{f: f}, nil
}

type fileReadHandle struct{ f *os.File }

func (h *fileReadHandle) ReadAll() ([]byte, error) {
	if _, err := h.f.Seek(0, 0); err != nil {
		return nil, err
	}
	return readAllFrom(h.f)
}

func (h *fileReadHandle) Close() error { return h.f.Close() }

type emptyReadHandle struct{}

func (emptyReadHandle) ReadAll() ([]byte, error) { return nil, nil }
func (emptyReadHandle) Close() error             { return nil }

type fileAppendHandle struct{ f *os.File }

func (h *fileAppendHandle) Append(b []byte) (int64, error) {
	off, err := h.f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, err
	}
	if _, err := h.f.Write(b); err != nil {
		return 0, err
	}
	return off, nil
}

func (h *fileAppendHandle) Size() (int64, error) {
	info, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (h *fileAppendHandle) Sync() error  { return h.f.Sync() }
func (h *fileAppendHandle) Close() error { return h.f.Close() }

func readAllFrom(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, info.Size())
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			break
		}
	}
	return buf[:total], nil
}
