// Package blob implements the self-delimiting append-only blob
// container used for every shard file: corpus, features, and the
// distilled corpus. Its framing is grounded on
// datatree/entryfile.go's MagicBytes + length + payload scheme, cut
// down to what an unbounded-length, single-content blob needs (no
// per-entry serial-number list, no magic-byte-collision rewriting —
// see DESIGN.md's Open Question note on why that machinery is
// unnecessary here).
package blob

import (
	"bytes"
	"encoding/binary"

	"github.com/mmcloughlin/meow"

	"github.com/moeing-labs/centifuzz/shardrng"
)

// frameMagic opens every frame. Distinct from any teacher magic value;
// chosen to be vanishingly unlikely to occur by accident in payload
// bytes, and it does not need to be unique even if it does, because
// framing here never searches the payload for it.
var frameMagic = [8]byte{0xCE, 0x47, 0x1F, 0xED, 0xED, 0x1F, 0x47, 0xCE}

const checksumSize = 4

// Frame is one decoded record from a packed blob stream, plus the
// stable content hash of its payload.
type Frame struct {
	Payload []byte
	Hash    string
}

// Pack frames a single blob so that concatenating any number of
// packed blobs yields a byte stream Unpack can always split back into
// the original sequence, stopping cleanly at the first truncated or
// corrupt frame (spec §4.1, §8 invariant 5).
func Pack(payload []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))

	out := make([]byte, 0, 8+n+len(payload)+checksumSize)
	out = append(out, frameMagic[:]...)
	out = append(out, lenBuf[:n]...)
	out = append(out, payload...)
	out = append(out, checksum(payload)...)
	return out
}

func checksum(payload []byte) []byte {
	h := meow.New32(0)
	_, _ = h.Write(payload)
	return h.Sum(nil)
}

// Unpack splits concat into the sequence of blobs originally passed to
// Pack, plus each blob's content hash. If concat is a strict prefix of
// a longer packed stream, Unpack recovers every complete frame it
// contains and reports consumed, the number of leading bytes of
// concat that belong to those complete frames — callers resuming a
// partial read use consumed as the next read offset.
func Unpack(concat []byte) (frames []Frame, consumed int) {
	off := 0
	for {
		f, n, ok := unpackOne(concat[off:])
		if !ok {
			return frames, off
		}
		frames = append(frames, f)
		off += n
	}
}

// CountFrames reports the "count of valid frames consumed" (spec §4.1
// failure mode) and the bytes they span. It decodes each frame through
// the same path as Unpack, payload copy and hash included, and
// discards the decoded frames.
func CountFrames(concat []byte) (count int, consumed int) {
	off := 0
	for {
		_, n, ok := unpackOne(concat[off:])
		if !ok {
			return count, off
		}
		count++
		off += n
	}
}

func unpackOne(b []byte) (f Frame, n int, ok bool) {
	if len(b) < 8 || !bytes.Equal(b[:8], frameMagic[:]) {
		return Frame{}, 0, false
	}
	length, ln := binary.Uvarint(b[8:])
	if ln <= 0 {
		return Frame{}, 0, false
	}
	start := 8 + ln
	remaining := len(b) - start
	if remaining < 0 || length > uint64(remaining) {
		return Frame{}, 0, false
	}
	end := start + int(length)
	csEnd := end + checksumSize
	if csEnd > len(b) {
		return Frame{}, 0, false
	}
	payload := b[start:end]
	if !bytes.Equal(checksum(payload), b[end:csEnd]) {
		return Frame{}, 0, false
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return Frame{Payload: out, Hash: shardrng.Hash(payload)}, csEnd, true
}
