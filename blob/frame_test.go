package blob

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	inputs := [][]byte{{0xAA, 0xBB}, {}, {0x01, 0x02, 0x03}}
	var concat []byte
	for _, in := range inputs {
		concat = append(concat, Pack(in)...)
	}
	frames, consumed := Unpack(concat)
	require.Len(t, frames, 3)
	assert.Equal(t, len(concat), consumed)
	for i, in := range inputs {
		assert.True(t, bytes.Equal(in, frames[i].Payload))
		assert.Len(t, frames[i].Hash, 40)
	}
}

func TestUnpackPartialRead(t *testing.T) {
	inputs := [][]byte{{0xAA, 0xBB}, {}, {0x01, 0x02, 0x03}}
	var concat []byte
	for _, in := range inputs {
		concat = append(concat, Pack(in)...)
	}
	truncated := concat[:len(concat)-2]
	frames, consumed := Unpack(truncated)
	require.Len(t, frames, 2)
	assert.True(t, consumed < len(truncated))
	assert.Equal(t, inputs[0], frames[0].Payload)
	assert.Equal(t, inputs[1], frames[1].Payload)
}

func TestUnpackEmpty(t *testing.T) {
	frames, consumed := Unpack(nil)
	assert.Empty(t, frames)
	assert.Equal(t, 0, consumed)
}

func TestUnpackCorruptChecksum(t *testing.T) {
	packed := Pack([]byte("hello"))
	packed[len(packed)-1] ^= 0xFF // flip a checksum bit
	frames, consumed := Unpack(packed)
	assert.Empty(t, frames)
	assert.Equal(t, 0, consumed)
}

func TestCountFrames(t *testing.T) {
	var concat []byte
	for i := 0; i < 5; i++ {
		concat = append(concat, Pack([]byte{byte(i)})...)
	}
	count, consumed := CountFrames(concat)
	assert.Equal(t, 5, count)
	assert.Equal(t, len(concat), consumed)
}

// FuzzPackUnpack exercises the round-trip and no-panic invariants the
// way the teacher's datatree/fuzz and store/fuzz harnesses exercise
// their own append-only formats, using Go's native fuzzing engine
// instead of the teacher's RANDFILE-driven one.
func FuzzPackUnpack(f *testing.F) {
	f.Add([]byte("seed"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, payload []byte) {
		packed := Pack(payload)
		frames, consumed := Unpack(packed)
		require.Len(t, frames, 1)
		assert.Equal(t, len(packed), consumed)
		assert.True(t, bytes.Equal(payload, frames[0].Payload))
	})
}

// FuzzUnpackNeverPanics feeds arbitrary garbage through Unpack: a
// corrupt or truncated stream must be reported via the returned frame
// count, never via a panic (spec §4.1 failure mode).
func FuzzUnpackNeverPanics(f *testing.F) {
	f.Add(Pack([]byte("ok")))
	f.Fuzz(func(t *testing.T, garbage []byte) {
		assert.NotPanics(t, func() {
			Unpack(garbage)
		})
	})
}
