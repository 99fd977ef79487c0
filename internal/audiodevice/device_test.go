package audiodevice

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/ringbuffer"
	"github.com/voltaicsound/ytterbium/internal/stereo"
)

func TestReadFillsFromRingBuffer(t *testing.T) {
	rb := ringbuffer.New(8)
	rb.Write(stereo.Frame{L: 0.5, R: -0.5})
	r := NewStreamReader(rb, nil)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)

	l := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	right := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	assert.InDelta(t, 0.5, l, 1e-6)
	assert.InDelta(t, -0.5, right, 1e-6)
}

func TestReadZeroFillsOnUnderflow(t *testing.T) {
	rb := ringbuffer.New(8)
	rb.Write(stereo.Frame{L: 1, R: 1})

	var missing int
	r := NewStreamReader(rb, func(n int) { missing = n })

	buf := make([]byte, 8*3) // request 3 frames, only 1 available
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 2, missing)

	l := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, float32(0), l)
}
