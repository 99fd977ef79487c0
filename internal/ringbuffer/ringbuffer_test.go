package ringbuffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/stereo"
)

func TestFIFOOrder(t *testing.T) {
	rb := New(4)
	for i := 0; i < 4; i++ {
		rb.Write(stereo.Frame{L: float64(i)})
	}
	for i := 0; i < 4; i++ {
		f, ok := rb.Read()
		assert.True(t, ok)
		assert.Equal(t, float64(i), f.L)
	}
}

func TestWriteBlocksWhenFull(t *testing.T) {
	rb := New(1)
	rb.Write(stereo.Frame{L: 1})

	done := make(chan struct{})
	go func() {
		rb.Write(stereo.Frame{L: 2})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("write should have blocked on a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	rb.Read()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write did not unblock after space freed")
	}
}

func TestReadAvailableNeverBlocks(t *testing.T) {
	rb := New(8)
	got := rb.ReadAvailable(5)
	assert.Empty(t, got)

	rb.Write(stereo.Frame{L: 1})
	rb.Write(stereo.Frame{L: 2})
	got = rb.ReadAvailable(5)
	assert.Len(t, got, 2)
}

func TestCloseUnblocksReader(t *testing.T) {
	rb := New(1)
	done := make(chan bool)
	go func() {
		_, ok := rb.Read()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	rb.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after close")
	}
}
