// Package ringbuffer implements the single-producer/single-consumer bounded
// stereo-frame queue from spec §3: producer blocks when full, consumer
// blocks when empty. No ring-buffer library is present anywhere in the
// example pack (original_source uses Rust's `rb` crate, which has no Go
// counterpart among the examples), so this is built on stdlib
// sync.Mutex/sync.Cond — the idiomatic Go rendition of a blocking SPSC
// queue (see DESIGN.md).
package ringbuffer

import (
	"sync"

	"github.com/voltaicsound/ytterbium/internal/stereo"
)

// DefaultCapacity is the implementation budget from spec §3.
const DefaultCapacity = 2048

// RingBuffer is a bounded blocking queue of stereo frames.
type RingBuffer struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf        []stereo.Frame
	head, tail int
	count      int
	closed     bool
}

// New constructs a ring buffer with the given slot capacity.
func New(capacity int) *RingBuffer {
	rb := &RingBuffer{buf: make([]stereo.Frame, capacity)}
	rb.notEmpty = sync.NewCond(&rb.mu)
	rb.notFull = sync.NewCond(&rb.mu)
	return rb
}

// Write blocks until there is room for frame, then enqueues it. Write
// after Close is a no-op.
func (rb *RingBuffer) Write(frame stereo.Frame) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for rb.count == len(rb.buf) && !rb.closed {
		rb.notFull.Wait()
	}
	if rb.closed {
		return
	}
	rb.buf[rb.tail] = frame
	rb.tail = (rb.tail + 1) % len(rb.buf)
	rb.count++
	rb.notEmpty.Signal()
}

// WriteBatch writes frames one at a time, preserving FIFO order across the
// whole batch (mirrors the original's chunked BufferSink flush).
func (rb *RingBuffer) WriteBatch(frames []stereo.Frame) {
	for _, f := range frames {
		rb.Write(f)
	}
}

// Read blocks until a frame is available, then dequeues it. The second
// return value is false only if the buffer was closed and drained.
func (rb *RingBuffer) Read() (stereo.Frame, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for rb.count == 0 && !rb.closed {
		rb.notEmpty.Wait()
	}
	if rb.count == 0 {
		return stereo.Frame{}, false
	}
	f := rb.buf[rb.head]
	rb.head = (rb.head + 1) % len(rb.buf)
	rb.count--
	rb.notFull.Signal()
	return f, true
}

// ReadAvailable drains up to max frames without blocking beyond what is
// already queued; it never waits for new data. Used by the audio callback
// to fill a driver-provided buffer up to max_frames (spec §6).
func (rb *RingBuffer) ReadAvailable(max int) []stereo.Frame {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	n := rb.count
	if n > max {
		n = max
	}
	out := make([]stereo.Frame, n)
	for i := 0; i < n; i++ {
		out[i] = rb.buf[rb.head]
		rb.head = (rb.head + 1) % len(rb.buf)
		rb.count--
	}
	if n > 0 {
		rb.notFull.Broadcast()
	}
	return out
}

// Close wakes any blocked reader/writer, turning further blocking calls
// into immediate no-ops/empty reads. Used during shutdown to unstick the
// DSP thread's final write.
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.notEmpty.Broadcast()
	rb.notFull.Broadcast()
}
