// Package flow implements the audio graph driver from spec §4.8: it owns
// the VoiceManager source, an ordered effect chain, and a chunked sink that
// hands stereo frames to the ring buffer.
package flow

import (
	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/dynamics"
	"github.com/voltaicsound/ytterbium/internal/filter"
	"github.com/voltaicsound/ytterbium/internal/ringbuffer"
	"github.com/voltaicsound/ytterbium/internal/stereo"
	"github.com/voltaicsound/ytterbium/internal/voice"
)

// ChunkSize is the implementation budget for the sink's buffered write
// granularity from spec §4.8.
const ChunkSize = 64

// Source is implemented by the VoiceManager.
type Source interface {
	control.Dispatchable
	Tick() stereo.Frame
}

// Flow drains pending control events then runs source -> filter ->
// limiter -> sink once per Tick.
type Flow struct {
	source *voice.Manager
	flt    *filter.Biquad
	limit  dynamics.SoftLimiter
	sink   *bufferSink
	events <-chan control.Event
}

// New wires a Flow around the given VoiceManager, reading pending events
// from events (spec §4.8: drained non-blocking between ticks) and pushing
// full chunks into rb.
func New(source *voice.Manager, flt *filter.Biquad, rb *ringbuffer.RingBuffer, events <-chan control.Event) *Flow {
	return &Flow{
		source: source,
		flt:    flt,
		sink:   newBufferSink(rb, ChunkSize),
		events: events,
	}
}

// Tick drains pending control events, then runs one sample through the
// source -> filter -> limiter -> sink chain (spec §4.8).
func (f *Flow) Tick() {
	f.drainEvents()
	s := f.source.Tick()
	s = f.flt.Tick(s)
	s = f.limit.Tick(s)
	f.sink.tick(s)
}

func (f *Flow) drainEvents() {
	for {
		select {
		case ev := <-f.events:
			f.source.Handle(ev)
			f.flt.Handle(ev)
		default:
			return
		}
	}
}

type bufferSink struct {
	rb     *ringbuffer.RingBuffer
	buf    []stereo.Frame
	pos    int
}

func newBufferSink(rb *ringbuffer.RingBuffer, chunkSize int) *bufferSink {
	return &bufferSink{rb: rb, buf: make([]stereo.Frame, chunkSize)}
}

func (s *bufferSink) tick(in stereo.Frame) {
	s.buf[s.pos] = in
	s.pos++
	if s.pos == len(s.buf) {
		s.rb.WriteBatch(s.buf)
		s.pos = 0
	}
}
