package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/filter"
	"github.com/voltaicsound/ytterbium/internal/ringbuffer"
	"github.com/voltaicsound/ytterbium/internal/stereo"
	"github.com/voltaicsound/ytterbium/internal/voice"
)

const testSampleRate = 48000

func TestFlowProducesChunkedOutput(t *testing.T) {
	events := make(chan control.Event, 8)
	rb := ringbuffer.New(ringbuffer.DefaultCapacity)
	f := New(voice.NewManager(testSampleRate), filter.New(testSampleRate), rb, events)

	events <- control.Event{Kind: control.NoteOn, Key: 60, Velocity: 1.0}

	for i := 0; i < ChunkSize; i++ {
		f.Tick()
	}

	got := rb.ReadAvailable(ChunkSize)
	assert.Len(t, got, ChunkSize)
}

func TestFlowAppliesFilterEventsDuringDrain(t *testing.T) {
	events := make(chan control.Event, 8)
	rb := ringbuffer.New(ringbuffer.DefaultCapacity)
	flt := filter.New(testSampleRate)
	f := New(voice.NewManager(testSampleRate), flt, rb, events)

	cutoff := 200.0
	events <- control.Event{Kind: control.Filter, FilterCutoff: &cutoff}
	f.Tick()

	// No voice is running, so the shared filter has only seen silence and
	// must now respond exactly like a fresh filter given the same cutoff.
	want := filter.New(testSampleRate)
	want.Handle(control.Event{Kind: control.Filter, FilterCutoff: &cutoff})
	in := stereo.Frame{L: 1, R: 1}
	assert.Equal(t, want.Tick(in), flt.Tick(in))
}
