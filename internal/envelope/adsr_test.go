package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/stereo"
)

const sr = 48000

func configure(a *ADSR, attack, decay, sustain, release float64) {
	a.Handle(control.Event{Kind: control.ADSR, ID: a.id, Attack: attack, Decay: decay, Sustain: sustain, Release: release})
}

// TestEnvelopeStateMachine mirrors spec scenario S1.
func TestEnvelopeStateMachine(t *testing.T) {
	a := New("ADSR-OSC1", sr)
	configure(a, 0.1, 0.3, stereo.FromDB(-16), 2.0)
	a.Handle(control.Event{Kind: control.NoteOn, Velocity: 1.0})

	ticks := int(0.1*sr) + 1
	var last float64
	for i := 0; i < ticks; i++ {
		last = a.Tick()
	}
	assert.Equal(t, Decay, a.State())
	_ = last

	ticks = int(0.3*sr) + 1
	for i := 0; i < ticks; i++ {
		last = a.Tick()
	}
	assert.Equal(t, Sustain, a.State())
	assert.InDelta(t, stereo.FromDB(-16), last, 0.02)

	a.Handle(control.Event{Kind: control.NoteOff})
	ticks = int(2.0*sr) + 1
	for i := 0; i < ticks; i++ {
		a.Tick()
	}
	assert.Equal(t, Off, a.State())
	assert.Equal(t, 0.0, a.Tick())
}

// TestEnvelopeShortTimes mirrors spec scenario S2.
func TestEnvelopeShortTimes(t *testing.T) {
	a := New("ADSR-OSC1", sr)
	configure(a, 0.01, 0.01, stereo.FromDB(-16), 0.01)
	a.Handle(control.Event{Kind: control.NoteOn, Velocity: 1.0})

	attackTicks := int(0.01 * sr)
	var last float64
	for i := 0; i < attackTicks; i++ {
		last = a.Tick()
	}
	assert.InDelta(t, stereo.FromDB(-3), last, 0.02)

	// advance through decay into sustain then release
	for a.State() != Sustain {
		a.Tick()
	}
	a.Handle(control.Event{Kind: control.NoteOff})
	for a.State() == Release {
		v := a.Tick()
		// The tick that exhausts the Release budget already switches to Off
		// and returns Off's 0; every tick that stays in Release is positive.
		if a.State() == Release {
			assert.Greater(t, v, 0.0)
		}
	}
	assert.Equal(t, Off, a.State())
}

func TestOffStaysZeroForever(t *testing.T) {
	a := New("ADSR-OSC1", sr)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 0.0, a.Tick())
	}
}

func TestRepeatedADSREventIsIdempotent(t *testing.T) {
	a1 := New("ADSR-OSC1", sr)
	a2 := New("ADSR-OSC1", sr)
	configure(a1, 0.05, 0.1, 0.5, 0.2)
	configure(a2, 0.05, 0.1, 0.5, 0.2)
	configure(a2, 0.05, 0.1, 0.5, 0.2) // sent twice

	a1.Handle(control.Event{Kind: control.NoteOn, Velocity: 0.8})
	a2.Handle(control.Event{Kind: control.NoteOn, Velocity: 0.8})

	for i := 0; i < 10000; i++ {
		assert.Equal(t, a1.Tick(), a2.Tick())
	}
}
