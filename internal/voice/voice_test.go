package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/control"
)

const testSampleRate = 48000

func TestPanLawCenterAndExtremes(t *testing.T) {
	l, r := panGains(0)
	assert.InDelta(t, 0.7079457843841379, l, 1e-9)
	assert.InDelta(t, 0.7079457843841379, r, 1e-9)

	l, r = panGains(1)
	assert.InDelta(t, 0.4158915687682758, l, 1e-9)
	assert.InDelta(t, 1.0, r, 1e-9)

	l, r = panGains(-1)
	assert.InDelta(t, 1.0, l, 1e-9)
	assert.InDelta(t, 0.4158915687682758, r, 1e-9)
}

func TestVoiceRunningReflectsEnvelopes(t *testing.T) {
	m := NewManager(testSampleRate)
	v := m.voices[0]
	assert.False(t, v.Running())
	v.Handle(control.Event{Kind: control.NoteOn, Key: 60, Velocity: 1.0})
	assert.True(t, v.Running())
}

// TestVoiceStealing mirrors spec scenario S4.
func TestVoiceStealing(t *testing.T) {
	m := NewManager(testSampleRate)
	for key := 0; key < MaxVoices; key++ {
		m.Handle(control.Event{Kind: control.NoteOn, Key: key, Velocity: 1.0})
	}
	assert.Equal(t, MaxVoices, len(m.queue))
	firstVoice := m.queue[0].voice

	m.Handle(control.Event{Kind: control.NoteOn, Key: 16, Velocity: 1.0})

	assert.Equal(t, MaxVoices, len(m.queue))
	last := m.queue[len(m.queue)-1]
	assert.Equal(t, firstVoice, last.voice)
	assert.Equal(t, 16, last.key)
}

func TestVolumeBelowFloorSilences(t *testing.T) {
	m := NewManager(testSampleRate)
	v := m.voices[0]
	v.Handle(control.Event{Kind: control.NoteOn, Key: 60, Velocity: 1.0})
	v.Handle(control.Event{Kind: control.Volume, Vector4: [4]float64{-100, -100, -100, -100}})

	for i := 0; i < 1000; i++ {
		frame := v.Tick()
		assert.Equal(t, 0.0, frame.L)
		assert.Equal(t, 0.0, frame.R)
	}
}

func TestFMRoutedByTargetID(t *testing.T) {
	v := New(testSampleRate, nil, nil)
	// nil tables/pitch are fine here: FM routing never touches them.
	v.Handle(control.Event{Kind: control.FM, ID: "OSC2", FMRow: [4]float64{0.1, 0.2, 0.3, 0.4}})
	// index 1 is the diagonal (self-feedback) entry and is attenuated on store.
	// The product is taken at run time in float64, as Handle does.
	diag := 0.2
	assert.Equal(t, [4]float64{0.1, diag * selfFeedbackAttenuation, 0.3, 0.4}, v.fm[1])
	assert.Equal(t, [4]float64{}, v.fm[0])
}
