package voice

import (
	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/pitch"
	"github.com/voltaicsound/ytterbium/internal/stereo"
	"github.com/voltaicsound/ytterbium/internal/wavetable"
)

// MaxVoices is the implementation budget from spec §3.
const MaxVoices = 16

type queuedNote struct {
	key   int
	voice int
}

// Manager is the fixed-size voice pool with FIFO note-stealing allocation
// (spec §4.5).
type Manager struct {
	voices []*Voice
	queue  []queuedNote
}

// NewManager builds the wavetable set and pitch table once, then shares
// them read-only across every voice (spec §3 Ownership). It never touches
// disk; use NewManagerWithCache to consult the optional wavetable cache.
func NewManager(sampleRate int) *Manager {
	return newManager(sampleRate, wavetable.Build(sampleRate))
}

// NewManagerWithCache is NewManager but builds the wavetable set via
// wavetable.BuildOrLoad, consulting cacheDir as an on-disk cache (spec
// §4.1's optional cache). cacheDir == "" disables caching, matching
// BuildOrLoad's own convention.
func NewManagerWithCache(sampleRate int, cacheDir string) *Manager {
	return newManager(sampleRate, wavetable.BuildOrLoad(sampleRate, cacheDir))
}

func newManager(sampleRate int, tables *wavetable.Set) *Manager {
	pc := pitch.New()
	m := &Manager{
		voices: make([]*Voice, MaxVoices),
		queue:  make([]queuedNote, 0, MaxVoices),
	}
	for i := range m.voices {
		m.voices[i] = New(sampleRate, tables, pc)
	}
	return m
}

func (m *Manager) freeVoice() (int, bool) {
	for i, v := range m.voices {
		if !v.Running() {
			return i, true
		}
	}
	return 0, false
}

// Tick sums the outputs of all currently running voices (spec §4.5).
func (m *Manager) Tick() stereo.Frame {
	var out stereo.Frame
	for _, v := range m.voices {
		if v.Running() {
			out = out.Add(v.Tick())
		}
	}
	return out
}

// Handle implements the allocation, release and broadcast policies of
// spec §4.5.
func (m *Manager) Handle(ev control.Event) {
	switch ev.Kind {
	case control.NoteOn:
		if idx, ok := m.freeVoice(); ok {
			m.queue = append(m.queue, queuedNote{key: ev.Key, voice: idx})
			m.voices[idx].Handle(ev)
			return
		}
		old := m.queue[0]
		m.queue = m.queue[1:]
		m.voices[old.voice].Handle(ev)
		m.queue = append(m.queue, queuedNote{key: ev.Key, voice: old.voice})
	case control.NoteOff:
		for _, qn := range m.queue {
			if qn.key == ev.Key {
				m.voices[qn.voice].Handle(ev)
			}
		}
	default:
		for _, v := range m.voices {
			v.Handle(ev)
		}
	}
}
