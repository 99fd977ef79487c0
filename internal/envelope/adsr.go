// Package envelope implements the one-pole ADSR envelope generator from
// spec §4.3.
package envelope

import (
	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/stereo"
)

// State is one of the five ADSR stages.
type State int

const (
	Attack State = iota
	Decay
	Sustain
	Release
	Off
)

func (s State) next() State {
	switch s {
	case Attack:
		return Decay
	case Decay:
		return Sustain
	case Sustain:
		return Release
	default:
		return Off
	}
}

// ADSR is a first-order one-pole envelope smoother. See spec §4.3 for the
// gain constants and transition rules.
type ADSR struct {
	id         string
	sampleRate float64

	attackTime, attackPeak float64
	decayTime              float64
	sustainLevel           float64
	releaseTime            float64

	state      State
	ticksLeft  int
	gain       float64
	level      float64
	targetLvl  float64
	velocity   float64
}

// New returns an ADSR with the teacher-style defaults from the original
// implementation (attack 50ms to -3dB, decay 250ms, sustain -12dB, release
// 1.5s), addressed by id (e.g. "ADSR-OSC1").
func New(id string, sampleRate int) *ADSR {
	return &ADSR{
		id:           id,
		sampleRate:   float64(sampleRate),
		attackTime:   0.05,
		attackPeak:   stereo.FromDB(-3.0),
		decayTime:    0.25,
		sustainLevel: stereo.FromDB(-12.0),
		releaseTime:  1.5,
		state:        Off,
		targetLvl:    1.0,
	}
}

// State returns the current ADSR stage.
func (a *ADSR) State() State { return a.state }

// Tick advances the envelope by one sample and returns velocity * level.
// On exhausted budget, the stage transitions, gain is recomputed, and the
// *new* stage's first sample is produced within the same tick — no
// dead-stage sample is ever emitted (spec §9 Open Question).
func (a *ADSR) Tick() float64 {
	if a.state != Off && a.state != Sustain && a.ticksLeft == 0 {
		a.transition(a.state.next())
	}
	switch a.state {
	case Off:
		return 0.0
	case Sustain:
		return a.velocity * a.level
	default:
		a.level = a.targetLvl*a.gain + (1.0-a.gain)*a.level
		a.ticksLeft--
		return a.velocity * a.level
	}
}

func (a *ADSR) transition(state State) {
	if state == a.state {
		return
	}
	a.state = state
	switch state {
	case Attack:
		a.ticksLeft = budget(a.attackTime, a.sampleRate)
		a.gain = gainFor(4.0, a.ticksLeft)
		a.targetLvl = a.attackPeak
	case Decay:
		a.ticksLeft = budget(a.decayTime, a.sampleRate)
		a.gain = gainFor(4.0, a.ticksLeft)
		a.targetLvl = a.sustainLevel
	case Release:
		a.ticksLeft = budget(a.releaseTime, a.sampleRate)
		a.gain = gainFor(8.0, a.ticksLeft)
		a.targetLvl = 0.0
	case Sustain, Off:
		// Sustain is stationary; Off holds zero output.
	}
}

func budget(t, sampleRate float64) int {
	return int(t * sampleRate)
}

func gainFor(numerator float64, ticks int) float64 {
	if ticks <= 0 {
		return 1.0
	}
	return numerator / float64(ticks)
}

// Handle applies NoteOn (retrigger into Attack, set velocity gain), NoteOff
// (Release) and ADSR parameter updates addressed to this envelope's id.
func (a *ADSR) Handle(ev control.Event) {
	switch ev.Kind {
	case control.NoteOn:
		a.transition(Attack)
		a.state = Attack // force retrigger even if already in Attack
		a.ticksLeft = budget(a.attackTime, a.sampleRate)
		a.gain = gainFor(4.0, a.ticksLeft)
		a.targetLvl = a.attackPeak
		a.velocity = stereo.FromDB((1.0 - ev.Velocity) * -30.0)
	case control.NoteOff:
		a.transition(Release)
	case control.ADSR:
		if ev.ID != a.id {
			return
		}
		a.attackTime = ev.Attack
		a.decayTime = ev.Decay
		a.sustainLevel = ev.Sustain
		a.releaseTime = ev.Release
	}
}
