// Package voice implements the polyphonic voice model from spec §4.4–4.5:
// a single Voice (4 oscillators, 4 envelopes, an FM matrix and per-oscillator
// pan/level) and the VoiceManager that allocates and steals voices.
package voice

import (
	"math"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/envelope"
	"github.com/voltaicsound/ytterbium/internal/oscillator"
	"github.com/voltaicsound/ytterbium/internal/pitch"
	"github.com/voltaicsound/ytterbium/internal/stereo"
	"github.com/voltaicsound/ytterbium/internal/wavetable"
)

// OscCount is the fixed oscillator/envelope/FM-matrix dimension per voice.
const OscCount = 4

// selfFeedbackAttenuation scales the FM matrix diagonal, applied once when
// the row is stored in Handle so the matrix is safe to use raw in Tick
// (spec §4.4, §9).
const selfFeedbackAttenuation = 0.1

// Voice owns 4 oscillators, 4 envelopes, 4 levels, 4 pans and a 4x4 FM
// matrix (row i, column j = amount by which oscillator j modulates
// oscillator i's phase).
type Voice struct {
	oscillators [OscCount]*oscillator.Osc
	envelopes   [OscCount]*envelope.ADSR
	levels      [OscCount]float64
	pans        [OscCount]float64
	fm          [OscCount][OscCount]float64

	sVals [OscCount]float64
}

// New constructs a voice sharing the wavetable set and pitch table with
// every other voice (spec §3 Ownership).
func New(sampleRate int, tables *wavetable.Set, pc *pitch.Convert) *Voice {
	v := &Voice{}
	for i := 0; i < OscCount; i++ {
		id := oscID(i)
		v.oscillators[i] = oscillator.New(id, sampleRate, tables, pc)
		v.envelopes[i] = envelope.New(adsrID(i), sampleRate)
		v.levels[i] = 1.0
	}
	return v
}

func oscID(i int) string  { return "OSC" + string(rune('1'+i)) }
func adsrID(i int) string { return "ADSR-" + oscID(i) }

// Running reports true iff any envelope stage is not Off.
func (v *Voice) Running() bool {
	for i := 0; i < OscCount; i++ {
		if v.envelopes[i].State() != envelope.Off {
			return true
		}
	}
	return false
}

// Tick runs the per-voice algorithm from spec §4.4: sum the oscillator/
// envelope products into a pan/level-weighted frame, then compute and
// apply next tick's FM phase offsets. The FM matrix diagonal is already
// attenuated at Handle time, so this loop sums it raw.
func (v *Voice) Tick() stereo.Frame {
	var frame stereo.Frame
	for i := 0; i < OscCount; i++ {
		l, _ := v.oscillators[i].Tick()
		s := l * v.envelopes[i].Tick()
		v.sVals[i] = s

		pl, pr := panGains(v.pans[i])
		frame.L += s * v.levels[i] * pl
		frame.R += s * v.levels[i] * pr
	}
	for i := 0; i < OscCount; i++ {
		var phase float64
		for j := 0; j < OscCount; j++ {
			phase += v.sVals[j] * v.fm[i][j]
		}
		v.oscillators[i].SetPhase(phase)
	}
	return frame
}

// panGains implements the quadratic pan law of spec §4.4 / S5.
func panGains(p float64) (left, right float64) {
	if p == 0 {
		return stereo.MinusThreeDB, stereo.MinusThreeDB
	}
	p2 := p * p
	delta := p2 * (1.0 - stereo.MinusThreeDB) * sign(p)
	left = stereo.MinusThreeDB - delta
	right = stereo.MinusThreeDB + delta
	return
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1.0
	case x < 0:
		return -1.0
	default:
		return 0.0
	}
}

// Handle applies Volume/Pan/FM at the Voice level (spec §4.4 Routing of
// events); every other event is broadcast to all oscillators and envelopes.
func (v *Voice) Handle(ev control.Event) {
	switch ev.Kind {
	case control.Volume:
		for i := 0; i < OscCount; i++ {
			db := ev.Vector4[i]
			if db < -60.0 {
				v.levels[i] = 0.0
			} else {
				v.levels[i] = stereo.FromDB(db)
			}
		}
		return
	case control.Pan:
		for i := 0; i < OscCount; i++ {
			v.pans[i] = clamp(ev.Vector4[i], -1.0, 1.0)
		}
		return
	case control.FM:
		for i := 0; i < OscCount; i++ {
			if oscID(i) == ev.ID {
				row := ev.FMRow
				row[i] *= selfFeedbackAttenuation
				v.fm[i] = row
				return
			}
		}
		return
	}
	for i := 0; i < OscCount; i++ {
		v.envelopes[i].Handle(ev)
		v.oscillators[i].Handle(ev)
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
