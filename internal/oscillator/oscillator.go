// Package oscillator implements the band-limited wavetable oscillator
// described in spec §4.2: phase accumulation with external phase-modulation
// input, table selection by phase-increment ceiling, and the one-sample
// anti-click crossfade on discontinuous phase jumps.
package oscillator

import (
	"math"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/pitch"
	"github.com/voltaicsound/ytterbium/internal/wavetable"
)

// phaseJumpThreshold is the minimum |delta phase| treated as a discontinuity
// requiring the one-sample crossfade (spec §4.2, §9).
const phaseJumpThreshold = 0.01

// Osc is a single band-limited wavetable oscillator. It holds a shared
// reference to the wavetable set and the pitch-conversion table; both are
// immutable after construction and require no synchronization (spec §9).
type Osc struct {
	id string

	sampleRate float64
	tables     *wavetable.Set
	pitch      *pitch.Convert

	waveform    wavetable.Waveform
	phasor      float64 // the running phase accumulator, wraps via fractional part
	phaseOffset float64 // phase offset applied before lookup, set by FM
	prevOffset  float64
	dphi        float64
	transpose   int // octaves
	detuneHz    float64
	key         int

	lastSample  float64
	phaseJumped bool
	warm        bool // false until the first Tick after construction/Reset
}

// New constructs an oscillator for the given sample rate, sharing the
// wavetable set and pitch table with all other oscillators.
func New(id string, sampleRate int, tables *wavetable.Set, pc *pitch.Convert) *Osc {
	return &Osc{
		id:         id,
		sampleRate: float64(sampleRate),
		tables:     tables,
		pitch:      pc,
		waveform:   wavetable.Sine,
	}
}

// ID returns the oscillator's identity tag, e.g. "OSC1".
func (o *Osc) ID() string { return o.id }

// SetFreq sets dphi = f * 2^transpose / fs.
func (o *Osc) SetFreq(freqHz float64) {
	o.dphi = (freqHz * math.Pow(2, float64(o.transpose))) / o.sampleRate
}

// SetWaveform switches the active waveform.
func (o *Osc) SetWaveform(wf wavetable.Waveform) {
	o.waveform = wf
}

// SetPhase adds an externally supplied phase offset applied on the next
// tick. If the change from the previous offset exceeds phaseJumpThreshold,
// the next output sample is crossfaded with the last one to avoid a click.
// The very first call after construction or Reset never counts as a jump:
// there is no real previous output yet to click against.
func (o *Osc) SetPhase(delta float64) {
	if o.warm && math.Abs(delta-o.prevOffset) > phaseJumpThreshold {
		o.phaseJumped = true
	}
	o.phaseOffset = delta
	o.prevOffset = delta
}

// Reset clears phase and history state, used by tests that need a known
// starting point.
func (o *Osc) Reset() {
	o.phasor = 0
	o.phaseOffset = 0
	o.prevOffset = 0
	o.lastSample = 0
	o.phaseJumped = false
	o.warm = false
}

// Tick advances the phase accumulator by dphi and returns the next stereo
// frame. The caller (Voice) is responsible for applying level and pan; the
// sample is duplicated to both channels here.
func (o *Osc) Tick() (left, right float64) {
	phasor := frac(o.phasor + o.phaseOffset)
	tables := o.tables.Tables(o.waveform)
	tbl := wavetable.Select(tables, o.dphi)
	sample := tbl.Sample(phasor)

	if o.phaseJumped {
		sample = (o.lastSample + sample) / 2.0
		o.phaseJumped = false
	}

	o.phasor += o.dphi
	o.lastSample = sample
	o.warm = true
	return sample, sample
}

func frac(x float64) float64 {
	_, f := math.Modf(x)
	if f < 0 {
		f += 1.0
	}
	return f
}

// Handle applies a ControlEvent. NoteOn sets frequency from the key; the
// remaining ID-addressed events (Waveform, Phase, Transpose, Detune) apply
// only when ev.ID matches this oscillator's id.
func (o *Osc) Handle(ev control.Event) {
	switch ev.Kind {
	case control.NoteOn:
		o.key = ev.Key
		freq := o.pitch.KeyToHz(o.key) + o.detuneHz
		o.SetFreq(freq)
	case control.WaveformChange:
		if ev.ID == o.id {
			o.SetWaveform(ev.Waveform)
		}
	case control.Phase:
		if ev.ID == o.id {
			o.SetPhase(ev.PhaseOffset)
		}
	case control.Transpose:
		if ev.ID == o.id {
			o.transpose = ev.TransposeOctaves
		}
	case control.Detune:
		if ev.ID == o.id {
			o.applyDetune(ev.DetuneCents)
		}
	}
}

// applyDetune implements the original implementation's linear cent
// interpolation between the currently-held key and its lower/upper neighbor
// (supplemented from original_source/src/dsp/wavetable.rs, spec.md §6 leaves
// the exact interpolation unspecified).
func (o *Osc) applyDetune(cents int) {
	low := o.pitch.KeyToHz(o.key - 1)
	current := o.pitch.KeyToHz(o.key)
	high := o.pitch.KeyToHz(o.key + 1)

	var centHz float64
	if cents < 0 {
		centHz = (current - low) / 100.0
	} else {
		centHz = (high - current) / 100.0
	}
	o.detuneHz = float64(cents) * centHz
	o.SetFreq(current + o.detuneHz)
}
