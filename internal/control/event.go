// Package control defines the ControlEvent taxonomy consumed by the core
// engine (spec §6) and the wire/device adapters that produce it.
package control

import "github.com/voltaicsound/ytterbium/internal/wavetable"

// Kind discriminates the ControlEvent sum type.
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	ADSR
	WaveformChange
	Volume
	Pan
	Phase
	Transpose
	Detune
	FM
	Filter
)

// FilterKind mirrors the filter.Kind selector values carried by a Filter
// ControlEvent; it is optional (a nil *FilterKind leaves the filter type
// untouched).
type FilterKind int

const (
	LowPass FilterKind = iota
	HighPass
	BandPass
	Notch
)

// Event is the ControlEvent sum type from spec §6. Only the fields relevant
// to Kind are populated; others are left zero.
type Event struct {
	Kind Kind

	// NoteOn / NoteOff
	Key      int
	Velocity float64

	// ADSR
	ID      string
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64

	// WaveformChange
	Waveform wavetable.Waveform

	// Volume: vector of 4 dB floats, one per oscillator
	// Pan: vector of 4 floats in [-1, 1], one per oscillator
	Vector4 [4]float64

	// Phase
	PhaseOffset float64

	// Transpose
	TransposeOctaves int

	// Detune
	DetuneCents int

	// FM: id of target oscillator, 4 row values
	FMRow [4]float64

	// Filter (partial update)
	FilterKind    *FilterKind
	FilterCutoff  *float64
	FilterQ       *float64
}

// Dispatchable is implemented by every component that reacts to
// ControlEvents: oscillators, envelopes, voices, the voice manager and the
// filter.
type Dispatchable interface {
	Handle(ev Event)
}
