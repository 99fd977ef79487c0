// Package filter implements the RBJ cookbook biquad filter from spec §4.6:
// LowPass, HighPass, BandPass and Notch, sharing a Direct-Form-II-transposed
// state update across both channels.
package filter

import (
	"math"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/stereo"
)

// Kind selects the filter response.
type Kind int

const (
	LowPass Kind = iota
	HighPass
	BandPass
	Notch
)

// Biquad is a stereo RBJ cookbook filter with eagerly recomputed
// coefficients (spec §4.6: parameter changes click, by design).
type Biquad struct {
	kind       Kind
	cutoff     float64
	q          float64
	sampleRate float64

	b [3]float64
	a [2]float64

	x stereo.Frame // two delayed post-fw states, X[0] and X[1]
	x1 stereo.Frame
}

// New constructs a LowPass filter at 1kHz, Q=1.
func New(sampleRate int) *Biquad {
	f := &Biquad{
		kind:       LowPass,
		cutoff:     1000.0,
		q:          1.0,
		sampleRate: float64(sampleRate),
	}
	f.recompute()
	return f
}

func (f *Biquad) recompute() {
	w := 2 * math.Pi * f.cutoff / f.sampleRate
	cosW := math.Cos(w)
	sinW := math.Sin(w)
	alpha := sinW / (2 * f.q)
	a0 := 1 + alpha

	switch f.kind {
	case LowPass:
		f.b = [3]float64{(1 - cosW) / 2, 1 - cosW, (1 - cosW) / 2}
	case HighPass:
		f.b = [3]float64{(1 + cosW) / 2, -(1 + cosW), (1 + cosW) / 2}
	case BandPass:
		f.b = [3]float64{alpha, 0, -alpha}
	case Notch:
		f.b = [3]float64{1, -2 * cosW, 1}
	}
	f.a = [2]float64{-2 * cosW, 1 - alpha}

	for i := range f.b {
		f.b[i] /= a0
	}
	for i := range f.a {
		f.a[i] /= a0
	}
}

// Tick applies one stereo sample of the Direct-Form-II-transposed update
// from spec §4.6: fw = x - A0*X0 - A1*X1; y = B0*fw + B1*X0 + B2*X1;
// X1 <- X0; X0 <- fw. Both channels share coefficients and are updated
// component-wise.
func (f *Biquad) Tick(in stereo.Frame) stereo.Frame {
	fw := in.Sub(f.x.Scale(f.a[0])).Sub(f.x1.Scale(f.a[1]))
	y := fw.Scale(f.b[0]).Add(f.x.Scale(f.b[1])).Add(f.x1.Scale(f.b[2]))
	f.x1 = f.x
	f.x = fw
	return y
}

// Handle applies a partial Filter control event (spec §6): any of type,
// cutoff and Q may be nil, leaving that parameter untouched.
func (f *Biquad) Handle(ev control.Event) {
	if ev.Kind != control.Filter {
		return
	}
	changed := false
	if ev.FilterKind != nil {
		f.kind = toKind(*ev.FilterKind)
		changed = true
	}
	if ev.FilterCutoff != nil {
		f.cutoff = *ev.FilterCutoff
		changed = true
	}
	if ev.FilterQ != nil {
		f.q = *ev.FilterQ
		changed = true
	}
	if changed {
		f.recompute()
	}
}

func toKind(k control.FilterKind) Kind {
	switch k {
	case control.HighPass:
		return HighPass
	case control.BandPass:
		return BandPass
	case control.Notch:
		return Notch
	default:
		return LowPass
	}
}
