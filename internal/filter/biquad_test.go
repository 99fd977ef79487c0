package filter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltaicsound/ytterbium/internal/control"
	"github.com/voltaicsound/ytterbium/internal/stereo"
)

const testSampleRate = 48000

func TestLowPassAttenuatesHighFrequency(t *testing.T) {
	f := New(testSampleRate)
	cutoff := 500.0
	f.Handle(control.Event{Kind: control.Filter, FilterCutoff: &cutoff})

	lowEnergy := energyAt(t, f, 100.0)
	f = New(testSampleRate)
	f.Handle(control.Event{Kind: control.Filter, FilterCutoff: &cutoff})
	highEnergy := energyAt(t, f, 10000.0)

	assert.Greater(t, lowEnergy, highEnergy)
}

func energyAt(t *testing.T, f *Biquad, freq float64) float64 {
	t.Helper()
	var energy float64
	for i := 0; i < testSampleRate/10; i++ {
		x := math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate)
		out := f.Tick(stereo.Frame{L: x, R: x})
		energy += out.L * out.L
	}
	return energy
}

// TestFilterSweepIncreasesEnergy mirrors spec scenario S6 at reduced scale.
func TestFilterSweepIncreasesEnergy(t *testing.T) {
	f := New(testSampleRate)
	kind := control.LowPass
	q := 1.0
	f.Handle(control.Event{Kind: control.Filter, FilterKind: &kind, FilterQ: &q})

	r := rand.New(rand.NewSource(1))
	windows := 20
	windowSize := 2048
	energies := make([]float64, windows)

	for w := 0; w < windows; w++ {
		cutoff := 100.0 + (18000.0-100.0)*float64(w)/float64(windows-1)
		f.Handle(control.Event{Kind: control.Filter, FilterCutoff: &cutoff})
		var e float64
		for i := 0; i < windowSize; i++ {
			x := r.Float64()*2 - 1
			out := f.Tick(stereo.Frame{L: x, R: x})
			e += out.L * out.L
		}
		energies[w] = e
	}

	assert.Less(t, energies[0], energies[windows-1])
}

func TestPartialFilterUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	f := New(testSampleRate)
	before := f.cutoff
	q := 4.0
	f.Handle(control.Event{Kind: control.Filter, FilterQ: &q})
	assert.Equal(t, before, f.cutoff)
	assert.Equal(t, 4.0, f.q)
}
