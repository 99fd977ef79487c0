package wavetable

import "math"

// Table stores one period of a band-limited signal together with the
// maximum phase increment it can be played back at without aliasing.
// Immutable after construction.
type Table struct {
	samples []float64
	maxDPhi float64
}

// MaxDPhi returns the phase-increment ceiling for this table.
func (t *Table) MaxDPhi() float64 {
	return t.maxDPhi
}

// Len returns the number of stored samples.
func (t *Table) Len() int {
	return len(t.samples)
}

// Sample returns a linearly interpolated sample for phasor in (-1, 1).
// Negative phasors are folded into [0, 1) by adding 1.
func (t *Table) Sample(phasor float64) float64 {
	n := len(t.samples)
	if phasor < 0 {
		phasor += 1.0
	}
	x := phasor * float64(n)
	i := int(math.Floor(x)) % n
	j := int(math.Ceil(x)) % n
	if i < 0 {
		i += n
	}
	if j < 0 {
		j += n
	}
	frac := x - math.Floor(x)
	return t.samples[i] + (t.samples[j]-t.samples[i])*frac
}

// Select returns the smallest table whose MaxDPhi exceeds dphi, falling back
// to the last (highest max-frequency) table if none qualifies.
func Select(tables []*Table, dphi float64) *Table {
	for _, tbl := range tables {
		if tbl.maxDPhi > dphi {
			return tbl
		}
	}
	return tables[len(tables)-1]
}
