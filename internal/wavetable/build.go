package wavetable

import (
	"math"
	"math/rand"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	oversampling   = 2
	minTableSize   = 64
	fundamentalHz  = 20.0 // f0, §4.1
	sineTableSize  = 4096
	sineHarmonics  = 1
)

// Waveform identifies one of the six built-in waveform shapes.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Square
	Tri
	SharpTri
	Random
)

var allWaveforms = [...]Waveform{Sine, Saw, Square, Tri, SharpTri, Random}

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "Sine"
	case Saw:
		return "Saw"
	case Square:
		return "Square"
	case Tri:
		return "Tri"
	case SharpTri:
		return "SharpTri"
	case Random:
		return "Random"
	default:
		return "Unknown"
	}
}

// Set holds the band-limited table list for every waveform, built once and
// shared read-only by every oscillator. See spec §4.1.
type Set struct {
	tables map[Waveform][]*Table
}

// Build constructs the full band-limited wavetable set for the given sample
// rate, using f0 = 20Hz as the fundamental per spec §4.1.
func Build(sampleRate int) *Set {
	s := &Set{tables: make(map[Waveform][]*Table, len(allWaveforms))}
	for _, wf := range allWaveforms {
		s.tables[wf] = buildWaveform(wf, fundamentalHz, sampleRate)
	}
	return s
}

// Tables returns the ordered table list for a waveform.
func (s *Set) Tables(wf Waveform) []*Table {
	return s.tables[wf]
}

// nextPowerOfTwo returns the smallest power of two >= n (n >= 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func buildWaveform(wf Waveform, f0 float64, sampleRate int) []*Table {
	fs := float64(sampleRate)
	dphi := 2.0 * f0 / fs

	var harmonics, tableSize int
	if wf == Sine {
		harmonics, tableSize = sineHarmonics, sineTableSize
	} else {
		harmonics = int(fs / (2.0 * f0))
		tableSize = nextPowerOfTwo(harmonics) * 2 * oversampling
	}

	var tables []*Table
	for harmonics > 0 {
		spectrum := make([]complex128, tableSize)
		populateSpectrum(wf, harmonics, spectrum)
		signal := inverseFFT(spectrum)
		normalize(signal)

		tables = append(tables, &Table{samples: signal, maxDPhi: dphi})

		harmonics >>= 1
		dphi *= 2.0
		next := nextPowerOfTwo(harmonics) * 2 * oversampling
		tableSize = next
		if tableSize < minTableSize {
			tableSize = minTableSize
		}
	}
	return tables
}

// populateSpectrum fills bins [1, harmonics) (and their Hermitian mirrors)
// per waveform, per spec §4.1 step 2.
func populateSpectrum(wf Waveform, harmonics int, spectrum []complex128) {
	n := len(spectrum)
	if harmonics == 1 {
		spectrum[1] = complex(1, -1)
		spectrum[n-1] = -spectrum[1]
		return
	}
	switch wf {
	case Saw:
		for i := 1; i < harmonics; i++ {
			mag := 1.0 / float64(i)
			spectrum[i] = complex(1, -mag)
			spectrum[n-i] = -spectrum[i]
		}
	case Square:
		for i := 1; i < harmonics; i++ {
			if i%2 != 1 {
				continue
			}
			mag := 1.0 / float64(i)
			spectrum[i] = complex(1, -mag)
			spectrum[n-i] = -spectrum[i]
		}
	case Tri:
		for i := 1; i < harmonics; i++ {
			if i%2 != 1 {
				continue
			}
			sign := -1.0
			if i%4 == 1 {
				sign = 1.0
			}
			mag := 1.0 / float64(i*i)
			spectrum[i] = complex(1, -mag*sign)
			spectrum[n-i] = -spectrum[i]
		}
	case SharpTri:
		for i := 1; i < harmonics; i++ {
			if i%2 != 1 {
				continue
			}
			sign := -1.0
			if i%4 == 1 {
				sign = 1.0
			}
			mag := 1.0 / float64(i)
			spectrum[i] = complex(1, -mag*sign)
			spectrum[n-i] = -spectrum[i]
		}
	case Random:
		for i := 1; i < harmonics; i++ {
			mag := 1.0 / float64(i)
			spectrum[i] = complex(1, -rand.Float64()*mag)
			spectrum[n-i] = -spectrum[i]
		}
	}
}

// inverseFFT runs the inverse transform and returns the real part of the
// resulting time-domain signal.
func inverseFFT(spectrum []complex128) []float64 {
	plan, err := algofft.NewPlan64(len(spectrum))
	if err != nil {
		panic(err) // table sizes are always powers of two; a plan failure is a programming error
	}
	out := make([]complex128, len(spectrum))
	plan.Inverse(out, spectrum)
	samples := make([]float64, len(out))
	for i, c := range out {
		samples[i] = real(c)
	}
	return samples
}

// normalize scales signal in place so max(|sample|) == 1.
func normalize(signal []float64) {
	peak := 0.0
	for _, v := range signal {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	inv := 1.0 / peak
	for i := range signal {
		signal[i] *= inv
	}
}
