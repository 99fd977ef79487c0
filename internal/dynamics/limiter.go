// Package dynamics implements the two stateless limiters from spec §4.7.
package dynamics

import (
	"math"

	"github.com/voltaicsound/ytterbium/internal/stereo"
)

// HardLimiter clips each channel to sign(x) once |x| exceeds unity.
type HardLimiter struct{}

// Tick applies hard clipping per channel.
func (HardLimiter) Tick(in stereo.Frame) stereo.Frame {
	return stereo.Frame{L: hardClip(in.L), R: hardClip(in.R)}
}

func hardClip(x float64) float64 {
	if math.Abs(x) > 1.0 {
		return sign(x)
	}
	return x
}

// SoftLimiter applies a third-order Padé tanh approximation per channel.
type SoftLimiter struct{}

// Tick applies the soft-knee saturation curve from spec §4.7.
func (SoftLimiter) Tick(in stereo.Frame) stereo.Frame {
	return stereo.Frame{L: softClip(in.L), R: softClip(in.R)}
}

func softClip(x float64) float64 {
	if math.Abs(x) > 3.0 {
		return sign(x)
	}
	return x * (x*x + 27.0) / (9.0*x*x + 27.0)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1.0
	}
	return 1.0
}
