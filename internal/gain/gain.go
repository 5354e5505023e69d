// Package gain applies the stop-time level transform to a full recording:
// peak normalization to a target level, or a manual linear boost, followed
// by hard clipping. Pure over its input; the returned buffer is always a
// fresh copy unless the input is silent.
package gain

import (
	"math"

	"github.com/petems/waverec/internal/audio"
)

// Mode selects the transform.
type Mode int

const (
	// Normalize scales so the peak lands on TargetDBFS.
	Normalize Mode = iota
	// Manual multiplies every sample by Factor.
	Manual
)

// Manual gain factor bounds, matching the recorder's gain control range.
const (
	MinFactor = 1.0
	MaxFactor = 20.0
)

// DefaultTargetDBFS is the normalization target.
const DefaultTargetDBFS = -1.0

// Options describes one application of the processor.
type Options struct {
	Mode       Mode
	TargetDBFS float64 // Normalize only; 0 dBFS = full scale
	Factor     float64 // Manual only; clamped to [MinFactor, MaxFactor]
}

// NormalizeTo returns options normalizing to the given dBFS target.
func NormalizeTo(targetDBFS float64) Options {
	return Options{Mode: Normalize, TargetDBFS: targetDBFS}
}

// ManualGain returns options for a fixed linear boost.
func ManualGain(factor float64) Options {
	return Options{Mode: Manual, Factor: factor}
}

// Apply transforms buf according to opts. A silent buffer (peak 0) is
// returned unchanged. Clipping to [-1, 1] always runs after scaling, with
// the peak read before scaling, so a large manual gain clips silently.
func Apply(buf audio.Buffer, opts Options) audio.Buffer {
	peak := Peak(buf.Data)
	if peak == 0 {
		return buf
	}

	var scale float32
	switch opts.Mode {
	case Normalize:
		target := float32(math.Pow(10, opts.TargetDBFS/20))
		scale = target / peak
	case Manual:
		scale = float32(clampFactor(opts.Factor))
	default:
		scale = 1
	}

	out := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		v := s * scale
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return audio.Buffer{Data: out, Channels: buf.Channels, SampleRate: buf.SampleRate}
}

// Peak returns the maximum absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

func clampFactor(f float64) float64 {
	if f < MinFactor {
		return MinFactor
	}
	if f > MaxFactor {
		return MaxFactor
	}
	return f
}
