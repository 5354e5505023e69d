package gain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/waverec/internal/audio"
)

func buffer(samples ...float32) audio.Buffer {
	return audio.Buffer{Data: samples, Channels: 1, SampleRate: 48000}
}

func TestNormalizeHitsTargetPeak(t *testing.T) {
	target := float32(math.Pow(10, -1.0/20)) // ≈ 0.891

	for _, peak := range []float32{0.001, 0.25, 0.5, 0.891, 1.0} {
		buf := buffer(peak/2, -peak, peak/4)
		out := Apply(buf, NormalizeTo(DefaultTargetDBFS))
		assert.InDelta(t, target, Peak(out.Data), 1e-6, "input peak %v", peak)
	}
}

func TestNormalizeSilenceUnchanged(t *testing.T) {
	buf := buffer(0, 0, 0, 0)
	out := Apply(buf, NormalizeTo(DefaultTargetDBFS))
	assert.Equal(t, buf.Data, out.Data)
}

func TestManualGainExactWithinHeadroom(t *testing.T) {
	// Inputs within [-1/f, 1/f] must come out as exactly f × input.
	const f = 4.0
	in := []float32{0.1, -0.2, 0.25, -0.25, 0}
	out := Apply(buffer(in...), ManualGain(f))

	require.Len(t, out.Data, len(in))
	for i, v := range in {
		assert.Equal(t, v*f, out.Data[i], "sample %d", i)
	}
}

func TestManualGainClipsAfterScaling(t *testing.T) {
	out := Apply(buffer(0.5, -0.5, 0.9, -0.9), ManualGain(5))
	for i, v := range out.Data {
		assert.GreaterOrEqual(t, v, float32(-1), "sample %d", i)
		assert.LessOrEqual(t, v, float32(1), "sample %d", i)
	}
	// 0.5 × 5 clips to exactly 1.
	assert.Equal(t, float32(1), out.Data[0])
	assert.Equal(t, float32(-1), out.Data[1])
}

func TestManualGainFactorClamped(t *testing.T) {
	out := Apply(buffer(0.01), ManualGain(100))
	assert.InDelta(t, 0.01*MaxFactor, float64(out.Data[0]), 1e-7)

	out = Apply(buffer(0.5), ManualGain(0.1))
	assert.Equal(t, float32(0.5), out.Data[0])
}

func TestApplyIsPure(t *testing.T) {
	in := buffer(0.5, -0.5)
	first := Apply(in, NormalizeTo(DefaultTargetDBFS))
	second := Apply(in, NormalizeTo(DefaultTargetDBFS))

	assert.Equal(t, []float32{0.5, -0.5}, in.Data, "input must not be mutated")
	assert.Equal(t, first.Data, second.Data, "deterministic for identical inputs")
}

func TestApplyPreservesFormat(t *testing.T) {
	in := audio.Buffer{Data: []float32{0.1, 0.2}, Channels: 2, SampleRate: 44100}
	out := Apply(in, ManualGain(2))
	assert.Equal(t, in.Channels, out.Channels)
	assert.Equal(t, in.SampleRate, out.SampleRate)
}
