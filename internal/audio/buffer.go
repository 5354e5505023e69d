package audio

import (
	"fmt"
	"time"
)

// Buffer is a sequence of interleaved float32 PCM samples. Invariant:
// len(Data) % Channels == 0. A Buffer is owned by exactly one component at
// a time; Region hands out an isolated copy so a caller can keep mutating
// its selection without touching data that is already streaming.
type Buffer struct {
	Data       []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames in the buffer.
func (b Buffer) Frames() int {
	if b.Channels < 1 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Empty reports whether the buffer holds no samples.
func (b Buffer) Empty() bool {
	return len(b.Data) == 0
}

// Duration returns the buffer's play time at its sample rate.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the buffer's play time in seconds.
func (b Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy of the buffer.
func (b Buffer) Clone() Buffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return Buffer{Data: data, Channels: b.Channels, SampleRate: b.SampleRate}
}

// Region copies the frames selected by sel into a new, isolated buffer.
func (b Buffer) Region(sel Selection) Buffer {
	total := b.Frames()
	start := int(sel.Start * float64(total))
	end := int(sel.End * float64(total))
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	data := make([]float32, (end-start)*b.Channels)
	copy(data, b.Data[start*b.Channels:end*b.Channels])
	return Buffer{Data: data, Channels: b.Channels, SampleRate: b.SampleRate}
}

// Concat joins blocks of interleaved samples, preserving order, into one
// buffer. With no blocks the result is an empty (zero length) buffer.
func Concat(blocks [][]float32, channels, sampleRate int) Buffer {
	total := 0
	for _, blk := range blocks {
		total += len(blk)
	}
	data := make([]float32, 0, total)
	for _, blk := range blocks {
		data = append(data, blk...)
	}
	return Buffer{Data: data, Channels: channels, SampleRate: sampleRate}
}

// MonoMix averages the channels of an interleaved block down to one channel.
func MonoMix(block []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(block))
		copy(out, block)
		return out
	}
	frames := len(block) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += block[f*channels+c]
		}
		out[f] = sum / float32(channels)
	}
	return out
}

// Selection is a pair of ratios over a loaded buffer, 0 <= Start < End <= 1.
type Selection struct {
	Start float64
	End   float64
}

// FullSelection spans an entire buffer.
var FullSelection = Selection{Start: 0, End: 1}

// Validate checks the selection invariant.
func (s Selection) Validate() error {
	if s.Start < 0 || s.End > 1 || s.Start >= s.End {
		return fmt.Errorf("invalid selection [%v, %v]", s.Start, s.End)
	}
	return nil
}

// Span returns End - Start.
func (s Selection) Span() float64 {
	return s.End - s.Start
}

// Times converts the ratios to absolute start/end seconds over a total
// duration.
func (s Selection) Times(durationSeconds float64) (start, end float64) {
	return s.Start * durationSeconds, s.End * durationSeconds
}

// FormatTimestamp renders seconds as "m:ss.cc" for start/end/duration labels.
func FormatTimestamp(seconds float64) string {
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("%d:%05.2f", m, s)
}
