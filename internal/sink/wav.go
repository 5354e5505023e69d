package sink

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/petems/waverec/internal/audio"
)

// encodeWAV writes buf as 32-bit IEEE float WAV. Sample values are written
// as-is; any level processing happened before the buffer reached the sink.
func encodeWAV(w io.WriteSeeker, buf audio.Buffer) error {
	channels := buf.Channels
	if channels < 1 {
		channels = 1
	}
	enc := wav.NewEncoder(w, buf.SampleRate, 32, channels, ieeeFloatFormat)
	for _, s := range buf.Data {
		if err := enc.WriteFrame(s); err != nil {
			return fmt.Errorf("encoding sample: %w", err)
		}
	}
	return enc.Close()
}
