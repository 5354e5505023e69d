package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/flac"

	"github.com/petems/waverec/internal/audio"
)

func decodeFLAC(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	defer f.Close()

	dec, err := flac.NewDecoder(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("creating FLAC decoder: %w", err)
	}

	divisor, err := sampleDivisor(dec.BitsPerSample)
	if err != nil {
		return audio.Buffer{}, err
	}
	bytesPerSample := dec.BitsPerSample / 8

	samples := make([]float32, 0, int(dec.TotalSamples)*dec.NChannels)
	for {
		frame, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("reading FLAC frame: %w", err)
		}
		for i := 0; i+bytesPerSample <= len(frame); i += bytesPerSample {
			var v int32
			switch dec.BitsPerSample {
			case 16:
				v = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
			case 24:
				v = int32(frame[i]) | int32(frame[i+1])<<8 | int32(frame[i+2])<<16
				if v&0x800000 != 0 {
					v |= -1 << 24
				}
			case 32:
				v = int32(binary.LittleEndian.Uint32(frame[i:]))
			}
			samples = append(samples, float32(v)/divisor)
		}
	}

	return audio.Buffer{
		Data:       samples,
		Channels:   dec.NChannels,
		SampleRate: dec.SampleRate,
	}, nil
}
