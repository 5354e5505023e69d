package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/petems/waverec/internal/audio"
)

// WAV fmt-chunk audio format tags.
const (
	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

func decodeWAV(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return audio.Buffer{}, errors.New("invalid WAV file")
	}

	buf := audio.Buffer{
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
	}

	switch {
	case dec.WavAudioFormat == wavFormatIEEEFloat && dec.BitDepth == 32:
		buf.Data, err = readFloatSamples(dec)
	case dec.WavAudioFormat == wavFormatPCM:
		buf.Data, err = readIntSamples(dec)
	default:
		err = fmt.Errorf("unsupported WAV format %d at %d-bit", dec.WavAudioFormat, dec.BitDepth)
	}
	if err != nil {
		return audio.Buffer{}, err
	}
	return buf, nil
}

// readFloatSamples reads the data chunk of a 32-bit IEEE float file
// directly; the sink writes this format, so round trips are exact.
func readFloatSamples(dec *wav.Decoder) ([]float32, error) {
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("seeking data chunk: %w", err)
	}
	raw, err := io.ReadAll(dec.PCMChunk)
	if err != nil {
		return nil, fmt.Errorf("reading data chunk: %w", err)
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}

// readIntSamples decodes integer PCM and rescales onto [-1, 1).
func readIntSamples(dec *wav.Decoder) ([]float32, error) {
	divisor, err := sampleDivisor(int(dec.BitDepth))
	if err != nil {
		return nil, err
	}

	var samples []float32
	intBuf := &goaudio.IntBuffer{
		Data: make([]int, 8192),
		Format: &goaudio.Format{
			SampleRate:  int(dec.SampleRate),
			NumChannels: int(dec.NumChans),
		},
	}
	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading PCM: %w", err)
		}
		if n == 0 {
			break
		}
		for _, v := range intBuf.Data[:n] {
			samples = append(samples, float32(v)/divisor)
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return samples, nil
}
