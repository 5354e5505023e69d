// Package loader reads audio files into in-memory float32 buffers and
// produces decimated preview buffers for display.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/petems/waverec/internal/audio"
)

// ErrLoad wraps any failure to read or decode a file. A failed load leaves
// no partial state behind; the caller keeps whatever was loaded before.
var ErrLoad = errors.New("load failed")

// Load decodes a supported container into interleaved float32 samples.
// WAV (integer 16/24/32-bit and IEEE float32) and FLAC are supported.
func Load(path string) (audio.Buffer, error) {
	var (
		buf audio.Buffer
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		buf, err = decodeWAV(path)
	case ".flac":
		buf, err = decodeFLAC(path)
	default:
		err = fmt.Errorf("unsupported container %q", filepath.Ext(path))
	}
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	return buf, nil
}

// sampleDivisor returns the full-scale divisor that maps integer PCM of
// the given bit depth onto [-1, 1).
func sampleDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}
