// Package sink persists float32 PCM buffers as WAV files with
// collision-safe naming.
package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/petems/waverec/internal/audio"
)

// ErrWrite wraps any I/O failure while persisting a recording. The
// in-memory buffer is untouched by a failed write, so the caller may retry.
var ErrWrite = errors.New("write failed")

// Extension is the container type the sink produces.
const Extension = ".wav"

// ieeeFloatFormat is the WAV fmt-chunk audio format tag for 32-bit float
// PCM, matching the capture pipeline's sample format.
const ieeeFloatFormat = 3

// Write persists buf under dir as "<baseName>.wav" at the buffer's sample
// rate and channel count. If the name is taken, an incrementing numeric
// suffix is appended until an unused one is found; the file is created with
// O_EXCL, so the probe is race-free even against concurrent writers.
// Returns the path actually written.
func Write(buf audio.Buffer, dir, baseName string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	for n := 0; ; n++ {
		name := baseName
		if n > 0 {
			name = fmt.Sprintf("%s_%d", baseName, n)
		}
		path := filepath.Join(dir, name+Extension)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrWrite, err)
		}

		if err := encodeWAV(f, buf); err != nil {
			f.Close()
			return "", fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrWrite, err)
		}
		return path, nil
	}
}
