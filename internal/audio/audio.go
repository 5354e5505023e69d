package audio

import "errors"

// Sentinel errors for the failure modes the engine reports to callers.
// Wrapped with device/driver detail at the point of failure.
var (
	ErrEnumeration = errors.New("device enumeration failed")
	ErrStreamOpen  = errors.New("stream open failed")
)

// BlockSize is the number of frames requested per capture callback and
// written per playback chunk.
const BlockSize = 1024

// Device describes one capture-capable endpoint. A Device is valid for the
// enumeration that produced it and is never mutated.
type Device struct {
	Index             int // PortAudio enumeration index, opaque to callers
	Name              string
	IsLoopback        bool
	MaxInputChannels  int
	DefaultSampleRate int
}

// CaptureConfig fixes the parameters of one capture session. Immutable once
// the session starts.
type CaptureConfig struct {
	DeviceIndex int
	Channels    int
	SampleRate  int
	BlockSize   int
}

// ConfigForDevice derives a capture configuration from an enumerated device.
func ConfigForDevice(dev Device) CaptureConfig {
	channels := dev.MaxInputChannels
	if channels < 1 {
		channels = 1
	}
	return CaptureConfig{
		DeviceIndex: dev.Index,
		Channels:    channels,
		SampleRate:  dev.DefaultSampleRate,
		BlockSize:   BlockSize,
	}
}

// Recorder owns at most one open capture stream.
type Recorder interface {
	// Start opens a capture stream and begins accumulating blocks.
	Start(cfg CaptureConfig) error
	// Stop closes the stream and returns the accumulated recording.
	// An empty buffer (not an error) is returned when nothing was captured.
	Stop() (Buffer, error)
	// Close force-stops any open stream and releases subsystem resources.
	// Idempotent; safe from any state.
	Close() error
}

// Player streams a region of a loaded buffer to the default output device.
type Player interface {
	// Play copies the selected region and streams it on its own goroutine.
	Play(buf Buffer, sel Selection, loop bool) error
	// Stop cancels playback cooperatively with a bounded wait. No-op when idle.
	Stop() error
	// Position reports the current playback ratio; ok is false when idle.
	Position() (ratio float64, ok bool)
	Close() error
}

// Catalog enumerates capture-capable endpoints. Each List call queries the
// platform subsystem fresh.
type Catalog interface {
	List() ([]Device, error)
}

// DefaultDevice applies the default-selection policy: the first loopback
// device if any exists, otherwise none.
func DefaultDevice(devices []Device) (Device, bool) {
	for _, d := range devices {
		if d.IsLoopback {
			return d, true
		}
	}
	return Device{}, false
}
