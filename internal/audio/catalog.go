package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// DeviceCatalog enumerates capture-capable endpoints via PortAudio. Each
// List call initializes and terminates the subsystem around a fresh query,
// so hot-plugged devices show up on refresh.
type DeviceCatalog struct{}

// NewDeviceCatalog creates a PortAudio-backed device catalog.
func NewDeviceCatalog() *DeviceCatalog {
	return &DeviceCatalog{}
}

// List returns all loopback endpoints followed by all plain input devices,
// each group in enumeration order. The Index of each device is its
// PortAudio enumeration index, usable to open a stream within this process.
func (c *DeviceCatalog) List() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumeration, err)
	}

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		loopback := isLoopbackName(info.Name)
		if !loopback && info.MaxInputChannels <= 0 {
			continue
		}
		devices = append(devices, Device{
			Index:             i,
			Name:              info.Name,
			IsLoopback:        loopback,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: int(info.DefaultSampleRate),
		})
	}
	return sortLoopbackFirst(devices), nil
}

// isLoopbackName classifies an endpoint by the markers the platform
// backends use: WASAPI builds expose loopback endpoints with a "[Loopback]"
// suffix, PulseAudio exposes sink monitors as "Monitor of …" sources or
// with a ".monitor" suffix.
func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "[loopback]") ||
		strings.HasPrefix(lower, "monitor of") ||
		strings.HasSuffix(lower, ".monitor")
}

// sortLoopbackFirst orders loopback devices ahead of input devices while
// keeping enumeration order within each group.
func sortLoopbackFirst(devices []Device) []Device {
	ordered := make([]Device, 0, len(devices))
	for _, d := range devices {
		if d.IsLoopback {
			ordered = append(ordered, d)
		}
	}
	for _, d := range devices {
		if !d.IsLoopback {
			ordered = append(ordered, d)
		}
	}
	return ordered
}

// FindByName resolves a configured device name against an enumeration.
func FindByName(devices []Device, name string) (Device, bool) {
	for _, d := range devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}
