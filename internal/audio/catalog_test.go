package audio

import "testing"

func TestIsLoopbackName(t *testing.T) {
	cases := map[string]bool{
		"Speakers (Realtek Audio) [Loopback]": true,
		"Monitor of Built-in Audio":           true,
		"alsa_output.pci-0000.analog.monitor": true,
		"Microphone (USB Audio)":              false,
		"Built-in Audio Analog Stereo":        false,
		"Loopback Adapter Mic":                false,
	}
	for name, want := range cases {
		if got := isLoopbackName(name); got != want {
			t.Errorf("isLoopbackName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSortLoopbackFirst(t *testing.T) {
	devices := []Device{
		{Index: 0, Name: "Mic", MaxInputChannels: 1},
		{Index: 1, Name: "Speakers", IsLoopback: true, MaxInputChannels: 2},
		{Index: 2, Name: "Line In", MaxInputChannels: 2},
		{Index: 3, Name: "Monitor of HDMI", IsLoopback: true, MaxInputChannels: 2},
	}

	ordered := sortLoopbackFirst(devices)

	want := []string{"Speakers", "Monitor of HDMI", "Mic", "Line In"}
	for i, name := range want {
		if ordered[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, ordered[i].Name)
		}
	}
}

func TestDefaultDevicePrefersFirstLoopback(t *testing.T) {
	devices := []Device{
		{Name: "Speakers", IsLoopback: true},
		{Name: "Mic"},
	}
	dev, ok := DefaultDevice(devices)
	if !ok || dev.Name != "Speakers" {
		t.Fatalf("expected default Speakers, got %v ok=%v", dev.Name, ok)
	}
}

func TestDefaultDeviceNoneWithoutLoopback(t *testing.T) {
	devices := []Device{{Name: "Mic"}, {Name: "Line In"}}
	if _, ok := DefaultDevice(devices); ok {
		t.Fatal("expected no default without a loopback device")
	}
}

func TestFindByName(t *testing.T) {
	devices := []Device{{Name: "Mic"}, {Name: "Speakers", IsLoopback: true}}

	if dev, ok := FindByName(devices, "Speakers"); !ok || !dev.IsLoopback {
		t.Fatalf("expected to find Speakers, got %+v ok=%v", dev, ok)
	}
	if _, ok := FindByName(devices, "Missing"); ok {
		t.Fatal("expected missing device to not be found")
	}
}

func TestConfigForDevice(t *testing.T) {
	cfg := ConfigForDevice(Device{Index: 3, MaxInputChannels: 2, DefaultSampleRate: 48000})
	if cfg.DeviceIndex != 3 || cfg.Channels != 2 || cfg.SampleRate != 48000 || cfg.BlockSize != BlockSize {
		t.Fatalf("unexpected config %+v", cfg)
	}

	// Loopback endpoints can report zero input channels; clamp to one.
	cfg = ConfigForDevice(Device{MaxInputChannels: 0, DefaultSampleRate: 44100})
	if cfg.Channels != 1 {
		t.Fatalf("expected 1 channel, got %d", cfg.Channels)
	}
}
