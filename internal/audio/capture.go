package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateStreaming
	stateStopping
)

// stopTimeout bounds how long Stop waits for the audio subsystem before
// force-releasing resources.
const stopTimeout = time.Second

// CaptureSession owns one open capture stream. Blocks arrive on the audio
// subsystem's real-time thread via handleBlock, which appends to the
// accumulator and republishes a mono copy for live-waveform consumers.
// The accumulator is written only by the audio thread while streaming and
// read only after the stream is confirmed closed, so the two never touch
// it concurrently.
type CaptureSession struct {
	log      zerolog.Logger
	notifier *Notifier

	state       sessionState
	cfg         CaptureConfig
	stream      *portaudio.Stream
	initialized bool
	blocks      [][]float32
}

// NewCaptureSession creates an idle capture session publishing previews to n.
func NewCaptureSession(log zerolog.Logger, n *Notifier) *CaptureSession {
	return &CaptureSession{log: log, notifier: n}
}

// Start opens a capture stream at the configured rate and channel count,
// delivering cfg.BlockSize frames per callback. On failure the session
// stays idle and the driver's error text is propagated.
func (s *CaptureSession) Start(cfg CaptureConfig) error {
	if s.state != stateIdle {
		return fmt.Errorf("%w: capture session already streaming", ErrStreamOpen)
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = BlockSize
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}
	s.initialized = true

	devices, err := portaudio.Devices()
	if err != nil {
		s.teardown()
		return fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}
	if cfg.DeviceIndex < 0 || cfg.DeviceIndex >= len(devices) {
		s.teardown()
		return fmt.Errorf("%w: no device at index %d", ErrStreamOpen, cfg.DeviceIndex)
	}
	dev := devices[cfg.DeviceIndex]

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: cfg.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.BlockSize,
	}
	stream, err := portaudio.OpenStream(params, func(in []float32) {
		s.handleBlock(in)
	})
	if err != nil {
		s.teardown()
		return fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		s.teardown()
		return fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}

	s.cfg = cfg
	s.stream = stream
	s.blocks = nil
	s.state = stateStreaming
	s.log.Info().
		Str("device", dev.Name).
		Int("channels", cfg.Channels).
		Int("sample_rate", cfg.SampleRate).
		Msg("Capture started")
	return nil
}

// handleBlock runs on the audio subsystem's thread. It must not block or
// perform I/O: it appends a copy of the block to the accumulator and hands
// a mono copy to the latest-only preview lane.
func (s *CaptureSession) handleBlock(in []float32) {
	block := make([]float32, len(in))
	copy(block, in)
	s.blocks = append(s.blocks, block)
	if s.notifier != nil {
		s.notifier.PushPreview(MonoMix(block, s.cfg.Channels))
	}
}

// Stop closes the stream, drains pending callbacks and returns the
// accumulated blocks concatenated in arrival order. Stopping an idle
// session returns an empty buffer.
func (s *CaptureSession) Stop() (Buffer, error) {
	if s.state != stateStreaming {
		return Buffer{Channels: s.cfg.Channels, SampleRate: s.cfg.SampleRate}, nil
	}
	s.state = stateStopping

	if s.stream != nil {
		s.stopStream()
		s.stream.Close()
		s.stream = nil
	}
	s.teardown()

	buf := Concat(s.blocks, s.cfg.Channels, s.cfg.SampleRate)
	s.blocks = nil
	s.state = stateIdle
	s.log.Info().
		Int("frames", buf.Frames()).
		Dur("duration", buf.Duration()).
		Msg("Capture stopped")
	return buf, nil
}

// stopStream drains the stream with a bounded wait, aborting on timeout so
// Stop can never hang on a wedged driver.
func (s *CaptureSession) stopStream() {
	done := make(chan error, 1)
	go func() { done <- s.stream.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			s.log.Warn().Err(err).Msg("Capture stream stop failed, aborting")
			s.stream.Abort()
		}
	case <-time.After(stopTimeout):
		s.log.Error().Msg("Capture stream stop timed out, aborting")
		s.stream.Abort()
	}
}

// Close force-stops any open stream and releases subsystem resources.
// Idempotent and safe from any state; the guaranteed-cleanup path on
// shutdown or error.
func (s *CaptureSession) Close() error {
	if s.stream != nil {
		s.stream.Abort()
		s.stream.Close()
		s.stream = nil
	}
	s.blocks = nil
	s.state = stateIdle
	s.teardown()
	return nil
}

func (s *CaptureSession) teardown() {
	if s.initialized {
		portaudio.Terminate()
		s.initialized = false
	}
}
