package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// outputStream is the slice-bound blocking output abstraction the playback
// loop writes through. Write flushes the bound buffer to the device and
// paces the loop by blocking until the device has consumed it.
type outputStream interface {
	Start() error
	Write() error
	Abort() error
	Close() error
}

// openOutputFunc opens an output stream for the given format and returns
// the stream together with its bound interleaved chunk buffer.
type openOutputFunc func(channels, sampleRate, chunkFrames int) (outputStream, []float32, error)

// PlaybackSession streams a copied region of a loaded buffer to the default
// output device in fixed chunks on its own goroutine. The isolated copy
// means a selection change while stopped can never corrupt an in-flight
// read; the cancellation flag is checked once per chunk so Stop has bounded
// latency.
type PlaybackSession struct {
	log      zerolog.Logger
	notifier *Notifier
	open     openOutputFunc

	mu     sync.Mutex
	state  sessionState
	stream outputStream
	stop   chan struct{}
	done   chan struct{}

	active  atomic.Bool
	posBits atomic.Uint64
}

// NewPlaybackSession creates an idle playback session publishing position
// and completion events to n.
func NewPlaybackSession(log zerolog.Logger, n *Notifier) *PlaybackSession {
	return &PlaybackSession{log: log, notifier: n, open: openPortAudioOutput}
}

// Play copies buf's selected region into an isolated playback buffer and
// starts streaming it. Any previous playback is stopped first. Fails with
// ErrStreamOpen (session stays idle) when the output device cannot be
// opened.
func (p *PlaybackSession) Play(buf Buffer, sel Selection, loop bool) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	if err := p.Stop(); err != nil {
		return err
	}

	region := buf.Region(sel)
	if region.Empty() {
		return fmt.Errorf("selection [%v, %v] contains no frames", sel.Start, sel.End)
	}

	stream, out, err := p.open(region.Channels, region.SampleRate, BlockSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}

	p.mu.Lock()
	p.state = stateStreaming
	p.stream = stream
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.mu.Unlock()

	p.setPosition(sel.Start)
	go p.run(stream, out, region, sel, loop)

	p.log.Info().
		Int("frames", region.Frames()).
		Float64("start", sel.Start).
		Float64("end", sel.End).
		Bool("loop", loop).
		Msg("Playback started")
	return nil
}

// run streams the isolated region chunk by chunk until the region is
// exhausted (restarting when looping) or the stop flag is observed.
func (p *PlaybackSession) run(stream outputStream, out []float32, region Buffer, sel Selection, loop bool) {
	defer close(p.done)
	defer func() {
		stream.Close()
		p.clearPosition()
		p.mu.Lock()
		if p.state == stateStreaming {
			p.state = stateIdle
		}
		p.stream = nil
		p.mu.Unlock()
	}()

	if err := stream.Start(); err != nil {
		p.log.Error().Err(err).Msg("Output stream start failed")
		return
	}

	chunkFrames := len(out) / region.Channels
	total := region.Frames()

	for {
		for written := 0; written < total; {
			select {
			case <-p.stop:
				return
			default:
			}

			n := chunkFrames
			if total-written < n {
				n = total - written
			}
			copy(out, region.Data[written*region.Channels:(written+n)*region.Channels])
			for i := n * region.Channels; i < len(out); i++ {
				out[i] = 0
			}
			if err := stream.Write(); err != nil {
				p.log.Error().Err(err).Msg("Output stream write failed")
				return
			}
			written += n

			ratio := sel.Start + float64(written)/float64(total)*sel.Span()
			p.setPosition(ratio)
			if p.notifier != nil {
				p.notifier.Emit(Event{Kind: EventPlaybackPosition, Position: ratio})
			}
		}
		if !loop {
			break
		}
	}

	if p.notifier != nil {
		p.notifier.Emit(Event{Kind: EventPlaybackFinished})
	}
	p.log.Debug().Msg("Playback finished")
}

// Stop cancels playback cooperatively: it raises the stop flag and waits a
// bounded time for the streaming goroutine to observe it. On timeout it
// aborts the stream to break the blocking write, logs, and keeps waiting
// briefly. Redundant calls and calls while idle are no-ops.
func (p *PlaybackSession) Stop() error {
	p.mu.Lock()
	if p.state != stateStreaming {
		p.mu.Unlock()
		return nil
	}
	p.state = stateStopping
	stop, done, stream := p.stop, p.done, p.stream
	p.mu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-time.After(stopTimeout):
		p.log.Error().Msg("Playback stop timed out, aborting stream")
		if stream != nil {
			stream.Abort()
		}
		select {
		case <-done:
		case <-time.After(stopTimeout):
			p.log.Error().Msg("Playback goroutine did not exit after abort")
		}
	}

	p.mu.Lock()
	p.state = stateIdle
	p.mu.Unlock()
	p.log.Info().Msg("Playback stopped")
	return nil
}

// Position reports the current playback ratio within [sel.Start, sel.End];
// ok is false while idle.
func (p *PlaybackSession) Position() (float64, bool) {
	if !p.active.Load() {
		return 0, false
	}
	return math.Float64frombits(p.posBits.Load()), true
}

// Close stops playback and releases resources. Idempotent.
func (p *PlaybackSession) Close() error {
	return p.Stop()
}

func (p *PlaybackSession) setPosition(ratio float64) {
	p.posBits.Store(math.Float64bits(ratio))
	p.active.Store(true)
}

func (p *PlaybackSession) clearPosition() {
	p.active.Store(false)
}

// paOutput adapts a PortAudio blocking-write stream to outputStream and
// pairs subsystem teardown with Close.
type paOutput struct {
	stream *portaudio.Stream
}

func openPortAudioOutput(channels, sampleRate, chunkFrames int) (outputStream, []float32, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, err
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, nil, err
	}

	out := make([]float32, chunkFrames*channels)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: chunkFrames,
	}
	stream, err := portaudio.OpenStream(params, &out)
	if err != nil {
		portaudio.Terminate()
		return nil, nil, err
	}
	return &paOutput{stream: stream}, out, nil
}

func (o *paOutput) Start() error { return o.stream.Start() }

func (o *paOutput) Write() error {
	err := o.stream.Write()
	if err == portaudio.OutputUnderflowed {
		// Harmless on the first chunk after start; the device recovers.
		return nil
	}
	return err
}

func (o *paOutput) Abort() error { return o.stream.Abort() }

func (o *paOutput) Close() error {
	err := o.stream.Close()
	portaudio.Terminate()
	return err
}
