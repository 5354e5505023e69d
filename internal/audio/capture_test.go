package audio

import (
	"testing"

	"github.com/rs/zerolog"
)

// streamingSession returns a session in the Streaming state without a real
// device stream, so handleBlock and Stop can be exercised directly.
func streamingSession(n *Notifier, channels, sampleRate int) *CaptureSession {
	s := NewCaptureSession(zerolog.Nop(), n)
	s.cfg = CaptureConfig{Channels: channels, SampleRate: sampleRate, BlockSize: 4}
	s.state = stateStreaming
	return s
}

func TestCaptureAccumulatesBlocksInOrder(t *testing.T) {
	const blocks, blockFrames, channels = 8, 4, 2
	s := streamingSession(nil, channels, 48000)

	block := make([]float32, blockFrames*channels)
	for b := 0; b < blocks; b++ {
		for i := range block {
			block[i] = float32(b)
		}
		s.handleBlock(block)
	}

	buf, err := s.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got, want := len(buf.Data), blocks*blockFrames*channels; got != want {
		t.Fatalf("expected %d samples, got %d", want, got)
	}
	for b := 0; b < blocks; b++ {
		for i := 0; i < blockFrames*channels; i++ {
			if buf.Data[b*blockFrames*channels+i] != float32(b) {
				t.Fatalf("block %d reordered or corrupted", b)
			}
		}
	}
}

func TestCaptureCopiesDeliveredBlocks(t *testing.T) {
	s := streamingSession(nil, 1, 48000)

	block := []float32{1, 2, 3, 4}
	s.handleBlock(block)
	// The subsystem reuses its callback buffer; mutating it afterwards must
	// not reach the accumulator.
	block[0] = -1

	buf, _ := s.Stop()
	if buf.Data[0] != 1 {
		t.Fatal("accumulator aliases the callback buffer")
	}
}

func TestCaptureOrderSurvivesPreviewBackpressure(t *testing.T) {
	// Nobody drains the preview mailbox: preview chunks are dropped but the
	// accumulated recording must stay complete and ordered.
	n := NewNotifier()
	s := streamingSession(n, 1, 48000)

	const blocks = 32
	for b := 0; b < blocks; b++ {
		s.handleBlock([]float32{float32(b), float32(b), float32(b), float32(b)})
	}

	buf, _ := s.Stop()
	if buf.Frames() != blocks*4 {
		t.Fatalf("expected %d frames, got %d", blocks*4, buf.Frames())
	}
	for b := 0; b < blocks; b++ {
		if buf.Data[b*4] != float32(b) {
			t.Fatalf("block %d missing or reordered", b)
		}
	}

	// Only the latest preview chunk is retained.
	select {
	case chunk := <-n.Preview():
		if chunk[0] != float32(blocks-1) {
			t.Fatalf("expected latest preview chunk %d, got %v", blocks-1, chunk[0])
		}
	default:
		t.Fatal("expected one preview chunk")
	}
}

func TestCaptureStopWhenIdleReturnsEmptyBuffer(t *testing.T) {
	s := NewCaptureSession(zerolog.Nop(), nil)
	buf, err := s.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !buf.Empty() {
		t.Fatal("expected empty buffer from idle stop")
	}
}

func TestCaptureStopWithoutBlocksReturnsEmptyBuffer(t *testing.T) {
	s := streamingSession(nil, 2, 44100)
	buf, err := s.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !buf.Empty() {
		t.Fatal("expected empty buffer")
	}
	if buf.Channels != 2 || buf.SampleRate != 44100 {
		t.Fatalf("empty buffer should keep the session format, got %+v", buf)
	}
}

func TestCaptureCloseIdempotent(t *testing.T) {
	s := streamingSession(nil, 1, 48000)
	s.handleBlock([]float32{1, 2})

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if s.state != stateIdle {
		t.Fatal("expected idle state after close")
	}

	buf, _ := s.Stop()
	if !buf.Empty() {
		t.Fatal("close must discard the accumulator")
	}
}
