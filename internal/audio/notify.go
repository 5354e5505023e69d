package audio

// EventKind discriminates the engine's notifications to its consumer.
type EventKind int

const (
	// EventPlaybackPosition reports the playback ratio after a chunk.
	EventPlaybackPosition EventKind = iota
	// EventPlaybackFinished signals that a non-looping pass completed.
	EventPlaybackFinished
	// EventRecordingSaved reports the path of a persisted recording.
	EventRecordingSaved
)

// Event is one notification. Position is set for EventPlaybackPosition,
// Path for EventRecordingSaved.
type Event struct {
	Kind     EventKind
	Position float64
	Path     string
}

// Notifier carries engine output to a single consumer (the GUI) over two
// lanes with different delivery guarantees. Preview chunks are
// at-most-latest: a slow consumer sees the newest chunk, never a backlog.
// Events are ordered; when the consumer falls behind, the oldest queued
// event is displaced so a terminal event can never be lost. Neither lane
// ever blocks the sender.
type Notifier struct {
	preview chan []float32
	events  chan Event
}

// NewNotifier returns a notifier with a single-slot preview mailbox and a
// small ordered event queue.
func NewNotifier() *Notifier {
	return &Notifier{
		preview: make(chan []float32, 1),
		events:  make(chan Event, 16),
	}
}

// Preview is the live-waveform lane. Chunks are mono, unnormalized.
func (n *Notifier) Preview() <-chan []float32 {
	return n.preview
}

// Events is the ordered notification lane.
func (n *Notifier) Events() <-chan Event {
	return n.events
}

// PushPreview publishes the latest preview chunk, replacing any stale one.
// Safe to call from the capture callback: never blocks, never drops
// anything but the previous preview.
func (n *Notifier) PushPreview(mono []float32) {
	for {
		select {
		case n.preview <- mono:
			return
		default:
		}
		select {
		case <-n.preview:
		default:
		}
	}
}

// Emit queues an event without blocking, displacing the oldest queued event
// if the consumer is behind.
func (n *Notifier) Emit(ev Event) {
	for {
		select {
		case n.events <- ev:
			return
		default:
		}
		select {
		case <-n.events:
		default:
		}
	}
}
