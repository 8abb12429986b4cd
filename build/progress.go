package build

import (
	"sync"

	"github.com/google/uuid"
)

// Phase names one stage of a build run as seen on the progress stream.
type Phase string

const (
	PhaseStarting             Phase = "starting"
	PhaseDependencyResolution Phase = "dependency-resolution"
	PhaseChangeDetection      Phase = "change-detection"
	PhaseTypeResolution       Phase = "type-resolution"
	PhaseCaching              Phase = "caching"
	PhaseOutputGeneration     Phase = "output-generation"
	PhaseComplete             Phase = "complete"
	PhaseError                Phase = "error"
)

// ProgressEvent is one observation pushed to build subscribers.
type ProgressEvent struct {
	// BuildID identifies the build run the event belongs to.
	BuildID uuid.UUID

	// Phase is the stage the build is in.
	Phase Phase

	// Percent is the overall completion estimate in [0, 100].
	Percent float64

	// Message is a short human-readable description.
	Message string
}

// ProgressStream fans build progress out to subscribers.  Publishing is
// fire-and-forget: a slow subscriber loses events rather than ever blocking
// the pipeline.
type ProgressStream struct {
	id uuid.UUID

	mu     sync.Mutex
	subs   []chan ProgressEvent
	closed bool
}

// NewProgressStream creates a progress stream for a fresh build run.
// Callers subscribe before passing the stream to a build.
func NewProgressStream() *ProgressStream {
	return &ProgressStream{id: uuid.New()}
}

// BuildID returns the identifier of the build run this stream reports on.
func (ps *ProgressStream) BuildID() uuid.UUID {
	return ps.id
}

// Subscribe registers a new observer.  The returned channel is buffered and
// closed when the build finishes.
func (ps *ProgressStream) Subscribe() <-chan ProgressEvent {
	ch := make(chan ProgressEvent, 64)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		close(ch)
		return ch
	}

	ps.subs = append(ps.subs, ch)
	return ch
}

// publish pushes an event to every subscriber, dropping it for subscribers
// whose buffers are full.
func (ps *ProgressStream) publish(phase Phase, percent float64, message string) {
	event := ProgressEvent{BuildID: ps.id, Phase: phase, Percent: percent, Message: message}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return
	}

	for _, ch := range ps.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// close ends the stream, closing every subscriber channel.
func (ps *ProgressStream) close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return
	}

	ps.closed = true
	for _, ch := range ps.subs {
		close(ch)
	}
}
