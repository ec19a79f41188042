// internal/hub/hub.go

// Package hub fans job log events out to the websocket connections watching
// each job.
package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 128

// DefaultFinalTTL is how long a finished process's final event is replayed.
const DefaultFinalTTL = 10 * time.Minute

// Subscription receives the events of one process. C is closed when the job
// finishes or the subscriber is dropped for falling behind; Dropped tells the
// two apart.
type Subscription struct {
	C         <-chan models.LogEvent
	ProcessID string

	ch      chan models.LogEvent
	dropped atomic.Bool
}

// Dropped reports whether C was closed because the subscriber fell behind
// while the job was still running.
func (s *Subscription) Dropped() bool {
	return s.dropped.Load()
}

type finalEvent struct {
	ev models.LogEvent
	at time.Time
}

// Hub tracks live subscribers per process id. A finished process keeps its
// final event for the replay TTL so that late subscribers still observe the
// outcome.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*Subscription]struct{}
	final    map[string]finalEvent
	buffer   int
	finalTTL time.Duration
	now      func() time.Time
	logger   *logrus.Logger
}

type Option func(*Hub)

// WithFinalTTL sets how long final events are replayed.
func WithFinalTTL(d time.Duration) Option {
	return func(h *Hub) { h.finalTTL = d }
}

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer(n int) Option {
	return func(h *Hub) { h.buffer = n }
}

func New(logger *logrus.Logger, opts ...Option) *Hub {
	h := &Hub{
		subs:     make(map[string]map[*Subscription]struct{}),
		final:    make(map[string]finalEvent),
		buffer:   DefaultBuffer,
		finalTTL: DefaultFinalTTL,
		now:      time.Now,
		logger:   logger,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscribe registers interest in processID. If the process already finished
// the subscription yields the final event and is closed.
func (h *Hub) Subscribe(processID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneUnsafe()

	ch := make(chan models.LogEvent, h.buffer)
	sub := &Subscription{C: ch, ProcessID: processID, ch: ch}

	if f, done := h.final[processID]; done {
		ch <- f.ev
		close(ch)
		return sub
	}

	set, ok := h.subs[processID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[processID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeUnsafe(sub)
}

// Broadcast delivers ev to every subscriber of ev.ProcessID without blocking.
// Subscribers whose buffer is full are dropped.
func (h *Hub) Broadcast(ev models.LogEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastUnsafe(ev)
}

// Finish broadcasts the final event of a process, then closes every
// subscriber and remembers ev for late subscribers.
func (h *Hub) Finish(ev models.LogEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastUnsafe(ev)
	for sub := range h.subs[ev.ProcessID] {
		close(sub.ch)
	}
	delete(h.subs, ev.ProcessID)
	h.pruneUnsafe()
	h.final[ev.ProcessID] = finalEvent{ev: ev, at: h.now()}
}

// Finished reports whether a final event for processID is still replayable.
func (h *Hub) Finished(processID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneUnsafe()
	_, ok := h.final[processID]
	return ok
}

// Subscribers reports the live subscriber count for processID.
func (h *Hub) Subscribers(processID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[processID])
}

func (h *Hub) broadcastUnsafe(ev models.LogEvent) {
	for sub := range h.subs[ev.ProcessID] {
		select {
		case sub.ch <- ev:
		default:
			h.logger.WithField("process_id", ev.ProcessID).Warn("dropping slow log subscriber")
			sub.dropped.Store(true)
			h.removeUnsafe(sub)
		}
	}
}

// pruneUnsafe forgets final events older than the replay TTL.
func (h *Hub) pruneUnsafe() {
	cutoff := h.now().Add(-h.finalTTL)
	for pid, f := range h.final {
		if f.at.Before(cutoff) {
			delete(h.final, pid)
		}
	}
}

func (h *Hub) removeUnsafe(sub *Subscription) {
	set, ok := h.subs[sub.ProcessID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, sub.ProcessID)
	}
}
