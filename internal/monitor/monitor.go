// internal/monitor/monitor.go

// Package monitor follows one generation job from its status snapshot through
// the live log stream until it completes, then hands the job off for display.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/stream"
)

// Default timings.
const (
	DefaultGraceDelay   = time.Second
	DefaultStallTimeout = 10 * time.Minute
)

// ErrDeactivated is returned by Run on a monitor whose earlier Run was
// cancelled. A deactivated machine ignores every input, so it cannot resume.
var ErrDeactivated = errors.New("monitor: deactivated")

// Backend is the part of the service the monitor needs.
type Backend interface {
	GetDeck(ctx context.Context, id int) (*models.Deck, error)
	OpenStream(ctx context.Context, id int) (stream.Stream, error)
}

// Options tunes a Monitor. Zero values fall back to defaults; a negative
// StallTimeout disables the watchdog.
type Options struct {
	GraceDelay   time.Duration
	StallTimeout time.Duration
	Logger       *logrus.Logger

	// OnChange receives the view after every processed input. It runs on the
	// monitor's loop goroutine and must not block.
	OnChange func(View)
	// OnHandoff is called exactly once, when the job is ready for display.
	OnHandoff func(jobID int)
}

// Monitor drives a Machine. All inputs are processed by a single loop, so the
// machine never sees concurrent transitions.
type Monitor struct {
	backend Backend
	jobID   int
	opts    Options
	inputs  chan Input

	mu      sync.RWMutex
	machine Machine
}

// New builds a monitor for jobID. Nothing happens until Run.
func New(backend Backend, jobID int, opts Options) *Monitor {
	if opts.GraceDelay == 0 {
		opts.GraceDelay = DefaultGraceDelay
	}
	if opts.StallTimeout == 0 {
		opts.StallTimeout = DefaultStallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Monitor{
		backend: backend,
		jobID:   jobID,
		opts:    opts,
		inputs:  make(chan Input, 64),
		machine: NewMachine(jobID),
	}
}

// Snapshot returns the current view.
func (m *Monitor) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Project(m.machine)
}

// Recheck asks for a manual status check. It only has an effect in the error
// and disconnected states.
func (m *Monitor) Recheck() {
	select {
	case m.inputs <- RecheckRequested{}:
	default:
	}
}

// Run activates the monitor and blocks until the job is handed off (nil) or
// ctx is cancelled (ctx.Err()). Cancelling ctx is deactivation: the stream is
// closed and no further events are processed. Run waits for every goroutine
// it started before returning.
//
// Calling Run again after a handoff returns nil at once; after a deactivation
// it returns ErrDeactivated.
func (m *Monitor) Run(ctx context.Context) error {
	m.mu.RLock()
	handedOff, inactive := m.machine.HandedOff(), m.machine.Inactive()
	m.mu.RUnlock()
	switch {
	case handedOff:
		return nil
	case inactive:
		return ErrDeactivated
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	d := &driver{m: m, ctx: loopCtx, log: m.opts.Logger.WithField("job_id", m.jobID)}
	defer func() {
		d.stopTimers()
		cancel()
		d.wg.Wait()
	}()

	if m.step(d, Activated{}) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			m.step(d, Deactivated{})
			d.log.Debug("monitor deactivated")
			return ctx.Err()
		case in := <-m.inputs:
			if m.step(d, in) {
				return nil
			}
		}
	}
}

// step applies one input, performs its effects, and reports whether the job
// was handed off.
func (m *Monitor) step(d *driver, in Input) bool {
	m.mu.Lock()
	prev := m.machine.State
	next, effs := m.machine.Apply(in)
	m.machine = next
	m.mu.Unlock()

	if next.State != prev {
		d.log.WithFields(logrus.Fields{"from": prev, "to": next.State}).Info("job state changed")
	}
	handedOff := false
	for _, eff := range effs {
		if eff.Kind == EffectHandoff {
			handedOff = true
		}
		d.perform(eff)
	}
	if m.opts.OnChange != nil {
		m.opts.OnChange(Project(next))
	}
	if handedOff && m.opts.OnHandoff != nil {
		m.opts.OnHandoff(m.jobID)
	}
	return handedOff
}

// driver owns the goroutines, timers, and stream behind the effects.
type driver struct {
	m   *Monitor
	ctx context.Context
	log *logrus.Entry
	wg  sync.WaitGroup

	mu           sync.Mutex
	stream       stream.Stream
	streamGen    int
	streamCancel context.CancelFunc
	watchdog     *time.Timer
	grace        *time.Timer
}

func (d *driver) send(in Input) {
	select {
	case d.m.inputs <- in:
	case <-d.ctx.Done():
	}
}

func (d *driver) perform(eff Effect) {
	switch eff.Kind {
	case EffectFetchStatus:
		d.fetchStatus()
	case EffectOpenStream:
		d.openStream(eff.Gen)
	case EffectCloseStream:
		d.closeStream()
	case EffectArmWatchdog:
		d.armWatchdog(eff.Seq)
	case EffectStopWatchdog:
		d.stopWatchdog()
	case EffectScheduleHandoff:
		d.mu.Lock()
		d.grace = time.AfterFunc(d.m.opts.GraceDelay, func() { d.send(GraceElapsed{}) })
		d.mu.Unlock()
	case EffectCancelHandoff:
		d.mu.Lock()
		if d.grace != nil {
			d.grace.Stop()
		}
		d.mu.Unlock()
	case EffectHandoff:
		d.log.Info("job ready, handing off")
	}
}

func (d *driver) fetchStatus() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		deck, err := d.m.backend.GetDeck(d.ctx, d.m.jobID)
		if err != nil {
			d.log.WithError(err).Warn("status check failed")
			d.send(StatusFailed{Err: err})
			return
		}
		d.send(StatusFetched{Status: models.ParseJobStatus(string(deck.Status))})
	}()
}

func (d *driver) openStream(gen int) {
	ctx, cancel := context.WithCancel(d.ctx)
	d.mu.Lock()
	d.streamGen = gen
	d.streamCancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		s, err := d.m.backend.OpenStream(ctx, d.m.jobID)
		if err != nil {
			d.send(StreamFailed{Gen: gen, Err: err})
			return
		}

		d.mu.Lock()
		if ctx.Err() != nil || d.streamGen != gen {
			d.mu.Unlock()
			_ = s.Close()
			return
		}
		d.stream = s
		d.mu.Unlock()

		d.send(StreamOpened{Gen: gen})
		for {
			ev, err := s.Next(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.log.WithError(err).Info("log stream ended")
				}
				d.mu.Lock()
				if d.stream == s {
					d.stream = nil
				}
				d.mu.Unlock()
				_ = s.Close()
				d.send(StreamEnded{Gen: gen, Err: err})
				return
			}
			d.send(FrameReceived{Gen: gen, Event: ev})
		}
	}()
}

func (d *driver) closeStream() {
	d.mu.Lock()
	s := d.stream
	d.stream = nil
	if d.streamCancel != nil {
		d.streamCancel()
		d.streamCancel = nil
	}
	d.mu.Unlock()

	if s == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = s.Close()
	}()
}

func (d *driver) armWatchdog(seq int) {
	if d.m.opts.StallTimeout < 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watchdog != nil {
		d.watchdog.Stop()
	}
	d.watchdog = time.AfterFunc(d.m.opts.StallTimeout, func() { d.send(WatchdogFired{Seq: seq}) })
}

func (d *driver) stopWatchdog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watchdog != nil {
		d.watchdog.Stop()
		d.watchdog = nil
	}
}

func (d *driver) stopTimers() {
	d.stopWatchdog()
	d.mu.Lock()
	if d.grace != nil {
		d.grace.Stop()
	}
	d.mu.Unlock()
	d.closeStream()
}
