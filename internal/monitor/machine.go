// internal/monitor/machine.go
package monitor

import (
	"fmt"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// State is the monitor's lifecycle state for one job.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	// StateError is client-local: a failed status check, a stalled stream, or
	// a job the service reports as failed. Recoverable through a recheck.
	StateError State = "error"
	// StateDisconnected means the stream ended without the completion sentinel.
	// Recoverable through a recheck.
	StateDisconnected State = "disconnected"
)

// active reports whether the job is still expected to make progress on the stream.
func (s State) active() bool {
	return s == StatePending || s == StateProcessing
}

// Input is anything the event loop can feed the machine.
type Input interface{ isInput() }

type (
	// Activated starts the monitor.
	Activated struct{}
	// Deactivated stops the monitor; nothing is processed afterwards.
	Deactivated struct{}
	// StatusFetched carries the result of a status check.
	StatusFetched struct{ Status models.JobStatus }
	// StatusFailed carries a failed status check.
	StatusFailed struct{ Err error }
	// StreamOpened confirms the stream of generation Gen connected.
	StreamOpened struct{ Gen int }
	// StreamFailed reports that stream Gen could not be opened.
	StreamFailed struct {
		Gen int
		Err error
	}
	// FrameReceived carries one log event from stream Gen.
	FrameReceived struct {
		Gen   int
		Event models.LogEvent
	}
	// StreamEnded reports that stream Gen stopped delivering frames.
	StreamEnded struct {
		Gen int
		Err error
	}
	// WatchdogFired reports that watchdog arming Seq expired.
	WatchdogFired struct{ Seq int }
	// GraceElapsed fires once the post-completion delay is over.
	GraceElapsed struct{}
	// RecheckRequested is the user's manual status re-check.
	RecheckRequested struct{}
)

func (Activated) isInput()        {}
func (Deactivated) isInput()      {}
func (StatusFetched) isInput()    {}
func (StatusFailed) isInput()     {}
func (StreamOpened) isInput()     {}
func (StreamFailed) isInput()     {}
func (FrameReceived) isInput()    {}
func (StreamEnded) isInput()      {}
func (WatchdogFired) isInput()    {}
func (GraceElapsed) isInput()     {}
func (RecheckRequested) isInput() {}

// EffectKind names a side effect the driver must perform.
type EffectKind int

const (
	EffectFetchStatus EffectKind = iota
	EffectOpenStream
	EffectCloseStream
	EffectArmWatchdog
	EffectStopWatchdog
	EffectScheduleHandoff
	EffectCancelHandoff
	EffectHandoff
)

func (k EffectKind) String() string {
	switch k {
	case EffectFetchStatus:
		return "fetch-status"
	case EffectOpenStream:
		return "open-stream"
	case EffectCloseStream:
		return "close-stream"
	case EffectArmWatchdog:
		return "arm-watchdog"
	case EffectStopWatchdog:
		return "stop-watchdog"
	case EffectScheduleHandoff:
		return "schedule-handoff"
	case EffectCancelHandoff:
		return "cancel-handoff"
	case EffectHandoff:
		return "handoff"
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// Effect is one instruction to the driver. Gen and Seq fence stream and
// watchdog inputs so late arrivals from a superseded stream are dropped.
type Effect struct {
	Kind EffectKind
	Gen  int
	Seq  int
}

// Notices shown alongside the state.
const (
	NoticeJobFailed    = "The service reports that this job failed."
	NoticeStreamClosed = "The log stream closed before the job reported completion."
	NoticeStalled      = "The job stopped reporting progress."
)

// Machine is the job monitor's state. It is a value: Apply returns the next
// machine and leaves the receiver untouched apart from the shared event log,
// which is append-only.
type Machine struct {
	JobID  int
	State  State
	Events []models.LogEvent
	Notice string

	fetching         bool
	streamGen        int
	streaming        bool
	watchSeq         int
	watching         bool
	handoffScheduled bool
	handedOff        bool
	inactive         bool
}

// NewMachine returns the machine for jobID before activation.
func NewMachine(jobID int) Machine {
	return Machine{JobID: jobID, State: StatePending}
}

// HandedOff reports whether control has passed to the result presenter.
func (m Machine) HandedOff() bool { return m.handedOff }

// Inactive reports whether the machine has been deactivated.
func (m Machine) Inactive() bool { return m.inactive }

// Apply advances the machine by one input.
func (m Machine) Apply(in Input) (Machine, []Effect) {
	if m.inactive {
		return m, nil
	}
	switch in := in.(type) {
	case Activated:
		if m.fetching || m.streaming || m.handedOff {
			return m, nil
		}
		m.fetching = true
		return m, []Effect{{Kind: EffectFetchStatus}}

	case Deactivated:
		m.inactive = true
		var effs []Effect
		if m.streaming {
			m.streaming = false
			effs = append(effs, Effect{Kind: EffectCloseStream, Gen: m.streamGen})
		}
		if m.watching {
			m.watching = false
			effs = append(effs, Effect{Kind: EffectStopWatchdog})
		}
		if m.handoffScheduled && !m.handedOff {
			effs = append(effs, Effect{Kind: EffectCancelHandoff})
		}
		return m, effs

	case StatusFetched:
		if !m.fetching {
			return m, nil
		}
		m.fetching = false
		return m.onStatus(in.Status)

	case StatusFailed:
		if !m.fetching {
			return m, nil
		}
		m.fetching = false
		m.State = StateError
		m.Notice = fmt.Sprintf("Could not check job status: %v", in.Err)
		return m, nil

	case StreamOpened:
		return m, nil

	case StreamFailed:
		if !m.streaming || in.Gen != m.streamGen {
			return m, nil
		}
		m.streaming = false
		effs := m.stopWatchdog(nil)
		if m.State.active() {
			m.State = StateDisconnected
			m.Notice = fmt.Sprintf("Could not connect to the log stream: %v", in.Err)
		}
		return m, effs

	case FrameReceived:
		if !m.streaming || in.Gen != m.streamGen {
			return m, nil
		}
		m.Events = append(m.Events, in.Event)
		if !m.State.active() {
			return m, nil
		}
		if in.Event.IsSentinel() {
			m.State = StateCompleted
			m.Notice = ""
			effs := m.stopWatchdog(nil)
			m.handoffScheduled = true
			return m, append(effs, Effect{Kind: EffectScheduleHandoff})
		}
		return m, m.armWatchdog(nil)

	case StreamEnded:
		if !m.streaming || in.Gen != m.streamGen {
			return m, nil
		}
		m.streaming = false
		effs := m.stopWatchdog(nil)
		if m.State.active() {
			m.State = StateDisconnected
			m.Notice = NoticeStreamClosed
		}
		return m, effs

	case WatchdogFired:
		if !m.watching || in.Seq != m.watchSeq {
			return m, nil
		}
		m.watching = false
		if !m.State.active() {
			return m, nil
		}
		m.State = StateError
		m.Notice = NoticeStalled
		var effs []Effect
		if m.streaming {
			m.streaming = false
			effs = append(effs, Effect{Kind: EffectCloseStream, Gen: m.streamGen})
		}
		return m, effs

	case GraceElapsed:
		if m.State != StateCompleted || !m.handoffScheduled || m.handedOff {
			return m, nil
		}
		return m.handoff()

	case RecheckRequested:
		if m.fetching || (m.State != StateError && m.State != StateDisconnected) {
			return m, nil
		}
		m.fetching = true
		return m, []Effect{{Kind: EffectFetchStatus}}
	}
	return m, nil
}

func (m Machine) onStatus(s models.JobStatus) (Machine, []Effect) {
	switch s {
	case models.StatusCompleted:
		m.State = StateCompleted
		m.Notice = ""
		return m.handoff()
	case models.StatusError:
		m.State = StateError
		m.Notice = NoticeJobFailed
		var effs []Effect
		if m.streaming {
			m.streaming = false
			effs = append(effs, Effect{Kind: EffectCloseStream, Gen: m.streamGen})
		}
		return m, m.stopWatchdog(effs)
	default:
		m.State = StatePending
		if s == models.StatusProcessing {
			m.State = StateProcessing
		}
		m.Notice = ""
		var effs []Effect
		if !m.streaming {
			m.streamGen++
			m.streaming = true
			effs = append(effs, Effect{Kind: EffectOpenStream, Gen: m.streamGen})
		}
		return m, m.armWatchdog(effs)
	}
}

func (m *Machine) handoff() (Machine, []Effect) {
	m.handedOff = true
	effs := m.stopWatchdog(nil)
	if m.streaming {
		m.streaming = false
		effs = append(effs, Effect{Kind: EffectCloseStream, Gen: m.streamGen})
	}
	return *m, append(effs, Effect{Kind: EffectHandoff})
}

func (m *Machine) armWatchdog(effs []Effect) []Effect {
	m.watchSeq++
	m.watching = true
	return append(effs, Effect{Kind: EffectArmWatchdog, Seq: m.watchSeq})
}

func (m *Machine) stopWatchdog(effs []Effect) []Effect {
	if !m.watching {
		return effs
	}
	m.watching = false
	return append(effs, Effect{Kind: EffectStopWatchdog})
}
