// internal/models/log_event.go
package models

import (
	"math"
	"time"
)

// SystemAgent is the agent name reserved for infrastructure messages.
const SystemAgent = "System"

// SentinelMessage is the exact log text that marks a job as complete. It is the
// only completion signal the stream carries.
const SentinelMessage = "Deck generation complete."

// LogEvent is one frame of the /ws/process/{id} stream.
type LogEvent struct {
	ProcessID string  `json:"process_id,omitempty"`
	Timestamp float64 `json:"timestamp"` // seconds since epoch
	AgentName string  `json:"agent_name"`
	Message   string  `json:"message"`
}

// IsSentinel reports whether the event signals job completion.
func (e LogEvent) IsSentinel() bool {
	return e.Message == SentinelMessage
}

// IsSystem reports whether the event came from the service itself rather than an agent.
func (e LogEvent) IsSystem() bool {
	return e.AgentName == SystemAgent
}

// Time converts the fractional epoch timestamp.
func (e LogEvent) Time() time.Time {
	sec, frac := math.Modf(e.Timestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// NewLogEvent stamps a message with the current time.
func NewLogEvent(processID, agent, message string) LogEvent {
	return LogEvent{
		ProcessID: processID,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		AgentName: agent,
		Message:   message,
	}
}
