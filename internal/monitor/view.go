// internal/monitor/view.go
package monitor

import (
	"time"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// Line is one rendered log entry.
type Line struct {
	Time    time.Time
	Agent   string
	Message string
	System  bool
}

// View is everything the monitoring screen renders.
type View struct {
	JobID      int
	State      State
	Lines      []Line
	Notice     string
	Checking   bool // a status check is in flight
	CanRecheck bool
	Completed  bool
}

// Project derives the view from the machine. It is pure: the same machine
// always yields the same view, and lines keep arrival order without dedupe.
func Project(m Machine) View {
	lines := make([]Line, len(m.Events))
	for i, ev := range m.Events {
		lines[i] = lineOf(ev)
	}
	return View{
		JobID:      m.JobID,
		State:      m.State,
		Lines:      lines,
		Notice:     m.Notice,
		Checking:   m.fetching,
		CanRecheck: !m.fetching && !m.inactive && (m.State == StateError || m.State == StateDisconnected),
		Completed:  m.State == StateCompleted,
	}
}

func lineOf(ev models.LogEvent) Line {
	return Line{
		Time:    ev.Time(),
		Agent:   ev.AgentName,
		Message: ev.Message,
		System:  ev.IsSystem(),
	}
}
