package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func kinds(effs []Effect) []EffectKind {
	out := make([]EffectKind, 0, len(effs))
	for _, e := range effs {
		out = append(out, e.Kind)
	}
	return out
}

func frame(msg string) models.LogEvent {
	return models.LogEvent{Timestamp: 1, AgentName: models.SystemAgent, Message: msg}
}

// streaming returns a machine that has fetched status s and opened stream 1.
func streaming(t *testing.T, s models.JobStatus) Machine {
	t.Helper()
	m, effs := NewMachine(5).Apply(Activated{})
	require.Equal(t, []EffectKind{EffectFetchStatus}, kinds(effs))
	m, effs = m.Apply(StatusFetched{Status: s})
	require.Equal(t, []EffectKind{EffectOpenStream, EffectArmWatchdog}, kinds(effs))
	require.Equal(t, 1, effs[0].Gen)
	m, _ = m.Apply(StreamOpened{Gen: 1})
	return m
}

func TestCompletedOnActivationSkipsStream(t *testing.T) {
	m, _ := NewMachine(5).Apply(Activated{})
	m, effs := m.Apply(StatusFetched{Status: models.StatusCompleted})

	assert.Equal(t, StateCompleted, m.State)
	assert.Equal(t, []EffectKind{EffectHandoff}, kinds(effs), "no stream, immediate handoff")
	assert.True(t, m.HandedOff())
}

func TestFailedJobOnActivation(t *testing.T) {
	m, _ := NewMachine(5).Apply(Activated{})
	m, effs := m.Apply(StatusFetched{Status: models.StatusError})

	assert.Equal(t, StateError, m.State)
	assert.Equal(t, NoticeJobFailed, m.Notice)
	assert.Empty(t, effs)
	assert.True(t, Project(m).CanRecheck)
}

func TestStatusFetchFailure(t *testing.T) {
	m, _ := NewMachine(5).Apply(Activated{})
	m, effs := m.Apply(StatusFailed{Err: errors.New("connection refused")})

	assert.Equal(t, StateError, m.State)
	assert.Contains(t, m.Notice, "connection refused")
	assert.Empty(t, effs)
}

func TestFramesDoNotChangeState(t *testing.T) {
	m := streaming(t, models.StatusProcessing)

	var effs []Effect
	m, effs = m.Apply(FrameReceived{Gen: 1, Event: frame("status: completed")})
	assert.Equal(t, StateProcessing, m.State)
	assert.Equal(t, []EffectKind{EffectArmWatchdog}, kinds(effs))

	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame("Deck generation complete")})
	assert.Equal(t, StateProcessing, m.State, "sentinel match is exact")
}

func TestSentinelCompletesOnce(t *testing.T) {
	m := streaming(t, models.StatusPending)
	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame("Starting deck generation")})

	m, effs := m.Apply(FrameReceived{Gen: 1, Event: frame(models.SentinelMessage)})
	assert.Equal(t, StateCompleted, m.State)
	assert.Equal(t, []EffectKind{EffectStopWatchdog, EffectScheduleHandoff}, kinds(effs))
	assert.False(t, m.HandedOff(), "handoff waits for the grace delay")

	m, effs = m.Apply(FrameReceived{Gen: 1, Event: frame(models.SentinelMessage)})
	assert.Empty(t, effs, "second sentinel schedules nothing")
	assert.Len(t, m.Events, 3, "duplicate frames are kept")

	m, effs = m.Apply(GraceElapsed{})
	assert.Equal(t, []EffectKind{EffectCloseStream, EffectHandoff}, kinds(effs))
	assert.True(t, m.HandedOff())

	_, effs = m.Apply(GraceElapsed{})
	assert.Empty(t, effs, "handoff happens once")
}

func TestRemoteCloseDisconnects(t *testing.T) {
	m := streaming(t, models.StatusProcessing)

	m, effs := m.Apply(StreamEnded{Gen: 1, Err: errors.New("closed")})
	assert.Equal(t, StateDisconnected, m.State)
	assert.Equal(t, NoticeStreamClosed, m.Notice)
	assert.Equal(t, []EffectKind{EffectStopWatchdog}, kinds(effs))
	assert.True(t, Project(m).CanRecheck)

	m, effs = m.Apply(RecheckRequested{})
	assert.Equal(t, []EffectKind{EffectFetchStatus}, kinds(effs))
	assert.True(t, Project(m).Checking)

	m, effs = m.Apply(StatusFetched{Status: models.StatusProcessing})
	require.Equal(t, []EffectKind{EffectOpenStream, EffectArmWatchdog}, kinds(effs))
	assert.Equal(t, 2, effs[0].Gen)
	assert.Equal(t, StateProcessing, m.State)

	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame("stale")})
	assert.Empty(t, m.Events, "frames from a superseded stream are dropped")
	m, _ = m.Apply(FrameReceived{Gen: 2, Event: frame("fresh")})
	assert.Len(t, m.Events, 1)
}

func TestRemoteCloseAfterCompletionIsIgnored(t *testing.T) {
	m := streaming(t, models.StatusProcessing)
	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame(models.SentinelMessage)})
	m, effs := m.Apply(StreamEnded{Gen: 1})
	assert.Equal(t, StateCompleted, m.State)
	assert.Empty(t, effs)

	m, effs = m.Apply(GraceElapsed{})
	assert.Equal(t, []EffectKind{EffectHandoff}, kinds(effs))
	assert.True(t, m.HandedOff())
}

func TestStreamDialFailure(t *testing.T) {
	m := streaming(t, models.StatusPending)
	m, _ = m.Apply(StreamFailed{Gen: 1, Err: errors.New("bad handshake")})
	assert.Equal(t, StateDisconnected, m.State)
	assert.Contains(t, m.Notice, "bad handshake")
}

func TestWatchdogStall(t *testing.T) {
	m := streaming(t, models.StatusProcessing)
	m, effs := m.Apply(FrameReceived{Gen: 1, Event: frame("thinking")})
	require.Equal(t, 2, effs[0].Seq)

	m, effs = m.Apply(WatchdogFired{Seq: 1})
	assert.Empty(t, effs, "stale watchdog ignored")
	assert.Equal(t, StateProcessing, m.State)

	m, effs = m.Apply(WatchdogFired{Seq: 2})
	assert.Equal(t, StateError, m.State)
	assert.Equal(t, NoticeStalled, m.Notice)
	assert.Equal(t, []EffectKind{EffectCloseStream}, kinds(effs))

	m, effs = m.Apply(RecheckRequested{})
	assert.Equal(t, []EffectKind{EffectFetchStatus}, kinds(effs))
	m, effs = m.Apply(StatusFetched{Status: models.StatusCompleted})
	assert.Equal(t, []EffectKind{EffectHandoff}, kinds(effs))
	assert.Equal(t, StateCompleted, m.State)
}

func TestDeactivationStopsEverything(t *testing.T) {
	m := streaming(t, models.StatusProcessing)
	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame(models.SentinelMessage)})

	m, effs := m.Apply(Deactivated{})
	assert.Equal(t, []EffectKind{EffectCloseStream, EffectCancelHandoff}, kinds(effs))
	assert.True(t, m.Inactive())

	before := m
	m, effs = m.Apply(GraceElapsed{})
	assert.Empty(t, effs)
	assert.False(t, m.HandedOff(), "no transition after deactivation")
	m, _ = m.Apply(FrameReceived{Gen: 1, Event: frame("late")})
	assert.Equal(t, before.Events, m.Events)
}

func TestRecheckIgnoredWhileHealthy(t *testing.T) {
	m := streaming(t, models.StatusProcessing)
	_, effs := m.Apply(RecheckRequested{})
	assert.Empty(t, effs)
}

func TestProjectPreservesArrivalOrder(t *testing.T) {
	m := streaming(t, models.StatusProcessing)
	for _, msg := range []string{"b", "a", "a", "c"} {
		m, _ = m.Apply(FrameReceived{Gen: 1, Event: models.LogEvent{AgentName: "Agent-1", Message: msg}})
	}
	v := Project(m)
	var got []string
	for _, l := range v.Lines {
		got = append(got, l.Message)
		assert.False(t, l.System)
	}
	assert.Equal(t, []string{"b", "a", "a", "c"}, got)
	assert.Equal(t, 5, v.JobID)
	assert.Equal(t, Project(m), v, "projection is pure")
}
