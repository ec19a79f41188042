package hub

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func testHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger)
}

func drain(sub *Subscription) []string {
	var msgs []string
	for ev := range sub.C {
		msgs = append(msgs, ev.Message)
	}
	return msgs
}

func TestBroadcastOnlyReachesSameProcess(t *testing.T) {
	h := testHub()
	a := h.Subscribe("1")
	b := h.Subscribe("2")

	h.Broadcast(models.NewLogEvent("1", "Agent-1", "hello"))
	h.Finish(models.NewLogEvent("1", models.SystemAgent, models.SentinelMessage))

	assert.Equal(t, []string{"hello", models.SentinelMessage}, drain(a))
	assert.Len(t, b.C, 0)
	assert.Equal(t, 1, h.Subscribers("2"))
}

func TestLateSubscriberGetsFinalEvent(t *testing.T) {
	h := testHub()
	h.Broadcast(models.NewLogEvent("7", "Agent-1", "nobody listening"))
	h.Finish(models.NewLogEvent("7", models.SystemAgent, "Error: boom"))

	sub := h.Subscribe("7")
	assert.Equal(t, []string{"Error: boom"}, drain(sub))
	assert.Equal(t, 0, h.Subscribers("7"))
}

func TestUnsubscribeTwice(t *testing.T) {
	h := testHub()
	sub := h.Subscribe("3")
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("3"))
}

func TestSlowSubscriberDropped(t *testing.T) {
	h := testHub()
	h.buffer = 2
	slow := h.Subscribe("4")

	for i := 0; i < 3; i++ {
		h.Broadcast(models.NewLogEvent("4", "Agent-1", "tick"))
	}

	require.Equal(t, 0, h.Subscribers("4"))
	assert.True(t, slow.Dropped())
	assert.Equal(t, []string{"tick", "tick"}, drain(slow))

	// Finish after the drop must not close the channel again.
	h.Finish(models.NewLogEvent("4", models.SystemAgent, models.SentinelMessage))
}

func TestFinishedSubscriberNotDropped(t *testing.T) {
	h := testHub()
	sub := h.Subscribe("5")
	h.Finish(models.NewLogEvent("5", models.SystemAgent, models.SentinelMessage))

	assert.Equal(t, []string{models.SentinelMessage}, drain(sub))
	assert.False(t, sub.Dropped())

	late := h.Subscribe("5")
	drain(late)
	assert.False(t, late.Dropped())
}

func TestFinalEventExpires(t *testing.T) {
	h := testHub()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	h.finalTTL = time.Minute

	h.Finish(models.NewLogEvent("8", models.SystemAgent, models.SentinelMessage))
	require.True(t, h.Finished("8"))

	now = now.Add(30 * time.Second)
	assert.Equal(t, []string{models.SentinelMessage}, drain(h.Subscribe("8")))

	now = now.Add(time.Minute)
	assert.False(t, h.Finished("8"))
	assert.Len(t, h.final, 0)

	// Without a replayable final event the subscriber stays live.
	sub := h.Subscribe("8")
	assert.Equal(t, 1, h.Subscribers("8"))
	h.Unsubscribe(sub)
}

func TestFinishPrunesOtherExpiredEvents(t *testing.T) {
	h := testHub()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	for _, pid := range []string{"10", "11", "12"} {
		h.Finish(models.NewLogEvent(pid, models.SystemAgent, models.SentinelMessage))
	}
	require.Len(t, h.final, 3)

	now = now.Add(DefaultFinalTTL + time.Second)
	h.Finish(models.NewLogEvent("13", models.SystemAgent, models.SentinelMessage))
	assert.Len(t, h.final, 1)
	assert.True(t, h.Finished("13"))
}

func TestWithFinalTTL(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger, WithFinalTTL(time.Second), WithBuffer(4))
	assert.Equal(t, time.Second, h.finalTTL)
	assert.Equal(t, 4, h.buffer)
}
