package stream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// frameServer writes the given frames then closes with status.
func frameServer(t *testing.T, frames []string, status websocket.StatusCode) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, f := range frames {
			if err := c.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		c.Close(status, "done")
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestConnReadsFramesInOrder(t *testing.T) {
	srv := frameServer(t, []string{
		`{"timestamp":1.0,"agent_name":"System","message":"Starting"}`,
		`not json`,
		`{"timestamp":2.0,"agent_name":"Agent-1","message":"Thinking"}`,
		`{"timestamp":3.0,"agent_name":"System","message":"Deck generation complete."}`,
	}, websocket.StatusNormalClosure)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, wsURL(srv), quietLogger())
	require.NoError(t, err)
	defer conn.Close()

	var messages []string
	for {
		ev, err := conn.Next(ctx)
		if err != nil {
			assert.ErrorIs(t, err, ErrClosed)
			break
		}
		messages = append(messages, ev.Message)
	}
	assert.Equal(t, []string{"Starting", "Thinking", "Deck generation complete."}, messages)
}

func TestConnAbnormalClose(t *testing.T) {
	srv := frameServer(t, nil, websocket.StatusInternalError)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, wsURL(srv), quietLogger())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Next(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/ws/process/1", quietLogger())
	assert.Error(t, err)
}

func TestCloseIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_, _, _ = c.Read(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, wsURL(srv), quietLogger())
	require.NoError(t, err)

	first := conn.Close()
	assert.Equal(t, first, conn.Close())
}
