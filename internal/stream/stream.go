// internal/stream/stream.go

// Package stream reads a job's log frames from the service's /ws/process/{id}
// WebSocket. The client only ever reads; no frame is written upstream.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// ErrClosed is returned by Next once the remote side closes the stream normally.
var ErrClosed = errors.New("stream closed by remote")

// readLimit caps a single frame. Agent suggestions can be long LLM outputs.
const readLimit = 1 << 20

// Stream is a read-only source of log events for one job.
type Stream interface {
	// Next blocks until the next event arrives, the stream ends, or ctx is done.
	Next(ctx context.Context) (models.LogEvent, error)
	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Conn is a Stream over a coder/websocket client connection.
type Conn struct {
	c      *websocket.Conn
	url    string
	logger *logrus.Logger

	closeOnce sync.Once
	closeErr  error
}

// Dial opens the stream at url (ws:// or wss://).
func Dial(ctx context.Context, url string, logger *logrus.Logger) (*Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c.SetReadLimit(readLimit)
	logger.WithField("url", url).Debug("stream connected")
	return &Conn{c: c, url: url, logger: logger}, nil
}

// Next reads and decodes one text frame. Binary frames and malformed JSON are
// skipped with a warning; they never end the stream.
func (s *Conn) Next(ctx context.Context) (models.LogEvent, error) {
	for {
		msgType, data, err := s.c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return models.LogEvent{}, ErrClosed
			}
			return models.LogEvent{}, fmt.Errorf("read %s: %w", s.url, err)
		}
		if msgType != websocket.MessageText {
			s.logger.Warnf("ignoring non-text frame (type %d) on %s", msgType, s.url)
			continue
		}
		var ev models.LogEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warnf("ignoring malformed frame on %s: %v", s.url, err)
			continue
		}
		return ev, nil
	}
}

// Close performs a normal closure handshake.
func (s *Conn) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.c.Close(websocket.StatusNormalClosure, "client done")
		s.logger.WithField("url", s.url).Debug("stream closed")
	})
	return s.closeErr
}
