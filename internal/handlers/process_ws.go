// internal/handlers/process_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/hub"
	"github.com/jason-s-yu/deckforge/internal/middleware"
	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

const writeTimeout = 5 * time.Second

// ProcessWSHandler streams the log events of job {id}. Inbound messages are
// read and ignored. The socket is closed normally once the job finishes, or
// with StatusTryAgainLater if the connection could not keep up.
func (s *Server) ProcessWSHandler(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	path := r.URL.Path

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	id, ok := idParam(r)
	if !ok {
		c.Close(InvalidProcessIDError, "process id must be a number")
		return
	}
	pid := strconv.Itoa(id)

	// Subscribe before reading the deck so a job that finishes in between is
	// still observed through the hub.
	sub := s.Hub.Subscribe(pid)
	defer s.Hub.Unsubscribe(sub)

	d, err := s.Store.GetDeck(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.Close(InvalidProcessIDError, "unknown process id")
			return
		}
		c.Close(websocket.StatusInternalError, "deck lookup failed")
		return
	}

	middleware.LogWebSocketConnect(s.Logger, remoteAddr, path)
	log := s.Logger.WithField("job_id", id)

	// The replayable final event may have expired; answer from the store.
	if status := models.ParseJobStatus(string(d.Status)); status.Terminal() && !s.Hub.Finished(pid) {
		s.Hub.Unsubscribe(sub)
		err = writeEvent(r.Context(), c, finalEventFor(pid, status), log)
		middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, path, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "job finished")
		}
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readLoop(ctx, cancel, c)

	err = writePump(ctx, c, sub, log)
	middleware.LogWebSocketDisconnect(s.Logger, remoteAddr, path, err)
	switch {
	case err != nil:
	case sub.Dropped():
		log.Warn("log subscriber fell behind, closing stream")
		c.Close(websocket.StatusTryAgainLater, "subscriber fell behind")
	default:
		c.Close(websocket.StatusNormalClosure, "job finished")
	}
}

// finalEventFor rebuilds the closing event of a job from its stored status.
func finalEventFor(pid string, status models.JobStatus) models.LogEvent {
	if status == models.StatusError {
		return models.NewLogEvent(pid, models.SystemAgent, "Error: generation failed")
	}
	return models.NewLogEvent(pid, models.SystemAgent, models.SentinelMessage)
}

// readLoop drains client frames until the connection fails, then cancels ctx.
func readLoop(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn) {
	defer cancel()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}

// writePump forwards subscription events until the subscription closes (nil)
// or the client goes away.
func writePump(ctx context.Context, c *websocket.Conn, sub *hub.Subscription, log *logrus.Entry) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := writeEvent(ctx, c, ev, log); err != nil {
				return err
			}
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, ev models.LogEvent, log *logrus.Entry) error {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Warnf("failed to marshal log event: %v", err)
		return nil
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(writeCtx, websocket.MessageText, data)
}
