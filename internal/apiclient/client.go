// internal/apiclient/client.go

// Package apiclient talks to the deck generation service's HTTP API and opens
// its per-job log stream.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/stream"
)

// DefaultTimeout bounds a single request. Commander generation runs two LLM
// calls server side, so it is generous.
const DefaultTimeout = 120 * time.Second

// Client is bound to one service instance.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	logger     *logrus.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the service rooted at baseURL (scheme and host,
// e.g. http://localhost:8000). The /api prefix is added per request.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:       u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.base.String() }

// GenerateCommander asks the service to pick a commander for prompt.
func (c *Client) GenerateCommander(ctx context.Context, prompt string) (*models.Commander, error) {
	var cmdr models.Commander
	body := map[string]string{"prompt": prompt}
	if err := c.do(ctx, "generate commander", http.MethodPost, "/api/generate/commander", nil, body, &cmdr); err != nil {
		return nil, err
	}
	return &cmdr, nil
}

// GenerateDeck enqueues req.DeckCount jobs and returns the id of the first.
func (c *Client) GenerateDeck(ctx context.Context, req models.GenerationRequest) (int, error) {
	var resp struct {
		DeckID int `json:"deck_id"`
	}
	if err := c.do(ctx, "generate deck", http.MethodPost, "/api/generate/deck", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.DeckID, nil
}

// GetDeck fetches a job's current status and, once completed, its deck.
func (c *Client) GetDeck(ctx context.Context, id int) (*models.Deck, error) {
	var deck models.Deck
	if err := c.do(ctx, "fetch deck", http.MethodGet, "/api/deck/"+strconv.Itoa(id), nil, nil, &deck); err != nil {
		return nil, err
	}
	return &deck, nil
}

// ListDecks returns every job the service knows of, in server order.
func (c *Client) ListDecks(ctx context.Context) ([]models.Deck, error) {
	var decks []models.Deck
	if err := c.do(ctx, "list decks", http.MethodGet, "/api/decks", nil, nil, &decks); err != nil {
		return nil, err
	}
	return decks, nil
}

// ListInventory returns the owned cards.
func (c *Client) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.do(ctx, "list inventory", http.MethodGet, "/api/inventory", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddInventory adds one copy of the named card.
func (c *Client) AddInventory(ctx context.Context, cardName string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	q := url.Values{"card_name": {cardName}}
	if err := c.do(ctx, "add card", http.MethodPost, "/api/inventory/add", q, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteInventory removes an inventory row.
func (c *Client) DeleteInventory(ctx context.Context, id int) error {
	return c.do(ctx, "delete card", http.MethodDelete, "/api/inventory/"+strconv.Itoa(id), nil, nil, nil)
}

// ImportInventory sends a newline separated card list ("N Card Name" or
// "Card Name" per line). An HTTP 207 answer is returned as *PartialImportError.
func (c *Client) ImportInventory(ctx context.Context, text string) error {
	q := url.Values{"text": {text}}
	resp, err := c.send(ctx, "import cards", http.MethodPost, "/api/inventory/import", q, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMultiStatus {
		var partial struct {
			Failed  []string `json:"failed"`
			Message string   `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&partial); err != nil {
			return &ServiceError{Op: "import cards", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode partial result: %w", err)}
		}
		return &PartialImportError{Failed: partial.Failed, Message: partial.Message}
	}
	return checkStatus("import cards", resp)
}

// OpenStream connects to the job's log stream.
func (c *Client) OpenStream(ctx context.Context, id int) (stream.Stream, error) {
	u := c.StreamURL(id)
	conn, err := stream.Dial(ctx, u, c.logger)
	if err != nil {
		return nil, &ServiceError{Op: "open log stream", Err: err}
	}
	return conn, nil
}

// StreamURL derives the WebSocket URL for a job from the API base.
func (c *Client) StreamURL(id int) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/process/" + strconv.Itoa(id)
	u.RawQuery = ""
	return u.String()
}

// do sends a request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &ServiceError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, &ServiceError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
		"duration":   time.Since(start),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Warn("request failed")
		return nil, &ServiceError{Op: op, Err: err}
	}
	fields["status"] = resp.StatusCode
	c.logger.WithFields(fields).Debug("request done")
	return resp, nil
}

// checkStatus turns a non-2xx response into a ServiceError, pulling FastAPI's
// {"detail": ...} or a plain text body into the message.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var detail struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &detail) == nil {
		switch d := detail.Detail.(type) {
		case string:
			msg = d
		case nil:
			if detail.Message != "" {
				msg = detail.Message
			}
		}
	}
	return &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}
