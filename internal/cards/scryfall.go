// internal/cards/scryfall.go
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jason-s-yu/deckforge/internal/models"
)

const (
	scryfallBaseURL  = "https://api.scryfall.com"
	scryfallInterval = 100 * time.Millisecond // Scryfall asks for at most 10 req/sec
	scryfallTimeout  = 30 * time.Second
)

// ScryfallClient resolves names with Scryfall's fuzzy named-card endpoint.
type ScryfallClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// ScryfallOption configures a ScryfallClient.
type ScryfallOption func(*ScryfallClient)

// WithBaseURL points the client at another host, such as a test server.
func WithBaseURL(u string) ScryfallOption {
	return func(c *ScryfallClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit overrides the request interval.
func WithRateLimit(every time.Duration) ScryfallOption {
	return func(c *ScryfallClient) { c.rateLimiter = rate.NewLimiter(rate.Every(every), 1) }
}

// NewScryfallClient creates a rate limited client.
func NewScryfallClient(opts ...ScryfallOption) *ScryfallClient {
	c := &ScryfallClient{
		baseURL:     scryfallBaseURL,
		httpClient:  &http.Client{Timeout: scryfallTimeout},
		rateLimiter: rate.NewLimiter(rate.Every(scryfallInterval), 1),
		userAgent:   "deckforge/1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type scryfallImageURIs struct {
	Normal string `json:"normal"`
}

type scryfallFace struct {
	OracleText string             `json:"oracle_text"`
	ImageURIs  *scryfallImageURIs `json:"image_uris"`
}

type scryfallCard struct {
	Name            string             `json:"name"`
	Set             string             `json:"set"`
	CollectorNumber string             `json:"collector_number"`
	TypeLine        string             `json:"type_line"`
	OracleText      string             `json:"oracle_text"`
	ManaCost        string             `json:"mana_cost"`
	CMC             float64            `json:"cmc"`
	Colors          []string           `json:"colors"`
	ImageURIs       *scryfallImageURIs `json:"image_uris"`
	CardFaces       []scryfallFace     `json:"card_faces"`
}

func (sc scryfallCard) toCard() models.Card {
	image := ""
	if sc.ImageURIs != nil {
		image = sc.ImageURIs.Normal
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		// double-faced cards carry images per face
		image = sc.CardFaces[0].ImageURIs.Normal
	}
	oracle := sc.OracleText
	if oracle == "" && len(sc.CardFaces) > 0 {
		texts := make([]string, len(sc.CardFaces))
		for i, f := range sc.CardFaces {
			texts[i] = f.OracleText
		}
		oracle = strings.Join(texts, "\n//\n")
	}
	return models.Card{
		Name:            sc.Name,
		SetCode:         sc.Set,
		CollectorNumber: sc.CollectorNumber,
		TypeLine:        sc.TypeLine,
		OracleText:      oracle,
		ManaCost:        sc.ManaCost,
		CMC:             sc.CMC,
		Colors:          sc.Colors,
		ImageURI:        image,
		Quantity:        1,
	}
}

// Card fetches /cards/named?fuzzy=name. A 404 maps to ErrCardNotFound.
func (c *ScryfallClient) Card(ctx context.Context, name string) (models.Card, error) {
	if strings.TrimSpace(name) == "" {
		return models.Card{}, fmt.Errorf("%w: empty name", ErrCardNotFound)
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return models.Card{}, fmt.Errorf("rate limiter error: %w", err)
	}

	u := c.baseURL + "/cards/named?" + url.Values{"fuzzy": {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Card{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Card{}, fmt.Errorf("scryfall request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.Card{}, fmt.Errorf("%w: %q", ErrCardNotFound, name)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Card{}, fmt.Errorf("scryfall returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sc scryfallCard
	if err := json.NewDecoder(resp.Body).Decode(&sc); err != nil {
		return models.Card{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return sc.toCard(), nil
}
