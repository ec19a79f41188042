package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	l := logrus.New()
	l.SetOutput(io.Discard)
	c, err := New(srv.URL, WithLogger(l))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
}

func TestGenerateCommander(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate/commander", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a fast goblin aggro deck", body["prompt"])
		w.Write([]byte(`{"name":"Krenko, Mob Boss","reasoning":"Goblins go wide.","image_uri":"k.jpg","commanders":[{"name":"Krenko, Mob Boss","image_uri":"k.jpg"}]}`))
	}))

	cmdr, err := c.GenerateCommander(context.Background(), "a fast goblin aggro deck")
	require.NoError(t, err)
	assert.Equal(t, "Krenko, Mob Boss", cmdr.Name)
	assert.Equal(t, "Goblins go wide.", cmdr.Reasoning)
	require.Len(t, cmdr.Commanders, 1)
}

func TestGenerateDeck(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate/deck", r.URL.Path)
		var req models.GenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.DeckCount)
		w.Write([]byte(`{"deck_id":42}`))
	}))

	id, err := c.GenerateDeck(context.Background(), models.GenerationRequest{
		CommanderName: "Krenko, Mob Boss", Mode: models.ModeFast, AgentCount: 1, DeckCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestServiceErrorFromDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Deck not found"}`))
	}))

	_, err := c.GetDeck(context.Background(), 9)
	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Deck not found", se.Message)
	assert.Equal(t, "fetch deck failed (HTTP 404): Deck not found", se.Error())
}

func TestServiceErrorOnServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	_, err := c.ListDecks(context.Background())
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "boom", se.Message)
}

func TestServiceErrorOnNetworkFailure(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.GenerateCommander(context.Background(), "x")
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Zero(t, se.StatusCode)
	assert.NotNil(t, se.Unwrap())
}

func TestServiceErrorOnBadJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"deck_id":`))
	}))
	_, err := c.GenerateDeck(context.Background(), models.GenerationRequest{})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
}

func TestInventoryQueryParams(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/inventory/add":
			assert.Equal(t, "Sol Ring", r.URL.Query().Get("card_name"))
			w.Write([]byte(`{"id":3,"name":"Sol Ring","type_line":"Artifact","quantity":1}`))
		case "/api/inventory/3":
			assert.Equal(t, http.MethodDelete, r.Method)
			w.Write([]byte(`{"status":"success"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	item, err := c.AddInventory(context.Background(), "Sol Ring")
	require.NoError(t, err)
	assert.Equal(t, 3, item.ID)
	assert.Equal(t, "Artifact", item.TypeLine)
	require.NoError(t, c.DeleteInventory(context.Background(), 3))
}

func TestImportPartial(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1 Sol Ring\nNotACard", r.URL.Query().Get("text"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMultiStatus)
		w.Write([]byte(`{"failed":["NotACard"],"message":"Some cards failed to import."}`))
	}))

	err := c.ImportInventory(context.Background(), "1 Sol Ring\nNotACard")
	var pe *PartialImportError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{"NotACard"}, pe.Failed)
}

func TestImportSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))
	assert.NoError(t, c.ImportInventory(context.Background(), "Sol Ring"))
}

func TestStreamURL(t *testing.T) {
	c, err := New("https://decks.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "wss://decks.example.com/ws/process/12", c.StreamURL(12))

	c, err = New("http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws/process/1", c.StreamURL(1))
}
