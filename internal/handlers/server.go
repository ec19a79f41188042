// internal/handlers/server.go

// Package handlers exposes the stand-in generation service over HTTP and
// WebSocket.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/hub"
	"github.com/jason-s-yu/deckforge/internal/jobs"
	"github.com/jason-s-yu/deckforge/internal/middleware"
	"github.com/jason-s-yu/deckforge/internal/store"
)

// Server holds everything the handlers share.
type Server struct {
	Store  store.Store
	Lookup cards.Lookup
	Runner *jobs.Runner
	Hub    *hub.Hub
	Logger *logrus.Logger
}

func NewServer(st store.Store, lookup cards.Lookup, runner *jobs.Runner, h *hub.Hub, logger *logrus.Logger) *Server {
	return &Server{
		Store:  st,
		Lookup: lookup,
		Runner: runner,
		Hub:    h,
		Logger: logger,
	}
}

// Routes builds the router for the /api and /ws surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(s.Logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/inventory", s.ListInventoryHandler)
		r.Post("/inventory/add", s.AddInventoryHandler)
		r.Delete("/inventory/{id}", s.DeleteInventoryHandler)
		r.Post("/inventory/import", s.ImportInventoryHandler)

		r.Post("/generate/commander", s.GenerateCommanderHandler)
		r.Post("/generate/deck", s.GenerateDeckHandler)

		r.Get("/deck/{id}", s.GetDeckHandler)
		r.Get("/decks", s.ListDecksHandler)
	})

	r.Get("/ws/process/{id}", s.ProcessWSHandler)
	return r
}
