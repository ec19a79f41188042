// internal/submit/submit.go

// Package submit runs the commander selection and deck request flow.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
)

var (
	// ErrEmptyPrompt is returned for a blank commander prompt. No request is sent.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrNoCommander is returned when a deck is requested before a commander
	// was chosen. No request is sent.
	ErrNoCommander = errors.New("no commander selected")
)

// API is the slice of the generation service the submitter calls.
type API interface {
	GenerateCommander(ctx context.Context, prompt string) (*models.Commander, error)
	GenerateDeck(ctx context.Context, req models.GenerationRequest) (int, error)
}

// Settings are the user-chosen generation options.
type Settings struct {
	Mode              models.Mode
	AgentCount        int
	DeckCount         int
	UseOwnedCardsOnly bool
}

// DefaultSettings mirrors the service's own defaults.
func DefaultSettings() Settings {
	return Settings{Mode: models.ModeThinking, AgentCount: 1, DeckCount: 1}
}

// Submission is the outcome of a deck request.
type Submission struct {
	JobID   int
	Request models.GenerationRequest
	// Notice is non-empty when more jobs were queued than the one returned.
	Notice string
}

// Submitter holds the currently selected commander between the two steps.
type Submitter struct {
	api    API
	logger *logrus.Logger

	mu        sync.RWMutex
	commander *models.Commander
}

func New(api API, logger *logrus.Logger) *Submitter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Submitter{api: api, logger: logger}
}

// Commander returns the current selection, or nil.
func (s *Submitter) Commander() *models.Commander {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commander
}

// SetCommander selects a commander by name without asking the service, as when
// the user already knows which legend to build around.
func (s *Submitter) SetCommander(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoCommander
	}
	s.mu.Lock()
	s.commander = &models.Commander{Name: name}
	s.mu.Unlock()
	return nil
}

// GenerateCommander asks the service for a commander matching prompt. On
// failure the previous selection is kept.
func (s *Submitter) GenerateCommander(ctx context.Context, prompt string) (*models.Commander, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	cmdr, err := s.api.GenerateCommander(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("commander generation failed")
		return nil, err
	}
	s.mu.Lock()
	s.commander = cmdr
	s.mu.Unlock()
	s.logger.WithField("commander", cmdr.Name).Info("commander selected")
	return cmdr, nil
}

// SubmitDeckRequest requests decks for the selected commander and returns the
// single job id the service answers with.
func (s *Submitter) SubmitDeckRequest(ctx context.Context, settings Settings) (*Submission, error) {
	cmdr := s.Commander()
	if cmdr == nil {
		return nil, ErrNoCommander
	}
	req := models.GenerationRequest{
		CommanderName:     cmdr.Name,
		Mode:              settings.Mode,
		AgentCount:        settings.AgentCount,
		DeckCount:         settings.DeckCount,
		UseOwnedCardsOnly: settings.UseOwnedCardsOnly,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.api.GenerateDeck(ctx, req)
	if err != nil {
		s.logger.WithError(err).Warn("deck request failed")
		return nil, err
	}
	sub := &Submission{JobID: id, Request: req, Notice: MultiJobNotice(req.DeckCount, id)}
	s.logger.WithFields(logrus.Fields{
		"job_id":    id,
		"commander": req.CommanderName,
		"decks":     req.DeckCount,
		"agents":    req.AgentCount,
	}).Info("deck request submitted")
	return sub, nil
}

// MultiJobNotice tells the user that only one of several queued jobs is shown.
// It is empty for a single deck.
func MultiJobNotice(deckCount, jobID int) string {
	if deckCount <= 1 {
		return ""
	}
	return fmt.Sprintf("%d decks were requested and queued as separate jobs; only job #%d is shown here.", deckCount, jobID)
}
