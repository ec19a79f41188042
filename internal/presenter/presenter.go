// internal/presenter/presenter.go

// Package presenter turns a completed job into a displayable, exportable deck.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/classify"
	"github.com/jason-s-yu/deckforge/internal/models"
)

// NoCombosMessage replaces the combo list when the service found none.
const NoCombosMessage = "No combos found for this deck."

// ErrNotReady is returned by export actions before a deck has loaded.
var ErrNotReady = errors.New("deck not loaded")

// Phase is the presenter's load state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Loader fetches a job's deck.
type Loader interface {
	GetDeck(ctx context.Context, id int) (*models.Deck, error)
}

// ExportSink is the platform capability behind the copy and download actions.
type ExportSink interface {
	CopyToClipboard(text string) error
	DownloadFile(name, content string) error
}

// View is what the result screen renders. Deck fields are only set in PhaseReady.
type View struct {
	Phase      Phase
	JobID      int
	Error      string
	Commander  string
	CreatedAt  string
	Status     models.JobStatus
	CardCount  int
	Buckets    []classify.Bucket
	CombosOpen bool
	Combos     []models.Combo
	// ComboMessage is set instead of Combos when the deck has none.
	ComboMessage string
}

// Presenter owns a deck once the monitor hands the job over.
type Presenter struct {
	loader     Loader
	sink       ExportSink
	categories []classify.Category
	logger     *logrus.Logger

	mu         sync.RWMutex
	phase      Phase
	jobID      int
	deck       *models.Deck
	buckets    classify.Buckets
	err        error
	combosOpen bool
}

// New builds a presenter. A nil categories slice uses classify.DefaultOrder.
func New(loader Loader, sink ExportSink, categories []classify.Category, logger *logrus.Logger) *Presenter {
	if categories == nil {
		categories = classify.DefaultOrder
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Presenter{
		loader:     loader,
		sink:       sink,
		categories: categories,
		logger:     logger,
		phase:      PhaseIdle,
	}
}

// Load fetches the deck for jobID and classifies it from scratch. While the
// fetch is in flight the view shows only the loading phase; a failure leaves
// no partial deck behind.
func (p *Presenter) Load(ctx context.Context, jobID int) (*models.Deck, error) {
	p.mu.Lock()
	p.phase = PhaseLoading
	p.jobID = jobID
	p.deck = nil
	p.buckets = classify.Buckets{}
	p.err = nil
	p.combosOpen = false
	p.mu.Unlock()

	deck, err := p.loader.GetDeck(ctx, jobID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobID != jobID {
		// superseded by a newer Load
		return deck, err
	}
	if err != nil {
		p.phase = PhaseFailed
		p.err = err
		p.logger.WithError(err).WithField("job_id", jobID).Warn("deck load failed")
		return nil, err
	}
	p.deck = deck
	p.buckets = classify.Classify(deck.Cards, p.categories)
	p.phase = PhaseReady
	p.logger.WithFields(logrus.Fields{"job_id": jobID, "cards": len(deck.Cards), "combos": len(deck.Combos)}).Info("deck loaded")
	return deck, nil
}

// View projects the current state.
func (p *Presenter) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v := View{Phase: p.phase, JobID: p.jobID, CombosOpen: p.combosOpen}
	switch p.phase {
	case PhaseFailed:
		v.Error = p.err.Error()
	case PhaseReady:
		v.Commander = p.deck.Commander
		v.CreatedAt = p.deck.CreatedAt
		v.Status = models.ParseJobStatus(string(p.deck.Status))
		v.CardCount = len(p.deck.Cards)
		v.Buckets = p.buckets.NonEmpty()
		if len(p.deck.Combos) == 0 {
			v.ComboMessage = NoCombosMessage
		} else {
			v.Combos = p.deck.Combos
		}
	}
	return v
}

// Text returns the exported deck list.
func (p *Presenter) Text() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.deck == nil {
		return "", ErrNotReady
	}
	return ExportAsText(*p.deck), nil
}

// Copy puts the deck list on the clipboard.
func (p *Presenter) Copy() error {
	text, err := p.Text()
	if err != nil {
		return err
	}
	if err := p.sink.CopyToClipboard(text); err != nil {
		return fmt.Errorf("copy deck list: %w", err)
	}
	return nil
}

// Download saves the deck list and returns the file name used.
func (p *Presenter) Download() (string, error) {
	p.mu.RLock()
	deck := p.deck
	p.mu.RUnlock()
	if deck == nil {
		return "", ErrNotReady
	}
	name := ExportFileName(deck.Commander)
	if err := p.sink.DownloadFile(name, ExportAsText(*deck)); err != nil {
		return "", fmt.Errorf("download deck list: %w", err)
	}
	return name, nil
}

// OpenCombos shows the combo overlay.
func (p *Presenter) OpenCombos() {
	p.mu.Lock()
	p.combosOpen = true
	p.mu.Unlock()
}

// CloseCombos hides the combo overlay.
func (p *Presenter) CloseCombos() {
	p.mu.Lock()
	p.combosOpen = false
	p.mu.Unlock()
}

// ToggleCombos flips the overlay and returns the new visibility.
func (p *Presenter) ToggleCombos() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.combosOpen = !p.combosOpen
	return p.combosOpen
}
