// internal/lister/lister.go

// Package lister lists previously submitted generation jobs.
package lister

import (
	"context"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// Source returns decks as the service reports them.
type Source interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
}

type Lister struct {
	src Source
}

func New(src Source) *Lister {
	return &Lister{src: src}
}

// ListJobs returns one Job per deck in the order the service sent them, with
// statuses normalised.
func (l *Lister) ListJobs(ctx context.Context) ([]models.Job, error) {
	decks, err := l.src.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(decks))
	for _, d := range decks {
		jobs = append(jobs, d.Job())
	}
	return jobs, nil
}
