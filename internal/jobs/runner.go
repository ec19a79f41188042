// internal/jobs/runner.go

// Package jobs runs scripted deck generation for the stand-in service. A run
// emits the same log shape as the real agents and ends with the completion
// sentinel or an "Error: ..." System message.
package jobs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/hub"
	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

// DefaultStepDelay paces the scripted log output.
const DefaultStepDelay = 250 * time.Millisecond

// Personalities assigned to agents, without repetition within a job.
var Personalities = []string{
	"Aggressive", "Control-freak", "Combo-lover", "Budget-conscious",
	"Flavor-obsessed", "Chaos-bringer",
}

// Runner executes generation jobs in the background.
type Runner struct {
	store     store.Store
	lookup    cards.Lookup
	hub       *hub.Hub
	logger    *logrus.Logger
	stepDelay time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	wg      sync.WaitGroup
}

type Option func(*Runner)

// WithStepDelay sets the pause between log steps. Zero disables pacing.
func WithStepDelay(d time.Duration) Option {
	return func(r *Runner) { r.stepDelay = d }
}

// WithRand fixes the personality shuffle, mostly for tests.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

func NewRunner(st store.Store, lookup cards.Lookup, h *hub.Hub, logger *logrus.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:     st,
		lookup:    lookup,
		hub:       h,
		logger:    logger,
		stepDelay: DefaultStepDelay,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		cancels:   make(map[int]context.CancelFunc),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Enqueue creates count pending decks for req and starts a run for each. It
// returns the ids in creation order.
func (r *Runner) Enqueue(ctx context.Context, req models.GenerationRequest, count int) ([]int, error) {
	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		d, err := r.store.CreateDeck(ctx, req.CommanderName)
		if err != nil {
			return ids, fmt.Errorf("create deck: %w", err)
		}
		ids = append(ids, d.ID)
		r.Start(d.ID, req)
	}
	return ids, nil
}

// Start runs the job for deckID in its own goroutine. The run is independent
// of any request context and stops only on Shutdown.
func (r *Runner) Start(deckID int, req models.GenerationRequest) {
	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancels[deckID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.cancels, deckID)
			r.mu.Unlock()
			cancel()
		}()
		r.run(ctx, deckID, req)
	}()
}

// Wait blocks until every started job has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown cancels running jobs and waits for them. Cancelled jobs are
// marked failed.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, deckID int, req models.GenerationRequest) {
	log := r.logger.WithFields(logrus.Fields{"job_id": deckID, "commander": req.CommanderName})
	j := &job{
		Runner: r,
		ctx:    ctx,
		id:     deckID,
		pid:    strconv.Itoa(deckID),
		req:    req,
	}

	log.Info("generation started")
	start := time.Now()

	if err := r.store.SetDeckStatus(ctx, deckID, store.StatusGenerating); err != nil {
		j.fail(err)
		log.WithError(err).Error("generation failed")
		return
	}

	deckCards, combos, err := j.build()
	if err == nil {
		// The deck must be stored before the sentinel goes out.
		err = r.store.CompleteDeck(context.WithoutCancel(ctx), deckID, deckCards, combos)
	}
	if err != nil {
		j.fail(err)
		log.WithError(err).Error("generation failed")
		return
	}

	r.hub.Finish(models.NewLogEvent(j.pid, models.SystemAgent, models.SentinelMessage))
	log.WithFields(logrus.Fields{"cards": len(deckCards), "combos": len(combos), "duration": time.Since(start)}).Info("generation completed")
}

func (r *Runner) personalities(n int) []string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	perm := r.rng.Perm(len(Personalities))
	out := make([]string, n)
	for i := range out {
		out[i] = Personalities[perm[i]]
	}
	return out
}

// clampAgents bounds the agent count to what the service supports.
func clampAgents(n int) int {
	return max(models.MinAgents, min(models.MaxAgents, n))
}
