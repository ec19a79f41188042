// cmd/forged/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/deckforge/internal/cache"
	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/config"
	"github.com/jason-s-yu/deckforge/internal/database"
	"github.com/jason-s-yu/deckforge/internal/handlers"
	"github.com/jason-s-yu/deckforge/internal/hub"
	"github.com/jason-s-yu/deckforge/internal/jobs"
	"github.com/jason-s-yu/deckforge/internal/logging"
	"github.com/jason-s-yu/deckforge/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadServer("")
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}

func run(ctx context.Context, cfg config.Server, logger *logrus.Logger) error {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	lookup, closeLookup, err := openLookup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLookup()

	h := hub.New(logger)
	runner := jobs.NewRunner(st, lookup, h, logger, jobs.WithStepDelay(cfg.StepDelay))
	srv := handlers.NewServer(st, lookup, runner, h, logger)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		runner.Shutdown()
		return err
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Server, logger *logrus.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, keeping decks in memory")
		return store.NewMemoryStore(), nil
	}
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to postgres")
	return db, nil
}

// openLookup picks the card source and wraps it in the redis cache when one
// is configured.
func openLookup(ctx context.Context, cfg config.Server, logger *logrus.Logger) (cards.Lookup, func(), error) {
	var lookup cards.Lookup = cards.DefaultCatalog()
	if cfg.UseScryfall {
		lookup = cards.NewScryfallClient()
		logger.Info("resolving cards through scryfall")
	}
	if cfg.RedisAddr == "" {
		return lookup, func() {}, nil
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("addr", cfg.RedisAddr).Info("caching card lookups in redis")
	cached := cards.NewCachedLookup(lookup, cache.NewCardCache(rdb, cache.DefaultTTL), logger)
	return cached, func() { _ = rdb.Close() }, nil
}
