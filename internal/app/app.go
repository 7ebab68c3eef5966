// Package app wires configuration, storage and scrapers into a runnable
// ingest pipeline.
package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/dkearsley/afl-stats/internal/config"
	"github.com/dkearsley/afl-stats/internal/infrastructure/repository/postgres"
	idgen "github.com/dkearsley/afl-stats/internal/platform/id"
	"github.com/dkearsley/afl-stats/internal/platform/logging"
	"github.com/dkearsley/afl-stats/internal/platform/resilience"
	"github.com/dkearsley/afl-stats/internal/scrape"
	"github.com/dkearsley/afl-stats/internal/scrape/afltables"
	"github.com/dkearsley/afl-stats/internal/scrape/fetch"
	"github.com/dkearsley/afl-stats/internal/scrape/footywire"
	"github.com/dkearsley/afl-stats/internal/usecase"
)

// NewIngestPipeline opens the database and assembles a season ingest service
// with fresh run-scoped state. The returned cleanup closes the database and
// must be called when the run finishes.
func NewIngestPipeline(cfg config.Config, logger *logging.Logger) (*usecase.IngestService, func(), error) {
	db, err := sqlx.Connect("postgres", cfg.DBURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxWorkers * 2)
	cleanup := func() {
		_ = db.Close()
	}

	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	gameRepo := postgres.NewGameRepository(db)
	playerRepo := postgres.NewPlayerRepository(db)
	statRepo := postgres.NewStatRepository(db)

	client := fetch.NewClient(fetch.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.HTTPMaxRetries,
		UserAgent:  cfg.HTTPUserAgent,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CircuitEnabled,
			FailureThreshold: cfg.CircuitFailureCount,
			OpenTimeout:      cfg.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CircuitHalfOpenMaxReq,
		},
	})

	profileScraper := footywire.NewScraper(cfg.ProfileBaseURL, client, idgen.NewRandomGenerator(), logger)
	matchScraper := afltables.NewScraper(afltables.Config{
		BaseURL:  cfg.ResultsBaseURL,
		Fetcher:  client,
		Profiles: profileScraper,
		Games:    gameRepo,
		Players:  playerRepo,
		Stats:    statRepo,
		Tracker:  scrape.NewPlayerTracker(),
		Rounds:   scrape.NewRoundCounter(),
		Logger:   logger,
	})

	svc := usecase.NewIngestService(matchScraper, gameRepo, playerRepo, statRepo, logger, cfg.MaxWorkers)
	return svc, cleanup, nil
}
