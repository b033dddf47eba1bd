package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/squad-predictor/external/predictionhub"
	"github.com/riskibarqy/squad-predictor/external/scoreapi"
	"github.com/riskibarqy/squad-predictor/internal/config"
	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
	"github.com/riskibarqy/squad-predictor/internal/infrastructure/account/authsvc"
	repocache "github.com/riskibarqy/squad-predictor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/squad-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/squad-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/squad-predictor/internal/platform/cache"
	"github.com/riskibarqy/squad-predictor/internal/platform/logging"
	"github.com/riskibarqy/squad-predictor/internal/platform/resilience"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

// Application bundles the HTTP server with the services that need a
// lifecycle of their own (background sweep, DB pool).
type Application struct {
	Server  *http.Server
	Lockout *usecase.LockoutService

	db     *sqlx.DB
	logger *slog.Logger
}

func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := cache.NewStore(cfg.CacheTTL)

	var (
		db         *sqlx.DB
		matches    match.Repository
		states     squad.Repository
		rosterRepo player.Repository
	)
	if strings.TrimSpace(cfg.DBURL) != "" {
		dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

		opened, err := otelsqlx.Open("postgres", dsn,
			otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := opened.Ping(); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		db = opened
		matches = repocache.NewMatchRepository(postgres.NewMatchRepository(db), store)
		states = postgres.NewSquadStateRepository(db)
		rosterRepo = postgres.NewRosterRepository(db)
		logger.Info("storage configured", "backend", "postgres", "db", dbNameFromURL(cfg.DBURL))
	} else {
		matches = memory.NewMatchRepository(memory.SeedMatches())
		states = memory.NewSquadStateRepository()
		rosterRepo = memory.NewRosterRepository()
		logger.Info("storage configured", "backend", "memory")
	}

	var provider usecase.LineupProvider
	if cfg.ScoreAPIEnabled {
		provider = scoreapi.NewClient(scoreapi.ClientConfig{
			HTTPClient: &http.Client{Timeout: cfg.ScoreAPITimeout},
			BaseURL:    cfg.ScoreAPIBaseURL,
			Token:      cfg.ScoreAPIToken,
			Timeout:    cfg.ScoreAPITimeout,
			MaxRetries: cfg.ScoreAPIMaxRetries,
			Logger:     logging.NewJSON(cfg.LogLevel),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ScoreAPICircuitEnabled,
				FailureThreshold: cfg.ScoreAPICircuitFailures,
				OpenTimeout:      cfg.ScoreAPICircuitOpen,
				HalfOpenMaxReq:   cfg.ScoreAPICircuitHalfOpen,
			},
		})
		logger.Info("roster provider configured", "provider", "scoreapi", "base_url", cfg.ScoreAPIBaseURL)
	} else {
		provider = newSeedLineupProvider(memory.SeedMatches())
		logger.Info("roster provider configured", "provider", "seed")
	}

	rosterService := usecase.NewRosterService(provider, store, rosterRepo, logger)

	var submitter usecase.PredictionSubmitter
	if cfg.PredictionHubEnabled {
		submitter = predictionhub.NewPublisher(predictionhub.PublisherConfig{
			BaseURL: cfg.PredictionHubBaseURL,
			Token:   cfg.PredictionHubToken,
			Timeout: cfg.PredictionHubTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: cfg.PredictionHubCircuitFails,
				OpenTimeout:      cfg.PredictionHubCircuitOpen,
			},
		}, logger)
	}

	squadService := usecase.NewSquadService(matches, states, rosterService, submitter, logger)
	lockoutService := usecase.NewLockoutService(matches, states, squadService, logger, cfg.LockoutSweepWorkers)

	authClient := authsvc.NewClient(
		&http.Client{Timeout: cfg.AuthTimeout},
		cfg.AuthBaseURL,
		cfg.AuthIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(squadService, rosterService, lockoutService, logger)
	router := httpapi.NewRouter(handler, authClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server:  server,
		Lockout: lockoutService,
		db:      db,
		logger:  logger,
	}, nil
}

func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
