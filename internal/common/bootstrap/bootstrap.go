package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/notes/internal/account/cleanup"
	accounthttp "github.com/AlibekovAA/notes/internal/account/http"
	accountrepo "github.com/AlibekovAA/notes/internal/account/repository"
	accountservice "github.com/AlibekovAA/notes/internal/account/service"
	"github.com/AlibekovAA/notes/internal/common/clock"
	"github.com/AlibekovAA/notes/internal/common/config"
	"github.com/AlibekovAA/notes/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/notes/internal/common/crypto"
	"github.com/AlibekovAA/notes/internal/common/db"
	commonhttp "github.com/AlibekovAA/notes/internal/common/http"
	"github.com/AlibekovAA/notes/internal/common/jwtverify"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/common/resilience"
	"github.com/AlibekovAA/notes/internal/docstore"
	docstorehttp "github.com/AlibekovAA/notes/internal/docstore/http"
	"github.com/AlibekovAA/notes/internal/docstore/pgstore"
	"github.com/AlibekovAA/notes/internal/docstore/sqlitestore"
)

type storage struct {
	accounts      accountrepo.Repository
	revokedTokens accountrepo.RevokedTokenRepository
	documents     docstore.Store
	ping          func(ctx context.Context) error
	startMetrics  func(ctx context.Context)
	close         func()
}

// BackendApp is the fully wired backend: account provider and document store
// behind one HTTP handler.
type BackendApp struct {
	Config        config.BackendConfig
	Log           *logger.Logger
	Handler       http.Handler
	Accounts      *accountservice.AccountService
	RevokedTokens accountrepo.RevokedTokenRepository

	limiter      *commonhttp.StrictRateLimiter
	startMetrics func(ctx context.Context)
	close        func()
}

func NewBackendApp(ctx context.Context, cfg config.BackendConfig, log *logger.Logger) (*BackendApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clk := clock.NewRealClock()
	ids := commoncrypto.NewUUIDGenerator()

	store, err := openStorage(ctx, cfg, log, ids, clk)
	if err != nil {
		return nil, err
	}

	issuer := accountservice.NewTokenIssuer(cfg.JWTSecret, ids, cfg.SessionTTL, clk)
	accounts := accountservice.NewAccountService(
		store.accounts,
		store.revokedTokens,
		commoncrypto.NewBcryptHasher(cfg.BcryptCost),
		ids,
		issuer,
		clk,
		log,
	)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cfg.CircuitBreakerThreshold,
		Timeout:    cfg.CircuitBreakerTimeout,
		ResetAfter: cfg.CircuitBreakerReset,
		Name:       "docstore",
		Logger:     log,
	})
	documents := docstore.NewInstrumentedStore(store.documents, breaker)

	limiter := commonhttp.NewStrictRateLimiter()
	auth := mux.MiddlewareFunc(jwtverify.Middleware(cfg.JWTSecret, accounts, log))

	r := mux.NewRouter()
	r.NotFoundHandler = commonhttp.NotFoundHandler()
	r.MethodNotAllowedHandler = commonhttp.MethodNotAllowedHandler()
	r.HandleFunc("/health", commonhttp.HealthHandler(log)).Methods(http.MethodGet)
	r.HandleFunc("/ready", commonhttp.ReadyHandler(log, store.ping)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	accounthttp.NewHandler(accounts, limiter, log, cfg.RequestTimeout).Register(r, auth)
	docstorehttp.NewHandler(documents, log, cfg.RequestTimeout).Register(r, auth)

	return &BackendApp{
		Config:        cfg,
		Log:           log,
		Handler:       commonhttp.BuildBaseHandler("backend", log, r),
		Accounts:      accounts,
		RevokedTokens: store.revokedTokens,
		limiter:       limiter,
		startMetrics:  store.startMetrics,
		close:         store.close,
	}, nil
}

// StartBackground runs pool metrics sampling and revoked token cleanup until
// ctx is done.
func (a *BackendApp) StartBackground(ctx context.Context) {
	a.startMetrics(ctx)
	go cleanup.StartRevokedTokenCleanup(ctx, a.RevokedTokens, constants.RevokedTokenCleanupInterval, a.Log)
}

func (a *BackendApp) Close() {
	a.limiter.Stop()
	a.close()
}

func openStorage(ctx context.Context, cfg config.BackendConfig, log *logger.Logger, ids commoncrypto.IDGenerator, clk clock.Clock) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return postgresStorage(pool, ids, clk), nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.EnsureSQLiteSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		log.Infof("sqlite database opened at %s", cfg.SQLitePath)
		return sqliteStorage(sqlDB, ids, clk), nil
	}

	return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}

func postgresStorage(pool *pgxpool.Pool, ids commoncrypto.IDGenerator, clk clock.Clock) *storage {
	return &storage{
		accounts:      accountrepo.NewPgRepository(pool),
		revokedTokens: accountrepo.NewPgRevokedTokenRepository(pool),
		documents:     pgstore.New(pool, ids, clk),
		ping:          pool.Ping,
		startMetrics: func(ctx context.Context) {
			db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
		},
		close: pool.Close,
	}
}

func sqliteStorage(sqlDB *sql.DB, ids commoncrypto.IDGenerator, clk clock.Clock) *storage {
	return &storage{
		accounts:      accountrepo.NewSQLiteRepository(sqlDB),
		revokedTokens: accountrepo.NewSQLiteRevokedTokenRepository(sqlDB, clk),
		documents:     sqlitestore.New(sqlDB, ids, clk),
		ping:          sqlDB.PingContext,
		startMetrics: func(ctx context.Context) {
			db.StartSQLMetrics(ctx, sqlDB, constants.DBPoolMetricsInterval)
		},
		close: func() { _ = sqlDB.Close() },
	}
}
