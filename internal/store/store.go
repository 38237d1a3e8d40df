// Package store persists the reporting read models in Postgres.
//
// All writes are either unique-key inserts or whole-document upserts keyed
// by business id, so replaying the same event stream converges to the same
// rows. Embedded collections (batch accounts, matrix batch refs) live in
// JSONB columns and are overwritten with their parent document.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

const uniqueViolation = "23505"

// Store is the Postgres-backed reporting store.
type Store struct {
	db      *sql.DB
	log     zerolog.Logger
	metrics *observability.Metrics
}

func New(db *sql.DB, log zerolog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		db:      db,
		log:     log.With().Str("subcomponent", "store").Logger(),
		metrics: metrics,
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, log zerolog.Logger, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return New(db, log, metrics), nil
}

// DB exposes the underlying handle for the migrator and health probe.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping is the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// wrapErr classifies driver errors into the store error taxonomy. Unique
// violations are the expected duplicate signal; everything else counts as
// a persistence failure.
func (s *Store) wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, model.ErrAlreadyExists)
	}
	s.metrics.StoreErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%s: %w: %v", op, model.ErrPersistenceFailure, err)
}
