package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/store"
)

// DefaultKeep is how many snapshots are retained after each save.
const DefaultKeep = 20

const schema = `
CREATE TABLE IF NOT EXISTS ledger_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	revision   BIGINT      NOT NULL UNIQUE,
	saved_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	document   JSONB       NOT NULL
)`

// Store saves every state revision as a JSONB snapshot row and loads the
// newest one. Older rows are pruned inside the same transaction.
type Store struct {
	db   *sql.DB
	keep int
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, keep: DefaultKeep}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create ledger_snapshots: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domain.State, error) {
	var document []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT document
		FROM ledger_snapshots
		ORDER BY revision DESC
		LIMIT 1
	`).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.State{}, store.ErrNotFound
		}
		return domain.State{}, err
	}

	var state domain.State
	if err := json.Unmarshal(document, &state); err != nil {
		return domain.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	state.Normalize()
	return state, nil
}

// Save writes the state as a new snapshot. A revision that already exists
// means another writer got there first and is reported as an error.
func (s *Store) Save(ctx context.Context, state domain.State) error {
	document, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_snapshots (revision, saved_at, document)
		VALUES ($1, now(), $2)
	`, state.Revision, document); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("snapshot revision %d already saved: %w", state.Revision, err)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM ledger_snapshots
		WHERE revision <= $1
	`, state.Revision-int64(s.keep)); err != nil {
		return err
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
