// Package store provides optional Postgres persistence of parsed
// statements for the audit trail spec.md's purpose section describes,
// grounded in syntheit-retrospend's pgxpool wiring.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insightdelivered/bank-statement-converter/internal/engine"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against databaseURL and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parsing database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the statements/transactions tables if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS statements (
			id SERIAL PRIMARY KEY,
			bank TEXT NOT NULL,
			source_file TEXT NOT NULL,
			opening_balance NUMERIC(14,2),
			closing_balance NUMERIC(14,2),
			confidence_overall INTEGER NOT NULL,
			partial BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS statement_transactions (
			id SERIAL PRIMARY KEY,
			statement_id INTEGER NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
			occurred_on DATE,
			description TEXT NOT NULL,
			type TEXT NOT NULL,
			money_in NUMERIC(14,2) NOT NULL,
			money_out NUMERIC(14,2) NOT NULL,
			balance NUMERIC(14,2),
			confidence INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("store: ensuring schema: %w", err)
	}
	return nil
}

// StoreStatement inserts one statements row and one
// statement_transactions row per transaction, inside a single
// transaction so a partial write never leaves an orphaned statement.
func (s *Store) StoreStatement(ctx context.Context, bank, sourceFile string, result engine.StatementResult) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var statementID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO statements (bank, source_file, opening_balance, closing_balance, confidence_overall, partial)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, bank, sourceFile, nullableDecimal(result.OpeningBalance, result.HasOpening), nullableDecimal(result.ClosingBalance, result.HasClosing), result.ConfidenceOverall, result.Partial).Scan(&statementID)
	if err != nil {
		return 0, fmt.Errorf("store: inserting statement row: %w", err)
	}

	for _, t := range result.Transactions {
		var occurredOn interface{}
		if t.HasDate {
			occurredOn = t.Date
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO statement_transactions (statement_id, occurred_on, description, type, money_in, money_out, balance, confidence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, statementID, occurredOn, t.Description, string(t.Type), t.MoneyIn, t.MoneyOut, nullableDecimal(t.Balance, t.HasBalance), t.Confidence)
		if err != nil {
			return 0, fmt.Errorf("store: inserting transaction row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("store: committing transaction: %w", err)
	}
	return statementID, nil
}

func nullableDecimal(v interface{}, has bool) interface{} {
	if !has {
		return nil
	}
	return v
}
