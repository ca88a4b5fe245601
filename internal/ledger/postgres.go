// internal/ledger/postgres.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists bankrolls in Postgres so they survive the client
// process. Selected by setting DATABASE_URL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connStr, verifies the connection, and
// ensures the balances table exists.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	q := `
		CREATE TABLE IF NOT EXISTS balances (
			player  TEXT PRIMARY KEY,
			balance BIGINT NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, q); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ensure balances table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Balance(ctx context.Context, player string) (int, bool, error) {
	var balance int
	q := `SELECT balance FROM balances WHERE player = $1`
	err := s.pool.QueryRow(ctx, q, player).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("balance lookup for %s: %w", player, err)
	}
	return balance, true, nil
}

func (s *PostgresStore) SetBalance(ctx context.Context, player string, balance int) error {
	q := `
		INSERT INTO balances (player, balance) VALUES ($1, $2)
		ON CONFLICT (player) DO UPDATE SET balance = EXCLUDED.balance
	`
	if _, err := s.pool.Exec(ctx, q, player, balance); err != nil {
		return fmt.Errorf("balance update for %s: %w", player, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
