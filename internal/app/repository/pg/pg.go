package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"echoscript/internal/app/repository"
)

// PostgresDB is the job store for multi-instance deployments
type PostgresDB struct {
	*repository.CommonDB
}

// NewPostgresDB opens a connection pool. The connection is not verified
// until the first query or Migrate.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection pool
func New(db *sql.DB) *PostgresDB {
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres")}
}

// Open connects, pings and migrates
func Open(ctx context.Context, connectionString string) (*PostgresDB, error) {
	p, err := NewPostgresDB(connectionString)
	if err != nil {
		return nil, err
	}
	if err := p.DB().PingContext(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := p.Migrate(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}
