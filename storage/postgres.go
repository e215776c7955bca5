// Package storage provides a PostgreSQL-based implementation of the
// CountStore interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	pgCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS betafeatures_user_counts (
			feature TEXT PRIMARY KEY,
			number BIGINT NOT NULL DEFAULT 0
		);
	`

	pgSelectCountsSQL = `
		SELECT feature, number
		FROM betafeatures_user_counts
	`

	pgUpsertCountSQL = `
		INSERT INTO betafeatures_user_counts (feature, number)
		VALUES ($1, $2)
		ON CONFLICT (feature)
		DO UPDATE SET number = $2
	`
)

// PostgresCountStore implements the CountStore interface using PostgreSQL.
type PostgresCountStore struct {
	db *sql.DB
}

// NewPostgresCountStore connects to PostgreSQL using the provided connection
// string and runs migrations.
func NewPostgresCountStore(connString string) (*PostgresCountStore, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	store := &PostgresCountStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate creates the betafeatures_user_counts table.
func (s *PostgresCountStore) migrate() error {
	_, err := s.db.Exec(pgCreateTableSQL)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// GetCounts reads every stored feature count in bulk.
func (s *PostgresCountStore) GetCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, pgSelectCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query user counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var feature string
		var number int64
		if err := rows.Scan(&feature, &number); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan user count row: %w", err)
		}
		counts[feature] = number
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: error iterating user count rows: %w", err)
	}
	return counts, nil
}

// UpsertCount replaces the stored count for a feature.
func (s *PostgresCountStore) UpsertCount(ctx context.Context, feature string, count int64) error {
	if feature == "" {
		return betafeatures.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, pgUpsertCountSQL, feature, count); err != nil {
		return fmt.Errorf("postgres: failed to upsert count for feature '%s': %w", feature, err)
	}
	return nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresCountStore) Close() error {
	return s.db.Close()
}
