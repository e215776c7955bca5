// Package storage provides a SQLite-based implementation of the CountStore
// interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS betafeatures_user_counts (
			feature TEXT PRIMARY KEY,
			number INTEGER NOT NULL DEFAULT 0
		);
	`

	sqliteSelectCountsSQL = `
		SELECT feature, number
		FROM betafeatures_user_counts
	`

	sqliteUpsertCountSQL = `
		INSERT INTO betafeatures_user_counts (feature, number)
		VALUES (?, ?)
		ON CONFLICT(feature)
		DO UPDATE SET number = ?
	`
)

// SQLiteCountStore implements the CountStore interface using SQLite.
type SQLiteCountStore struct {
	db *sql.DB
}

// NewSQLiteCountStore opens the SQLite database at the specified path and
// runs migrations.
func NewSQLiteCountStore(dbPath string) (*SQLiteCountStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	store := &SQLiteCountStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run sqlite migrations: %w", err)
	}

	return store, nil
}

// migrate creates the betafeatures_user_counts table.
func (s *SQLiteCountStore) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	if err != nil {
		return fmt.Errorf("sqlite: failed to execute create table statement: %w", err)
	}
	return nil
}

// GetCounts reads every stored feature count in bulk.
func (s *SQLiteCountStore) GetCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query user counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var feature string
		var number int64
		if err := rows.Scan(&feature, &number); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan user count row: %w", err)
		}
		counts[feature] = number
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: error iterating user count rows: %w", err)
	}
	return counts, nil
}

// UpsertCount replaces the stored count for a feature.
func (s *SQLiteCountStore) UpsertCount(ctx context.Context, feature string, count int64) error {
	if feature == "" {
		return betafeatures.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, sqliteUpsertCountSQL, feature, count, count); err != nil {
		return fmt.Errorf("sqlite: failed to upsert count for feature '%s': %w", feature, err)
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteCountStore) Close() error {
	return s.db.Close()
}
