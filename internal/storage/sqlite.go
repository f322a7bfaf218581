// Package storage provides SQLite-based persistence for match results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/pong-server/internal/session"
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// MatchRecord is one persisted match outcome.
type MatchRecord struct {
	ID         int64
	GameID     string
	P1Name     string
	P2Name     string
	Score1     int
	Score2     int
	WinnerName string // Empty on abandonment
	EndReason  string // "completed" or "abandoned"
	Ticks      int64
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			p1_name TEXT NOT NULL,
			p2_name TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner_name TEXT,
			end_reason TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_game_id ON matches(game_id);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveMatchResult persists one finished session. Implements hub.ResultSaver.
func (s *Store) SaveMatchResult(res session.Result) error {
	_, err := s.db.Exec(`
		INSERT INTO matches (game_id, p1_name, p2_name, score1, score2, winner_name, end_reason, ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID,
		res.P1Name,
		res.P2Name,
		res.Score1,
		res.Score2,
		res.WinnerName,
		res.Reason.String(),
		int64(res.Ticks),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save match result: %w", err)
	}
	return nil
}

// RecentMatches returns the most recent match records, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, game_id, p1_name, p2_name, score1, score2,
		       COALESCE(winner_name, ''), end_reason, ticks, created_at
		FROM matches
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.ID, &r.GameID, &r.P1Name, &r.P2Name,
			&r.Score1, &r.Score2, &r.WinnerName, &r.EndReason, &r.Ticks, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan match row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
