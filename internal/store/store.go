// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/kanadrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the accuracy log and session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			vocab_set TEXT NOT NULL,
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_answers (
			session_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			input TEXT NOT NULL,
			expected TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_answers_symbol ON session_answers(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an integer list stored under key. A missing key yields an empty list.
func (s *Store) Load(key string) ([]int, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := []int{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return values, nil
}

// Save replaces the integer list stored under key.
func (s *Store) Save(key string, values []int) error {
	if values == nil {
		values = []int{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	return err
}

// DeleteKey removes a key-value entry.
func (s *Store) DeleteKey(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// ResetAll removes every stored session and key-value entry.
func (s *Store) ResetAll(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, stmt := range []string{
		`DELETE FROM session_answers`,
		`DELETE FROM sessions`,
		`DELETE FROM kv`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertSession stores a completed pass and its answers.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, answers []model.AnswerRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, vocab_set, total, correct, incorrect, accuracy, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.VocabSet,
		stats.Total,
		stats.Correct,
		stats.Incorrect,
		stats.Accuracy,
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(answers) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_answers (session_id, seq, symbol, input, expected, is_correct)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, a := range answers {
			if _, err = stmt.ExecContext(ctx, id, a.Seq, a.Symbol, a.Input, a.Expected, boolToInt(a.IsCorrect)); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetWeakKana aggregates per-symbol answers over the most recent sessions.
func (s *Store) GetWeakKana(ctx context.Context, window int, set string) ([]model.KanaAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR vocab_set = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT a.symbol, MIN(a.expected), SUM(a.is_correct) AS correct, SUM(1 - a.is_correct) AS incorrect
	FROM session_answers a
	JOIN recent_sessions r ON r.id = a.session_id
	GROUP BY a.symbol`

	rows, err := s.db.QueryContext(ctx, query, set, set, window)
	if err != nil {
		return nil, err
	}
	return scanKanaAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Set != "" {
		clauses = append(clauses, "vocab_set = ?")
		args = append(args, cfg.Set)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, vocab_set, correct, incorrect, accuracy, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.VocabSet, &agg.Correct, &agg.Incorrect, &agg.Accuracy, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListKanaAggregatesForSessions aggregates per-symbol answers across sessions.
func (s *Store) ListKanaAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.KanaAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT symbol, MIN(expected), SUM(is_correct) AS correct, SUM(1 - is_correct) AS incorrect
		FROM session_answers
		WHERE session_id IN (%s)
		GROUP BY symbol`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanKanaAggregates(rows)
}

func scanKanaAggregates(rows *sql.Rows) ([]model.KanaAggregate, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KanaAggregate
	for rows.Next() {
		var agg model.KanaAggregate
		if err := rows.Scan(&agg.Symbol, &agg.Expected, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
