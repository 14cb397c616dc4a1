// Package results persists check outcomes to a local SQLite database so
// runs can be reviewed later without re-scanning the corpus. The sink is
// optional: correctness of a check never depends on it.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"collatecheck/internal/collate"
)

// Record is one persisted check run.
type Record struct {
	ID         int64
	OrderingA  string
	OrderingB  string
	Equivalent bool
	Reason     string // empty when equivalent
	Index      int
	S1, S2     string
	CorpusSize int
	Pairs      int
	Duration   time.Duration
	CreatedAt  string // RFC 3339
}

// Store is the SQLite-backed sink for check runs.
type Store struct {
	conn *sql.DB
	log  *slog.Logger
}

// OpenStore opens (or creates) the results database at path.
func OpenStore(path string, log *slog.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("results: set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, log: log}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ordering_a TEXT NOT NULL,
			ordering_b TEXT NOT NULL,
			equivalent BOOLEAN NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			idx INTEGER NOT NULL DEFAULT 0,
			s1 TEXT NOT NULL DEFAULT '',
			s2 TEXT NOT NULL DEFAULT '',
			corpus_size INTEGER NOT NULL,
			pairs INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("results: initialize schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record persists one verdict with its timing.
func (s *Store) Record(ctx context.Context, v *collate.Verdict, elapsed time.Duration) error {
	reason, idx, s1, s2 := "", 0, "", ""
	if v.Discrepancy != nil {
		reason = string(v.Discrepancy.Reason)
		idx = v.Discrepancy.Index
		s1 = v.Discrepancy.S1
		s2 = v.Discrepancy.S2
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO checks (ordering_a, ordering_b, equivalent, reason, idx, s1, s2, corpus_size, pairs, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.OrderingA, v.OrderingB, v.Equivalent, reason, idx, s1, s2, v.CorpusSize, v.Pairs, elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("results: record check: %w", err)
	}
	s.log.Debug("recorded check run", "ordering_a", v.OrderingA, "ordering_b", v.OrderingB, "equivalent", v.Equivalent)
	return nil
}

// List returns the most recent runs, newest first, up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, ordering_a, ordering_b, equivalent, reason, idx, s1, s2, corpus_size, pairs, duration_ms, created_at
		FROM checks ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("results: list checks: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.OrderingA, &r.OrderingB, &r.Equivalent, &r.Reason,
			&r.Index, &r.S1, &r.S2, &r.CorpusSize, &r.Pairs, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("results: scan check row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("results: read checks: %w", err)
	}
	return records, nil
}

// Reset drops all recorded runs.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM checks"); err != nil {
		return fmt.Errorf("results: reset: %w", err)
	}
	s.log.Debug("results database reset")
	return nil
}
