// Package colldb implements the comparator and corpus-source capabilities
// over a relational database. Collations are evaluated by the server
// itself through parameterized COLLATE queries, so this backend works with
// any collation the server knows about, including custom ICU tailorings.
//
// Supported drivers: "mysql" (production) and "sqlite" (local runs and
// tests, via modernc.org/sqlite).
package colldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"collatecheck/internal/collate"
)

// Compile-time checks that Backend satisfies both capabilities.
var (
	_ collate.Pool         = (*Backend)(nil)
	_ collate.CorpusSource = (*Backend)(nil)
)

// Backend wraps a database connection pool. Each comparator session checks
// out a dedicated connection, so concurrent scan workers never share one.
type Backend struct {
	db     *sql.DB
	driver string
	log    *slog.Logger
}

// Open creates a Backend for the given driver and DSN. The connection is
// established lazily; call Ping to verify connectivity up front.
func Open(driver, dsn string, log *slog.Logger) (*Backend, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("colldb: open %s database: %w", driver, err)
	}
	return &Backend{db: db, driver: driver, log: log}, nil
}

// Ping verifies connectivity and logs the server version.
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("colldb: ping: %w", err)
	}
	versionQuery := "SELECT VERSION()"
	if b.driver == "sqlite" {
		versionQuery = "SELECT sqlite_version()"
	}
	var version string
	if err := b.db.QueryRowContext(ctx, versionQuery).Scan(&version); err != nil {
		return fmt.Errorf("colldb: server version: %w", err)
	}
	b.log.Debug("connected to database", "driver", b.driver, "version", version)
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}

// orderingName matches the collation identifiers we are willing to
// interpolate into SQL. COLLATE does not accept placeholders, so the name
// goes into the query text and must be constrained.
var orderingName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateOrdering(ordering string) error {
	if !orderingName.MatchString(ordering) {
		return fmt.Errorf("colldb: invalid collation name %q", ordering)
	}
	return nil
}

// Session checks a dedicated connection out of the pool for exclusive use
// by one scan worker.
func (b *Backend) Session(ctx context.Context) (collate.Session, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("colldb: acquire connection: %w", err)
	}
	return &session{conn: conn}, nil
}

// SortedCorpus fetches the union of the sample strings and the Unicode
// character table, ordered ascending by the given collation. The result is
// materialized once and handed to the caller read-only.
func (b *Backend) SortedCorpus(ctx context.Context, ordering string) ([]string, error) {
	if err := validateOrdering(ordering); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT s FROM (
			SELECT string AS s FROM sample_strings
			UNION
			SELECT char_value AS s FROM unicode_characters
		) AS t
		ORDER BY t.s COLLATE %s ASC`, ordering)

	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("colldb: fetch corpus under %s: %w", ordering, err)
	}
	defer rows.Close()

	var strings []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("colldb: scan corpus row: %w", err)
		}
		strings = append(strings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("colldb: read corpus: %w", err)
	}
	if len(strings) == 0 {
		return nil, collate.ErrEmptyCorpus
	}

	b.log.Debug("fetched corpus", "ordering", ordering, "size", len(strings))
	return strings, nil
}

// session is one exclusively-owned comparator connection.
type session struct {
	conn *sql.Conn
}

// Compare evaluates s1 against s2 under the given collation with a single
// round-trip: SELECT ? = ? COLLATE c, ? < ? COLLATE c.
func (s *session) Compare(ctx context.Context, s1, s2, ordering string) (collate.PairResult, error) {
	if err := validateOrdering(ordering); err != nil {
		return collate.PairResult{}, err
	}

	query := fmt.Sprintf(
		"SELECT ? = ? COLLATE %s AS equal, ? < ? COLLATE %s AS less_than",
		ordering, ordering)

	var result collate.PairResult
	err := s.conn.QueryRowContext(ctx, query, s1, s2, s1, s2).Scan(&result.Equal, &result.Less)
	if err != nil {
		return collate.PairResult{}, fmt.Errorf("colldb: compare under %s: %w", ordering, err)
	}
	return result, nil
}

// Close returns the connection to the pool.
func (s *session) Close() error {
	return s.conn.Close()
}
