// Package e2e drives the whole pipeline against a real SQLite database:
// seed the corpus tables, run a concurrent equivalence check through the
// database backend, and persist the verdict.
package e2e

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"collatecheck/internal/check"
	"collatecheck/internal/colldb"
	"collatecheck/internal/corpus"
	"collatecheck/internal/results"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedDatabase builds the corpus tables directly, with the Latin pairs and
// the manifest strings but without the full Unicode table, so the pipeline
// stays fast.
func seedDatabase(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE sample_strings (string VARCHAR(64) NOT NULL, PRIMARY KEY (string))`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE unicode_characters (
		code_point INT NOT NULL,
		char_value VARCHAR(255) NOT NULL,
		hex_value VARCHAR(32) NOT NULL,
		PRIMARY KEY (code_point)
	)`)
	require.NoError(t, err)

	manifest, err := corpus.LoadManifest(filepath.Join("testdata", "corpus.yml"))
	require.NoError(t, err)
	require.NotEmpty(t, manifest.Strings)

	samples := append(corpus.LatinPairs(), manifest.Strings...)
	for _, s := range samples {
		_, err = db.Exec("INSERT OR IGNORE INTO sample_strings (string) VALUES (?)", s)
		require.NoError(t, err)
	}
	for _, r := range []rune{'A', 'B', 'C', 'a', 'b', 'c'} {
		_, err = db.Exec("INSERT OR IGNORE INTO unicode_characters (code_point, hex_value, char_value) VALUES (?, ?, ?)",
			int(r), "0x0", string(r))
		require.NoError(t, err)
	}
}

func TestPipeline_SeedCheckRecord(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corpus.db")
	seedDatabase(t, dbPath)
	ctx := context.Background()

	backend, err := colldb.Open("sqlite", dbPath, discardLogger())
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, backend.Ping(ctx))

	// A collation is equivalent to itself, checked concurrently through
	// real database sessions.
	checker := check.New(backend, backend, check.WithWorkers(4))
	start := time.Now()
	verdict, err := checker.Run(ctx, "NOCASE", "NOCASE")
	require.NoError(t, err)
	assert.True(t, verdict.Equivalent)
	assert.Equal(t, verdict.CorpusSize-1, verdict.Pairs)

	// Case-sensitive and case-insensitive orderings diverge on this
	// corpus, and the divergence is an inversion: some uppercase letter
	// sorts before a lowercase one under BINARY but after it under NOCASE.
	divergent, err := checker.Run(ctx, "NOCASE", "BINARY")
	require.NoError(t, err)
	require.False(t, divergent.Equivalent)
	require.NotNil(t, divergent.Discrepancy)
	assert.Positive(t, divergent.Discrepancy.Index)

	// Both verdicts land in the results store and read back intact.
	store, err := results.OpenStore(filepath.Join(dir, "results.db"), discardLogger())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Record(ctx, verdict, time.Since(start)))
	require.NoError(t, store.Record(ctx, divergent, time.Since(start)))

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Equivalent)
	assert.Equal(t, records[0].S1, divergent.Discrepancy.S1)
	assert.True(t, records[1].Equivalent)
}

func TestPipeline_DiffFindsCaseDisagreements(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	seedDatabase(t, dbPath)
	ctx := context.Background()

	backend, err := colldb.Open("sqlite", dbPath, discardLogger())
	require.NoError(t, err)
	defer backend.Close()

	diffs, err := check.FindDifferences(ctx, backend, backend, "NOCASE", "BINARY", 5)
	require.NoError(t, err)
	require.Len(t, diffs, 5)
	for _, d := range diffs {
		assert.NotEqual(t, d.ResultA, d.ResultB)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	seedDatabase(t, dbPath)
	ctx := context.Background()

	backend, err := colldb.Open("sqlite", dbPath, discardLogger())
	require.NoError(t, err)
	defer backend.Close()

	// Sequential runs over the same database report the same first
	// discrepancy every time.
	checker := check.New(backend, backend)
	first, err := checker.Run(ctx, "NOCASE", "BINARY")
	require.NoError(t, err)
	second, err := checker.Run(ctx, "NOCASE", "BINARY")
	require.NoError(t, err)

	require.NotNil(t, first.Discrepancy)
	assert.Equal(t, first, second)
}
