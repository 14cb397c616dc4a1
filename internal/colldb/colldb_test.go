package colldb

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"collatecheck/internal/collate"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := Open("sqlite", filepath.Join(t.TempDir(), "colldb.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	require.NoError(t, b.Ping(context.Background()))
	return b
}

// seedSmall creates the corpus tables with a handful of rows, bypassing the
// full Unicode seed.
func seedSmall(t *testing.T, b *Backend, samples []string, chars []string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.createCorpusTables(ctx))
	require.NoError(t, b.insertSamples(ctx, samples))
	for i, c := range chars {
		_, err := b.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO unicode_characters (code_point, hex_value, char_value) VALUES (?, ?, ?)",
			i, "0x0", c)
		require.NoError(t, err)
	}
}

func TestBackend_SortedCorpus(t *testing.T) {
	b := newTestBackend(t)
	seedSmall(t, b, []string{"b", "A", "a", "B"}, []string{"c"})
	ctx := context.Background()

	sorted, err := b.SortedCorpus(ctx, "NOCASE")
	require.NoError(t, err)
	require.Len(t, sorted, 5)
	var lowered []string
	for _, s := range sorted {
		lowered = append(lowered, strings.ToLower(s))
	}
	assert.Equal(t, []string{"a", "a", "b", "b", "c"}, lowered)

	sorted, err = b.SortedCorpus(ctx, "BINARY")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "a", "b", "c"}, sorted)
}

func TestBackend_SortedCorpus_Empty(t *testing.T) {
	b := newTestBackend(t)
	seedSmall(t, b, nil, nil)

	_, err := b.SortedCorpus(context.Background(), "BINARY")
	assert.ErrorIs(t, err, collate.ErrEmptyCorpus)
}

func TestSession_Compare(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	sess, err := b.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	result, err := sess.Compare(ctx, "a", "A", "NOCASE")
	require.NoError(t, err)
	assert.Equal(t, collate.PairResult{Equal: true}, result)

	result, err = sess.Compare(ctx, "a", "A", "BINARY")
	require.NoError(t, err)
	assert.Equal(t, collate.PairResult{}, result)

	result, err = sess.Compare(ctx, "A", "a", "BINARY")
	require.NoError(t, err)
	assert.Equal(t, collate.PairResult{Less: true}, result)
}

func TestSession_Exclusive(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	// Two sessions must be usable at the same time; each owns its own
	// connection.
	first, err := b.Session(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := b.Session(ctx)
	require.NoError(t, err)
	defer second.Close()

	r1, err := first.Compare(ctx, "a", "b", "BINARY")
	require.NoError(t, err)
	r2, err := second.Compare(ctx, "a", "b", "BINARY")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestValidateOrdering(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	sess, err := b.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	for _, bad := range []string{"", "NOCASE; DROP TABLE sample_strings", "utf8mb4 ai ci", "a-b"} {
		_, err := sess.Compare(ctx, "a", "b", bad)
		assert.ErrorContains(t, err, "invalid collation name", "ordering %q", bad)
		_, err = b.SortedCorpus(ctx, bad)
		assert.ErrorContains(t, err, "invalid collation name", "ordering %q", bad)
	}
}

func TestBackend_SeedCorpus(t *testing.T) {
	if testing.Short() {
		t.Skip("seeds 1.1M unicode rows")
	}
	b := newTestBackend(t)
	ctx := context.Background()

	samples := []string{"aa", "ab", "ba"}
	require.NoError(t, b.SeedCorpus(ctx, samples))

	sampleCount, charCount, err := b.CorpusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sampleCount)
	assert.Equal(t, 1112064, charCount)

	// Seeding again is a no-op.
	require.NoError(t, b.SeedCorpus(ctx, samples))
	sampleCount, charCount, err = b.CorpusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sampleCount)
	assert.Equal(t, 1112064, charCount)
}
