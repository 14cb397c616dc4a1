package colldb

import (
	"context"
	"fmt"
	"strings"

	"collatecheck/internal/corpus"
)

// seedBatchSize bounds the number of rows per INSERT statement.
const seedBatchSize = 1000

// SeedCorpus creates the corpus tables and fills them: the sample strings
// into sample_strings and every Unicode scalar value into
// unicode_characters. Duplicate rows are ignored so seeding is idempotent.
func (b *Backend) SeedCorpus(ctx context.Context, samples []string) error {
	if err := b.createCorpusTables(ctx); err != nil {
		return err
	}

	b.log.Debug("inserting sample strings", "count", len(samples))
	if err := b.insertSamples(ctx, samples); err != nil {
		return err
	}

	scalars := corpus.Scalars()
	b.log.Debug("inserting unicode characters", "count", len(scalars))
	if err := b.insertScalars(ctx, scalars); err != nil {
		return err
	}

	sampleCount, charCount, err := b.CorpusCounts(ctx)
	if err != nil {
		return err
	}
	b.log.Info("corpus seeded", "sample_strings", sampleCount, "unicode_characters", charCount)
	return nil
}

// CorpusCounts returns the row counts of the two corpus tables.
func (b *Backend) CorpusCounts(ctx context.Context) (samples, characters int, err error) {
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sample_strings").Scan(&samples); err != nil {
		return 0, 0, fmt.Errorf("colldb: count sample_strings: %w", err)
	}
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM unicode_characters").Scan(&characters); err != nil {
		return 0, 0, fmt.Errorf("colldb: count unicode_characters: %w", err)
	}
	return samples, characters, nil
}

func (b *Backend) createCorpusTables(ctx context.Context) error {
	// MySQL needs an explicit utf8mb4 character set so the tables can hold
	// the full scalar value range; SQLite stores UTF-8 natively.
	suffix := ""
	if b.driver == "mysql" {
		suffix = " DEFAULT CHARACTER SET utf8mb4"
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS sample_strings (
			string VARCHAR(64) NOT NULL,
			PRIMARY KEY (string)
		)` + suffix,
		`CREATE TABLE IF NOT EXISTS unicode_characters (
			code_point INT NOT NULL,
			char_value VARCHAR(255) NOT NULL,
			hex_value VARCHAR(32) NOT NULL,
			PRIMARY KEY (code_point)
		)` + suffix,
	}
	for _, stmt := range ddl {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("colldb: create corpus tables: %w", err)
		}
	}
	return nil
}

// insertVerb returns the dialect's duplicate-tolerant INSERT prefix.
func (b *Backend) insertVerb() string {
	if b.driver == "mysql" {
		return "INSERT IGNORE INTO"
	}
	return "INSERT OR IGNORE INTO"
}

func (b *Backend) insertSamples(ctx context.Context, samples []string) error {
	for start := 0; start < len(samples); start += seedBatchSize {
		end := min(start+seedBatchSize, len(samples))
		batch := samples[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("(?),", len(batch)), ",")
		args := make([]any, len(batch))
		for i, s := range batch {
			args[i] = s
		}

		query := fmt.Sprintf("%s sample_strings (string) VALUES %s", b.insertVerb(), placeholders)
		if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("colldb: insert sample strings: %w", err)
		}
	}
	return nil
}

func (b *Backend) insertScalars(ctx context.Context, scalars []corpus.Scalar) error {
	for start := 0; start < len(scalars); start += seedBatchSize {
		end := min(start+seedBatchSize, len(scalars))
		batch := scalars[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("(?, ?, ?),", len(batch)), ",")
		args := make([]any, 0, 3*len(batch))
		for _, s := range batch {
			args = append(args, s.CodePoint, s.Hex, s.Value)
		}

		query := fmt.Sprintf("%s unicode_characters (code_point, hex_value, char_value) VALUES %s",
			b.insertVerb(), placeholders)
		if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("colldb: insert unicode characters: %w", err)
		}
	}
	return nil
}
