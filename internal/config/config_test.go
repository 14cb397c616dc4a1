package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collatecheck.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDatabase_DSN(t *testing.T) {
	mysql := Database{
		Driver:   "mysql",
		Host:     "db.example.com",
		Port:     3307,
		User:     "checker",
		Password: "hunter2",
		Database: "collations",
		Params:   "charset=utf8mb4",
	}
	assert.Equal(t, "checker:hunter2@tcp(db.example.com:3307)/collations?charset=utf8mb4", mysql.DSN())

	noPassword := Database{Driver: "mysql", Host: "localhost", Port: 3306, User: "root", Database: "test"}
	assert.Equal(t, "root@tcp(localhost:3306)/test", noPassword.DSN())

	sqlite := Database{Driver: "sqlite", Database: "/tmp/corpus.db"}
	assert.Equal(t, "/tmp/corpus.db", sqlite.DSN())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Primary.Driver)
	assert.Equal(t, "127.0.0.1", cfg.Primary.Host)
	assert.Equal(t, 3306, cfg.Primary.Port)
	assert.Equal(t, "root", cfg.Primary.User)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "collatecheck.db", cfg.ResultsPath)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
primary:
  driver: sqlite
  database: /var/lib/collatecheck/corpus.db
workers: 8
resultsPath: /var/lib/collatecheck/results.db
corpusManifest: corpus.yml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Primary.Driver)
	assert.Equal(t, "/var/lib/collatecheck/corpus.db", cfg.Primary.Database)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/var/lib/collatecheck/results.db", cfg.ResultsPath)
	assert.Equal(t, "corpus.yml", cfg.CorpusManifest)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoad_SecondaryDefaultsToPrimary(t *testing.T) {
	path := writeConfig(t, `
primary:
  driver: mysql
  host: primary.example.com
  port: 3306
  user: checker
  database: collations
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Primary, cfg.Secondary)
	assert.Equal(t, cfg.Primary.DSN(), cfg.Secondary.DSN())
}

func TestLoad_SecondaryOverrides(t *testing.T) {
	path := writeConfig(t, `
primary:
  driver: mysql
  host: primary.example.com
  port: 3306
  user: checker
  database: collations
secondary:
  driver: mysql
  host: secondary.example.com
  port: 3307
  user: checker
  database: collations
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secondary.example.com", cfg.Secondary.Host)
	assert.Equal(t, 3307, cfg.Secondary.Port)
	assert.NotEqual(t, cfg.Primary.DSN(), cfg.Secondary.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COLLATE_PRIMARY_PASSWORD", "s3cret")
	t.Setenv("COLLATE_WORKERS", "16")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Primary.Password)
	assert.Equal(t, 16, cfg.Workers)
}
