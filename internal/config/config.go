// Package config loads process configuration from an optional YAML file
// and COLLATE_* environment variables. Database credentials follow the
// environment, matching how the tool is deployed next to the servers it
// tests.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Database describes one server hosting collations under test.
type Database struct {
	Driver   string `mapstructure:"driver"` // "mysql" or "sqlite"
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"` // file path for sqlite
	Params   string `mapstructure:"params"`   // extra DSN parameters
}

// DSN builds the driver-specific data source name.
func (d Database) DSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	cred := d.User
	if d.Password != "" {
		cred = d.User + ":" + d.Password
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s", cred, d.Host, d.Port, d.Database)
	if d.Params != "" {
		dsn += "?" + d.Params
	}
	return dsn
}

func (d Database) empty() bool {
	return d.Driver == "" && d.Host == "" && d.Database == ""
}

// Config holds all process settings.
type Config struct {
	// Primary serves the reference ordering and the corpus tables.
	Primary Database `mapstructure:"primary"`

	// Secondary serves the ordering under test when it lives on a
	// different server (e.g. the same collation name across two builds).
	// Defaults to Primary.
	Secondary Database `mapstructure:"secondary"`

	Workers        int    `mapstructure:"workers"`
	ResultsPath    string `mapstructure:"resultsPath"`
	CorpusManifest string `mapstructure:"corpusManifest"`
}

// Load reads configuration. An explicit path must exist; otherwise
// collatecheck.yml is searched for in the working directory and a missing
// file yields defaults, not an error. Environment variables override the
// file: COLLATE_PRIMARY_HOST, COLLATE_PRIMARY_PASSWORD, COLLATE_WORKERS
// and so on.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("primary.driver", "mysql")
	v.SetDefault("primary.host", "127.0.0.1")
	v.SetDefault("primary.port", 3306)
	v.SetDefault("primary.user", "root")
	v.SetDefault("primary.password", "")
	v.SetDefault("primary.database", "")
	v.SetDefault("primary.params", "")
	v.SetDefault("secondary.driver", "")
	v.SetDefault("secondary.host", "")
	v.SetDefault("secondary.port", 0)
	v.SetDefault("secondary.user", "")
	v.SetDefault("secondary.password", "")
	v.SetDefault("secondary.database", "")
	v.SetDefault("secondary.params", "")
	v.SetDefault("workers", 1)
	v.SetDefault("resultsPath", "collatecheck.db")
	v.SetDefault("corpusManifest", "")

	v.SetEnvPrefix("COLLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("collatecheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Secondary.empty() {
		cfg.Secondary = cfg.Primary
	}
	return &cfg, nil
}
