// Package config loads and saves the doispes.yaml repository configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file at the repository root.
const FileName = "doispes.yaml"

// Config represents the top-level doispes.yaml configuration.
type Config struct {
	Owner   OwnerConfig   `yaml:"owner"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Git     GitConfig     `yaml:"git"`
}

// OwnerConfig identifies who imported records belong to.
type OwnerConfig struct {
	FamilyID string `yaml:"family_id"`
	UserID   string `yaml:"user_id"`
	UserName string `yaml:"user_name,omitempty"`
}

// DatabaseURLEnv supplies the postgres URL when storage.url is empty, keeping
// credentials out of the versioned config file.
const DatabaseURLEnv = "DOISPES_DATABASE_URL"

// StorageConfig selects the ledger backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`         // "csv", "sqlite" or "postgres"
	Path   string `yaml:"path,omitempty"` // relative to the repository root
	URL    string `yaml:"url,omitempty"`  // postgres only
}

// DatabaseURL returns storage.url, falling back to $DOISPES_DATABASE_URL.
func (s StorageConfig) DatabaseURL() string {
	if s.URL != "" {
		return s.URL
	}
	return os.Getenv(DatabaseURLEnv)
}

// LogConfig controls operational logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a doispes.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger repository.
func Default(familyID, userID string) *Config {
	return &Config{
		Owner: OwnerConfig{
			FamilyID: familyID,
			UserID:   userID,
		},
		Storage: StorageConfig{
			Driver: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Doispes Importer",
			AuthorEmail: "importer@doispes.local",
		},
	}
}

// Validate reports every problem with cfg joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Owner.FamilyID) == "" {
		errs = append(errs, errors.New("owner.family_id is required"))
	}
	if strings.TrimSpace(c.Owner.UserID) == "" {
		errs = append(errs, errors.New("owner.user_id is required"))
	}
	switch c.Storage.Driver {
	case "csv", "sqlite":
	case "postgres":
		if c.Storage.DatabaseURL() == "" {
			errs = append(errs, fmt.Errorf("storage.driver postgres needs storage.url or $%s", DatabaseURLEnv))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be csv, sqlite or postgres", c.Storage.Driver))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not a known level", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		errs = append(errs, errors.New("git.auto_commit needs author_name and author_email"))
	}
	return errors.Join(errs...)
}
