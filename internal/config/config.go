// Package config loads followgraph settings from defaults, an optional TOML
// file, and FOLLOWGRAPH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/alfredjeanlab/followgraph/internal/capture"
	"github.com/alfredjeanlab/followgraph/internal/model"
)

// DefaultFile is read when no explicit config path is given. It may be absent.
const DefaultFile = "followgraph.toml"

// LogFileName is the log file created in the output directory when log_file
// is not set.
const LogFileName = "followgraph.log"

type Config struct {
	InputDir      string   `toml:"input_dir" validate:"required"`     // FOLLOWGRAPH_INPUT_DIR (default "network_logs")
	DocumentsDir  string   `toml:"documents_dir" validate:"required"` // FOLLOWGRAPH_DOCUMENTS_DIR (default "json_followings")
	OutputDir     string   `toml:"output_dir" validate:"required"`    // FOLLOWGRAPH_OUTPUT_DIR (default "output")
	AccountsFile  string   `toml:"accounts_file" validate:"required"` // FOLLOWGRAPH_ACCOUNTS_FILE (default "input_followers.json")
	ProfileHost   string   `toml:"profile_host" validate:"required"`  // FOLLOWGRAPH_PROFILE_HOST (default "instagram.com")
	LogLevel      string   `toml:"log_level" validate:"oneof=debug info warn error"`
	LogFile       string   `toml:"log_file,omitempty"`     // FOLLOWGRAPH_LOG_FILE (default <output_dir>/followgraph.log)
	MetricsFile   string   `toml:"metrics_file,omitempty"` // FOLLOWGRAPH_METRICS_FILE (empty = no metrics)
	WatchDebounce Duration `toml:"watch_debounce" validate:"gt=0"`

	S3       S3Config       `toml:"s3"`
	Git      GitConfig      `toml:"git"`
	Postgres PostgresConfig `toml:"postgres"`
	Neo4j    Neo4jConfig    `toml:"neo4j"`
	NATS     NATSConfig     `toml:"nats"`
}

// S3Config enables the S3 destination when Bucket is set.
type S3Config struct {
	Bucket    string `toml:"bucket,omitempty"`
	KeyPrefix string `toml:"key_prefix,omitempty"`
	Region    string `toml:"region" validate:"required_with=Bucket"`
	Endpoint  string `toml:"endpoint,omitempty" validate:"omitempty,url"` // custom endpoint for MinIO
}

// GitConfig enables the git destination when Repo is set.
type GitConfig struct {
	Repo   string `toml:"repo,omitempty"` // path to an existing clone
	Dir    string `toml:"dir"`
	Branch string `toml:"branch" validate:"required_with=Repo"`
}

// PostgresConfig enables the PostgreSQL graph sink when URL is set.
type PostgresConfig struct {
	URL string `toml:"url,omitempty"`
}

// Neo4jConfig enables the Neo4j graph sink when URI is set.
type Neo4jConfig struct {
	URI      string `toml:"uri,omitempty"`
	User     string `toml:"user,omitempty" validate:"required_with=URI"`
	Password string `toml:"password,omitempty"`
}

// NATSConfig enables run events when URL is set.
type NATSConfig struct {
	URL string `toml:"url,omitempty"`
}

// Duration is a time.Duration written as "2s" in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		InputDir:      "network_logs",
		DocumentsDir:  "json_followings",
		OutputDir:     "output",
		AccountsFile:  "input_followers.json",
		ProfileHost:   capture.DefaultProfileHost,
		LogLevel:      "info",
		WatchDebounce: Duration(2 * time.Second),
		S3:            S3Config{Region: "us-east-1", KeyPrefix: "followgraph"},
		Git:           GitConfig{Dir: "graph", Branch: "main"},
		Neo4j:         Neo4jConfig{User: "neo4j"},
	}
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. An empty path reads DefaultFile if it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	c.InputDir = envOrDefault("FOLLOWGRAPH_INPUT_DIR", c.InputDir)
	c.DocumentsDir = envOrDefault("FOLLOWGRAPH_DOCUMENTS_DIR", c.DocumentsDir)
	c.OutputDir = envOrDefault("FOLLOWGRAPH_OUTPUT_DIR", c.OutputDir)
	c.AccountsFile = envOrDefault("FOLLOWGRAPH_ACCOUNTS_FILE", c.AccountsFile)
	c.ProfileHost = envOrDefault("FOLLOWGRAPH_PROFILE_HOST", c.ProfileHost)
	c.LogLevel = envOrDefault("FOLLOWGRAPH_LOG_LEVEL", c.LogLevel)
	c.LogFile = envOrDefault("FOLLOWGRAPH_LOG_FILE", c.LogFile)
	c.MetricsFile = envOrDefault("FOLLOWGRAPH_METRICS_FILE", c.MetricsFile)

	c.S3.Bucket = envOrDefault("FOLLOWGRAPH_S3_BUCKET", c.S3.Bucket)
	c.S3.KeyPrefix = envOrDefault("FOLLOWGRAPH_S3_KEY_PREFIX", c.S3.KeyPrefix)
	c.S3.Region = envOrDefault("FOLLOWGRAPH_S3_REGION", c.S3.Region)
	c.S3.Endpoint = envOrDefault("FOLLOWGRAPH_S3_ENDPOINT", c.S3.Endpoint)
	c.Git.Repo = envOrDefault("FOLLOWGRAPH_GIT_REPO", c.Git.Repo)
	c.Git.Dir = envOrDefault("FOLLOWGRAPH_GIT_DIR", c.Git.Dir)
	c.Git.Branch = envOrDefault("FOLLOWGRAPH_GIT_BRANCH", c.Git.Branch)
	c.Postgres.URL = envOrDefault("FOLLOWGRAPH_POSTGRES_URL", c.Postgres.URL)
	c.Neo4j.URI = envOrDefault("FOLLOWGRAPH_NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = envOrDefault("FOLLOWGRAPH_NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = envOrDefault("FOLLOWGRAPH_NEO4J_PASSWORD", c.Neo4j.Password)
	c.NATS.URL = envOrDefault("FOLLOWGRAPH_NATS_URL", c.NATS.URL)

	if v := os.Getenv("FOLLOWGRAPH_WATCH_DEBOUNCE"); v != "" {
		if err := c.WatchDebounce.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("FOLLOWGRAPH_WATCH_DEBOUNCE: %w", err)
		}
	}
	return nil
}

// Validate checks the settings. Call it again after applying flag overrides.
func (c *Config) Validate() error {
	return model.ValidateStruct(c)
}

// LogPath returns the log file path, defaulting into the output directory.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.OutputDir, LogFileName)
}

const redacted = "xxxxx"

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	r := *c
	if r.Neo4j.Password != "" {
		r.Neo4j.Password = redacted
	}
	if u, err := url.Parse(r.Postgres.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
			r.Postgres.URL = u.String()
		}
	}
	return &r
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
