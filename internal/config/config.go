// Package config loads server settings from flags, SPLITVISION_* environment
// variables and an optional .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

// EnvPrefix is prepended to flag names to form environment variable names,
// e.g. --jwt-secret becomes SPLITVISION_JWT_SECRET.
const EnvPrefix = "SPLITVISION"

// Storage backends accepted by --store.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config holds the server settings.
type Config struct {
	Port       int
	Store      string
	DBPath     string
	StaticPath string
	JWTSecret  string
	TokenTTL   time.Duration
	LogLevel   string
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads .env from the working directory, if present, then parses args.
func Load(args []string) (*Config, error) {
	return LoadFrom(args, ".env")
}

// LoadFrom is Load with an explicit .env path. A missing file is not an
// error. Variables already set in the environment win over the file.
func LoadFrom(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	flags := ff.NewFlagSet("splitvision")
	flags.IntVar(&cfg.Port, 0, "port", 8080, "HTTP server port")
	flags.StringVar(&cfg.Store, 0, "store", StoreSQLite, "Storage backend: 'sqlite' or 'bolt'")
	flags.StringVar(&cfg.DBPath, 0, "db", "./data/splitvision.db", "Database file path")
	flags.StringVar(&cfg.StaticPath, 0, "static", "", "Directory of frontend files to serve (optional)")
	flags.StringVar(&cfg.JWTSecret, 0, "jwt-secret", "", "Secret used to sign session tokens")
	flags.DurationVar(&cfg.TokenTTL, 0, "token-ttl", 7*24*time.Hour, "Lifetime of issued tokens")
	flags.StringVar(&cfg.LogLevel, 0, "log-level", "info", "Log level: debug, info, warn, error")

	if err := ff.Parse(flags, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return nil, fmt.Errorf("%w\n%s", err, ffhelp.Flags(flags))
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that flag parsing cannot.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Store {
	case StoreSQLite, StoreBolt:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreBolt)
	}
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (--jwt-secret or %s_JWT_SECRET)", EnvPrefix)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}
