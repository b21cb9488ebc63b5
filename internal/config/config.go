package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshp123/hp-instant-ink/internal/output"
	"github.com/joshp123/hp-instant-ink/internal/printer"
)

const (
	DefaultTimeoutSeconds = 10
	DefaultFormat         = output.FormatTable

	// EnvPath overrides the config file location.
	EnvPath = "HP_INSTANT_INK_CONFIG"

	appDir   = "hp-instant-ink"
	fileName = "config.json"
)

// Config is the persisted preference set.
type Config struct {
	DefaultPrinter *string       `json:"default_printer"`
	Timeout        int           `json:"timeout"`
	Format         output.Format `json:"format"`
	PrettyJSON     bool          `json:"pretty_json"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Timeout: DefaultTimeoutSeconds,
		Format:  DefaultFormat,
	}
}

// Printer returns the default printer URL or "" when unset.
func (c Config) Printer() string {
	if c.DefaultPrinter == nil {
		return ""
	}
	return *c.DefaultPrinter
}

// clone detaches the printer pointer so callers never alias store state.
func (c Config) clone() Config {
	if c.DefaultPrinter != nil {
		value := *c.DefaultPrinter
		c.DefaultPrinter = &value
	}
	return c
}

// DefaultPath resolves the per-user config file, honouring EnvPath.
func DefaultPath() (string, error) {
	if value := os.Getenv(EnvPath); value != "" {
		return value, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", &Error{Kind: IOFailure, Err: fmt.Errorf("resolve config dir: %w", err)}
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Store owns the on-disk config file. Every mutation rewrites the whole file
// through a temp file and rename, so readers never observe a partial write.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the file, filling absent keys with defaults. A missing file
// yields Defaults and is not created.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Config{}, &Error{Kind: IOFailure, Err: fmt.Errorf("read config: %w", err)}
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, &Error{Kind: Corrupt, Err: fmt.Errorf("parse config %s: %w", s.path, err)}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, &Error{Kind: Corrupt, Err: fmt.Errorf("config %s: %w", s.path, err)}
	}
	// Hand-edited files may hold a bare host; Validate has already proven it
	// normalizes.
	if cfg.DefaultPrinter != nil {
		endpoint, _ := printer.NormalizeURL(*cfg.DefaultPrinter)
		cfg.DefaultPrinter = &endpoint
	}
	return cfg, nil
}

// Show is a read-only Load for display.
func (s *Store) Show() (Config, error) {
	return s.Load()
}

// SetPrinter normalizes raw and stores it as the default printer.
func (s *Store) SetPrinter(raw string) (Config, error) {
	endpoint, err := printer.NormalizeURL(raw)
	if err != nil {
		return Config{}, &Error{Kind: Invalid, Field: "default_printer", Err: err}
	}
	return s.update(func(cfg *Config) {
		cfg.DefaultPrinter = &endpoint
	})
}

// SetFormat stores the default output format.
func (s *Store) SetFormat(value string) (Config, error) {
	format, err := output.ParseFormat(value)
	if err != nil {
		return Config{}, &Error{Kind: Invalid, Field: "format", Err: err}
	}
	return s.update(func(cfg *Config) {
		cfg.Format = format
	})
}

// SetTimeout stores the default request timeout in seconds.
func (s *Store) SetTimeout(seconds int) (Config, error) {
	if seconds <= 0 {
		return Config{}, &Error{Kind: Invalid, Field: "timeout", Err: fmt.Errorf("timeout must be a positive number of seconds, got %d", seconds)}
	}
	return s.update(func(cfg *Config) {
		cfg.Timeout = seconds
	})
}

// SetPrettyJSON stores whether JSON output is indented by default.
func (s *Store) SetPrettyJSON(pretty bool) (Config, error) {
	return s.update(func(cfg *Config) {
		cfg.PrettyJSON = pretty
	})
}

// Reset overwrites any existing file with Defaults.
func (s *Store) Reset() (Config, error) {
	cfg := Defaults()
	if err := s.write(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s *Store) update(apply func(*Config)) (Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return Config{}, err
	}
	apply(&cfg)
	if err := s.write(cfg); err != nil {
		return Config{}, err
	}
	return cfg.clone(), nil
}

func (s *Store) write(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &Error{Kind: IOFailure, Err: fmt.Errorf("marshal config: %w", err)}
	}
	data = append(data, '\n')
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		return &Error{Kind: IOFailure, Err: err}
	}
	return nil
}

// Validate enforces invariants the JSON types cannot express.
func Validate(cfg Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", cfg.Timeout)
	}
	if !cfg.Format.Valid() {
		return fmt.Errorf("format must be table or json, got %q", cfg.Format)
	}
	if cfg.DefaultPrinter != nil {
		if _, err := printer.NormalizeURL(*cfg.DefaultPrinter); err != nil {
			return fmt.Errorf("default_printer: %w", err)
		}
	}
	return nil
}
