// Package config loads client and server settings from TOML files.
//
// A missing file is not an error: every field has a default, and empty
// values in the file fall back to those defaults as well. Paths starting
// with "~" are expanded to the home directory.
//
// Example client config.toml:
//
//	server = "https://ground.example.com"
//	token = "eyJhbGciOi..."
//	data_dir = "~/.local/share/ground"
//	log_level = "debug"
//
//	[work]
//	min_backoff = "10s"
//	max_backoff = "1h"
//	max_attempts = 10
//
//	[basemap]
//	concurrency = 4
//	retries = 3
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultClientConfigPath = "~/.config/ground/client.toml"
	DefaultServerConfigPath = "~/.config/ground/server.toml"

	defaultServerURL = "http://localhost:8080"
	defaultDataDir   = "~/.local/share/ground"
	defaultLogLevel  = "info"
	defaultTimeout   = 30 * time.Second

	defaultListenAddr   = ":8080"
	defaultServerDB     = "ground-server.db"
	defaultTokenTTL     = 30 * 24 * time.Hour
	defaultRateLimit    = 600
	defaultRateWindow   = time.Minute
	defaultMinBackoff   = 10 * time.Second
	defaultMaxBackoff   = time.Hour
	defaultPollInterval = 30 * time.Second
	defaultMaxAttempts  = 10

	defaultTileConcurrency = 4
	defaultTileRetries     = 3
	defaultTileRetryDelay  = time.Second
	defaultTileTimeout     = 10 * time.Minute
)

// Duration is a time.Duration written as a string ("1m30s") in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Work configures the background work scheduler.
type Work struct {
	MinBackoff   Duration `toml:"min_backoff"`
	MaxBackoff   Duration `toml:"max_backoff"`
	PollInterval Duration `toml:"poll_interval"`
	MaxAttempts  int      `toml:"max_attempts"`
}

// Basemap configures offline tile downloads.
type Basemap struct {
	RetryDelay  Duration `toml:"retry_delay"`
	Timeout     Duration `toml:"timeout"`
	Concurrency int      `toml:"concurrency"`
	Retries     uint64   `toml:"retries"`
}

// Client holds the settings of the field client.
type Client struct {
	Server   string   `toml:"server"`
	Token    string   `toml:"token"`
	DataDir  string   `toml:"data_dir"`
	LogLevel string   `toml:"log_level"`
	Basemap  Basemap  `toml:"basemap"`
	Work     Work     `toml:"work"`
	Timeout  Duration `toml:"timeout"` // таймаут запросов к серверу
}

// DefaultClient returns the client settings used when no file exists.
func DefaultClient() Client {
	return Client{
		Server:   defaultServerURL,
		DataDir:  mustExpand(defaultDataDir),
		LogLevel: defaultLogLevel,
		Timeout:  Duration(defaultTimeout),
		Work: Work{
			MinBackoff:   Duration(defaultMinBackoff),
			MaxBackoff:   Duration(defaultMaxBackoff),
			PollInterval: Duration(defaultPollInterval),
			MaxAttempts:  defaultMaxAttempts,
		},
		Basemap: Basemap{
			Concurrency: defaultTileConcurrency,
			Retries:     defaultTileRetries,
			RetryDelay:  Duration(defaultTileRetryDelay),
			Timeout:     Duration(defaultTileTimeout),
		},
	}
}

// DatabasePath is the local SQLite store.
func (c Client) DatabasePath() string {
	return filepath.Join(c.DataDir, "ground.db")
}

// StatePath is the BoltDB file with sync metadata and background jobs.
func (c Client) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// BasemapDir holds downloaded tile archives.
func (c Client) BasemapDir() string {
	return filepath.Join(c.DataDir, "basemaps")
}

// Server holds the settings of the reference remote store.
type Server struct {
	ListenAddr   string   `toml:"listen_addr"`
	DatabasePath string   `toml:"database_path"`
	JWTSecret    string   `toml:"jwt_secret"`
	LogLevel     string   `toml:"log_level"`
	TokenTTL     Duration `toml:"token_ttl"`
	RateWindow   Duration `toml:"rate_window"`
	RateLimit    int      `toml:"rate_limit"` // запросов на IP за окно
}

// DefaultServer returns the server settings used when no file exists.
func DefaultServer() Server {
	return Server{
		ListenAddr:   defaultListenAddr,
		DatabasePath: defaultServerDB,
		LogLevel:     defaultLogLevel,
		TokenTTL:     Duration(defaultTokenTTL),
		RateLimit:    defaultRateLimit,
		RateWindow:   Duration(defaultRateWindow),
	}
}

// LoadClient reads client settings from path, or from the default location
// when path is empty.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	var raw Client
	found, err := decode(path, DefaultClientConfigPath, &raw)
	if err != nil || !found {
		return cfg, err
	}

	cfg.Server = pick(raw.Server, cfg.Server)
	cfg.Token = strings.TrimSpace(raw.Token)
	cfg.LogLevel = pick(raw.LogLevel, cfg.LogLevel)
	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		if cfg.DataDir, err = ExpandPath(dir); err != nil {
			return Client{}, err
		}
	}
	pickDuration(&cfg.Timeout, raw.Timeout)

	pickDuration(&cfg.Work.MinBackoff, raw.Work.MinBackoff)
	pickDuration(&cfg.Work.MaxBackoff, raw.Work.MaxBackoff)
	pickDuration(&cfg.Work.PollInterval, raw.Work.PollInterval)
	if raw.Work.MaxAttempts > 0 {
		cfg.Work.MaxAttempts = raw.Work.MaxAttempts
	}

	pickDuration(&cfg.Basemap.RetryDelay, raw.Basemap.RetryDelay)
	pickDuration(&cfg.Basemap.Timeout, raw.Basemap.Timeout)
	if raw.Basemap.Concurrency > 0 {
		cfg.Basemap.Concurrency = raw.Basemap.Concurrency
	}
	if raw.Basemap.Retries > 0 {
		cfg.Basemap.Retries = raw.Basemap.Retries
	}

	return cfg, cfg.Validate()
}

// Validate checks values that have no usable fallback.
func (c Client) Validate() error {
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("server must be an http(s) URL, got %q", c.Server)
	}
	if c.Work.MinBackoff > c.Work.MaxBackoff {
		return fmt.Errorf("work.min_backoff %s exceeds work.max_backoff %s",
			time.Duration(c.Work.MinBackoff), time.Duration(c.Work.MaxBackoff))
	}
	return nil
}

// LoadServer reads server settings from path, or from the default location
// when path is empty.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()
	var raw Server
	found, err := decode(path, DefaultServerConfigPath, &raw)
	if err != nil || !found {
		return cfg, err
	}

	cfg.ListenAddr = pick(raw.ListenAddr, cfg.ListenAddr)
	cfg.LogLevel = pick(raw.LogLevel, cfg.LogLevel)
	cfg.JWTSecret = strings.TrimSpace(raw.JWTSecret)
	if db := strings.TrimSpace(raw.DatabasePath); db != "" {
		if cfg.DatabasePath, err = ExpandPath(db); err != nil {
			return Server{}, err
		}
	}
	pickDuration(&cfg.TokenTTL, raw.TokenTTL)
	pickDuration(&cfg.RateWindow, raw.RateWindow)
	if raw.RateLimit > 0 {
		cfg.RateLimit = raw.RateLimit
	}
	return cfg, nil
}

// decode reads the TOML file into v. It reports false when the file does not exist.
func decode(path, fallback string, v any) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = fallback
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return true, nil
}

func pick(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func pickDuration(dst *Duration, value Duration) {
	if value > 0 {
		*dst = value
	}
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
