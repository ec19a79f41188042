// internal/config/config.go

// Package config resolves settings for the deckforge client and the forged
// stand-in service. Precedence, lowest first: built-in defaults, an optional
// YAML file, then environment variables (a .env file is loaded by main).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Client holds the deckforge CLI settings.
type Client struct {
	APIURL         string
	RequestTimeout time.Duration
	HandoffDelay   time.Duration
	// StallTimeout of zero disables the stream watchdog.
	StallTimeout time.Duration
	DownloadDir  string
	LogLevel     string
	LogFile      string
}

// Server holds the forged settings.
type Server struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	UseScryfall bool
	StepDelay   time.Duration
	LogLevel    string
}

// DefaultClient returns the client defaults.
func DefaultClient() Client {
	return Client{
		APIURL:         "http://localhost:8000",
		RequestTimeout: 120 * time.Second,
		HandoffDelay:   time.Second,
		StallTimeout:   10 * time.Minute,
		DownloadDir:    ".",
		LogLevel:       "info",
	}
}

// DefaultServer returns the stand-in service defaults.
func DefaultServer() Server {
	return Server{
		Port:      "8000",
		StepDelay: 250 * time.Millisecond,
		LogLevel:  "debug",
	}
}

// fileConfig is the YAML layout. Durations are Go duration strings.
type fileConfig struct {
	Client struct {
		APIURL         string `yaml:"api_url"`
		RequestTimeout string `yaml:"request_timeout"`
		HandoffDelay   string `yaml:"handoff_delay"`
		StallTimeout   string `yaml:"stall_timeout"`
		DownloadDir    string `yaml:"download_dir"`
		LogLevel       string `yaml:"log_level"`
		LogFile        string `yaml:"log_file"`
	} `yaml:"client"`
	Server struct {
		Port        string `yaml:"port"`
		DatabaseURL string `yaml:"database_url"`
		RedisAddr   string `yaml:"redis_addr"`
		RedisDB     *int   `yaml:"redis_db"`
		Scryfall    *bool  `yaml:"scryfall"`
		StepDelay   string `yaml:"step_delay"`
		LogLevel    string `yaml:"log_level"`
	} `yaml:"server"`
}

func readFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return fc, nil
}

// LoadClient resolves the client settings. path may be empty, in which case
// DECKFORGE_CONFIG is consulted.
func LoadClient(path string) (Client, error) {
	if path == "" {
		path = os.Getenv("DECKFORGE_CONFIG")
	}
	cfg := DefaultClient()
	fc, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	f := fc.Client
	setString(&cfg.APIURL, f.APIURL)
	setString(&cfg.DownloadDir, f.DownloadDir)
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.LogFile, f.LogFile)
	for _, d := range []struct {
		dst *time.Duration
		raw string
		key string
	}{
		{&cfg.RequestTimeout, f.RequestTimeout, "request_timeout"},
		{&cfg.HandoffDelay, f.HandoffDelay, "handoff_delay"},
		{&cfg.StallTimeout, f.StallTimeout, "stall_timeout"},
	} {
		if err := setDuration(d.dst, d.raw, d.key); err != nil {
			return cfg, err
		}
	}

	cfg.APIURL = strings.TrimRight(getEnv("DECKFORGE_API_URL", cfg.APIURL), "/")
	cfg.RequestTimeout = getEnvDuration("DECKFORGE_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.HandoffDelay = getEnvDuration("DECKFORGE_HANDOFF_DELAY", cfg.HandoffDelay)
	cfg.StallTimeout = getEnvDuration("DECKFORGE_STALL_TIMEOUT", cfg.StallTimeout)
	cfg.DownloadDir = getEnv("DECKFORGE_DOWNLOAD_DIR", cfg.DownloadDir)
	cfg.LogLevel = getEnv("DECKFORGE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("DECKFORGE_LOG_FILE", cfg.LogFile)
	return cfg, nil
}

// LoadServer resolves the stand-in service settings. path may be empty, in
// which case FORGED_CONFIG is consulted.
func LoadServer(path string) (Server, error) {
	if path == "" {
		path = os.Getenv("FORGED_CONFIG")
	}
	cfg := DefaultServer()
	fc, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	f := fc.Server
	setString(&cfg.Port, f.Port)
	setString(&cfg.DatabaseURL, f.DatabaseURL)
	setString(&cfg.RedisAddr, f.RedisAddr)
	setString(&cfg.LogLevel, f.LogLevel)
	if f.RedisDB != nil {
		cfg.RedisDB = *f.RedisDB
	}
	if f.Scryfall != nil {
		cfg.UseScryfall = *f.Scryfall
	}
	if err := setDuration(&cfg.StepDelay, f.StepDelay, "step_delay"); err != nil {
		return cfg, err
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.UseScryfall = getEnvBool("FORGED_SCRYFALL", cfg.UseScryfall)
	cfg.StepDelay = getEnvDuration("FORGED_STEP_DELAY", cfg.StepDelay)
	cfg.LogLevel = getEnv("FORGED_LOG_LEVEL", cfg.LogLevel)
	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, raw, key string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config %s: %w", key, err)
	}
	*dst = d
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else returns def.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvBool parses an environment variable with strconv.ParseBool, else returns def.
func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration accepts a Go duration ("90s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
