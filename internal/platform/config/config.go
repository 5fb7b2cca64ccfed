package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// StoreBackend selects where customer records are persisted.
type StoreBackend string

const (
	StoreBackendFile     StoreBackend = "file"
	StoreBackendPostgres StoreBackend = "postgres"
)

// MaxStoreNameLength is the widest store name that still fits the receipt title line.
const MaxStoreNameLength = 50

// Environment keys.
const (
	KeyPort           = "DOUGHMAIN_SERVER_PORT"
	KeyReadTimeout    = "DOUGHMAIN_SERVER_READ_TIMEOUT"
	KeyWriteTimeout   = "DOUGHMAIN_SERVER_WRITE_TIMEOUT"
	KeyIdleTimeout    = "DOUGHMAIN_SERVER_IDLE_TIMEOUT"
	KeyStoreBackend   = "DOUGHMAIN_STORE_BACKEND"
	KeyStorePath      = "DOUGHMAIN_STORE_PATH"
	KeyDatabaseURL    = "DOUGHMAIN_DATABASE_URL"
	KeyStoreName      = "DOUGHMAIN_RECEIPT_STORE_NAME"
	KeyLocale         = "DOUGHMAIN_DISPLAY_LOCALE"
	KeySessionReplay  = "DOUGHMAIN_SESSION_REPLAY_TTL"
	KeyLogLevel       = "LOG_LEVEL"
	defaultDotEnvPath = ".env"
)

// Config is the runtime configuration of the ordering terminal.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Receipt ReceiptConfig
	Display DisplayConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig picks the customer store backend and its location.
type StoreConfig struct {
	Backend     StoreBackend
	Path        string
	DatabaseURL string
}

type ReceiptConfig struct {
	StoreName string
}

// DisplayConfig controls how amounts are shown on staff screens.
type DisplayConfig struct {
	Locale language.Tag
}

// SessionConfig tunes the HTTP terminal session.
type SessionConfig struct {
	// ReplayTTL is how long a response stays replayable for a repeated Idempotency-Key.
	ReplayTTL time.Duration
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  2 * time.Minute,
		},
		Store:   StoreConfig{Backend: StoreBackendFile, Path: "customers/customers.json"},
		Receipt: ReceiptConfig{StoreName: "INFINITE DOUGHMAIN PIZZA"},
		Display: DisplayConfig{Locale: language.AmericanEnglish},
		Session: SessionConfig{ReplayTTL: 10 * time.Minute},
		Log:     LogConfig{Level: "info"},
	}
}

// ValidationError lists every configuration field that was rejected.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return "config: invalid values for " + strings.Join(e.fields, ", ")
}

// Fields returns the rejected field names in the order they were checked.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Option adjusts where Load reads values from.
type Option func(*sources)

// WithEnvFile reads overrides from the given dotenv file. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(s *sources) { s.dotEnvPath = path }
}

// WithEnvMap supplies values that win over both the process environment and the dotenv file.
func WithEnvMap(values map[string]string) Option {
	return func(s *sources) { s.explicit = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(s *sources) { s.system = false }
}

// sources resolves a key through explicit values, then the process environment, then .env.
type sources struct {
	dotEnvPath string
	explicit   map[string]string
	system     bool
	dotEnv     map[string]string
}

func (s *sources) lookup(key string) string {
	if v, ok := s.explicit[key]; ok && v != "" {
		return v
	}
	if s.system {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return s.dotEnv[key]
}

func (s *sources) text(key string, dst *string) {
	if v := strings.TrimSpace(s.lookup(key)); v != "" {
		*dst = v
	}
}

// duration keeps the default when the value does not parse.
func (s *sources) duration(key string, dst *time.Duration) {
	if d, err := time.ParseDuration(strings.TrimSpace(s.lookup(key))); err == nil {
		*dst = d
	}
}

// Load resolves the configuration. Precedence, lowest first: defaults, .env, process
// environment, WithEnvMap values.
func Load(opts ...Option) (Config, error) {
	src := &sources{dotEnvPath: defaultDotEnvPath, system: true}
	for _, opt := range opts {
		opt(src)
	}

	if src.dotEnvPath != "" {
		values, err := godotenv.Read(src.dotEnvPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", src.dotEnvPath, err)
		default:
			src.dotEnv = values
		}
	}

	cfg := defaults()
	var rejected []string
	reject := func(field string) { rejected = append(rejected, field) }

	if raw := strings.TrimSpace(src.lookup(KeyLocale)); raw != "" {
		tag, err := language.Parse(raw)
		if err != nil {
			reject("Display.Locale")
		} else {
			cfg.Display.Locale = tag
		}
	}

	src.text(KeyPort, &cfg.Server.Port)
	src.duration(KeyReadTimeout, &cfg.Server.ReadTimeout)
	src.duration(KeyWriteTimeout, &cfg.Server.WriteTimeout)
	src.duration(KeyIdleTimeout, &cfg.Server.IdleTimeout)
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		reject("Server.Port")
	}

	var backend string
	src.text(KeyStoreBackend, &backend)
	if backend != "" {
		cfg.Store.Backend = StoreBackend(strings.ToLower(backend))
	}
	src.text(KeyStorePath, &cfg.Store.Path)
	src.text(KeyDatabaseURL, &cfg.Store.DatabaseURL)
	switch cfg.Store.Backend {
	case StoreBackendFile:
	case StoreBackendPostgres:
		if cfg.Store.DatabaseURL == "" {
			reject("Store.DatabaseURL")
		}
	default:
		reject("Store.Backend")
	}

	src.text(KeyStoreName, &cfg.Receipt.StoreName)
	if utf8.RuneCountInString(cfg.Receipt.StoreName) > MaxStoreNameLength {
		reject("Receipt.StoreName")
	}

	src.duration(KeySessionReplay, &cfg.Session.ReplayTTL)
	if cfg.Session.ReplayTTL <= 0 {
		reject("Session.ReplayTTL")
	}

	src.text(KeyLogLevel, &cfg.Log.Level)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		reject("Log.Level")
	}

	if len(rejected) > 0 {
		return Config{}, &ValidationError{fields: rejected}
	}
	return cfg, nil
}
