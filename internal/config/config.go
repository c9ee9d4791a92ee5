// Package config reads settings for both binaries from the environment.
//
// Values come from real environment variables first. A .env file in the
// working directory (or the files passed to Load*) fills in whatever is not
// already set, so a deployment can always override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Log holds logger settings shared by the server and the client.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// SlogLevel parses Level. Unknown values fall back to Info.
func (l Log) SlogLevel() slog.Level {
	return parseLevel(l.Level)
}

// JSON reports whether logs should be written as JSON lines.
func (l Log) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}

// Diagnosis configures the model behind POST /api/analyze. With no APIKey
// the server answers with canned advice.
type Diagnosis struct {
	APIKey  string        `env:"DIAGNOSIS_API_KEY"`
	BaseURL string        `env:"DIAGNOSIS_BASE_URL" envDefault:"https://api.deepseek.com"`
	Model   string        `env:"DIAGNOSIS_MODEL" envDefault:"deepseek-chat"`
	Timeout time.Duration `env:"DIAGNOSIS_TIMEOUT" envDefault:"30s"`
}

// Server is the backend configuration.
type Server struct {
	Port      int           `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"data/symvora.db"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	Log       Log
	Diagnosis Diagnosis
}

// Client is the configuration of the symvora command.
type Client struct {
	ServerURL string        `env:"SYMVORA_SERVER_URL" envDefault:"http://localhost:8080"`
	TokenPath string        `env:"SYMVORA_TOKEN_PATH"`
	LogLevel  string        `env:"SYMVORA_LOG_LEVEL" envDefault:"warn"`
	Timeout   time.Duration `env:"SYMVORA_TIMEOUT" envDefault:"35s"`
}

// SlogLevel parses LogLevel. Unknown values fall back to Info.
func (c Client) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

// LoadServer reads the server configuration from the process environment
// after merging in the given .env files (default ".env").
func LoadServer(files ...string) (*Server, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}
	return ParseServer(nil)
}

// ParseServer parses the server configuration from environ, or from the
// process environment when environ is nil.
func ParseServer(environ map[string]string) (*Server, error) {
	cfg := &Server{}
	if err := env.Parse(cfg, options(environ)); err != nil {
		return nil, fmt.Errorf("config: parse server: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Server) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.Diagnosis.Timeout <= 0 {
		return fmt.Errorf("config: DIAGNOSIS_TIMEOUT must be positive, got %s", c.Diagnosis.Timeout)
	}
	return nil
}

// LoadClient reads the client configuration from the process environment
// after merging in the given .env files (default ".env").
func LoadClient(files ...string) (*Client, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}
	return ParseClient(nil)
}

// ParseClient parses the client configuration from environ, or from the
// process environment when environ is nil. An empty token path defaults
// to <user config dir>/symvora/token.
func ParseClient(environ map[string]string) (*Client, error) {
	cfg := &Client{}
	if err := env.Parse(cfg, options(environ)); err != nil {
		return nil, fmt.Errorf("config: parse client: %w", err)
	}
	if cfg.ServerURL == "" {
		return nil, errors.New("config: SYMVORA_SERVER_URL is empty")
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	if cfg.TokenPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.TokenPath = filepath.Join(dir, "symvora", "token")
	}
	return cfg, nil
}

func options(environ map[string]string) env.Options {
	if environ == nil {
		return env.Options{}
	}
	return env.Options{Environment: environ}
}

// loadDotEnv merges .env files into the process environment. Missing files
// are fine; malformed ones are not.
func loadDotEnv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
