package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where `postedit init` writes its config.
const DefaultPath = "postedit.yaml"

// Config is the on-disk postedit.yaml. Zero values are filled from Default().
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Editor  EditorConfig  `yaml:"editor"`
	Routes  RoutesConfig  `yaml:"routes"`
	Logging LoggingConfig `yaml:"logging"`
	Mock    MockConfig    `yaml:"mock"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // 0 disables the client timeout
}

type SessionConfig struct {
	File string `yaml:"file"`
}

type EditorConfig struct {
	MinContentLength int           `yaml:"min_content_length"`
	FocusDelay       time.Duration `yaml:"focus_delay"`
	RedirectDelay    time.Duration `yaml:"redirect_delay"`
}

type RoutesConfig struct {
	SignIn string `yaml:"sign_in"`
	Login  string `yaml:"login"`
	Home   string `yaml:"home"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MockConfig drives `postedit mock-api`.
type MockConfig struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"` // empty keeps posts in memory
	Token   string `yaml:"token"`
}

// Default returns the built-in configuration.
func Default() *Config {
	state := StateDir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000/api",
			Timeout: 20 * time.Second,
		},
		Session: SessionConfig{File: filepath.Join(state, "session.json")},
		Editor: EditorConfig{
			MinContentLength: 20,
			FocusDelay:       100 * time.Millisecond,
			RedirectDelay:    2 * time.Second,
		},
		Routes: RoutesConfig{SignIn: "/signin", Login: "/login", Home: "/posts"},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(state, "postedit.log"),
		},
		Mock: MockConfig{Port: 5000, Token: "dev-token"},
	}
}

// StateDir is the per-user directory for session and log files.
func StateDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, "postedit")
	}
	return ".postedit"
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	// keys absent from the file keep their defaults; present ones win, zero included
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overlays POSTEDIT_* variables. lookup is os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("POSTEDIT_API_URL"); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup("POSTEDIT_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POSTEDIT_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v, ok := lookup("POSTEDIT_SESSION_FILE"); ok && v != "" {
		c.Session.File = v
	}
	if v, ok := lookup("POSTEDIT_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("POSTEDIT_LOG_FILE"); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := lookup("POSTEDIT_REDIRECT_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POSTEDIT_REDIRECT_DELAY: %w", err)
		}
		c.Editor.RedirectDelay = d
	}
	if v, ok := lookup("POSTEDIT_MOCK_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POSTEDIT_MOCK_PORT: %w", err)
		}
		c.Mock.Port = p
	}
	if v, ok := lookup("POSTEDIT_MOCK_TOKEN"); ok && v != "" {
		c.Mock.Token = v
	}
	return c.Validate()
}

// Validate rejects settings the editor cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("config: api.timeout must not be negative")
	}
	if c.Editor.MinContentLength < 1 {
		return errors.New("config: editor.min_content_length must be positive")
	}
	for name, p := range map[string]string{"sign_in": c.Routes.SignIn, "login": c.Routes.Login, "home": c.Routes.Home} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("config: routes.%s must start with '/': %q", name, p)
		}
	}
	return nil
}

// Save writes c as YAML, creating parent directories.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
