package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source is an RSS or Atom feed whose headlines are quoted to the model.
type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type AIConfig struct {
	Provider          string `yaml:"provider"` // "gemini", "claude" or "openai"
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty"`
	Streaming         *bool  `yaml:"streaming,omitempty"`
}

type FetchConfig struct {
	PageSize  int `yaml:"page_size,omitempty"`
	BatchSize int `yaml:"batch_size,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	DefaultTab   string      `yaml:"default_tab,omitempty"`
	MaxHeadlines int         `yaml:"max_headlines,omitempty"`
	AI           *AIConfig   `yaml:"ai,omitempty"`
	Fetch        FetchConfig `yaml:"fetch"`
	Grounding    []Source    `yaml:"grounding"`
	Log          LogConfig   `yaml:"log"`
}

// AIEnabled returns true if AI is configured with a usable API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key: config first, then TECHRADAR_API_KEY,
// then API_KEY.
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	if k := os.Getenv("TECHRADAR_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("API_KEY")
}

// StreamingEnabled defaults to true when unset.
func (c *Config) StreamingEnabled() bool {
	if c.AI == nil || c.AI.Streaming == nil {
		return true
	}
	return *c.AI.Streaming
}

// PageSize is the number of articles that make a full page, default 10.
func (c *Config) PageSize() int {
	if c.Fetch.PageSize <= 0 {
		return 10
	}
	return c.Fetch.PageSize
}

// BatchSize is the number of articles requested per model round, default 4.
func (c *Config) BatchSize() int {
	if c.Fetch.BatchSize <= 0 {
		return 4
	}
	return c.Fetch.BatchSize
}

func (c *Config) GetMaxHeadlines() int {
	if c.MaxHeadlines <= 0 {
		return 30
	}
	return c.MaxHeadlines
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Grounding {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

// LogPath returns the configured log file, or the XDG state default.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(xdg.StateHome, "techradar", "techradar.log")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "techradar", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults work without a file.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Keys missing from the file keep their embedded defaults.
	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.AI != nil {
		switch cfg.AI.Provider {
		case "", "gemini", "claude", "openai":
		default:
			return fmt.Errorf("ai: unknown provider %q (valid: gemini, claude, openai)", cfg.AI.Provider)
		}
		if cfg.AI.RequestsPerMinute < 0 {
			return fmt.Errorf("ai: requests_per_minute must not be negative")
		}
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Grounding {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	return nil
}
