package tracker

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	fetchpkg "github.com/hazyhaar/parcours/tracker/internal/fetch"
)

// Config configures the tracker service.
type Config struct {
	// Fetch settings
	Fetch fetchpkg.Config

	// Delay is the cooperative throttle between profile fetches during
	// a refresh run. It respects the target site's load; it is not a
	// lock.
	Delay time.Duration

	// ExcerptLen caps the markdown page excerpt stored in the fetch
	// log, in runes. Zero disables excerpt capture.
	ExcerptLen int
}

func (c *Config) defaults() {
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 4 * 1024 * 1024
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.ExcerptLen < 0 {
		c.ExcerptLen = 0
	}
}

// DefaultConfig returns the stock configuration: 15s fetch timeout,
// 4MB body cap, 5s inter-fetch delay, 600-rune excerpts.
func DefaultConfig() *Config {
	return &Config{
		Fetch: fetchpkg.Config{
			Timeout:  15 * time.Second,
			MaxBytes: 4 * 1024 * 1024,
		},
		Delay:      5 * time.Second,
		ExcerptLen: 600,
	}
}

// FileConfig is the YAML representation of the service configuration.
// Durations are expressed in milliseconds.
type FileConfig struct {
	DBPath  string `yaml:"db_path"`
	DelayMs int64  `yaml:"delay_ms"`
	Fetch   struct {
		TimeoutMs    int64  `yaml:"timeout_ms"`
		MaxBytes     int64  `yaml:"max_bytes"`
		UserAgent    string `yaml:"user_agent"`
		RetryDelayMs int64  `yaml:"retry_delay_ms"`
	} `yaml:"fetch"`
	ExcerptLen int `yaml:"excerpt_len"`
	Web        struct {
		Addr string `yaml:"addr"`
	} `yaml:"web"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if fc.DBPath == "" {
		fc.DBPath = "data/parcours.db"
	}
	if fc.Web.Addr == "" {
		fc.Web.Addr = ":8086"
	}
	return &fc, nil
}

// TrackerConfig converts the file representation into a service Config.
func (fc *FileConfig) TrackerConfig() *Config {
	cfg := DefaultConfig()
	if fc.DelayMs > 0 {
		cfg.Delay = time.Duration(fc.DelayMs) * time.Millisecond
	}
	if fc.Fetch.TimeoutMs > 0 {
		cfg.Fetch.Timeout = time.Duration(fc.Fetch.TimeoutMs) * time.Millisecond
	}
	if fc.Fetch.MaxBytes > 0 {
		cfg.Fetch.MaxBytes = fc.Fetch.MaxBytes
	}
	if fc.Fetch.UserAgent != "" {
		cfg.Fetch.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.RetryDelayMs > 0 {
		cfg.Fetch.RetryDelay = time.Duration(fc.Fetch.RetryDelayMs) * time.Millisecond
	}
	if fc.ExcerptLen > 0 {
		cfg.ExcerptLen = fc.ExcerptLen
	}
	return cfg
}
