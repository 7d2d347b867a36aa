package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/hnpulse/pkg/story"
)

// Config is the root configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Report   ReportConfig   `yaml:"report"`
	Database DatabaseConfig `yaml:"database"`
	Watch    WatchConfig    `yaml:"watch"`
	Server   ServerConfig   `yaml:"server"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig locates and controls the dataset file.
type InputConfig struct {
	Path string `yaml:"path"`
	// Strict fails the load on the first malformed row instead of skipping.
	Strict bool `yaml:"strict"`
}

// AnalysisConfig holds the engagement thresholds and aggregate sizes.
type AnalysisConfig struct {
	QuietMax    float64 `yaml:"quiet_max"`
	BalancedMax float64 `yaml:"balanced_max"`
	TopStories  int     `yaml:"top_stories"`
	TopDomains  int     `yaml:"top_domains"`
	TitleWidth  int     `yaml:"title_width"`
}

// Thresholds returns the configured engagement cut points.
func (a AnalysisConfig) Thresholds() story.Thresholds {
	return story.Thresholds{QuietMax: a.QuietMax, BalancedMax: a.BalancedMax}
}

// FetchConfig configures the live front-page fetcher.
type FetchConfig struct {
	Source  string `yaml:"source"` // "api" or "feed"
	Limit   int    `yaml:"limit"`
	FeedURL string `yaml:"feed_url"`
}

// ReportConfig configures the chart dashboard output.
type ReportConfig struct {
	Output string `yaml:"output"`
}

// DatabaseConfig configures SQLite storage of run history.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig configures daemon mode.
type WatchConfig struct {
	Interval string `yaml:"interval"`
}

// ParseInterval returns the watch interval as time.Duration.
func (w WatchConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// LogConfig configures logging.
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Input: InputConfig{Path: "hackernews.csv"},
		Analysis: AnalysisConfig{
			QuietMax:    0.5,
			BalancedMax: 1.0,
			TopStories:  5,
			TopDomains:  6,
			TitleWidth:  40,
		},
		Fetch: FetchConfig{
			Source:  "api",
			Limit:   30,
			FeedURL: "https://hnrss.org/frontpage",
		},
		Report:   ReportConfig{Output: "hnpulse.xlsx"},
		Database: DatabaseConfig{Path: "./hnpulse.db"},
		Watch:    WatchConfig{Interval: "30m"},
		Server:   ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Analysis.Thresholds().Validate(); err != nil {
		return err
	}
	if c.Analysis.TopStories <= 0 {
		return fmt.Errorf("top_stories must be positive, got %d", c.Analysis.TopStories)
	}
	if c.Analysis.TopDomains <= 0 {
		return fmt.Errorf("top_domains must be positive, got %d", c.Analysis.TopDomains)
	}
	if c.Fetch.Source != "api" && c.Fetch.Source != "feed" {
		return fmt.Errorf("fetch source must be api or feed, got %q", c.Fetch.Source)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HNPULSE_INPUT"); v != "" {
		cfg.Input.Path = v
	}
	if v := os.Getenv("HNPULSE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
