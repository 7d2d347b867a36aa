package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/hnpulse/pkg/story"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "hackernews.csv", cfg.Input.Path)
	assert.Equal(t, story.Thresholds{QuietMax: 0.5, BalancedMax: 1.0}, cfg.Analysis.Thresholds())
	assert.Equal(t, 5, cfg.Analysis.TopStories)
	assert.Equal(t, 6, cfg.Analysis.TopDomains)
	assert.Equal(t, "api", cfg.Fetch.Source)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hnpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  path: custom.csv
  strict: true
analysis:
  quiet_max: 0.3
  balanced_max: 0.9
watch:
  interval: 5m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.csv", cfg.Input.Path)
	assert.True(t, cfg.Input.Strict)
	assert.Equal(t, 0.3, cfg.Analysis.QuietMax)
	assert.Equal(t, 0.9, cfg.Analysis.BalancedMax)
	assert.Equal(t, "5m0s", cfg.Watch.ParseInterval().String())

	// Unset sections keep defaults.
	assert.Equal(t, 5, cfg.Analysis.TopStories)
	assert.Equal(t, "./hnpulse.db", cfg.Database.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hackernews.csv", cfg.Input.Path)
}

func TestLoadInvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hnpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  quiet_max: 1.5
  balanced_max: 1.0
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balanced_max")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HNPULSE_INPUT", "/tmp/other.csv")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/T/B/x")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.csv", cfg.Input.Path)
	assert.True(t, cfg.Alerts.Slack.Enabled)
	assert.Equal(t, "https://hooks.slack.com/T/B/x", cfg.Alerts.Slack.WebhookURL)
}

func TestWatchIntervalFallback(t *testing.T) {
	w := WatchConfig{Interval: "bogus"}
	assert.Equal(t, "30m0s", w.ParseInterval().String())
}
