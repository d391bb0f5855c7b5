package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	t.Setenv("CRAWLMAN_ENDPOINT_ROOT", "")
	t.Setenv("CRAWLMAN_ENDPOINT_CRAWL", "")
	t.Setenv("CRAWLMAN_MONITOR_PORT", "")
	t.Setenv("CRAWLMAN_MONITOR_TOKEN", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config file should be written")
}

func TestLoadFromMergesMissingKeys(t *testing.T) {
	t.Setenv("CRAWLMAN_ENDPOINT_ROOT", "")
	t.Setenv("CRAWLMAN_ENDPOINT_CRAWL", "")
	t.Setenv("CRAWLMAN_MONITOR_PORT", "")
	t.Setenv("CRAWLMAN_MONITOR_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[endpoints]\nroot = \"http://crawlman:9000\"\n\n[defaults]\nnum_browsers = 4\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://crawlman:9000", cfg.Endpoints.Root)
	assert.Equal(t, "http://crawlman:9000/crawl/", cfg.Endpoints.Crawl)
	assert.Equal(t, 4, cfg.Defaults.NumBrowsers)
	assert.Equal(t, 1, cfg.Defaults.NumTabs)
	assert.Equal(t, "chrome:73", cfg.Defaults.Browser)
	assert.Equal(t, 5, cfg.CLI.PollInterval)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("CRAWLMAN_ENDPOINT_ROOT", "http://override:8001/")
	t.Setenv("CRAWLMAN_ENDPOINT_CRAWL", "")
	t.Setenv("CRAWLMAN_MONITOR_PORT", "9999")
	t.Setenv("CRAWLMAN_MONITOR_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://override:8001/", cfg.Endpoints.Root)
	assert.Equal(t, "http://override:8001/crawl/", cfg.Endpoints.Crawl)
	assert.Equal(t, 9999, cfg.Monitor.Port)
}

func TestSaveToRoundTrip(t *testing.T) {
	t.Setenv("CRAWLMAN_ENDPOINT_ROOT", "")
	t.Setenv("CRAWLMAN_ENDPOINT_CRAWL", "")
	t.Setenv("CRAWLMAN_MONITOR_PORT", "")
	t.Setenv("CRAWLMAN_MONITOR_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Defaults.Headless = true
	cfg.CLI.PollInterval = 11
	require.NoError(t, SaveTo(path, cfg))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, loaded.Defaults.Headless)
	assert.Equal(t, 11, loaded.CLI.PollInterval)
}

func TestConfigPathEnv(t *testing.T) {
	t.Setenv("CRAWLMAN_CONFIG", "/etc/crawlman/config.toml")

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/crawlman/config.toml", path)
}
