package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// Backend crawl-management API
	Endpoints struct {
		Root  string `toml:"root"`  // Base URL for /crawls
		Crawl string `toml:"crawl"` // Prefix for /crawl/{id}, trailing slash included
	} `toml:"endpoints"`

	// Values used when a create or start request leaves a field unset
	Defaults struct {
		CrawlType       string `toml:"crawl_type"`
		NumBrowsers     int    `toml:"num_browsers"`
		NumTabs         int    `toml:"num_tabs"`
		CrawlDepth      int    `toml:"crawl_depth"`
		Browser         string `toml:"browser"`
		BehaviorMaxTime int    `toml:"behavior_max_time"` // seconds
		Headless        bool   `toml:"headless"`
		Cache           string `toml:"cache"`
		Coll            string `toml:"coll"`
	} `toml:"defaults"`

	// CLI
	CLI struct {
		RequestTimeout  int    `toml:"request_timeout"` // seconds
		PollInterval    int    `toml:"poll_interval"`   // seconds
		ViewBrowsersURL string `toml:"view_browsers_url"`
		LogDir          string `toml:"log_dir"`
		LogDevelopment  bool   `toml:"log_development"`
	} `toml:"cli"`

	// Monitor HTTP server
	Monitor struct {
		Host  string `toml:"host"`
		Port  int    `toml:"port"`
		Token string `toml:"token"` // Bearer token for mutating routes; empty disables auth
	} `toml:"monitor"`
}

// DefaultConfig returns a config with default values
// Endpoint defaults match the crawl manager's docker-compose port
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Endpoints.Root = "http://localhost:8001"
	cfg.Endpoints.Crawl = "http://localhost:8001/crawl/"
	cfg.Defaults.CrawlType = "single-page"
	cfg.Defaults.NumBrowsers = 2
	cfg.Defaults.NumTabs = 1
	cfg.Defaults.CrawlDepth = -1
	cfg.Defaults.Browser = "chrome:73"
	cfg.Defaults.BehaviorMaxTime = 60
	cfg.Defaults.Headless = false
	cfg.Defaults.Cache = "always"
	cfg.Defaults.Coll = "live"
	cfg.CLI.RequestTimeout = 30
	cfg.CLI.PollInterval = 5
	cfg.CLI.ViewBrowsersURL = "http://localhost:9020/attach/"
	cfg.CLI.LogDir = "tmp"
	cfg.Monitor.Host = "0.0.0.0"
	cfg.Monitor.Port = 9102
	return cfg
}

// ConfigPath returns the path to the config file.
// CRAWLMAN_CONFIG overrides the default location.
func ConfigPath() (string, error) {
	if p := os.Getenv("CRAWLMAN_CONFIG"); p != "" {
		return expandHome(p)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "crawl-mgmt")
	return filepath.Join(configDir, "config.toml"), nil
}

func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return strings.Replace(p, "~", homeDir, 1), nil
}

// Load reads configuration from ~/.config/crawl-mgmt/config.toml
// Creates the file with defaults if it doesn't exist
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from path, creating it with defaults when missing.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnv(cfg)

		if err := SaveTo(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeDefaults(&cfg, DefaultConfig())
	applyEnv(&cfg)

	return &cfg, nil
}

// mergeDefaults fills any missing values from def
func mergeDefaults(cfg, def *Config) {
	if cfg.Endpoints.Root == "" {
		cfg.Endpoints.Root = def.Endpoints.Root
	}
	if cfg.Endpoints.Crawl == "" {
		cfg.Endpoints.Crawl = strings.TrimSuffix(cfg.Endpoints.Root, "/") + "/crawl/"
	}
	if cfg.Defaults.CrawlType == "" {
		cfg.Defaults.CrawlType = def.Defaults.CrawlType
	}
	if cfg.Defaults.NumBrowsers == 0 {
		cfg.Defaults.NumBrowsers = def.Defaults.NumBrowsers
	}
	if cfg.Defaults.NumTabs == 0 {
		cfg.Defaults.NumTabs = def.Defaults.NumTabs
	}
	if cfg.Defaults.Browser == "" {
		cfg.Defaults.Browser = def.Defaults.Browser
	}
	if cfg.Defaults.BehaviorMaxTime == 0 {
		cfg.Defaults.BehaviorMaxTime = def.Defaults.BehaviorMaxTime
	}
	if cfg.Defaults.Cache == "" {
		cfg.Defaults.Cache = def.Defaults.Cache
	}
	if cfg.Defaults.Coll == "" {
		cfg.Defaults.Coll = def.Defaults.Coll
	}
	if cfg.CLI.RequestTimeout == 0 {
		cfg.CLI.RequestTimeout = def.CLI.RequestTimeout
	}
	if cfg.CLI.PollInterval == 0 {
		cfg.CLI.PollInterval = def.CLI.PollInterval
	}
	if cfg.CLI.ViewBrowsersURL == "" {
		cfg.CLI.ViewBrowsersURL = def.CLI.ViewBrowsersURL
	}
	if cfg.CLI.LogDir == "" {
		cfg.CLI.LogDir = def.CLI.LogDir
	}
	if cfg.Monitor.Host == "" {
		cfg.Monitor.Host = def.Monitor.Host
	}
	if cfg.Monitor.Port == 0 {
		cfg.Monitor.Port = def.Monitor.Port
	}
}

// applyEnv overrides endpoints from the environment (useful for Docker)
func applyEnv(cfg *Config) {
	if root := os.Getenv("CRAWLMAN_ENDPOINT_ROOT"); root != "" {
		cfg.Endpoints.Root = root
		if os.Getenv("CRAWLMAN_ENDPOINT_CRAWL") == "" {
			cfg.Endpoints.Crawl = strings.TrimSuffix(root, "/") + "/crawl/"
		}
	}
	if crawl := os.Getenv("CRAWLMAN_ENDPOINT_CRAWL"); crawl != "" {
		cfg.Endpoints.Crawl = crawl
	}
	if token := os.Getenv("CRAWLMAN_MONITOR_TOKEN"); token != "" {
		cfg.Monitor.Token = token
	}
	if port := os.Getenv("CRAWLMAN_MONITOR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Monitor.Port = p
		}
	}
}

// Save writes the configuration to the config file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to configPath
func SaveTo(configPath string, cfg *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
