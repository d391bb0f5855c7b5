package cli

import (
	"fmt"
	"strconv"
	"strings"

	"crawl-mgmt-go/pkg/config"
	"crawl-mgmt-go/pkg/models"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	a.printf("%s\n", data)
	return nil
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "endpoints.root=http://crawlman:8001")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	keyPath := strings.Split(parts[0], ".")
	value := parts[1]

	if len(keyPath) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}

	section := keyPath[0]
	key := keyPath[1]

	if err := a.setValue(section, key, value); err != nil {
		return err
	}

	if a.configPath != "" {
		return config.SaveTo(a.configPath, a.cfg)
	}
	return config.Save(a.cfg)
}

func (a *App) setValue(section, key, value string) error {
	cfg := a.cfg
	switch section {
	case "endpoints":
		switch key {
		case "root":
			cfg.Endpoints.Root = value
		case "crawl":
			cfg.Endpoints.Crawl = value
		default:
			return fmt.Errorf("unknown endpoints key: %s", key)
		}
	case "defaults":
		switch key {
		case "crawl_type":
			if !models.CrawlType(value).Valid() {
				return fmt.Errorf("invalid crawl_type value: %s", value)
			}
			cfg.Defaults.CrawlType = value
		case "num_browsers":
			return setPositive(&cfg.Defaults.NumBrowsers, key, value)
		case "num_tabs":
			return setPositive(&cfg.Defaults.NumTabs, key, value)
		case "crawl_depth":
			n, err := strconv.Atoi(value)
			if err != nil || n < -1 {
				return fmt.Errorf("invalid crawl_depth value: %s", value)
			}
			cfg.Defaults.CrawlDepth = n
		case "browser":
			cfg.Defaults.Browser = value
		case "behavior_max_time":
			return setPositive(&cfg.Defaults.BehaviorMaxTime, key, value)
		case "headless":
			return setBool(&cfg.Defaults.Headless, key, value)
		case "cache":
			switch value {
			case "always", "never", "default":
				cfg.Defaults.Cache = value
			default:
				return fmt.Errorf("invalid cache value: %s", value)
			}
		case "coll":
			cfg.Defaults.Coll = value
		default:
			return fmt.Errorf("unknown defaults key: %s", key)
		}
	case "cli":
		switch key {
		case "request_timeout":
			return setPositive(&cfg.CLI.RequestTimeout, key, value)
		case "poll_interval":
			return setPositive(&cfg.CLI.PollInterval, key, value)
		case "view_browsers_url":
			cfg.CLI.ViewBrowsersURL = value
		case "log_dir":
			cfg.CLI.LogDir = value
		case "log_development":
			return setBool(&cfg.CLI.LogDevelopment, key, value)
		default:
			return fmt.Errorf("unknown cli key: %s", key)
		}
	case "monitor":
		switch key {
		case "host":
			cfg.Monitor.Host = value
		case "port":
			return setPositive(&cfg.Monitor.Port, key, value)
		case "token":
			cfg.Monitor.Token = value
		default:
			return fmt.Errorf("unknown monitor key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
	return nil
}

func setPositive(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid %s value: %s", key, value)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s value: %s", key, value)
	}
	*dst = b
	return nil
}
