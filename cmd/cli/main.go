package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crawl-mgmt-go/pkg/cli"
	"crawl-mgmt-go/pkg/cli/logger"
	"crawl-mgmt-go/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := cli.NewRootCmd(func(configPath string) (*cli.App, error) {
		if configPath == "" {
			p, err := config.ConfigPath()
			if err != nil {
				return nil, err
			}
			configPath = p
		}

		cfg, err := config.LoadFrom(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		zl, err := logger.New(logger.Options{
			Dir:         cfg.CLI.LogDir,
			Name:        "cli",
			Development: cfg.CLI.LogDevelopment,
		})
		if err != nil {
			return nil, err
		}

		return cli.NewApp(cfg, cli.WithConfigPath(configPath), cli.WithLogger(zl)), nil
	})
	root.SetContext(ctx)

	code := cli.Execute(root)
	stop()
	os.Exit(code)
}
