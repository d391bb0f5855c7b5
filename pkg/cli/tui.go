package cli

import (
	"context"
	"fmt"
	"time"

	"crawl-mgmt-go/pkg/cli/tui"
	"crawl-mgmt-go/pkg/models"

	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI opens the interactive crawl manager and blocks until it exits.
func (a *App) RunTUI(ctx context.Context) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	changes, unsubscribe := a.store.Subscribe()
	defer unsubscribe()

	d := a.cfg.Defaults
	defaults := models.CreateCrawlRequest{
		CrawlType:   models.CrawlType(d.CrawlType),
		NumBrowsers: d.NumBrowsers,
		NumTabs:     d.NumTabs,
	}
	if d.CrawlType == string(models.CrawlTypeCustom) {
		defaults.CrawlDepth = models.Ptr(d.CrawlDepth)
	}

	model := tui.NewRootModel(tui.Deps{
		Ctx:             ctx,
		Actions:         svc,
		Store:           a.store,
		Changes:         changes,
		PollInterval:    time.Duration(a.cfg.CLI.PollInterval) * time.Second,
		ViewBrowsersURL: a.cfg.CLI.ViewBrowsersURL,
		CreateDefaults:  defaults,
		Logger:          a.logger.Named("tui"),
		Now:             a.now,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
