package cli

import (
	"context"
	"strings"

	"crawl-mgmt-go/pkg/cli/format"
	"crawl-mgmt-go/pkg/crawlspec"
	"crawl-mgmt-go/pkg/models"
)

// ListCrawls prints every crawl, newest first.
func (a *App) ListCrawls(ctx context.Context) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	if err := resultErr(svc.ListCrawls(ctx)); err != nil {
		return err
	}

	crawls := a.store.List()
	if a.quiet {
		a.printf("%s", format.FormatIDs(crawls))
		return nil
	}
	a.printf("%s", format.FormatTableOutput(crawls, a.now()))
	return nil
}

// CreateOptions controls what happens after each crawl is created.
type CreateOptions struct {
	Watch bool
}

// CreateCrawls submits each request in order and reports the new ids.
func (a *App) CreateCrawls(ctx context.Context, reqs []models.CreateCrawlRequest, opts CreateOptions) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	for _, req := range reqs {
		res := svc.CreateCrawl(ctx, req)
		if err := resultErr(res); err != nil {
			return err
		}

		id := res.CreatedID()
		crawl, _ := a.store.Get(id)
		started := req.Start == nil || *req.Start

		if a.quiet {
			a.printf("%s\n", id)
		} else {
			a.printf("%s", format.FormatCreated(crawl, started))
		}

		if opts.Watch {
			switch {
			case !started:
				a.info("Can't watch, crawl not started\n")
			case crawl.Headless:
				a.info("Can't watch, crawl is running in headless mode\n")
			default:
				a.printBrowsers(crawl)
			}
		}
	}
	return nil
}

// Info prints each crawl as YAML, optionally with its URL lists.
func (a *App) Info(ctx context.Context, ids []string, urls bool) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := resultErr(svc.GetCrawl(ctx, id)); err != nil {
			return err
		}
		if urls {
			if err := resultErr(svc.GetCrawlURLs(ctx, id)); err != nil {
				return err
			}
		}

		crawl, _ := a.store.Get(id)
		data, err := crawlspec.Marshal(crawl)
		if err != nil {
			return err
		}
		a.printf("%s\n", data)
	}
	return nil
}

// StartCrawls starts each crawl.
func (a *App) StartCrawls(ctx context.Context, ids []string, req models.StartCrawlRequest) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := resultErr(svc.StartCrawl(ctx, id, req)); err != nil {
			return err
		}
		if a.quiet {
			a.printf("%s\n", id)
		} else {
			a.printf("Started Crawl: %s\n", id)
		}
	}
	return nil
}

// StopCrawls stops each crawl, removing it afterwards when remove is set.
func (a *App) StopCrawls(ctx context.Context, ids []string, remove bool) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := resultErr(svc.StopCrawl(ctx, id)); err != nil {
			return err
		}
		if a.quiet {
			a.printf("%s\n", id)
		} else {
			a.printf("Stopped Crawl: %s\n", id)
		}

		if remove {
			if err := a.removeOne(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveCrawls deletes each crawl.
func (a *App) RemoveCrawls(ctx context.Context, ids []string) error {
	if _, err := a.getService(); err != nil {
		return err
	}
	for _, id := range ids {
		if err := a.removeOne(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) removeOne(ctx context.Context, id string) error {
	if err := resultErr(a.service.RemoveCrawl(ctx, id)); err != nil {
		return err
	}
	if a.quiet {
		a.printf("%s\n", id)
	} else {
		a.printf("Removed Crawl: %s\n", id)
	}
	return nil
}

// RemoveAll deletes every crawl the backend knows about.
func (a *App) RemoveAll(ctx context.Context) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	removed, err := svc.RemoveAll(ctx)
	for _, id := range removed {
		a.info("Removed Crawl: %s\n", id)
	}
	if err != nil {
		return err
	}
	a.info("Removed %d crawl(s)\n", len(removed))
	return nil
}

// IsDone prints whether a crawl has finished.
func (a *App) IsDone(ctx context.Context, id string) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	done, res := svc.IsDone(ctx, id)
	if err := resultErr(res); err != nil {
		return err
	}
	if a.quiet {
		a.printf("%t\n", done)
		return nil
	}
	if done {
		a.printf("Crawl %s is done\n", id)
	} else {
		a.printf("Crawl %s is not done\n", id)
	}
	return nil
}

// Watch prints the browser attach URLs of running, headed crawls.
func (a *App) Watch(ctx context.Context, ids []string) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := resultErr(svc.GetCrawl(ctx, id)); err != nil {
			return err
		}
		crawl, _ := a.store.Get(id)

		switch {
		case crawl.Headless:
			a.info("Can not watch, crawl is running in headless mode: %s\n", id)
		case crawl.Status != models.StatusRunning:
			a.info("Crawl not running: %s\n", id)
		case len(crawl.Browsers) == 0:
			a.info("No Browsers: %s\n", id)
		default:
			a.printBrowsers(crawl)
		}
	}
	return nil
}

func (a *App) printBrowsers(crawl models.Crawl) {
	done := make(map[string]bool, len(crawl.BrowsersDone))
	for _, b := range crawl.BrowsersDone {
		done[b] = true
	}

	prefix := a.cfg.CLI.ViewBrowsersURL
	for i, b := range crawl.Browsers {
		url := prefix + b
		if a.quiet {
			a.printf("%s\n", url)
			continue
		}
		state := "Browser"
		if done[b] {
			state = "Finished Browser"
		}
		a.printf("%s %d of %d (%s) for crawl %s: %s\n", state, i+1, len(crawl.Browsers), b, crawl.ID, url)
	}
}

// AddURLs queues more URLs on a crawl.
func (a *App) AddURLs(ctx context.Context, id string, urls []string) error {
	svc, err := a.getService()
	if err != nil {
		return err
	}

	if err := resultErr(svc.AddCrawlURLs(ctx, id, urls)); err != nil {
		return err
	}
	a.info("Queued %d URL(s) on crawl %s: %s\n", len(urls), id, strings.Join(urls, ", "))
	return nil
}
