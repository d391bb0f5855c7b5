package tui

import (
	"fmt"
	"strings"
	"time"

	"crawl-mgmt-go/pkg/cli/format"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"
)

// renderErrorView renders a standard error view with a way back
func renderErrorView(err error) string {
	return "\n" + renderError(fmt.Sprintf("Error: %v", err)) + "\n\n" +
		helpStyle.Render("Press any key to continue...") + "\n"
}

func renderEmptyState(message string) string {
	return "\n" + mutedStyle.Render(message) + "\n"
}

func renderLoadingState(message string) string {
	return "\n" + infoStyle.Render(message) + "\n"
}

func renderSuccessView(message string) string {
	return "\n" + renderSuccess(message) + "\n\n" +
		helpStyle.Render("Press any key to continue...") + "\n"
}

// renderCrawlList renders a selectable list of crawls, two lines per crawl.
func renderCrawlList(crawls []models.Crawl, selected int, subtitle string, maxWidth int, now time.Time) string {
	var b strings.Builder
	if subtitle != "" {
		b.WriteString(boldStyle.Render(subtitle) + "\n\n")
	}

	urlWidth := max(maxWidth-10, 40)
	for i, c := range crawls {
		marker := " "
		nameStyle := crawlNameStyle
		if i == selected {
			marker = selectedMarkerStyle.Render("→")
			nameStyle = selectedStyle
		}

		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			marker,
			nameStyle.Render(format.Truncate(c.DisplayName(), 30)),
			statusStyle(c.Status).Render("["+format.Status(c)+"]"),
			mutedStyle.Render(format.Duration(c.StartTime, c.FinishTime, now))))
		b.WriteString(fmt.Sprintf("  %s\n", crawlURLStyle.Render(format.Truncate(seedSummary(c), urlWidth))))
	}

	b.WriteString("\n")
	return b.String()
}

func seedSummary(c models.Crawl) string {
	switch len(c.SeedURLs) {
	case 0:
		return fmt.Sprintf("%s (%s)", c.ID, c.CrawlType)
	case 1:
		return c.SeedURLs[0]
	default:
		return fmt.Sprintf("%s (+%d more)", c.SeedURLs[0], len(c.SeedURLs)-1)
	}
}

// renderCrawlDetails renders the full record of one crawl.
func renderCrawlDetails(c models.Crawl, viewBrowsersURL string, maxWidth int, now time.Time) string {
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(fieldLabelStyle.Render(label))
		b.WriteString(fmt.Sprintf(" %s\n", value))
	}

	b.WriteString(fieldLabelStyle.Render("ID:"))
	b.WriteString(fmt.Sprintf(" %s\n", crawlIDStyle.Render(c.ID)))
	field("Name:", orNotSet(c.Name))
	field("Status:", statusStyle(c.Status).Render(format.Status(c)))
	field("Type:", string(c.CrawlType))
	if c.CrawlType == models.CrawlTypeCustom {
		field("Depth:", fmt.Sprintf("%d", c.CrawlDepth))
	}
	field("Collection:", orNotSet(c.Coll))
	field("Mode:", orNotSet(c.Mode))
	field("Browser:", fmt.Sprintf("%s (headless: %t)", c.Browser, c.Headless))
	field("Browsers/Tabs:", fmt.Sprintf("%d x %d", c.NumBrowsers, c.NumTabs))
	field("Started:", format.Started(c, now))
	field("Duration:", format.Duration(c.StartTime, c.FinishTime, now))
	field("URLs:", fmt.Sprintf("%d queued, %d pending, %d seen", c.NumQueue, c.NumPending, c.NumSeen))

	b.WriteString(fieldLabelStyle.Render("Seeds:") + "\n")
	for _, u := range c.SeedURLs {
		b.WriteString(fmt.Sprintf("  %s\n", crawlURLStyle.Render(format.Truncate(u, maxWidth-4))))
	}

	if len(c.Browsers) > 0 {
		b.WriteString(fieldLabelStyle.Render("Browsers:") + "\n")
		for _, id := range c.Browsers {
			b.WriteString(fmt.Sprintf("  %s\n", viewBrowsersURL+id))
		}
	}

	if len(c.Queue) > 0 {
		b.WriteString(fieldLabelStyle.Render("Queue:") + "\n")
		for i, q := range c.Queue {
			if i == maxQueuePreview {
				b.WriteString("  " + mutedStyle.Render(fmt.Sprintf("(%d more)", len(c.Queue)-i)) + "\n")
				break
			}
			b.WriteString(fmt.Sprintf("  %d  %s\n", q.Depth, format.Truncate(q.URL, maxWidth-8)))
		}
	}

	return b.String()
}

const maxQueuePreview = 10

func orNotSet(s string) string {
	if s == "" {
		return mutedStyle.Render("(not set)")
	}
	return s
}

// renderToast shows the newest failure notification, if any.
func renderToast(notes []store.Notification) string {
	if len(notes) == 0 {
		return ""
	}
	last := notes[len(notes)-1]
	msg := last.Message
	if last.CrawlID != "" {
		msg = fmt.Sprintf("%s: %s", last.CrawlID, msg)
	}
	if n := len(notes); n > 1 {
		msg = fmt.Sprintf("%s (%d notifications, x to dismiss)", msg, n)
	} else {
		msg += " (x to dismiss)"
	}
	return toastStyle.Render("❌ "+msg) + "\n"
}

// handleListNavigation handles common navigation keys for list views (up/down/j/k)
// Returns the new selected index and whether navigation occurred
func handleListNavigation(key string, selected int, total int) (newSelected int, handled bool) {
	switch key {
	case "up", "k":
		if selected > 0 {
			return selected - 1, true
		}
		return selected, true
	case "down", "j":
		if selected < total-1 {
			return selected + 1, true
		}
		return selected, true
	}
	return selected, false
}

func handleQuitKeys(key string) bool {
	switch key {
	case "ctrl+c", "q":
		return true
	}
	return false
}

func renderInlineError(err error) string {
	if err == nil {
		return ""
	}
	return renderError(err.Error())
}
