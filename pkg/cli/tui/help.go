package tui

import (
	"fmt"
	"strings"
)

// HelpItem represents a single keyboard shortcut and its description
type HelpItem struct {
	Key         string
	Description string
}

// RootMenuHelpContent returns help for root menu
func RootMenuHelpContent() string {
	items := []HelpItem{
		{"1-2", "Select menu option (Manage crawls / Create crawl)"},
		{"q / Esc", "Quit"},
		{"?", "Show this help"},
	}
	return renderHelpItems(items)
}

// ManageCrawlsHelpContent returns help for the manage crawls flow
func ManageCrawlsHelpContent() string {
	items := []HelpItem{
		{"↑ / ↓ / j / k", "Navigate crawl list"},
		{"Enter", "Select crawl"},
		{"Esc / b", "Go back"},
		{"1 / v", "View details"},
		{"2 / s", "Start crawl"},
		{"3 / t", "Stop crawl"},
		{"4 / r", "Refresh info and URLs"},
		{"5 / a", "Queue more URLs"},
		{"6 / d", "Remove crawl"},
		{"x", "Dismiss notifications"},
		{"m", "Return to menu"},
		{"q", "Quit"},
	}
	return renderHelpItems(items)
}

// CreateCrawlHelpContent returns help for the create crawl form
func CreateCrawlHelpContent() string {
	items := []HelpItem{
		{"Tab / Shift+Tab", "Navigate fields"},
		{"Enter", "Next field / Create crawl (last field)"},
		{"Esc", "Cancel"},
		{"m", "Return to menu"},
	}
	return renderHelpItems(items)
}

func renderHelpItems(items []HelpItem) string {
	var b strings.Builder
	keyStyle := boldStyle.Foreground(colorPrimary)
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			keyStyle.Render(item.Key),
			item.Description))
	}
	return b.String()
}
