// Package format renders crawls for plain terminal output.
package format

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"crawl-mgmt-go/pkg/models"
)

var columns = []string{
	"CRAWL ID", "NAME", "STARTED", "DURATION", "STATUS", "CRAWL TYPE",
	"COLL", "MODE", "TO CRAWL", "PENDING", "SEEN", "BROWSERS", "TABS",
}

// SortByStart orders crawls newest first.
func SortByStart(crawls []models.Crawl) []models.Crawl {
	out := make([]models.Crawl, len(crawls))
	copy(out, crawls)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime > out[j].StartTime
	})
	return out
}

// FormatTableOutput formats crawls as a table for CLI output, newest first.
func FormatTableOutput(crawls []models.Crawl, now time.Time) string {
	if len(crawls) == 0 {
		return "No crawls found.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	for _, c := range SortByStart(crawls) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			c.ID,
			Truncate(c.Name, 24),
			Started(c, now),
			Duration(c.StartTime, c.FinishTime, now),
			Status(c),
			c.CrawlType,
			c.Coll,
			c.Mode,
			c.NumQueue,
			c.NumPending,
			c.NumSeen,
			c.NumBrowsers,
			c.NumTabs,
		)
	}

	w.Flush()
	b.WriteString(fmt.Sprintf("\nTotal: %d crawl(s)\n", len(crawls)))
	return b.String()
}

// FormatIDs lists crawl ids one per line, newest first (quiet mode).
func FormatIDs(crawls []models.Crawl) string {
	var b strings.Builder
	for _, c := range SortByStart(crawls) {
		b.WriteString(c.ID)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCreated formats the confirmation for a created crawl.
func FormatCreated(c models.Crawl, started bool) string {
	verb := "Created"
	if started {
		verb = "Created and Started"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("✓ Crawl %s: %s\n", verb, c.ID))
	if c.Name != "" {
		b.WriteString(fmt.Sprintf("  Name:   %s\n", c.Name))
	}
	b.WriteString(fmt.Sprintf("  Status: %s\n", Status(c)))
	if len(c.Browsers) > 0 {
		b.WriteString(fmt.Sprintf("  Browsers: %s\n", strings.Join(c.Browsers, ", ")))
	}
	return b.String()
}

// FormatErrorMessage formats an error message consistently
func FormatErrorMessage(msg string) string {
	return fmt.Sprintf("❌ Error: %s\n", msg)
}
