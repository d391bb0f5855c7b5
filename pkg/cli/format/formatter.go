package format

import (
	"fmt"
	"time"

	"crawl-mgmt-go/pkg/models"
)

// Duration formats the time between two unix timestamps like "1:02:03".
// A zero start renders "-"; a zero finish measures up to now.
func Duration(start, finish int64, now time.Time) string {
	if start == 0 {
		return "-"
	}
	end := now
	if finish != 0 {
		end = time.Unix(finish, 0)
	}
	elapsed := end.Sub(time.Unix(start, 0))
	if elapsed < 0 {
		elapsed = 0
	}
	elapsed = elapsed.Truncate(time.Second)

	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// Started renders how long ago a crawl started.
func Started(c models.Crawl, now time.Time) string {
	if c.StartTime == 0 {
		return "-"
	}
	return Duration(c.StartTime, 0, now) + " ago"
}

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// Status renders the crawl status, defaulting to new.
func Status(c models.Crawl) string {
	if c.Status == "" {
		return string(models.StatusNew)
	}
	return string(c.Status)
}
