package store

import (
	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/models"
)

// Event is a state change produced by a completed request.
type Event interface {
	Kind() string
}

// SnapshotReceived carries a full "list all crawls" response.
type SnapshotReceived struct {
	Crawls []models.CrawlPatch
}

// CrawlCreated carries the acknowledged id merged with the submitted fields.
type CrawlCreated struct {
	Patch models.CrawlPatch
}

// CrawlMerged carries a partial update for one crawl: info, URL lists, start
// and stop results all arrive this way.
type CrawlMerged struct {
	Patch models.CrawlPatch
}

// CrawlRemoved deletes a crawl from the store.
type CrawlRemoved struct {
	ID string
}

// DoneChecked records the answer of an is-done query.
type DoneChecked struct {
	ID   string
	Done bool
}

// RequestFailed is the terminal event of a failed dispatch. It never changes
// crawl records; it only queues a notification.
type RequestFailed struct {
	Op      endpoints.Op
	URL     string
	CrawlID string
	Err     error
	// Message overrides Err.Error() in the notification when set.
	Message string
}

func (SnapshotReceived) Kind() string { return "snapshot_received" }
func (CrawlCreated) Kind() string     { return "crawl_created" }
func (CrawlMerged) Kind() string      { return "crawl_merged" }
func (CrawlRemoved) Kind() string     { return "crawl_removed" }
func (DoneChecked) Kind() string      { return "done_checked" }
func (RequestFailed) Kind() string    { return "request_failed" }
