package managecrawls

import "crawl-mgmt-go/pkg/actions"

// PollTickMsg fires when the crawl list is due for a refresh.
type PollTickMsg struct{}

// StoreChangedMsg is emitted when the crawl store applied an event.
type StoreChangedMsg struct{}

// CrawlsLoadedMsg carries the result of a list request.
type CrawlsLoadedMsg struct {
	Result actions.Result
}

// ActionDoneMsg is emitted when an action on a single crawl completes.
type ActionDoneMsg struct {
	Action  string
	CrawlID string
	Result  actions.Result
}
