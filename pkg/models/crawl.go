package models

// CrawlType selects how far a crawl follows links from its seeds.
type CrawlType string

const (
	CrawlTypeSinglePage CrawlType = "single-page"
	CrawlTypeSameDomain CrawlType = "same-domain"
	CrawlTypeAllLinks   CrawlType = "all-links"
	CrawlTypeCustom     CrawlType = "custom"
)

// CrawlTypes lists the crawl types in the order they are offered to users.
var CrawlTypes = []CrawlType{
	CrawlTypeSinglePage,
	CrawlTypeSameDomain,
	CrawlTypeAllLinks,
	CrawlTypeCustom,
}

// Valid reports whether t is one of the known crawl types.
func (t CrawlType) Valid() bool {
	for _, known := range CrawlTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state reported by the backend.
type Status string

const (
	StatusNew     Status = "new"
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusDone    Status = "done"
)

// QueueEntry is a page waiting to be crawled.
type QueueEntry struct {
	URL   string `json:"url" yaml:"url"`
	Depth int    `json:"depth" yaml:"depth"`
}

// Default values for a freshly inserted crawl record.
const (
	DefaultBrowser         = "chrome:73"
	DefaultBehaviorMaxTime = 60
	DefaultCrawlDepth      = -1
)

// Crawl is a configured, possibly running, crawl job tracked by identifier.
type Crawl struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Coll            string       `json:"coll" yaml:"coll"`
	Mode            string       `json:"mode" yaml:"mode"`
	CrawlType       CrawlType    `json:"crawl_type" yaml:"crawl_type"`
	CrawlDepth      int          `json:"crawl_depth" yaml:"crawl_depth"`
	NumBrowsers     int          `json:"num_browsers" yaml:"num_browsers"`
	NumTabs         int          `json:"num_tabs" yaml:"num_tabs"`
	SeedURLs        []string     `json:"seed_urls" yaml:"seed_urls"`
	Status          Status       `json:"status" yaml:"status"`
	Running         bool         `json:"running" yaml:"running"`
	Browser         string       `json:"browser" yaml:"browser"`
	Headless        bool         `json:"headless" yaml:"headless"`
	BehaviorMaxTime int          `json:"behavior_max_time" yaml:"behavior_max_time"`
	Browsers        []string     `json:"browsers" yaml:"browsers"`
	BrowsersDone    []string     `json:"browsers_done" yaml:"browsers_done"`
	Queue           []QueueEntry `json:"queue" yaml:"queue"`
	Pending         []string     `json:"pending" yaml:"pending"`
	Seen            []string     `json:"seen" yaml:"seen"`
	StartTime       int64        `json:"start_time" yaml:"start_time"`
	FinishTime      int64        `json:"finish_time" yaml:"finish_time"`
	NumQueue        int          `json:"num_queue" yaml:"num_queue"`
	NumPending      int          `json:"num_pending" yaml:"num_pending"`
	NumSeen         int          `json:"num_seen" yaml:"num_seen"`
}

// DefaultCrawl returns the record inserted for an id the store has not seen yet.
func DefaultCrawl(id string) Crawl {
	return Crawl{
		ID:              id,
		Status:          StatusNew,
		Browser:         DefaultBrowser,
		BehaviorMaxTime: DefaultBehaviorMaxTime,
		CrawlDepth:      DefaultCrawlDepth,
		SeedURLs:        []string{},
		Browsers:        []string{},
		BrowsersDone:    []string{},
		Queue:           []QueueEntry{},
		Pending:         []string{},
		Seen:            []string{},
	}
}

// Clone returns a copy of c that shares no slices with it.
func (c Crawl) Clone() Crawl {
	out := c
	out.SeedURLs = cloneSlice(c.SeedURLs)
	out.Browsers = cloneSlice(c.Browsers)
	out.BrowsersDone = cloneSlice(c.BrowsersDone)
	out.Queue = cloneSlice(c.Queue)
	out.Pending = cloneSlice(c.Pending)
	out.Seen = cloneSlice(c.Seen)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// DisplayName returns the crawl name, or its id when it has none.
func (c Crawl) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
