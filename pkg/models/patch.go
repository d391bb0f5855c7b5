package models

// CrawlPatch is a partial crawl as returned by list, info and URL responses.
// A nil field was absent from the payload and must not overwrite stored data.
type CrawlPatch struct {
	ID              string       `json:"id" validate:"required"`
	Name            *string      `json:"name,omitempty"`
	Coll            *string      `json:"coll,omitempty"`
	Mode            *string      `json:"mode,omitempty"`
	CrawlType       *CrawlType   `json:"crawl_type,omitempty"`
	CrawlDepth      *int         `json:"crawl_depth,omitempty"`
	NumBrowsers     *int         `json:"num_browsers,omitempty"`
	NumTabs         *int         `json:"num_tabs,omitempty"`
	SeedURLs        []string     `json:"seed_urls,omitempty"`
	Status          *Status      `json:"status,omitempty"`
	Running         *bool        `json:"running,omitempty"`
	Browser         *string      `json:"browser,omitempty"`
	Headless        *bool        `json:"headless,omitempty"`
	BehaviorMaxTime *int         `json:"behavior_max_time,omitempty"`
	Browsers        []string     `json:"browsers,omitempty"`
	BrowsersDone    []string     `json:"browsers_done,omitempty"`
	Queue           []QueueEntry `json:"queue,omitempty"`
	Pending         []string     `json:"pending,omitempty"`
	Seen            []string     `json:"seen,omitempty"`
	StartTime       *int64       `json:"start_time,omitempty"`
	FinishTime      *int64       `json:"finish_time,omitempty"`
	NumQueue        *int         `json:"num_queue,omitempty"`
	NumPending      *int         `json:"num_pending,omitempty"`
	NumSeen         *int         `json:"num_seen,omitempty"`
}

// ApplyTo overwrites the fields of c that are present in p. Slices are copied
// so the patch and the crawl never share backing arrays.
func (p CrawlPatch) ApplyTo(c *Crawl) {
	if p.ID != "" && c.ID == "" {
		c.ID = p.ID
	}
	setIf(&c.Name, p.Name)
	setIf(&c.Coll, p.Coll)
	setIf(&c.Mode, p.Mode)
	setIf(&c.CrawlType, p.CrawlType)
	setIf(&c.CrawlDepth, p.CrawlDepth)
	setIf(&c.NumBrowsers, p.NumBrowsers)
	setIf(&c.NumTabs, p.NumTabs)
	setIf(&c.Status, p.Status)
	setIf(&c.Running, p.Running)
	setIf(&c.Browser, p.Browser)
	setIf(&c.Headless, p.Headless)
	setIf(&c.BehaviorMaxTime, p.BehaviorMaxTime)
	setIf(&c.StartTime, p.StartTime)
	setIf(&c.FinishTime, p.FinishTime)
	setIf(&c.NumQueue, p.NumQueue)
	setIf(&c.NumPending, p.NumPending)
	setIf(&c.NumSeen, p.NumSeen)

	if p.SeedURLs != nil {
		c.SeedURLs = cloneSlice(p.SeedURLs)
	}
	if p.Browsers != nil {
		c.Browsers = cloneSlice(p.Browsers)
	}
	if p.BrowsersDone != nil {
		c.BrowsersDone = cloneSlice(p.BrowsersDone)
	}
	if p.Queue != nil {
		c.Queue = cloneSlice(p.Queue)
	}
	if p.Pending != nil {
		c.Pending = cloneSlice(p.Pending)
	}
	if p.Seen != nil {
		c.Seen = cloneSlice(p.Seen)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}
