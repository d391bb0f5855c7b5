package models

// CreateCrawlRequest is the body of POST /crawls. It doubles as the entry
// format of YAML crawl spec files.
type CreateCrawlRequest struct {
	CrawlType       CrawlType `json:"crawl_type" yaml:"crawl_type" validate:"required,crawltype"`
	NumBrowsers     int       `json:"num_browsers" yaml:"num_browsers" validate:"gt=0"`
	NumTabs         int       `json:"num_tabs" yaml:"num_tabs" validate:"gt=0"`
	SeedURLs        []string  `json:"seed_urls,omitempty" yaml:"seed_urls" validate:"min=1,dive,url"`
	CrawlDepth      *int      `json:"crawl_depth,omitempty" yaml:"crawl_depth" validate:"omitempty,gte=-1"`
	Name            string    `json:"name,omitempty" yaml:"name"`
	Coll            string    `json:"coll,omitempty" yaml:"coll"`
	Mode            string    `json:"mode,omitempty" yaml:"mode"`
	BehaviorMaxTime int       `json:"behavior_max_time,omitempty" yaml:"behavior_max_time" validate:"gt=0"`
	Browser         string    `json:"browser,omitempty" yaml:"browser"`
	Headless        *bool     `json:"headless,omitempty" yaml:"headless"`
	Cache           string    `json:"cache,omitempty" yaml:"cache" validate:"omitempty,oneof=always never default"`
	Start           *bool     `json:"start,omitempty" yaml:"start"`
}

// Patch converts the request into the fields the backend echoes back once
// the crawl exists.
func (r CreateCrawlRequest) Patch(id string) CrawlPatch {
	p := CrawlPatch{
		ID:          id,
		CrawlType:   Ptr(r.CrawlType),
		NumBrowsers: Ptr(r.NumBrowsers),
		NumTabs:     Ptr(r.NumTabs),
		SeedURLs:    cloneSlice(r.SeedURLs),
		CrawlDepth:  r.CrawlDepth,
		Headless:    r.Headless,
	}
	if r.Name != "" {
		p.Name = Ptr(r.Name)
	}
	if r.Coll != "" {
		p.Coll = Ptr(r.Coll)
	}
	if r.BehaviorMaxTime > 0 {
		p.BehaviorMaxTime = Ptr(r.BehaviorMaxTime)
	}
	if r.Mode != "" {
		p.Mode = Ptr(r.Mode)
	}
	if r.Browser != "" {
		p.Browser = Ptr(r.Browser)
	}
	return p
}

// CreateCrawlResponse acknowledges a created crawl.
type CreateCrawlResponse struct {
	Success  bool     `json:"success"`
	ID       string   `json:"id" validate:"required"`
	Status   Status   `json:"status"`
	Browsers []string `json:"browsers"`
}

// CrawlInfosResponse is the body of GET /crawls.
type CrawlInfosResponse struct {
	Crawls []CrawlPatch `json:"crawls" validate:"dive"`
}

// CrawlInfoResponse is the body of GET /crawl/{id}.
type CrawlInfoResponse struct {
	CrawlPatch
}

// CrawlURLsResponse is the body of GET /crawl/{id}/urls.
type CrawlURLsResponse struct {
	Scopes  []map[string]any `json:"scopes"`
	Queue   []QueueEntry     `json:"queue"`
	Pending []string         `json:"pending"`
	Seen    []string         `json:"seen"`
}

// Patch attaches the URL lists to crawl id.
func (r CrawlURLsResponse) Patch(id string) CrawlPatch {
	p := CrawlPatch{
		ID:      id,
		Queue:   r.Queue,
		Pending: r.Pending,
		Seen:    r.Seen,
	}
	if r.Queue != nil {
		p.NumQueue = Ptr(len(r.Queue))
	}
	if r.Pending != nil {
		p.NumPending = Ptr(len(r.Pending))
	}
	if r.Seen != nil {
		p.NumSeen = Ptr(len(r.Seen))
	}
	return p
}

// QueueURLsRequest is the body of POST /crawl/{id}/urls.
type QueueURLsRequest struct {
	URLs []string `json:"urls" validate:"min=1,dive,url"`
}

// StartCrawlRequest is the body of POST /crawl/{id}/start.
type StartCrawlRequest struct {
	Browser         string `json:"browser" validate:"required"`
	BehaviorMaxTime int    `json:"behavior_max_time" validate:"gt=0"`
	Headless        bool   `json:"headless"`
}

// StartCrawlResponse reports the browsers launched for a started crawl.
type StartCrawlResponse struct {
	Success  bool     `json:"success"`
	Browsers []string `json:"browsers"`
}

// OperationSuccessResponse is returned by stop and remove.
type OperationSuccessResponse struct {
	Success bool `json:"success"`
}

// CrawlDoneResponse is the body of GET /crawl/{id}/done.
type CrawlDoneResponse struct {
	Done bool `json:"done"`
}
