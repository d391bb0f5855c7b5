// Package endpoints maps logical crawl operations onto concrete HTTP request
// descriptors for the crawl-management API. It performs no I/O.
package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crawl-mgmt-go/pkg/config"
	"crawl-mgmt-go/pkg/models"

	json "github.com/goccy/go-json"
)

// Op names a backend operation. It labels logs and metrics.
type Op string

const (
	OpListCrawls  Op = "list_crawls"
	OpCreateCrawl Op = "create_crawl"
	OpGetCrawl    Op = "get_crawl"
	OpGetURLs     Op = "get_crawl_urls"
	OpAddURLs     Op = "add_crawl_urls"
	OpStartCrawl  Op = "start_crawl"
	OpStopCrawl   Op = "stop_crawl"
	OpRemoveCrawl Op = "remove_crawl"
	OpIsDone      Op = "is_crawl_done"
)

// Request describes one HTTP call. Body is nil for requests without one.
type Request struct {
	Op     Op
	Method string
	URL    string
	Body   []byte
}

// Defaults are applied to create and start requests that leave a field unset.
type Defaults struct {
	CrawlType       models.CrawlType
	CrawlDepth      int
	Browser         string
	BehaviorMaxTime int
	Headless        bool
	Cache           string
	Coll            string
}

// Config holds the base URLs and request defaults.
type Config struct {
	Root     string
	Crawl    string
	Defaults Defaults
}

// DefaultRoot is used when no root URL is configured.
const DefaultRoot = "http://localhost:8001"

// FromConfig extracts resolver settings from the application config.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Root:  cfg.Endpoints.Root,
		Crawl: cfg.Endpoints.Crawl,
		Defaults: Defaults{
			CrawlType:       models.CrawlType(cfg.Defaults.CrawlType),
			CrawlDepth:      cfg.Defaults.CrawlDepth,
			Browser:         cfg.Defaults.Browser,
			BehaviorMaxTime: cfg.Defaults.BehaviorMaxTime,
			Headless:        cfg.Defaults.Headless,
			Cache:           cfg.Defaults.Cache,
			Coll:            cfg.Defaults.Coll,
		},
	}
}

// Resolver builds request descriptors. It is immutable and safe for concurrent use.
type Resolver struct {
	root     string
	crawl    string
	defaults Defaults
}

// NewResolver normalizes cfg: the root loses any trailing slash and the crawl
// prefix gains one, defaulting to <root>/crawl/. Unset crawl type, browser and
// behavior time defaults fall back to the backend's own defaults.
func NewResolver(cfg Config) *Resolver {
	root := strings.TrimSuffix(strings.TrimSpace(cfg.Root), "/")
	if root == "" {
		root = DefaultRoot
	}
	crawl := strings.TrimSpace(cfg.Crawl)
	if crawl == "" {
		crawl = root + "/crawl/"
	}
	if !strings.HasSuffix(crawl, "/") {
		crawl += "/"
	}
	defaults := cfg.Defaults
	if defaults.CrawlType == "" {
		defaults.CrawlType = models.CrawlTypeSinglePage
	}
	if defaults.Browser == "" {
		defaults.Browser = models.DefaultBrowser
	}
	if defaults.BehaviorMaxTime <= 0 {
		defaults.BehaviorMaxTime = models.DefaultBehaviorMaxTime
	}
	return &Resolver{root: root, crawl: crawl, defaults: defaults}
}

// Root returns the normalized root URL.
func (r *Resolver) Root() string {
	return r.root
}

// Defaults returns the configured request defaults.
func (r *Resolver) Defaults() Defaults {
	return r.defaults
}

func (r *Resolver) crawlURL(id string, suffix string) string {
	return r.crawl + url.PathEscape(id) + suffix
}

// ListCrawls -> GET /crawls
func (r *Resolver) ListCrawls() Request {
	return Request{Op: OpListCrawls, Method: http.MethodGet, URL: r.root + "/crawls"}
}

// CreateCrawl -> POST /crawls with defaults applied to unset optional fields.
func (r *Resolver) CreateCrawl(req models.CreateCrawlRequest) (Request, error) {
	body, err := encode(r.WithCreateDefaults(req))
	if err != nil {
		return Request{}, err
	}
	return Request{Op: OpCreateCrawl, Method: http.MethodPost, URL: r.root + "/crawls", Body: body}, nil
}

// WithCreateDefaults fills optional fields of req from the configured defaults.
// num_browsers, num_tabs and seed_urls are required and left untouched.
func (r *Resolver) WithCreateDefaults(req models.CreateCrawlRequest) models.CreateCrawlRequest {
	out := req
	out.SeedURLs = append([]string(nil), req.SeedURLs...)
	if out.CrawlType == "" {
		out.CrawlType = r.defaults.CrawlType
	}
	if out.CrawlType == models.CrawlTypeCustom {
		if out.CrawlDepth == nil {
			out.CrawlDepth = models.Ptr(r.defaults.CrawlDepth)
		}
	} else {
		// depth only means something for custom crawls
		out.CrawlDepth = nil
	}
	if out.Browser == "" {
		out.Browser = r.defaults.Browser
	}
	if out.BehaviorMaxTime == 0 {
		out.BehaviorMaxTime = r.defaults.BehaviorMaxTime
	}
	if out.Headless == nil {
		out.Headless = models.Ptr(r.defaults.Headless)
	}
	if out.Cache == "" {
		out.Cache = r.defaults.Cache
	}
	if out.Coll == "" {
		out.Coll = r.defaults.Coll
	}
	return out
}

// GetCrawl -> GET /crawl/{id}
func (r *Resolver) GetCrawl(id string) Request {
	return Request{Op: OpGetCrawl, Method: http.MethodGet, URL: r.crawlURL(id, "")}
}

// GetCrawlURLs -> GET /crawl/{id}/urls
func (r *Resolver) GetCrawlURLs(id string) Request {
	return Request{Op: OpGetURLs, Method: http.MethodGet, URL: r.crawlURL(id, "/urls")}
}

// AddCrawlURLs -> POST /crawl/{id}/urls
func (r *Resolver) AddCrawlURLs(id string, urls []string) (Request, error) {
	body, err := encode(models.QueueURLsRequest{URLs: urls})
	if err != nil {
		return Request{}, err
	}
	return Request{Op: OpAddURLs, Method: http.MethodPost, URL: r.crawlURL(id, "/urls"), Body: body}, nil
}

// StartCrawl -> POST /crawl/{id}/start
func (r *Resolver) StartCrawl(id string, req models.StartCrawlRequest) (Request, error) {
	body, err := encode(r.WithStartDefaults(req))
	if err != nil {
		return Request{}, err
	}
	return Request{Op: OpStartCrawl, Method: http.MethodPost, URL: r.crawlURL(id, "/start"), Body: body}, nil
}

// WithStartDefaults fills the browser and behavior time when unset.
func (r *Resolver) WithStartDefaults(req models.StartCrawlRequest) models.StartCrawlRequest {
	out := req
	if out.Browser == "" {
		out.Browser = r.defaults.Browser
	}
	if out.BehaviorMaxTime == 0 {
		out.BehaviorMaxTime = r.defaults.BehaviorMaxTime
	}
	return out
}

// StopCrawl -> POST /crawl/{id}/stop
func (r *Resolver) StopCrawl(id string) Request {
	return Request{Op: OpStopCrawl, Method: http.MethodPost, URL: r.crawlURL(id, "/stop")}
}

// RemoveCrawl -> DELETE /crawl/{id}
func (r *Resolver) RemoveCrawl(id string) Request {
	return Request{Op: OpRemoveCrawl, Method: http.MethodDelete, URL: r.crawlURL(id, "")}
}

// IsDone -> GET /crawl/{id}/done
func (r *Resolver) IsDone(id string) Request {
	return Request{Op: OpIsDone, Method: http.MethodGet, URL: r.crawlURL(id, "/done")}
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}
