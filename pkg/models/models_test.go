package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlPatchApplyTo(t *testing.T) {
	tests := []struct {
		name  string
		start Crawl
		patch CrawlPatch
		want  Crawl
	}{
		{
			name:  "present fields overwrite",
			start: Crawl{ID: "c1", Name: "old", Status: StatusNew, NumBrowsers: 1},
			patch: CrawlPatch{ID: "c1", Name: Ptr("new"), Status: Ptr(StatusRunning), NumBrowsers: Ptr(3)},
			want:  Crawl{ID: "c1", Name: "new", Status: StatusRunning, NumBrowsers: 3},
		},
		{
			name:  "absent fields kept",
			start: Crawl{ID: "c1", Name: "keep", Browsers: []string{"br1"}, NumQueue: 4},
			patch: CrawlPatch{ID: "c1", Running: Ptr(true)},
			want:  Crawl{ID: "c1", Name: "keep", Browsers: []string{"br1"}, NumQueue: 4, Running: true},
		},
		{
			name:  "zero values are still values",
			start: Crawl{ID: "c1", Running: true, NumQueue: 4, Headless: true},
			patch: CrawlPatch{ID: "c1", Running: Ptr(false), NumQueue: Ptr(0), Headless: Ptr(false)},
			want:  Crawl{ID: "c1"},
		},
		{
			name:  "id fills only when empty",
			start: Crawl{ID: "c1"},
			patch: CrawlPatch{ID: "other"},
			want:  Crawl{ID: "c1"},
		},
		{
			name:  "empty record takes id",
			start: Crawl{},
			patch: CrawlPatch{ID: "c2", CrawlType: Ptr(CrawlTypeAllLinks)},
			want:  Crawl{ID: "c2", CrawlType: CrawlTypeAllLinks},
		},
		{
			name:  "slices replace",
			start: Crawl{ID: "c1", Seen: []string{"a"}, Queue: []QueueEntry{{URL: "a"}}},
			patch: CrawlPatch{ID: "c1", Seen: []string{"b", "c"}, Queue: []QueueEntry{{URL: "d", Depth: 1}}},
			want:  Crawl{ID: "c1", Seen: []string{"b", "c"}, Queue: []QueueEntry{{URL: "d", Depth: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start
			tt.patch.ApplyTo(&got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCrawlPatchApplyToCopiesSlices(t *testing.T) {
	p := CrawlPatch{
		ID:           "c1",
		SeedURLs:     []string{"https://example.com/"},
		Browsers:     []string{"br1"},
		BrowsersDone: []string{"br0"},
		Queue:        []QueueEntry{{URL: "https://example.com/a"}},
		Pending:      []string{"https://example.com/p"},
		Seen:         []string{"https://example.com/"},
	}
	var c Crawl
	p.ApplyTo(&c)

	p.SeedURLs[0] = "x"
	p.Browsers[0] = "x"
	p.BrowsersDone[0] = "x"
	p.Queue[0].URL = "x"
	p.Pending[0] = "x"
	p.Seen[0] = "x"

	assert.Equal(t, []string{"https://example.com/"}, c.SeedURLs)
	assert.Equal(t, []string{"br1"}, c.Browsers)
	assert.Equal(t, []string{"br0"}, c.BrowsersDone)
	assert.Equal(t, "https://example.com/a", c.Queue[0].URL)
	assert.Equal(t, []string{"https://example.com/p"}, c.Pending)
	assert.Equal(t, []string{"https://example.com/"}, c.Seen)

	// and the other way round
	c.Browsers[0] = "y"
	assert.Equal(t, "x", p.Browsers[0])
}

func validCreate() CreateCrawlRequest {
	return CreateCrawlRequest{
		CrawlType:       CrawlTypeSinglePage,
		NumBrowsers:     2,
		NumTabs:         1,
		SeedURLs:        []string{"https://example.com/"},
		BehaviorMaxTime: 60,
	}
}

func TestValidateCreateCrawlRequest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateCrawlRequest)
		want   string
	}{
		{
			name:   "valid",
			mutate: func(*CreateCrawlRequest) {},
		},
		{
			name:   "missing crawl type",
			mutate: func(r *CreateCrawlRequest) { r.CrawlType = "" },
			want:   "crawl_type is required",
		},
		{
			name:   "unknown crawl type",
			mutate: func(r *CreateCrawlRequest) { r.CrawlType = "everything" },
			want:   `crawl_type "everything" is not a known crawl type`,
		},
		{
			name:   "zero browsers",
			mutate: func(r *CreateCrawlRequest) { r.NumBrowsers = 0 },
			want:   "num_browsers must be greater than 0",
		},
		{
			name:   "zero sizing lists both",
			mutate: func(r *CreateCrawlRequest) { r.NumBrowsers, r.NumTabs = 0, 0 },
			want:   "num_browsers must be greater than 0; num_tabs must be greater than 0",
		},
		{
			name:   "no seeds",
			mutate: func(r *CreateCrawlRequest) { r.SeedURLs = nil },
			want:   "seed_urls must have at least 1 item(s)",
		},
		{
			name:   "bad seed",
			mutate: func(r *CreateCrawlRequest) { r.SeedURLs = []string{"not a url"} },
			want:   `seed_urls[0]: "not a url" is not a URL`,
		},
		{
			name:   "depth below unlimited",
			mutate: func(r *CreateCrawlRequest) { r.CrawlDepth = Ptr(-2) },
			want:   "crawl_depth must be at least -1",
		},
		{
			name:   "unlimited depth allowed",
			mutate: func(r *CreateCrawlRequest) { r.CrawlDepth = Ptr(-1) },
		},
		{
			name:   "unknown cache mode",
			mutate: func(r *CreateCrawlRequest) { r.Cache = "sometimes" },
			want:   "cache must be one of: always never default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			err := Validate(req)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestCrawlTypeValid(t *testing.T) {
	for _, ct := range CrawlTypes {
		assert.True(t, ct.Valid(), ct)
	}
	assert.False(t, CrawlType("").Valid())
	assert.False(t, CrawlType("Single-Page").Valid())
}
