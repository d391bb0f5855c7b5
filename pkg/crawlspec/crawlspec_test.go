package crawlspec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crawl-mgmt-go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specYAML = `
crawls:
  - name: news
    crawl_type: same-domain
    num_browsers: 2
    num_tabs: 1
    coll: news
    seed_urls:
      - https://example.com/
      - https://example.com/about
  - name: deep
    crawl_type: custom
    crawl_depth: 2
    num_browsers: 1
    num_tabs: 3
    headless: false
    seed_urls:
      - https://example.org/
`

func TestParse(t *testing.T) {
	crawls, err := Parse(strings.NewReader(specYAML), Overrides{})
	require.NoError(t, err)
	require.Len(t, crawls, 2)

	assert.Equal(t, "news", crawls[0].Name)
	assert.Equal(t, models.CrawlTypeSameDomain, crawls[0].CrawlType)
	assert.Equal(t, 2, crawls[0].NumBrowsers)
	assert.Equal(t, []string{"https://example.com/", "https://example.com/about"}, crawls[0].SeedURLs)
	assert.Nil(t, crawls[0].CrawlDepth)
	assert.Nil(t, crawls[0].Headless)

	require.NotNil(t, crawls[1].CrawlDepth)
	assert.Equal(t, 2, *crawls[1].CrawlDepth)
	require.NotNil(t, crawls[1].Headless)
	assert.False(t, *crawls[1].Headless)
}

func TestParseAppliesOverrides(t *testing.T) {
	crawls, err := Parse(strings.NewReader(specYAML), Overrides{
		Browser:      "chrome:76",
		Coll:         "override",
		Headless:     models.Ptr(true),
		BehaviorTime: models.Ptr(30),
		Start:        models.Ptr(false),
	})
	require.NoError(t, err)

	for _, c := range crawls {
		assert.Equal(t, "chrome:76", c.Browser)
		assert.Equal(t, "override", c.Coll)
		assert.Equal(t, 30, c.BehaviorMaxTime)
		require.NotNil(t, c.Headless)
		assert.True(t, *c.Headless)
		require.NotNil(t, c.Start)
		assert.False(t, *c.Start)
	}
}

func TestParseFillsMissingSizing(t *testing.T) {
	doc := `
crawls:
  - name: bare
    crawl_type: single-page
    seed_urls: [https://example.com/]
  - name: zero
    crawl_type: single-page
    num_browsers: 0
    num_tabs: 4
    seed_urls: [https://example.com/]
`
	crawls, err := Parse(strings.NewReader(doc), Overrides{Defaults: Defaults{NumBrowsers: 2, NumTabs: 1}})
	require.NoError(t, err)
	require.Len(t, crawls, 2)

	assert.Equal(t, 2, crawls[0].NumBrowsers)
	assert.Equal(t, 1, crawls[0].NumTabs)

	// explicit values stay, zero included
	assert.Equal(t, 0, crawls[1].NumBrowsers)
	assert.Equal(t, 4, crawls[1].NumTabs)
	assert.Error(t, models.Validate(crawls[1]))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("crawls: []\n"), Overrides{})
	assert.ErrorContains(t, err, "no entries")

	_, err = Parse(strings.NewReader("crawls: [\n"), Overrides{})
	assert.ErrorContains(t, err, "parse crawl spec")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(specYAML), 0o644))

	crawls, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Len(t, crawls, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{})
	assert.ErrorContains(t, err, "open crawl spec")
}
