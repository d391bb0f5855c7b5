// Package crawlspec reads YAML crawl spec files: one or more create requests
// listed under a top-level "crawls" key.
package crawlspec

import (
	"fmt"
	"io"
	"os"

	"crawl-mgmt-go/pkg/models"

	"github.com/goccy/go-yaml"
)

// File is the document layout of a crawl spec file.
type File struct {
	Crawls []models.CreateCrawlRequest `yaml:"crawls"`
}

// Overrides replace the matching fields of every crawl in a spec. Nil and
// empty values leave the spec untouched.
type Overrides struct {
	Browser      string
	Coll         string
	Mode         string
	Headless     *bool
	BehaviorTime *int
	Start        *bool
	// Defaults fill keys an entry leaves out.
	Defaults Defaults
}

// Defaults supply num_browsers and num_tabs for entries that omit them. An
// explicit zero in the file is kept so validation can reject it.
type Defaults struct {
	NumBrowsers int
	NumTabs     int
}

// presence records which sizing keys each entry actually sets.
type presence struct {
	Crawls []struct {
		NumBrowsers *int `yaml:"num_browsers"`
		NumTabs     *int `yaml:"num_tabs"`
	} `yaml:"crawls"`
}

// Load reads and parses the spec file at path.
func Load(path string, o Overrides) ([]models.CreateCrawlRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open crawl spec: %w", err)
	}
	defer f.Close()
	return Parse(f, o)
}

// Parse decodes a spec document and applies o to each crawl.
func Parse(r io.Reader, o Overrides) ([]models.CreateCrawlRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read crawl spec: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse crawl spec: %w", err)
	}
	if len(file.Crawls) == 0 {
		return nil, fmt.Errorf("crawl spec has no entries under \"crawls\"")
	}

	var set presence
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse crawl spec: %w", err)
	}

	out := make([]models.CreateCrawlRequest, len(file.Crawls))
	for i, c := range file.Crawls {
		if i < len(set.Crawls) {
			if set.Crawls[i].NumBrowsers == nil {
				c.NumBrowsers = o.Defaults.NumBrowsers
			}
			if set.Crawls[i].NumTabs == nil {
				c.NumTabs = o.Defaults.NumTabs
			}
		}
		out[i] = o.Apply(c)
	}
	return out, nil
}

// Apply returns c with the overrides set on it.
func (o Overrides) Apply(c models.CreateCrawlRequest) models.CreateCrawlRequest {
	if o.Browser != "" {
		c.Browser = o.Browser
	}
	if o.Coll != "" {
		c.Coll = o.Coll
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.Headless != nil {
		c.Headless = models.Ptr(*o.Headless)
	}
	if o.BehaviorTime != nil {
		c.BehaviorMaxTime = *o.BehaviorTime
	}
	if o.Start != nil {
		c.Start = models.Ptr(*o.Start)
	}
	return c
}

// Marshal renders v as YAML. The CLI uses it to dump crawl info.
func Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return data, nil
}
