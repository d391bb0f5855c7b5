package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidateURL trims and validates a seed URL, returning a normalized value
// or an error if the URL is empty, relative or not http(s).
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", s)
	}
	return s, nil
}

// ParseURLList splits raw on commas and whitespace and validates each entry.
func ParseURLList(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one URL is required")
	}

	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		u, err := ValidateURL(f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// ParsePositiveInt parses a form field that must be a whole number >= 1.
func ParsePositiveInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1", field)
	}
	return n, nil
}
