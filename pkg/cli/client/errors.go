package client

import (
	"errors"
	"fmt"

	"crawl-mgmt-go/pkg/endpoints"
)

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Op     endpoints.Op
	Status int
	Detail string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Detail)
}

// TransportError is a request that never produced an HTTP reply.
type TransportError struct {
	Op  endpoints.Op
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to users for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return fmt.Sprintf("Unable to reach %s. Is the crawl manager running?", tErr.URL)
	}
	return err.Error()
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
