package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crawl-mgmt-go/pkg/endpoints"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-call id so client and backend logs can be joined.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the crawl-management API.
// It performs exactly one round trip per call and never retries.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client. A zero timeout disables the client timeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTP wraps an existing http.Client (tests, custom transports).
func NewClientWithHTTP(hc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{httpClient: hc, logger: logger}
}

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, req endpoints.Request) (*http.Request, string, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, requestID)

	return httpReq, requestID, nil
}

// Do performs the request and returns the raw response body of a 2xx reply.
// Non-2xx replies become *APIError; network failures become *TransportError.
func (c *Client) Do(ctx context.Context, req endpoints.Request) ([]byte, error) {
	httpReq, requestID, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: req.Op, URL: req.URL, Err: err}
	}

	log := c.logger.With(
		zap.String("op", string(req.Op)),
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, &TransportError{Op: req.Op, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: req.Op, URL: req.URL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Op:     req.Op,
			Status: resp.StatusCode,
			Detail: parseDetail(body, resp.Status),
			Body:   string(body),
		}
		log.Debug("request rejected", zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}

	log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	return body, nil
}

// parseDetail extracts the user-facing text of an error body. The backend
// sends {"detail": "..."} or a list of validation problems under detail.
func parseDetail(body []byte, status string) string {
	var errorResp struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if len(errorResp.Detail) > 0 {
			var s string
			if err := json.Unmarshal(errorResp.Detail, &s); err == nil && s != "" {
				return s
			}
			var items []struct {
				Loc []any  `json:"loc"`
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(errorResp.Detail, &items); err == nil && len(items) > 0 {
				msgs := make([]string, 0, len(items))
				for _, item := range items {
					if len(item.Loc) > 0 {
						msgs = append(msgs, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
					} else {
						msgs = append(msgs, item.Msg)
					}
				}
				return strings.Join(msgs, "; ")
			}
			return string(errorResp.Detail)
		}
		if errorResp.Error != "" {
			return errorResp.Error
		}
	}

	// If JSON parsing failed, return the raw body
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return status
}
