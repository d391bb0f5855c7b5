package handlers

import (
	"context"
	"errors"
	"net/http"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/store"

	"github.com/gin-gonic/gin"
)

// CrawlReader is the read side of the store.
type CrawlReader interface {
	List() []models.Crawl
	Get(id string) (models.Crawl, bool)
	Notifications() []store.Notification
	Version() uint64
}

// CrawlActions is the subset of *actions.Service the monitor exposes.
type CrawlActions interface {
	CreateCrawl(ctx context.Context, req models.CreateCrawlRequest) actions.Result
	GetCrawl(ctx context.Context, id string) actions.Result
	GetCrawlURLs(ctx context.Context, id string) actions.Result
	StartCrawl(ctx context.Context, id string, req models.StartCrawlRequest) actions.Result
	StopCrawl(ctx context.Context, id string) actions.Result
	RemoveCrawl(ctx context.Context, id string) actions.Result
}

// ListCrawls returns every known crawl in display order.
func ListCrawls(st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": st.Version(),
			"crawls":  st.List(),
		})
	}
}

// GetCrawl returns one crawl from the store.
func GetCrawl(st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		crawl, ok := st.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "crawl not found"})
			return
		}
		c.JSON(http.StatusOK, crawl)
	}
}

// ListNotifications returns the queued request failures.
func ListNotifications(st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"notifications": st.Notifications()})
	}
}

// CreateCrawl forwards a create request to the backend. num_browsers and
// num_tabs the body omits come from defaults.
func CreateCrawl(svc CrawlActions, st CrawlReader, defaults models.CreateCrawlRequest) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := models.CreateCrawlRequest{
			NumBrowsers: defaults.NumBrowsers,
			NumTabs:     defaults.NumTabs,
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res := svc.CreateCrawl(c.Request.Context(), req)
		if !respondFailure(c, res) {
			return
		}
		crawl, _ := st.Get(res.CreatedID())
		c.JSON(http.StatusCreated, crawl)
	}
}

// RefreshCrawl refetches info and URL lists for one crawl.
func RefreshCrawl(svc CrawlActions, st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !respondFailure(c, svc.GetCrawl(c.Request.Context(), id)) {
			return
		}
		// URL lists are optional detail; a failure here is already a notification.
		svc.GetCrawlURLs(c.Request.Context(), id)
		respondCrawl(c, st, id)
	}
}

// StartCrawl starts one crawl.
func StartCrawl(svc CrawlActions, st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StartCrawlRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		id := c.Param("id")
		if !respondFailure(c, svc.StartCrawl(c.Request.Context(), id, req)) {
			return
		}
		respondCrawl(c, st, id)
	}
}

// StopCrawl stops one crawl.
func StopCrawl(svc CrawlActions, st CrawlReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !respondFailure(c, svc.StopCrawl(c.Request.Context(), id)) {
			return
		}
		respondCrawl(c, st, id)
	}
}

// RemoveCrawl deletes one crawl.
func RemoveCrawl(svc CrawlActions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !respondFailure(c, svc.RemoveCrawl(c.Request.Context(), c.Param("id"))) {
			return
		}
		c.JSON(http.StatusOK, models.OperationSuccessResponse{Success: true})
	}
}

func respondCrawl(c *gin.Context, st CrawlReader, id string) {
	crawl, ok := st.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "crawl not found"})
		return
	}
	c.JSON(http.StatusOK, crawl)
}

// respondFailure writes the error reply for a failed or suppressed action and
// reports whether the caller should continue with a success reply.
func respondFailure(c *gin.Context, res actions.Result) bool {
	if res.Suppressed() {
		c.JSON(http.StatusConflict, gin.H{"error": "request already in flight"})
		return false
	}
	if res.Err == nil {
		return true
	}

	status := http.StatusBadGateway
	var apiErr *client.APIError
	switch {
	case errors.Is(res.Err, actions.ErrInvalidCrawl):
		status = http.StatusBadRequest
	case errors.As(res.Err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		status = apiErr.Status
	}
	c.JSON(status, gin.H{"error": client.UserMessage(res.Err)})
	return false
}
