// Package api serves the monitor's HTTP interface: a read view of the
// synchronized crawl store, Prometheus metrics and crawl controls.
package api

import (
	"crawl-mgmt-go/pkg/api/handlers"
	"crawl-mgmt-go/pkg/api/middleware"
	"crawl-mgmt-go/pkg/metrics"
	"crawl-mgmt-go/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the router.
type Options struct {
	// Token guards mutating routes. Empty disables auth.
	Token  string
	Logger *zap.Logger
	// CreateDefaults supplies num_browsers and num_tabs for create bodies
	// that omit them.
	CreateDefaults models.CreateCrawlRequest
}

func NewRouter(st handlers.CrawlReader, svc handlers.CrawlActions, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))

	// Health check and metrics
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	v1 := router.Group("/api/v1")
	{
		crawls := v1.Group("/crawls")
		{
			crawls.GET("", handlers.ListCrawls(st))
			crawls.GET("/:id", handlers.GetCrawl(st))

			write := crawls.Group("")
			write.Use(middleware.RequireToken(opts.Token))
			write.POST("", handlers.CreateCrawl(svc, st, opts.CreateDefaults))
			write.POST("/:id/refresh", handlers.RefreshCrawl(svc, st))
			write.POST("/:id/start", handlers.StartCrawl(svc, st))
			write.POST("/:id/stop", handlers.StopCrawl(svc, st))
			write.DELETE("/:id", handlers.RemoveCrawl(svc))
		}

		v1.GET("/notifications", handlers.ListNotifications(st))
	}

	return router
}
