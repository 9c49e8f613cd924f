package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-facet-query/internal/metrics"
	"github.com/gcbaptista/go-facet-query/services"
)

// API holds dependencies for API handlers, primarily the translator.
type API struct {
	translator services.Translator
	metrics    *metrics.Collector
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
}

// NewAPI creates a new API handler structure. collector and gatherer may be
// nil, in which case the metrics routes report empty data.
func NewAPI(translator services.Translator, collector *metrics.Collector, gatherer prometheus.Gatherer, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	return &API{
		translator: translator,
		metrics:    collector,
		gatherer:   gatherer,
		logger:     logger,
	}
}

// RouterConfig carries the middleware settings for SetupRouter.
type RouterConfig struct {
	MaxBodyBytes int64
}

// SetupRouter creates a gin engine with the standard middleware and routes.
func SetupRouter(apiHandler *API, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(apiHandler.logger))
	router.Use(CORSMiddleware())
	if cfg.MaxBodyBytes > 0 {
		router.Use(RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	}
	SetupRoutes(router, apiHandler)
	return router
}

// SetupRoutes defines all the API routes of the translator.
func SetupRoutes(router *gin.Engine, apiHandler *API) {
	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Metrics routes
	router.GET("/metrics", apiHandler.GetMetricsHandler)
	router.GET("/metrics/prometheus", gin.WrapH(promhttp.HandlerFor(apiHandler.gatherer, promhttp.HandlerOpts{})))

	// Query translation routes
	queryRoutes := router.Group("/query")
	{
		queryRoutes.POST("/build", apiHandler.BuildQueryHandler)         // options -> structured query + query string
		queryRoutes.POST("/serialize", apiHandler.SerializeQueryHandler) // structured query -> query string
		queryRoutes.POST("/parse", apiHandler.ParseQueryHandler)         // structured query -> options
		queryRoutes.GET("/restore", apiHandler.RestoreQueryHandler)      // ?source=<structured query JSON> -> options
	}

	// Result routes
	router.POST("/results/map", apiHandler.MapResultsHandler)
	router.POST("/search", apiHandler.SearchHandler)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "go-facet-query",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// GetMetricsHandler returns the in-process counters
func (api *API) GetMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.metrics.Snapshot())
}
