// Package web serves the site: listing and detail pages, the JSON API used
// for incremental loading, revalidation, the sitemap, health and metrics.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/cache"
	"github.com/user/icebreaker-videos/internal/config"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/revalidate"
	"github.com/user/icebreaker-videos/internal/sitemap"
	"github.com/user/icebreaker-videos/internal/store"
	"github.com/user/icebreaker-videos/internal/tags"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string                 `json:"status"`
	Database string                 `json:"database"`
	Cache    map[string]interface{} `json:"cache"`
	Uptime   string                 `json:"uptime"`
}

// Deps are the collaborators of the server
type Deps struct {
	Store       store.Store
	Engine      *query.Engine
	Tags        *tags.Directory
	Pages       cache.PageCache
	Revalidator *revalidate.Service
	Sitemap     *sitemap.Generator
	Site        config.SiteConfig
	Server      config.ServerConfig
}

// Server handles HTTP requests for the site
type Server struct {
	deps      Deps
	router    *gin.Engine
	server    *http.Server
	views     *views
	startTime time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		deps:      deps,
		router:    gin.New(),
		views:     loadViews(),
		startTime: time.Now(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/sitemap.xml", s.handleSitemap)

	api := r.Group("/api")
	{
		api.GET("/videos", s.handleAPIVideos)
		api.POST("/revalidate", s.handleRevalidate)
		api.GET("/revalidate", s.handleRevalidateInfo)
	}

	pages := r.Group("/", s.pageCache())
	{
		pages.GET("/", s.handleListing(homeSection))
		pages.GET("/shorts", s.handleListing(shortsSection))
		pages.GET("/long-form", s.handleListing(longFormSection))
		pages.GET("/tag/:slugs", s.handleTagListing(homeSection))
		pages.GET("/shorts/tag/:slugs", s.handleTagListing(shortsSection))
		pages.GET("/long-form/tag/:slugs", s.handleTagListing(longFormSection))
		pages.GET("/video/:slug", s.handleVideo)
	}

	r.NoRoute(s.handleNotFound)
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on the configured port
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.deps.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.deps.Server.ReadTimeout,
		WriteTimeout: s.deps.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Int("port", s.deps.Server.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth reports database connectivity, cache health and uptime
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "healthy"
	if err := s.deps.Store.Ping(ctx); err != nil {
		dbStatus = fmt.Sprintf("unhealthy: %v", err)
	}

	status := "healthy"
	if dbStatus != "healthy" {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:   status,
		Database: dbStatus,
		Cache:    s.deps.Pages.Health(ctx),
		Uptime:   s.Uptime().Round(time.Second).String(),
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

// handleSitemap serves the sitemaps.org XML of the site
func (s *Server) handleSitemap(c *gin.Context) {
	entries, err := s.deps.Sitemap.Entries(c.Request.Context())
	if err != nil {
		requestLog(c).Error().Err(err).Msg("Failed to generate sitemap")
		RecordError("sitemap")
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Status(http.StatusOK)
	if err := sitemap.WriteXML(c.Writer, entries); err != nil {
		requestLog(c).Error().Err(err).Msg("Failed to write sitemap")
	}
}

// Uptime returns the server uptime
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
