// Package api implements the admin HTTP surface: queue dashboard, health
// and metrics. The tenant-facing REST API lives in a separate service.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propertyhub.app/cache"
	"propertyhub.app/config"
	"propertyhub.app/queue"
)

// Server represents the admin HTTP server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	registry *queue.DashboardRegistry
	store    *cache.Store
}

// NewServer creates and configures a new admin server
func NewServer(cfg *config.Config, registry *queue.DashboardRegistry, store *cache.Store) *Server {
	router := gin.Default()

	server := &Server{
		router:   router,
		config:   cfg,
		registry: registry,
		store:    store,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	admin := s.router.Group("/admin")
	{
		admin.GET("/queues", s.getQueues)
	}

	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// getQueues returns the dashboard view of every registered queue. The
// panel set reflects whatever queues have been constructed so far.
func (s *Server) getQueues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"queues": s.registry.Snapshots(),
	})
}

// health reports liveness plus cache backend reachability. An unreachable
// cache is reported degraded, not failing: the cache layer never gates
// request serving.
func (s *Server) health(c *gin.Context) {
	status := "ok"
	cacheStatus := "ok"
	if err := s.store.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		cacheStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"cache":  cacheStatus,
	})
}

// Start begins serving on the configured port
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// Router exposes the underlying engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
