// Package server exposes the loaded sharding configuration over HTTP for
// inspection and ad-hoc resolution. The configuration is loaded once
// before the server starts and shared read-only across requests.
package server

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Edwinhr716/maxtext/api"
	"github.com/Edwinhr716/maxtext/config"
	"github.com/Edwinhr716/maxtext/envconfig"
	"github.com/Edwinhr716/maxtext/mesh"
	"github.com/Edwinhr716/maxtext/planner"
	"github.com/Edwinhr716/maxtext/sharding"
	"github.com/Edwinhr716/maxtext/version"
)

type Server struct {
	cfg      *config.Config
	resolver *sharding.Resolver
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:      cfg,
		resolver: cfg.Resolver(),
	}
}

// GenerateRoutes builds the HTTP handler for the inspection API.
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowOrigins = envconfig.AllowOrigins

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors.New(corsConfig))

	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "maxtext is running") })

	r.GET("/api/version", s.VersionHandler)
	r.GET("/api/config", s.ConfigHandler)
	r.POST("/api/resolve", s.ResolveHandler)
	r.POST("/api/plan", s.PlanHandler)

	return r
}

// requestID tags each request with a uuid for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version})
}

func (s *Server) ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.ConfigResponse{
		ModelName:              s.cfg.ModelName,
		ShardingStrategy:       s.cfg.ShardingStrategy,
		AttentionKernel:        s.cfg.AttentionKernel,
		AllowSplitPhysicalAxes: s.cfg.AllowSplitPhysicalAxes,
		BatchSize:              s.cfg.BatchSize,
		MeshAxes:               s.cfg.Mesh.Axes(),
		Rules:                  s.cfg.Rules.Rules(),
		DeviceCount:            s.cfg.Mesh.DeviceCount(),
		Warnings:               s.cfg.Report.Warnings,
	})
}

func (s *Server) ResolveHandler(c *gin.Context) {
	var req api.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}
	if len(req.Axes) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: "no tensor axes provided"})
		return
	}

	assignment, err := s.resolver.Resolve(req.Axes)
	if err != nil {
		status := http.StatusBadRequest
		var unknown *mesh.UnknownAxisError
		if errors.As(err, &unknown) {
			status = http.StatusUnprocessableEntity
		}
		c.AbortWithStatusJSON(status, api.Error{Code: int32(status), Message: err.Error()})
		return
	}

	slog.Debug("resolved tensor", "request_id", c.GetString("request_id"), "assignment", assignment.String())

	c.JSON(http.StatusOK, api.ResolveResponse{Assignment: assignment})
}

func (s *Server) PlanHandler(c *gin.Context) {
	var req api.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	plan, err := planner.Build(c.Request.Context(), s.cfg, req.Shape, req.BatchSize)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.PlanResponse{Plan: *plan})
}

// Serve runs the inspection API on the listener until it fails.
func Serve(ln net.Listener, cfg *config.Config) error {
	slog.Info("inspection server listening", "addr", ln.Addr(), "model", cfg.ModelName, "mesh", cfg.Mesh.String())

	cfg.Report.Log()

	srv := &http.Server{
		Handler: NewServer(cfg).GenerateRoutes(),
	}
	return srv.Serve(ln)
}
