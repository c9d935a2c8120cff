// Package server exposes the SoundShelf HTTP API.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ochiba/soundshelf/config"
	"github.com/ochiba/soundshelf/internal/acquire"
	"github.com/ochiba/soundshelf/internal/ratelimit"
	"github.com/ochiba/soundshelf/internal/store"
	"github.com/ochiba/soundshelf/internal/validate"
)

// Per-action cooldowns between requests from the same client.
const (
	submitCooldown   = 30 * time.Second
	likeCooldown     = 2 * time.Second
	downloadCooldown = 10 * time.Second
)

// Server handles HTTP requests for the crate
type Server struct {
	cfg          *config.Config
	router       *gin.Engine
	store        store.TrackStore
	validator    *validate.Validator
	orchestrator *acquire.Orchestrator

	// One limiter per action class; they never share state.
	submitLimiter   *ratelimit.Limiter
	likeLimiter     *ratelimit.Limiter
	downloadLimiter *ratelimit.Limiter
}

// New creates a new HTTP server instance
func New(cfg *config.Config, trackStore store.TrackStore, validator *validate.Validator, orchestrator *acquire.Orchestrator) *Server {
	router := gin.Default()

	server := &Server{
		cfg:             cfg,
		router:          router,
		store:           trackStore,
		validator:       validator,
		orchestrator:    orchestrator,
		submitLimiter:   ratelimit.New(submitCooldown),
		likeLimiter:     ratelimit.New(likeCooldown),
		downloadLimiter: ratelimit.New(downloadCooldown),
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(s.corsMiddleware())

	router.GET("/", s.health)
	router.GET("/tracks", s.listTracks)
	router.POST("/tracks", s.submitTrack)
	router.POST("/tracks/:id/like", s.likeTrack)
	router.POST("/tracks/:id/download-audio", s.triggerDownload)

	// Preview clips are plain static files keyed by embed ID.
	router.Static("/audio", s.cfg.Storage.AudioDir)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.cfg.Server.CORSOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.router.Run(":" + s.cfg.Server.Port)
}
