package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ochiba/soundshelf/internal/domain"
	"github.com/ochiba/soundshelf/internal/ratelimit"
	"github.com/ochiba/soundshelf/internal/store"
	"github.com/ochiba/soundshelf/internal/validate"
)

// health handles health check requests
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "soundshelf"})
}

// listTracks returns every track, newest first.
func (s *Server) listTracks(c *gin.Context) {
	tracks, err := s.store.List(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list tracks", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tracks"})
		return
	}
	c.JSON(http.StatusOK, tracks)
}

// submitTrack validates a submission, persists it and enqueues preview
// acquisition for qualifying tracks.
func (s *Server) submitTrack(c *gin.Context) {
	if !s.allow(c, s.submitLimiter) {
		return
	}

	var sub domain.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if sub.SpotifyType == "" {
		sub.SpotifyType = domain.SpotifyTypeTrack
	}

	if err := s.validator.Validate(c.Request.Context(), &sub); err != nil {
		s.rejectSubmission(c, err)
		return
	}

	track := &domain.Track{
		ID:           uuid.NewString(),
		Platform:     sub.Platform,
		SpotifyType:  sub.SpotifyType,
		URL:          sub.URL,
		EmbedID:      sub.EmbedID,
		Title:        sub.Title,
		Artist:       sub.Artist,
		ThumbnailURL: sub.ThumbnailURL,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(c.Request.Context(), track); err != nil {
		// Two submissions can race past the duplicate check; the store's
		// uniqueness constraint is the authority.
		if errors.Is(err, store.ErrDuplicateEmbed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Track already exists"})
			return
		}
		slog.Error("Failed to create track", "embedId", sub.EmbedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create track"})
		return
	}

	if track.NeedsPreview() {
		s.orchestrator.Enqueue(track)
	}

	c.JSON(http.StatusCreated, track)
}

// likeTrack increments a track's like counter. Repeated calls each count,
// bounded only by the per-client cooldown.
func (s *Server) likeTrack(c *gin.Context) {
	if !s.allow(c, s.likeLimiter) {
		return
	}

	track, err := s.store.IncrementLikes(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		slog.Error("Failed to increment likes", "trackId", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like track"})
		return
	}

	c.JSON(http.StatusOK, track)
}

// triggerDownload re-enqueues acquisition for a track without a preview.
// It reports the enqueue, not the eventual outcome.
func (s *Server) triggerDownload(c *gin.Context) {
	if !s.allow(c, s.downloadLimiter) {
		return
	}

	track, err := s.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
			return
		}
		slog.Error("Failed to load track", "trackId", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load track"})
		return
	}

	if track.AudioURL != nil {
		c.JSON(http.StatusOK, gin.H{"status": "already_downloaded", "audio_url": *track.AudioURL})
		return
	}

	s.orchestrator.Enqueue(track)
	c.JSON(http.StatusOK, gin.H{"status": "downloading"})
}

// allow enforces the limiter for the requesting client, writing the 429
// response itself when the client is throttled.
func (s *Server) allow(c *gin.Context, limiter *ratelimit.Limiter) bool {
	err := limiter.Allow(clientKey(c))
	if err == nil {
		return true
	}

	var throttled *ratelimit.ThrottledError
	if errors.As(err, &throttled) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Slow down! Try again in %ds.", throttled.RetryAfter),
		})
		return false
	}

	slog.Error("Rate limiter failure", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	return false
}

// rejectSubmission maps validation errors to HTTP statuses.
func (s *Server) rejectSubmission(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validate.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, validate.ErrInvalidInput),
		errors.Is(err, validate.ErrPolicyViolation),
		errors.Is(err, validate.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Validation failed unexpectedly", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
