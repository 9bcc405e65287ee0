package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/rerate/internal/engine"
	"github.com/wonny/rerate/pkg/logger"
)

// FeedHandler serves the daily clustered feed
// SSOT: feed API handlers live in this struct and nowhere else
type FeedHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(eng *engine.Engine, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		engine: eng,
		logger: log,
	}
}

// GetToday returns today's feed, serving the cached copy when available
// GET /api/v1/feed
func (h *FeedHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := time.Now()

	if cached, ok := h.engine.CachedFeed(ctx, today); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	feed, err := h.engine.BuildFeed(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Feed build failed")
		respondError(w, http.StatusInternalServerError, "Failed to build feed")
		return
	}

	respondJSON(w, http.StatusOK, feed)
}

// Rebuild forces a fresh feed build, bypassing the cache
// POST /api/v1/feed/rebuild
func (h *FeedHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	feed, err := h.engine.BuildFeed(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Feed rebuild failed")
		respondError(w, http.StatusInternalServerError, "Failed to rebuild feed")
		return
	}

	respondJSON(w, http.StatusOK, feed)
}
