package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/rerate/internal/engine"
	"github.com/wonny/rerate/pkg/logger"
)

// InstrumentHandler serves per-instrument state and card history
// SSOT: instrument API handlers live in this struct and nowhere else
type InstrumentHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewInstrumentHandler creates a new instrument handler
func NewInstrumentHandler(eng *engine.Engine, log *logger.Logger) *InstrumentHandler {
	return &InstrumentHandler{
		engine: eng,
		logger: log,
	}
}

// GetState runs the full pipeline for one symbol on demand
// GET /api/v1/instruments/{symbol}
func (h *InstrumentHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	state, card, err := h.engine.CheckInstrument(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Instrument check failed")
		respondError(w, http.StatusBadGateway, "Failed to evaluate instrument")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
		"card":  card,
	})
}

// GetRecentCards returns the latest persisted cards for a symbol
// GET /api/v1/instruments/{symbol}/cards?limit=10
func (h *InstrumentHandler) GetRecentCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	cards, err := h.engine.RecentCards(ctx, symbol, limit)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Card history load failed")
		respondError(w, http.StatusInternalServerError, "Failed to load card history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"cards":  cards,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
