package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/scout/internal/catalog"
	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/session"
	"github.com/fortuna/scout/internal/similarity"
)

// Lookuper resolves the public profile of one player
type Lookuper interface {
	Lookup(ctx context.Context, name string) enrich.Result
}

// HealthChecker reports the state of an optional backend
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	provider similarity.Provider
	enricher Lookuper
	manager  *session.Manager
	backends map[string]HealthChecker
}

// NewHandler creates a new handler
func NewHandler(provider similarity.Provider, enricher Lookuper, manager *session.Manager) *Handler {
	return &Handler{
		provider: provider,
		enricher: enricher,
		manager:  manager,
		backends: make(map[string]HealthChecker),
	}
}

// AddBackend includes a backend in the health report
func (h *Handler) AddBackend(name string, hc HealthChecker) {
	h.backends[name] = hc
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	backends := make(map[string]string, len(h.backends))
	for name, hc := range h.backends {
		if err := hc.HealthCheck(r.Context()); err != nil {
			backends[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		backends[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":   state,
		"service":  "scout",
		"version":  "1.0.0",
		"backends": backends,
	})
}

// GetPositions returns every position with its label
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.Positions())
}

// GetRoster returns the players of a position, narrowed by the q parameter
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	label, ok := catalog.Label(code)
	if !ok {
		respondError(w, http.StatusNotFound, "Position not found", fmt.Errorf("unknown position %q", code))
		return
	}

	query := r.URL.Query().Get("q")
	players := catalog.Search(code, query)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"position": code,
		"label":    label,
		"query":    query,
		"players":  players,
		"count":    len(players),
	})
}

// GetSimilarPlayers returns the similarity list of a player
func (h *Handler) GetSimilarPlayers(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	similar, err := h.provider.FindSimilar(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch similar players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player":  name,
		"similar": similar,
		"count":   len(similar),
	})
}

// GetUniqueTraits returns the traits that set a player apart
func (h *Handler) GetUniqueTraits(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	traits, err := h.provider.UniqueTraits(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch unique traits", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player": name,
		"traits": traits,
	})
}

// GetComparison returns the trait and stat comparison of two players
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, other := vars["name"], vars["other"]

	cmp, ok, err := h.provider.GetComparisonStats(r.Context(), name, other)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch comparison", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "Comparison not found", fmt.Errorf("no comparison for %s and %s", name, other))
		return
	}

	respondJSON(w, http.StatusOK, cmp)
}

// GetPlayerInfo returns image and team of a player. Lookup failures
// produce null fields, never an error status.
func (h *Handler) GetPlayerInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	respondJSON(w, http.StatusOK, h.enricher.Lookup(r.Context(), name))
}

// selectionRequest is the body of POST /session
type selectionRequest struct {
	Position string `json:"position"`
	Player   string `json:"player"`
}

// CreateSelection starts a new selection and returns its initial snapshot
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, err := h.manager.Select(r.Context(), req.Position, req.Player)
	if err != nil {
		respondError(w, selectionStatus(err), "Failed to start selection", err)
		return
	}

	respondJSON(w, http.StatusAccepted, snap)
}

// GetSelection returns the current selection. With wait=true it blocks
// until enrichment of the current selection completes.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	if !wait {
		snap, ok := h.manager.Current()
		if !ok {
			respondError(w, http.StatusNotFound, "No active selection", session.ErrNoSelection)
			return
		}
		respondJSON(w, http.StatusOK, snap)
		return
	}

	snap, err := h.manager.Wait(r.Context(), h.manager.CurrentID())
	if err != nil {
		respondError(w, selectionStatus(err), "Failed to wait for selection", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// selectionStatus maps session errors to HTTP status codes
func selectionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrMissingSelection):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrUnknownPosition), errors.Is(err, session.ErrNoSelection):
		return http.StatusNotFound
	case errors.Is(err, session.ErrPlayerNotInRoster):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = strings.TrimSpace(err.Error())
	}

	json.NewEncoder(w).Encode(response)
}
