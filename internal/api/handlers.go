package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/fqdngen/internal/batch"
	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/model"
	"github.com/martinsuchenak/fqdngen/internal/storage"
)

// Checker runs one batch of rows; satisfied by batch.Coordinator.
type Checker interface {
	Run(ctx context.Context, rows []model.Row) (*model.Run, error)
}

// Handler handles HTTP requests
type Handler struct {
	storage *storage.Storage // nil disables run history
	checker Checker
}

// NewHandler creates a new API handler
func NewHandler(store *storage.Storage, checker Checker) *Handler {
	return &Handler{storage: store, checker: checker}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checks", h.runCheck)
	mux.HandleFunc("GET /api/runs", h.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.getRun)
	mux.HandleFunc("GET /api/health", h.health)
}

type checkRequest struct {
	Rows []model.Row `json:"rows"`
}

func (h *Handler) runCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.checker.Run(r.Context(), req.Rows)
	if errors.Is(err, batch.ErrNoRows) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("Check failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.storage != nil {
		if err := h.storage.SaveRun(run); err != nil {
			log.Error("Failed to store run", "run_id", run.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		http.Error(w, "run history is disabled", http.StatusServiceUnavailable)
		return
	}

	runs, err := h.storage.ListRuns()
	if err != nil {
		log.Error("Failed to list runs", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}

	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		http.Error(w, "run history is disabled", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	run, err := h.storage.GetRun(id)
	if err != nil {
		log.Error("Failed to load run", "run_id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
