package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/stockwatch/internal/domain/model"
)

// RunStarter is the subset of Dependencies needed by the runs handler.
type RunStarter interface {
	RunOnce(ctx context.Context) (*model.RunOutcome, error)
	LastOutcome() *model.RunOutcome
}

// RunsHandler triggers runs and exposes the last outcome.
type RunsHandler struct {
	deps RunStarter
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunStarter) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleLast handles GET /runs/last requests.
func (h *RunsHandler) HandleLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := h.deps.LastOutcome()
	if out == nil {
		writeError(w, http.StatusNotFound, "not_found", ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTrigger handles POST /runs requests. The run is detached from the
// request so a dropped client does not abort it.
func (h *RunsHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	out, err := h.deps.RunOnce(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, model.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run_in_progress", err)
	case errors.Is(err, model.ErrSourceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, out)
	case err != nil && out == nil:
		writeError(w, http.StatusInternalServerError, "run_failed", err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}
