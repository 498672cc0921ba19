// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/okian/jobmarket/internal/domain/model"
)

const (
	defaultCyclesLimit = 10
	maxCyclesLimit     = 100
)

// SnapshotHandler serves the last published datasets.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleLatest handles GET /api/snapshot requests.
func (h *SnapshotHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_snapshot"
	b, err := h.deps.Latest(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleDataset handles GET /api/snapshot/{kind} requests.
func (h *SnapshotHandler) HandleDataset(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dataset"
	kind, err := model.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	d, err := h.deps.Dataset(r.Context(), kind)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleRecent handles GET /api/cycles?limit=N requests.
func (h *SnapshotHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_cycles"
	n := defaultCyclesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := validate.Var(v, "min=1,max="+strconv.Itoa(maxCyclesLimit)); err != nil {
			writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, err))
			return
		}
		n = v
	}
	refs, err := h.deps.Recent(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}
