// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/logger"
)

const maxBodyBytes = 64 << 10

// bound is a salary bound that may arrive as a JSON number or string.
// Anything else decodes to an empty bound and falls back to the default.
type bound string

func (b *bound) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = bound(s)
		return nil
	}
	if raw == "null" || strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		*b = ""
		return nil
	}
	*b = bound(raw)
	return nil
}

// filterRequest mirrors the OpenAPI schema for POST /api/filter.
type filterRequest struct {
	MinSalary bound    `json:"min_salary"`
	MaxSalary bound    `json:"max_salary"`
	Selected  []string `json:"selected" validate:"max=64,dive,max=64"`
}

// salaryRequest mirrors the OpenAPI schema for POST /api/filter/salary.
type salaryRequest struct {
	MinSalary *int `json:"min_salary" validate:"required"`
	MaxSalary *int `json:"max_salary" validate:"required"`
}

// FilterHandler turns filter changes into orchestrator triggers.
type FilterHandler struct {
	deps    FilterDependencies
	timeout time.Duration
	logger  logger.Logger
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(deps FilterDependencies, timeout time.Duration, l logger.Logger) *FilterHandler {
	return &FilterHandler{deps: deps, timeout: timeout, logger: l}
}

// HandleGetFilter handles GET /api/filter requests.
func (h *FilterHandler) HandleGetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Filter())
}

// HandleReplaceFilter handles POST /api/filter requests.
func (h *FilterHandler) HandleReplaceFilter(w http.ResponseWriter, r *http.Request) {
	const op = "api.replace_filter"
	var req filterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	st := filter.Parse(string(req.MinSalary), string(req.MaxSalary), req.Selected, h.deps.Defaults())
	h.run(w, r, op, func(ctx context.Context) (*model.Bundle, error) {
		return h.deps.OnFilterChanged(ctx, st)
	})
}

// HandleSetSalary handles POST /api/filter/salary requests.
func (h *FilterHandler) HandleSetSalary(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_salary"
	var req salaryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.run(w, r, op, func(ctx context.Context) (*model.Bundle, error) {
		return h.deps.SetSalaryRange(ctx, *req.MinSalary, *req.MaxSalary)
	})
}

// HandleTogglePosition handles POST /api/positions/{key}/toggle requests.
func (h *FilterHandler) HandleTogglePosition(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_position"
	key := strings.TrimSpace(r.PathValue("key"))
	if err := validate.Var(key, "required,max=64,printascii"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	h.run(w, r, op, func(ctx context.Context) (*model.Bundle, error) {
		return h.deps.TogglePosition(ctx, market.PositionKey(key))
	})
}

// HandleRefresh handles POST /api/refresh requests.
func (h *FilterHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	h.run(w, r, op, h.deps.Refresh)
}

// run waits for the cycle triggered by fn and writes its bundle.
func (h *FilterHandler) run(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context) (*model.Bundle, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	b, err := fn(ctx)
	if err != nil {
		h.logger.Debug(ctx, "filter change failed", logger.String("op", op), logger.Error(err))
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// decode reads a bounded JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
