// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// CatalogHandler serves the position and region enumerations.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandlePositions handles GET /api/positions requests.
func (h *CatalogHandler) HandlePositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Positions())
}

// HandleRegions handles GET /api/regions requests.
func (h *CatalogHandler) HandleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Regions())
}
