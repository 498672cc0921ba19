// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	stream        *StreamHub
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, stream *StreamHub) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, stream: stream}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.statsProvider.GetStats()
	if stats == nil {
		stats = map[string]interface{}{}
	}
	if h.stream != nil {
		stats["streamClients"] = h.stream.Clients()
	}
	writeJSON(w, http.StatusOK, stats)
}
