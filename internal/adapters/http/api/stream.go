// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/metrics"
)

const (
	defaultStreamBuffer = 32
	keepAliveInterval   = 15 * time.Second
)

// Stream event names.
const (
	EventDataset = "dataset"
	EventCycle   = "cycle"
)

type streamEvent struct {
	Name string
	Data any
}

// CycleEvent closes the datasets of one cycle on the stream.
type CycleEvent struct {
	ID          uuid.UUID    `json:"id"`
	Cycle       uint64       `json:"cycle"`
	Reason      model.Reason `json:"reason"`
	Filter      filter.State `json:"filter"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// StreamHub fans published datasets out to Server-Sent Events clients.
// It is a view: subscribe it to every dataset kind and to cycle completion.
// A client that falls behind by more than its buffer loses events.
type StreamHub struct {
	mu        sync.RWMutex
	clients   map[uint64]chan streamEvent
	nextID    uint64
	buffer    int
	done      chan struct{}
	closeOnce sync.Once
}

// NewStreamHub returns a hub with a per-client buffer of buffer events.
func NewStreamHub(buffer int) *StreamHub {
	if buffer < 1 {
		buffer = defaultStreamBuffer
	}
	return &StreamHub{
		clients: make(map[uint64]chan streamEvent),
		buffer:  buffer,
		done:    make(chan struct{}),
	}
}

// Close ends every open stream and refuses new ones. It may be called more
// than once. Register it with http.Server.RegisterOnShutdown.
func (h *StreamHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Publish forwards one dataset to every client.
func (h *StreamHub) Publish(_ context.Context, d model.Dataset) error {
	h.broadcast(streamEvent{Name: EventDataset, Data: d})
	return nil
}

// CycleCompleted tells every client that a cycle's datasets are complete.
func (h *StreamHub) CycleCompleted(_ context.Context, b *model.Bundle) {
	h.broadcast(streamEvent{Name: EventCycle, Data: CycleEvent{
		ID:          b.ID,
		Cycle:       b.Cycle,
		Reason:      b.Reason,
		Filter:      b.Filter,
		GeneratedAt: b.GeneratedAt,
	}})
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *StreamHub) broadcast(ev streamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			metrics.RecordStreamDropped()
		}
	}
}

func (h *StreamHub) subscribe() (<-chan streamEvent, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan streamEvent, h.buffer)
	h.clients[id] = ch
	metrics.UpdateStreamSubscribers(len(h.clients))
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, id)
		metrics.UpdateStreamSubscribers(len(h.clients))
		h.mu.Unlock()
	}
}

// HandleStream handles GET /api/stream requests.
func (h *StreamHub) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	select {
	case <-h.done:
		writeError(w, http.StatusServiceUnavailable, "unavailable", NewKind(op, ErrUnavailable))
		return
	default:
	}
	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", WrapKind(op, ErrStreaming, err))
		return
	}
	events, cancel := h.subscribe()
	defer cancel()

	if err := sse.comment("connected"); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := sse.comment("ping"); err != nil {
				return
			}
		case ev := <-events:
			if err := sse.writeEvent(ev.Name, ev.Data); err != nil {
				return
			}
		}
	}
}

// sseWriter writes Server-Sent Events.
type sseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, err
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if err := rc.Flush(); err != nil {
		return nil, err
	}
	return &sseWriter{w: w, rc: rc}, nil
}

func (s *sseWriter) writeEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *sseWriter) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.rc.Flush()
}
