package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler streams change notices as server-sent events.
type EventsHandler struct {
	watcher   Watcher
	heartbeat time.Duration
	logger    zerolog.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(watcher Watcher, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		watcher:   watcher,
		heartbeat: heartbeatInterval,
		logger:    logger.With().Str("handler", "events").Logger(),
	}
}

// Stream handles GET /api/events. Each notice names the scope that changed;
// the client re-reads that part of the state.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	changes, stop := h.watcher.Watch()
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.Warn().Err(err).Msg("streaming not supported")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode change")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
