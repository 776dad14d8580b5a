package http

import (
	"net/http"
	"time"

	"masareef/internal/log"
)

const streamHeartbeat = 30 * time.Second

// handleEventStream streams the caller's change events as server-sent events.
// The subscription is canceled when the client disconnects; slow consumers
// silently drop events rather than blocking the publisher.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "event stream not available")
		return
	}

	rc := http.NewResponseController(w)
	ownerID := ownerFromContext(r.Context())

	events, cancel := s.hub.Subscribe(ownerID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	logger := log.FromContext(r.Context())
	logger.InfoContext(r.Context(), "Event stream opened", log.FieldOwnerID, ownerID)

	for {
		select {
		case <-r.Context().Done():
			logger.InfoContext(r.Context(), "Event stream closed", log.FieldOwnerID, ownerID)
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			_ = rc.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			payload, err := e.ToJSON()
			if err != nil {
				logger.ErrorContext(r.Context(), "Failed to encode change event", log.FieldError, err)
				continue
			}
			if _, err := w.Write([]byte("event: change\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
