package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"parts-assistant/internal/application/port/input"
	"parts-assistant/internal/domain/entity"
)

type chatRequest struct {
	Messages []entity.Message `json:"messages"`
}

// handleChat streams the assistant response as server-sent events, one
// event per line in the form "data: {json}\n\n".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(event input.StreamEvent) {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("failed to encode stream event", "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	// A stalled provider or a hung stream must not hold the request open
	// forever; the deadline cancels everything downstream.
	ctx, cancel := context.WithTimeout(r.Context(), s.chatTimeout)
	defer cancel()

	if err := s.chat.Stream(ctx, req.Messages, emit); err != nil {
		s.logger.Error("chat stream ended with error", "error", err)
	}
}
