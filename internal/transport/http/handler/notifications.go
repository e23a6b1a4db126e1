package handler

import (
	"context"
	"io"
	"net/http"
)

type notificationDispatcher interface {
	HandleRaw(ctx context.Context, raw []byte) error
}

// NotificationHandler accepts engages notifications over HTTP.
type NotificationHandler struct {
	dispatcher notificationDispatcher
}

func NewNotificationHandler(d notificationDispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: d}
}

func (h *NotificationHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if err := h.dispatcher.HandleRaw(r.Context(), raw); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "notification applied"})
}
