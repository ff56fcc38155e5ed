package http

import (
	"net/http"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
)

// EventHandler exposes recent car notifications.
type EventHandler struct {
	events RecentEvents
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events RecentEvents) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents handles GET /api/v1/events. Newest first.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.events.Recent())
}
