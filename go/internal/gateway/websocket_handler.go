package gateway

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades display clients.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{connectionManager: cm}
}

// HandleDisplayConnection serves GET /ws/display. The optional "display"
// query parameter names the client in logs and stats.
func (h *WebSocketHandler) HandleDisplayConnection(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("display")
	if name == "" {
		name = "anonymous"
	}

	// The upgrader has already written an HTTP error on failure.
	if err := h.connectionManager.UpgradeConnection(w, r, name); err != nil {
		log.Error().Err(err).Str("display", name).Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats serves GET /ws/stats.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.Stats())
}
