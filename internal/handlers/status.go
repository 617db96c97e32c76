package handlers

import (
	"net/http"
	"time"

	"fieldwatch-backend/pkg/utils"
)

// ClientCounter reports connected dashboard sockets. *websocket.Hub
// implements it.
type ClientCounter interface {
	ClientCount() int
}

type StatusResponse struct {
	LastRefresh       string `json:"last_refresh"`
	RefreshDurationMs int64  `json:"refresh_duration_ms"`
	LastRefreshError  string `json:"last_refresh_error,omitempty"`
	Engineers         int    `json:"engineers"`
	Online            int    `json:"online"`
	Sites             int    `json:"sites"`
	Warehouses        int    `json:"warehouses"`
	WSClients         int    `json:"ws_clients"`
}

// Status reports refresh freshness and table sizes for the ops page.
func Status(snap SnapshotProvider, hub ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := snap.Current()

		resp := StatusResponse{
			RefreshDurationMs: s.RefreshDuration.Milliseconds(),
			LastRefreshError:  s.LastRefreshError,
			Engineers:         len(s.Engineers),
			Online:            s.OnlineCount(),
			Sites:             len(s.Sites),
			Warehouses:        len(s.Warehouses),
		}
		if !s.LastRefresh.IsZero() {
			resp.LastRefresh = s.LastRefresh.UTC().Format(time.RFC3339)
		}
		if hub != nil {
			resp.WSClients = hub.ClientCount()
		}

		utils.JSON(w, http.StatusOK, resp)
	}
}
