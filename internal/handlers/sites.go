package handlers

import (
	"net/http"
	"time"

	"fieldwatch-backend/internal/models"
	"fieldwatch-backend/pkg/utils"
)

type SitesResponse struct {
	Sites       []models.SiteRecord `json:"sites"`
	Count       int                 `json:"count"`
	RefreshedAt string              `json:"refreshed_at"`
}

// ListSites serves the deduplicated site table from the current snapshot.
func ListSites(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !snap.Ready() {
			utils.RespondError(w, http.StatusServiceUnavailable, "Snapshot not ready yet")
			return
		}

		s := snap.Current()
		utils.JSON(w, http.StatusOK, SitesResponse{
			Sites:       s.Sites,
			Count:       len(s.Sites),
			RefreshedAt: s.LastRefresh.UTC().Format(time.RFC3339),
		})
	}
}
