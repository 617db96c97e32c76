package handlers

import (
	"net/http"
	"time"

	"fieldwatch-backend/internal/models"
	"fieldwatch-backend/pkg/utils"
)

type WarehousesResponse struct {
	Warehouses  []models.WarehouseRecord `json:"warehouses"`
	Count       int                      `json:"count"`
	RefreshedAt string                   `json:"refreshed_at"`
}

// ListWarehouses serves the active warehouses from the current snapshot.
func ListWarehouses(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !snap.Ready() {
			utils.RespondError(w, http.StatusServiceUnavailable, "Snapshot not ready yet")
			return
		}

		s := snap.Current()
		utils.JSON(w, http.StatusOK, WarehousesResponse{
			Warehouses:  s.Warehouses,
			Count:       len(s.Warehouses),
			RefreshedAt: s.LastRefresh.UTC().Format(time.RFC3339),
		})
	}
}
