package handlers

import (
	"net/http"

	"fieldwatch-backend/pkg/utils"
)

// Health is the probe endpoint. It reports 503 until the first successful
// refresh and again whenever the most recent refresh failed, so orchestrators
// stop routing to an instance serving stale data.
func Health(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := snap.Current()

		switch {
		case s.LastRefresh.IsZero():
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		case s.LastRefreshError != "":
			utils.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  s.LastRefreshError,
			})
		default:
			utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}
	}
}
