package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldwatch-backend/internal/models"
	"fieldwatch-backend/internal/snapshot"
	"fieldwatch-backend/pkg/utils"
)

// SnapshotProvider serves the current dashboard snapshot.
// *snapshot.Poller implements it.
type SnapshotProvider interface {
	Current() snapshot.Snapshot
	Ready() bool
}

type EngineersResponse struct {
	Engineers   []models.EnrichedEngineer `json:"engineers"`
	Count       int                       `json:"count"`
	RefreshedAt string                    `json:"refreshed_at"`
}

// ListEngineers serves the enriched engineer table. Query filters:
// online=true|false, status=busy|free|<raw>, shift=on|off, area=,
// stale=true|false, q=<substring of username or name>.
func ListEngineers(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !snap.Ready() {
			utils.RespondError(w, http.StatusServiceUnavailable, "Snapshot not ready yet")
			return
		}

		s := snap.Current()
		query := r.URL.Query()

		filtered := make([]models.EnrichedEngineer, 0, len(s.Engineers))
		for _, e := range s.Engineers {
			if matchesFilters(e, query) {
				filtered = append(filtered, e)
			}
		}

		utils.JSON(w, http.StatusOK, EngineersResponse{
			Engineers:   filtered,
			Count:       len(filtered),
			RefreshedAt: s.LastRefresh.UTC().Format(time.RFC3339),
		})
	}
}

// GetEngineer serves one engineer by username, matched the same way ids are
// matched everywhere: surrounding whitespace and case are ignored.
func GetEngineer(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !snap.Ready() {
			utils.RespondError(w, http.StatusServiceUnavailable, "Snapshot not ready yet")
			return
		}

		key := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "username")))
		if key == "" {
			utils.RespondError(w, http.StatusBadRequest, "Username is required")
			return
		}

		s := snap.Current()
		for i := range s.Engineers {
			e := &s.Engineers[i]
			if strings.ToLower(strings.TrimSpace(e.Username)) == key {
				utils.JSON(w, http.StatusOK, e)
				return
			}
		}

		utils.RespondError(w, http.StatusNotFound, "Engineer not found")
	}
}

func matchesFilters(e models.EnrichedEngineer, q url.Values) bool {
	if v := q.Get("online"); v != "" {
		if e.Online != (v == "true") {
			return false
		}
	}

	if v := q.Get("status"); v != "" {
		switch v {
		case "busy":
			if !e.Busy {
				return false
			}
		case "free":
			if !e.Free {
				return false
			}
		default:
			if e.Status != v {
				return false
			}
		}
	}

	if v := q.Get("shift"); v != "" {
		switch v {
		case "on":
			if !e.OnShift {
				return false
			}
		case "off":
			if !e.OffShift {
				return false
			}
		}
	}

	if v := q.Get("area"); v != "" {
		if e.Area == nil || !strings.EqualFold(strings.TrimSpace(*e.Area), strings.TrimSpace(v)) {
			return false
		}
	}

	if v := q.Get("stale"); v != "" {
		if e.PingStale != (v == "true") {
			return false
		}
	}

	if v := q.Get("q"); v != "" {
		needle := strings.ToLower(v)
		if !strings.Contains(strings.ToLower(e.Username), needle) &&
			!strings.Contains(strings.ToLower(e.Name), needle) {
			return false
		}
	}

	return true
}
