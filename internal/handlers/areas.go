package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"fieldwatch-backend/pkg/utils"
)

type AreaSummary struct {
	Area   string `json:"area"`
	Total  int    `json:"total"`
	Online int    `json:"online"`
	Busy   int    `json:"busy"`
	Free   int    `json:"free"`
	Stale  int    `json:"stale"`
}

type AreaSummaryResponse struct {
	Areas       []AreaSummary `json:"areas"`
	RefreshedAt string        `json:"refreshed_at"`
}

// AreasSummary rolls the engineer table up per area. Engineers with no area
// on their latest heartbeat land in an "unknown" bucket.
func AreasSummary(snap SnapshotProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !snap.Ready() {
			utils.RespondError(w, http.StatusServiceUnavailable, "Snapshot not ready yet")
			return
		}

		s := snap.Current()

		buckets := make(map[string]*AreaSummary)
		for i := range s.Engineers {
			e := &s.Engineers[i]

			area := "unknown"
			if e.Area != nil && strings.TrimSpace(*e.Area) != "" {
				area = strings.TrimSpace(*e.Area)
			}

			b, ok := buckets[area]
			if !ok {
				b = &AreaSummary{Area: area}
				buckets[area] = b
			}

			b.Total++
			if e.Online {
				b.Online++
			}
			if e.Busy {
				b.Busy++
			}
			if e.Free {
				b.Free++
			}
			if e.PingStale {
				b.Stale++
			}
		}

		areas := make([]AreaSummary, 0, len(buckets))
		for _, b := range buckets {
			areas = append(areas, *b)
		}
		sort.Slice(areas, func(i, j int) bool { return areas[i].Area < areas[j].Area })

		utils.JSON(w, http.StatusOK, AreaSummaryResponse{
			Areas:       areas,
			RefreshedAt: s.LastRefresh.UTC().Format(time.RFC3339),
		})
	}
}
