package snapshot

import (
	"time"

	"fieldwatch-backend/internal/models"
)

// Snapshot is one complete refresh of the dashboard data. It is never
// mutated after the swap, so readers may hold one across a request.
type Snapshot struct {
	Engineers  []models.EnrichedEngineer
	Sites      []models.SiteRecord
	Warehouses []models.WarehouseRecord

	LastRefresh      time.Time
	RefreshDuration  time.Duration
	LastRefreshError string
}

// OnlineCount returns how many engineers in the snapshot are online.
func (s Snapshot) OnlineCount() int {
	n := 0
	for i := range s.Engineers {
		if s.Engineers[i].Online {
			n++
		}
	}
	return n
}
