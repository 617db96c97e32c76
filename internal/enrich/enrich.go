package enrich

import (
	"fmt"
	"math"
	"time"

	"fieldwatch-backend/internal/geo"
	"fieldwatch-backend/internal/models"
)

// Default classification windows. Deployments override these via config.
const (
	DefaultOnlineWindow = 15 * time.Minute
	DefaultStaleWindow  = 30 * time.Minute
)

// Reasons shown in place of a distance when none can be computed.
const (
	ReasonNoGPS       = "no GPS"
	ReasonMissingSite = "missing coordinates"
)

// Target resolution paths.
const (
	TargetAssigned = "assigned"
	TargetNearest  = "nearest"
)

// Enricher derives the dashboard fields from raw rows. Thresholds are fixed
// at construction; the pipeline itself is pure and takes the clock as an
// argument so tests control time.
type Enricher struct {
	OnlineWindow time.Duration
	StaleWindow  time.Duration
}

// NewEnricher builds an Enricher, substituting the default windows for zero
// or negative values.
func NewEnricher(onlineWindow, staleWindow time.Duration) *Enricher {
	if onlineWindow <= 0 {
		onlineWindow = DefaultOnlineWindow
	}
	if staleWindow <= 0 {
		staleWindow = DefaultStaleWindow
	}
	return &Enricher{OnlineWindow: onlineWindow, StaleWindow: staleWindow}
}

// FormatDistance renders a distance for display: two decimals with a km
// suffix, "N/A" for non-finite values. Any magnitude is shown as-is. An
// earlier build replaced everything over 200 km with a warning string,
// which hid real data; that behavior must not come back.
func FormatDistance(km float64) string {
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f km", km)
}

// EnrichAll runs the pipeline over a reduced row set. Rows must already be
// one-per-username and sites deduplicated (see LatestPerEngineer and
// DedupeSites).
func (e *Enricher) EnrichAll(rows []models.EngineerStatus, sites []models.SiteRecord, warehouses []models.WarehouseRecord, now time.Time) []models.EnrichedEngineer {
	out := make([]models.EnrichedEngineer, 0, len(rows))
	for _, row := range rows {
		out = append(out, e.Enrich(row, sites, warehouses, now))
	}
	return out
}

// Enrich derives every dashboard field for one engineer row.
func (e *Enricher) Enrich(row models.EngineerStatus, sites []models.SiteRecord, warehouses []models.WarehouseRecord, now time.Time) models.EnrichedEngineer {
	enriched := models.EnrichedEngineer{EngineerStatus: row}

	enriched.Online = e.IsOnline(row.LastActiveAt, now)
	if t, ok := ParseLastActive(row.LastActiveAt); ok {
		mins := now.Sub(t).Minutes()
		enriched.MinutesSinceActive = &mins
	}
	enriched.PingStale, enriched.PingStaleReason = e.ClassifyPing(row.LastActiveAt, now)

	state := ClassifyAssignment(row)
	enriched.Busy = state.Busy
	enriched.Free = state.Free
	enriched.OffShift = state.OffShift
	enriched.DeviceSilent = row.Status == StatusDeviceSilent

	e.resolveTarget(&enriched, sites, warehouses)
	enriched.StatusLabel = buildStatusLabel(&enriched)

	return enriched
}

// resolveTarget picks the site the engineer is measured against and fills
// in the distance fields. Resolution order: the assigned site when it has
// usable coordinates, else the nearest site that does. The via-warehouse
// flag turns the distance into the sum of the engineer→warehouse and
// warehouse→site legs.
func (e *Enricher) resolveTarget(en *models.EnrichedEngineer, sites []models.SiteRecord, warehouses []models.WarehouseRecord) {
	own, ownOK := geo.FromPtr(en.Latitude, en.Longitude)
	if !ownOK {
		en.DistanceLabel = ReasonNoGPS
		return
	}

	var (
		target      *models.SiteRecord
		source      string
		targetCoord geo.Coord
		targetOK    bool
	)

	if en.AssignedSiteID != nil {
		if s := FindSiteByID(sites, *en.AssignedSiteID); s != nil {
			target = s
			source = TargetAssigned
			targetCoord, targetOK = geo.FromPtr(s.Latitude, s.Longitude)
		}
	}

	// Assigned site unmatched or without coordinates: fall back to the
	// nearest site that has them.
	if !targetOK {
		if nearest := FindNearestSite(own, sites); nearest != nil {
			site := nearest.Site
			target = &site
			source = TargetNearest
			targetCoord, targetOK = geo.FromPtr(site.Latitude, site.Longitude)
		}
	}

	if target == nil {
		en.DistanceLabel = ReasonMissingSite
		return
	}

	id := target.ID
	name := target.DisplayName()
	en.TargetSiteID = &id
	en.TargetSiteName = &name
	en.TargetSource = source

	if !targetOK {
		// The assigned site is known but has no usable coordinates and no
		// other site does either.
		en.DistanceLabel = ReasonMissingSite
		return
	}

	distance := geo.DistanceKm(own, targetCoord)

	if en.ViaWarehouse && en.WarehouseName != nil {
		if wh := FindWarehouseByName(warehouses, *en.WarehouseName); wh != nil {
			if whCoord, ok := geo.FromPtr(wh.Latitude, wh.Longitude); ok {
				distance = geo.DistanceKm(own, whCoord) + geo.DistanceKm(whCoord, targetCoord)
			}
		}
	}

	en.DistanceKm = &distance
	en.DistanceLabel = FormatDistance(distance)
}

// buildStatusLabel combines the resolution path with the formatted
// distance into the line shown in the dashboard table.
func buildStatusLabel(en *models.EnrichedEngineer) string {
	if en.DistanceKm == nil {
		return en.DistanceLabel
	}

	name := ""
	if en.TargetSiteName != nil {
		name = *en.TargetSiteName
	}

	switch {
	case en.TargetSource == TargetAssigned && en.Busy:
		return fmt.Sprintf("Busy at site %s (%s)", name, en.DistanceLabel)
	case en.TargetSource == TargetAssigned:
		return fmt.Sprintf("Assigned site %s (%s)", name, en.DistanceLabel)
	case en.Free:
		return fmt.Sprintf("Free, nearest site %s (%s)", name, en.DistanceLabel)
	default:
		return fmt.Sprintf("Nearest site %s (%s)", name, en.DistanceLabel)
	}
}
