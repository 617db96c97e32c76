package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"fieldwatch-backend/internal/enrich"
	"fieldwatch-backend/internal/geo"
	"fieldwatch-backend/internal/models"
	"fieldwatch-backend/internal/routing"
	"fieldwatch-backend/pkg/utils"
)

// RouteSelector races the routing engines over a leg sequence.
// *routing.Selector implements it.
type RouteSelector interface {
	SelectBestRoute(ctx context.Context, legs []routing.Leg) (*models.RouteResult, error)
}

// CoordPayload is a nullable coordinate pair from a request body. Both
// components must be present and finite to be usable.
type CoordPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SelectRouteRequest accepts two forms. The engineer form names a username
// and lets the snapshot resolve the endpoints; site_id overrides the
// engineer's resolved target. The explicit form carries raw coordinates.
type SelectRouteRequest struct {
	Username string `json:"username"`
	SiteID   string `json:"site_id"`

	From *CoordPayload `json:"from"`
	To   *CoordPayload `json:"to"`
	Via  *CoordPayload `json:"via"`
}

type RouteResponse struct {
	Route     *models.RouteResult `json:"route"`
	Legs      int                 `json:"legs"`
	Username  string              `json:"username,omitempty"`
	SiteID    string              `json:"site_id,omitempty"`
	SiteName  string              `json:"site_name,omitempty"`
	Warehouse string              `json:"warehouse,omitempty"`
}

// SelectRoute produces a best-effort driving route. Engine failures never
// surface as HTTP errors; the selector degrades to the other engine or a
// straight line and says so in the result's warning.
func SelectRoute(snap SnapshotProvider, selector RouteSelector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var (
			legs []routing.Leg
			resp RouteResponse
		)

		switch {
		case strings.TrimSpace(req.Username) != "":
			status, msg := resolveEngineerLegs(snap, &req, &legs, &resp)
			if status != 0 {
				utils.RespondError(w, status, msg)
				return
			}
		case req.From != nil || req.To != nil:
			status, msg := resolveExplicitLegs(&req, &legs)
			if status != 0 {
				utils.RespondError(w, status, msg)
				return
			}
		default:
			utils.RespondError(w, http.StatusBadRequest, "Provide either a username or from/to coordinates")
			return
		}

		result, err := selector.SelectBestRoute(r.Context(), legs)
		if err != nil {
			log.Printf("❌ Route selection failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Route selection failed")
			return
		}

		resp.Route = result
		resp.Legs = len(legs)
		utils.JSON(w, http.StatusOK, resp)
	}
}

// resolveEngineerLegs builds the leg sequence for the engineer form. A
// non-zero return status is the HTTP error to send back.
func resolveEngineerLegs(snap SnapshotProvider, req *SelectRouteRequest, legs *[]routing.Leg, resp *RouteResponse) (int, string) {
	if !snap.Ready() {
		return http.StatusServiceUnavailable, "Snapshot not ready yet"
	}

	s := snap.Current()

	var eng *models.EnrichedEngineer
	key := strings.ToLower(strings.TrimSpace(req.Username))
	for i := range s.Engineers {
		if strings.ToLower(strings.TrimSpace(s.Engineers[i].Username)) == key {
			eng = &s.Engineers[i]
			break
		}
	}
	if eng == nil {
		return http.StatusNotFound, "Engineer not found"
	}

	own, ok := geo.FromPtr(eng.Latitude, eng.Longitude)
	if !ok {
		return http.StatusUnprocessableEntity, "Engineer has no usable GPS coordinates"
	}

	var site *models.SiteRecord
	if strings.TrimSpace(req.SiteID) != "" {
		site = enrich.FindSiteByID(s.Sites, req.SiteID)
		if site == nil {
			return http.StatusNotFound, "Site not found"
		}
	} else {
		if eng.TargetSiteID == nil {
			return http.StatusUnprocessableEntity, "No target site resolved for engineer"
		}
		site = enrich.FindSiteByID(s.Sites, *eng.TargetSiteID)
		if site == nil {
			return http.StatusUnprocessableEntity, "No target site resolved for engineer"
		}
	}

	dest, ok := geo.FromPtr(site.Latitude, site.Longitude)
	if !ok {
		return http.StatusUnprocessableEntity, "Site has no usable coordinates"
	}

	resp.Username = eng.Username
	resp.SiteID = site.ID
	resp.SiteName = site.DisplayName()

	// A warehouse pickup splits the route into two legs when the warehouse
	// resolves with usable coordinates; otherwise the route goes direct,
	// matching how the table distance is computed.
	if eng.ViaWarehouse && eng.WarehouseName != nil {
		if wh := enrich.FindWarehouseByName(s.Warehouses, *eng.WarehouseName); wh != nil {
			if whCoord, whOK := geo.FromPtr(wh.Latitude, wh.Longitude); whOK {
				resp.Warehouse = wh.Name
				*legs = []routing.Leg{{From: own, To: whCoord}, {From: whCoord, To: dest}}
				return 0, ""
			}
		}
	}

	*legs = []routing.Leg{{From: own, To: dest}}
	return 0, ""
}

// resolveExplicitLegs builds the leg sequence for the raw-coordinate form.
func resolveExplicitLegs(req *SelectRouteRequest, legs *[]routing.Leg) (int, string) {
	if req.From == nil || req.To == nil {
		return http.StatusBadRequest, "Both from and to coordinates are required"
	}

	from, ok := geo.FromPtr(req.From.Lat, req.From.Lng)
	if !ok {
		return http.StatusUnprocessableEntity, "from is not a valid coordinate pair"
	}
	to, ok := geo.FromPtr(req.To.Lat, req.To.Lng)
	if !ok {
		return http.StatusUnprocessableEntity, "to is not a valid coordinate pair"
	}

	if req.Via != nil {
		via, viaOK := geo.FromPtr(req.Via.Lat, req.Via.Lng)
		if !viaOK {
			return http.StatusUnprocessableEntity, "via is not a valid coordinate pair"
		}
		*legs = []routing.Leg{{From: from, To: via}, {From: via, To: to}}
		return 0, ""
	}

	*legs = []routing.Leg{{From: from, To: to}}
	return 0, ""
}
