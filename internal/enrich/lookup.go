package enrich

import (
	"strings"

	"fieldwatch-backend/internal/geo"
	"fieldwatch-backend/internal/models"
)

// normalizeID trims surrounding whitespace and lower-cases an identifier.
// All site-id and warehouse-name matching goes through this.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// FindSiteByID returns the first site whose id matches the query after
// trimming and lower-casing both sides. Returns nil when id is empty or
// nothing matches. Duplicate ids are a known upstream issue; first
// occurrence wins.
func FindSiteByID(sites []models.SiteRecord, id string) *models.SiteRecord {
	want := normalizeID(id)
	if want == "" {
		return nil
	}
	for i := range sites {
		if normalizeID(sites[i].ID) == want {
			return &sites[i]
		}
	}
	return nil
}

// NearestSite pairs a site with its air distance from the query point.
type NearestSite struct {
	Site       models.SiteRecord
	DistanceKm float64
}

// FindNearestSite scans sites with valid coordinates and returns the
// minimum-distance candidate. First-seen wins on exact ties. Returns nil
// when no site has usable coordinates.
func FindNearestSite(point geo.Coord, sites []models.SiteRecord) *NearestSite {
	var best *NearestSite
	for i := range sites {
		c, ok := geo.FromPtr(sites[i].Latitude, sites[i].Longitude)
		if !ok {
			continue
		}
		d := geo.DistanceKm(point, c)
		if best == nil || d < best.DistanceKm {
			best = &NearestSite{Site: sites[i], DistanceKm: d}
		}
	}
	return best
}

// FindWarehouseByName returns the first active warehouse whose name matches
// after trimming and lower-casing. Inactive warehouses never match.
func FindWarehouseByName(warehouses []models.WarehouseRecord, name string) *models.WarehouseRecord {
	want := normalizeID(name)
	if want == "" {
		return nil
	}
	for i := range warehouses {
		if !warehouses[i].Active {
			continue
		}
		if normalizeID(warehouses[i].Name) == want {
			return &warehouses[i]
		}
	}
	return nil
}
