package models

// SiteRecord is one row from the sites table. Identifiers are NOT unique in
// the upstream data; callers must dedupe by id (first occurrence wins)
// before lookups.
type SiteRecord struct {
	ID        string   `json:"id" db:"id"`
	Name      *string  `json:"name,omitempty" db:"name"`
	Area      *string  `json:"area,omitempty" db:"area"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// DisplayName returns the site name when present, otherwise its id.
func (s *SiteRecord) DisplayName() string {
	if s.Name != nil && *s.Name != "" {
		return *s.Name
	}
	return s.ID
}

// WarehouseRecord is one row from the warehouses table. Only active
// warehouses participate in via-warehouse routing.
type WarehouseRecord struct {
	ID        int      `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Region    *string  `json:"region,omitempty" db:"region"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
	Active    bool     `json:"active" db:"active"`
}
