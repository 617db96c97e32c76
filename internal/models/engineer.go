package models

// EngineerStatus is one heartbeat row from the nfo_status table. The field
// app appends rows; the store keeps only the latest row per username before
// anything downstream sees it.
type EngineerStatus struct {
	ID             int64    `json:"-" db:"id"`
	Username       string   `json:"username" db:"username"`
	Name           string   `json:"name" db:"name"`
	OnShift        bool     `json:"on_shift" db:"on_shift"`
	Status         string   `json:"status" db:"status"` // open set: "busy", "free", "device-silent", ...
	Activity       *string  `json:"activity,omitempty" db:"activity"`
	AssignedSiteID *string  `json:"assigned_site_id,omitempty" db:"assigned_site_id"`
	Latitude       *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64 `json:"longitude,omitempty" db:"longitude"`
	LoggedIn       bool     `json:"logged_in" db:"logged_in"`
	LastActiveAt   *string  `json:"last_active_at,omitempty" db:"last_active_at"` // RFC3339 as written by the app, may be garbage
	Area           *string  `json:"area,omitempty" db:"area"`
	ViaWarehouse   bool     `json:"via_warehouse" db:"via_warehouse"`
	WarehouseName  *string  `json:"warehouse_name,omitempty" db:"warehouse_name"`
}

// EnrichedEngineer is the dashboard view of an engineer: the raw row plus
// every derived field. Recomputed on every refresh, never persisted.
type EnrichedEngineer struct {
	EngineerStatus

	Online             bool     `json:"online"`
	MinutesSinceActive *float64 `json:"minutes_since_active,omitempty"`
	PingStale          bool     `json:"ping_stale"`
	PingStaleReason    string   `json:"ping_stale_reason,omitempty"`
	DeviceSilent       bool     `json:"device_silent"`

	Busy     bool `json:"busy"`
	Free     bool `json:"free"`
	OffShift bool `json:"off_shift"`

	TargetSiteID   *string  `json:"target_site_id,omitempty"`
	TargetSiteName *string  `json:"target_site_name,omitempty"`
	TargetSource   string   `json:"target_source,omitempty"` // "assigned" or "nearest"
	DistanceKm     *float64 `json:"distance_km,omitempty"`
	DistanceLabel  string   `json:"distance_label"`
	StatusLabel    string   `json:"status_label"`
}
