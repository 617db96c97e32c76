package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fieldwatch-backend/internal/enrich"
	"fieldwatch-backend/internal/models"
)

// Store reads the monitoring tables. The heartbeat table grows without
// bound, so reads page by primary key instead of loading it in one query.
type Store struct {
	db       *sqlx.DB
	pageSize int
}

func New(db *sqlx.DB, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Store{db: db, pageSize: pageSize}
}

// FetchEngineers reads heartbeat rows in id order, page by page, and
// reduces them to the newest row per username.
func (s *Store) FetchEngineers(ctx context.Context) ([]models.EngineerStatus, error) {
	var all []models.EngineerStatus
	var lastID int64

	for {
		var page []models.EngineerStatus
		err := s.db.SelectContext(ctx, &page, `
			SELECT id, username, name, on_shift, status, activity, assigned_site_id,
			       latitude, longitude, logged_in, last_active_at, area,
			       via_warehouse, warehouse_name
			FROM nfo_status
			WHERE id > $1
			ORDER BY id
			LIMIT $2
		`, lastID, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetching engineer heartbeats: %w", err)
		}

		all = append(all, page...)
		if len(page) < s.pageSize {
			break
		}
		lastID = page[len(page)-1].ID
	}

	return enrich.LatestPerEngineer(all), nil
}

// FetchSites returns the site table with duplicate ids removed, first
// occurrence winning.
func (s *Store) FetchSites(ctx context.Context) ([]models.SiteRecord, error) {
	var sites []models.SiteRecord
	err := s.db.SelectContext(ctx, &sites, `
		SELECT id, name, area, latitude, longitude
		FROM sites
		ORDER BY row_id
	`)
	if err != nil {
		return nil, fmt.Errorf("fetching sites: %w", err)
	}
	return enrich.DedupeSites(sites), nil
}

// FetchWarehouses returns active warehouses only. Deactivated ones must not
// appear on the dashboard or participate in via-warehouse matching.
func (s *Store) FetchWarehouses(ctx context.Context) ([]models.WarehouseRecord, error) {
	var warehouses []models.WarehouseRecord
	err := s.db.SelectContext(ctx, &warehouses, `
		SELECT id, name, region, latitude, longitude, active
		FROM warehouses
		WHERE active = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("fetching warehouses: %w", err)
	}
	return warehouses, nil
}
