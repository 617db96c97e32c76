package enrich

import "fieldwatch-backend/internal/models"

// LatestPerEngineer reduces raw heartbeat rows to one row per username,
// keeping the row with the newest parseable last_active_at. A row without
// a parseable timestamp never displaces one that has it; between two such
// rows the first seen wins. Output preserves first-appearance order so
// consecutive refreshes list engineers stably.
func LatestPerEngineer(rows []models.EngineerStatus) []models.EngineerStatus {
	idx := make(map[string]int, len(rows))
	out := make([]models.EngineerStatus, 0, len(rows))

	for _, row := range rows {
		key := normalizeID(row.Username)
		pos, seen := idx[key]
		if !seen {
			idx[key] = len(out)
			out = append(out, row)
			continue
		}
		if newerThan(row, out[pos]) {
			out[pos] = row
		}
	}
	return out
}

func newerThan(a, b models.EngineerStatus) bool {
	ta, okA := ParseLastActive(a.LastActiveAt)
	tb, okB := ParseLastActive(b.LastActiveAt)
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	return ta.After(tb)
}

// DedupeSites keeps the first occurrence per normalized site id. Duplicate
// ids are a data-quality issue in the upstream table, not something callers
// may assume away.
func DedupeSites(sites []models.SiteRecord) []models.SiteRecord {
	seen := make(map[string]bool, len(sites))
	out := make([]models.SiteRecord, 0, len(sites))
	for _, s := range sites {
		key := normalizeID(s.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
