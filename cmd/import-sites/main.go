package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"

	"fieldwatch-backend/internal/database"
)

// siteRow is one line of the NMC site export. Headers must match the csv
// tags exactly. Empty lat/lng cells decode to nil, which is how surveyed
// but unbuilt sites arrive.
type siteRow struct {
	ID        string   `csv:"id"`
	Name      string   `csv:"name"`
	Area      string   `csv:"area"`
	Latitude  *float64 `csv:"lat"`
	Longitude *float64 `csv:"lng"`
}

// Loads a site CSV export into the sites table. Existing ids are updated in
// place, new ids are inserted. Duplicate ids inside the table all receive
// the same update, which collapses them toward one canonical row over time.
func main() {
	file := flag.String("file", "sites.csv", "path to the site CSV export")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rows, err := readSiteCSV(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	log.Printf("📄 Parsed %d site rows from %s", len(rows), *file)

	inserted, updated, skipped, err := upsertSites(db, rows)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("SITE IMPORT SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Inserted:   %d\n", inserted)
	fmt.Printf("Updated:    %d\n", updated)
	fmt.Printf("Skipped:    %d (blank id)\n", skipped)
	fmt.Println("============================================================")
}

func readSiteCSV(path string) ([]siteRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("creating CSV decoder: %w", err)
	}

	var rows []siteRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding site CSV: %w", err)
	}
	return rows, nil
}

func upsertSites(db *sqlx.DB, rows []siteRow) (inserted, updated, skipped int, err error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		id := strings.TrimSpace(row.ID)
		if id == "" {
			skipped++
			continue
		}

		res, err := tx.Exec(`
			UPDATE sites SET name = $2, area = $3, latitude = $4, longitude = $5
			WHERE id = $1
		`, id, nullIfBlank(row.Name), nullIfBlank(row.Area), row.Latitude, row.Longitude)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("updating site %s: %w", id, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, 0, fmt.Errorf("checking update of site %s: %w", id, err)
		}
		if affected > 0 {
			updated++
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO sites (id, name, area, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
		`, id, nullIfBlank(row.Name), nullIfBlank(row.Area), row.Latitude, row.Longitude); err != nil {
			return 0, 0, 0, fmt.Errorf("inserting site %s: %w", id, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, 0, fmt.Errorf("committing import: %w", err)
	}
	return inserted, updated, skipped, nil
}

func nullIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
