package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Printf("   📍 URL prefix: %s...", dbURL[:min(30, len(dbURL))])
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table (dashboard logins, not field engineers)
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('manager', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create nfo_status table. The field app appends heartbeat rows and
		// never deletes, so usernames repeat; readers keep the newest row.
		// last_active_at stays TEXT because the app has shipped malformed
		// timestamps before and inserts must not start failing when it does.
		`CREATE TABLE IF NOT EXISTS nfo_status (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			on_shift BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL DEFAULT '',
			activity TEXT,
			assigned_site_id TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			logged_in BOOLEAN NOT NULL DEFAULT FALSE,
			last_active_at TEXT,
			area TEXT
		)`,

		// Create sites table. Site ids repeat in the upstream exports, so
		// the primary key is a synthetic row id and readers dedupe by id.
		`CREATE TABLE IF NOT EXISTS sites (
			row_id BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL,
			name TEXT,
			area TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION
		)`,

		// Create warehouses table
		`CREATE TABLE IF NOT EXISTS warehouses (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			region TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Create device tokens table for push alerts
		`CREATE TABLE IF NOT EXISTS device_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Migration: warehouse pickup columns arrived after the first deploy
		`ALTER TABLE nfo_status ADD COLUMN IF NOT EXISTS via_warehouse BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE nfo_status ADD COLUMN IF NOT EXISTS warehouse_name TEXT`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_nfo_status_username ON nfo_status(username)`,
		`CREATE INDEX IF NOT EXISTS idx_nfo_status_id_desc ON nfo_status(id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sites_id ON sites(id)`,
		`CREATE INDEX IF NOT EXISTS idx_sites_area ON sites(area)`,
		`CREATE INDEX IF NOT EXISTS idx_warehouses_active ON warehouses(active)`,
		`CREATE INDEX IF NOT EXISTS idx_device_tokens_user_id ON device_tokens(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
