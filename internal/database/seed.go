package database

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	managerPassword, err := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "manager@fieldwatch.io",
			"password": string(managerPassword),
			"name":     "Ops Manager",
			"role":     "manager",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@fieldwatch.io",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Manager: manager@fieldwatch.io / manager123")
	log.Println("  📧 Admin:   admin@fieldwatch.io / admin123")
	return nil
}

func SeedSites(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM sites"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Sites already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo sites...")

	sites := []map[string]interface{}{
		{"id": "RUH0012", "name": "Olaya Tower North", "area": "Riyadh", "latitude": 24.6945, "longitude": 46.6853},
		{"id": "RUH0047", "name": "King Fahd Road Rooftop", "area": "Riyadh", "latitude": 24.7241, "longitude": 46.6702},
		{"id": "RUH0103", "name": "Exit 5 Greenfield", "area": "Riyadh", "latitude": 24.8113, "longitude": 46.7219},
		{"id": "JED0345", "name": "Corniche Monopole", "area": "Jeddah", "latitude": 21.5433, "longitude": 39.1728},
		{"id": "JED0412", "name": "Airport Perimeter West", "area": "Jeddah", "latitude": 21.6702, "longitude": 39.1520},
		{"id": "DMM0071", "name": "Port Gate Macro", "area": "Dammam", "latitude": 26.4433, "longitude": 50.1044},
		{"id": "DMM0099", "name": "Half Moon Bay Relay", "area": "Dammam", "latitude": 26.1522, "longitude": 50.0601},
		// Surveyed but not yet built; coordinates pending
		{"id": "RUH0200", "name": "Diriyah Expansion", "area": "Riyadh", "latitude": nil, "longitude": nil},
	}

	for _, site := range sites {
		_, err := db.Exec(`
			INSERT INTO sites (id, name, area, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
		`, site["id"], site["name"], site["area"], site["latitude"], site["longitude"])

		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d sites", len(sites))
	return nil
}

func SeedWarehouses(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM warehouses"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Warehouses already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo warehouses...")

	warehouses := []map[string]interface{}{
		{"name": "Riyadh Central Warehouse", "region": "Riyadh", "latitude": 24.7136, "longitude": 46.6753, "active": true},
		{"name": "Jeddah Supply Depot", "region": "Jeddah", "latitude": 21.4858, "longitude": 39.1925, "active": true},
		{"name": "Dammam Parts Store", "region": "Dammam", "latitude": 26.4207, "longitude": 50.0888, "active": true},
		{"name": "Old Makkah Store", "region": "Makkah", "latitude": 21.3891, "longitude": 39.8579, "active": false},
	}

	for _, wh := range warehouses {
		_, err := db.Exec(`
			INSERT INTO warehouses (name, region, latitude, longitude, active)
			VALUES ($1, $2, $3, $4, $5)
		`, wh["name"], wh["region"], wh["latitude"], wh["longitude"], wh["active"])

		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d warehouses", len(warehouses))
	return nil
}

func SeedEngineers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM nfo_status"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Engineer heartbeats already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo engineer heartbeats...")

	now := time.Now().UTC()
	ago := func(d time.Duration) string { return now.Add(-d).Format(time.RFC3339) }

	engineers := []map[string]interface{}{
		{
			"username": "a.alharbi", "name": "Ahmed Alharbi", "on_shift": true,
			"status": "busy", "activity": "replacing RRU at RUH0012",
			"assigned_site_id": "RUH0012", "latitude": 24.7009, "longitude": 46.6801,
			"logged_in": true, "last_active_at": ago(4 * time.Minute), "area": "Riyadh",
			"via_warehouse": false, "warehouse_name": nil,
		},
		{
			"username": "s.alqahtani", "name": "Sara Alqahtani", "on_shift": true,
			"status": "free", "activity": nil,
			"assigned_site_id": nil, "latitude": 24.7331, "longitude": 46.6622,
			"logged_in": true, "last_active_at": ago(9 * time.Minute), "area": "Riyadh",
			"via_warehouse": false, "warehouse_name": nil,
		},
		{
			"username": "m.alghamdi", "name": "Mohammed Alghamdi", "on_shift": true,
			"status": "busy", "activity": "fiber splice, needs spares",
			"assigned_site_id": "JED0345", "latitude": 21.5169, "longitude": 39.1822,
			"logged_in": true, "last_active_at": ago(12 * time.Minute), "area": "Jeddah",
			"via_warehouse": true, "warehouse_name": "Jeddah Supply Depot",
		},
		{
			"username": "f.alotaibi", "name": "Fahad Alotaibi", "on_shift": true,
			"status": "device-silent", "activity": nil,
			"assigned_site_id": "DMM0071", "latitude": 26.4301, "longitude": 50.0950,
			"logged_in": true, "last_active_at": ago(55 * time.Minute), "area": "Dammam",
			"via_warehouse": false, "warehouse_name": nil,
		},
		{
			// Installed the app, never sent a single ping
			"username": "n.alshehri", "name": "Noura Alshehri", "on_shift": true,
			"status": "free", "activity": nil,
			"assigned_site_id": nil, "latitude": nil, "longitude": nil,
			"logged_in": false, "last_active_at": nil, "area": "Jeddah",
			"via_warehouse": false, "warehouse_name": nil,
		},
		{
			"username": "k.almutairi", "name": "Khalid Almutairi", "on_shift": false,
			"status": "free", "activity": nil,
			"assigned_site_id": nil, "latitude": 26.3927, "longitude": 49.9777,
			"logged_in": false, "last_active_at": ago(7 * time.Hour), "area": "Dammam",
			"via_warehouse": false, "warehouse_name": nil,
		},
	}

	for _, eng := range engineers {
		_, err := db.Exec(`
			INSERT INTO nfo_status (username, name, on_shift, status, activity, assigned_site_id,
				latitude, longitude, logged_in, last_active_at, area, via_warehouse, warehouse_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, eng["username"], eng["name"], eng["on_shift"], eng["status"], eng["activity"],
			eng["assigned_site_id"], eng["latitude"], eng["longitude"], eng["logged_in"],
			eng["last_active_at"], eng["area"], eng["via_warehouse"], eng["warehouse_name"])

		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d engineer heartbeats", len(engineers))
	return nil
}
