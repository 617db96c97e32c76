package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"fieldwatch-backend/internal/database"
)

// Applies the schema to the configured database and prints per-table row
// counts. Pass -seed to also load the demo users, sites, warehouses, and
// engineer heartbeats.
func main() {
	seed := flag.Bool("seed", false, "seed demo data after migrating")
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

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("Seeding users failed: %v", err)
		}
		if err := database.SeedSites(db); err != nil {
			log.Fatalf("Seeding sites failed: %v", err)
		}
		if err := database.SeedWarehouses(db); err != nil {
			log.Fatalf("Seeding warehouses failed: %v", err)
		}
		if err := database.SeedEngineers(db); err != nil {
			log.Fatalf("Seeding engineers failed: %v", err)
		}
		log.Println("Demo data seeded")
	}

	tables := []string{"users", "nfo_status", "sites", "warehouses", "device_tokens"}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	for _, table := range tables {
		var count int
		if err := db.Get(&count, "SELECT COUNT(*) FROM "+table); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("%-20s %d rows\n", table, count)
	}
	fmt.Println("============================================================")
}
