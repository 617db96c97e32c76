package main

import (
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"fieldwatch-backend/internal/database"
)

// Creates one dashboard account from the command line. Meant for bootstrap
// and incident recovery when nobody can reach the admin API.
func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password (required)")
	name := flag.String("name", "", "display name (required)")
	role := flag.String("role", "manager", "account role: manager or admin")
	flag.Parse()

	if *email == "" || *password == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != "manager" && *role != "admin" {
		log.Fatalf("Role must be 'manager' or 'admin', got %q", *role)
	}

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

	log.Println("🔌 Connected to database")

	var exists bool
	if err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", *email); err != nil {
		log.Fatalf("Failed to check for existing user: %v", err)
	}
	if exists {
		log.Fatalf("⚠️  User already exists: %s", *email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := map[string]interface{}{
		"id":       uuid.New().String(),
		"email":    *email,
		"password": string(hashed),
		"name":     *name,
		"role":     *role,
	}

	query := `
		INSERT INTO users (id, email, password, name, role)
		VALUES (:id, :email, :password, :name, :role)
	`
	if _, err := db.NamedExec(query, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("✅ Created %s user: %s", *role, *email)
}
