package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting. It is loaded once in main
// and passed into constructors; packages never read the environment
// themselves.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Snapshot polling.
	RefreshInterval time.Duration
	FetchPageSize   int

	// Enrichment thresholds.
	OnlineWindow time.Duration
	StaleWindow  time.Duration

	// Routing engines.
	GraphHopperURL     string
	GraphHopperAPIKey  string
	GraphHopperProfile string
	OSRMURL            string
	EngineTimeout      time.Duration
	SanityRatio        float64
	RouteCacheEntries  int
	RouteCacheTTL      time.Duration

	// HTTP surface.
	AllowedOrigins []string

	// Push alerts. Both empty disables FCM entirely.
	FirebaseCredentialsFile   string
	FirebaseCredentialsB64    string
	DeviceSilenceAlertEnabled bool
}

// Load reads the optional .env file and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("APP_JWT_SECRET"),

		RefreshInterval: getenvDuration("REFRESH_INTERVAL", 30*time.Second),
		FetchPageSize:   clampInt(getenvInt("FETCH_PAGE_SIZE", 1000), 50, 10000),

		OnlineWindow: getenvDuration("ONLINE_WINDOW", 15*time.Minute),
		StaleWindow:  getenvDuration("STALE_WINDOW", 30*time.Minute),

		GraphHopperURL:     getenv("GRAPHHOPPER_URL", "https://graphhopper.com/api/1"),
		GraphHopperAPIKey:  os.Getenv("GRAPHHOPPER_API_KEY"),
		GraphHopperProfile: getenv("GRAPHHOPPER_PROFILE", "car"),
		OSRMURL:            getenv("OSRM_URL", "https://router.project-osrm.org"),
		EngineTimeout:      getenvDuration("ROUTE_ENGINE_TIMEOUT", 15*time.Second),
		SanityRatio:        getenvFloat("ROUTE_SANITY_RATIO", 2.0),
		RouteCacheEntries:  clampInt(getenvInt("ROUTE_CACHE_ENTRIES", 500), 10, 100000),
		RouteCacheTTL:      getenvDuration("ROUTE_CACHE_TTL", 15*time.Minute),

		AllowedOrigins: getenvList("ALLOWED_ORIGINS", []string{"*"}),

		FirebaseCredentialsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseCredentialsB64:    os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		DeviceSilenceAlertEnabled: getenvBool("DEVICE_SILENCE_ALERTS", true),
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("APP_JWT_SECRET environment variable is required")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.SanityRatio <= 1.0 {
		return fmt.Errorf("ROUTE_SANITY_RATIO must be greater than 1.0, got %g", c.SanityRatio)
	}
	if c.OnlineWindow <= 0 || c.StaleWindow <= 0 {
		return fmt.Errorf("ONLINE_WINDOW and STALE_WINDOW must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %g", key, v, def)
		return def
	}
	return f
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
