package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"fieldwatch-backend/internal/alerts"
	"fieldwatch-backend/internal/config"
	"fieldwatch-backend/internal/database"
	"fieldwatch-backend/internal/enrich"
	"fieldwatch-backend/internal/handlers"
	"fieldwatch-backend/internal/metrics"
	"fieldwatch-backend/internal/middleware"
	"fieldwatch-backend/internal/routing"
	"fieldwatch-backend/internal/snapshot"
	"fieldwatch-backend/internal/store"
	"fieldwatch-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 FIELDWATCH BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatalBanner("Invalid configuration", err)
	}
	log.Println("✅ Configuration loaded")

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("   This is usually caused by:")
		log.Println("   1. Wrong DATABASE_URL format")
		log.Println("   2. PostgreSQL service is down")
		log.Println("   3. Network connectivity issue")
		log.Println("   4. Invalid credentials")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()
	log.Println("✅ Database connection established")

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		fatalBanner("Database migrations failed", err)
	}

	log.Println("🌱 Seeding database with initial data...")
	seeds := []struct {
		name string
		fn   func(*sqlx.DB) error
	}{
		{"users", database.SeedUsers},
		{"sites", database.SeedSites},
		{"warehouses", database.SeedWarehouses},
		{"engineers", database.SeedEngineers},
	}
	for _, s := range seeds {
		if err := s.fn(db); err != nil {
			fatalBanner(fmt.Sprintf("Seeding %s failed", s.name), err)
		}
		log.Printf("✅ Seeded %s", s.name)
	}

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		log.Printf("⚠️  Metrics registration failed: %v (metrics disabled)", err)
		collector = nil
	} else {
		log.Println("✅ Prometheus metrics registered")
	}

	primary := routing.NewGraphHopperClient(cfg.GraphHopperURL, cfg.GraphHopperAPIKey, cfg.GraphHopperProfile, cfg.EngineTimeout)
	secondary := routing.NewOSRMClient(cfg.OSRMURL, cfg.EngineTimeout)
	selector := routing.NewSelector(primary, secondary, cfg.SanityRatio, collector)
	selector.Cache = routing.NewCache(cfg.RouteCacheEntries, cfg.RouteCacheTTL)
	log.Printf("✅ Routing engines configured (%s primary, %s secondary)", primary.Name(), secondary.Name())

	enricher := enrich.NewEnricher(cfg.OnlineWindow, cfg.StaleWindow)
	poller := snapshot.NewPoller(store.New(db, cfg.FetchPageSize), enricher, cfg.RefreshInterval, collector)

	hub := websocket.NewHub(collector)
	go hub.Run()
	log.Println("✅ WebSocket hub started")
	poller.Broadcaster = hub

	if cfg.DeviceSilenceAlertEnabled {
		if fcm := newFCMService(cfg); fcm != nil {
			poller.Notifier = alerts.NewWatcher(fcm, alerts.NewDBTokenSource(db))
			log.Println("✅ Device-silence alerts armed")
		} else {
			log.Println("⚠️  Device-silence alerts disabled (no FCM credentials)")
		}
	} else {
		log.Println("⚠️  Device-silence alerts disabled by DEVICE_SILENCE_ALERTS")
	}

	// Observers must be wired before the first refresh fires.
	go poller.Run(context.Background())
	log.Printf("✅ Snapshot poller started (every %s)", cfg.RefreshInterval)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health(poller))
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Authentication routes (no auth required)
	r.Post("/api/auth/login", handlers.Login(db, cfg.JWTSecret))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(hub, cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		// Dashboard endpoints (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Get("/engineers", handlers.ListEngineers(poller))
			r.Get("/engineers/{username}", handlers.GetEngineer(poller))
			r.Get("/sites", handlers.ListSites(poller))
			r.Get("/warehouses", handlers.ListWarehouses(poller))
			r.Get("/areas/summary", handlers.AreasSummary(poller))
			r.Post("/routes/select", handlers.SelectRoute(poller, selector))
			r.Get("/status", handlers.Status(poller, hub))
			r.Post("/alerts/token", handlers.RegisterDeviceToken(db))
		})

		// Admin endpoints (require authentication + admin role)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RequireRole("admin"))

			r.Post("/users", handlers.CreateUser(db))
		})
	})

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
	log.Println("🔌 Ready to accept requests!")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Printf("   Error: %v", err)
		log.Printf("   Port: %s", cfg.Port)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
}

// fatalBanner frames a fatal startup error so it stands out in deploy logs.
func fatalBanner(msg string, err error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("❌ FATAL ERROR: %s", msg)
	log.Printf("   Error: %v", err)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Fatal(err)
}

// newFCMService initializes Firebase messaging from base64 credentials when
// present (Railway-style deployments), falling back to a credentials file.
// Returns nil when neither is configured or initialization fails; push
// notifications stay off and everything else keeps working.
func newFCMService(cfg config.Config) *alerts.FCMService {
	if cfg.FirebaseCredentialsB64 != "" {
		svc, err := alerts.NewFCMServiceFromBase64(cfg.FirebaseCredentialsB64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			return nil
		}
		log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		return svc
	}

	if cfg.FirebaseCredentialsFile != "" {
		svc, err := alerts.NewFCMService(cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			return nil
		}
		log.Println("✅ Firebase Cloud Messaging initialized from file")
		return svc
	}

	return nil
}
