package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thermolog/thermolog/internal/server/api"
	"github.com/thermolog/thermolog/internal/server/config"
	"github.com/thermolog/thermolog/internal/server/services"
	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/version"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var rootCmd = &cobra.Command{
	Use:   "thermolog-server",
	Short: "Thermolog - temperature and humidity monitoring backend",
	Long:  "Backend for sensor reading ingestion, alerting and the monitoring dashboard API",
	// Default to serve command if no subcommand provided
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitoring server",
	Long:  "Start the Thermolog server with the ingestion and dashboard HTTP API",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("thermolog-server"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, adminCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.Printf("=== Thermolog Server ===")
	log.Printf("%s", version.GetVersion("thermolog-server"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	log.Println("Connecting to database...")
	db, err := storage.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// Run embedded migrations
	log.Println("Running database migrations...")
	if err := runEmbeddedMigrations(db.DB.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations complete")

	// Connect to Redis (session storage)
	log.Println("Connecting to Redis...")
	rdb, err := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected")

	// Initialize repositories
	userRepo := storage.NewUserRepository(db)
	otpRepo := storage.NewOTPRepository(db)
	deviceRepo := storage.NewDeviceRepository(db)
	readingRepo := storage.NewReadingRepository(db)
	thresholdRepo := storage.NewThresholdRepository(db)
	calibrationRepo := storage.NewCalibrationRepository(db)
	sessions := storage.NewSessionStore(rdb, cfg.PendingTTL, cfg.SessionTTL)

	// Initialize services
	emailService, err := services.NewEmailService(cfg.ResendAPIKey, cfg.FromEmail)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := services.NewAuthService(userRepo, otpRepo, sessions, emailService, cfg.OTPExpiry)
	ingestService := services.NewIngestService(deviceRepo, readingRepo, cfg.IngestMinInterval, cfg.Location())
	readingService := services.NewReadingService(readingRepo)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	authHandler := api.NewAuthHandler(authService)
	ingestHandler := api.NewIngestHandler(ingestService)
	readingsHandler := api.NewReadingsHandler(readingService)
	devicesHandler := api.NewDevicesHandler(deviceRepo, thresholdRepo, calibrationRepo)
	adminHandler := api.NewAdminHandler(userService, thresholdRepo, calibrationRepo)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.CORSMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"thermolog"}`))
	})

	// Device-facing routes (no session; firmware has no login flow)
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))

		r.Post("/api/readings", ingestHandler.SubmitReading)
		r.Get("/api/alert-status", ingestHandler.AlertStatus)
		r.Get("/api/threshold", devicesHandler.Threshold)
		r.Get("/api/calibration", devicesHandler.Calibration)
	})

	// Auth routes (rate limited harder; login and verify are guessable)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))

		r.Post("/login", authHandler.Login)
		r.Post("/verify", authHandler.Verify)
		r.Post("/logout", authHandler.Logout)
	})

	// Protected dashboard routes
	r.Group(func(r chi.Router) {
		r.Use(api.SessionMiddleware(sessions))

		r.Get("/api/me", authHandler.Me)
		r.Get("/api/devices", devicesHandler.List)
		r.Get("/api/readings/latest", readingsHandler.Latest)
		r.Get("/api/readings/history", readingsHandler.History)
		r.Get("/api/readings/summary", readingsHandler.Summary)
	})

	// Admin routes
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(api.SessionMiddleware(sessions))
		r.Use(api.AdminMiddleware)

		r.Get("/users", adminHandler.ListUsers)
		r.Post("/users", adminHandler.CreateUser)
		r.Put("/users/{id}", adminHandler.UpdateUser)
		r.Delete("/users/{id}", adminHandler.DeleteUser)

		r.Put("/devices/{device_id}/threshold", adminHandler.SetThreshold)
		r.Put("/devices/{device_id}/calibration", adminHandler.SetCalibration)
	})

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func runEmbeddedMigrations(db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	// Sort migrations by filename to ensure correct order
	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)

	for _, migration := range migrations {
		log.Printf("Applying migration: %s", migration)

		content, err := migrationsFS.ReadFile(filepath.Join("migrations", migration))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", migration, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			log.Printf("Warning: Migration %s: %v (may already exist)", migration, err)
		}
	}

	return nil
}
