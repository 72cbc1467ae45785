package main

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"perf-rating-go/internal/handlers"
	"perf-rating-go/internal/service"
	"perf-rating-go/internal/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	// Redis Configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDBStr := os.Getenv("REDIS_DB")
	redisDB := 0
	if redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// Initialize Redis store (unread count cache + SSE fan-out)
	redisStore := store.NewRedisStore(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// PostgreSQL Configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pgStore, err := store.NewPostgresStore(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	// Run database migrations
	ctx := context.Background()
	if err := pgStore.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Parse templates
	tmpl := make(map[string]*template.Template)
	templates := map[string]string{
		"login":         filepath.Join("web", "templates", "login.html"),
		"notifications": filepath.Join("web", "templates", "notifications.html"),
	}
	for name, path := range templates {
		t, err := template.ParseFiles(path)
		if err != nil {
			log.Printf("Failed to parse template %s: %v", name, err)
		} else {
			tmpl[name] = t
		}
	}

	notificationService := service.NewNotificationService(pgStore, pgStore, redisStore)

	h := handlers.NewHandler(pgStore, pgStore, notificationService, redisStore, tmpl)

	// Create a default admin account on first run
	h.InitAdmin(ctx)

	// Public routes
	http.HandleFunc("/login", h.LoginPage)
	http.HandleFunc("/api/login", h.LoginHandler)
	http.HandleFunc("/api/login/verify", h.Verify2FALoginHandler)
	http.HandleFunc("/logout", h.LogoutHandler)
	http.HandleFunc("/api/push/key", h.GetVAPIDKeyHandler)

	// Notification inbox
	http.HandleFunc("/notifications", handlers.AuthMiddleware(h.NotificationsPage))
	http.HandleFunc("/notifications/action", handlers.AuthMiddleware(h.NotificationActionHandler))
	http.HandleFunc("/events", handlers.AuthMiddleware(h.SSEHandler))

	// Notification / push API
	http.HandleFunc("/api/push", h.PushAPIHandler)
	http.HandleFunc("/api/notifications", handlers.AuthMiddleware(h.GetNotificationsHandler))
	http.HandleFunc("/api/notifications/unread", handlers.AuthMiddleware(h.UnreadCountHandler))

	// Ratings
	http.HandleFunc("/api/ratings", handlers.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetRatingsHandler(w, r)
		case http.MethodPost:
			h.CreateRatingHandler(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// 2FA management
	http.HandleFunc("/api/2fa/generate", handlers.AuthMiddleware(h.Generate2FAHandler))
	http.HandleFunc("/api/2fa/enable", handlers.AuthMiddleware(h.Enable2FAHandler))
	http.HandleFunc("/api/2fa/disable", handlers.AuthMiddleware(h.Disable2FAHandler))

	// Prometheus metrics
	http.Handle("/metrics", promhttp.Handler())

	// Serve static files (service worker, push glue)
	fs := http.FileServer(http.Dir("web/static"))
	http.Handle("/static/", http.StripPrefix("/static/", fs))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("Listening on :" + port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
