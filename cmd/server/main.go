package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"merrylights-backend/internal/database"
	"merrylights-backend/internal/feedback"
	"merrylights-backend/internal/handlers"
	"merrylights-backend/internal/logger"
	customMiddleware "merrylights-backend/internal/middleware"
	"merrylights-backend/internal/models"
	"merrylights-backend/internal/notify"
	"merrylights-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	logger.Init()

	// Required env vars
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "merrylights")
	jwtSecret := getEnv("JWT_SECRET", "")
	port := getEnv("PORT", "8080")

	if mongoURI == "" {
		logger.Log.Fatal().Msg("MONGODB_URI is required")
	}
	if jwtSecret == "" {
		logger.Log.Fatal().Msg("JWT_SECRET is required")
	}

	// Connect to MongoDB
	if err := database.Connect(mongoURI, dbName); err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	tokenRepo := repository.NewAuthTokenRepo()
	locationRepo := repository.NewLocationRepo()
	routeRepo := repository.NewRouteRepo()
	feedbackRepo := repository.NewFeedbackRepo()
	suggestionRepo := repository.NewSuggestionRepo()
	reportRepo := repository.NewReportRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for name, repo := range map[string]indexer{
		"users":       userRepo,
		"auth_tokens": tokenRepo,
		"locations":   locationRepo,
		"routes":      routeRepo,
		"feedback":    feedbackRepo,
		"suggestions": suggestionRepo,
		"reports":     reportRepo,
	} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Log.Warn().Err(err).Str("collection", name).Msg("failed to create indexes")
		}
	}

	// Toggle engine: one feedback store, one entity store per target type.
	engine := feedback.NewEngine(feedbackRepo)
	engine.RegisterTarget(models.TargetLocation, locationRepo)
	engine.RegisterTarget(models.TargetRoute, routeRepo)

	// Moderation notifier (log-backed until a real channel is wired)
	notifier := notify.NewLogNotifier()

	// Initialize handlers
	adminEmails := strings.Split(getEnv("ADMIN_EMAILS", ""), ",")
	authHandler := handlers.NewAuthHandler(tokenRepo, userRepo, jwtSecret, adminEmails)
	userHandler := handlers.NewUserHandler(userRepo)
	locationHandler := handlers.NewLocationHandler(locationRepo, reportRepo, notifier)
	routeHandler := handlers.NewRouteHandler(routeRepo)
	feedbackHandler := handlers.NewFeedbackHandler(engine, feedbackRepo, locationRepo, routeRepo)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionRepo, locationRepo, notifier)
	leaderboardHandler := handlers.NewLeaderboardHandler(locationRepo, routeRepo, suggestionRepo, userRepo)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(customMiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"merrylights-backend"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Post("/auth/request", authHandler.RequestLogin)
	r.Get("/auth/verify", authHandler.VerifyToken)
	r.Get("/locations", locationHandler.List)
	r.Get("/locations/{id}", locationHandler.Get)
	r.Get("/routes", routeHandler.List)
	r.Get("/leaderboard/locations", leaderboardHandler.Locations)
	r.Get("/leaderboard/routes", leaderboardHandler.Routes)
	r.Get("/leaderboard/contributors", leaderboardHandler.Contributors)

	// Protected routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(jwtSecret))

		r.Get("/users/me", userHandler.Me)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Get("/users/routes", routeHandler.ListMine)
		r.Get("/users/submissions", suggestionHandler.ListMine)

		r.Post("/locations", locationHandler.Create)
		r.Post("/locations/{id}/report", locationHandler.Report)
		r.Post("/locations/{id}/feedback", feedbackHandler.ToggleLocationFeedback)
		r.Post("/locations/{id}/favorite", feedbackHandler.ToggleLocationFavorite)
		r.Get("/locations/{id}/feedback/status", feedbackHandler.LocationFeedbackStatus)
		r.Get("/locations/favorites", feedbackHandler.ListFavoriteLocations)

		r.Post("/routes", routeHandler.Create)
		r.Get("/routes/saved", feedbackHandler.ListSavedRoutes)
		r.Get("/routes/{id}", routeHandler.Get)
		r.Put("/routes/{id}", routeHandler.Update)
		r.Delete("/routes/{id}", routeHandler.Delete)
		r.Post("/routes/{id}/feedback", feedbackHandler.ToggleRouteFeedback)
		r.Get("/routes/{id}/feedback/status", feedbackHandler.RouteFeedbackStatus)

		r.Post("/suggestions", suggestionHandler.Submit)

		// Admin-only moderation surface
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.RequireAdmin)

			r.Put("/locations/{id}", locationHandler.Update)
			r.Delete("/locations/{id}", locationHandler.Delete)
			r.Get("/locations/{id}/reports", locationHandler.ListReports)
			r.Get("/suggestions", suggestionHandler.List)
			r.Post("/suggestions/{id}/approve", suggestionHandler.Approve)
			r.Post("/suggestions/{id}/reject", suggestionHandler.Reject)
		})
	})

	// Start server
	logger.Log.Info().Str("port", port).Msg("merrylights backend starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("server failed")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
