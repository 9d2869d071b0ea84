package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/config"
	"github.com/CG3-Media/dexo-activity/internal/handlers"
	"github.com/CG3-Media/dexo-activity/internal/render"
	"github.com/CG3-Media/dexo-activity/internal/services"
	"github.com/CG3-Media/dexo-activity/internal/storage"
	"github.com/CG3-Media/dexo-activity/pkg/logger"
	"github.com/CG3-Media/dexo-activity/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	if cfg.AppToken == "" {
		logger.Log.Warn("APP_TOKEN is not set; every request will be rejected")
	}

	// A storage backend that cannot initialize is fatal: do not serve.
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Storage initialization error: %v", err)
	}
	defer store.Close()
	logger.Log.WithField("backend", cfg.Backend).Info("Storage initialized")

	renderer, err := render.NewRenderer(cfg.Timezone)
	if err != nil {
		log.Fatalf("Template error: %v", err)
	}

	// --- Services ---
	activityService := services.NewActivityService(store)

	// --- Handlers ---
	activityHandler := handlers.NewActivityHandler(activityService)
	pageHandler := handlers.NewPageHandler(activityService, renderer)
	authHandler := handlers.NewAuthHandler(cfg)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Token exchange and static assets are the only unguarded routes
	router.HandleFunc("/auth", authHandler.ExchangeTokenHandler).Methods("GET")
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(render.StaticFS())))

	// Guarded JSON API
	apiRoutes := router.PathPrefix("/api/activities").Subrouter()
	apiRoutes.Use(middleware.RequireAPI(cfg.AppToken))
	apiRoutes.HandleFunc("", activityHandler.CreateActivityHandler).Methods("POST")
	apiRoutes.HandleFunc("", activityHandler.ListActivitiesHandler).Methods("GET")
	apiRoutes.HandleFunc("/{id}", activityHandler.GetActivityHandler).Methods("GET")

	// Guarded HTML timeline
	pageRoutes := router.PathPrefix("/").Subrouter()
	pageRoutes.Use(middleware.RequirePage(cfg.AppToken, renderer))
	pageRoutes.HandleFunc("/", pageHandler.TimelineHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return storage.NewFileStore(cfg.DataFile, cfg.Timezone)
	case config.BackendSQLite:
		return storage.NewSQLiteStore(cfg.DBPath, cfg.Timezone)
	case config.BackendPostgres:
		return storage.NewPostgresStore(cfg.DatabaseURL, cfg.Timezone)
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, cfg.Timezone)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
