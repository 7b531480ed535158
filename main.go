package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/text/language"

	"github.com/andrewpaige1/workbook-api/cache"
	"github.com/andrewpaige1/workbook-api/config"
	"github.com/andrewpaige1/workbook-api/handlers"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/middleware"
	"github.com/andrewpaige1/workbook-api/services"
)

func init() {
	// Load .env file if not in production environment
	if env := os.Getenv("ENVIRONMENT"); env != "prod" && env != "production" {
		_ = godotenv.Load()
	}
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database", "driver", cfg.DBDriver, "error", err)
	}

	listing := newListingCache(cfg, log)
	svc := services.New(db, listing, log, services.Options{
		Locale:              language.Make(cfg.CollationLocale),
		SharedDirectoryName: cfg.SharedDirectoryName,
	})

	authMiddleware, err := middleware.EnsureValidToken(cfg, log)
	if err != nil {
		log.Fatal("failed to set up token validation", "error", err)
	}
	mux := handlers.NewRouter(svc, log)

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	serverAddr := "0.0.0.0:" + cfg.Port
	log.Info("listening", "addr", serverAddr, "environment", cfg.Environment)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

// newListingCache uses Redis when REDIS_ADDR is set and reachable, and the
// in-process cache otherwise.
func newListingCache(cfg *config.Config, log *logger.Logger) cache.Listing {
	c := cache.Config{TTL: cfg.CacheTTL}
	if cfg.RedisAddr == "" {
		return cache.NewMemory(c)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix, c, log)
	if err != nil {
		log.Warn("redis unavailable, falling back to in-memory cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory(c)
	}
	return r
}
