package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/eduverse/eduverse-backend/internal/config"
	"github.com/eduverse/eduverse-backend/internal/database"
	"github.com/eduverse/eduverse-backend/internal/handler"
	"github.com/eduverse/eduverse-backend/internal/middleware"
	"github.com/eduverse/eduverse-backend/internal/provider"
	"github.com/eduverse/eduverse-backend/internal/provider/local"
	"github.com/eduverse/eduverse-backend/internal/provider/supabase"
	"github.com/eduverse/eduverse-backend/internal/queue"
	"github.com/eduverse/eduverse-backend/internal/repository"
	"github.com/eduverse/eduverse-backend/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	// Select the identity backend and the matching profile store. Both are
	// plain interfaces from here on; nothing below this switch knows which
	// deployment mode is running.
	var (
		ident    provider.IdentityProvider
		profiles repository.ProfileStore
	)
	switch cfg.AuthBackend {
	case config.BackendLocal:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		ident = local.New(db, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost)
		profiles = repository.NewProfileRepo(db)
	default:
		ident = supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		profiles = repository.NewRESTProfileStore(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}

	e := echo.New()
	e.Use(echomw.CORS()) // frontend origins are unrestricted, like the original front door

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	a := handler.NewAuthHandler(ident, profiles)
	router.RegisterRoutes(e, a, ident, limiter)

	// Audit-log consumer; runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartUserEventConsumer(); err != nil {
			log.Printf("user-event consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, backend=%s)", addr, cfg.Env, cfg.AuthBackend)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
