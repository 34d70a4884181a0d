package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strings"
)

// Backend names accepted in AUTH_BACKEND.
const (
	BackendSupabase = "supabase"
	BackendLocal    = "local"
)

// Config holds all runtime configuration values, loaded once at process
// start and never mutated. Which fields are required depends on the
// selected identity backend.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	AuthBackend string // identity backend: "supabase" or "local"

	// Managed backend (AUTH_BACKEND=supabase).
	SupabaseURL     string // project base URL
	SupabaseAnonKey string // anon (publishable) API key

	// Self-hosted backend (AUTH_BACKEND=local).
	DBUser       string
	DBPass       string // optional
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
}

// Load reads configuration from environment variables. Variables required
// by the selected backend are enforced by must(); missing values cause the
// process to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        getenv("APP_PORT", "5000"),
		AuthBackend: strings.ToLower(getenv("AUTH_BACKEND", BackendSupabase)),
	}

	switch cfg.AuthBackend {
	case BackendSupabase:
		cfg.SupabaseURL = must("SUPABASE_URL")
		cfg.SupabaseAnonKey = must("SUPABASE_ANON_KEY")
	case BackendLocal:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
		cfg.JWTSecret = must("JWT_SECRET")
		cfg.AccessTTLMin = envInt("ACCESS_TOKEN_TTL_MIN", 60)
		cfg.BcryptCost = envInt("BCRYPT_COST", 10)
	default:
		log.Fatalf("unknown AUTH_BACKEND: %q (want %s or %s)", cfg.AuthBackend, BackendSupabase, BackendLocal)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an environment variable or a default.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
