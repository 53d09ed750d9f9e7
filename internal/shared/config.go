package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	BaseURL     string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	// Content store (headless CMS query API)
	SanityProject string
	SanityDataset string
	SanityToken   string

	// Auth
	AuthSecret    string
	SessionMaxAge time.Duration

	// Payments. The secret key is read lazily by the payment package and
	// deliberately not validated here: absence must fail at handle
	// construction, not at startup.
	StripePublishableKey string

	Workers     int
	ReviewCount int
	CacheTTL    time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:               env("APP_ENV", "prod"),
		HTTPAddr:             env("HTTP_ADDR", ":8080"),
		MetricsAddr:          env("METRICS_ADDR", ":9100"),
		BaseURL:              env("BASE_URL", "http://localhost:8080"),
		MySQLDSN:             env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_haven?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:            env("REDIS_ADDR", "localhost:6379"),
		RedisPass:            env("REDIS_PASSWORD", ""),
		RedisDB:              atoi("REDIS_DB", 0),
		SanityProject:        env("SANITY_PROJECT_ID", ""),
		SanityDataset:        env("SANITY_DATASET", "production"),
		SanityToken:          env("SANITY_API_TOKEN", ""),
		AuthSecret:           env("AUTH_SECRET", ""),
		SessionMaxAge:        time.Duration(atoi("SESSION_MAX_AGE_SECONDS", 30*24*3600)) * time.Second,
		StripePublishableKey: env("STRIPE_PUBLISHABLE_KEY", ""),
		Workers:              atoi("SYNC_WORKERS", 8),
		ReviewCount:          atoi("SYNC_REVIEW_COUNT", 100),
		CacheTTL:             time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.SanityProject == "" {
		log.Warn().Msg("SANITY_PROJECT_ID is empty")
	}
	if c.AuthSecret == "" {
		log.Warn().Msg("AUTH_SECRET is empty; session cookies are not signed")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
