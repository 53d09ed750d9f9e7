package main

import (
	"database/sql"
	"net/http"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_haven/internal/adapters/http_server"
	"hotel_haven/internal/adapters/observability"
	redisad "hotel_haven/internal/adapters/redis"
	"hotel_haven/internal/adapters/sanity"
	"hotel_haven/internal/app"
	"hotel_haven/internal/auth"
	"hotel_haven/internal/fetch"
	"hotel_haven/internal/shared"
	mysqlrepo "hotel_haven/internal/storage/mysql"
	"hotel_haven/internal/web"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	content, err := sanity.New(sanity.Endpoint(cfg.SanityProject, cfg.SanityDataset), cfg.SanityToken, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("content client init failed")
	}
	q := app.NewQueryService(content, cache, cfg.CacheTTL)
	authSvc := auth.NewService(repo, cfg.AuthSecret, cfg.SessionMaxAge)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))

	api := &server.Handlers{
		Q:             q,
		Auth:          authSvc,
		Contacts:      repo,
		SessionMaxAge: cfg.SessionMaxAge,
		CookieSecure:  strings.HasPrefix(cfg.BaseURL, "https://"),
	}
	srv.MountHandlers(api)

	pages, err := web.New(q, fetch.New(), repo, cfg.BaseURL, api.CurrentUser)
	if err != nil {
		log.Fatal().Err(err).Msg("page templates failed to parse")
	}
	srv.MountRoutes(pages.Mount)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
