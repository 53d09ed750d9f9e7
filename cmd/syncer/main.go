package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_haven/internal/adapters/observability"
	redisad "hotel_haven/internal/adapters/redis"
	"hotel_haven/internal/adapters/sanity"
	"hotel_haven/internal/app"
	"hotel_haven/internal/shared"
	mysqlrepo "hotel_haven/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("project", cfg.SanityProject).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	content, err := sanity.New(sanity.Endpoint(cfg.SanityProject, cfg.SanityDataset), cfg.SanityToken, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("content client init failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewSyncService(content, repo, cache)

	rooms, err := svc.ListRooms(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("room catalog fetch failed")
	}
	log.Info().Int("rooms", len(rooms)).Msg("catalog fetched")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, room := range rooms {
		room := room

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := svc.SyncRoom(ctx, room, cfg.ReviewCount); err != nil {
				log.Warn().Str("room", room.ID).Err(err).Msg("sync failed")
				return
			}
			log.Info().Str("room", room.ID).Str("slug", room.Slug).Msg("sync ok")
		}()
	}

	wg.Wait()
	svc.InvalidateCatalog(ctx)
	log.Info().Msg("sync completed")
}
