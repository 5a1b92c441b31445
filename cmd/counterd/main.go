package main

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"github.com/bericyb/dislinkedIn/internal/config"
	"github.com/bericyb/dislinkedIn/internal/db"
	"github.com/bericyb/dislinkedIn/internal/handler"
	"github.com/bericyb/dislinkedIn/internal/metrics"
	"github.com/bericyb/dislinkedIn/internal/middleware"
	"github.com/bericyb/dislinkedIn/internal/repository"
	"github.com/bericyb/dislinkedIn/internal/router"
	"github.com/bericyb/dislinkedIn/internal/service"
)

// counterd is the self-hostable counter store. It serves the same
// single-table HTTP surface as the hosted Supabase project, so the extension
// backend can point SUPABASE_URL at it unchanged.
func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "counterd")
	log := middleware.Logger

	ctx := context.Background()

	var pool *pgxpool.Pool
	var store repository.RowStore
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer pool.Close()

		pgRepo := repository.NewPGDislikeRepo(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("schema setup failed")
		}
		store = pgRepo
	} else {
		log.Warn().Msg("no DATABASE_URL configured, counters are held in memory only")
		store = repository.NewMemoryDislikeRepo()
	}

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	metrics.Register(pool)

	app := fiber.New(fiber.Config{
		AppName:      "dislinkedIn counterd",
		ServerHeader: "counterd",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	router.Setup(app, &router.Handlers{
		Dislike: handler.NewDislikeHandler(store),
		Health:  handler.NewHealthHandler(pool, cache.Client()),
	}, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		APIKey:      cfg.APIKey,
	})

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("counterd starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
