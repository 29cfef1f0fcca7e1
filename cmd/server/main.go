package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	webAdapter "farmtrack/internal/adapters/web"
	"farmtrack/internal/app"
	"farmtrack/internal/core"
	"farmtrack/internal/db"
	"farmtrack/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("LOG_PRETTY") == "true" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	ctx := context.Background()

	var (
		batchRepo   core.BatchRepository
		productRepo core.ProductRepository
	)
	if os.Getenv("STORE") == "memory" {
		// Volatile store for local development and demos.
		mem := store.NewMemory()
		batchRepo, productRepo = mem, mem
		log.Warn().Msg("using in-memory store; data will not survive a restart")
	} else {
		pool, err := db.NewPool(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("database")
		}
		defer pool.Close()
		pg := store.NewPostgres(pool)
		batchRepo, productRepo = pg, pg
	}

	batchService := core.NewBatchService(batchRepo)
	productService := core.NewProductService(productRepo, batchRepo)
	svc := app.NewAppService(batchService, productService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, log, allowedOrigins)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
