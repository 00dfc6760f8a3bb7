package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/carverauto/srql/internal/api"
	"github.com/carverauto/srql/internal/config"
	"github.com/carverauto/srql/internal/db"
	"github.com/carverauto/srql/internal/engine"
	"github.com/carverauto/srql/internal/export"
	"github.com/carverauto/srql/internal/middleware"
	"github.com/carverauto/srql/internal/rawexec"
	"github.com/carverauto/srql/internal/resource"
	"github.com/carverauto/srql/internal/telemetry"
	"github.com/carverauto/srql/internal/translator"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations("./migrations", cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Structured path: entity registry plus the in-process adapter.
	registry := resource.NewRegistry()
	adapter := resource.NewAdapter(registry, conn.Pool, log)

	// Raw path: external translator plus the raw SQL executor.
	translatorClient := translator.NewHTTPClient(cfg.Translator.URL, cfg.Translator.Timeout)
	rawExecutor := rawexec.NewExecutor(conn.Pool, translatorClient, log)

	router := engine.NewRouter(cfg.Engine.StructuredEnabled, cfg.Engine.StructuredEntities)
	queryEngine := engine.New(router, adapter, rawExecutor, telemetry.NewPrometheusRecorder(), log)

	queryHandler := api.NewHandler(queryEngine, log)
	exportHandler := export.NewHTTPHandler(export.NewService(queryEngine), log)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/api/query", queryHandler)
	mux.Handle("/api/query/export", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(middleware.RequestID(middleware.Logging(log, mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting query server")
		log.Info().Str("endpoint", "/api/query").Msg("query endpoint ready")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
