package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	delivery "pokedex-service/internal/adapter/delivery/http"
	handler "pokedex-service/internal/adapter/handler/http"
	"pokedex-service/internal/adapter/pokeapi"
	"pokedex-service/internal/adapter/pokeapi/scenario"
	"pokedex-service/internal/adapter/storage/memory"
	"pokedex-service/internal/adapter/storage/sqlite"
	"pokedex-service/internal/config"
	domainRepo "pokedex-service/internal/domain/repository"
	domainService "pokedex-service/internal/domain/service"
	"pokedex-service/internal/logger"
	"pokedex-service/internal/orchestrator"
)

func main() {
	// --- Configuration ---
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// --- Logger ---
	zapLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer zapLogger.Sync() // Ensure logs are flushed before exiting
	zapLogger.Info("Logger initialized", zap.Any("config", cfg.Logger))

	// --- Dependency Injection (Manual) ---
	zapLogger.Info("Initializing dependencies...")

	var store domainRepo.CacheStore
	switch cfg.Cache.Backend {
	case "memory":
		store = memory.NewCacheStore(cfg.Cache, zapLogger)
	default:
		sqliteStore, err := sqlite.Open(cfg.Cache.SQLitePath, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to open sqlite cache store", zap.Error(err))
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	var client domainService.PokemonClient
	if cfg.API.ScenarioFixture != "" {
		zapLogger.Info("Using scenario client", zap.String("fixture", cfg.API.ScenarioFixture))
		client, err = scenario.Load(cfg.API.ScenarioFixture)
		if err != nil {
			zapLogger.Fatal("Failed to load scenario fixture", zap.Error(err))
		}
	} else {
		client = pokeapi.NewClient(*cfg, zapLogger)
	}

	loader := orchestrator.New(client, store, cfg.Loader, zapLogger)
	pokedexHandler := handler.NewPokedexHandler(loader, zapLogger)

	// --- HTTP Router & Server ---
	zapLogger.Info("Setting up HTTP router...")
	r := router.New()
	delivery.RegisterRoutes(r, pokedexHandler, zapLogger)

	// Middleware (example: logging)
	loggingMiddleware := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			zapLogger.Info("Request received",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("uri", ctx.RequestURI()))
			next(ctx)
		}
	}

	serverAddr := ":" + cfg.Server.Port
	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr))

	if err := fasthttp.ListenAndServe(serverAddr, loggingMiddleware(r.Handler)); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
