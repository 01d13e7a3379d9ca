package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lookbook/internal/adapter/repo"
	"lookbook/internal/dispatch"
	"lookbook/internal/http/handlers"
	"lookbook/internal/http/httpapi"
	"lookbook/internal/infra"
	"lookbook/internal/infra/geoip"
	"lookbook/internal/middleware"
	"lookbook/internal/providers"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	exposes := repo.NewExposeRepository(pool)
	shoots := repo.NewShootRepository(pool)
	settings := repo.NewSettingRepository(pool)

	registry := buildRegistry(cfg, settings, logger)
	dispatcher := dispatch.New(registry, exposes, shoots, logger)

	app := handlers.NewApp(logger, exposes, shoots, settings, registry, dispatcher)

	var geo middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		geo = resolver.CountryCode
	}

	limiter := middleware.NewRateLimiter(cfg.RedisAddr, cfg.RateLimitPerMin, time.Minute)
	if limiter == nil {
		logger.Warn().Msg("rate limiting disabled: REDIS_ADDR not set")
	}

	router := httpapi.NewRouter(app, httpapi.Options{Limiter: limiter, Geo: geo})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildRegistry(cfg *infra.Config, settings providers.SettingReader, logger infra.Logger) *providers.Registry {
	registry := providers.NewRegistry(settings)
	registry.Register("deepseek", providers.NewDeepseek(providers.DeepseekOptions{
		APIKey:         cfg.DeepseekAPIKey,
		BaseURL:        cfg.DeepseekBaseURL,
		Model:          cfg.DeepseekModel,
		Logger:         logger,
		RequestTimeout: cfg.ProviderTimeout,
	}))
	registry.Register("perplexity", providers.NewPerplexity(providers.PerplexityOptions{
		APIKey:         cfg.PerplexityAPIKey,
		BaseURL:        cfg.PerplexityBaseURL,
		Model:          cfg.PerplexityModel,
		Logger:         logger,
		RequestTimeout: cfg.ProviderTimeout,
	}))
	registry.Register("fal", providers.NewFal(providers.FalOptions{
		APIKey:         cfg.FalAPIKey,
		BaseURL:        cfg.FalBaseURL,
		Model:          cfg.FalModel,
		DefaultSize:    cfg.FalImageSize,
		Logger:         logger,
		RequestTimeout: cfg.ProviderTimeout,
	}))
	registry.Register("openai", providers.NewOpenAI(providers.OpenAIOptions{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		Logger:         logger,
		RequestTimeout: cfg.ProviderTimeout,
	}))
	return registry
}
