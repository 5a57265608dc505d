package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"itinera/config"
	"itinera/database"
	"itinera/handlers"
	"itinera/logger"
	"itinera/services"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	logger.New(logger.Config{Service: "itinera", Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	cfg.LogConfiguration()

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("✅ Database connected")

	var cache services.ImageCache
	if cfg.RedisURL != "" {
		if rc, err := connectRedis(ctx, cfg.RedisURL); err != nil {
			log.Warn().Err(err).Msg("⚠️  Redis unavailable — image lookups are not cached")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	planner, links := newPlanner(cfg, cache)
	r, err := handlers.NewRouter(handlers.New(store, planner, links), cfg.AllowedOrigins())
	if err != nil {
		return errors.Wrap(err, "build router")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🚀 Itinera backend starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("⏳ Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func connectRedis(ctx context.Context, url string) (*services.RedisImageCache, error) {
	rc, err := services.NewRedisImageCache(url)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		rc.Close()
		return nil, err
	}
	return rc, nil
}

// newPlanner builds every optional collaborator the configuration enables.
func newPlanner(cfg *config.Config, cache services.ImageCache) (*services.Planner, *services.MapLinks) {
	var geocoder *services.Geocoder
	if cfg.GeoapifyGeocode && cfg.GeoapifyAPIKey != "" {
		geocoder = services.NewGeocoder(services.GeoapifyBaseURL, cfg.GeoapifyAPIKey, cfg.RequestTimeout)
	}
	links := services.NewMapLinks(cfg.GeoapifyAPIKey, geocoder)

	planner := &services.Planner{
		Generator: newGenerator(cfg),
		Images:    services.NewImageService(services.UnsplashBaseURL, cfg.UnsplashAccessKey, cache, cfg.ImageCacheTTL, cfg.RequestTimeout),
		Links:     links,
	}
	if cfg.AmadeusClientID != "" && cfg.AmadeusClientSecret != "" {
		planner.Amadeus = services.NewAmadeusClient(
			services.AmadeusBaseURL(cfg.AmadeusEnv), cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.RequestTimeout)
		log.Info().Str("env", cfg.AmadeusEnv).Msg("✅ Amadeus client initialised")
	} else {
		log.Warn().Msg("⚠️  Amadeus credentials not set — travel details come from the AI only")
	}
	return planner, links
}

func newGenerator(cfg *config.Config) services.Generator {
	switch cfg.AIProvider {
	case config.ProviderHuggingFace:
		if cfg.HuggingFaceAPIKey == "" {
			log.Warn().Msg("⚠️  HUGGINGFACE_API_KEY not set — itineraries use the fallback plan")
			return nil
		}
		return services.NewHuggingFaceClient(services.HuggingFaceBaseURL, cfg.HuggingFaceAPIKey, cfg.HFModel, cfg.RequestTimeout)
	default:
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("⚠️  GEMINI_API_KEY not set — itineraries use the fallback plan")
			return nil
		}
		return services.NewGeminiClient(services.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RequestTimeout)
	}
}
