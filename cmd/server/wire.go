package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/config"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/infrastructure/cache"
	"github.com/shelflog/backend/internal/infrastructure/httpx"
	"github.com/shelflog/backend/internal/infrastructure/providers/jikan"
	"github.com/shelflog/backend/internal/infrastructure/providers/mangadex"
	"github.com/shelflog/backend/internal/infrastructure/providers/omdb"
	"github.com/shelflog/backend/internal/infrastructure/providers/openlibrary"
	"github.com/shelflog/backend/internal/infrastructure/providers/rawg"
	"github.com/shelflog/backend/internal/infrastructure/providers/spotify"
	"github.com/shelflog/backend/internal/logging"
	"github.com/shelflog/backend/internal/usecase"
)

// app is the fully wired process: one cache store shared by one search service
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   domain.CacheStore
	service *usecase.SearchService
}

func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp opens the cache store and builds every provider
func newApp(cfg *config.Config, logger *log.Logger) (*app, error) {
	store, err := openStore(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg.Providers, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	for _, key := range cfg.MissingCredentials() {
		logger.Warn("credentials not configured, searches will return no results", "env", key)
	}

	service := usecase.NewSearchService(store, registry, logger, usecase.SearchServiceConfig{
		WriteTimeout: cfg.Cache.WriteTimeout,
	})

	return &app{cfg: cfg, logger: logger, store: store, service: service}, nil
}

// openStore opens the cache backend selected by cfg.Type
func openStore(cfg config.CacheConfig, logger *log.Logger) (domain.CacheStore, error) {
	opts := []cache.Option{
		cache.WithLogger(logger.WithPrefix("cache")),
		cache.WithSweepInterval(cfg.SweepInterval),
	}

	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return cache.NewMemoryCache(cfg.TTL, opts...), nil
	case "pebble":
		store, err := cache.NewPebbleCache(cfg.Path, cfg.TTL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open pebble cache: %w", err)
		}
		return store, nil
	case "sqlite":
		store, err := cache.NewSQLiteCache(cfg.Path, cfg.TTL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// buildRegistry creates one HTTP client per provider so each gets its own rate limiter
func buildRegistry(cfg config.ProvidersConfig, logger *log.Logger) (*usecase.Registry, error) {
	newClient := func(source domain.Source, p config.ProviderConfig) *httpx.Client {
		return httpx.NewClient(source, httpx.Options{
			Timeout:       cfg.Timeout,
			MaxAttempts:   cfg.MaxAttempts,
			RatePerSecond: p.RatePerSecond,
			Burst:         p.Burst,
			UserAgent:     cfg.UserAgent,
			Logger:        logger,
		})
	}

	omdbClient := newClient(domain.SourceOMDb, cfg.OMDb)
	movies, err := omdb.NewProvider(omdbClient, cfg.OMDb.APIKey, cfg.OMDb.BaseURL, domain.CategoryMovie, logger)
	if err != nil {
		return nil, err
	}
	series, err := omdb.NewProvider(omdbClient, cfg.OMDb.APIKey, cfg.OMDb.BaseURL, domain.CategoryTV, logger)
	if err != nil {
		return nil, err
	}

	spotifyClient := newClient(domain.SourceSpotify, cfg.Spotify)
	tokens := spotify.NewClientCredentials(spotifyClient, cfg.Spotify.TokenURL, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)

	return usecase.NewRegistry(
		movies,
		series,
		jikan.NewProvider(newClient(domain.SourceJikan, cfg.Jikan), cfg.Jikan.BaseURL, logger),
		mangadex.NewProvider(newClient(domain.SourceMangaDex, cfg.MangaDex), cfg.MangaDex.BaseURL, cfg.MangaDex.ImageURL, logger),
		rawg.NewProvider(newClient(domain.SourceRAWG, cfg.RAWG), cfg.RAWG.APIKey, cfg.RAWG.BaseURL, logger),
		openlibrary.NewProvider(newClient(domain.SourceOpenLibrary, cfg.OpenLibrary), cfg.OpenLibrary.BaseURL, cfg.OpenLibrary.ImageURL, logger),
		spotify.NewProvider(spotifyClient, tokens, cfg.Spotify.BaseURL, logger),
	)
}
