package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"lingostream/api"
	"lingostream/config"
	"lingostream/handlers"
	"lingostream/internal/glossary"
	"lingostream/internal/memcache"
	"lingostream/models"
	"lingostream/services/catalog"
	"lingostream/services/metadata"
	"lingostream/services/translate"
	"lingostream/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogPath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}))
	}

	gloss, err := glossary.Load(cfg.GlossaryPath)
	if err != nil {
		log.Printf("[main] failed to load glossary from %s: %v", cfg.GlossaryPath, err)
	} else if gloss.Len() > 0 {
		log.Printf("[main] loaded %d glossary rule(s)", gloss.Len())
	}

	cache := memcache.New(cfg.CacheMaxItems, cfg.CacheTTL, cfg.DebugTranslation)

	var store *translate.Store
	if cfg.TranslationDBPath != "" {
		store, err = translate.OpenStore(cfg.TranslationDBPath)
		if err != nil {
			log.Printf("[main] translation store unavailable at %s: %v", cfg.TranslationDBPath, err)
		} else {
			defer store.Close()
		}
	}

	var translator *translate.Engine
	if cfg.GeminiAPIKey != "" {
		translator = translate.NewEngine(cfg.GeminiAPIKey, cfg.GeminiModel, nil, cache, store, gloss, translate.Options{
			DisableHeuristic:  cfg.DisableLangHeuristic,
			EnforceTargetLang: cfg.EnforceTargetLang,
			Debug:             cfg.DebugTranslation,
		})
	} else {
		log.Println("[main] GEMINI_API_KEY not set, synopses will be served untranslated")
	}

	var localizer metadata.Localizer
	if translator != nil {
		localizer = translator
	}
	metaService := metadata.NewService(cfg.TMDBAPIKey, cfg.TMDBBearer, nil, localizer, cache, cfg.AlwaysSourceEN, cfg.DebugTranslation)

	sources := []catalog.Source{
		catalog.NewLocalSource(),
		catalog.NewTMDBSource(cfg.TMDBAPIKey, nil),
		catalog.NewOMDBSource(cfg.OMDBAPIKey, nil),
	}
	var catalogLocalizer catalog.Localizer
	if translator != nil {
		catalogLocalizer = translator
	}
	catalogService := catalog.NewService(sources, catalogLocalizer, cache, cfg.DebugTranslation)

	remote := catalog.NewRemoteAggregator(cfg.RemoteAddons, nil, catalogLocalizer, cfg.RemoteRefresh, cfg.DebugTranslation)

	addon := &handlers.AddonHandler{
		Metadata:    metaService,
		Catalog:     catalogService,
		DefaultLang: cfg.TargetLang,
		DefaultTone: cfg.DefaultTone,
	}
	if len(cfg.RemoteAddons) > 0 {
		addon.Remote = remote
	}

	router := utils.NewRouter()
	router.Use(api.AccessLogMiddleware())
	router.Use(api.RateLimitMiddleware(api.NewIPRateLimiter(rate.Every(time.Second/10), 30)))
	addon.RegisterRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := remote.Start(ctx); err != nil {
		log.Printf("[main] remote aggregator failed to start: %v", err)
	}

	if cfg.Pretranslate {
		go catalogService.Warm(ctx, models.ParseLocale(cfg.TargetLang, cfg.DefaultTone, cfg.TargetLang, cfg.DefaultTone))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := remote.Stop(shutdownCtx); err != nil {
		log.Printf("[main] remote aggregator stop: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown: %v", err)
	}
}
