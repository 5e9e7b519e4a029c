package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-desk/app/api"
	"github.com/lysyi3m/news-desk/app/cfg"
	"github.com/lysyi3m/news-desk/app/feed"
	"github.com/lysyi3m/news-desk/app/gnews"
	"github.com/lysyi3m/news-desk/app/market"
	"github.com/lysyi3m/news-desk/app/storage"
)

func main() {
	if err := run(nil); err != nil {
		slog.Error("News Desk server failed", "error", err)
		os.Exit(1)
	}
}

// run parses args (os.Args when nil), serves until a signal arrives and
// returns once every resource it opened is released.
func run(args []string) error {
	appCfg, err := cfg.LoadArgs(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting News Desk server", "version", appCfg.Version, "port", appCfg.Port)

	if appCfg.GNewsAPIKey == "" {
		slog.Warn("GNEWS_API_KEY is not set, provider requests will be rejected")
	}

	store, err := openStore(appCfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", appCfg.StorageBackend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Storage close error", "error", err)
		}
	}()
	slog.Info("Storage ready", "backend", appCfg.StorageBackend)

	sectionCache := feed.NewSectionCache(appCfg.SectionsDir)
	if err := sectionCache.Run(); err != nil {
		return fmt.Errorf("failed to load sections from %s: %w", appCfg.SectionsDir, err)
	}
	slog.Info("Sections loaded", "count", sectionCache.GetSectionCount())

	provider := gnews.NewClient(appCfg.GNewsAPIKey,
		gnews.WithBaseURL(appCfg.GNewsBaseURL),
		gnews.WithLanguage(appCfg.Language),
		gnews.WithUserAgent(appCfg.UserAgent),
		gnews.WithHTTPClient(&http.Client{Timeout: appCfg.RequestTimeout}),
	)

	handler := api.NewHandler(api.HandlerOptions{
		Provider:       provider,
		SectionCache:   sectionCache,
		Extractor:      feed.NewContentExtractor(appCfg.RequestTimeout, appCfg.UserAgent),
		Store:          store,
		StorageBackend: appCfg.StorageBackend,
		Market:         market.NewGenerator(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))),
		DefaultMax:     appCfg.DefaultMax,
		Version:        appCfg.Version,
	})
	server := api.NewServer(handler, appCfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("News Desk server shutdown complete")
	return serveErr
}

func openStore(appCfg *cfg.Cfg) (storage.Store, error) {
	switch appCfg.StorageBackend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewRedisStore(ctx, appCfg.RedisAddr)
	default:
		return storage.NewSQLiteStore(appCfg.DBPath)
	}
}
