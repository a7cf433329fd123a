package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vkarpenko/gitpulse/internal/api"
	"github.com/vkarpenko/gitpulse/internal/cache"
	"github.com/vkarpenko/gitpulse/internal/config"
	"github.com/vkarpenko/gitpulse/internal/fetch"
	"github.com/vkarpenko/gitpulse/internal/github"
	"github.com/vkarpenko/gitpulse/internal/insights"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// The snapshot loads before any other component runs; a missing or
	// corrupt file just means an empty cache.
	store := cache.New(cfg.CacheSnapshotPath)
	store.Load()

	client := github.NewClient(cfg.GitHubToken, cfg.HTTPTimeout)
	if client.Lite() {
		slog.Warn("No GITHUB_TOKEN configured, running in lite mode",
			"repo", cfg.GitHubRepo,
		)
	}

	fetcher := fetch.New(client, store, cfg.DefaultTTL)
	limiter := fetch.NewLimiter(cfg.FetchConcurrency)
	service := insights.NewService(fetcher, limiter, cfg.Owner(), cfg.Repo(), client.Lite())

	router := api.NewRouter(&api.RouterConfig{
		Cache:   store,
		Service: service,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // graph/review builds fan out upstream
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (repo %s)", cfg.Port, cfg.GitHubRepo)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
