package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codyseavey/tcg-search/internal/api"
	"github.com/codyseavey/tcg-search/internal/database"
	"github.com/codyseavey/tcg-search/internal/services"
)

func main() {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Database
	dbDriver := getEnv("DB_DRIVER", "sqlite")
	dbPath := getEnv("DB_PATH", "./card_tracker.db")
	if err := database.Initialize(dbDriver, dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	upstreamTimeout := getEnvDuration("UPSTREAM_TIMEOUT", services.DefaultUpstreamTimeout)
	cacheTTL := getEnvDuration("SEARCH_CACHE_TTL", services.DefaultSearchCacheTTL)

	// Providers
	tcgService := services.NewPokemonTCGService(os.Getenv("POKEMON_TCG_API_KEY"), upstreamTimeout)

	priceTrackerAPIKey := os.Getenv("PRICETRACKER_API_KEY")
	if priceTrackerAPIKey == "" {
		log.Println("Warning: PRICETRACKER_API_KEY not set, pricetracker searches will fail with a configuration error")
	}
	priceTrackerService := services.NewPokemonPriceTrackerService(
		priceTrackerAPIKey,
		getEnvInt("PRICETRACKER_DAILY_LIMIT", services.DefaultPriceTrackerDailyLimit),
		upstreamTimeout,
	)

	// Search
	cardIndex, err := services.NewCardIndex(services.DefaultCardIndexSize)
	if err != nil {
		log.Fatalf("Failed to initialize card index: %v", err)
	}
	searchCache := services.NewSearchCache(cacheTTL, services.DefaultSearchCacheCeiling)
	searchService := services.NewSearchService(searchCache, services.DefaultAttemptPolicy(), cardIndex, tcgService, priceTrackerService)

	// Collection
	collectionStore := services.NewCollectionStore(database.NewKVStore(database.GetDB()))
	log.Printf("Loaded collection with %d cards", collectionStore.Len())

	snapshotService := services.NewSnapshotService(database.GetDB(), collectionStore, getEnvInt("SNAPSHOT_HOUR", 23))

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start snapshot service in background
	go snapshotService.Start(ctx)

	router := api.SetupRouter(api.Services{
		Search:       searchService,
		PriceTracker: priceTrackerService,
		Collection:   collectionStore,
		Snapshots:    snapshotService,
	})

	port := getEnv("PORT", "8080")

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the snapshot service
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}
