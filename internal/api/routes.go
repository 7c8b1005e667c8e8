package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/tcg-search/internal/api/handlers"
	"github.com/codyseavey/tcg-search/internal/services"
)

// Services groups everything the router hands out to handlers
type Services struct {
	Search       *services.SearchService
	PriceTracker *services.PokemonPriceTrackerService
	Collection   *services.CollectionStore
	Snapshots    *services.SnapshotService
}

func SetupRouter(svc Services) *gin.Engine {
	router := gin.Default()
	router.HandleMethodNotAllowed = true

	// Get frontend dist path from env
	frontendPath := os.Getenv("FRONTEND_DIST_PATH")
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.ExposeHeaders = []string{handlers.CacheHeader, RequestIDHeader}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))
	router.Use(RequestID(), Metrics())

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(svc.Search)
	cardHandler := handlers.NewCardHandler(svc.Search.CardIndex())
	collectionHandler := handlers.NewCollectionHandler(svc.Collection, svc.Search.CardIndex(), svc.Snapshots)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/search", searchHandler.SearchCards)
		api.HEAD("/search", searchHandler.SearchCards)

		// Card routes
		cards := api.Group("/cards")
		{
			cards.GET("/:id", cardHandler.GetCard)
		}

		// Collection routes
		collection := api.Group("/collection")
		{
			collection.GET("", collectionHandler.GetCollection)
			collection.POST("", collectionHandler.AddToCollection)
			collection.DELETE("/:index", collectionHandler.DeleteCollectionItem)
			collection.GET("/value", collectionHandler.GetValue)
			collection.GET("/export", collectionHandler.ExportCollection)
			collection.GET("/history", collectionHandler.GetValueHistory)
		}

		// Price routes
		if svc.PriceTracker != nil {
			priceHandler := handlers.NewPriceHandler(svc.PriceTracker)
			prices := api.Group("/prices")
			{
				prices.GET("/status", priceHandler.GetPriceStatus)
			}
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
