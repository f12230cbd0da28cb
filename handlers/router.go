package handlers

import (
	"time"

	"reviewservice/cache"
	"reviewservice/db"
	"reviewservice/middleware"
	"reviewservice/monitoring"
	"reviewservice/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the dependencies NewRouter wires together.
type RouterConfig struct {
	Store   *db.Store
	Cache   *cache.Cache
	Metrics *monitoring.Metrics

	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Metrics == nil {
		cfg.Metrics = monitoring.NewMetrics()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(), middleware.ErrorLogger())
	r.Use(middleware.SecurityHeaders(), middleware.RemovePoweredBy())
	r.Use(cfg.Metrics.Middleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type"},
			ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining"},
			AllowCredentials: true,
		}))
	}

	reviews := &ReviewHandler{
		Reviews: repository.NewReviewRepository(cfg.Store),
		Cache:   cfg.Cache,
		Metrics: cfg.Metrics,
	}
	catalog := &CatalogHandler{Catalog: repository.NewCatalogRepository(cfg.Store)}
	stats := &StatsHandler{Store: cfg.Store, Cache: cfg.Cache}

	r.GET("/health", stats.Health)
	r.GET("/metrics", cfg.Metrics.Handler())

	api := r.Group("/")
	api.Use(middleware.RateLimit(cfg.Cache, cfg.RateLimitMax, cfg.RateLimitWindow))
	{
		api.GET("/reviews", reviews.GetReviews)
		api.POST("/reviews", reviews.CreateReview)
		api.GET("/reviews/:id", reviews.GetReviewByID)
		api.PATCH("/reviews/:id", reviews.UpdateReview)
		api.DELETE("/reviews/:id", reviews.DeleteReview)

		api.GET("/users", catalog.GetUsers)
		api.GET("/users/:id", catalog.GetUserByID)
		api.GET("/games", catalog.GetGames)
		api.GET("/games/:id", catalog.GetGameByID)

		api.GET("/stats", stats.GetReviewStats)
	}

	return r
}
