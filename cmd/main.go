package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reviewservice/cache"
	"reviewservice/config"
	"reviewservice/db"
	"reviewservice/handlers"
	"reviewservice/monitoring"
	"reviewservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Log.Fatal("Invalid configuration: ", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFile, cfg.Release())
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		utils.Log.Fatal(err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		utils.Log.Fatal(err)
	}
	utils.LogInfo("Database connected and migrated", map[string]interface{}{"driver": cfg.DBDriver})

	if cfg.Seed {
		if err := store.Seed(context.Background()); err != nil {
			utils.Log.Fatal("failed to seed: ", err)
		}
	}

	// Redis is optional; without it every request goes to the database.
	var reviewCache *cache.Cache
	if cfg.RedisURL != "" {
		reviewCache, err = cache.New(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			utils.LogWarn("Redis unavailable, caching disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer reviewCache.Close()
			utils.LogInfo("Redis connected", map[string]interface{}{"addr": cfg.RedisURL})
		}
	}

	r := handlers.NewRouter(handlers.RouterConfig{
		Store:           store,
		Cache:           reviewCache,
		Metrics:         monitoring.NewMetrics(),
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := cfg.UseHTTPS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
	if useTLS {
		server.TLSConfig = &tls.Config{
			MinVersion:       tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
		}
	}

	go func() {
		var err error
		if useTLS {
			utils.Log.WithFields(logrus.Fields{"port": cfg.Port, "cert": cfg.TLSCertFile}).Info("Starting server with HTTPS")
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			utils.Log.WithField("port", cfg.Port).Info("Starting server with HTTP")
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Log.Error("Server forced to shutdown: ", err)
	}
}
