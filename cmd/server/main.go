package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/stwalsh4118/luxeestate/internal/config"
	"github.com/stwalsh4118/luxeestate/internal/datasource"
	"github.com/stwalsh4118/luxeestate/internal/handlers"
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting LuxeEstate API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	source, err := datasource.OpenForServer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", err, nil)
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Error("Failed to close store", err, nil)
		}
	}()

	log.Info("Store selected", map[string]interface{}{
		"mode": source.Store.Mode(),
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(services.New(source.Store, log), log, cfg.Server.Env, cfg.CORS.Origins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
