package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-audio-emotion/internal/config"
	"go-audio-emotion/internal/container"
	"go-audio-emotion/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../docs --parseInternal --outputTypes go

// @title        Audio Emotion Detection API
// @version      1.0.0
// @description  Detects the emotion carried by speech audio and narrates the scores through a chat model.
// @BasePath     /
func main() {
	// Load .env before reading configuration
	config.LoadDotEnv()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)

	if cfg.Reload && !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependency injection container
	c, err := container.NewContainer(context.Background(), cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer c.Close()

	readyCtx, cancelReady := context.WithTimeout(context.Background(), 10*time.Second)
	c.CheckReadiness(readyCtx)
	cancelReady()

	// No read/write timeouts: inference and generation are unbounded by default
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"env":     cfg.Env,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
