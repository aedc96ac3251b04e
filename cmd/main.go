package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"districtlottery/internal/config"
	"districtlottery/internal/engine"
	"districtlottery/internal/handlers"
	"districtlottery/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize logging
	var logFile io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logFile = f
	}
	// Without a log file everything goes to the console.
	verbose := cfg.Verbose || cfg.LogFile == ""
	defer logger.Init("lottery", verbose, false, logFile).Close()

	// 3. Initialize the Lottery Service
	lotteryService := services.NewLotteryService(services.Options{
		SeedDefaults: cfg.SeedDefaults,
		Slots:        engine.SlotCalculator{LegacyNameMatch: cfg.LegacyPrizeMatch},
		RandomSeed:   cfg.RandomSeed,
	})

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(lotteryService)

	// 5. Set up the Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 6. Register public routes (before middleware)
	httpHandler.RegisterPublicRoutes(r)

	// 7. Group routes that require tenant identification and apply middleware
	tenantRoutes := r.Group("/")
	tenantRoutes.Use(httpHandler.TenantMiddleware())
	httpHandler.RegisterTenantRoutes(tenantRoutes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Start the background janitor to clean up inactive sessions
	go func() {
		ticker := time.NewTicker(cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n := lotteryService.CleanUpInactiveSessions(cfg.SessionTTL)
				logger.Infof("Performed cleanup of inactive sessions: %d removed", n)
			}
		}
	}()

	// 9. Run the server
	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
