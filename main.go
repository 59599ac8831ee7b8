// File: villacal/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"villacal/config"
	"villacal/cron"
	"villacal/handlers"
	"villacal/middleware"
	"villacal/routes"
	"villacal/services/calendar"
	"villacal/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	// The feed cache is the only shared mutable state; one instance for the
	// whole process, torn down with it.
	feedCache := calendar.NewFeedCache(config.CacheTTL())
	fetcher := calendar.NewFetcher(config.FetchTimeout())
	aggregator := calendar.NewAggregator(config.AppConfig.CalendarSources, feedCache, fetcher)

	calendarHandler := handlers.NewCalendarHandler(aggregator, feedCache)

	// Register routes with the assembled handler.
	routes.RegisterRoutes(router, calendarHandler)

	// Background warm refresh (optional).
	refreshWorker := cron.InitRefreshWorker(config.AppConfig.RefreshCron, aggregator)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s with %d calendar source(s)...",
		srv.Addr, len(config.AppConfig.CalendarSources))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
