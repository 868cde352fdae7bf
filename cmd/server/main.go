package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/config"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/db"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting finance tracker", map[string]interface{}{
		"port":      cfg.Port,
		"log_level": cfg.LogLevel,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stores, err := db.Open(db.Options{
		URI:            cfg.StoreURI,
		MongoDatabase:  cfg.MongoDatabase,
		ConnectTimeout: cfg.ConnectTimeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to open store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Warm up the connection; a failure here is retried on the first request
	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	if err := stores.Ping(pingCtx); err != nil {
		log.Warn("Store not reachable at startup", map[string]interface{}{
			"backend": stores.Backend,
			"error":   err.Error(),
		})
	} else {
		log.Info("Store connected", map[string]interface{}{
			"backend": stores.Backend,
		})
	}
	pingCancel()

	summaryCache := cache.NewSummaryCache(cfg.SummaryCacheTTL)

	// Initialize services
	txService := service.NewTransactionService(stores.Transactions, summaryCache)
	summaryService := service.NewSummaryService(stores.Transactions, stores.Budgets, summaryCache)

	// Initialize handlers
	txHandler := handler.NewTransactionHandler(txService, log)
	summaryHandler := handler.NewSummaryHandler(summaryService, stores, stores.Backend, log)
	dashboardHandler := handler.NewDashboardHandler(txService, summaryService, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	txHandler.RegisterRoutes(router)
	summaryHandler.RegisterRoutes(router)
	dashboardHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr":    srv.Addr,
			"backend": stores.Backend,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case err, ok := <-serverErr:
		if ok {
			log.Error("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := stores.Close(ctx); err != nil {
		log.Error("Failed to close store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped", nil)
}
