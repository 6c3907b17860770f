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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"productcatalog/internal/config"
	"productcatalog/internal/es"
	"productcatalog/internal/handlers"
	"productcatalog/internal/logging"
	loggingmw "productcatalog/internal/middleware/logging"
	"productcatalog/internal/mykafka"
	"productcatalog/internal/search"
	httpserver "productcatalog/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{"user_events", "product_events"}
		producer, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			logger.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("KAFKA_ADDRESS not set, domain events disabled")
	}

	var searchHandler *handlers.SearchHandler
	var productIndex *search.Index
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		productIndex = search.NewIndex(esClient, "products")
		searchHandler = &handlers.SearchHandler{Index: productIndex}
	} else {
		logger.Info("ES_URL not set, product search disabled")
	}

	authHandler := &handlers.AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
		TokenTTL:  configuration.JWT_TTL,
		Producer:  producer,
	}

	ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	if err := authHandler.EnsureAdminUser(ctx, configuration.ADMIN_EMAIL, configuration.ADMIN_PASSWORD); err != nil {
		cancel()
		logger.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	// Bounds every request to one database round trip worth of waiting;
	// pool exhaustion comes back as 503 instead of a hung connection.
	e.Use(middleware.ContextTimeout(5 * time.Second))

	deps := httpserver.Deps{
		JWTSecret:      jwtSecret,
		AuthHandler:    authHandler,
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: producer, Search: productIndex},
		SearchHandler:  searchHandler,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", configuration.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
