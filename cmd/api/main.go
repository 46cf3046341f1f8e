package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/handler"
	"lending-service/internal/repository"
	"lending-service/internal/service"
	"lending-service/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, keeping info", cfg.LogLevel)
	}

	// Connect to database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	repos := repository.NewRepository(db)

	// Initialize services
	services := service.NewService(service.Dependencies{
		Repos:  repos,
		Logger: log,
		Config: cfg,
	})

	// Seed the product catalogue
	if cfg.ProductsFile != "" {
		products, err := configs.LoadProducts(cfg.ProductsFile)
		if err != nil {
			log.Fatalf("Failed to load products: %v", err)
		}
		added, err := services.Product.Seed(context.Background(), products)
		if err != nil {
			log.Fatalf("Failed to seed products: %v", err)
		}
		log.Infof("Product catalogue seeded: %d added", added)
	}

	// Initialize handlers
	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
	})

	router := handler.NewRouter(handlers, cfg.JWT.Secret, log)

	// Start the delinquency sweep
	sweepScheduler := scheduler.NewScheduler(services.Collection, log)
	if err := sweepScheduler.Start(cfg.Scheduler.Spec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sweepScheduler.Stop()

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}

func initDB(cfg *configs.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
