package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreasstove999/menucart/internal/checkout"
	"github.com/andreasstove999/menucart/internal/config"
	"github.com/andreasstove999/menucart/internal/db"
	"github.com/andreasstove999/menucart/internal/events"
	httpserver "github.com/andreasstove999/menucart/internal/http"
	"github.com/andreasstove999/menucart/internal/store"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[menucart] ", log.LstdFlags|log.Lshortfile)

	var st store.Store
	var pub checkout.Publisher
	var closers []func()

	if cfg.DemoMode {
		logger.Printf("demo mode: in-memory store, no broker")
		st = store.NewMemoryStore()
	} else {
		if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}

		pool := db.MustOpenPool(context.Background(), cfg.DBDSN)
		closers = append(closers, pool.Close)
		st = store.NewPostgresStore(pool)

		rabbitConn := events.MustDialRabbit()
		closers = append(closers, func() { _ = rabbitConn.Close() })

		publisher, err := events.NewPublisher(rabbitConn)
		if err != nil {
			logger.Fatalf("create publisher: %v", err)
		}
		closers = append(closers, func() { _ = publisher.Close() })
		pub = publisher
	}

	handler := httpserver.NewCartHandler(st, pub, logger, cfg.StoreTimeout)
	mux := httpserver.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("menucart listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
