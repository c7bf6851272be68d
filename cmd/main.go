package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notification-service/internal/config"
	"notification-service/internal/server"
)

func main() {
	// Load config (reads .env if present)
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server (HTTP + change-event consumer inside)
	srv := server.NewServer(ctx, cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("📢 Notification service HTTP server starting on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		log.Println("🛑 Notification service shutting down gracefully...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Notification service shutdown error: %v", err)
		}
	case err := <-errCh:
		log.Fatalf("Notification service failed: %v", err)
	}
}
