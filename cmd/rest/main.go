package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"restaurant-advisor-be/internal/bootstrap"
	"restaurant-advisor-be/internal/config"
	"restaurant-advisor-be/internal/server"
	"restaurant-advisor-be/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Restore long-term memory from the last snapshot, if one exists
	if data, err := os.ReadFile(cfg.Advisor.SnapshotPath); err == nil {
		if err := container.AdvisorService.Restore(context.Background(), data); err != nil {
			log.Printf("[WARN] Failed to restore memory snapshot: %v", err)
		} else {
			log.Printf("[INFO] Restored memory snapshot from %s", cfg.Advisor.SnapshotPath)
		}
	}

	// 5. Start background consumer for session-archive events
	go func() {
		log.Println("Background: starting archive consumer...")
		if err := container.ArchiveConsumer.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	// 6. Snapshot memory on shutdown, then stop the server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down: writing memory snapshot...")
		writeSnapshot(cfg.Advisor.SnapshotPath, container)

		if err := srv.GetApp().Shutdown(); err != nil {
			log.Printf("[WARN] Server shutdown error: %v", err)
		}
	}()

	// 7. Run server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}

func writeSnapshot(path string, container *bootstrap.Container) {
	data, err := container.AdvisorService.Snapshot(context.Background())
	if err != nil {
		log.Printf("[WARN] Failed to snapshot memory: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("[WARN] Failed to create snapshot directory: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[WARN] Failed to write memory snapshot: %v", err)
		return
	}
	log.Printf("[INFO] Memory snapshot written to %s", path)
}
