package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OfficialBika/BikaCommentPicker/cmd"
	"github.com/OfficialBika/BikaCommentPicker/config"
	"github.com/OfficialBika/BikaCommentPicker/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(cfg); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx, cfg); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand(cfg *config.Config) error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: comment-picker migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp(cfg.DatabaseURL)
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(cfg.DatabaseURL, steps)
	case "status":
		return database.MigrateStatus(cfg.DatabaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
