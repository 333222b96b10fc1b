package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"rental-quote-service/internal/app"
	"rental-quote-service/internal/config"
	"syscall"
)

// main is the composition root: it loads configuration, builds the
// dependency container and serves until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainerBuilder().Build(ctx, cfg)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}

	runner, err := app.Resolve(container)
	if err != nil {
		log.Fatal(err)
	}

	if err := runner.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
