// Command seed loads a YAML fixture into the table through the service layer.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github-ddb-backend/internal/config"
	"github-ddb-backend/internal/di"
	"github-ddb-backend/internal/seed"
)

func main() {
	path := flag.String("fixture", "config/fixtures/demo.yaml", "Path to the YAML fixture")
	inMemory := flag.Bool("memory", false, "Load into an in-process store instead of DynamoDB (dry run)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	var container *di.Container
	if *inMemory {
		container, err = di.InitializeMemoryContainer(ctx, cfg)
	} else {
		container, err = di.InitializeContainerWithConfig(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}
	logger := container.Logger

	if err := run(ctx, container, *path); err != nil {
		logger.Error("seed failed", zap.String("fixture", *path), zap.Error(err))
		_ = container.Shutdown(ctx)
		os.Exit(1)
	}
	if err := container.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func run(ctx context.Context, container *di.Container, path string) error {
	if err := container.Health(ctx); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fixture, err := seed.Parse(file)
	if err != nil {
		return err
	}

	summary, err := seed.NewLoader(container.Services, container.Logger).Apply(ctx, fixture)
	if err != nil {
		return err
	}
	container.Logger.Info("seed complete",
		zap.String("fixture", path),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped))
	return nil
}
