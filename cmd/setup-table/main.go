// Command setup-table creates the single table and its global secondary
// indexes if they do not exist yet.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github-ddb-backend/internal/config"
	"github-ddb-backend/internal/di"
	"github-ddb-backend/internal/infrastructure/observability"
	"github-ddb-backend/internal/infrastructure/persistence/dynamodb"
)

func main() {
	wait := flag.Duration("wait", 2*time.Minute, "How long to wait for the table to become active")
	table := flag.String("table", "", "Table name, overriding the configuration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *table != "" {
		cfg.Database.TableName = *table
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	client, err := di.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create DynamoDB client", zap.Error(err))
	}

	created, err := dynamodb.EnsureTable(ctx, client, cfg.Database.TableName, *wait, logger)
	if err != nil {
		logger.Error("table setup failed", zap.String("table", cfg.Database.TableName), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("table ready",
		zap.String("table", cfg.Database.TableName),
		zap.Bool("created", created),
		zap.Strings("config_sources", cfg.LoadedFrom))
}
