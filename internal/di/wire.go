//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github-ddb-backend/internal/config"
)

// InitializeContainer wires the container from the environment's
// configuration against DynamoDB.
func InitializeContainer(ctx context.Context) (*Container, error) {
	wire.Build(provideConfig, ConfigProviders, ObservabilityProviders, DynamoDBProviders, ApplicationProviders)
	return nil, nil
}

// InitializeContainerWithConfig wires the container from cfg against
// DynamoDB.
func InitializeContainerWithConfig(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(ConfigProviders, ObservabilityProviders, DynamoDBProviders, ApplicationProviders)
	return nil, nil
}

// InitializeMemoryContainer wires the container from cfg against an
// in-process store.
func InitializeMemoryContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(ConfigProviders, ObservabilityProviders, MemoryProviders, ApplicationProviders)
	return nil, nil
}
