package di

import "github.com/google/wire"

// ConfigProviders provides configuration and the root logger.
var ConfigProviders = wire.NewSet(
	provideLogger,
)

// ObservabilityProviders provides the metrics collector and tracer.
var ObservabilityProviders = wire.NewSet(
	provideCollector,
	provideTracerProvider,
	provideTracer,
)

// DynamoDBProviders provides the AWS clients and the decorated table store.
var DynamoDBProviders = wire.NewSet(
	provideAWSConfig,
	provideDynamoDBClient,
	provideDynamoDBStore,
	provideStore,
)

// MemoryProviders provides a decorated in-process store.
var MemoryProviders = wire.NewSet(
	provideMemoryStore,
)

// ApplicationProviders provides repositories, services and the container.
var ApplicationProviders = wire.NewSet(
	provideRepositories,
	provideServices,
	provideContainer,
)
