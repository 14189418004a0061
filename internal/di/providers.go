package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github-ddb-backend/internal/config"
	"github-ddb-backend/internal/infrastructure/observability"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/infrastructure/persistence/dynamodb"
	"github-ddb-backend/internal/infrastructure/persistence/memory"
	"github-ddb-backend/internal/service"
)

// ============================================================================
// CONFIGURATION PROVIDERS
// ============================================================================

// provideConfig loads the layered configuration from CONFIG_PATH for
// ENVIRONMENT.
func provideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// provideLogger creates the root logger. Production uses JSON, everything
// else the console encoder, unless the config says otherwise.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS - AWS Clients
// ============================================================================

// provideAWSConfig loads the default AWS configuration. SDK retries are
// limited to Database.MaxAttempts.
func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Database.Region),
		awsconfig.WithRetryMaxAttempts(cfg.Database.MaxAttempts),
	}
	if cfg.Database.Endpoint != "" && !cfg.IsProduction() {
		// DynamoDB Local accepts any credentials.
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// provideDynamoDBClient creates the DynamoDB client, pointing it at
// Database.Endpoint when one is configured.
func provideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.Database.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Database.Endpoint)
		}
	})
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS - Observability
// ============================================================================

// provideCollector returns the Prometheus collector, or nil when metrics are
// disabled.
func provideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return tp, nil
}

func provideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS - Store
// ============================================================================

func provideDynamoDBStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *persistence.DynamoDBStore {
	return persistence.NewDynamoDBStore(client, persistence.StoreConfig{
		TableName:      cfg.Database.TableName,
		Timeout:        cfg.Database.Timeout,
		ConsistentRead: cfg.Database.ConsistentRead,
	}, logger)
}

// provideStore decorates the DynamoDB store.
func provideStore(base *persistence.DynamoDBStore, cfg *config.Config, collector *observability.Collector, tracer trace.Tracer, logger *zap.Logger) persistence.Store {
	return decorateStore(base, cfg, collector, tracer, logger)
}

// provideMemoryStore decorates an in-process store. Used for local runs
// without a table and in tests.
func provideMemoryStore(cfg *config.Config, collector *observability.Collector, tracer trace.Tracer, logger *zap.Logger) persistence.Store {
	return decorateStore(memory.NewStore(), cfg, collector, tracer, logger)
}

// decorateStore applies circuit breaker, metrics, tracing and logging, in
// that order from the table outwards. Disabled concerns are skipped.
func decorateStore(base persistence.Store, cfg *config.Config, collector *observability.Collector, tracer trace.Tracer, logger *zap.Logger) persistence.Store {
	var decorators []persistence.StoreDecorator

	if cfg.CircuitBreaker.Enabled {
		decorators = append(decorators, persistence.WithCircuitBreaker(persistence.CircuitBreakerConfig{
			Name:         cfg.Database.TableName,
			MaxRequests:  cfg.CircuitBreaker.MaxRequests,
			Interval:     cfg.CircuitBreaker.Interval,
			Timeout:      cfg.CircuitBreaker.Timeout,
			FailureRatio: cfg.CircuitBreaker.FailureRatio,
			MinRequests:  cfg.CircuitBreaker.MinRequests,
		}, logger))
	}
	if collector != nil {
		decorators = append(decorators, observability.WithMetrics(collector))
	}
	if cfg.Tracing.Enabled {
		decorators = append(decorators, observability.WithTracing(tracer))
	}
	decorators = append(decorators, observability.WithLogging(logger, cfg.Logging.SlowThreshold))

	return persistence.DecorateStore(base, decorators...)
}

// ============================================================================
// REPOSITORY AND SERVICE PROVIDERS
// ============================================================================

func provideRepositories(store persistence.Store, logger *zap.Logger) *dynamodb.Repositories {
	return dynamodb.NewRepositories(store, logger, dynamodb.UTCClock)
}

func provideServices(repos *dynamodb.Repositories, logger *zap.Logger) *Services {
	return &Services{
		Accounts:     service.NewAccountService(repos.Users, repos.Organizations, logger),
		Repositories: service.NewRepositoryService(repos.Repos, repos.Forks, repos.Stars, logger),
		Issues:       service.NewIssueService(repos.Issues, repos.IssueComments, logger),
		PullRequests: service.NewPullRequestService(repos.PullRequests, repos.PRComments, logger),
		Reactions:    service.NewReactionService(repos.Reactions, repos.Targets, logger),
	}
}

func provideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	store persistence.Store,
	repos *dynamodb.Repositories,
	services *Services,
	collector *observability.Collector,
	tp *observability.TracerProvider,
) *Container {
	c := &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Repositories: repos,
		Services:     services,
		Metrics:      collector,
		Tracing:      tp,
	}
	c.addShutdownFunction(func(context.Context) error {
		// Sync fails on non-file sinks such as stderr on some platforms.
		_ = logger.Sync()
		return nil
	})
	c.addShutdownFunction(func(ctx context.Context) error { return tp.Shutdown(ctx) })
	return c
}

// NewDynamoDBClient builds a DynamoDB client from cfg for tools that need
// the raw client, such as table setup.
func NewDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	awsCfg, err := provideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return provideDynamoDBClient(awsCfg, cfg), nil
}
