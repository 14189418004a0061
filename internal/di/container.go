// Package di assembles the data-access layer with google/wire: configuration,
// logger, AWS clients, the decorated store, repositories and services.
package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github-ddb-backend/internal/config"
	"github-ddb-backend/internal/infrastructure/observability"
	"github-ddb-backend/internal/infrastructure/persistence"
	"github-ddb-backend/internal/infrastructure/persistence/dynamodb"
	"github-ddb-backend/internal/service"
)

// Services bundles the service layer.
type Services struct {
	Accounts     *service.AccountService
	Repositories *service.RepositoryService
	Issues       *service.IssueService
	PullRequests *service.PullRequestService
	Reactions    *service.ReactionService
}

// Container holds every wired component. Metrics is nil when metrics are
// disabled.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        persistence.Store
	Repositories *dynamodb.Repositories
	Services     *Services
	Metrics      *observability.Collector
	Tracing      *observability.TracerProvider

	shutdownFunctions []func(context.Context) error
}

func (c *Container) addShutdownFunction(fn func(context.Context) error) {
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// Health checks that the table is reachable.
func (c *Container) Health(ctx context.Context) error {
	if err := c.Store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("store unhealthy: %w", err)
	}
	return nil
}

// Shutdown runs the registered shutdown functions in reverse order and
// returns all their errors joined.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(c.shutdownFunctions) - 1; i >= 0; i-- {
		if err := c.shutdownFunctions[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown completed with %d errors: %w", len(errs), err)
	}
	return nil
}
