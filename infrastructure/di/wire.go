//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"snipgraph-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideProjectRepository,
	ProvideSnippetRepository,
	ProvideConnectionRepository,
	ProvideVersionStore,
	ProvideEventPublisher,
	ProvideGraphNotifier,
	ProvideMetrics,
	ProvideTracer,
	ProvideDomainConfig,
	ProvideJWTValidator,
	ProvideInMemoryCache,
	ProvideProjectService,
	ProvideSnippetService,
	ProvideConnectionService,
	ProvidePropagationService,
	ProvideCombineService,
	ProvideDeletionService,
	ProvideProjectHandler,
	ProvideSnippetHandler,
	ProvideConnectionHandler,
	ProvideGraphHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
