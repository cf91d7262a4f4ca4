package di

import (
	"context"
	"fmt"

	domainconfig "snipgraph-backend/domain/config"
	"snipgraph-backend/application/ports"
	"snipgraph-backend/application/services"
	"snipgraph-backend/infrastructure/config"
	"snipgraph-backend/infrastructure/messaging/eventbridge"
	"snipgraph-backend/infrastructure/messaging/websocket"
	"snipgraph-backend/infrastructure/persistence/dynamodb"
	"snipgraph-backend/interfaces/http/rest"
	"snipgraph-backend/interfaces/http/rest/handlers"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideProjectRepository creates a project repository
func ProvideProjectRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProjectRepository {
	return dynamodb.NewProjectRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSnippetRepository creates a snippet repository
func ProvideSnippetRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SnippetRepository {
	return dynamodb.NewSnippetRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideConnectionRepository creates a connection repository
func ProvideConnectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRepository {
	return dynamodb.NewConnectionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideVersionStore creates a version store
func ProvideVersionStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.VersionStore {
	return dynamodb.NewVersionStore(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates an EventBridge-backed event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideGraphNotifier creates the WebSocket notifier. Without a configured
// management endpoint the notifier is nil and callers skip notification.
func ProvideGraphNotifier(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.GraphNotifier {
	if cfg.WebSocketEndpoint == "" {
		return nil
	}
	return websocket.NewNotifier(awsCfg, cfg.WebSocketEndpoint, cfg.ConnectionsTable, logger)
}

// ProvideMetrics creates the metrics recorder. Nil when metrics are
// disabled; the recorder is nil-receiver safe.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("SnipGraph/%s", cfg.Environment)
	return observability.NewMetrics(client, namespace, logger)
}

// ProvideTracer creates the X-Ray tracer, nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("snipgraph-backend")
}

// ProvideDomainConfig derives graph-walk limits from the runtime config
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	dc.MaxBranchWalkDepth = cfg.MaxBranchWalkDepth
	return dc
}

// ProvideJWTValidator creates the HS256 token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  []string{"snipgraph-api"},
	})
}

// ProvideInMemoryCache creates a process-local cache for read results
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideProjectService creates the project service
func ProvideProjectService(projects ports.ProjectRepository, logger *zap.Logger) *services.ProjectService {
	return services.NewProjectService(projects, logger)
}

// ProvideSnippetService creates the snippet service
func ProvideSnippetService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.SnippetService {
	return services.NewSnippetService(snippets, connections, versions, publisher, logger)
}

// ProvideConnectionService creates the connection service
func ProvideConnectionService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.ConnectionService {
	return services.NewConnectionService(snippets, connections, publisher, logger)
}

// ProvidePropagationService creates the propagation service
func ProvidePropagationService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	logger *zap.Logger,
) *services.PropagationService {
	return services.NewPropagationService(snippets, connections, logger)
}

// ProvideCombineService creates the combine service
func ProvideCombineService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	notifier ports.GraphNotifier,
	metrics *observability.Metrics,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.CombineService {
	return services.NewCombineService(snippets, connections, versions, publisher, notifier, metrics, domainCfg, logger)
}

// ProvideDeletionService creates the deletion service
func ProvideDeletionService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	projects ports.ProjectRepository,
	publisher ports.EventPublisher,
	notifier ports.GraphNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.DeletionService {
	return services.NewDeletionService(snippets, connections, versions, projects, publisher, notifier, metrics, logger)
}

// ProvideProjectHandler creates the project handler
func ProvideProjectHandler(projects *services.ProjectService, deletion *services.DeletionService, logger *zap.Logger) *handlers.ProjectHandler {
	return handlers.NewProjectHandler(projects, deletion, logger)
}

// ProvideSnippetHandler creates the snippet handler
func ProvideSnippetHandler(snippets *services.SnippetService, deletion *services.DeletionService, logger *zap.Logger) *handlers.SnippetHandler {
	return handlers.NewSnippetHandler(snippets, deletion, logger)
}

// ProvideConnectionHandler creates the connection handler
func ProvideConnectionHandler(connections *services.ConnectionService, logger *zap.Logger) *handlers.ConnectionHandler {
	return handlers.NewConnectionHandler(connections, logger)
}

// ProvideGraphHandler creates the graph handler
func ProvideGraphHandler(propagation *services.PropagationService, combine *services.CombineService, logger *zap.Logger) *handlers.GraphHandler {
	return handlers.NewGraphHandler(propagation, combine, logger)
}

// ProvideRouter assembles the HTTP router
func ProvideRouter(
	cfg *config.Config,
	validator *auth.JWTValidator,
	tracer *observability.Tracer,
	projects *handlers.ProjectHandler,
	snippets *handlers.SnippetHandler,
	connections *handlers.ConnectionHandler,
	graph *handlers.GraphHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, validator, tracer, projects, snippets, connections, graph, logger)
}
