package di

import (
	"snipgraph-backend/application/ports"
	"snipgraph-backend/application/services"
	"snipgraph-backend/infrastructure/config"
	"snipgraph-backend/interfaces/http/rest"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Projects    ports.ProjectRepository
	Snippets    ports.SnippetRepository
	Connections ports.ConnectionRepository
	Versions    ports.VersionStore
	Publisher   ports.EventPublisher
	Notifier    ports.GraphNotifier
	Cache       ports.Cache
	Metrics     *observability.Metrics
	Tracer      *observability.Tracer
	Validator   *auth.JWTValidator

	ProjectService     *services.ProjectService
	SnippetService     *services.SnippetService
	ConnectionService  *services.ConnectionService
	PropagationService *services.PropagationService
	CombineService     *services.CombineService
	DeletionService    *services.DeletionService

	Router *rest.Router
}
