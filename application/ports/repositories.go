package ports

import (
	"context"

	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/events"
)

// SnippetRepository defines the interface for snippet persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
//
// Every read and write is owner-scoped: an ID that exists but belongs to a
// different owner behaves exactly like an absent row, so callers can never
// distinguish "not yours" from "not there".
type SnippetRepository interface {
	// Create persists a new snippet
	Create(ctx context.Context, snippet *entities.Snippet) error

	// GetByID retrieves a snippet by project and ID, scoped to the owner
	GetByID(ctx context.Context, projectID, id, ownerID string) (*entities.Snippet, error)

	// ListByProject retrieves all snippets in a project owned by ownerID
	ListByProject(ctx context.Context, projectID, ownerID string) ([]*entities.Snippet, error)

	// BatchGet retrieves multiple snippets in one round trip, keyed by ID.
	// Missing IDs are simply absent from the result map.
	BatchGet(ctx context.Context, projectID string, ids []string) (map[string]*entities.Snippet, error)

	// Update persists a modified snippet, guarded by an ownership
	// precondition on the stored row
	Update(ctx context.Context, snippet *entities.Snippet) error

	// Delete removes the single snippet row. Cascading over connections and
	// version records is the caller's job. Deleting an absent row is a
	// no-op, which keeps cascade retries safe.
	Delete(ctx context.Context, projectID, id, ownerID string) error
}

// ConnectionFilter narrows a connection query. Zero fields are ignored;
// ProjectID is always required.
type ConnectionFilter struct {
	ProjectID string
	SourceID  string
	TargetID  string
	Label     string
}

// ConnectionRepository defines the interface for connection persistence
type ConnectionRepository interface {
	// Create persists a new connection
	Create(ctx context.Context, conn *entities.Connection) error

	// Query retrieves connections matching the filter. Source and target
	// lookups are index-backed, not scans.
	Query(ctx context.Context, filter ConnectionFilter) ([]*entities.Connection, error)

	// Delete removes a connection row; absent rows are a no-op
	Delete(ctx context.Context, projectID, connectionID, ownerID string) error
}

// VersionStore persists the immutable per-version snapshots of snippets
type VersionStore interface {
	// Append writes one version record; records are never mutated
	Append(ctx context.Context, record *entities.VersionRecord) error

	// ListBySnippet returns all records for a snippet ordered by version
	ListBySnippet(ctx context.Context, snippetID string) ([]*entities.VersionRecord, error)

	// DeleteForSnippet removes every record the owner wrote for a snippet;
	// records belonging to other users and absent records are left alone
	DeleteForSnippet(ctx context.Context, snippetID, ownerID string) error
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// Create persists a new project
	Create(ctx context.Context, project *entities.Project) error

	// GetByID retrieves a project scoped to its owner
	GetByID(ctx context.Context, projectID, ownerID string) (*entities.Project, error)

	// ListByUser retrieves all projects owned by a user
	ListByUser(ctx context.Context, ownerID string) ([]*entities.Project, error)

	// Delete removes the project row, guarded by existence and ownership
	// preconditions
	Delete(ctx context.Context, projectID, ownerID string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// GraphNotifier pushes "the graph changed" notifications to connected canvas
// clients so their reconciliation layer refreshes
type GraphNotifier interface {
	// NotifyGraphChanged tells every open canvas of the user that the
	// project's graph changed
	NotifyGraphChanged(ctx context.Context, userID, projectID, reason string) error
}

// Cache is the explicit cache capability injected into the reconciliation
// layer: point get/set plus prefix invalidation, replacing any process-wide
// query cache.
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// InvalidatePrefix removes every key sharing the given prefix
	InvalidatePrefix(ctx context.Context, prefix string) error
}
