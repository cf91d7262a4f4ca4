package services

import (
	"context"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/events"
	pkgerrors "snipgraph-backend/pkg/errors"
	"snipgraph-backend/pkg/observability"

	"go.uber.org/zap"
)

// DeletionService removes snippets and projects together with everything
// that references them: connections in both directions and version history.
//
// The backing store has no cross-row transactions, so the cascade is
// best-effort by design: a failure partway leaves a partially-cleaned graph,
// and safety comes from idempotence instead of atomicity. Deleting rows that
// are already gone is a no-op, so callers retry until the cascade converges.
type DeletionService struct {
	snippets    ports.SnippetRepository
	connections ports.ConnectionRepository
	versions    ports.VersionStore
	projects    ports.ProjectRepository
	publisher   ports.EventPublisher
	notifier    ports.GraphNotifier
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewDeletionService creates a new deletion service
func NewDeletionService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	projects ports.ProjectRepository,
	publisher ports.EventPublisher,
	notifier ports.GraphNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DeletionService {
	return &DeletionService{
		snippets:    snippets,
		connections: connections,
		versions:    versions,
		projects:    projects,
		publisher:   publisher,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

// DeleteSnippetCascade removes one snippet, every connection touching it,
// and its version history. Ownership is checked on the snippet itself, never
// inferred from a connection. A snippet that is already gone does not error;
// the sweep still runs so a retried cascade can finish cleaning up.
func (s *DeletionService) DeleteSnippetCascade(ctx context.Context, projectID, snippetID, ownerID string) error {
	snippet, err := s.snippets.GetByID(ctx, projectID, snippetID, ownerID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}

	removed, err := s.deleteConnectionsTouching(ctx, projectID, snippetID, ownerID)
	if err != nil {
		return err
	}

	if err := s.versions.DeleteForSnippet(ctx, snippetID, ownerID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete version history")
	}

	if snippet != nil {
		if err := s.snippets.Delete(ctx, projectID, snippetID, ownerID); err != nil {
			return err
		}

		if s.publisher != nil {
			event := events.NewSnippetDeleted(snippet.ID(), projectID, time.Now())
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish snippet deleted event", zap.Error(err))
			}
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyGraphChanged(ctx, ownerID, projectID, "snippet-delete"); err != nil {
			s.logger.Debug("graph change notification failed", zap.Error(err))
		}
	}

	s.metrics.RecordCount(ctx, "CascadeConnectionsRemoved", float64(removed))

	s.logger.Info("snippet cascade complete",
		zap.String("snippetID", snippetID),
		zap.String("projectID", projectID),
		zap.Int("connectionsRemoved", removed),
	)

	return nil
}

// DeleteProjectCascade removes every snippet the caller owns in the project
// (each via the snippet cascade), sweeps any remaining project-scoped
// connection rows, then deletes the project row itself.
func (s *DeletionService) DeleteProjectCascade(ctx context.Context, projectID, ownerID string) error {
	// The root entity must exist and be owned by the caller before any
	// deletion step runs.
	project, err := s.projects.GetByID(ctx, projectID, ownerID)
	if err != nil {
		return err
	}

	snippets, err := s.snippets.ListByProject(ctx, projectID, ownerID)
	if err != nil {
		return err
	}

	for _, snippet := range snippets {
		if err := s.DeleteSnippetCascade(ctx, projectID, snippet.ID().String(), ownerID); err != nil {
			return pkgerrors.Wrapf(err, "cascade failed at snippet %s", snippet.ID().String())
		}
	}

	// Defensive sweep: connections whose endpoints were already gone are
	// not reachable through any snippet cascade.
	remaining, err := s.connections.Query(ctx, ports.ConnectionFilter{ProjectID: projectID})
	if err != nil {
		return err
	}
	for _, conn := range remaining {
		if conn.UserID != ownerID {
			continue
		}
		if err := s.connections.Delete(ctx, projectID, conn.ID, ownerID); err != nil {
			return err
		}
	}

	if err := s.projects.Delete(ctx, projectID, ownerID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewProjectDeleted(projectID, ownerID, time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish project deleted event", zap.Error(err))
		}
	}

	s.logger.Info("project cascade complete",
		zap.String("projectID", projectID),
		zap.String("name", project.Name),
		zap.Int("snippets", len(snippets)),
		zap.Int("sweptConnections", len(remaining)),
	)

	return nil
}

// deleteConnectionsTouching removes every connection where the snippet is
// source or target. Both directions are queried separately; each row is
// deleted individually since the store offers no batch atomicity.
func (s *DeletionService) deleteConnectionsTouching(ctx context.Context, projectID, snippetID, ownerID string) (int, error) {
	removed := 0

	for _, filter := range []ports.ConnectionFilter{
		{ProjectID: projectID, SourceID: snippetID},
		{ProjectID: projectID, TargetID: snippetID},
	} {
		conns, err := s.connections.Query(ctx, filter)
		if err != nil {
			return removed, err
		}
		for _, conn := range conns {
			if conn.UserID != ownerID {
				continue
			}
			if err := s.connections.Delete(ctx, projectID, conn.ID, ownerID); err != nil {
				return removed, err
			}
			removed++
		}
	}

	return removed, nil
}
