package services

import (
	"context"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/events"
	pkgerrors "snipgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// ConnectionService creates and removes directed connections between
// snippets, enforcing the edge invariants: no self-loops, at most one edge
// per ordered (source, target) pair, both endpoints owned by the caller.
type ConnectionService struct {
	snippets    ports.SnippetRepository
	connections ports.ConnectionRepository
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewConnectionService creates a new connection service
func NewConnectionService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		snippets:    snippets,
		connections: connections,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateConnectionInput carries the fields for a new connection
type CreateConnectionInput struct {
	ProjectID       string
	SourceSnippetID string
	TargetSnippetID string
	Label           string
	Description     string
	Metadata        map[string]string
}

// Create validates and persists a directed connection.
//
// Duplicate detection is query-before-write: two concurrent creators can
// both pass the check and admit a duplicate edge. That race is accepted and
// not corrected retroactively; the traversal algorithms tolerate parallel
// edges.
func (s *ConnectionService) Create(ctx context.Context, input CreateConnectionInput, ownerID string) (*entities.Connection, error) {
	if input.SourceSnippetID == input.TargetSnippetID {
		return nil, pkgerrors.NewInvalidOperationError("cannot connect a snippet to itself").WithCode("SELF_CONNECTION")
	}

	// Both endpoints must exist and belong to the caller. A snippet owned
	// by someone else surfaces as NotFound from the repository; report it
	// as access denied since the caller referenced it explicitly.
	source, err := s.snippets.GetByID(ctx, input.ProjectID, input.SourceSnippetID, ownerID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewForbiddenError("source snippet is not accessible").WithCode("ACCESS_DENIED")
		}
		return nil, err
	}
	target, err := s.snippets.GetByID(ctx, input.ProjectID, input.TargetSnippetID, ownerID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewForbiddenError("target snippet is not accessible").WithCode("ACCESS_DENIED")
		}
		return nil, err
	}

	existing, err := s.connections.Query(ctx, ports.ConnectionFilter{
		ProjectID: input.ProjectID,
		SourceID:  input.SourceSnippetID,
		TargetID:  input.TargetSnippetID,
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, pkgerrors.NewConflictError("connection already exists").WithCode("DUPLICATE")
	}

	conn, err := entities.NewConnection(input.ProjectID, ownerID, source.ID(), target.ID(), input.Label)
	if err != nil {
		return nil, err
	}
	conn.Description = input.Description
	conn.Metadata = input.Metadata

	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := events.NewConnectionCreated(conn.ID, conn.ProjectID, conn.SourceID.String(), conn.TargetID.String(), conn.CreatedAt)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish connection event", zap.Error(err))
		}
	}

	s.logger.Info("connection created",
		zap.String("connectionID", conn.ID),
		zap.String("sourceID", conn.SourceID.String()),
		zap.String("targetID", conn.TargetID.String()),
	)

	return conn, nil
}

// List returns connections matching the filter
func (s *ConnectionService) List(ctx context.Context, filter ports.ConnectionFilter) ([]*entities.Connection, error) {
	return s.connections.Query(ctx, filter)
}

// Delete removes a single connection
func (s *ConnectionService) Delete(ctx context.Context, projectID, connectionID, ownerID string) error {
	if err := s.connections.Delete(ctx, projectID, connectionID, ownerID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.NewConnectionDeleted(connectionID, projectID, time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish connection event", zap.Error(err))
		}
	}

	return nil
}
