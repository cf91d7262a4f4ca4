package services

import (
	"context"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/graph"

	"go.uber.org/zap"
)

// PropagationService computes the upstream content visible to each snippet
// of a project. Read-only; results are display data for prompt assembly and
// the canvas, never persisted.
type PropagationService struct {
	snippets    ports.SnippetRepository
	connections ports.ConnectionRepository
	logger      *zap.Logger
}

// NewPropagationService creates a new propagation service
func NewPropagationService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	logger *zap.Logger,
) *PropagationService {
	return &PropagationService{
		snippets:    snippets,
		connections: connections,
		logger:      logger,
	}
}

// PropagateContent returns, for every snippet in the project, the ordered
// list of upstream content items visible to it
func (s *PropagationService) PropagateContent(ctx context.Context, projectID, ownerID string) (map[string][]graph.ContentItem, error) {
	snippets, err := s.snippets.ListByProject(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	conns, err := s.connections.Query(ctx, ports.ConnectionFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Snippet, len(snippets))
	for _, snippet := range snippets {
		byID[snippet.ID().String()] = snippet
	}

	idx := graph.BuildIndex(conns)
	propagator := graph.NewPropagator(idx, byID)
	result := propagator.All()

	s.logger.Debug("propagated content",
		zap.String("projectID", projectID),
		zap.Int("snippets", len(snippets)),
		zap.Int("connections", idx.Size()),
	)

	return result, nil
}

// PropagateContentFor returns the upstream content for a single snippet
func (s *PropagationService) PropagateContentFor(ctx context.Context, projectID, snippetID, ownerID string) ([]graph.ContentItem, error) {
	if _, err := s.snippets.GetByID(ctx, projectID, snippetID, ownerID); err != nil {
		return nil, err
	}

	all, err := s.PropagateContent(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	return all[snippetID], nil
}
