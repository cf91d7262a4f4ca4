package services

import (
	"context"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// SnippetService owns the write path for snippets: every create and every
// content/title mutation goes through here so the version history stays in
// lock step with the snippet row.
type SnippetService struct {
	snippets    ports.SnippetRepository
	connections ports.ConnectionRepository
	versions    ports.VersionStore
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewSnippetService creates a new snippet service
func NewSnippetService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:    snippets,
		connections: connections,
		versions:    versions,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateSnippetInput carries the fields for a new snippet
type CreateSnippetInput struct {
	ProjectID string
	Title     string
	Text      string
	Fields    map[string]string
	Position  valueobjects.Position

	// SourceSnippetID, when set, auto-links the new snippet to the snippet
	// it was generated from.
	SourceSnippetID string
}

// Create persists a new snippet plus its initial version record. When the
// snippet was generated from another snippet, a connection from that source
// is created in the same call.
func (s *SnippetService) Create(ctx context.Context, input CreateSnippetInput, ownerID string) (*entities.Snippet, error) {
	content, err := valueobjects.NewSnippetContent(input.Text, input.Fields)
	if err != nil {
		return nil, err
	}

	snippet, err := entities.NewSnippet(input.ProjectID, ownerID, input.Title, content, input.Position)
	if err != nil {
		return nil, err
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		return nil, err
	}

	if err := s.versions.Append(ctx, snippet.Snapshot()); err != nil {
		s.logger.Warn("failed to write initial version record",
			zap.String("snippetID", snippet.ID().String()),
			zap.Error(err),
		)
	}

	if input.SourceSnippetID != "" {
		if err := s.autoLink(ctx, snippet, input.SourceSnippetID, ownerID); err != nil {
			s.logger.Warn("auto-link to source failed",
				zap.String("snippetID", snippet.ID().String()),
				zap.String("sourceID", input.SourceSnippetID),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, snippet)

	s.logger.Info("snippet created",
		zap.String("snippetID", snippet.ID().String()),
		zap.String("projectID", input.ProjectID),
		zap.String("userID", ownerID),
	)

	return snippet, nil
}

// Get retrieves one snippet, owner-scoped
func (s *SnippetService) Get(ctx context.Context, projectID, id, ownerID string) (*entities.Snippet, error) {
	return s.snippets.GetByID(ctx, projectID, id, ownerID)
}

// List retrieves all snippets in a project owned by the caller
func (s *SnippetService) List(ctx context.Context, projectID, ownerID string) ([]*entities.Snippet, error) {
	return s.snippets.ListByProject(ctx, projectID, ownerID)
}

// UpdateSnippetInput is a partial patch; nil fields are left untouched
type UpdateSnippetInput struct {
	Title    *string
	Text     *string
	Fields   *map[string]string
	Position *valueobjects.Position
}

// Update applies a partial patch. Content and title changes bump the version
// and write a version record; position changes do not.
func (s *SnippetService) Update(ctx context.Context, projectID, id, ownerID string, input UpdateSnippetInput) (*entities.Snippet, error) {
	snippet, err := s.snippets.GetByID(ctx, projectID, id, ownerID)
	if err != nil {
		return nil, err
	}

	before := snippet.Version()

	if input.Title != nil {
		if err := snippet.Rename(*input.Title); err != nil {
			return nil, err
		}
	}

	if input.Text != nil || input.Fields != nil {
		text := snippet.Content().Text()
		fields := snippet.Content().Fields()
		if input.Text != nil {
			text = *input.Text
			fields = nil
		}
		if input.Fields != nil {
			fields = *input.Fields
			text = ""
		}

		content, err := valueobjects.NewSnippetContent(text, fields)
		if err != nil {
			return nil, err
		}
		content = content.WithImage(snippet.Content().Image()).WithVideo(snippet.Content().Video())

		if err := snippet.UpdateContent(content); err != nil {
			return nil, err
		}
	}

	if input.Position != nil {
		snippet.MoveTo(*input.Position)
	}

	if err := s.snippets.Update(ctx, snippet); err != nil {
		return nil, err
	}

	if snippet.Version() > before {
		if err := s.versions.Append(ctx, snippet.Snapshot()); err != nil {
			s.logger.Warn("failed to write version record",
				zap.String("snippetID", id),
				zap.Int("version", snippet.Version()),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, snippet)

	return snippet, nil
}

// History lists the immutable version records of a snippet, oldest first
func (s *SnippetService) History(ctx context.Context, projectID, id, ownerID string) ([]*entities.VersionRecord, error) {
	// Ownership gate before exposing history.
	if _, err := s.snippets.GetByID(ctx, projectID, id, ownerID); err != nil {
		return nil, err
	}
	return s.versions.ListBySnippet(ctx, id)
}

// autoLink connects a freshly generated snippet to the snippet it was
// derived from
func (s *SnippetService) autoLink(ctx context.Context, snippet *entities.Snippet, sourceID, ownerID string) error {
	source, err := s.snippets.GetByID(ctx, snippet.ProjectID(), sourceID, ownerID)
	if err != nil {
		return err
	}

	conn, err := entities.NewConnection(snippet.ProjectID(), ownerID, source.ID(), snippet.ID(), "generated-from")
	if err != nil {
		return err
	}

	return s.connections.Create(ctx, conn)
}

func (s *SnippetService) publishEvents(ctx context.Context, snippet *entities.Snippet) {
	if s.publisher == nil {
		return
	}

	pending := snippet.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}

	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("failed to publish snippet events",
			zap.String("snippetID", snippet.ID().String()),
			zap.Error(err),
		)
		return
	}
	snippet.MarkEventsAsCommitted()
}
