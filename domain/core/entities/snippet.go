package entities

import (
	"fmt"
	"time"
	"unicode/utf8"

	"snipgraph-backend/domain/config"
	"snipgraph-backend/domain/core/valueobjects"
	"snipgraph-backend/domain/events"
	pkgerrors "snipgraph-backend/pkg/errors"
)

func validateTitle(title string) error {
	max := config.DefaultDomainConfig().MaxTitleLength
	if utf8.RuneCountInString(title) > max {
		return pkgerrors.NewValidationError(fmt.Sprintf("title exceeds maximum length of %d characters", max))
	}
	return nil
}

// Snippet is the main entity: one content node on the canvas.
// This is a rich domain model with encapsulated business logic.
type Snippet struct {
	id        valueobjects.SnippetID
	projectID string
	userID    string
	title     string
	content   valueobjects.SnippetContent
	position  valueobjects.Position
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewSnippet creates a new snippet. Snippets may start empty; content is
// filled in later by the user or the generation layer.
func NewSnippet(projectID, userID, title string, content valueobjects.SnippetContent, position valueobjects.Position) (*Snippet, error) {
	if projectID == "" {
		return nil, pkgerrors.NewValidationError("projectID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	now := time.Now()
	snippet := &Snippet{
		id:        valueobjects.NewSnippetID(),
		projectID: projectID,
		userID:    userID,
		title:     title,
		content:   content,
		position:  position,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	snippet.addEvent(events.NewSnippetCreated(snippet.id, projectID, userID, now))

	return snippet, nil
}

// ReconstructSnippet rebuilds a snippet from repository data with preserved
// timestamps and version
func ReconstructSnippet(
	id valueobjects.SnippetID,
	projectID, userID, title string,
	content valueobjects.SnippetContent,
	position valueobjects.Position,
	version int,
	createdAt, updatedAt time.Time,
) (*Snippet, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if version < 1 {
		version = 1
	}

	return &Snippet{
		id:        id,
		projectID: projectID,
		userID:    userID,
		title:     title,
		content:   content,
		position:  position,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the snippet's unique identifier
func (s *Snippet) ID() valueobjects.SnippetID {
	return s.id
}

// ProjectID returns the owning project's ID
func (s *Snippet) ProjectID() string {
	return s.projectID
}

// UserID returns the owner's ID
func (s *Snippet) UserID() string {
	return s.userID
}

// Title returns the snippet's title
func (s *Snippet) Title() string {
	return s.title
}

// Content returns the snippet's content
func (s *Snippet) Content() valueobjects.SnippetContent {
	return s.content
}

// Position returns the snippet's canvas position
func (s *Snippet) Position() valueobjects.Position {
	return s.position
}

// Version returns the snippet's version. Every content or title mutation
// increments it and produces an immutable VersionRecord.
func (s *Snippet) Version() int {
	return s.version
}

// CreatedAt returns when the snippet was created
func (s *Snippet) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns when the snippet was last updated
func (s *Snippet) UpdatedAt() time.Time {
	return s.updatedAt
}

// IsOwnedBy checks the ownership invariant. Snippets are visible only to
// their owner; there is no sharing.
func (s *Snippet) IsOwnedBy(userID string) bool {
	return s.userID == userID
}

// UpdateContent replaces the content, bumping the version
func (s *Snippet) UpdateContent(content valueobjects.SnippetContent) error {
	if content.Equals(s.content) {
		return nil
	}

	s.content = content
	s.updatedAt = time.Now()
	s.version++

	s.addEvent(events.NewSnippetContentUpdated(s.id, s.projectID, s.version, s.updatedAt))

	return nil
}

// Rename changes the title, bumping the version
func (s *Snippet) Rename(title string) error {
	if title == s.title {
		return nil
	}
	if err := validateTitle(title); err != nil {
		return err
	}

	s.title = title
	s.updatedAt = time.Now()
	s.version++

	s.addEvent(events.NewSnippetContentUpdated(s.id, s.projectID, s.version, s.updatedAt))

	return nil
}

// MoveTo repositions the snippet on the canvas. Position changes do not
// bump the version; they are layout, not content.
func (s *Snippet) MoveTo(position valueobjects.Position) {
	if position.Equals(s.position) {
		return
	}

	s.position = position
	s.updatedAt = time.Now()

	s.addEvent(events.NewSnippetMoved(s.id, position, s.updatedAt))
}

// Snapshot captures the current state as an immutable version record
func (s *Snippet) Snapshot() *VersionRecord {
	return NewVersionRecord(s)
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Snippet) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Snippet) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (s *Snippet) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}
