package events

import (
	"time"

	"snipgraph-backend/domain/core/valueobjects"
)

// SourceBackend identifies this service as the event source on the bus
const SourceBackend = "snipgraph.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Snippet events

// SnippetCreated is raised when a new snippet is created
type SnippetCreated struct {
	BaseEvent
	SnippetID valueobjects.SnippetID `json:"snippet_id"`
	ProjectID string                 `json:"project_id"`
	UserID    string                 `json:"user_id"`
}

// NewSnippetCreated creates a SnippetCreated event
func NewSnippetCreated(id valueobjects.SnippetID, projectID, userID string, timestamp time.Time) SnippetCreated {
	return SnippetCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "snippet.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		SnippetID: id,
		ProjectID: projectID,
		UserID:    userID,
	}
}

// SnippetContentUpdated is raised when snippet content or title changes
type SnippetContentUpdated struct {
	BaseEvent
	SnippetID  valueobjects.SnippetID `json:"snippet_id"`
	ProjectID  string                 `json:"project_id"`
	NewVersion int                    `json:"new_version"`
}

// NewSnippetContentUpdated creates a SnippetContentUpdated event
func NewSnippetContentUpdated(id valueobjects.SnippetID, projectID string, newVersion int, timestamp time.Time) SnippetContentUpdated {
	return SnippetContentUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "snippet.content_updated",
			Timestamp:   timestamp,
			Version:     newVersion,
		},
		SnippetID:  id,
		ProjectID:  projectID,
		NewVersion: newVersion,
	}
}

// SnippetMoved is raised when a snippet is repositioned on the canvas
type SnippetMoved struct {
	BaseEvent
	SnippetID   valueobjects.SnippetID `json:"snippet_id"`
	NewPosition valueobjects.Position  `json:"new_position"`
}

// NewSnippetMoved creates a SnippetMoved event
func NewSnippetMoved(id valueobjects.SnippetID, newPos valueobjects.Position, timestamp time.Time) SnippetMoved {
	return SnippetMoved{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "snippet.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		SnippetID:   id,
		NewPosition: newPos,
	}
}

// SnippetCombined is raised after a branch merge is persisted into a snippet
type SnippetCombined struct {
	BaseEvent
	SnippetID   valueobjects.SnippetID `json:"snippet_id"`
	ProjectID   string                 `json:"project_id"`
	BranchCount int                    `json:"branch_count"`
}

// NewSnippetCombined creates a SnippetCombined event
func NewSnippetCombined(id valueobjects.SnippetID, projectID string, branchCount int, timestamp time.Time) SnippetCombined {
	return SnippetCombined{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "snippet.combined",
			Timestamp:   timestamp,
			Version:     1,
		},
		SnippetID:   id,
		ProjectID:   projectID,
		BranchCount: branchCount,
	}
}

// SnippetDeleted is raised after a snippet cascade completes
type SnippetDeleted struct {
	BaseEvent
	SnippetID valueobjects.SnippetID `json:"snippet_id"`
	ProjectID string                 `json:"project_id"`
}

// NewSnippetDeleted creates a SnippetDeleted event
func NewSnippetDeleted(id valueobjects.SnippetID, projectID string, timestamp time.Time) SnippetDeleted {
	return SnippetDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "snippet.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		SnippetID: id,
		ProjectID: projectID,
	}
}

// Connection events

// ConnectionCreated is raised when a directed edge is created
type ConnectionCreated struct {
	BaseEvent
	ConnectionID string `json:"connection_id"`
	ProjectID    string `json:"project_id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
}

// NewConnectionCreated creates a ConnectionCreated event
func NewConnectionCreated(connectionID, projectID, sourceID, targetID string, timestamp time.Time) ConnectionCreated {
	return ConnectionCreated{
		BaseEvent: BaseEvent{
			AggregateID: connectionID,
			EventType:   "connection.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConnectionID: connectionID,
		ProjectID:    projectID,
		SourceID:     sourceID,
		TargetID:     targetID,
	}
}

// ConnectionDeleted is raised when a directed edge is removed
type ConnectionDeleted struct {
	BaseEvent
	ConnectionID string `json:"connection_id"`
	ProjectID    string `json:"project_id"`
}

// NewConnectionDeleted creates a ConnectionDeleted event
func NewConnectionDeleted(connectionID, projectID string, timestamp time.Time) ConnectionDeleted {
	return ConnectionDeleted{
		BaseEvent: BaseEvent{
			AggregateID: connectionID,
			EventType:   "connection.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		ConnectionID: connectionID,
		ProjectID:    projectID,
	}
}

// ProjectDeleted is raised after a project cascade completes
type ProjectDeleted struct {
	BaseEvent
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
}

// NewProjectDeleted creates a ProjectDeleted event
func NewProjectDeleted(projectID, userID string, timestamp time.Time) ProjectDeleted {
	return ProjectDeleted{
		BaseEvent: BaseEvent{
			AggregateID: projectID,
			EventType:   "project.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProjectID: projectID,
		UserID:    userID,
	}
}
