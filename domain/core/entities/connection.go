package entities

import (
	"fmt"
	"time"
	"unicode/utf8"

	"snipgraph-backend/domain/config"
	"snipgraph-backend/domain/core/valueobjects"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/google/uuid"
)

// Connection is a directed edge meaning "source's content feeds target".
type Connection struct {
	ID          string
	ProjectID   string
	UserID      string
	SourceID    valueobjects.SnippetID
	TargetID    valueobjects.SnippetID
	Label       string
	Description string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// NewConnection creates a directed connection between two snippets.
// Self-loops are rejected here; duplicate detection needs store access and
// lives in the connection service.
func NewConnection(projectID, userID string, sourceID, targetID valueobjects.SnippetID, label string) (*Connection, error) {
	if projectID == "" {
		return nil, pkgerrors.NewValidationError("projectID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("connection endpoints cannot be empty")
	}
	if sourceID.Equals(targetID) {
		return nil, pkgerrors.NewInvalidOperationError("cannot connect a snippet to itself").WithCode("SELF_CONNECTION")
	}
	if max := config.DefaultDomainConfig().MaxLabelLength; utf8.RuneCountInString(label) > max {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("label exceeds maximum length of %d characters", max))
	}

	return &Connection{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserID:    userID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Label:     label,
		CreatedAt: time.Now(),
	}, nil
}

// SamePair checks whether another connection covers the same ordered
// (source, target) pair
func (c *Connection) SamePair(other *Connection) bool {
	return c.SourceID.Equals(other.SourceID) && c.TargetID.Equals(other.TargetID)
}

// Touches checks whether the connection has the given snippet as either
// endpoint
func (c *Connection) Touches(id valueobjects.SnippetID) bool {
	return c.SourceID.Equals(id) || c.TargetID.Equals(id)
}
