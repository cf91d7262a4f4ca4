package entities

import (
	"time"

	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/google/uuid"
)

// Project is the container for one canvas: all snippets and connections are
// scoped to exactly one project, which is owned by exactly one user.
type Project struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject creates a new project
func NewProject(userID, name string) (*Project, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if name == "" {
		name = "Untitled Project"
	}

	now := time.Now()
	return &Project{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOwnedBy checks the ownership invariant
func (p *Project) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}
