package services

import (
	"context"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"

	"go.uber.org/zap"
)

// ProjectService handles project lifecycle. Deletion is not here: removing a
// project tears down its whole graph and belongs to the DeletionService.
type ProjectService struct {
	projects ports.ProjectRepository
	logger   *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(projects ports.ProjectRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		logger:   logger,
	}
}

// Create persists a new project for the caller
func (s *ProjectService) Create(ctx context.Context, name, ownerID string) (*entities.Project, error) {
	project, err := entities.NewProject(ownerID, name)
	if err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("projectID", project.ID),
		zap.String("userID", ownerID),
	)

	return project, nil
}

// Get retrieves one project, owner-scoped
func (s *ProjectService) Get(ctx context.Context, projectID, ownerID string) (*entities.Project, error) {
	return s.projects.GetByID(ctx, projectID, ownerID)
}

// List retrieves all projects owned by the caller
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]*entities.Project, error) {
	return s.projects.ListByUser(ctx, ownerID)
}
