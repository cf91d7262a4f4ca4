// Package memory provides in-memory implementations of the persistence
// ports. Used by unit tests and local development runs; semantics mirror the
// DynamoDB implementations, including owner-scoped not-found behavior and
// no-op deletes of absent rows.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	pkgerrors "snipgraph-backend/pkg/errors"
)

// Store holds every entity kind behind one mutex. Fine for tests and a
// single-process dev server.
type Store struct {
	mu          sync.RWMutex
	snippets    map[string]*entities.Snippet          // snippet ID -> snippet
	connections map[string]*entities.Connection       // connection ID -> connection
	versions    map[string][]*entities.VersionRecord  // snippet ID -> ordered records
	projects    map[string]*entities.Project          // project ID -> project
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		snippets:    make(map[string]*entities.Snippet),
		connections: make(map[string]*entities.Connection),
		versions:    make(map[string][]*entities.VersionRecord),
		projects:    make(map[string]*entities.Project),
	}
}

// Snippets returns the store's ports.SnippetRepository view
func (s *Store) Snippets() ports.SnippetRepository { return (*snippetRepo)(s) }

// Connections returns the store's ports.ConnectionRepository view
func (s *Store) Connections() ports.ConnectionRepository { return (*connectionRepo)(s) }

// Versions returns the store's ports.VersionStore view
func (s *Store) Versions() ports.VersionStore { return (*versionStore)(s) }

// Projects returns the store's ports.ProjectRepository view
func (s *Store) Projects() ports.ProjectRepository { return (*projectRepo)(s) }

type snippetRepo Store

func (r *snippetRepo) Create(ctx context.Context, snippet *entities.Snippet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := snippet.ID().String()
	if _, exists := r.snippets[id]; exists {
		return pkgerrors.NewConflictError("snippet already exists")
	}
	r.snippets[id] = snippet
	return nil
}

func (r *snippetRepo) GetByID(ctx context.Context, projectID, id, ownerID string) (*entities.Snippet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snippet, exists := r.snippets[id]
	if !exists || snippet.ProjectID() != projectID || !snippet.IsOwnedBy(ownerID) {
		return nil, pkgerrors.NewNotFoundError("snippet")
	}
	return snippet, nil
}

func (r *snippetRepo) ListByProject(ctx context.Context, projectID, ownerID string) ([]*entities.Snippet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Snippet
	for _, snippet := range r.snippets {
		if snippet.ProjectID() == projectID && snippet.IsOwnedBy(ownerID) {
			out = append(out, snippet)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r *snippetRepo) BatchGet(ctx context.Context, projectID string, ids []string) (map[string]*entities.Snippet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*entities.Snippet, len(ids))
	for _, id := range ids {
		if snippet, exists := r.snippets[id]; exists && snippet.ProjectID() == projectID {
			result[id] = snippet
		}
	}
	return result, nil
}

func (r *snippetRepo) Update(ctx context.Context, snippet *entities.Snippet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := snippet.ID().String()
	stored, exists := r.snippets[id]
	if !exists || !stored.IsOwnedBy(snippet.UserID()) {
		return pkgerrors.NewNotFoundError("snippet")
	}
	r.snippets[id] = snippet
	return nil
}

func (r *snippetRepo) Delete(ctx context.Context, projectID, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.snippets[id]
	if !exists {
		return nil
	}
	if stored.ProjectID() != projectID || !stored.IsOwnedBy(ownerID) {
		return pkgerrors.NewNotFoundError("snippet")
	}
	delete(r.snippets, id)
	return nil
}

type connectionRepo Store

func (r *connectionRepo) Create(ctx context.Context, conn *entities.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[conn.ID]; exists {
		return pkgerrors.NewConflictError("connection already exists")
	}
	r.connections[conn.ID] = conn
	return nil
}

func (r *connectionRepo) Query(ctx context.Context, filter ports.ConnectionFilter) ([]*entities.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Connection
	for _, conn := range r.connections {
		if filter.ProjectID != "" && conn.ProjectID != filter.ProjectID {
			continue
		}
		if filter.SourceID != "" && conn.SourceID.String() != filter.SourceID {
			continue
		}
		if filter.TargetID != "" && conn.TargetID.String() != filter.TargetID {
			continue
		}
		if filter.Label != "" && !strings.EqualFold(conn.Label, filter.Label) {
			continue
		}
		out = append(out, conn)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *connectionRepo) Delete(ctx context.Context, projectID, connectionID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.connections[connectionID]
	if !exists {
		return nil
	}
	if conn.ProjectID != projectID || conn.UserID != ownerID {
		return pkgerrors.NewNotFoundError("connection")
	}
	delete(r.connections, connectionID)
	return nil
}

type versionStore Store

func (r *versionStore) Append(ctx context.Context, record *entities.VersionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := record.SnippetID.String()
	r.versions[id] = append(r.versions[id], record)
	sort.Slice(r.versions[id], func(i, j int) bool {
		return r.versions[id][i].Version < r.versions[id][j].Version
	})
	return nil
}

func (r *versionStore) ListBySnippet(ctx context.Context, snippetID string) ([]*entities.VersionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.versions[snippetID]
	out := make([]*entities.VersionRecord, len(records))
	copy(out, records)
	return out, nil
}

func (r *versionStore) DeleteForSnippet(ctx context.Context, snippetID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.versions[snippetID][:0]
	for _, record := range r.versions[snippetID] {
		if record.UserID != ownerID {
			kept = append(kept, record)
		}
	}
	if len(kept) == 0 {
		delete(r.versions, snippetID)
		return nil
	}
	r.versions[snippetID] = kept
	return nil
}

type projectRepo Store

func (r *projectRepo) Create(ctx context.Context, project *entities.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[project.ID]; exists {
		return pkgerrors.NewConflictError("project already exists")
	}
	r.projects[project.ID] = project
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, projectID, ownerID string) (*entities.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[projectID]
	if !exists || !project.IsOwnedBy(ownerID) {
		return nil, pkgerrors.NewNotFoundError("project")
	}
	return project, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, ownerID string) ([]*entities.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Project
	for _, project := range r.projects {
		if project.IsOwnedBy(ownerID) {
			out = append(out, project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *projectRepo) Delete(ctx context.Context, projectID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	project, exists := r.projects[projectID]
	if !exists {
		return pkgerrors.NewNotFoundError("project")
	}
	if !project.IsOwnedBy(ownerID) {
		return pkgerrors.NewNotFoundError("project")
	}
	delete(r.projects, projectID)
	return nil
}
