package services

import (
	"context"
	"testing"

	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"
	"snipgraph-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testProject = "proj-1"
	testOwner   = "user-1"
	otherOwner  = "user-2"
)

type fixture struct {
	store       *memory.Store
	snippets    *SnippetService
	connections *ConnectionService
	propagation *PropagationService
	combine     *CombineService
	deletion    *DeletionService
	projects    *ProjectService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()

	return &fixture{
		store:       store,
		snippets:    NewSnippetService(store.Snippets(), store.Connections(), store.Versions(), nil, logger),
		connections: NewConnectionService(store.Snippets(), store.Connections(), nil, logger),
		propagation: NewPropagationService(store.Snippets(), store.Connections(), logger),
		combine:     NewCombineService(store.Snippets(), store.Connections(), store.Versions(), nil, nil, nil, nil, logger),
		deletion:    NewDeletionService(store.Snippets(), store.Connections(), store.Versions(), store.Projects(), nil, nil, nil, logger),
		projects:    NewProjectService(store.Projects(), logger),
	}
}

func (f *fixture) mustCreateSnippet(t *testing.T, text string) *entities.Snippet {
	t.Helper()
	return f.mustCreateSnippetFor(t, testOwner, text)
}

func (f *fixture) mustCreateSnippetFor(t *testing.T, owner, text string) *entities.Snippet {
	t.Helper()

	snippet, err := f.snippets.Create(context.Background(), CreateSnippetInput{
		ProjectID: testProject,
		Title:     "untitled",
		Text:      text,
		Position:  valueobjects.NewPosition(0, 0),
	}, owner)
	require.NoError(t, err)
	return snippet
}

func strPtr(s string) *string { return &s }

func (f *fixture) mustConnect(t *testing.T, source, target *entities.Snippet) *entities.Connection {
	t.Helper()

	conn, err := f.connections.Create(context.Background(), CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: source.ID().String(),
		TargetSnippetID: target.ID().String(),
	}, testOwner)
	require.NoError(t, err)
	return conn
}
