package services

import (
	"context"
	"testing"

	"snipgraph-backend/application/ports"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippetCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "a")
	b := f.mustCreateSnippet(t, "b")
	c := f.mustCreateSnippet(t, "c")
	f.mustConnect(t, a, b)
	f.mustConnect(t, b, c)

	_, err := f.snippets.Update(ctx, testProject, b.ID().String(), testOwner, UpdateSnippetInput{
		Text: strPtr("b revised"),
	})
	require.NoError(t, err)

	require.NoError(t, f.deletion.DeleteSnippetCascade(ctx, testProject, b.ID().String(), testOwner))

	_, err = f.snippets.Get(ctx, testProject, b.ID().String(), testOwner)
	assert.True(t, pkgerrors.IsNotFound(err))

	// Every connection touching b is gone; unrelated snippets survive.
	conns, err := f.connections.List(ctx, ports.ConnectionFilter{ProjectID: testProject})
	require.NoError(t, err)
	assert.Empty(t, conns)

	_, err = f.snippets.Get(ctx, testProject, a.ID().String(), testOwner)
	assert.NoError(t, err)
	_, err = f.snippets.Get(ctx, testProject, c.ID().String(), testOwner)
	assert.NoError(t, err)

	records, err := f.store.Versions().ListBySnippet(ctx, b.ID().String())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSnippetCascadeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "a")
	b := f.mustCreateSnippet(t, "b")
	f.mustConnect(t, a, b)

	require.NoError(t, f.deletion.DeleteSnippetCascade(ctx, testProject, a.ID().String(), testOwner))

	// A retry after the first cascade completed must still succeed.
	assert.NoError(t, f.deletion.DeleteSnippetCascade(ctx, testProject, a.ID().String(), testOwner))
}

func TestSnippetCascadeScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	theirs := f.mustCreateSnippetFor(t, otherOwner, "theirs")

	// A cascade by someone else must not remove the snippet or any of its
	// version history.
	require.NoError(t, f.deletion.DeleteSnippetCascade(ctx, testProject, theirs.ID().String(), testOwner))

	_, err := f.snippets.Get(ctx, testProject, theirs.ID().String(), otherOwner)
	assert.NoError(t, err)

	records, err := f.snippets.History(ctx, testProject, theirs.ID().String(), otherOwner)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestProjectCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "scratch", testOwner)
	require.NoError(t, err)

	createIn := func(text string) string {
		snippet, err := f.snippets.Create(ctx, CreateSnippetInput{
			ProjectID: project.ID,
			Title:     "untitled",
			Text:      text,
		}, testOwner)
		require.NoError(t, err)
		return snippet.ID().String()
	}

	aID := createIn("a")
	bID := createIn("b")
	_, err = f.connections.Create(ctx, CreateConnectionInput{
		ProjectID:       project.ID,
		SourceSnippetID: aID,
		TargetSnippetID: bID,
	}, testOwner)
	require.NoError(t, err)

	require.NoError(t, f.deletion.DeleteProjectCascade(ctx, project.ID, testOwner))

	_, err = f.projects.Get(ctx, project.ID, testOwner)
	assert.True(t, pkgerrors.IsNotFound(err))

	remaining, err := f.snippets.List(ctx, project.ID, testOwner)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	conns, err := f.connections.List(ctx, ports.ConnectionFilter{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestProjectCascadeUnknownProject(t *testing.T) {
	f := newFixture(t)

	err := f.deletion.DeleteProjectCascade(context.Background(), "no-such-project", testOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestProjectCascadeWrongOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, "private", otherOwner)
	require.NoError(t, err)

	err = f.deletion.DeleteProjectCascade(ctx, project.ID, testOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = f.projects.Get(ctx, project.ID, otherOwner)
	assert.NoError(t, err)
}
