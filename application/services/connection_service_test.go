package services

import (
	"context"
	"strings"
	"testing"

	"snipgraph-backend/application/ports"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source := f.mustCreateSnippet(t, "source")
	target := f.mustCreateSnippet(t, "target")

	conn, err := f.connections.Create(ctx, CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: source.ID().String(),
		TargetSnippetID: target.ID().String(),
		Label:           "references",
	}, testOwner)
	require.NoError(t, err)

	assert.Equal(t, source.ID().String(), conn.SourceID.String())
	assert.Equal(t, target.ID().String(), conn.TargetID.String())
	assert.Equal(t, "references", conn.Label)
	assert.Equal(t, testOwner, conn.UserID)
}

func TestConnectionCreateRejectsSelfLoop(t *testing.T) {
	f := newFixture(t)

	snippet := f.mustCreateSnippet(t, "self")

	_, err := f.connections.Create(context.Background(), CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: snippet.ID().String(),
		TargetSnippetID: snippet.ID().String(),
	}, testOwner)
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "SELF_CONNECTION", appErr.Code)
}

func TestConnectionCreateRejectsOverlongLabel(t *testing.T) {
	f := newFixture(t)

	source := f.mustCreateSnippet(t, "source")
	target := f.mustCreateSnippet(t, "target")

	_, err := f.connections.Create(context.Background(), CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: source.ID().String(),
		TargetSnippetID: target.ID().String(),
		Label:           strings.Repeat("l", 121),
	}, testOwner)
	assert.Error(t, err)
}

func TestConnectionCreateRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source := f.mustCreateSnippet(t, "source")
	target := f.mustCreateSnippet(t, "target")
	f.mustConnect(t, source, target)

	_, err := f.connections.Create(ctx, CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: source.ID().String(),
		TargetSnippetID: target.ID().String(),
	}, testOwner)
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "DUPLICATE", appErr.Code)

	// The reverse direction is a different pair and stays allowed.
	_, err = f.connections.Create(ctx, CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: target.ID().String(),
		TargetSnippetID: source.ID().String(),
	}, testOwner)
	assert.NoError(t, err)
}

func TestConnectionCreateForeignEndpoint(t *testing.T) {
	f := newFixture(t)

	mine := f.mustCreateSnippet(t, "mine")
	theirs := f.mustCreateSnippetFor(t, otherOwner, "theirs")

	_, err := f.connections.Create(context.Background(), CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: mine.ID().String(),
		TargetSnippetID: theirs.ID().String(),
	}, testOwner)
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "ACCESS_DENIED", appErr.Code)
}

func TestConnectionCreateMissingEndpoint(t *testing.T) {
	f := newFixture(t)

	source := f.mustCreateSnippet(t, "source")

	_, err := f.connections.Create(context.Background(), CreateConnectionInput{
		ProjectID:       testProject,
		SourceSnippetID: source.ID().String(),
		TargetSnippetID: uuid.New().String(),
	}, testOwner)
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "ACCESS_DENIED", appErr.Code)
}

func TestConnectionListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "a")
	b := f.mustCreateSnippet(t, "b")
	c := f.mustCreateSnippet(t, "c")
	ab := f.mustConnect(t, a, b)
	f.mustConnect(t, b, c)

	all, err := f.connections.List(ctx, ports.ConnectionFilter{ProjectID: testProject})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fromA, err := f.connections.List(ctx, ports.ConnectionFilter{
		ProjectID: testProject,
		SourceID:  a.ID().String(),
	})
	require.NoError(t, err)
	require.Len(t, fromA, 1)
	assert.Equal(t, ab.ID, fromA[0].ID)

	intoC, err := f.connections.List(ctx, ports.ConnectionFilter{
		ProjectID: testProject,
		TargetID:  c.ID().String(),
	})
	require.NoError(t, err)
	require.Len(t, intoC, 1)
	assert.Equal(t, b.ID().String(), intoC[0].SourceID.String())
}

func TestConnectionDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "a")
	b := f.mustCreateSnippet(t, "b")
	conn := f.mustConnect(t, a, b)

	// Someone else's delete sees a NotFound, never a removal.
	err := f.connections.Delete(ctx, testProject, conn.ID, otherOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	require.NoError(t, f.connections.Delete(ctx, testProject, conn.ID, testOwner))

	// Deleting an already-gone connection is a no-op.
	assert.NoError(t, f.connections.Delete(ctx, testProject, conn.ID, testOwner))

	remaining, err := f.connections.List(ctx, ports.ConnectionFilter{ProjectID: testProject})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
