package services

import (
	"context"
	"strings"
	"testing"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/valueobjects"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippetCreateWritesInitialVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snippet, err := f.snippets.Create(ctx, CreateSnippetInput{
		ProjectID: testProject,
		Title:     "notes",
		Text:      "first draft",
		Position:  valueobjects.NewPosition(10, -5),
	}, testOwner)
	require.NoError(t, err)

	assert.Equal(t, 1, snippet.Version())
	assert.Equal(t, "notes", snippet.Title())
	assert.Equal(t, "first draft", snippet.Content().Text())

	records, err := f.snippets.History(ctx, testProject, snippet.ID().String(), testOwner)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, "first draft", records[0].Text)
}

func TestSnippetCreateRejectsTextAndFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.snippets.Create(context.Background(), CreateSnippetInput{
		ProjectID: testProject,
		Text:      "some text",
		Fields:    map[string]string{"key": "value"},
	}, testOwner)
	assert.Error(t, err)
}

func TestSnippetTitleLengthLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overlong := strings.Repeat("t", 201)

	_, err := f.snippets.Create(ctx, CreateSnippetInput{
		ProjectID: testProject,
		Title:     overlong,
		Text:      "body",
	}, testOwner)
	assert.Error(t, err)

	snippet := f.mustCreateSnippet(t, "body")
	_, err = f.snippets.Update(ctx, testProject, snippet.ID().String(), testOwner, UpdateSnippetInput{
		Title: strPtr(overlong),
	})
	assert.Error(t, err)
}

func TestSnippetUpdateBumpsVersionOnContentChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snippet := f.mustCreateSnippet(t, "original")

	updated, err := f.snippets.Update(ctx, testProject, snippet.ID().String(), testOwner, UpdateSnippetInput{
		Text: strPtr("revised"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Version())
	assert.Equal(t, "revised", updated.Content().Text())

	records, err := f.snippets.History(ctx, testProject, snippet.ID().String(), testOwner)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "original", records[0].Text)
	assert.Equal(t, "revised", records[1].Text)
}

func TestSnippetUpdatePositionOnlyKeepsVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snippet := f.mustCreateSnippet(t, "anchored")
	pos := valueobjects.NewPosition(120.5, 300)

	updated, err := f.snippets.Update(ctx, testProject, snippet.ID().String(), testOwner, UpdateSnippetInput{
		Position: &pos,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Version())
	assert.Equal(t, pos, updated.Position())

	// A move leaves the version history alone.
	records, err := f.snippets.History(ctx, testProject, snippet.ID().String(), testOwner)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSnippetUpdateSameContentIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snippet := f.mustCreateSnippet(t, "stable")

	updated, err := f.snippets.Update(ctx, testProject, snippet.ID().String(), testOwner, UpdateSnippetInput{
		Text: strPtr("stable"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version())
}

func TestSnippetUpdateRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snippet := f.mustCreateSnippet(t, "body")

	updated, err := f.snippets.Update(ctx, testProject, snippet.ID().String(), testOwner, UpdateSnippetInput{
		Title: strPtr("renamed"),
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title())
	assert.Equal(t, 2, updated.Version())
}

func TestSnippetHistoryScopedToOwner(t *testing.T) {
	f := newFixture(t)

	theirs := f.mustCreateSnippetFor(t, otherOwner, "theirs")

	_, err := f.snippets.History(context.Background(), testProject, theirs.ID().String(), testOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSnippetCreateAutoLinksToSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	source := f.mustCreateSnippet(t, "prompt")

	derived, err := f.snippets.Create(ctx, CreateSnippetInput{
		ProjectID:       testProject,
		Title:           "untitled",
		Text:            "generated answer",
		SourceSnippetID: source.ID().String(),
	}, testOwner)
	require.NoError(t, err)

	conns, err := f.connections.List(ctx, ports.ConnectionFilter{
		ProjectID: testProject,
		SourceID:  source.ID().String(),
	})
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, derived.ID().String(), conns[0].TargetID.String())
	assert.Equal(t, "generated-from", conns[0].Label)
}

func TestSnippetCreateUnknownSourceStillCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The auto-link is best-effort; a dangling source reference must not
	// fail the create.
	snippet, err := f.snippets.Create(ctx, CreateSnippetInput{
		ProjectID:       testProject,
		Title:           "untitled",
		Text:            "orphan",
		SourceSnippetID: "00000000-0000-0000-0000-000000000000",
	}, testOwner)
	require.NoError(t, err)

	_, err = f.snippets.Get(ctx, testProject, snippet.ID().String(), testOwner)
	assert.NoError(t, err)
}
