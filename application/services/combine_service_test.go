package services

import (
	"context"
	"testing"
	"time"

	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSnippet inserts a snippet with a controlled creation time, bypassing
// the service so branch ordering tests are not at the mercy of the clock.
func (f *fixture) seedSnippet(t *testing.T, title, text string, createdAt time.Time) *entities.Snippet {
	t.Helper()

	id, err := valueobjects.NewSnippetIDFromString(uuid.New().String())
	require.NoError(t, err)
	content, err := valueobjects.NewSnippetContent(text, nil)
	require.NoError(t, err)

	snippet, err := entities.ReconstructSnippet(
		id, testProject, testOwner, title, content,
		valueobjects.NewPosition(0, 0), 1, createdAt, createdAt,
	)
	require.NoError(t, err)
	require.NoError(t, f.store.Snippets().Create(context.Background(), snippet))
	return snippet
}

func TestCombineSingleChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intro := f.mustCreateSnippet(t, "Intro")
	middle := f.mustCreateSnippet(t, "Middle")
	outro := f.mustCreateSnippet(t, "Outro")
	f.mustConnect(t, intro, middle)
	f.mustConnect(t, middle, outro)

	combined, err := f.combine.Combine(ctx, testProject, outro.ID().String(), testOwner)
	require.NoError(t, err)

	assert.Equal(t, "Intro\n\nMiddle\n\nOutro", combined.Content().Text())
	assert.Equal(t, 2, combined.Version())
}

func TestCombineIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intro := f.mustCreateSnippet(t, "Intro")
	outro := f.mustCreateSnippet(t, "Outro")
	f.mustConnect(t, intro, outro)

	first, err := f.combine.Combine(ctx, testProject, outro.ID().String(), testOwner)
	require.NoError(t, err)
	text := first.Content().Text()
	version := first.Version()

	// Re-running must not stack the previous output on top of itself, and
	// an unchanged result must not bump the version again.
	second, err := f.combine.Combine(ctx, testProject, outro.ID().String(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, text, second.Content().Text())
	assert.Equal(t, version, second.Version())
}

func TestCombineMultipleBranchesOrderedByRootAge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	older := f.seedSnippet(t, "older", "First branch", base)
	newer := f.seedSnippet(t, "newer", "Second branch", base.Add(time.Minute))
	target := f.seedSnippet(t, "target", "Target", base.Add(2*time.Minute))

	// Connect newer first; output order must still follow root age.
	f.mustConnect(t, newer, target)
	f.mustConnect(t, older, target)

	combined, err := f.combine.Combine(ctx, testProject, target.ID().String(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, "First branch\n\nSecond branch\n\nTarget", combined.Content().Text())
}

func TestCombineSkipsEmptySnippets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intro := f.mustCreateSnippet(t, "Intro")
	blank := f.mustCreateSnippet(t, "")
	outro := f.mustCreateSnippet(t, "Outro")
	f.mustConnect(t, intro, blank)
	f.mustConnect(t, blank, outro)

	combined, err := f.combine.Combine(ctx, testProject, outro.ID().String(), testOwner)
	require.NoError(t, err)
	assert.Equal(t, "Intro\n\nOutro", combined.Content().Text())
}

func TestCombineErrorCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lone := f.mustCreateSnippet(t, "alone")

	// No connections anywhere in the project.
	_, err := f.combine.Combine(ctx, testProject, lone.ID().String(), testOwner)
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NO_CONNECTIONS", appErr.Code)

	// Connections exist, but none arrive at the target.
	other := f.mustCreateSnippet(t, "other")
	f.mustConnect(t, lone, other)

	_, err = f.combine.Combine(ctx, testProject, lone.ID().String(), testOwner)
	require.Error(t, err)
	appErr = pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NO_INCOMING", appErr.Code)
}

func TestCombineAllBranchesCyclic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "a")
	b := f.mustCreateSnippet(t, "b")
	target := f.mustCreateSnippet(t, "target")

	// a and b form a cycle, and a also feeds the target: the target has an
	// incoming edge, but the only branch has no resolvable root.
	f.mustConnect(t, a, b)
	f.mustConnect(t, b, a)
	f.mustConnect(t, a, target)

	_, err := f.combine.Combine(ctx, testProject, target.ID().String(), testOwner)
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NO_VALID_BRANCHES", appErr.Code)
}

func TestCombineWritesVersionRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intro := f.mustCreateSnippet(t, "Intro")
	outro := f.mustCreateSnippet(t, "Outro")
	f.mustConnect(t, intro, outro)

	_, err := f.combine.Combine(ctx, testProject, outro.ID().String(), testOwner)
	require.NoError(t, err)

	records, err := f.store.Versions().ListBySnippet(ctx, outro.ID().String())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Intro\n\nOutro", records[1].Text)
}

func TestCombineUnknownSnippet(t *testing.T) {
	f := newFixture(t)

	_, err := f.combine.Combine(context.Background(), testProject, uuid.New().String(), testOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
