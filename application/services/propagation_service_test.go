package services

import (
	"context"
	"testing"

	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagateContentChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "alpha")
	b := f.mustCreateSnippet(t, "beta")
	c := f.mustCreateSnippet(t, "gamma")
	f.mustConnect(t, a, b)
	f.mustConnect(t, b, c)

	result, err := f.propagation.PropagateContent(ctx, testProject, testOwner)
	require.NoError(t, err)

	assert.Empty(t, result[a.ID().String()])

	upstreamB := result[b.ID().String()]
	require.Len(t, upstreamB, 1)
	assert.Equal(t, "alpha", upstreamB[0].Value)

	upstreamC := result[c.ID().String()]
	require.Len(t, upstreamC, 2)
	assert.Equal(t, "alpha", upstreamC[0].Value)
	assert.Equal(t, "beta", upstreamC[1].Value)
}

func TestPropagateContentForSingleSnippet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustCreateSnippet(t, "context")
	b := f.mustCreateSnippet(t, "question")
	f.mustConnect(t, a, b)

	items, err := f.propagation.PropagateContentFor(ctx, testProject, b.ID().String(), testOwner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "context", items[0].Value)
	assert.Equal(t, a.ID().String(), items[0].SnippetID)
}

func TestPropagateContentForUnknownSnippet(t *testing.T) {
	f := newFixture(t)

	_, err := f.propagation.PropagateContentFor(context.Background(), testProject, "missing", testOwner)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPropagateContentOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.mustCreateSnippet(t, "mine")
	f.mustCreateSnippetFor(t, otherOwner, "theirs")

	result, err := f.propagation.PropagateContent(ctx, testProject, testOwner)
	require.NoError(t, err)

	_, seen := result[mine.ID().String()]
	assert.True(t, seen)
	assert.Len(t, result, 1)
}
