package graph

import (
	"testing"
	"time"

	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConn(t *testing.T, src, tgt string, createdAt time.Time) *entities.Connection {
	t.Helper()

	sourceID, err := valueobjects.NewSnippetIDFromString(src)
	require.NoError(t, err)
	targetID, err := valueobjects.NewSnippetIDFromString(tgt)
	require.NoError(t, err)

	return &entities.Connection{
		ID:        uuid.New().String(),
		ProjectID: "proj-1",
		UserID:    "user-1",
		SourceID:  sourceID,
		TargetID:  targetID,
		CreatedAt: createdAt,
	}
}

func newID() string {
	return uuid.New().String()
}

func TestBuildIndexAdjacency(t *testing.T) {
	a, b, c := newID(), newID(), newID()
	base := time.Now()

	ab := newConn(t, a, b, base)
	ac := newConn(t, a, c, base.Add(time.Second))
	bc := newConn(t, b, c, base.Add(2*time.Second))

	idx := BuildIndex([]*entities.Connection{bc, ab, ac})

	assert.Equal(t, 3, idx.Size())

	out := idx.Outgoing(a)
	require.Len(t, out, 2)
	assert.Equal(t, ab.ID, out[0].ID)
	assert.Equal(t, ac.ID, out[1].ID)

	in := idx.Incoming(c)
	require.Len(t, in, 2)
	assert.Equal(t, ac.ID, in[0].ID)
	assert.Equal(t, bc.ID, in[1].ID)

	assert.Empty(t, idx.Incoming(a))
	assert.Empty(t, idx.Outgoing(c))
}

func TestBuildIndexOrderIndependentOfInput(t *testing.T) {
	a, b := newID(), newID()
	base := time.Now()

	conns := []*entities.Connection{
		newConn(t, a, b, base.Add(2*time.Second)),
		newConn(t, a, b, base),
		newConn(t, a, b, base.Add(time.Second)),
	}

	forward := BuildIndex(conns)
	reversed := BuildIndex([]*entities.Connection{conns[2], conns[1], conns[0]})

	ids := func(list []*entities.Connection) []string {
		out := make([]string, len(list))
		for i, c := range list {
			out[i] = c.ID
		}
		return out
	}

	assert.Equal(t, ids(forward.Outgoing(a)), ids(reversed.Outgoing(a)))
	assert.Equal(t, ids(forward.Incoming(b)), ids(reversed.Incoming(b)))
}

func TestBuildIndexTieBreaksOnID(t *testing.T) {
	a, b := newID(), newID()
	ts := time.Now()

	first := newConn(t, a, b, ts)
	second := newConn(t, a, b, ts)

	idx := BuildIndex([]*entities.Connection{second, first})

	out := idx.Outgoing(a)
	require.Len(t, out, 2)
	assert.True(t, out[0].ID < out[1].ID)
}
