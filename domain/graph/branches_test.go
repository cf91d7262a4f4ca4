package graph

import (
	"testing"
	"time"

	"snipgraph-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	a, b, c := newID(), newID(), newID()
	base := time.Now()

	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, b, c, base.Add(time.Second)),
	})

	root, ok := FindRoot(idx, c, 100)
	require.True(t, ok)
	assert.Equal(t, a, root)

	root, ok = FindRoot(idx, a, 100)
	require.True(t, ok)
	assert.Equal(t, a, root)
}

func TestFindRootDetectsCycle(t *testing.T) {
	a, b := newID(), newID()
	base := time.Now()

	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, b, a, base.Add(time.Second)),
	})

	_, ok := FindRoot(idx, a, 100)
	assert.False(t, ok)
}

func TestFindRootRespectsStepCap(t *testing.T) {
	base := time.Now()
	ids := []string{newID(), newID(), newID(), newID()}

	var conns []*entities.Connection
	for i := 0; i < len(ids)-1; i++ {
		conns = append(conns, newConn(t, ids[i], ids[i+1], base.Add(time.Duration(i)*time.Second)))
	}
	idx := BuildIndex(conns)

	_, ok := FindRoot(idx, ids[len(ids)-1], 1)
	assert.False(t, ok)

	root, ok := FindRoot(idx, ids[len(ids)-1], 10)
	require.True(t, ok)
	assert.Equal(t, ids[0], root)
}

func TestPathFromRoot(t *testing.T) {
	a, b, c := newID(), newID(), newID()
	base := time.Now()

	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, b, c, base.Add(time.Second)),
	})

	// The target itself is excluded from the path.
	assert.Equal(t, []string{a, b}, PathFromRoot(idx, a, c))
	assert.Equal(t, []string{a}, PathFromRoot(idx, a, b))
	assert.Equal(t, []string{a}, PathFromRoot(idx, a, a))
}

func TestDiscoverBranchesSkipsCyclicChains(t *testing.T) {
	// Target has two feeders: a clean chain from a root and a two-node cycle.
	root, mid, x, y, target := newID(), newID(), newID(), newID(), newID()
	base := time.Now()

	idx := BuildIndex([]*entities.Connection{
		newConn(t, root, mid, base),
		newConn(t, mid, target, base.Add(time.Second)),
		newConn(t, x, y, base.Add(2*time.Second)),
		newConn(t, y, x, base.Add(3*time.Second)),
		newConn(t, y, target, base.Add(4*time.Second)),
	})

	branches := DiscoverBranches(idx, target, 100)
	require.Len(t, branches, 1)
	assert.Equal(t, root, branches[0].RootID)
	assert.Equal(t, []string{root, mid}, branches[0].Path)
}

func TestSortBranchesByRootAge(t *testing.T) {
	early, late, unknown := newID(), newID(), newID()
	base := time.Now()

	created := map[string]time.Time{
		early: base,
		late:  base.Add(time.Hour),
	}

	branches := []*Branch{
		{RootID: unknown},
		{RootID: late},
		{RootID: early},
	}

	SortBranches(branches, func(id string) (time.Time, bool) {
		ts, ok := created[id]
		return ts, ok
	})

	// Oldest root first; unresolvable roots sort last.
	assert.Equal(t, early, branches[0].RootID)
	assert.Equal(t, late, branches[1].RootID)
	assert.Equal(t, unknown, branches[2].RootID)
}
