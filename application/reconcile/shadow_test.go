package reconcile

import (
	"context"
	"fmt"
	"sort"
	"testing"

	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A session-scoped shadow sits between the client's render loop and the
// authoritative store: optimistic writes render immediately and reconcile
// once reads catch up.
func ExampleShadowState() {
	shadow := NewShadowState(func(c card) string { return c.ID }, nil, "", nil)

	shadow.BeginCreate("temp-1", card{ID: "temp-1", Text: "draft"})

	for _, c := range shadow.Merge([]card{{ID: "n-1", Text: "saved"}}) {
		fmt.Println(c.ID, c.Text)
	}
	// Output:
	// n-1 saved
	// temp-1 draft
}

type card struct {
	ID   string
	Text string
}

func newShadow() *ShadowState[card] {
	return NewShadowState(func(c card) string { return c.ID }, nil, "", nil)
}

func ids(cards []card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	sort.Strings(out)
	return out
}

func TestMergePassesThroughWithoutShadow(t *testing.T) {
	s := newShadow()

	merged := s.Merge([]card{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, []string{"a", "b"}, ids(merged))
	assert.Zero(t, s.PendingCount())
}

func TestPendingCreateRendersImmediately(t *testing.T) {
	s := newShadow()

	s.BeginCreate("temp-1", card{ID: "temp-1", Text: "draft"})

	merged := s.Merge([]card{{ID: "a"}})
	assert.Equal(t, []string{"a", "temp-1"}, ids(merged))
	assert.Equal(t, 1, s.PendingCount())
}

func TestFailCreateReverts(t *testing.T) {
	s := newShadow()

	s.BeginCreate("temp-1", card{ID: "temp-1"})
	s.FailCreate("temp-1")

	merged := s.Merge([]card{{ID: "a"}})
	assert.Equal(t, []string{"a"}, ids(merged))
	assert.Zero(t, s.PendingCount())
}

func TestConfirmCreateSurvivesStaleRead(t *testing.T) {
	s := newShadow()
	ctx := context.Background()

	s.BeginCreate("temp-1", card{ID: "temp-1", Text: "draft"})
	s.ConfirmCreate(ctx, "temp-1", card{ID: "real-1", Text: "draft"})

	// A stale read that does not yet include the entity: the confirmed copy
	// still renders, exactly once.
	merged := s.Merge([]card{{ID: "a"}})
	assert.Equal(t, []string{"a", "real-1"}, ids(merged))

	// Once the authoritative read catches up, the store copy wins and the
	// shadow entry retires.
	merged = s.Merge([]card{{ID: "a"}, {ID: "real-1", Text: "stored"}})
	assert.Equal(t, []string{"a", "real-1"}, ids(merged))
	for _, c := range merged {
		if c.ID == "real-1" {
			assert.Equal(t, "stored", c.Text)
		}
	}
}

func TestBeginDeleteHidesImmediately(t *testing.T) {
	s := newShadow()

	s.BeginDelete("a")

	merged := s.Merge([]card{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, []string{"b"}, ids(merged))
	assert.Equal(t, 1, s.PendingCount())
}

func TestFailDeleteRestores(t *testing.T) {
	s := newShadow()

	s.BeginDelete("a")
	s.FailDelete("a")

	merged := s.Merge([]card{{ID: "a"}})
	assert.Equal(t, []string{"a"}, ids(merged))
}

func TestConfirmDeleteTombstonesStaleReads(t *testing.T) {
	s := newShadow()
	ctx := context.Background()

	s.BeginDelete("a")
	s.ConfirmDelete(ctx, "a")

	// The entity stays hidden even when a stale read resurfaces it.
	merged := s.Merge([]card{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, []string{"b"}, ids(merged))
	assert.Zero(t, s.PendingCount())
}

func TestEditPatchedCopyWinsUntilReadCatchesUp(t *testing.T) {
	s := newShadow()
	ctx := context.Background()

	current := card{ID: "a", Text: "old"}

	committed := false
	err := s.Edit(ctx, current, func(c card) card {
		c.Text = "new"
		return c
	}, func(context.Context) error {
		// Mid-commit, a merge against a stale read must already show the
		// patched value.
		merged := s.Merge([]card{{ID: "a", Text: "old"}})
		require.Len(t, merged, 1)
		assert.Equal(t, "new", merged[0].Text)
		committed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, committed)

	// Once the commit has landed, the next authoritative read is trusted and
	// the shadow copy retires.
	merged := s.Merge([]card{{ID: "a", Text: "updated"}})
	require.Len(t, merged, 1)
	assert.Equal(t, "updated", merged[0].Text)
}

func TestEditRevertsOnCommitFailure(t *testing.T) {
	s := newShadow()
	ctx := context.Background()

	current := card{ID: "a", Text: "old"}

	err := s.Edit(ctx, current, func(c card) card {
		c.Text = "new"
		return c
	}, func(context.Context) error {
		return pkgerrors.NewDatabaseError("update", assert.AnError)
	})
	require.Error(t, err)

	merged := s.Merge([]card{{ID: "a", Text: "old"}})
	require.Len(t, merged, 1)
	assert.Equal(t, "old", merged[0].Text)
}
