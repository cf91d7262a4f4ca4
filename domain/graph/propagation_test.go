package graph

import (
	"testing"
	"time"

	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnippet(t *testing.T, id, title, text string, createdAt time.Time) *entities.Snippet {
	t.Helper()

	snippetID, err := valueobjects.NewSnippetIDFromString(id)
	require.NoError(t, err)
	content, err := valueobjects.NewSnippetContent(text, nil)
	require.NoError(t, err)

	s, err := entities.ReconstructSnippet(
		snippetID, "proj-1", "user-1", title, content,
		valueobjects.NewPosition(0, 0), 1, createdAt, createdAt,
	)
	require.NoError(t, err)
	return s
}

func snippetMap(snippets ...*entities.Snippet) map[string]*entities.Snippet {
	out := make(map[string]*entities.Snippet, len(snippets))
	for _, s := range snippets {
		out[s.ID().String()] = s
	}
	return out
}

func TestPropagationFollowsDerivationOrder(t *testing.T) {
	a, b, c := newID(), newID(), newID()
	base := time.Now()

	snippets := snippetMap(
		newSnippet(t, a, "A", "alpha", base),
		newSnippet(t, b, "B", "beta", base),
		newSnippet(t, c, "C", "gamma", base),
	)
	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, b, c, base.Add(time.Second)),
	})

	p := NewPropagator(idx, snippets)

	items := p.ContentFor(c)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Value)
	assert.Equal(t, "beta", items[1].Value)
	assert.Equal(t, ContentTypeText, items[0].Type)

	// A root sees nothing.
	assert.Empty(t, p.ContentFor(a))
}

func TestPropagationDiamondDedup(t *testing.T) {
	// a feeds d through both b and c; a's content must appear once.
	a, b, c, d := newID(), newID(), newID(), newID()
	base := time.Now()

	snippets := snippetMap(
		newSnippet(t, a, "A", "shared", base),
		newSnippet(t, b, "B", "left", base),
		newSnippet(t, c, "C", "right", base),
		newSnippet(t, d, "D", "sink", base),
	)
	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, a, c, base.Add(time.Second)),
		newConn(t, b, d, base.Add(2*time.Second)),
		newConn(t, c, d, base.Add(3*time.Second)),
	})

	items := NewPropagator(idx, snippets).ContentFor(d)

	values := make([]string, len(items))
	for i, item := range items {
		values[i] = item.Value
	}
	assert.Equal(t, []string{"shared", "left", "right"}, values)
}

func TestPropagationCycleContributesNothing(t *testing.T) {
	a, b := newID(), newID()
	base := time.Now()

	snippets := snippetMap(
		newSnippet(t, a, "A", "one", base),
		newSnippet(t, b, "B", "two", base),
	)
	idx := BuildIndex([]*entities.Connection{
		newConn(t, a, b, base),
		newConn(t, b, a, base.Add(time.Second)),
	})

	p := NewPropagator(idx, snippets)

	// Each node still sees the other's content exactly once; the cycle
	// terminates instead of recursing.
	itemsB := p.ContentFor(b)
	require.Len(t, itemsB, 1)
	assert.Equal(t, "one", itemsB[0].Value)

	itemsA := p.ContentFor(a)
	require.Len(t, itemsA, 1)
	assert.Equal(t, "two", itemsA[0].Value)
}

func TestPropagationIncludesMedia(t *testing.T) {
	a, b := newID(), newID()
	base := time.Now()

	source := newSnippet(t, a, "A", "caption", base)
	content := source.Content().WithImage(valueobjects.MediaRef{
		URL:      "https://cdn.example.com/a.png",
		MimeType: "image/png",
	})
	require.NoError(t, source.UpdateContent(content))

	snippets := snippetMap(source, newSnippet(t, b, "B", "", base))
	idx := BuildIndex([]*entities.Connection{newConn(t, a, b, base)})

	items := NewPropagator(idx, snippets).ContentFor(b)
	require.Len(t, items, 2)
	assert.Equal(t, ContentTypeText, items[0].Type)
	assert.Equal(t, ContentTypeImage, items[1].Type)
	require.NotNil(t, items[1].Media)
	assert.Equal(t, "image/png", items[1].Media.MimeType)
}

func TestPropagationAllCoversEverySnippet(t *testing.T) {
	a, b := newID(), newID()
	base := time.Now()

	snippets := snippetMap(
		newSnippet(t, a, "A", "alpha", base),
		newSnippet(t, b, "B", "beta", base),
	)
	idx := BuildIndex([]*entities.Connection{newConn(t, a, b, base)})

	all := NewPropagator(idx, snippets).All()
	require.Len(t, all, 2)
	assert.Empty(t, all[a])
	require.Len(t, all[b], 1)
	assert.Equal(t, "alpha", all[b][0].Value)
}
