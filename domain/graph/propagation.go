package graph

import (
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"
)

// ContentType discriminates the kind of content a snippet contributes
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// ContentItem is one upstream content entry visible to a target snippet.
// Display data for prompt assembly and the canvas; never authoritative.
type ContentItem struct {
	SnippetID    string
	SnippetTitle string
	Type         ContentType
	Value        string
	Media        *valueobjects.MediaRef
}

// Propagator computes, for each snippet, the ordered list of upstream
// content visible to it. Results are memoized for the lifetime of one index
// build, which makes a whole-project pass O(V+E) despite per-node recursion.
//
// Cycle policy: a node revisited while still on the current walk contributes
// an empty result instead of recursing. Propagation is best-effort display
// data, so malformed cyclic edges degrade silently rather than erroring.
type Propagator struct {
	idx      *Index
	snippets map[string]*entities.Snippet
	memo     map[string][]ContentItem
	onWalk   map[string]bool
}

// NewPropagator creates a propagator over a frozen index and the project's
// snippets keyed by ID
func NewPropagator(idx *Index, snippets map[string]*entities.Snippet) *Propagator {
	return &Propagator{
		idx:      idx,
		snippets: snippets,
		memo:     make(map[string][]ContentItem),
		onWalk:   make(map[string]bool),
	}
}

// ContentFor returns the merged upstream content list for one target.
// At most one entry per (snippet, content type) pair survives the merge;
// when the same snippet reaches the target via multiple paths the
// first-seen entry wins.
func (p *Propagator) ContentFor(targetID string) []ContentItem {
	items := p.collect(targetID)
	return dedupeItems(items)
}

// All computes the merged upstream content for every known snippet
func (p *Propagator) All() map[string][]ContentItem {
	result := make(map[string][]ContentItem, len(p.snippets))
	for id := range p.snippets {
		result[id] = p.ContentFor(id)
	}
	return result
}

// collect gathers upstream items for a target in edge order, without the
// final per-target dedup. The onWalk set tracks the current recursion path;
// it is pushed and popped around each descent so cycle detection follows the
// walk, not the whole pass.
func (p *Propagator) collect(targetID string) []ContentItem {
	if cached, ok := p.memo[targetID]; ok {
		return cached
	}
	if p.onWalk[targetID] {
		// Revisit on the current walk: a cycle. Contribute nothing.
		return nil
	}

	p.onWalk[targetID] = true

	var items []ContentItem
	for _, conn := range p.idx.Incoming(targetID) {
		sourceID := conn.SourceID.String()

		// Upstream of the source first, then the source's own content,
		// so reading order follows derivation order.
		items = append(items, p.collect(sourceID)...)

		if source, ok := p.snippets[sourceID]; ok {
			items = append(items, ownContent(source)...)
		}
	}

	delete(p.onWalk, targetID)
	p.memo[targetID] = items
	return items
}

// ownContent lists the entries a snippet itself contributes: one per content
// type it actually carries
func ownContent(s *entities.Snippet) []ContentItem {
	var items []ContentItem
	content := s.Content()
	id := s.ID().String()

	if content.HasText() {
		items = append(items, ContentItem{
			SnippetID:    id,
			SnippetTitle: s.Title(),
			Type:         ContentTypeText,
			Value:        content.Text(),
		})
	}
	if img := content.Image(); !img.IsZero() {
		items = append(items, ContentItem{
			SnippetID:    id,
			SnippetTitle: s.Title(),
			Type:         ContentTypeImage,
			Value:        img.URL,
			Media:        &img,
		})
	}
	if vid := content.Video(); !vid.IsZero() {
		items = append(items, ContentItem{
			SnippetID:    id,
			SnippetTitle: s.Title(),
			Type:         ContentTypeVideo,
			Value:        vid.URL,
			Media:        &vid,
		})
	}

	return items
}

// dedupeItems keeps the first-seen entry per (snippet, type) pair while
// preserving order
func dedupeItems(items []ContentItem) []ContentItem {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]map[ContentType]bool)
	out := make([]ContentItem, 0, len(items))

	for _, item := range items {
		types := seen[item.SnippetID]
		if types == nil {
			types = make(map[ContentType]bool)
			seen[item.SnippetID] = types
		}
		if types[item.Type] {
			continue
		}
		types[item.Type] = true
		out = append(out, item)
	}

	return out
}
