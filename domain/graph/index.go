// Package graph holds the pure traversal algorithms of the content graph:
// adjacency indexing, upstream content propagation, and branch discovery for
// the combine operation. Everything here works on an immutable snapshot of a
// project's connections; nothing in this package touches storage.
package graph

import (
	"sort"

	"snipgraph-backend/domain/core/entities"
)

// Index is the in-memory adjacency view of one project's edge set. Lists are
// stable-sorted at build time so every traversal sees the same order no
// matter how the storage layer returned the rows. An Index is frozen after
// Build; traversals never mutate it.
type Index struct {
	outgoing map[string][]*entities.Connection
	incoming map[string][]*entities.Connection
	size     int
}

// BuildIndex constructs adjacency maps from a project's full connection
// list. Per-node lists are ordered by CreatedAt ascending with the
// connection ID as a lexicographic tie-break.
func BuildIndex(connections []*entities.Connection) *Index {
	idx := &Index{
		outgoing: make(map[string][]*entities.Connection),
		incoming: make(map[string][]*entities.Connection),
		size:     len(connections),
	}

	for _, conn := range connections {
		src := conn.SourceID.String()
		tgt := conn.TargetID.String()
		idx.outgoing[src] = append(idx.outgoing[src], conn)
		idx.incoming[tgt] = append(idx.incoming[tgt], conn)
	}

	for _, list := range idx.outgoing {
		sortConnections(list)
	}
	for _, list := range idx.incoming {
		sortConnections(list)
	}

	return idx
}

// Outgoing returns the ordered connections leaving the given snippet
func (idx *Index) Outgoing(snippetID string) []*entities.Connection {
	return idx.outgoing[snippetID]
}

// Incoming returns the ordered connections arriving at the given snippet
func (idx *Index) Incoming(snippetID string) []*entities.Connection {
	return idx.incoming[snippetID]
}

// Size returns the number of connections in the index
func (idx *Index) Size() int {
	return idx.size
}

func sortConnections(list []*entities.Connection) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
