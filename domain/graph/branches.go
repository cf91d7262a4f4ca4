package graph

import (
	"sort"
	"time"
)

// Branch is one ancestor chain from a graph root down to (but excluding) a
// target snippet. Derived on demand; never persisted.
type Branch struct {
	RootID    string
	Path      []string
	CreatedAt time.Time
}

// FindRoot walks backward from startID through the first incoming edge of
// each node until it reaches a node with no incoming edges. The walk keeps
// its own visited set; revisiting a node means the chain loops, in which
// case root-finding fails and the caller skips the branch instead of
// erroring the whole combine. maxSteps is a hard cap for the same reason.
func FindRoot(idx *Index, startID string, maxSteps int) (string, bool) {
	visited := map[string]bool{startID: true}
	current := startID

	for steps := 0; maxSteps <= 0 || steps < maxSteps; steps++ {
		incoming := idx.Incoming(current)
		if len(incoming) == 0 {
			return current, true
		}

		next := incoming[0].SourceID.String()
		if visited[next] {
			return "", false
		}
		visited[next] = true
		current = next
	}

	return "", false
}

// PathFromRoot builds the ordered node path from root to target, excluding
// the target itself, via breadth-first search over outgoing edges. Should
// the search fail to reach the target (possible only if the edge set changed
// underneath us), the branch degrades to the root alone.
func PathFromRoot(idx *Index, rootID, targetID string) []string {
	if rootID == targetID {
		return []string{rootID}
	}

	visited := map[string]bool{rootID: true}
	parent := make(map[string]string)
	queue := []string{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, conn := range idx.Outgoing(current) {
			next := conn.TargetID.String()
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current

			if next == targetID {
				// Walk back from the target's predecessor to the root.
				path := []string{}
				for n := current; ; n = parent[n] {
					path = append([]string{n}, path...)
					if n == rootID {
						break
					}
				}
				return path
			}

			queue = append(queue, next)
		}
	}

	return []string{rootID}
}

// DiscoverBranches finds every ancestor chain feeding the target: one branch
// per incoming connection whose source can be walked back to a root. Cyclic
// chains are skipped.
func DiscoverBranches(idx *Index, targetID string, maxWalk int) []*Branch {
	var branches []*Branch

	for _, conn := range idx.Incoming(targetID) {
		sourceID := conn.SourceID.String()

		rootID, ok := FindRoot(idx, sourceID, maxWalk)
		if !ok {
			continue
		}

		branches = append(branches, &Branch{
			RootID: rootID,
			Path:   PathFromRoot(idx, rootID, targetID),
		})
	}

	return branches
}

// SortBranches orders branches by their root snippet's CreatedAt ascending,
// tie-broken by root ID lexicographically. This fixes the left-to-right
// reading order of combine output independent of connection insertion order.
// rootCreatedAt resolves a root snippet ID to its creation time; roots it
// cannot resolve sort last.
func SortBranches(branches []*Branch, rootCreatedAt func(id string) (time.Time, bool)) {
	for _, b := range branches {
		if ts, ok := rootCreatedAt(b.RootID); ok {
			b.CreatedAt = ts
		}
	}

	sort.SliceStable(branches, func(i, j int) bool {
		a, b := branches[i], branches[j]
		if a.CreatedAt.IsZero() != b.CreatedAt.IsZero() {
			return !a.CreatedAt.IsZero()
		}
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.RootID < b.RootID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
