package reconcile

import (
	"context"
	"sync"

	"snipgraph-backend/application/ports"

	"go.uber.org/zap"
)

// ShadowState tracks optimistic writes for one client session so the caller
// can render created, edited, and deleted entities immediately, before the
// store confirms them, and never see them regress once confirmation arrives.
//
// Four buckets drive the merge:
//   - pendingCreate: entities under a locally generated temporary id, shown
//     until the write either confirms or fails.
//   - confirmed: entities whose create succeeded but which a stale
//     authoritative read may not include yet, keyed by real id.
//   - pendingDelete: ids hidden immediately while the delete is in flight.
//   - confirmedDelete: ids hidden permanently, even if a stale read
//     resurfaces them.
//
// A ShadowState belongs to a single client session. Access is serialized with
// a mutex so callers that fan confirmation callbacks onto other goroutines
// stay correct, but the type is not meant to be shared across sessions.
type ShadowState[T any] struct {
	mu              sync.Mutex
	pendingCreate   map[string]T
	confirmed       map[string]T
	pendingDelete   map[string]struct{}
	confirmedDelete map[string]struct{}
	snapshots       map[string]T

	idOf        func(T) string
	cache       ports.Cache
	cachePrefix string
	logger      *zap.Logger
}

// NewShadowState creates a shadow for entities of type T. idOf extracts the
// entity's id for duplicate resolution during merge. cache may be nil; when
// set, every confirmed transition invalidates cachePrefix so the next
// authoritative read bypasses stale cached results.
func NewShadowState[T any](idOf func(T) string, cache ports.Cache, cachePrefix string, logger *zap.Logger) *ShadowState[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShadowState[T]{
		pendingCreate:   make(map[string]T),
		confirmed:       make(map[string]T),
		pendingDelete:   make(map[string]struct{}),
		confirmedDelete: make(map[string]struct{}),
		snapshots:       make(map[string]T),
		idOf:            idOf,
		cache:           cache,
		cachePrefix:     cachePrefix,
		logger:          logger,
	}
}

// BeginCreate registers an optimistic entity under a temporary id. The entity
// renders immediately via Merge until ConfirmCreate or FailCreate resolves it.
func (s *ShadowState[T]) BeginCreate(tempID string, entity T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingCreate[tempID] = entity
}

// ConfirmCreate replaces the temporary entry with the real entity under its
// real id. The confirmed entry keeps rendering until an authoritative read
// includes it.
func (s *ShadowState[T]) ConfirmCreate(ctx context.Context, tempID string, entity T) {
	s.mu.Lock()
	delete(s.pendingCreate, tempID)
	s.confirmed[s.idOf(entity)] = entity
	s.mu.Unlock()

	s.invalidateReads(ctx)
}

// FailCreate drops the temporary entry entirely so the next render reverts.
func (s *ShadowState[T]) FailCreate(tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingCreate, tempID)
}

// BeginDelete hides the entity immediately while the delete is in flight.
func (s *ShadowState[T]) BeginDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete[id] = struct{}{}
}

// ConfirmDelete moves the id into the permanent tombstone set. The id stays
// hidden even if a stale authoritative read still returns the entity.
func (s *ShadowState[T]) ConfirmDelete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.pendingDelete, id)
	s.confirmedDelete[id] = struct{}{}
	delete(s.confirmed, id)
	s.mu.Unlock()

	s.invalidateReads(ctx)
}

// FailDelete un-hides the entity after a failed delete.
func (s *ShadowState[T]) FailDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingDelete, id)
}

// Edit applies patch to the visible copy of the entity and runs commit. If
// commit fails the visible copy reverts to its pre-edit value and the error
// is returned so the caller can surface it.
//
// The visible copy lives in the confirmed bucket: entities only present in an
// authoritative read are promoted into it on first edit so the patched value
// wins the next Merge.
func (s *ShadowState[T]) Edit(ctx context.Context, current T, patch func(T) T, commit func(context.Context) error) error {
	id := s.idOf(current)

	s.mu.Lock()
	before, hadShadow := s.confirmed[id]
	if !hadShadow {
		before = current
	}
	s.snapshots[id] = before
	s.confirmed[id] = patch(before)
	s.mu.Unlock()

	if err := commit(ctx); err != nil {
		s.mu.Lock()
		if hadShadow {
			s.confirmed[id] = s.snapshots[id]
		} else {
			delete(s.confirmed, id)
		}
		delete(s.snapshots, id)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	delete(s.snapshots, id)
	s.mu.Unlock()

	s.invalidateReads(ctx)
	return nil
}

// Merge folds an authoritative read list through the shadow buckets and
// returns what the client should render:
//
//	(authoritative - pendingDelete - confirmedDelete)
//	  ∪ confirmed entries absent from the authoritative list
//	  ∪ pendingCreate entries
//
// Duplicates resolve by id; confirmed entries always win over optimistic
// placeholders with the same id. Confirmed entries already present in the
// authoritative list are dropped from the shadow, since the store has caught
// up and the shadow copy would otherwise mask later edits.
func (s *ShadowState[T]) Merge(authoritative []T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(authoritative)+len(s.confirmed)+len(s.pendingCreate))
	seen := make(map[string]struct{}, len(authoritative))

	for _, entity := range authoritative {
		id := s.idOf(entity)
		if _, ok := s.pendingDelete[id]; ok {
			continue
		}
		if _, ok := s.confirmedDelete[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if shadow, ok := s.confirmed[id]; ok {
			if _, editing := s.snapshots[id]; editing {
				// An edit is in flight; keep the patched copy visible.
				out = append(out, shadow)
				continue
			}
			delete(s.confirmed, id)
		}
		out = append(out, entity)
	}

	for id, entity := range s.confirmed {
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := s.confirmedDelete[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, entity)
	}

	for tempID, entity := range s.pendingCreate {
		if _, ok := seen[s.idOf(entity)]; ok {
			// A real entry with the same id exists; the placeholder lost.
			continue
		}
		if _, ok := seen[tempID]; ok {
			continue
		}
		out = append(out, entity)
	}

	return out
}

// PendingCount reports in-flight optimistic writes, useful for sync badges.
func (s *ShadowState[T]) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingCreate) + len(s.pendingDelete)
}

func (s *ShadowState[T]) invalidateReads(ctx context.Context) {
	if s.cache == nil || s.cachePrefix == "" {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, s.cachePrefix); err != nil {
		s.logger.Debug("read cache invalidation failed", zap.Error(err))
	}
}
