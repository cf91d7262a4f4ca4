package services

import (
	"context"
	"strings"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/config"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/events"
	"snipgraph-backend/domain/graph"
	pkgerrors "snipgraph-backend/pkg/errors"
	"snipgraph-backend/pkg/observability"

	"go.uber.org/zap"
)

// branchSeparator joins the concatenated parts of a combine result
const branchSeparator = "\n\n"

// CombineService merges every ancestor chain of a target snippet into one
// concatenated text and persists it as the target's content. Branches read
// oldest-root-first, so the result is reproducible regardless of the order
// connections were inserted.
type CombineService struct {
	snippets    ports.SnippetRepository
	connections ports.ConnectionRepository
	versions    ports.VersionStore
	publisher   ports.EventPublisher
	notifier    ports.GraphNotifier
	metrics     *observability.Metrics
	domainCfg   *config.DomainConfig
	logger      *zap.Logger
}

// NewCombineService creates a new combine service
func NewCombineService(
	snippets ports.SnippetRepository,
	connections ports.ConnectionRepository,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	notifier ports.GraphNotifier,
	metrics *observability.Metrics,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *CombineService {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &CombineService{
		snippets:    snippets,
		connections: connections,
		versions:    versions,
		publisher:   publisher,
		notifier:    notifier,
		metrics:     metrics,
		domainCfg:   domainCfg,
		logger:      logger,
	}
}

// Combine walks every ancestor chain of the target back to its root, lays
// the chains out oldest root first, concatenates all non-empty texts along
// each chain with the target's own text last, and persists the result as
// the target's text. The write bumps the target's version and records a
// snapshot like any other content update.
func (s *CombineService) Combine(ctx context.Context, projectID, snippetID, ownerID string) (*entities.Snippet, error) {
	started := time.Now()

	target, err := s.snippets.GetByID(ctx, projectID, snippetID, ownerID)
	if err != nil {
		return nil, err
	}

	conns, err := s.connections.Query(ctx, ports.ConnectionFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	if len(conns) == 0 {
		return nil, pkgerrors.NewInvalidOperationError("project has no connections, nothing to combine").WithCode("NO_CONNECTIONS")
	}

	idx := graph.BuildIndex(conns)
	if len(idx.Incoming(snippetID)) == 0 {
		return nil, pkgerrors.NewInvalidOperationError("snippet has no incoming connections, nothing to combine").WithCode("NO_INCOMING")
	}

	branches := graph.DiscoverBranches(idx, snippetID, s.domainCfg.MaxBranchWalkDepth)
	if len(branches) == 0 {
		return nil, pkgerrors.NewInvalidOperationError("every branch is cyclic, no valid branches to combine").WithCode("NO_VALID_BRANCHES")
	}

	// One batched read covers every snippet referenced by any branch.
	idSet := make(map[string]bool)
	for _, branch := range branches {
		for _, id := range branch.Path {
			idSet[id] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	fetched, err := s.snippets.BatchGet(ctx, projectID, ids)
	if err != nil {
		return nil, err
	}

	graph.SortBranches(branches, func(id string) (time.Time, bool) {
		snippet, ok := fetched[id]
		if !ok {
			return time.Time{}, false
		}
		return snippet.CreatedAt(), true
	})

	var parts []string
	for _, branch := range branches {
		for _, id := range branch.Path {
			snippet, ok := fetched[id]
			if !ok {
				continue
			}
			if text := strings.TrimSpace(snippet.Content().Text()); text != "" {
				parts = append(parts, text)
			}
		}
	}

	// The target's own text goes last. If its current text already starts
	// with this combine's branch output, only the remainder counts as its
	// own contribution; re-running combine must never stack earlier
	// combine output on top of itself.
	upstream := strings.Join(parts, branchSeparator)
	own := strings.TrimSpace(target.Content().Text())
	if own == upstream {
		own = ""
	} else if upstream != "" {
		own = strings.TrimSpace(strings.TrimPrefix(own, upstream+branchSeparator))
	}
	if own != "" {
		parts = append(parts, own)
	}

	combined := strings.Join(parts, branchSeparator)

	before := target.Version()
	if err := target.UpdateContent(target.Content().WithText(combined)); err != nil {
		return nil, err
	}

	if target.Version() > before {
		if err := s.snippets.Update(ctx, target); err != nil {
			return nil, err
		}
		if err := s.versions.Append(ctx, target.Snapshot()); err != nil {
			s.logger.Warn("failed to write version record after combine",
				zap.String("snippetID", snippetID),
				zap.Error(err),
			)
		}
	}

	if s.publisher != nil {
		event := events.NewSnippetCombined(target.ID(), projectID, len(branches), time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish combine event", zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyGraphChanged(ctx, ownerID, projectID, "combine"); err != nil {
			s.logger.Debug("graph change notification failed", zap.Error(err))
		}
	}

	s.metrics.RecordDuration(ctx, "CombineLatency", time.Since(started))
	s.metrics.RecordCount(ctx, "CombineBranches", float64(len(branches)))

	s.logger.Info("combined branches into snippet",
		zap.String("snippetID", snippetID),
		zap.String("projectID", projectID),
		zap.Int("branches", len(branches)),
		zap.Int("parts", len(parts)),
		zap.Duration("duration", time.Since(started)),
	)

	return target, nil
}
