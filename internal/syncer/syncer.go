// Package syncer drives one incremental synchronization cycle: resolve
// the organization, merge its membership, refresh member repositories
// and their activity stats. Stages run strictly in order and fail fast;
// a failed cycle is re-run from the start on its next invocation.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mkurosawa/github-org-pulse/internal/collector"
	"github.com/mkurosawa/github-org-pulse/internal/domain"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
)

// recentRepoWindow is how far back a repository update still counts as
// recent when refreshing a member's repo list.
const recentRepoWindow = 7 * 24 * time.Hour

// Syncer orchestrates sync cycles. Callers must serialize cycles per
// organization; no lock is taken here.
type Syncer struct {
	store    storage.Storage
	source   collector.Source
	pageSize int
	workers  int
}

// New creates a new Syncer
func New(store storage.Storage, source collector.Source, pageSize, workers int) *Syncer {
	if pageSize < 1 {
		pageSize = 100
	}
	if workers < 1 {
		workers = 1
	}
	return &Syncer{
		store:    store,
		source:   source,
		pageSize: pageSize,
		workers:  workers,
	}
}

// Sync runs one full sync cycle for the named organization and returns
// the synced document. Each stage transition is recorded on a
// persisted cycle record; any stage error marks the cycle failed and
// is returned to the caller. Partial effects are not rolled back.
func (s *Syncer) Sync(ctx context.Context, orgName string) (*domain.Organization, error) {
	cycle := &domain.SyncCycle{
		ID:        uuid.New().String(),
		Org:       orgName,
		State:     domain.SyncStateResolvingOrg,
		StartedAt: time.Now(),
	}
	if err := s.store.SaveSyncCycle(ctx, cycle); err != nil {
		return nil, err
	}

	org, err := s.resolveOrganization(ctx, orgName)
	if err != nil {
		return nil, s.fail(ctx, cycle, err)
	}

	if err := s.transition(ctx, cycle, domain.SyncStateSyncingMembers); err != nil {
		return nil, s.fail(ctx, cycle, err)
	}
	org, err = s.syncMembers(ctx, org)
	if err != nil {
		return nil, s.fail(ctx, cycle, err)
	}

	if err := s.transition(ctx, cycle, domain.SyncStateCollectingStats); err != nil {
		return nil, s.fail(ctx, cycle, err)
	}
	org, err = s.collectStats(ctx, org)
	if err != nil {
		return nil, s.fail(ctx, cycle, err)
	}

	now := time.Now()
	cycle.State = domain.SyncStateDone
	cycle.FinishedAt = &now
	if err := s.store.SaveSyncCycle(ctx, cycle); err != nil {
		return nil, err
	}

	return org, nil
}

// resolveOrganization looks the organization up in storage and, when
// absent, fetches its profile from the source and persists a new
// document. Re-resolving an existing organization is a plain lookup.
func (s *Syncer) resolveOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	org, err := s.store.FindOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	if org != nil {
		return org, nil
	}

	org, err = s.source.GetOrganization(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// syncMembers paginates the full membership listing and merges the
// result into the stored document.
func (s *Syncer) syncMembers(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	fetched, err := collector.CollectPages(ctx, func(ctx context.Context, page int) ([]string, bool, error) {
		return s.source.ListMembersPage(ctx, org.Username, page, s.pageSize)
	})
	if err != nil {
		return nil, err
	}
	return s.mergeMembers(ctx, org, fetched)
}

// collectStats refreshes each member's recently updated repositories
// and fetches both activity series per repo. The per-repo fetches fan
// out with bounded concurrency and join before the single persistence
// write; the first error cancels the remaining fetches and surfaces.
func (s *Syncer) collectStats(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	since := time.Now().Add(-recentRepoWindow)

	for i := range org.Members {
		member := &org.Members[i]
		names, err := s.source.ListRecentRepos(ctx, member.Username, since)
		if err != nil {
			return nil, err
		}
		member.Repos = make([]domain.Repo, len(names))
		for j, name := range names {
			member.Repos[j] = domain.Repo{Name: name}
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)

	for i := range org.Members {
		member := &org.Members[i]
		for j := range member.Repos {
			repo := &member.Repos[j]
			eg.Go(func() error {
				codeFreq, err := s.source.GetCodeFrequency(egCtx, member.Username, repo.Name)
				if err != nil {
					return fmt.Errorf("code frequency for %s/%s: %w", member.Username, repo.Name, err)
				}
				punchCard, err := s.source.GetPunchCard(egCtx, member.Username, repo.Name)
				if err != nil {
					return fmt.Errorf("punch card for %s/%s: %w", member.Username, repo.Name, err)
				}
				repo.Stats = domain.RepoStats{CodeFrequency: codeFreq, PunchCard: punchCard}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := s.store.SaveOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// transition advances the cycle record to the next state
func (s *Syncer) transition(ctx context.Context, cycle *domain.SyncCycle, state domain.SyncState) error {
	cycle.State = state
	return s.store.SaveSyncCycle(ctx, cycle)
}

// fail marks the cycle failed, best-effort, and passes the stage error
// through to the caller
func (s *Syncer) fail(ctx context.Context, cycle *domain.SyncCycle, stageErr error) error {
	now := time.Now()
	cycle.State = domain.SyncStateFailed
	cycle.Error = stageErr.Error()
	cycle.FinishedAt = &now
	if err := s.store.SaveSyncCycle(ctx, cycle); err != nil {
		fmt.Printf("Warning: failed to record failed sync cycle %s: %v\n", cycle.ID, err)
	}
	return stageErr
}
