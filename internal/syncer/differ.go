package syncer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// mergeMembers appends the genuinely new members of a freshly fetched
// membership listing to the stored organization and persists the
// result.
//
// When the fetched count equals the stored count the merge is skipped
// entirely and no write occurs. This is a cardinality check, not a set
// comparison: simultaneous adds and removals of equal count go
// undetected until the counts diverge again.
func (s *Syncer) mergeMembers(ctx context.Context, org *domain.Organization, fetched []string) (*domain.Organization, error) {
	if len(fetched) == len(org.Members) {
		return org, nil
	}

	// A login is new when no stored organization contains it. The
	// existence checks are independent reads, so they fan out; results
	// land by index so the appended order stays the fetched order.
	isNew := make([]bool, len(fetched))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, login := range fetched {
		i, login := i, login
		eg.Go(func() error {
			existing, err := s.store.FindOrganizationWithMember(egCtx, login)
			if err != nil {
				return err
			}
			isNew[i] = existing == nil
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, login := range fetched {
		if isNew[i] {
			org.Members = append(org.Members, domain.Member{Username: login, Repos: []domain.Repo{}})
		}
	}

	if err := s.store.SaveOrganization(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}
