// Package aggregator reduces an organization's stored activity series
// into the two presentation datasets: a weekly code-delta list and a
// 7x24 commit-activity grid.
package aggregator

import (
	"context"
	"sort"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
	"github.com/mkurosawa/github-org-pulse/internal/stats"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
)

// Aggregator loads stored organizations and derives their reports
type Aggregator interface {
	// CodeFrequencyReport derives the weekly code-delta report for the
	// given window
	CodeFrequencyReport(ctx context.Context, org string, window WindowFunc) ([]domain.CodeDeltaEntry, error)

	// PunchCardReport derives the 168-bucket commit-activity grid
	PunchCardReport(ctx context.Context, org string) ([]domain.PunchCardBucket, error)

	// GetOrganization returns the stored organization document
	GetOrganization(ctx context.Context, org string) (*domain.Organization, error)
}

// aggregator implements the Aggregator interface
type aggregator struct {
	storage storage.Storage
}

// NewAggregator creates a new aggregator
func NewAggregator(storage storage.Storage) Aggregator {
	return &aggregator{
		storage: storage,
	}
}

// GetOrganization returns the stored organization document
func (a *aggregator) GetOrganization(ctx context.Context, org string) (*domain.Organization, error) {
	doc, err := a.storage.FindOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NewNotFoundError("organization " + org)
	}
	return doc, nil
}

// CodeFrequencyReport derives the weekly code-delta report
func (a *aggregator) CodeFrequencyReport(ctx context.Context, org string, window WindowFunc) ([]domain.CodeDeltaEntry, error) {
	doc, err := a.GetOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	return ReduceCodeFrequency(doc, window)
}

// PunchCardReport derives the 168-bucket commit-activity grid
func (a *aggregator) PunchCardReport(ctx context.Context, org string) ([]domain.PunchCardBucket, error) {
	doc, err := a.GetOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	return ReducePunchCard(doc)
}

// ReduceCodeFrequency walks every repo of every member with repos and
// keeps the weeks that fall in the window and show activity in both
// directions: a week with only additions or only deletions is
// excluded. Deletions are flipped to a positive magnitude; net keeps
// the negative deletions, so it can be smaller than additions. The
// result is sorted descending by additions, ties keeping traversal
// order.
func ReduceCodeFrequency(org *domain.Organization, window WindowFunc) ([]domain.CodeDeltaEntry, error) {
	entries := []domain.CodeDeltaEntry{}

	for _, member := range org.Members {
		if len(member.Repos) == 0 {
			continue
		}
		for _, repo := range member.Repos {
			series, err := stats.ParseCodeFrequency(repo.Stats.CodeFrequency)
			if err != nil {
				return nil, err
			}
			for _, week := range series {
				if !window(week.WeekStart) || week.Additions <= 0 || week.Deletions >= 0 {
					continue
				}
				entries = append(entries, domain.CodeDeltaEntry{
					Username:  member.Username,
					Repo:      repo.Name,
					Additions: week.Additions,
					Deletions: -week.Deletions,
					Net:       week.Additions + week.Deletions,
				})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Additions > entries[j].Additions
	})

	return entries, nil
}

// ReducePunchCard accumulates every punch-card cell with commits into
// the fixed 7x24 grid. The full 168-bucket shape comes back regardless
// of how sparse the input is; untouched buckets keep zero commits and
// an empty contribution list.
func ReducePunchCard(org *domain.Organization) ([]domain.PunchCardBucket, error) {
	buckets := make([]domain.PunchCardBucket, domain.PunchCardBuckets)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			buckets[day*24+hour] = domain.PunchCardBucket{
				Day:   day,
				Hour:  hour,
				Repos: []domain.PunchCardContribution{},
			}
		}
	}

	for _, member := range org.Members {
		if len(member.Repos) == 0 {
			continue
		}
		for _, repo := range member.Repos {
			series, err := stats.ParsePunchCard(repo.Stats.PunchCard)
			if err != nil {
				return nil, err
			}
			for _, cell := range series {
				if cell.Commits <= 0 {
					continue
				}
				if cell.Day < 0 || cell.Day > 6 || cell.Hour < 0 || cell.Hour > 23 {
					continue
				}
				bucket := &buckets[cell.Day*24+cell.Hour]
				bucket.Commits += cell.Commits
				bucket.Repos = append(bucket.Repos, domain.PunchCardContribution{
					User:    member.Username,
					Repo:    repo.Name,
					Commits: cell.Commits,
				})
			}
		}
	}

	return buckets, nil
}
