package collector

import (
	"context"
	"time"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// Source defines the interface to the external source-hosting API.
// Only the calls the sync pipeline and the reports need are exposed.
type Source interface {
	// GetOrganization fetches an organization profile
	GetOrganization(ctx context.Context, name string) (*domain.Organization, error)

	// ListMembersPage fetches one page of member logins for an
	// organization. hasMore is derived from the response link metadata.
	ListMembersPage(ctx context.Context, org string, page, perPage int) (logins []string, hasMore bool, err error)

	// ListRecentRepos lists the names of repositories owned by a user
	// that were updated after since
	ListRecentRepos(ctx context.Context, user string, since time.Time) ([]string, error)

	// GetCodeFrequency fetches a repository's weekly additions/deletions
	// series in serialized form. An empty string means the series is
	// not yet available.
	GetCodeFrequency(ctx context.Context, owner, repo string) (string, error)

	// GetPunchCard fetches a repository's hourly commit-count series in
	// serialized form. An empty string means the series is not yet
	// available.
	GetPunchCard(ctx context.Context, owner, repo string) (string, error)
}
