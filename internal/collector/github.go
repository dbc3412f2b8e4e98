package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
)

// githubSource implements Source using the GitHub REST API
type githubSource struct {
	client      *github.Client
	rateLimiter RateLimiter
}

// NewGitHubSource creates a new GitHub-backed source
func NewGitHubSource(token string) Source {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	return &githubSource{
		client:      client,
		rateLimiter: NewRateLimiter(),
	}
}

// NewGitHubSourceWithClient creates a source over an existing client.
// Used by tests to point the source at a mock server.
func NewGitHubSourceWithClient(client *github.Client) Source {
	return &githubSource{
		client:      client,
		rateLimiter: NewRateLimiter(),
	}
}

// GetOrganization fetches an organization profile
func (s *githubSource) GetOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	org, resp, err := s.client.Organizations.Get(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("organization %s", name))
		}
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to get organization %s", name), err)
	}
	s.updateRateLimitFromResponse(resp)

	now := time.Now()
	return &domain.Organization{
		Username: org.GetLogin(),
		Profile: domain.Profile{
			DisplayName: org.GetName(),
			URL:         org.GetHTMLURL(),
			Avatar:      org.GetAvatarURL(),
			Location:    org.GetLocation(),
			Email:       org.GetEmail(),
			PublicRepos: org.GetPublicRepos(),
			PublicGists: org.GetPublicGists(),
			Followers:   org.GetFollowers(),
			Following:   org.GetFollowing(),
			CreatedAt:   org.GetCreatedAt().Format(time.RFC3339),
			UpdatedAt:   org.GetUpdatedAt().Format(time.RFC3339),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListMembersPage fetches one page of member logins for an organization
func (s *githubSource) ListMembersPage(ctx context.Context, org string, page, perPage int) ([]string, bool, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	opts := &github.ListMembersOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	}

	members, resp, err := s.client.Organizations.ListMembers(ctx, org, opts)
	if err != nil {
		return nil, false, apperrors.NewUpstreamError(fmt.Sprintf("failed to list members for %s page %d", org, page), err)
	}
	s.updateRateLimitFromResponse(resp)

	logins := make([]string, 0, len(members))
	for _, member := range members {
		logins = append(logins, member.GetLogin())
	}

	return logins, resp.NextPage != 0, nil
}

// ListRecentRepos lists owner-type repositories of a user updated after since
func (s *githubSource) ListRecentRepos(ctx context.Context, user string, since time.Time) ([]string, error) {
	repos, err := CollectPages(ctx, func(ctx context.Context, page int) ([]*github.Repository, bool, error) {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, false, err
		}

		opts := &github.RepositoryListOptions{
			Sort:        "updated",
			Type:        "owner", // avoid duplicates across members of the same org
			ListOptions: github.ListOptions{Page: page, PerPage: 100},
		}

		batch, resp, err := s.client.Repositories.List(ctx, user, opts)
		if err != nil {
			return nil, false, apperrors.NewUpstreamError(fmt.Sprintf("failed to list repositories for %s", user), err)
		}
		s.updateRateLimitFromResponse(resp)
		return batch, resp.NextPage != 0, nil
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for _, repo := range repos {
		if repo.GetUpdatedAt().After(since) {
			names = append(names, repo.GetName())
		}
	}
	return names, nil
}

// GetCodeFrequency fetches a repository's weekly code-frequency series.
// GitHub computes repository statistics lazily and answers 202 while
// archiving, so the call is issued twice: the first warms the archive.
// A still-pending second call yields an absent series rather than an
// error.
func (s *githubSource) GetCodeFrequency(ctx context.Context, owner, repo string) (string, error) {
	var weeks []*github.WeeklyStats

	for attempt := 0; attempt < 2; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		stats, resp, err := s.client.Repositories.ListCodeFrequency(ctx, owner, repo)
		if err != nil {
			var accepted *github.AcceptedError
			if errors.As(err, &accepted) {
				continue
			}
			return "", apperrors.NewUpstreamError(fmt.Sprintf("failed to get code frequency for %s/%s", owner, repo), err)
		}
		s.updateRateLimitFromResponse(resp)
		weeks = stats
		break
	}

	if weeks == nil {
		return "", nil
	}

	rows := make([][]int64, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, []int64{w.GetWeek().Unix(), int64(w.GetAdditions()), int64(w.GetDeletions())})
	}
	return marshalSeries(rows)
}

// GetPunchCard fetches a repository's punch-card series, with the same
// double-call archive warm-up as GetCodeFrequency.
func (s *githubSource) GetPunchCard(ctx context.Context, owner, repo string) (string, error) {
	var cells []*github.PunchCard

	for attempt := 0; attempt < 2; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return "", err
		}

		stats, resp, err := s.client.Repositories.ListPunchCard(ctx, owner, repo)
		if err != nil {
			var accepted *github.AcceptedError
			if errors.As(err, &accepted) {
				continue
			}
			return "", apperrors.NewUpstreamError(fmt.Sprintf("failed to get punch card for %s/%s", owner, repo), err)
		}
		s.updateRateLimitFromResponse(resp)
		cells = stats
		break
	}

	if cells == nil {
		return "", nil
	}

	rows := make([][]int64, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, []int64{int64(c.GetDay()), int64(c.GetHour()), int64(c.GetCommits())})
	}
	return marshalSeries(rows)
}

// marshalSeries serializes parsed tuples back to the wire format the
// stats parser consumes
func marshalSeries(rows [][]int64) (string, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to serialize stats series: %w", err)
	}
	return string(data), nil
}

// isNotFound reports whether an API error is a 404
func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == 404
	}
	return false
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (s *githubSource) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		s.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
