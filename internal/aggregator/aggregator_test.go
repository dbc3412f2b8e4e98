package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

const weekStart = int64(1464393600)

func inWindow(ws int64) bool { return ws == weekStart }

func orgWithCodeFrequency(raw ...string) *domain.Organization {
	org := &domain.Organization{Username: "hackreactor"}
	for i, r := range raw {
		org.Members = append(org.Members, domain.Member{
			Username: "member" + string(rune('a'+i)),
			Repos: []domain.Repo{
				{Name: "repo" + string(rune('a'+i)), Stats: domain.RepoStats{CodeFrequency: r}},
			},
		})
	}
	return org
}

func TestReduceCodeFrequency(t *testing.T) {
	t.Run("sign conventions", func(t *testing.T) {
		org := orgWithCodeFrequency(`[[1464393600, 120, -40]]`)

		entries, err := ReduceCodeFrequency(org, inWindow)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 120, entries[0].Additions)
		assert.Equal(t, 40, entries[0].Deletions)
		assert.Equal(t, 80, entries[0].Net)
		assert.Equal(t, "membera", entries[0].Username)
		assert.Equal(t, "repoa", entries[0].Repo)
	})

	t.Run("one-sided weeks are excluded", func(t *testing.T) {
		org := orgWithCodeFrequency(
			`[[1464393600, 120, 0]]`,  // additions only
			`[[1464393600, 0, -40]]`,  // deletions only
			`[[1464393600, -5, -40]]`, // negative additions
		)

		entries, err := ReduceCodeFrequency(org, inWindow)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("out-of-window weeks are excluded", func(t *testing.T) {
		org := orgWithCodeFrequency(`[[999, 120, -40]]`)

		entries, err := ReduceCodeFrequency(org, inWindow)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("sorted descending by additions", func(t *testing.T) {
		org := orgWithCodeFrequency(
			`[[1464393600, 10, -1]]`,
			`[[1464393600, 50, -1]]`,
			`[[1464393600, 30, -1]]`,
		)

		entries, err := ReduceCodeFrequency(org, inWindow)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []int{50, 30, 10}, []int{entries[0].Additions, entries[1].Additions, entries[2].Additions})
	})

	t.Run("members without repos contribute nothing", func(t *testing.T) {
		org := &domain.Organization{
			Username: "hackreactor",
			Members:  []domain.Member{{Username: "alice"}},
		}

		entries, err := ReduceCodeFrequency(org, inWindow)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("corrupt series is fatal", func(t *testing.T) {
		org := orgWithCodeFrequency(`[[not json`)

		_, err := ReduceCodeFrequency(org, inWindow)
		assert.Error(t, err)
	})
}

func TestReducePunchCard(t *testing.T) {
	t.Run("always returns 168 buckets in day-major order", func(t *testing.T) {
		buckets, err := ReducePunchCard(&domain.Organization{Username: "empty"})
		require.NoError(t, err)
		require.Len(t, buckets, 168)
		for day := 0; day < 7; day++ {
			for hour := 0; hour < 24; hour++ {
				bucket := buckets[day*24+hour]
				assert.Equal(t, day, bucket.Day)
				assert.Equal(t, hour, bucket.Hour)
				assert.Zero(t, bucket.Commits)
				assert.Empty(t, bucket.Repos)
			}
		}
	})

	t.Run("accumulates commits into the matching bucket", func(t *testing.T) {
		org := &domain.Organization{
			Username: "hackreactor",
			Members: []domain.Member{
				{Username: "alice", Repos: []domain.Repo{
					{Name: "widgets", Stats: domain.RepoStats{PunchCard: `[[2, 14, 25], [0, 0, 0]]`}},
				}},
				{Username: "bob", Repos: []domain.Repo{
					{Name: "gadgets", Stats: domain.RepoStats{PunchCard: `[[2, 14, 5]]`}},
				}},
			},
		}

		buckets, err := ReducePunchCard(org)
		require.NoError(t, err)
		require.Len(t, buckets, 168)

		bucket := buckets[2*24+14]
		assert.Equal(t, 30, bucket.Commits)
		require.Len(t, bucket.Repos, 2)
		assert.Equal(t, domain.PunchCardContribution{User: "alice", Repo: "widgets", Commits: 25}, bucket.Repos[0])
		assert.Equal(t, domain.PunchCardContribution{User: "bob", Repo: "gadgets", Commits: 5}, bucket.Repos[1])

		// Zero-commit cells leave their buckets untouched.
		assert.Zero(t, buckets[0].Commits)
		assert.Empty(t, buckets[0].Repos)
	})

	t.Run("out-of-range cells are dropped", func(t *testing.T) {
		org := &domain.Organization{
			Username: "hackreactor",
			Members: []domain.Member{
				{Username: "alice", Repos: []domain.Repo{
					{Name: "widgets", Stats: domain.RepoStats{PunchCard: `[[7, 0, 3], [0, 24, 3], [-1, 5, 3]]`}},
				}},
			},
		}

		buckets, err := ReducePunchCard(org)
		require.NoError(t, err)
		for _, bucket := range buckets {
			assert.Zero(t, bucket.Commits)
		}
	})

	t.Run("repo without punch card data contributes nothing", func(t *testing.T) {
		org := &domain.Organization{
			Username: "hackreactor",
			Members: []domain.Member{
				{Username: "alice", Repos: []domain.Repo{{Name: "widgets"}}},
			},
		}

		buckets, err := ReducePunchCard(org)
		require.NoError(t, err)
		require.Len(t, buckets, 168)
		for _, bucket := range buckets {
			assert.Zero(t, bucket.Commits)
		}
	})
}

func TestLastCompletedWeek(t *testing.T) {
	loc := time.UTC

	testCases := []struct {
		name     string
		now      time.Time
		boundary time.Time
	}{
		{
			name:     "mid-week points at the previous Saturday",
			now:      time.Date(2016, 6, 1, 15, 30, 0, 0, loc), // Wednesday
			boundary: time.Date(2016, 5, 28, 0, 0, 0, 0, loc),
		},
		{
			name:     "Sunday points at yesterday",
			now:      time.Date(2016, 5, 29, 0, 0, 1, 0, loc),
			boundary: time.Date(2016, 5, 28, 0, 0, 0, 0, loc),
		},
		{
			name:     "Saturday points a full week back",
			now:      time.Date(2016, 5, 28, 23, 59, 0, 0, loc),
			boundary: time.Date(2016, 5, 21, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window := LastCompletedWeek(tc.now, loc)
			assert.True(t, window(tc.boundary.Unix()))
			assert.False(t, window(tc.boundary.AddDate(0, 0, -7).Unix()))
			assert.False(t, window(tc.boundary.AddDate(0, 0, 7).Unix()))
		})
	}
}

func TestExactWeek(t *testing.T) {
	boundary := time.Date(2016, 5, 28, 0, 0, 0, 0, time.UTC)
	window := ExactWeek(boundary)
	assert.True(t, window(boundary.Unix()))
	assert.False(t, window(boundary.Unix()+1))
}
