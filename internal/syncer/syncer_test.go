package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// trackCycleStates wires SaveSyncCycle to record the state at each save.
func trackCycleStates(store *mockStorage) *[]domain.SyncState {
	var states []domain.SyncState
	store.On("SaveSyncCycle", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		cycle := args.Get(1).(*domain.SyncCycle)
		states = append(states, cycle.State)
	})
	return &states
}

func TestSync_CreatesAbsentOrganization(t *testing.T) {
	ctx := context.Background()
	store := new(mockStorage)
	source := new(mockSource)
	states := trackCycleStates(store)

	fetched := &domain.Organization{Username: "hackreactor"}

	store.On("FindOrganization", mock.Anything, "hackreactor").Return(nil, nil)
	source.On("GetOrganization", mock.Anything, "hackreactor").Return(fetched, nil)
	store.On("SaveOrganization", mock.Anything, mock.Anything).Return(nil)

	source.On("ListMembersPage", mock.Anything, "hackreactor", 1, 100).Return([]string{"alice"}, false, nil)
	store.On("FindOrganizationWithMember", mock.Anything, "alice").Return(nil, nil)

	source.On("ListRecentRepos", mock.Anything, "alice", mock.Anything).Return([]string{"widgets"}, nil)
	source.On("GetCodeFrequency", mock.Anything, "alice", "widgets").Return(`[[1464321600,120,-40]]`, nil)
	source.On("GetPunchCard", mock.Anything, "alice", "widgets").Return(`[[2,14,25]]`, nil)

	syncer := New(store, source, 100, 2)
	org, err := syncer.Sync(ctx, "hackreactor")

	require.NoError(t, err)
	require.NotNil(t, org)
	require.Len(t, org.Members, 1)
	assert.Equal(t, "alice", org.Members[0].Username)
	require.Len(t, org.Members[0].Repos, 1)
	assert.Equal(t, "widgets", org.Members[0].Repos[0].Name)
	assert.Equal(t, `[[1464321600,120,-40]]`, org.Members[0].Repos[0].Stats.CodeFrequency)
	assert.Equal(t, `[[2,14,25]]`, org.Members[0].Repos[0].Stats.PunchCard)

	assert.Equal(t, []domain.SyncState{
		domain.SyncStateResolvingOrg,
		domain.SyncStateSyncingMembers,
		domain.SyncStateCollectingStats,
		domain.SyncStateDone,
	}, *states)
}

func TestSync_ExistingOrganizationIsNotRefetched(t *testing.T) {
	ctx := context.Background()
	store := new(mockStorage)
	source := new(mockSource)
	trackCycleStates(store)

	existing := &domain.Organization{
		Username: "hackreactor",
		Members:  []domain.Member{{Username: "alice"}},
	}

	store.On("FindOrganization", mock.Anything, "hackreactor").Return(existing, nil)
	source.On("ListMembersPage", mock.Anything, "hackreactor", 1, 100).Return([]string{"someone"}, false, nil)
	source.On("ListRecentRepos", mock.Anything, "alice", mock.Anything).Return([]string{}, nil)
	store.On("SaveOrganization", mock.Anything, mock.Anything).Return(nil)

	syncer := New(store, source, 100, 2)
	org, err := syncer.Sync(ctx, "hackreactor")

	require.NoError(t, err)
	assert.Equal(t, "hackreactor", org.Username)
	source.AssertNotCalled(t, "GetOrganization", mock.Anything, mock.Anything)
	// Equal fetched and stored counts short-circuit the merge.
	store.AssertNotCalled(t, "FindOrganizationWithMember", mock.Anything, mock.Anything)
}

func TestSync_UpstreamFailureFailsTheCycle(t *testing.T) {
	ctx := context.Background()
	store := new(mockStorage)
	source := new(mockSource)
	states := trackCycleStates(store)

	store.On("FindOrganization", mock.Anything, "ghost").Return(nil, nil)
	source.On("GetOrganization", mock.Anything, "ghost").Return(nil, errors.New("github unreachable"))

	syncer := New(store, source, 100, 2)
	org, err := syncer.Sync(ctx, "ghost")

	assert.Error(t, err)
	assert.Nil(t, org)
	require.NotEmpty(t, *states)
	assert.Equal(t, domain.SyncStateFailed, (*states)[len(*states)-1])
	// Nothing past the failing stage runs.
	source.AssertNotCalled(t, "ListMembersPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SaveOrganization", mock.Anything, mock.Anything)
}

func TestSync_MemberPageErrorAbortsMembership(t *testing.T) {
	ctx := context.Background()
	store := new(mockStorage)
	source := new(mockSource)
	states := trackCycleStates(store)

	existing := &domain.Organization{Username: "hackreactor"}
	store.On("FindOrganization", mock.Anything, "hackreactor").Return(existing, nil)
	source.On("ListMembersPage", mock.Anything, "hackreactor", 1, 100).Return([]string{"alice"}, true, nil)
	source.On("ListMembersPage", mock.Anything, "hackreactor", 2, 100).Return(nil, false, errors.New("page 2 failed"))

	syncer := New(store, source, 100, 2)
	_, err := syncer.Sync(ctx, "hackreactor")

	assert.Error(t, err)
	assert.Equal(t, domain.SyncStateFailed, (*states)[len(*states)-1])
	store.AssertNotCalled(t, "SaveOrganization", mock.Anything, mock.Anything)
}

func TestSync_StatsErrorSurfacesFirstFailure(t *testing.T) {
	ctx := context.Background()
	store := new(mockStorage)
	source := new(mockSource)
	trackCycleStates(store)

	existing := &domain.Organization{
		Username: "hackreactor",
		Members:  []domain.Member{{Username: "alice"}},
	}

	store.On("FindOrganization", mock.Anything, "hackreactor").Return(existing, nil)
	source.On("ListMembersPage", mock.Anything, "hackreactor", 1, 100).Return([]string{"whoever"}, false, nil)
	source.On("ListRecentRepos", mock.Anything, "alice", mock.Anything).Return([]string{"widgets"}, nil)
	source.On("GetCodeFrequency", mock.Anything, "alice", "widgets").Return("", errors.New("stats endpoint down"))

	syncer := New(store, source, 100, 2)
	_, err := syncer.Sync(ctx, "hackreactor")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "stats endpoint down")
	store.AssertNotCalled(t, "SaveOrganization", mock.Anything, mock.Anything)
}
