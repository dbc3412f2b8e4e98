package domain

import "time"

// SyncState is the stage a sync cycle is currently in.
type SyncState string

const (
	SyncStateResolvingOrg    SyncState = "resolving_org"
	SyncStateSyncingMembers  SyncState = "syncing_members"
	SyncStateCollectingStats SyncState = "collecting_stats"
	SyncStateDone            SyncState = "done"
	SyncStateFailed          SyncState = "failed"
)

// SyncCycle records one invocation of the sync pipeline. A cycle moves
// through the states in order and ends in done or failed; a failed
// cycle is not resumed, the next invocation starts a fresh cycle.
type SyncCycle struct {
	ID         string     `json:"id"`
	Org        string     `json:"org"`
	State      SyncState  `json:"state"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
