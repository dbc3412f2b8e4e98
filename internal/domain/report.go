package domain

// CodeDeltaEntry is one row of the weekly code-delta report. Deletions
// is a positive magnitude; Net keeps the sign of the underlying week
// (additions plus negative deletions).
type CodeDeltaEntry struct {
	Username  string `json:"username"`
	Repo      string `json:"repo"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Net       int    `json:"net"`
}

// PunchCardContribution records a single repository's commit count
// within one punch-card bucket.
type PunchCardContribution struct {
	User    string `json:"user"`
	Repo    string `json:"repo"`
	Commits int    `json:"commits"`
}

// PunchCardBucket is one cell of the 7x24 commit-activity grid. The
// full grid always carries 168 buckets in day-major order, including
// buckets with zero commits.
type PunchCardBucket struct {
	Day     int                     `json:"day"`
	Hour    int                     `json:"hour"`
	Commits int                     `json:"commits"`
	Repos   []PunchCardContribution `json:"repos"`
}

// PunchCardBuckets is the fixed size of the punch-card grid.
const PunchCardBuckets = 7 * 24
