package domain

// CodeFrequency is one parsed week of a repository's code-frequency
// series. GitHub reports deletions as a non-positive number.
type CodeFrequency struct {
	WeekStart int64 `json:"week_start"`
	Additions int   `json:"additions"`
	Deletions int   `json:"deletions"`
}

// PunchCard is one parsed cell of a repository's punch-card series:
// the number of commits made during one hour-of-week. Day 0 is Sunday,
// times follow the time zone of the individual commits.
type PunchCard struct {
	Day     int `json:"day"`
	Hour    int `json:"hour"`
	Commits int `json:"commits"`
}
