package domain

import "time"

// Organization is the top-level synced aggregate, keyed by username.
// It is created once when first requested and mutated in place on
// every sync; it is never deleted.
type Organization struct {
	Username  string    `json:"username"`
	Profile   Profile   `json:"profile"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the subset of the GitHub organization profile that the
// reports need.
type Profile struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Avatar      string `json:"avatar"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	PublicRepos int    `json:"public_repos"`
	PublicGists int    `json:"public_gists"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Member is a contributor tracked under an organization.
// Username is unique within the organization's member list.
type Member struct {
	Username string `json:"username"`
	Repos    []Repo `json:"repos"`
}

// Repo is a single repository tracked for a member, carrying the raw
// serialized activity stats fetched from GitHub.
type Repo struct {
	Name  string    `json:"name"`
	Stats RepoStats `json:"stats"`
}

// RepoStats holds opaque serialized time series as returned by the
// GitHub stats endpoints. An empty string means the series is absent.
type RepoStats struct {
	CodeFrequency string `json:"code_frequency"`
	PunchCard     string `json:"punch_card"`
}

// HasMember reports whether the organization's member list contains
// the given username.
func (o *Organization) HasMember(username string) bool {
	for _, m := range o.Members {
		if m.Username == username {
			return true
		}
	}
	return false
}
