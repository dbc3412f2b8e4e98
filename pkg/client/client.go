package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mkurosawa/github-org-pulse/internal/domain"
)

// Client is the API client for github-org-pulse
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetOrganization retrieves a stored organization document
func (c *Client) GetOrganization(org string) (*domain.Organization, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s", org)

	var response struct {
		Data *domain.Organization `json:"data"`
	}
	if err := c.do(http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// SyncOrganization runs one sync cycle for an organization. Sync
// cycles can take a while, so no client-side timeout applies beyond
// the transport's.
func (c *Client) SyncOrganization(org string) (*domain.Organization, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/sync", org)

	var response struct {
		Data *domain.Organization `json:"data"`
	}
	if err := c.do(http.MethodPost, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetCodeFrequency retrieves the weekly code-delta report. A zero week
// leaves the window to the server's default.
func (c *Client) GetCodeFrequency(org string, week time.Time) ([]domain.CodeDeltaEntry, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/stats/code_frequency", org)
	params := url.Values{}
	if !week.IsZero() {
		params.Set("week", week.Format("2006-01-02"))
	}

	var response struct {
		Data []domain.CodeDeltaEntry `json:"data"`
	}
	if err := c.do(http.MethodGet, path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetPunchCard retrieves the 168-bucket commit-activity grid
func (c *Client) GetPunchCard(org string) ([]domain.PunchCardBucket, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/stats/punch_card", org)

	var response struct {
		Data []domain.PunchCardBucket `json:"data"`
	}
	if err := c.do(http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetSyncCycles retrieves recent sync cycle records
func (c *Client) GetSyncCycles(org string, limit int) ([]*domain.SyncCycle, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/sync/cycles", org)
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var response struct {
		Data []*domain.SyncCycle `json:"data"`
	}
	if err := c.do(http.MethodGet, path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.do(http.MethodGet, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) do(method, path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(method, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
