// Package hostclient is the seam for the "remote hosting API client"
// external collaborator (spec.md's Discovery Engine talks to a code
// host's search API, but which host and how authentication works is
// explicitly out of scope). SearchClient is the narrow interface the
// Discovery Engine depends on; Default is a thin net/http-based
// implementation good enough to exercise the rest of the pipeline.
package hostclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RepoItem is one search result from the remote host, trimmed to the
// fields the Discovery Engine's Tier-1 scorer needs.
type RepoItem struct {
	RepoID      string    `json:"repo_id"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	LastPush    time.Time `json:"last_push"`
	License     string    `json:"license"`
	Description string    `json:"description"`
	Topics      []string  `json:"topics"`
}

// SearchClient searches a remote code host for repositories matching
// query, returning one page of results. Implementations are
// responsible for their own auth and rate-limit headers; the Discovery
// Engine only ever sees RepoItem and a transport error.
type SearchClient interface {
	Search(ctx context.Context, query string, page int) ([]RepoItem, error)
}

// RateLimitError is returned by a SearchClient when the host signals a
// rate limit (HTTP 403/429-class response). The Discovery Engine's
// backoff logic matches on this type rather than inspecting status
// codes itself.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Default is a minimal net/http SearchClient against a generic
// GitHub-style "search repositories" JSON endpoint. It exists so the
// pipeline has something real to exercise end to end; production
// deployments are expected to supply their own SearchClient bound to
// whichever host and credentials they use.
type Default struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewDefault returns a Default client with sane timeouts.
func NewDefault(baseURL string) *Default {
	return &Default{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithToken sets the bearer token sent with every search request, the
// config loader's resolved remote-API token (spec.md §4.16).
func (d *Default) WithToken(token string) *Default {
	d.Token = token
	return d
}

type searchResponse struct {
	Items []RepoItem `json:"items"`
}

func (d *Default) Search(ctx context.Context, query string, page int) ([]RepoItem, error) {
	url := fmt.Sprintf("%s/search/repositories?q=%s&page=%d", d.BaseURL, query, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if d.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.Token)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 30 * time.Second
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return out.Items, nil
}
