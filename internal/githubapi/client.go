// Package githubapi is a minimal GitHub REST API client covering what the
// analyzer needs: repository metadata, the latest commit SHA, and the raw
// README. Authentication is optional; a token raises the rate limit and
// unlocks private repositories.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Sentinel errors mapped from GitHub API status codes.
var (
	ErrNotFound       = errors.New("repository not found")
	ErrRateLimited    = errors.New("github API rate limit exceeded")
	ErrBadCredentials = errors.New("invalid github token")
)

// repoURLPattern matches github.com repository URLs with or without scheme,
// stopping the repo name at /, ?, or #.
var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// ParseRepoURL extracts owner and repo from a GitHub URL. A trailing ".git"
// is stripped from the repo name.
func ParseRepoURL(url string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("invalid GitHub URL: %q", url)
	}
	repo = strings.TrimSuffix(m[2], ".git")
	return m[1], repo, nil
}

// Repository is the subset of GitHub repository metadata the analyzer uses.
type Repository struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	DefaultBranch   string   `json:"default_branch"`
	HTMLURL         string   `json:"html_url"`
}

// Client calls the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// New creates a Client. baseURL defaults to the public API when empty; token
// may be empty for unauthenticated access.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

func (c *Client) get(ctx context.Context, path string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "AI-Demo-Builder/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}

// statusError maps GitHub API error statuses to sentinel errors.
func statusError(status int, path string) error {
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrRateLimited, path)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrBadCredentials, path)
	default:
		return fmt.Errorf("github API %s returned %d", path, status)
	}
}

// GetRepository fetches repository metadata.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	path := fmt.Sprintf("/repos/%s/%s", owner, repo)
	resp, err := c.get(ctx, path, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, path)
	}

	var r Repository
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode repository %s/%s: %w", owner, repo, err)
	}
	return &r, nil
}

// LatestCommitSHA returns the short (7-character) SHA of the newest commit on
// the default branch, or "unknown" when the commits call fails. A wrong SHA
// only weakens cache keying, so failures are logged, not surfaced.
func (c *Client) LatestCommitSHA(ctx context.Context, owner, repo string) string {
	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=1", owner, repo)
	resp, err := c.get(ctx, path, "")
	if err != nil {
		log.Warn().Err(err).Str("repo", owner+"/"+repo).Msg("Commit lookup failed — cache key falls back to 'unknown'")
		return "unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("repo", owner+"/"+repo).Msg("Commit lookup returned non-200")
		return "unknown"
	}

	var commits []struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil || len(commits) == 0 || len(commits[0].SHA) < 7 {
		log.Warn().Err(err).Str("repo", owner+"/"+repo).Msg("Commit response unusable")
		return "unknown"
	}
	return commits[0].SHA[:7]
}

// GetReadme fetches the raw README content. A missing README is not an
// error; it returns an empty string so analysis can continue.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/readme", owner, repo)
	resp, err := c.get(ctx, path, "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Debug().Str("repo", owner+"/"+repo).Msg("Repository has no README")
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read README %s/%s: %w", owner, repo, err)
	}
	return string(body), nil
}
