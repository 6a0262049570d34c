package githubapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		owner     string
		repo      string
		expectErr bool
	}{
		{"https", "https://github.com/octocat/hello-world", "octocat", "hello-world", false},
		{"no scheme", "github.com/octocat/hello-world", "octocat", "hello-world", false},
		{"trailing git", "https://github.com/octocat/hello-world.git", "octocat", "hello-world", false},
		{"query string", "https://github.com/octocat/hello-world?tab=readme", "octocat", "hello-world", false},
		{"fragment", "https://github.com/octocat/hello-world#install", "octocat", "hello-world", false},
		{"deep path", "https://github.com/octocat/hello-world/tree/main", "octocat", "hello-world", false},
		{"not github", "https://gitlab.com/octocat/hello-world", "", "", true},
		{"empty", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.owner || repo != tt.repo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.owner, tt.repo)
			}
		})
	}
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, "test-token"), srv
}

func TestGetRepository(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello-world" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"name":"hello-world","full_name":"octocat/hello-world","language":"Go","stargazers_count":1500,"topics":["cli","tool"]}`))
	}))
	defer srv.Close()

	repo, err := c.GetRepository(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Language != "Go" || repo.StargazersCount != 1500 {
		t.Errorf("unexpected repo: %+v", repo)
	}
}

func TestGetRepository_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrRateLimited},
		{http.StatusUnauthorized, ErrBadCredentials},
	}
	for _, tt := range tests {
		c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := c.GetRepository(context.Background(), "octocat", "hello-world")
		srv.Close()
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestLatestCommitSHA(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sha":"a1b2c3d4e5f6789"}]`))
	}))
	defer srv.Close()

	if sha := c.LatestCommitSHA(context.Background(), "octocat", "hello-world"); sha != "a1b2c3d" {
		t.Errorf("got %q, want a1b2c3d", sha)
	}
}

func TestLatestCommitSHA_FailureFallsBack(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if sha := c.LatestCommitSHA(context.Background(), "octocat", "hello-world"); sha != "unknown" {
		t.Errorf("got %q, want unknown", sha)
	}
}

func TestGetReadme(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github.raw+json" {
			t.Errorf("unexpected accept header %q", got)
		}
		w.Write([]byte("# Hello World\n\nA sample project."))
	}))
	defer srv.Close()

	readme, err := c.GetReadme(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readme == "" {
		t.Error("expected README content")
	}
}

func TestGetReadme_MissingIsEmpty(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	readme, err := c.GetReadme(context.Background(), "octocat", "no-readme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readme != "" {
		t.Errorf("expected empty README, got %q", readme)
	}
}
