package listsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/artistban/internal/domain/model"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ListFetcher = (*GitHubFetcher)(nil)

// GitHubFetcher reads the blocklist file through the GitHub contents API. It is
// an alternative to HTTPFetcher for private forks or pinned refs.
type GitHubFetcher struct {
	gh    *gh.Client
	owner string
	repo  string
	path  string
	ref   string
}

// NewGitHubFetcher creates a fetcher using the same cache and rate-limit
// transport stack as HTTPFetcher. token may be empty for public repositories.
func NewGitHubFetcher(repoFullName, path, ref, token string, timeout time.Duration) (*GitHubFetcher, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = timeout

	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHubFetcher{gh: client, owner: owner, repo: repo, path: path, ref: ref}, nil
}

// NewGitHubFetcherWithHTTPClient creates a GitHubFetcher with a custom http.Client
// and base URL. This constructor is intended for testing.
func NewGitHubFetcherWithHTTPClient(httpClient *http.Client, baseURL, repoFullName, path, ref string) (*GitHubFetcher, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = u

	return &GitHubFetcher{gh: client, owner: owner, repo: repo, path: path, ref: ref}, nil
}

// FetchList reads the configured file at the configured ref and parses it.
func (f *GitHubFetcher) FetchList(ctx context.Context) ([]model.ListRecord, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: f.ref}
	file, _, _, err := f.gh.Repositories.GetContents(ctx, f.owner, f.repo, f.path, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: get contents %s/%s/%s: %w", driven.ErrTransport, f.owner, f.repo, f.path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s is a directory", driven.ErrTransport, f.owner, f.repo, f.path)
	}

	body, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("%w: decode contents: %w", driven.ErrTransport, err)
	}

	records, err := Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrTransport, err)
	}
	return records, nil
}

// splitRepo splits "owner/repo" into its two parts.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
