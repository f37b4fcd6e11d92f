package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 15 * time.Second

	// maxSearchResults bounds every search to the top results; the prompt
	// digest and the contribution list both cap at 5 entries.
	maxSearchResults = 5
)

// readmePlaceholder is returned when a repository has no README.
const readmePlaceholder = "README not found"

// Client issues read-only queries against the GitHub REST API: repository
// search, issue search, and repository/README fetch.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a GitHub client. The token is optional; unauthenticated
// requests work within GitHub's anonymous rate limits.
func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Repo is the subset of repository metadata the prompts need.
type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Language    string `json:"language"`
	HTMLURL     string `json:"html_url"`
}

// Issue is one issue from the issue-search endpoint. Labels come back as
// objects; labelNames flattens them for callers.
type Issue struct {
	Title         string  `json:"title"`
	HTMLURL       string  `json:"html_url"`
	RepositoryURL string  `json:"repository_url"`
	Number        int     `json:"number"`
	Labels        []Label `json:"labels"`
}

// Label is an issue label; only the name is used.
type Label struct {
	Name string `json:"name"`
}

// LabelNames returns the flat list of label names on the issue.
func (i Issue) LabelNames() []string {
	names := make([]string, len(i.Labels))
	for j, l := range i.Labels {
		names[j] = l.Name
	}
	return names
}

// RepoDetails bundles repository metadata with its decoded README text.
type RepoDetails struct {
	Repo   Repo
	Readme string
}

type searchReposResponse struct {
	Items []Repo `json:"items"`
}

type searchIssuesResponse struct {
	Items []Issue `json:"items"`
}

type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// TrendingDigest returns a short textual digest of the top starred
// repositories for the given language ("name: description | ..."). With no
// language the query falls back to a generic high-star search.
func (c *Client) TrendingDigest(ctx context.Context, language string) (string, error) {
	query := "stars:>15000"
	if language != "" {
		query = "language:" + language
	}

	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		c.baseURL, url.QueryEscape(query), maxSearchResults)

	var result searchReposResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return "", fmt.Errorf("searching repositories: %w", err)
	}

	items := result.Items
	if len(items) > maxSearchResults {
		items = items[:maxSearchResults]
	}

	pairs := make([]string, 0, len(items))
	for _, repo := range items {
		pairs = append(pairs, fmt.Sprintf("%s: %s", repo.Name, repo.Description))
	}
	return strings.Join(pairs, " | "), nil
}

// SearchIssues returns up to 5 open good-first-issue results matching any of
// the given language qualifiers.
func (c *Client) SearchIssues(ctx context.Context, languages []string) ([]Issue, error) {
	parts := []string{`label:"good first issue"`, "state:open"}
	for _, lang := range languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			parts = append(parts, "language:"+lang)
		}
	}
	query := strings.Join(parts, " ")

	u := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d",
		c.baseURL, url.QueryEscape(query), maxSearchResults)

	var result searchIssuesResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}

	items := result.Items
	if len(items) > maxSearchResults {
		items = items[:maxSearchResults]
	}
	return items, nil
}

// RepoDetails fetches repository metadata and the decoded README text,
// issuing both requests concurrently. A missing README yields a placeholder
// string rather than an error; a metadata failure is fatal.
func (c *Client) RepoDetails(ctx context.Context, owner, repo string) (RepoDetails, error) {
	var details RepoDetails

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
		if err := c.getJSON(gctx, u, &details.Repo); err != nil {
			return fmt.Errorf("fetching repository %s/%s: %w", owner, repo, err)
		}
		return nil
	})

	g.Go(func() error {
		readme, err := c.fetchReadme(gctx, owner, repo)
		if err != nil {
			// README failures are tolerated; the explanation prompt still works.
			details.Readme = readmePlaceholder
			return nil
		}
		details.Readme = readme
		return nil
	})

	if err := g.Wait(); err != nil {
		return RepoDetails{}, err
	}
	return details, nil
}

func (c *Client) fetchReadme(ctx context.Context, owner, repo string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var result readmeResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return "", err
	}

	// The contents API returns base64 with embedded newlines.
	raw := strings.ReplaceAll(result.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decoding README content: %w", err)
	}
	return string(decoded), nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
