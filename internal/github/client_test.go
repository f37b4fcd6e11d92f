package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-token", srv.URL)
}

func TestTrendingDigest(t *testing.T) {
	var gotQuery, gotAuth string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items":[
			{"name":"tokio","description":"An async runtime"},
			{"name":"ripgrep","description":"Fast grep"}
		]}`))
	})

	digest, err := c.TrendingDigest(context.Background(), "Rust")
	if err != nil {
		t.Fatalf("TrendingDigest: %v", err)
	}

	if gotQuery != "language:Rust" {
		t.Errorf("query = %q, want %q", gotQuery, "language:Rust")
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	want := "tokio: An async runtime | ripgrep: Fast grep"
	if digest != want {
		t.Errorf("digest = %q, want %q", digest, want)
	}
}

func TestTrendingDigestCapsResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// An upstream that ignores per_page.
		var items []string
		for i := 1; i <= 6; i++ {
			items = append(items, fmt.Sprintf(`{"name":"repo%d","description":"d%d"}`, i, i))
		}
		w.Write([]byte(`{"items":[` + strings.Join(items, ",") + `]}`))
	})

	digest, err := c.TrendingDigest(context.Background(), "Go")
	if err != nil {
		t.Fatalf("TrendingDigest: %v", err)
	}

	if got := strings.Count(digest, " | ") + 1; got != 5 {
		t.Errorf("digest has %d entries, want 5: %q", got, digest)
	}
	if strings.Contains(digest, "repo6") {
		t.Errorf("digest includes entry beyond the cap: %q", digest)
	}
}

func TestTrendingDigestFallbackQuery(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"items":[]}`))
	})

	if _, err := c.TrendingDigest(context.Background(), ""); err != nil {
		t.Fatalf("TrendingDigest: %v", err)
	}
	if gotQuery != "stars:>15000" {
		t.Errorf("query = %q, want generic high-star fallback", gotQuery)
	}
}

func TestTrendingDigestUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := c.TrendingDigest(context.Background(), "Go"); err == nil {
		t.Fatal("expected error on upstream 403")
	}
}

func TestSearchIssues(t *testing.T) {
	var gotQuery string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/issues" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"items":[
			{"title":"Fix typo","html_url":"https://github.com/a/b/issues/1",
			 "repository_url":"https://api.github.com/repos/a/b","number":1,
			 "labels":[{"name":"good first issue"},{"name":"docs"}]}
		]}`))
	})

	issues, err := c.SearchIssues(context.Background(), []string{"Go", "Rust"})
	if err != nil {
		t.Fatalf("SearchIssues: %v", err)
	}

	if !strings.Contains(gotQuery, `label:"good first issue"`) {
		t.Errorf("query %q missing label filter", gotQuery)
	}
	if !strings.Contains(gotQuery, "state:open") {
		t.Errorf("query %q missing open-state filter", gotQuery)
	}
	if !strings.Contains(gotQuery, "language:Go") || !strings.Contains(gotQuery, "language:Rust") {
		t.Errorf("query %q missing language qualifiers", gotQuery)
	}

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	labels := issues[0].LabelNames()
	if len(labels) != 2 || labels[0] != "good first issue" {
		t.Errorf("label names = %v", labels)
	}
}

func TestRepoDetails(t *testing.T) {
	readme := "# Hello\n\nThis is the readme."
	encoded := base64.StdEncoding.EncodeToString([]byte(readme))
	// GitHub wraps base64 content with newlines.
	wrapped := encoded[:10] + "\n" + encoded[10:] + "\n"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/golang/go":
			w.Write([]byte(`{"name":"go","full_name":"golang/go","description":"The Go language","stargazers_count":120000,"language":"Go"}`))
		case "/repos/golang/go/readme":
			w.Write([]byte(`{"content":"` + strings.ReplaceAll(wrapped, "\n", `\n`) + `","encoding":"base64"}`))
		default:
			http.NotFound(w, r)
		}
	})

	details, err := c.RepoDetails(context.Background(), "golang", "go")
	if err != nil {
		t.Fatalf("RepoDetails: %v", err)
	}

	if details.Repo.FullName != "golang/go" {
		t.Errorf("full_name = %q", details.Repo.FullName)
	}
	if details.Readme != readme {
		t.Errorf("readme = %q, want decoded %q", details.Readme, readme)
	}
}

func TestRepoDetailsMissingReadme(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/a/b":
			w.Write([]byte(`{"name":"b","full_name":"a/b","description":"x"}`))
		default:
			http.NotFound(w, r)
		}
	})

	details, err := c.RepoDetails(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("RepoDetails should tolerate a missing README: %v", err)
	}
	if details.Readme != "README not found" {
		t.Errorf("readme = %q, want placeholder", details.Readme)
	}
}

func TestRepoDetailsMetadataFailureIsFatal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := c.RepoDetails(context.Background(), "no", "such"); err == nil {
		t.Fatal("expected error when repository metadata fetch fails")
	}
}
