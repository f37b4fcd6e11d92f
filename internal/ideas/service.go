package ideas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devspark/devspark/internal/github"
	"github.com/devspark/devspark/internal/storage"
)

// Searcher is the read-only GitHub surface the service needs.
// Implemented by github.Client.
type Searcher interface {
	TrendingDigest(ctx context.Context, language string) (string, error)
	RepoDetails(ctx context.Context, owner, repo string) (github.RepoDetails, error)
	SearchIssues(ctx context.Context, languages []string) ([]github.Issue, error)
}

// TextGenerator produces text from a fully-formed prompt.
// Implemented by gemini.Client.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SkillStore persists user profiles and generated ideas.
// Implemented by storage.Store.
type SkillStore interface {
	UpsertUserSkills(u storage.UserSkills) error
	SaveProjectIdea(rec storage.ProjectIdeaRecord) error
	ListProjectIdeas(userID string, limit int) ([]storage.ProjectIdeaRecord, error)
}

// Service sequences calls to the search, generation, and persistence
// clients and shapes their outputs. It is stateless; all collaborators are
// injected at construction.
type Service struct {
	search Searcher
	gen    TextGenerator
	store  SkillStore
}

// NewService creates the orchestration service.
func NewService(search Searcher, gen TextGenerator, store SkillStore) *Service {
	return &Service{search: search, gen: gen, store: store}
}

// SuggestIdeas validates the profile, persists it, gathers trending context,
// and asks the generator for exactly 5 project ideas.
//
// The profile upsert and per-idea persistence are non-fatal: storage
// failures are logged and the generated ideas are still returned. The
// trending digest degrades to a fixed fallback on search failure. A
// generator response that is not valid JSON fails with *ParseError.
func (s *Service) SuggestIdeas(ctx context.Context, req SuggestRequest) ([]ProjectIdea, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.saveSkills(req)

	digest, err := s.search.TrendingDigest(ctx, req.PrimaryLanguage())
	if err != nil || digest == "" {
		if err != nil {
			slog.Warn("trending search failed, using fallback digest", "error", err)
		}
		digest = fallbackDigest
	}

	raw, err := s.gen.Generate(ctx, suggestPrompt(req, digest))
	if err != nil {
		return nil, fmt.Errorf("generating ideas: %w", err)
	}

	list, err := ParseIdeas(raw)
	if err != nil {
		return nil, err
	}

	s.saveIdeas(req.UserID, list)
	return list, nil
}

func (s *Service) saveSkills(req SuggestRequest) {
	languages, err := json.Marshal(req.Languages)
	if err != nil {
		slog.Error("marshalling languages", "error", err)
		return
	}
	frameworks, err := json.Marshal(req.Frameworks)
	if err != nil {
		slog.Error("marshalling frameworks", "error", err)
		return
	}

	rec := storage.UserSkills{
		UserID:          req.UserID,
		Languages:       string(languages),
		Frameworks:      string(frameworks),
		ExperienceLevel: req.ExperienceLevel,
		Interests:       req.Interests,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.store.UpsertUserSkills(rec); err != nil {
		slog.Error("saving user skills", "user_id", req.UserID, "error", err)
	}
}

func (s *Service) saveIdeas(userID string, list []ProjectIdea) {
	for _, idea := range list {
		blob, err := json.Marshal(idea)
		if err != nil {
			slog.Error("marshalling idea", "title", idea.Title, "error", err)
			continue
		}
		rec := storage.ProjectIdeaRecord{
			ID:          uuid.New().String(),
			UserID:      userID,
			Idea:        string(blob),
			Difficulty:  idea.Difficulty,
			AIGenerated: true,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.store.SaveProjectIdea(rec); err != nil {
			slog.Error("saving project idea", "user_id", userID, "title", idea.Title, "error", err)
		}
	}
}

// ExplainRepo fetches repository metadata and README and asks the generator
// for an architecture explanation. The response is returned verbatim; this
// endpoint's output is free text, not JSON.
func (s *Service) ExplainRepo(ctx context.Context, req ExplainRequest) (string, error) {
	owner, repo := req.Owner, req.Repo
	if owner == "" || repo == "" {
		var err error
		owner, repo, err = ParseRepoURL(req.URL)
		if err != nil {
			return "", &ValidationError{Field: "owner/repo"}
		}
	}

	details, err := s.search.RepoDetails(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("fetching repository details: %w", err)
	}

	name := details.Repo.FullName
	if name == "" {
		name = details.Repo.Name
	}

	text, err := s.gen.Generate(ctx, explainPrompt(name, details.Repo.Description, details.Readme, req.UserContext))
	if err != nil {
		return "", fmt.Errorf("generating explanation: %w", err)
	}
	return text, nil
}

// GenerateRoadmap builds a fixed 3-month-structure prompt for the topic and
// returns the raw generated text.
func (s *Service) GenerateRoadmap(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", &ValidationError{Field: "topic"}
	}

	text, err := s.gen.Generate(ctx, roadmapPrompt(topic))
	if err != nil {
		return "", fmt.Errorf("generating roadmap: %w", err)
	}
	return text, nil
}

// FindContributions searches open good-first issues for the given languages.
// Upstream failure degrades to an empty list; this operation never returns
// an error for provider problems.
func (s *Service) FindContributions(ctx context.Context, languages []string) []ContributionIssue {
	found, err := s.search.SearchIssues(ctx, languages)
	if err != nil {
		slog.Warn("issue search failed, returning empty contribution list", "error", err)
		return []ContributionIssue{}
	}

	issues := make([]ContributionIssue, len(found))
	for i, it := range found {
		issues[i] = ContributionIssue{
			Title:         it.Title,
			HTMLURL:       it.HTMLURL,
			RepositoryURL: it.RepositoryURL,
			Number:        it.Number,
			Labels:        it.LabelNames(),
		}
	}
	return issues
}

// ListIdeas returns previously persisted ideas for a user, newest first.
func (s *Service) ListIdeas(userID string, limit int) ([]ProjectIdea, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id"}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := s.store.ListProjectIdeas(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ideas: %w", err)
	}

	list := make([]ProjectIdea, 0, len(records))
	for _, rec := range records {
		var idea ProjectIdea
		if err := json.Unmarshal([]byte(rec.Idea), &idea); err != nil {
			slog.Warn("skipping malformed stored idea", "id", rec.ID, "error", err)
			continue
		}
		list = append(list, idea)
	}
	return list, nil
}

// ParseRepoURL extracts owner and repository from a GitHub URL such as
// https://github.com/owner/repo (extra path segments and .git are ignored).
func ParseRepoURL(raw string) (owner, repo string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("empty repository URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parsing repository URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("URL %q does not identify owner/repo", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
