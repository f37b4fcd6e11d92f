// Package ideas implements the orchestration layer: it validates user
// profiles, gathers GitHub context, drives the generation API, and shapes
// the results for the HTTP and MCP surfaces.
package ideas

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Experience levels accepted in a user profile.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// DefaultDifficulty fills in when the generator omits or mangles an idea's
// difficulty.
const DefaultDifficulty = "Medium"

// SuggestRequest is the profile payload for idea suggestion. UserID is the
// stable upsert key; languages and frameworks keep their declared order.
type SuggestRequest struct {
	UserID          string   `json:"user_id"`
	Languages       []string `json:"languages"`
	Frameworks      []string `json:"frameworks"`
	ExperienceLevel string   `json:"experience_level"`
	Interests       string   `json:"interests,omitempty"`
}

// Validate checks the required fields. Languages and frameworks must be
// present (a declared-empty frameworks list is still present — only a nil
// field is missing).
func (r SuggestRequest) Validate() error {
	switch {
	case r.UserID == "":
		return &ValidationError{Field: "user_id"}
	case r.Languages == nil:
		return &ValidationError{Field: "languages"}
	case r.Frameworks == nil:
		return &ValidationError{Field: "frameworks"}
	case r.ExperienceLevel == "":
		return &ValidationError{Field: "experience_level"}
	}
	return nil
}

// PrimaryLanguage returns the first declared language, or "" when none.
func (r SuggestRequest) PrimaryLanguage() string {
	if len(r.Languages) == 0 {
		return ""
	}
	return r.Languages[0]
}

// ExplainRequest identifies a repository either by owner/repo pair or by a
// full URL. UserContext optionally states the reader's experience level.
type ExplainRequest struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	URL         string `json:"url,omitempty"`
	UserContext string `json:"user_context,omitempty"`
}

// ProjectIdea is one generated idea. TechStack normalizes the generator's
// inconsistent shapes to a flat ordered list.
type ProjectIdea struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	TechStack     TechStack `json:"tech_stack"`
	Difficulty    string    `json:"difficulty"`
	EstimatedTime string    `json:"estimated_time"`
}

// ContributionIssue is a read-only projection of an upstream issue-search
// result.
type ContributionIssue struct {
	Title         string   `json:"title"`
	HTMLURL       string   `json:"html_url"`
	RepositoryURL string   `json:"repository_url"`
	Number        int      `json:"number"`
	Labels        []string `json:"labels"`
}

// ValidationError reports a missing or malformed required input field.
// Handlers surface it as HTTP 400.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ParseError reports generator output that was expected to be JSON but
// wasn't. Handlers surface it as a generation failure; it is never retried.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("generation output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TechStack is a flat ordered list of technology names. Generators emit it
// as a plain string, a string array, or a mapping of groups to arrays; all
// three unmarshal to the flat form, so normalization is idempotent.
type TechStack []string

// UnmarshalJSON accepts string, []string, and map[string]strings-or-string
// shapes.
func (t *TechStack) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*t = asList
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*t = splitTechList(asString)
		return nil
	}

	var asGroups map[string]json.RawMessage
	if err := json.Unmarshal(data, &asGroups); err == nil {
		*t = flattenGroups(asGroups)
		return nil
	}

	return fmt.Errorf("tech_stack: unsupported shape %s", string(data))
}

func splitTechList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flattenGroups flattens a grouped mapping in sorted-key order so the result
// is deterministic. Group values may themselves be a string or a list.
func flattenGroups(groups map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		var list []string
		if err := json.Unmarshal(groups[k], &list); err == nil {
			out = append(out, list...)
			continue
		}
		var single string
		if err := json.Unmarshal(groups[k], &single); err == nil {
			out = append(out, splitTechList(single)...)
		}
	}
	return out
}

// NormalizeDifficulty maps generator output onto the accepted set
// {Beginner, Intermediate, Medium, Advanced}; anything else (including an
// empty value) becomes the Medium default.
func NormalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "beginner":
		return LevelBeginner
	case "intermediate":
		return LevelIntermediate
	case "advanced":
		return LevelAdvanced
	case "medium":
		return DefaultDifficulty
	default:
		return DefaultDifficulty
	}
}
