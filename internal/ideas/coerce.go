package ideas

import (
	"encoding/json"
	"strings"
)

// maxIdeas bounds every suggestion response; the prompt asks for exactly 5,
// but an over-producing generator must not push extras to the caller or the
// store.
const maxIdeas = 5

// StripFences removes a leading and trailing markdown code fence from
// generator output. A language tag on the opening fence ("```json") is
// dropped with the fence line. Text without fences passes through trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			// Opening fence with no newline — nothing after it but the tag.
			s = strings.TrimPrefix(s, "```")
			s = strings.TrimPrefix(s, "json")
		}
	}

	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}

	return strings.TrimSpace(s)
}

// ParseIdeas coerces raw generator output into idea structs: fences are
// stripped, the remainder is parsed as a JSON array, the list is capped at
// maxIdeas, and each idea's difficulty is normalized (Medium filled in when
// omitted). A *ParseError is returned when the output is not the expected
// JSON shape.
func ParseIdeas(raw string) ([]ProjectIdea, error) {
	clean := StripFences(raw)

	var list []ProjectIdea
	if err := json.Unmarshal([]byte(clean), &list); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	if len(list) > maxIdeas {
		list = list[:maxIdeas]
	}

	for i := range list {
		list[i].Difficulty = NormalizeDifficulty(list[i].Difficulty)
	}
	return list, nil
}
