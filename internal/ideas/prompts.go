package ideas

import (
	"fmt"
	"strings"
)

// fallbackDigest stands in for the trending digest when the repository
// search is unavailable; idea generation still proceeds.
const fallbackDigest = "Microservices, AI Agents, and Scalable Backend Architectures"

func suggestPrompt(req SuggestRequest, digest string) string {
	var sb strings.Builder

	sb.WriteString("User Profile:\n")
	fmt.Fprintf(&sb, "- Languages: %s\n", strings.Join(req.Languages, ", "))
	fmt.Fprintf(&sb, "- Frameworks: %s\n", strings.Join(req.Frameworks, ", "))
	fmt.Fprintf(&sb, "- Experience Level: %s\n", req.ExperienceLevel)
	if req.Interests != "" {
		fmt.Fprintf(&sb, "- Interests: %s\n", req.Interests)
	}

	fmt.Fprintf(&sb, "\nGitHub Trending Context: %s\n", digest)

	sb.WriteString(`
Task: Suggest 5 project ideas that are: challenging but achievable, portfolio-worthy, and incorporate modern practices.
For each: title, description, tech_stack, difficulty, and estimated_time.
Return ONLY a valid JSON array of objects with exactly those fields. No markdown backticks or preamble.
`)
	return sb.String()
}

func explainPrompt(repoName, description, readme, userContext string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Explain this code architecture: %s.", repoName)
	if description != "" {
		fmt.Fprintf(&sb, " Description: %s.", description)
	}
	fmt.Fprintf(&sb, " README: %s\n", readme)

	if userContext != "" {
		fmt.Fprintf(&sb, "Calibrate the explanation for a %s developer.\n", userContext)
	}
	sb.WriteString("Focus on: what's happening, why these patterns, and how a developer can learn from this.")
	return sb.String()
}

func roadmapPrompt(topic string) string {
	return fmt.Sprintf(`Create a 3-month roadmap for: %s.
Include Month 1, Month 2, and Month 3 with specific topics and projects to build each month.`, topic)
}
