package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devspark/devspark/internal/config"
	"github.com/devspark/devspark/internal/ideas"
)

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// --- suggest ---

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Generate project ideas from your skill profile",
	Long: `Generate project ideas from your skill profile.

Examples:
  devspark suggest --user me --languages go,rust --level Intermediate
  devspark suggest --user me --languages python --frameworks django --interests "web scraping"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		languagesStr, _ := cmd.Flags().GetString("languages")
		frameworksStr, _ := cmd.Flags().GetString("frameworks")
		level, _ := cmd.Flags().GetString("level")
		interests, _ := cmd.Flags().GetString("interests")

		languages := splitCSV(languagesStr)
		if len(languages) == 0 {
			return fmt.Errorf("--languages is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{
			"user_id":          user,
			"languages":        languages,
			"frameworks":       splitCSV(frameworksStr),
			"experience_level": level,
			"interests":        interests,
		}

		resp, err := client.post(cmd.Context(), "/api/github/suggest", req)
		if err != nil {
			return err
		}

		var result struct {
			Ideas []ideas.ProjectIdea `json:"ideas"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		for i, idea := range result.Ideas {
			printHeading("%d. %s", i+1, idea.Title)
			fmt.Printf("   %s\n", idea.Description)
			if len(idea.TechStack) > 0 {
				fmt.Printf("   Stack: %s\n", strings.Join(idea.TechStack, ", "))
			}
			fmt.Printf("   Difficulty: %s", idea.Difficulty)
			if idea.EstimatedTime != "" {
				fmt.Printf("  |  Estimated time: %s", idea.EstimatedTime)
			}
			fmt.Println()
			fmt.Println()
		}
		printSuccess("%d ideas generated", len(result.Ideas))
		return nil
	},
}

func init() {
	suggestCmd.Flags().String("user", "cli", "user identifier for saved profiles and ideas")
	suggestCmd.Flags().String("languages", "", "comma-separated programming languages (required)")
	suggestCmd.Flags().String("frameworks", "", "comma-separated frameworks")
	suggestCmd.Flags().String("level", "Intermediate", "experience level: Beginner, Intermediate, or Advanced")
	suggestCmd.Flags().String("interests", "", "free-text interests")
}

// --- explain ---

var explainCmd = &cobra.Command{
	Use:   "explain <owner/repo | url>",
	Short: "Explain a GitHub repository's architecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")

		req := map[string]any{"user_context": level}
		if strings.Contains(args[0], "://") || strings.Count(args[0], "/") > 1 {
			req["url"] = args[0]
		} else {
			parts := strings.SplitN(args[0], "/", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return fmt.Errorf("expected owner/repo or a repository URL, got %q", args[0])
			}
			req["owner"] = parts[0]
			req["repo"] = parts[1]
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/github/explain", req)
		if err != nil {
			return err
		}

		var result struct {
			Explanation string `json:"explanation"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Explanation)
		return nil
	},
}

func init() {
	explainCmd.Flags().String("level", "", "calibrate the explanation to this experience level")
}

// --- roadmap ---

var roadmapCmd = &cobra.Command{
	Use:   "roadmap <topic>",
	Short: "Generate a 3-month learning roadmap for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/github/roadmap", map[string]any{"topic": topic})
		if err != nil {
			return err
		}

		var result struct {
			Roadmap string `json:"roadmap"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Roadmap)
		return nil
	},
}

// --- contribute ---

var contributeCmd = &cobra.Command{
	Use:   "contribute",
	Short: "Find open good-first issues for your languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		languagesStr, _ := cmd.Flags().GetString("languages")
		languages := splitCSV(languagesStr)
		if len(languages) == 0 {
			return fmt.Errorf("--languages is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/github/contribute", map[string]any{"languages": languages})
		if err != nil {
			return err
		}

		var result struct {
			Issues []ideas.ContributionIssue `json:"issues"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Issues) == 0 {
			printWarning("No matching issues found right now")
			return nil
		}
		for _, issue := range result.Issues {
			printHeading("#%d %s", issue.Number, issue.Title)
			fmt.Printf("   %s\n", issue.HTMLURL)
			if len(issue.Labels) > 0 {
				fmt.Printf("   Labels: %s\n", strings.Join(issue.Labels, ", "))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	contributeCmd.Flags().String("languages", "", "comma-separated programming languages (required)")
}

// --- ideas ---

var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "List previously generated ideas for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/api/github/ideas?user_id=%s&limit=%d", user, limit))
		if err != nil {
			return err
		}

		var result struct {
			Ideas []ideas.ProjectIdea `json:"ideas"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Ideas) == 0 {
			printWarning("No saved ideas for user %q", user)
			return nil
		}
		for i, idea := range result.Ideas {
			printHeading("%d. %s", i+1, idea.Title)
			fmt.Printf("   %s\n", idea.Description)
			fmt.Printf("   Difficulty: %s\n\n", idea.Difficulty)
		}
		return nil
	},
}

func init() {
	ideasCmd.Flags().String("user", "cli", "user identifier")
	ideasCmd.Flags().Int("limit", 20, "maximum number of ideas to list")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
