package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/devspark/devspark/internal/ideas"
)

// NewMCPServer creates an MCP server exposing the four orchestration
// operations as tools, for agent clients that speak MCP instead of HTTP.
func NewMCPServer(svc *ideas.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"devspark",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("devspark — project-idea and learning-path generator backed by GitHub context."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("suggest_ideas",
			mcp.WithDescription("Generate 5 project ideas for a developer profile using trending GitHub context."),
			mcp.WithString("user_id", mcp.Description("Stable user identifier"), mcp.Required()),
			mcp.WithArray("languages", mcp.Description("Declared programming languages"), mcp.Required()),
			mcp.WithArray("frameworks", mcp.Description("Declared frameworks")),
			mcp.WithString("experience_level", mcp.Description("Beginner, Intermediate, or Advanced"), mcp.Required()),
			mcp.WithString("interests", mcp.Description("Free-text interests")),
		),
		mcpSuggestIdeas(svc),
	)

	s.AddTool(
		mcp.NewTool("explain_repository",
			mcp.WithDescription("Explain a GitHub repository's architecture from its metadata and README."),
			mcp.WithString("owner", mcp.Description("Repository owner")),
			mcp.WithString("repo", mcp.Description("Repository name")),
			mcp.WithString("url", mcp.Description("Full repository URL (alternative to owner/repo)")),
			mcp.WithString("experience_level", mcp.Description("Calibrate the explanation to this level")),
		),
		mcpExplainRepository(svc),
	)

	s.AddTool(
		mcp.NewTool("generate_roadmap",
			mcp.WithDescription("Generate a 3-month learning roadmap for a topic."),
			mcp.WithString("topic", mcp.Description("Topic to learn"), mcp.Required()),
		),
		mcpGenerateRoadmap(svc),
	)

	s.AddTool(
		mcp.NewTool("find_contributions",
			mcp.WithDescription("Find open good-first issues matching the given languages."),
			mcp.WithArray("languages", mcp.Description("Programming languages to match"), mcp.Required()),
		),
		mcpFindContributions(svc),
	)

	return s
}

func mcpSuggestIdeas(svc *ideas.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}
		level, err := req.RequireString("experience_level")
		if err != nil {
			return mcpError("experience_level is required"), nil
		}

		languages := req.GetStringSlice("languages", nil)
		if languages == nil {
			return mcpError("languages is required"), nil
		}
		frameworks := req.GetStringSlice("frameworks", []string{})

		list, err := svc.SuggestIdeas(ctx, ideas.SuggestRequest{
			UserID:          userID,
			Languages:       languages,
			Frameworks:      frameworks,
			ExperienceLevel: level,
			Interests:       req.GetString("interests", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("suggesting ideas failed: %v", err)), nil
		}

		b, err := json.Marshal(list)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal ideas: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpExplainRepository(svc *ideas.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		explanation, err := svc.ExplainRepo(ctx, ideas.ExplainRequest{
			Owner:       req.GetString("owner", ""),
			Repo:        req.GetString("repo", ""),
			URL:         req.GetString("url", ""),
			UserContext: req.GetString("experience_level", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("explaining repository failed: %v", err)), nil
		}
		return mcpText(explanation), nil
	}
}

func mcpGenerateRoadmap(svc *ideas.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, err := req.RequireString("topic")
		if err != nil {
			return mcpError("topic is required"), nil
		}

		roadmap, err := svc.GenerateRoadmap(ctx, topic)
		if err != nil {
			return mcpError(fmt.Sprintf("generating roadmap failed: %v", err)), nil
		}
		return mcpText(roadmap), nil
	}
}

func mcpFindContributions(svc *ideas.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		languages := req.GetStringSlice("languages", nil)
		if languages == nil {
			return mcpError("languages is required"), nil
		}

		issues := svc.FindContributions(ctx, languages)

		b, err := json.Marshal(issues)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal issues: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
