package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/summary"
	"github.com/medbridge/medbridge/internal/types"
)

type Server struct {
	pipeline   *search.Pipeline
	summarizer *summary.Summarizer
	logger     *log.Logger
}

func New(pipeline *search.Pipeline, summarizer *summary.Summarizer, logger *log.Logger) *Server {
	return &Server{
		pipeline:   pipeline,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (s *Server) Run() error {
	// Create MCP server
	mcpServer := server.NewMCPServer(
		"MedBridge Platform",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("search_platform",
		mcp.WithDescription("Search clinical trials, researchers, forum questions and publications by relevance to a query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query - what you're looking for"),
		),
		mcp.WithString("user_type",
			mcp.Description("Perspective to rank from: patient or researcher"),
		),
		mcp.WithString("condition",
			mcp.Description("Medical condition to weigh matches against"),
		),
		mcp.WithString("location",
			mcp.Description("Location to prioritize nearby trials and researchers"),
		),
	), s.searchHandler)

	mcpServer.AddTool(mcp.NewTool("summarize_favorites",
		mcp.WithDescription("Summarize a user's saved trials, researchers and publications for a doctor discussion"),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user whose favorites to summarize"),
		),
	), s.summarizeFavoritesHandler)

	// Start the stdio server
	if err := server.ServeStdio(mcpServer); err != nil {
		return err
	}

	return nil
}

func (s *Server) searchHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := request.Params.Arguments["query"].(string)
	if !ok {
		return nil, errors.New("query must be a string")
	}
	userType, _ := request.Params.Arguments["user_type"].(string)
	condition, _ := request.Params.Arguments["condition"].(string)
	location, _ := request.Params.Arguments["location"].(string)

	resp, err := s.pipeline.Search(ctx, types.SearchRequest{
		Query:     query,
		UserType:  types.UserType(userType),
		Condition: condition,
		Location:  location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search platform: %w", err)
	}

	// Format results as text
	var result string
	if len(resp.Trials) > 0 {
		result += fmt.Sprintf("Clinical Trials (%d)\n", len(resp.Trials))
		for _, t := range resp.Trials {
			result += fmt.Sprintf("%d: %s (%s, %s)\n", t.MatchScore, t.Title, t.Phase, t.Status)
			if t.Location != "" {
				result += fmt.Sprintf("  Location: %s\n", t.Location)
			}
			result += fmt.Sprintf("  Why: %s\n", t.MatchReason)
		}
		result += "\n"
	}
	if len(resp.Researchers) > 0 {
		result += fmt.Sprintf("Researchers (%d)\n", len(resp.Researchers))
		for _, r := range resp.Researchers {
			result += fmt.Sprintf("%d: %s - %s at %s\n", r.MatchScore, r.Name, r.Specialty, r.Institution)
			result += fmt.Sprintf("  Why: %s\n", r.MatchReason)
		}
		result += "\n"
	}
	if len(resp.Questions) > 0 {
		result += fmt.Sprintf("Forum Questions (%d)\n", len(resp.Questions))
		for _, q := range resp.Questions {
			result += fmt.Sprintf("%d: %s\n", q.MatchScore, q.Title)
			result += fmt.Sprintf("  Why: %s\n", q.MatchReason)
		}
		result += "\n"
	}
	if len(resp.Publications) > 0 {
		result += fmt.Sprintf("Publications (%d)\n", len(resp.Publications))
		for _, p := range resp.Publications {
			result += fmt.Sprintf("%d: %s (%s, %d)\n", p.MatchScore, p.Title, p.Journal, p.Year)
			result += fmt.Sprintf("  Why: %s\n", p.MatchReason)
		}
		result += "\n"
	}
	if result == "" {
		result = "No relevant results found.\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) summarizeFavoritesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, ok := request.Params.Arguments["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("user_id must be a non-empty string")
	}

	summaryResult, err := s.summarizer.Summarize(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize favorites: %w", err)
	}

	result := fmt.Sprintf("Saved items: %d trials, %d researchers, %d publications\n\n%s\n",
		summaryResult.Counts.Trials,
		summaryResult.Counts.Researchers,
		summaryResult.Counts.Publications,
		summaryResult.Summary)

	return mcp.NewToolResultText(result), nil
}
