package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/medbridge/medbridge/internal/commands"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/types"
)

type CLI struct {
	commands.CommonConfig
	commands.GatewayConfig

	Query     string `help:"Search query - what you're looking for" required:"" arg:""`
	UserType  string `help:"Perspective to rank from" default:"patient" enum:"patient,researcher"`
	Condition string `help:"Medical condition to weigh matches against"`
	Location  string `help:"Location to prioritize nearby trials and researchers"`
	JSON      bool   `help:"Print the raw JSON response" default:"false"`
}

func (c *CLI) Run() error {
	logger, err := commands.SetupLogger(c.CommonConfig)
	if err != nil {
		return err
	}

	st, err := commands.SetupStore(c.CommonConfig, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	oracleClient, err := commands.SetupOracle(c.GatewayConfig, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pipeline := search.NewPipeline(st, oracleClient, logger)
	resp, err := pipeline.Search(ctx, types.SearchRequest{
		Query:     c.Query,
		UserType:  types.UserType(c.UserType),
		Condition: c.Condition,
		Location:  c.Location,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}

	printResults(resp)
	return nil
}

func printResults(resp *types.SearchResponse) {
	if len(resp.Trials) > 0 {
		fmt.Printf("Clinical Trials (%d)\n", len(resp.Trials))
		for _, t := range resp.Trials {
			fmt.Printf("  [%3d] %s (%s, %s)\n", t.MatchScore, t.Title, t.Phase, t.Status)
			fmt.Printf("        %s\n", t.MatchReason)
		}
		fmt.Println()
	}
	if len(resp.Researchers) > 0 {
		fmt.Printf("Researchers (%d)\n", len(resp.Researchers))
		for _, r := range resp.Researchers {
			fmt.Printf("  [%3d] %s - %s at %s\n", r.MatchScore, r.Name, r.Specialty, r.Institution)
			fmt.Printf("        %s\n", r.MatchReason)
		}
		fmt.Println()
	}
	if len(resp.Questions) > 0 {
		fmt.Printf("Forum Questions (%d)\n", len(resp.Questions))
		for _, q := range resp.Questions {
			fmt.Printf("  [%3d] %s\n", q.MatchScore, q.Title)
			fmt.Printf("        %s\n", q.MatchReason)
		}
		fmt.Println()
	}
	if len(resp.Publications) > 0 {
		fmt.Printf("Publications (%d)\n", len(resp.Publications))
		for _, p := range resp.Publications {
			fmt.Printf("  [%3d] %s (%s, %d)\n", p.MatchScore, p.Title, p.Journal, p.Year)
			fmt.Printf("        %s\n", p.MatchReason)
		}
		fmt.Println()
	}
	total := len(resp.Trials) + len(resp.Researchers) + len(resp.Questions) + len(resp.Publications)
	if total == 0 {
		fmt.Println("No relevant results found.")
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("medbridge-search"),
		kong.Description("Search trials, researchers, questions and publications by relevance"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
