package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/medbridge/medbridge/internal/commands"
	"github.com/medbridge/medbridge/internal/mcp"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/summary"
)

type CLI struct {
	commands.CommonConfig
	commands.GatewayConfig
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

	s := mcp.New(
		search.NewPipeline(st, oracleClient, logger),
		summary.New(st, oracleClient, logger),
		logger,
	)
	return s.Run()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("medbridge-mcp-server"),
		kong.Description("MCP server exposing platform search and favorites summaries"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
