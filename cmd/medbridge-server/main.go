package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/medbridge/medbridge/internal/assistant"
	"github.com/medbridge/medbridge/internal/commands"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/server"
	"github.com/medbridge/medbridge/internal/summary"
)

type CLI struct {
	commands.CommonConfig
	commands.GatewayConfig

	Host string `help:"Host to bind the HTTP server to" default:"0.0.0.0"`
	Port int    `help:"Port to bind the HTTP server to" default:"8080" env:"PORT"`
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

	srv := server.New(
		search.NewPipeline(st, oracleClient, logger),
		assistant.New(st, oracleClient, logger),
		summary.New(st, oracleClient, logger),
		st,
		server.Config{Host: c.Host, Port: c.Port},
		logger,
	)

	// Shut down cleanly on SIGINT/SIGTERM
	done := make(chan error, 1)
	go func() {
		done <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case sig := <-sigs:
		logger.Info("Shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("medbridge-server"),
		kong.Description("HTTP server for the patient and researcher platform"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
