package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/medbridge/medbridge/internal/commands"
	"github.com/medbridge/medbridge/internal/importer"
)

type CLI struct {
	commands.CommonConfig

	SeedFile   string `help:"Path to JSON seed file to import" required:"" arg:""`
	NoProgress bool   `help:"Disable progress bar" default:"false"`
	DryRun     bool   `help:"Print parsed records and exit (no import)" default:"false"`
}

func (c *CLI) Run() error {
	logger, err := commands.SetupLogger(c.CommonConfig)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed importer.SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	if c.DryRun {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(seed)
	}

	st, err := commands.SetupStore(c.CommonConfig, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var progress importer.Progress = importer.NewNoopProgress()
	if !c.NoProgress {
		total := len(seed.Trials) + len(seed.Researchers) + len(seed.PatientProfiles) +
			len(seed.Questions) + len(seed.Answers) + len(seed.Publications)
		progress = importer.NewBarProgress(total)
	}

	count, err := importer.New(st, logger).Import(ctx, &seed, progress)
	if err != nil {
		return err
	}

	logger.Info("Seed data imported", "records", count)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("medbridge-import"),
		kong.Description("Import platform seed data from a JSON file"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
