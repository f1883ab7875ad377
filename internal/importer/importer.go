// Package importer loads platform seed data from a JSON file into the store.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/store"
	"github.com/medbridge/medbridge/internal/types"
	"golang.org/x/sync/errgroup"
)

// SeedFile is the on-disk layout of a seed data file
type SeedFile struct {
	Trials          []types.Trial             `json:"trials"`
	Researchers     []types.ResearcherProfile `json:"researchers"`
	PatientProfiles []types.PatientProfile    `json:"patient_profiles"`
	Questions       []types.ForumQuestion     `json:"questions"`
	Answers         []types.ForumAnswer       `json:"answers"`
	Publications    []types.Publication       `json:"publications"`
}

func (f *SeedFile) total() int {
	return len(f.Trials) + len(f.Researchers) + len(f.PatientProfiles) +
		len(f.Questions) + len(f.Answers) + len(f.Publications)
}

// Importer writes seed records into the store
type Importer struct {
	store  *store.Store
	logger *log.Logger
}

// New creates an importer backed by the given store
func New(st *store.Store, logger *log.Logger) *Importer {
	return &Importer{
		store:  st,
		logger: logger,
	}
}

// ImportFile reads a seed file and imports every record in it. It returns the
// number of records imported.
func (i *Importer) ImportFile(ctx context.Context, path string, progress Progress) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return i.Import(ctx, &seed, progress)
}

// Import writes every record in the seed set into the store. Independent
// collections load concurrently; answers wait for their questions.
func (i *Importer) Import(ctx context.Context, seed *SeedFile, progress Progress) (int, error) {
	if progress == nil {
		progress = NewNoopProgress()
	}
	defer progress.Close()

	i.logger.Info("Importing seed data",
		"trials", len(seed.Trials),
		"researchers", len(seed.Researchers),
		"patients", len(seed.PatientProfiles),
		"questions", len(seed.Questions),
		"answers", len(seed.Answers),
		"publications", len(seed.Publications))

	// the derived context stays local to the group: errgroup cancels it once
	// Wait returns, and the answers pass below still needs the caller's ctx
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	g.Go(func() error {
		for idx := range seed.Trials {
			if err := i.store.InsertTrial(gCtx, &seed.Trials[idx]); err != nil {
				return fmt.Errorf("failed to import trial %q: %w", seed.Trials[idx].Title, err)
			}
			_ = progress.Add(1)
		}
		return nil
	})
	g.Go(func() error {
		for idx := range seed.Researchers {
			if err := i.store.InsertResearcher(gCtx, &seed.Researchers[idx]); err != nil {
				return fmt.Errorf("failed to import researcher %q: %w", seed.Researchers[idx].Name, err)
			}
			_ = progress.Add(1)
		}
		for idx := range seed.Publications {
			if err := i.store.InsertPublication(gCtx, &seed.Publications[idx]); err != nil {
				return fmt.Errorf("failed to import publication %q: %w", seed.Publications[idx].Title, err)
			}
			_ = progress.Add(1)
		}
		return nil
	})
	g.Go(func() error {
		for idx := range seed.PatientProfiles {
			if err := i.store.UpsertPatientProfile(gCtx, &seed.PatientProfiles[idx]); err != nil {
				return fmt.Errorf("failed to import patient profile %q: %w", seed.PatientProfiles[idx].UserID, err)
			}
			_ = progress.Add(1)
		}
		return nil
	})
	g.Go(func() error {
		for idx := range seed.Questions {
			if err := i.store.InsertQuestion(gCtx, &seed.Questions[idx]); err != nil {
				return fmt.Errorf("failed to import question %q: %w", seed.Questions[idx].Title, err)
			}
			_ = progress.Add(1)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}

	// answers reference questions, so they go in last
	for idx := range seed.Answers {
		if err := i.store.InsertAnswer(ctx, &seed.Answers[idx]); err != nil {
			return 0, fmt.Errorf("failed to import answer for question %q: %w", seed.Answers[idx].QuestionID, err)
		}
		_ = progress.Add(1)
	}

	total := seed.total()
	i.logger.Info("Import complete", "records", total)
	return total, nil
}
