// Package summary turns a user's saved favorites into a doctor-discussion
// summary via the chat gateway.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/oracle"
	"github.com/medbridge/medbridge/internal/types"
)

const systemPrompt = `You are a medical research assistant. Create a comprehensive, easy-to-understand summary of the user's saved favorites for discussion with their doctor. Focus on:
- Key findings and relevance
- Important considerations
- Questions to ask their doctor
Format the response in clear sections with bullet points.`

// FavoriteStore resolves a user's favorites to their full records
type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID string) ([]types.Favorite, error)
	GetTrial(ctx context.Context, id string) (*types.Trial, error)
	GetResearcher(ctx context.Context, id string) (*types.ResearcherProfile, error)
	GetPublication(ctx context.Context, id string) (*types.Publication, error)
}

// Counts reports how many saved items of each type went into a summary
type Counts struct {
	Trials       int `json:"trials"`
	Researchers  int `json:"researchers"`
	Publications int `json:"publications"`
}

// Result is the generated summary plus the per-type counts
type Result struct {
	Summary string `json:"summary"`
	Counts  Counts `json:"counts"`
}

// Summarizer generates favorites summaries
type Summarizer struct {
	store  FavoriteStore
	oracle oracle.Client
	logger *log.Logger
}

// New creates a summarizer with explicit dependencies
func New(store FavoriteStore, oracleClient oracle.Client, logger *log.Logger) *Summarizer {
	return &Summarizer{
		store:  store,
		oracle: oracleClient,
		logger: logger,
	}
}

// Summarize resolves the user's favorites and asks the gateway for a summary.
// Favorites pointing at records that no longer exist are skipped.
func (s *Summarizer) Summarize(ctx context.Context, userID string) (*Result, error) {
	start := time.Now()
	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	var (
		trials       []types.Trial
		researchers  []types.ResearcherProfile
		publications []types.Publication
	)
	for _, fav := range favorites {
		switch fav.ItemType {
		case types.FavoriteTypeTrial:
			trial, err := s.store.GetTrial(ctx, fav.ItemID)
			if err != nil {
				return nil, err
			}
			if trial != nil {
				trials = append(trials, *trial)
			}
		case types.FavoriteTypeResearcher:
			researcher, err := s.store.GetResearcher(ctx, fav.ItemID)
			if err != nil {
				return nil, err
			}
			if researcher != nil {
				researchers = append(researchers, *researcher)
			}
		case types.FavoriteTypePublication:
			publication, err := s.store.GetPublication(ctx, fav.ItemID)
			if err != nil {
				return nil, err
			}
			if publication != nil {
				publications = append(publications, *publication)
			}
		}
	}

	summaryText, err := s.oracle.Complete(ctx, systemPrompt, buildUserPrompt(trials, researchers, publications))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Favorites summary generated",
		"user_id", userID,
		"trials", len(trials),
		"researchers", len(researchers),
		"publications", len(publications),
		"duration", time.Since(start))

	return &Result{
		Summary: summaryText,
		Counts: Counts{
			Trials:       len(trials),
			Researchers:  len(researchers),
			Publications: len(publications),
		},
	}, nil
}

func buildUserPrompt(trials []types.Trial, researchers []types.ResearcherProfile, publications []types.Publication) string {
	var sb strings.Builder
	sb.WriteString("Create a summary of these saved items:\n\n")

	sb.WriteString(fmt.Sprintf("Clinical Trials (%d):\n", len(trials)))
	for _, t := range trials {
		sb.WriteString(fmt.Sprintf("- %s: %s (Phase: %s, Status: %s)\n", t.Title, t.Description, t.Phase, t.Status))
	}

	sb.WriteString(fmt.Sprintf("\nResearchers (%d):\n", len(researchers)))
	for _, r := range researchers {
		sb.WriteString(fmt.Sprintf("- %s, %s at %s\n", r.Name, r.Specialty, r.Institution))
	}

	sb.WriteString(fmt.Sprintf("\nPublications (%d):\n", len(publications)))
	for _, p := range publications {
		sb.WriteString(fmt.Sprintf("- %s by %s (%s, %d)\n", p.Title, p.Authors, p.Journal, p.Year))
	}

	return sb.String()
}
