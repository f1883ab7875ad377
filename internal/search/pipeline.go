// Package search implements the relevance search pipeline: fetch the four
// candidate collections, have the scoring oracle rate each candidate against
// the query and requester context, then join scores back onto full records.
package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	// minRelevanceScore is the cutoff below which scored items are dropped
	minRelevanceScore = 30
	maxScore          = 100

	// fallbackScore and fallbackReason are applied when the oracle's reply
	// cannot be parsed
	fallbackScore  = 50
	fallbackReason = "Relevance unknown"

	// fallbackLimit caps how many candidates per collection the fallback keeps
	fallbackLimit = 10
)

// CandidateStore lists the four candidate collections scored per request
type CandidateStore interface {
	ListTrials(ctx context.Context) ([]types.Trial, error)
	ListResearchers(ctx context.Context) ([]types.ResearcherProfile, error)
	ListQuestions(ctx context.Context) ([]types.ForumQuestion, error)
	ListPublications(ctx context.Context) ([]types.Publication, error)
}

// Oracle is the single completion call the pipeline makes per request
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Pipeline is the stateless relevance search pipeline. Each Search call is a
// pure function of the request and the collaborators' responses.
type Pipeline struct {
	store  CandidateStore
	oracle Oracle
	logger *log.Logger
}

// NewPipeline creates a pipeline with explicit dependencies
func NewPipeline(store CandidateStore, oracleClient Oracle, logger *log.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		oracle: oracleClient,
		logger: logger,
	}
}

// candidates holds one request's working set
type candidates struct {
	trials       []types.Trial
	researchers  []types.ResearcherProfile
	questions    []types.ForumQuestion
	publications []types.Publication
}

// scoreSheet is the structure the oracle is instructed to return
type scoreSheet struct {
	Trials       []types.ScoredItem `json:"trials"`
	Researchers  []types.ScoredItem `json:"researchers"`
	Questions    []types.ScoredItem `json:"questions"`
	Publications []types.ScoredItem `json:"publications"`
}

// Search runs the full fetch, score, enrich sequence for one request
func (p *Pipeline) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	p.logger.Info("Starting relevance search",
		"query", req.Query,
		"user_type", req.UserType,
		"location", req.Location)

	cands, err := p.fetchCandidates(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Fetched candidate collections",
		"trials", len(cands.trials),
		"researchers", len(cands.researchers),
		"questions", len(cands.questions),
		"publications", len(cands.publications),
		"duration", time.Since(start))

	sheet, err := p.score(ctx, req, cands)
	if err != nil {
		return nil, err
	}

	resp := &types.SearchResponse{
		Trials: enrich(sheet.Trials, cands.trials, func(t types.Trial, s types.ScoredItem) types.EnrichedTrial {
			return types.EnrichedTrial{Trial: t, MatchScore: s.Score, MatchReason: s.Reason}
		}),
		Researchers: enrich(sheet.Researchers, cands.researchers, func(r types.ResearcherProfile, s types.ScoredItem) types.EnrichedResearcher {
			return types.EnrichedResearcher{ResearcherProfile: r, MatchScore: s.Score, MatchReason: s.Reason}
		}),
		Questions: enrich(sheet.Questions, cands.questions, func(q types.ForumQuestion, s types.ScoredItem) types.EnrichedQuestion {
			return types.EnrichedQuestion{ForumQuestion: q, MatchScore: s.Score, MatchReason: s.Reason}
		}),
		Publications: enrich(sheet.Publications, cands.publications, func(pub types.Publication, s types.ScoredItem) types.EnrichedPublication {
			return types.EnrichedPublication{Publication: pub, MatchScore: s.Score, MatchReason: s.Reason}
		}),
	}

	p.logger.Info("Search completed",
		"trials", len(resp.Trials),
		"researchers", len(resp.Researchers),
		"questions", len(resp.Questions),
		"publications", len(resp.Publications),
		"duration", time.Since(start))

	return resp, nil
}

// fetchCandidates issues the four collection reads concurrently and fails on
// the first error. Sibling reads are side-effect-free, so in-flight fetches
// simply complete with their results unused.
func (p *Pipeline) fetchCandidates(ctx context.Context) (candidates, error) {
	var c candidates

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trials, err := p.store.ListTrials(gCtx)
		if err != nil {
			return &FetchError{Collection: "clinical trials", Err: err}
		}
		c.trials = trials
		return nil
	})
	g.Go(func() error {
		researchers, err := p.store.ListResearchers(gCtx)
		if err != nil {
			return &FetchError{Collection: "researcher profiles", Err: err}
		}
		c.researchers = researchers
		return nil
	})
	g.Go(func() error {
		questions, err := p.store.ListQuestions(gCtx)
		if err != nil {
			return &FetchError{Collection: "forum questions", Err: err}
		}
		c.questions = questions
		return nil
	})
	g.Go(func() error {
		publications, err := p.store.ListPublications(gCtx)
		if err != nil {
			return &FetchError{Collection: "publications", Err: err}
		}
		c.publications = publications
		return nil
	})

	if err := g.Wait(); err != nil {
		return candidates{}, err
	}
	return c, nil
}

// score asks the oracle to rate every candidate and normalizes the reply.
// An unparsable reply falls back to neutral default scores; a failed call
// propagates as-is.
func (p *Pipeline) score(ctx context.Context, req types.SearchRequest, c candidates) (scoreSheet, error) {
	content, err := p.oracle.Complete(ctx, buildSystemPrompt(req), buildUserPrompt(req, c))
	if err != nil {
		return scoreSheet{}, err
	}

	var sheet scoreSheet
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &sheet); err != nil {
		p.logger.Warn("Failed to parse oracle response, using default scores", "error", err)
		sheet = scoreSheet{
			Trials:       defaultScores(c.trials),
			Researchers:  defaultScores(c.researchers),
			Questions:    defaultScores(c.questions),
			Publications: defaultScores(c.publications),
		}
	}

	sheet.Trials = normalize(sheet.Trials)
	sheet.Researchers = normalize(sheet.Researchers)
	sheet.Questions = normalize(sheet.Questions)
	sheet.Publications = normalize(sheet.Publications)
	return sheet, nil
}

// defaultScores assigns a neutral score to the first few candidates in fetch
// order, so an unparsable oracle reply never fails the request
func defaultScores[C types.Candidate](items []C) []types.ScoredItem {
	n := len(items)
	if n > fallbackLimit {
		n = fallbackLimit
	}
	scored := make([]types.ScoredItem, 0, n)
	for _, item := range items[:n] {
		scored = append(scored, types.ScoredItem{
			ID:     item.CandidateID(),
			Score:  fallbackScore,
			Reason: fallbackReason,
		})
	}
	return scored
}

// normalize clamps scores to [0,100], drops items below the relevance cutoff
// and sorts by score descending. The sort is stable: ties keep the order the
// oracle (or the fallback) emitted.
func normalize(items []types.ScoredItem) []types.ScoredItem {
	kept := make([]types.ScoredItem, 0, len(items))
	for _, item := range items {
		item.Score = clampScore(item.Score)
		if item.Score < minRelevanceScore {
			continue
		}
		kept = append(kept, item)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// enrich joins scored items back to their full candidate records by id,
// preserving score order. Ids the oracle fabricated are dropped silently.
func enrich[C types.Candidate, R any](scored []types.ScoredItem, items []C, merge func(C, types.ScoredItem) R) []R {
	byID := make(map[string]C, len(items))
	for _, item := range items {
		byID[item.CandidateID()] = item
	}

	results := make([]R, 0, len(scored))
	for _, s := range scored {
		item, ok := byID[s.ID]
		if !ok {
			continue
		}
		results = append(results, merge(item, s))
	}
	return results
}
