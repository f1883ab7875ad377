// Package assistant implements the patient and researcher chat assistants.
// Each call gathers requester context from the store, builds a persona
// system prompt and forwards the conversation to the chat gateway.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/oracle"
	"github.com/medbridge/medbridge/internal/types"
)

// ErrEmptyMessage is returned when a chat request carries no message text
var ErrEmptyMessage = errors.New("message is required")

const (
	// contextFetchLimit bounds each context lookup against the store
	contextFetchLimit = 10
	// contextDisplayLimit caps the per-collection records echoed back to the caller
	contextDisplayLimit = 3
)

// ContextStore provides the lookups the assistants build their context from
type ContextStore interface {
	GetPatientProfile(ctx context.Context, userID string) (*types.PatientProfile, error)
	GetResearcherByUser(ctx context.Context, userID string) (*types.ResearcherProfile, error)
	ListTrialsByCondition(ctx context.Context, condition string, limit int) ([]types.Trial, error)
	ListResearchersBySpecialty(ctx context.Context, specialty string, limit int) ([]types.ResearcherProfile, error)
	ListResearcherPeers(ctx context.Context, userID string, limit int) ([]types.ResearcherProfile, error)
	ListQuestionsByTitle(ctx context.Context, title string, limit int) ([]types.ForumQuestion, error)
	ListPublicationsByTitle(ctx context.Context, title string, limit int) ([]types.Publication, error)
	ListRecentTrials(ctx context.Context, limit int) ([]types.Trial, error)
	ListRecentQuestions(ctx context.Context, limit int) ([]types.ForumQuestion, error)
	ListRecentPublications(ctx context.Context, limit int) ([]types.Publication, error)
	ListCollaborationRequestsFrom(ctx context.Context, userID string) ([]types.CollaborationRequest, error)
}

// ChatRequest is one assistant exchange from a signed-in user
type ChatRequest struct {
	UserID  string           `json:"userId"`
	Message string           `json:"message"`
	History []oracle.Message `json:"conversationHistory,omitempty"`
}

// ChatContext carries the records the assistant's answer drew on, for the
// caller to display alongside the reply
type ChatContext struct {
	Trials       []types.Trial             `json:"trials"`
	Researchers  []types.ResearcherProfile `json:"researchers"`
	Publications []types.Publication       `json:"publications"`
	Questions    []types.ForumQuestion     `json:"questions"`
}

// ChatResponse is the assistant's reply plus its supporting context
type ChatResponse struct {
	Message string      `json:"message"`
	Context ChatContext `json:"context"`
}

// Assistant answers patient and researcher chat requests
type Assistant struct {
	store  ContextStore
	oracle oracle.Client
	logger *log.Logger
}

// New creates an assistant with explicit dependencies
func New(store ContextStore, oracleClient oracle.Client, logger *log.Logger) *Assistant {
	return &Assistant{
		store:  store,
		oracle: oracleClient,
		logger: logger,
	}
}

// PatientChat answers a patient's message with condition-matched context
func (a *Assistant) PatientChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()
	profile, err := a.store.GetPatientProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	condition := ""
	if profile != nil {
		condition = profile.Condition
	}

	trials, err := a.store.ListTrialsByCondition(ctx, condition, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	researchers, err := a.store.ListResearchersBySpecialty(ctx, condition, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	publications, err := a.store.ListPublicationsByTitle(ctx, condition, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	questions, err := a.store.ListQuestionsByTitle(ctx, condition, contextFetchLimit)
	if err != nil {
		return nil, err
	}

	system := buildPatientPrompt(profile, len(trials), len(researchers), len(publications), len(questions))
	reply, err := a.chat(ctx, system, req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Patient chat completed", "user_id", req.UserID, "duration", time.Since(start))
	return &ChatResponse{
		Message: reply,
		Context: ChatContext{
			Trials:       head(trials, contextDisplayLimit),
			Researchers:  head(researchers, contextDisplayLimit),
			Publications: head(publications, contextDisplayLimit),
			Questions:    head(questions, contextDisplayLimit),
		},
	}, nil
}

// ResearcherChat answers a researcher's message with peer and platform context
func (a *Assistant) ResearcherChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	start := time.Now()
	profile, err := a.store.GetResearcherByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	peers, err := a.store.ListResearcherPeers(ctx, req.UserID, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	trials, err := a.store.ListRecentTrials(ctx, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	publications, err := a.store.ListRecentPublications(ctx, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	questions, err := a.store.ListRecentQuestions(ctx, contextFetchLimit)
	if err != nil {
		return nil, err
	}
	collaborations, err := a.store.ListCollaborationRequestsFrom(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	system := buildResearcherPrompt(profile, len(peers), len(trials), len(publications), len(questions), len(collaborations))
	reply, err := a.chat(ctx, system, req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Researcher chat completed", "user_id", req.UserID, "duration", time.Since(start))
	return &ChatResponse{
		Message: reply,
		Context: ChatContext{
			Trials:       head(trials, contextDisplayLimit),
			Researchers:  head(peers, contextDisplayLimit),
			Publications: head(publications, contextDisplayLimit),
			Questions:    head(questions, contextDisplayLimit),
		},
	}, nil
}

func (a *Assistant) chat(ctx context.Context, system string, req ChatRequest) (string, error) {
	messages := make([]oracle.Message, 0, len(req.History)+2)
	messages = append(messages, oracle.Message{Role: "system", Content: system})
	messages = append(messages, req.History...)
	messages = append(messages, oracle.Message{Role: "user", Content: req.Message})
	return a.oracle.Chat(ctx, messages)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	return items
}
