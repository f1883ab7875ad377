package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/assistant"
	"github.com/medbridge/medbridge/internal/oracle"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/store"
	"github.com/medbridge/medbridge/internal/summary"
	"github.com/medbridge/medbridge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOracle struct {
	content string
	err     error
}

func (m *mockOracle) Complete(ctx context.Context, system, user string) (string, error) {
	return m.content, m.err
}

func (m *mockOracle) Chat(ctx context.Context, messages []oracle.Message) (string, error) {
	return m.content, m.err
}

func newTestServer(t *testing.T, oracleClient oracle.Client) (*Server, *store.Store) {
	t.Helper()
	logger := log.New(io.Discard)

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := New(
		search.NewPipeline(st, oracleClient, logger),
		assistant.New(st, oracleClient, logger),
		summary.New(st, oracleClient, logger),
		st,
		Config{Host: "localhost", Port: 0},
		logger,
	)
	return srv, st
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func seedTrial(t *testing.T, st *store.Store, id, title string) {
	t.Helper()
	require.NoError(t, st.InsertTrial(context.Background(), &types.Trial{
		ID:        id,
		Title:     title,
		Phase:     "Phase II",
		Status:    "Recruiting",
		Condition: "glioblastoma",
	}))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearchEndpoint(t *testing.T) {
	srv, st := newTestServer(t, &mockOracle{
		content: `{"trials":[{"id":"trial-1","score":88,"reason":"matches condition"}],"researchers":[],"questions":[],"publications":[]}`,
	})
	seedTrial(t, st, "trial-1", "Glioblastoma Immunotherapy Trial")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/search", types.SearchRequest{
		Query:    "immunotherapy",
		UserType: types.UserTypePatient,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Trials, 1)
	assert.Equal(t, "trial-1", resp.Trials[0].ID)
	assert.Equal(t, 88, resp.Trials[0].MatchScore)
	assert.Equal(t, "matches condition", resp.Trials[0].MatchReason)
	assert.Empty(t, resp.Researchers)
}

func TestSearchEndpointEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/search", types.SearchRequest{Query: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "query parameter is required", body["error"])
}

func TestSearchEndpointOracleFailure(t *testing.T) {
	srv, st := newTestServer(t, &mockOracle{err: &oracle.StatusError{Status: 503}})
	seedTrial(t, st, "trial-1", "Some Trial")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/search", types.SearchRequest{Query: "anything"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AI API error: 503", body["error"])
}

func TestSearchEndpointInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpointCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTrialCRUD(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/trials", types.Trial{
		Title:  "Phase III Vaccine Study",
		Phase:  "Phase III",
		Status: "Recruiting",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created types.Trial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/trials/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched types.Trial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Phase III Vaccine Study", fetched.Title)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/trials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []types.Trial
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestCreateTrialMissingTitle(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/trials", types.Trial{Phase: "Phase I"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrialNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/trials/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnswersRequireExistingQuestion(t *testing.T) {
	srv, st := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/questions/missing/answers", types.ForumAnswer{
		Content: "An answer",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	q := types.ForumQuestion{Title: "Managing side effects", Content: "Any advice?"}
	require.NoError(t, st.InsertQuestion(context.Background(), &q))

	rec = doRequest(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/questions/%s/answers", q.ID), types.ForumAnswer{
		Content:  "Stay hydrated",
		AuthorID: "user-2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/questions/%s/answers", q.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var answers []types.ForumAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answers))
	require.Len(t, answers, 1)
	assert.Equal(t, "Stay hydrated", answers[0].Content)
}

func TestFavoritesLifecycle(t *testing.T) {
	srv, st := newTestServer(t, &mockOracle{})
	seedTrial(t, st, "trial-1", "Saved Trial")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/users/user-1/favorites", types.Favorite{
		ItemType: types.FavoriteTypeTrial,
		ItemID:   "trial-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/user-1/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var favorites []types.Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favorites))
	require.Len(t, favorites, 1)

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/users/user-1/favorites/trial/trial-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/users/user-1/favorites", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favorites))
	assert.Empty(t, favorites)
}

func TestAddFavoriteRejectsUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/users/user-1/favorites", types.Favorite{
		ItemType: "question",
		ItemID:   "q-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationFlow(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/conversations", map[string]string{
		"patient_id":    "patient-1",
		"researcher_id": "researcher-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var conv types.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.NotEmpty(t, conv.ID)

	// second call returns the same conversation
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/conversations", map[string]string{
		"patient_id":    "patient-1",
		"researcher_id": "researcher-1",
	})
	var again types.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, conv.ID, again.ID)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", types.Message{
		SenderID: "patient-1",
		Content:  "Hello doctor",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []types.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsRead)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/read", map[string]string{
		"reader_id": "researcher-1",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	assert.True(t, messages[0].IsRead)
}

func TestCollaborationRequests(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/collaboration-requests", types.CollaborationRequest{
		FromUserID: "res-1",
		ToUserID:   "res-2",
		Message:    "Interested in your glioma work",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created types.CollaborationRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, types.CollaborationPending, created.Status)

	// duplicate pair conflicts
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/collaboration-requests", types.CollaborationRequest{
		FromUserID: "res-1",
		ToUserID:   "res-2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/collaboration-requests?to=res-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var incoming []types.CollaborationRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incoming))
	require.Len(t, incoming, 1)

	rec = doRequest(t, srv, http.MethodPatch, "/api/v1/collaboration-requests/"+created.ID, map[string]string{
		"status": "accepted",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/collaboration-requests?from=res-1", nil)
	var outgoing []types.CollaborationRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outgoing))
	require.Len(t, outgoing, 1)
	assert.Equal(t, types.CollaborationAccepted, outgoing[0].Status)
}

func TestPatientProfileUpsert(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/patients", types.PatientProfile{
		UserID:    "user-1",
		Name:      "Jamie",
		Condition: "glioblastoma",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/patients/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile types.PatientProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "glioblastoma", profile.Condition)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/patients/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatientChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{content: "You could look into recruiting trials near you."})

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/assistant/patient", assistant.ChatRequest{
		UserID:  "user-1",
		Message: "What trials are available?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp assistant.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You could look into recruiting trials near you.", resp.Message)
}

func TestPatientChatEndpointEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/assistant/patient", assistant.ChatRequest{UserID: "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesSummaryEndpoint(t *testing.T) {
	srv, st := newTestServer(t, &mockOracle{content: "You saved one immunotherapy trial worth discussing."})
	seedTrial(t, st, "trial-1", "Immunotherapy Trial")
	require.NoError(t, st.AddFavorite(context.Background(), &types.Favorite{
		UserID:   "user-1",
		ItemType: types.FavoriteTypeTrial,
		ItemID:   "trial-1",
	}))

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/favorites/summary", map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result summary.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Counts.Trials)
	assert.Contains(t, result.Summary, "immunotherapy")
}

func TestFavoritesSummaryRequiresUser(t *testing.T) {
	srv, _ := newTestServer(t, &mockOracle{})
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/favorites/summary", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
