package store

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir(), log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestTrialRoundtrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	trial := types.Trial{
		Title:               "Phase II Checkpoint Inhibitor Study",
		Description:         "Evaluating pembrolizumab in advanced melanoma",
		Condition:           "melanoma",
		Phase:               "Phase II",
		Status:              "Recruiting",
		Location:            "Boston, MA",
		EligibilityCriteria: "Adults 18+ with stage III/IV melanoma",
		ContactEmail:        "trials@example.org",
	}
	require.NoError(t, st.InsertTrial(ctx, &trial))
	require.NotEmpty(t, trial.ID)

	got, err := st.GetTrial(ctx, trial.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, trial.Title, got.Title)
	assert.Equal(t, "melanoma", got.Condition)
	assert.Equal(t, "Boston, MA", got.Location)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := st.GetTrial(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListTrialsByCondition(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertTrial(ctx, &types.Trial{
		Title: "Melanoma Study", Description: "d", Condition: "melanoma",
		Phase: "Phase II", Status: "Recruiting",
	}))
	require.NoError(t, st.InsertTrial(ctx, &types.Trial{
		Title: "Closed Melanoma Study", Description: "d", Condition: "melanoma",
		Phase: "Phase III", Status: "Completed",
	}))
	require.NoError(t, st.InsertTrial(ctx, &types.Trial{
		Title: "Asthma Study", Description: "d", Condition: "asthma",
		Phase: "Phase I", Status: "Recruiting",
	}))

	trials, err := st.ListTrialsByCondition(ctx, "melanoma", 10)
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, "Melanoma Study", trials[0].Title)
}

func TestListCollectionsEmpty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	trials, err := st.ListTrials(ctx)
	require.NoError(t, err)
	assert.NotNil(t, trials)
	assert.Empty(t, trials)

	researchers, err := st.ListResearchers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, researchers)

	questions, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, questions)

	publications, err := st.ListPublications(ctx)
	require.NoError(t, err)
	assert.NotNil(t, publications)
}

func TestResearcherLookups(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r1 := types.ResearcherProfile{UserID: "user-1", Name: "Dr. Adeyemi", Specialty: "Neurology", Institution: "UCSF"}
	r2 := types.ResearcherProfile{UserID: "user-2", Name: "Dr. Brand", Specialty: "Neuro-oncology", Institution: "MGH"}
	require.NoError(t, st.InsertResearcher(ctx, &r1))
	require.NoError(t, st.InsertResearcher(ctx, &r2))

	byUser, err := st.GetResearcherByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, byUser)
	assert.Equal(t, r1.ID, byUser.ID)

	bySpecialty, err := st.ListResearchersBySpecialty(ctx, "Neuro", 10)
	require.NoError(t, err)
	assert.Len(t, bySpecialty, 2)

	peers, err := st.ListResearcherPeers(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "user-2", peers[0].UserID)
}

func TestPatientProfileUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := types.PatientProfile{UserID: "user-1", Name: "Alex", Condition: "epilepsy"}
	require.NoError(t, st.UpsertPatientProfile(ctx, &p))

	p.Condition = "focal epilepsy"
	require.NoError(t, st.UpsertPatientProfile(ctx, &p))

	got, err := st.GetPatientProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "focal epilepsy", got.Condition)

	missing, err := st.GetPatientProfile(ctx, "user-9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFavoritesDeduplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	f := types.Favorite{UserID: "user-1", ItemType: types.FavoriteTypeTrial, ItemID: "trial-1"}
	require.NoError(t, st.AddFavorite(ctx, &f))

	// same user, same item twice is a no-op
	dup := types.Favorite{UserID: "user-1", ItemType: types.FavoriteTypeTrial, ItemID: "trial-1"}
	require.NoError(t, st.AddFavorite(ctx, &dup))

	favorites, err := st.ListFavorites(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	require.NoError(t, st.RemoveFavorite(ctx, "user-1", types.FavoriteTypeTrial, "trial-1"))
	favorites, err = st.ListFavorites(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestFindOrCreateConversation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.FindOrCreateConversation(ctx, "patient-1", "researcher-1")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := st.FindOrCreateConversation(ctx, "patient-1", "researcher-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := st.FindOrCreateConversation(ctx, "patient-1", "researcher-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestMessagesOrderAndRead(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	conv, err := st.FindOrCreateConversation(ctx, "patient-1", "researcher-1")
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, st.InsertMessage(ctx, &types.Message{
			ConversationID: conv.ID,
			SenderID:       "patient-1",
			Content:        content,
		}))
	}

	messages, err := st.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)
	assert.False(t, messages[0].IsRead)

	require.NoError(t, st.MarkMessagesRead(ctx, conv.ID, "researcher-1"))
	messages, err = st.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	for _, m := range messages {
		assert.True(t, m.IsRead)
	}
}

func TestCollaborationRequestDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	r := types.CollaborationRequest{FromUserID: "res-1", ToUserID: "res-2", Message: "hi"}
	require.NoError(t, st.InsertCollaborationRequest(ctx, &r))
	assert.Equal(t, types.CollaborationPending, r.Status)

	dup := types.CollaborationRequest{FromUserID: "res-1", ToUserID: "res-2"}
	err := st.InsertCollaborationRequest(ctx, &dup)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// reverse direction is a different pair
	reverse := types.CollaborationRequest{FromUserID: "res-2", ToUserID: "res-1"}
	require.NoError(t, st.InsertCollaborationRequest(ctx, &reverse))

	require.NoError(t, st.UpdateCollaborationStatus(ctx, r.ID, types.CollaborationAccepted))
	outgoing, err := st.ListCollaborationRequestsFrom(ctx, "res-1")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, types.CollaborationAccepted, outgoing[0].Status)

	err = st.UpdateCollaborationStatus(ctx, "no-such-id", types.CollaborationDeclined)
	assert.Error(t, err)
}

func TestAnswersRequireQuestion(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.InsertAnswer(ctx, &types.ForumAnswer{QuestionID: "missing", Content: "orphan"})
	assert.Error(t, err)

	q := types.ForumQuestion{Title: "Sleep and seizures", Content: "Does poor sleep trigger seizures?"}
	require.NoError(t, st.InsertQuestion(ctx, &q))

	require.NoError(t, st.InsertAnswer(ctx, &types.ForumAnswer{QuestionID: q.ID, Content: "It can."}))
	answers, err := st.ListAnswers(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "It can.", answers[0].Content)
}
