package summary

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/medbridge/medbridge/internal/oracle"
	"github.com/medbridge/medbridge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	favorites []types.Favorite
	trials    map[string]*types.Trial
	res       map[string]*types.ResearcherProfile
	pubs      map[string]*types.Publication
}

func (m *mockStore) ListFavorites(ctx context.Context, userID string) ([]types.Favorite, error) {
	return m.favorites, nil
}

func (m *mockStore) GetTrial(ctx context.Context, id string) (*types.Trial, error) {
	return m.trials[id], nil
}

func (m *mockStore) GetResearcher(ctx context.Context, id string) (*types.ResearcherProfile, error) {
	return m.res[id], nil
}

func (m *mockStore) GetPublication(ctx context.Context, id string) (*types.Publication, error) {
	return m.pubs[id], nil
}

type mockOracle struct {
	reply      string
	lastSystem string
	lastUser   string
}

func (m *mockOracle) Complete(ctx context.Context, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	return m.reply, nil
}

func (m *mockOracle) Chat(ctx context.Context, messages []oracle.Message) (string, error) {
	return m.reply, nil
}

func TestSummarizeCountsAndPrompt(t *testing.T) {
	store := &mockStore{
		favorites: []types.Favorite{
			{UserID: "user-1", ItemType: types.FavoriteTypeTrial, ItemID: "trial-1"},
			{UserID: "user-1", ItemType: types.FavoriteTypeResearcher, ItemID: "res-1"},
			{UserID: "user-1", ItemType: types.FavoriteTypePublication, ItemID: "pub-1"},
		},
		trials: map[string]*types.Trial{
			"trial-1": {ID: "trial-1", Title: "Phase III Immunotherapy Trial", Description: "CAR-T", Phase: "Phase III", Status: "Recruiting"},
		},
		res: map[string]*types.ResearcherProfile{
			"res-1": {ID: "res-1", Name: "Dr. Chen", Specialty: "Neuro-oncology", Institution: "UCSF"},
		},
		pubs: map[string]*types.Publication{
			"pub-1": {ID: "pub-1", Title: "CAR-T in solid tumors", Journal: "Nature Medicine", Year: 2024, Authors: "Chen et al."},
		},
	}
	o := &mockOracle{reply: "Summary of your saved items."}
	s := New(store, o, log.New(io.Discard))

	result, err := s.Summarize(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Summary of your saved items.", result.Summary)
	assert.Equal(t, Counts{Trials: 1, Researchers: 1, Publications: 1}, result.Counts)

	assert.Contains(t, o.lastUser, "Clinical Trials (1):")
	assert.Contains(t, o.lastUser, "- Phase III Immunotherapy Trial: CAR-T (Phase: Phase III, Status: Recruiting)")
	assert.Contains(t, o.lastUser, "- Dr. Chen, Neuro-oncology at UCSF")
	assert.Contains(t, o.lastUser, "- CAR-T in solid tumors by Chen et al. (Nature Medicine, 2024)")
	assert.Contains(t, o.lastSystem, "discussion with their doctor")
}

func TestSummarizeSkipsDanglingFavorites(t *testing.T) {
	store := &mockStore{
		favorites: []types.Favorite{
			{UserID: "user-1", ItemType: types.FavoriteTypeTrial, ItemID: "gone"},
		},
		trials: map[string]*types.Trial{},
	}
	o := &mockOracle{reply: "Nothing much saved."}
	s := New(store, o, log.New(io.Discard))

	result, err := s.Summarize(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, Counts{}, result.Counts)
}

func TestSummarizeEmptyFavorites(t *testing.T) {
	o := &mockOracle{reply: "You have no saved items yet."}
	s := New(&mockStore{}, o, log.New(io.Discard))

	result, err := s.Summarize(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, Counts{}, result.Counts)
	assert.Contains(t, o.lastUser, "Clinical Trials (0):")
}
