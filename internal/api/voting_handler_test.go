package api

import (
	"net/http"
	"testing"

	"ShipRank/internal/model"
	"ShipRank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchupReturnsTwoDistinctProjects(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	store.AddProject(&model.Project{Name: "c", OwnerEmail: "c@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "sk-voter", nil)
	require.Equal(t, http.StatusOK, w.Code)

	projects := decodeBody(t, w)["projects"].([]any)
	require.Len(t, projects, 2)
	first := projects[0].(map[string]any)
	second := projects[1].(map[string]any)
	assert.NotEqual(t, first["id"], second["id"])
	assert.Contains(t, first, "name")
	assert.Contains(t, first, "screenshot_url")
	// 配对接口不展示评分，避免影响投票
	assert.NotContains(t, first, "elo_rating")
}

func TestMatchupNeverReturnsOwnProject(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	mine := store.AddProject(&model.Project{Name: "mine", OwnerEmail: "voter@example.com"})
	store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	for i := 0; i < 20; i++ {
		w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "sk-voter", nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, item := range decodeBody(t, w)["projects"].([]any) {
			assert.NotEqual(t, float64(mine.ID), item.(map[string]any)["id"])
		}
	}
}

func TestMatchupInsufficientCandidates(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "only", OwnerEmail: "a@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "sk-voter", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestVoteRecordsMatch(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	winner := store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	loser := store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter",
		map[string]any{"winner_id": winner.ID, "loser_id": loser.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	match := decodeBody(t, w)["match"].(map[string]any)
	assert.Equal(t, 1516.0, match["winner_rating"])
	assert.Equal(t, 1484.0, match["loser_rating"])
	assert.Equal(t, 1, store.MatchCount())
}

func TestVoteDuplicateMatchup(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	winner := store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	loser := store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	body := map[string]any{"winner_id": winner.ID, "loser_id": loser.ID}
	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, store.MatchCount())
}

func TestVoteSameProject(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	p := store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter",
		map[string]any{"winner_id": p.ID, "loser_id": p.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestVoteUnknownProject(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	p := store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter",
		map[string]any{"winner_id": p.ID, "loser_id": uint64(999)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteMalformedBody(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	r := newTestRouter(store)

	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter",
		map[string]any{"winner_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEloLeaderboard(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "top", OwnerEmail: "a@example.com", EloRating: 1700, EloMatchesCount: 12})
	store.AddProject(&model.Project{Name: "mid", OwnerEmail: "b@example.com", EloRating: 1550, EloMatchesCount: 8})
	store.AddProject(&model.Project{Name: "fresh", OwnerEmail: "c@example.com", EloRating: 1900, EloMatchesCount: 2})
	r := newTestRouter(store)

	// 默认 min_matches=5 过滤掉刚参赛的项目
	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/leaderboard", "sk-voter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	projects := decodeBody(t, w)["projects"].([]any)
	require.Len(t, projects, 2)
	assert.Equal(t, "top", projects[0].(map[string]any)["name"])
	assert.Equal(t, 1700.0, projects[0].(map[string]any)["elo_rating"])

	w = doRequest(r, http.MethodGet, "/api/v1/voting/elo/leaderboard?min_matches=1&limit=1", "sk-voter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	projects = decodeBody(t, w)["projects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "fresh", projects[0].(map[string]any)["name"])
}

func TestStatsOverview(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	winner := store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	loser := store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodPost, "/api/v1/voting/elo/vote", "sk-voter",
		map[string]any{"winner_id": winner.ID, "loser_id": loser.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(r, http.MethodPost, "/api/v1/voting/ratings", "sk-voter",
		map[string]any{"project_id": winner.ID, "originality": 4, "technical": 3, "usability": 5})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/voting/stats", "sk-voter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 1.0, body["total_matches"])
	assert.Equal(t, 1.0, body["total_ratings"])
	assert.Equal(t, 2.0, body["matched_projects"])
	assert.Equal(t, 1.0, body["rated_projects"])
}
