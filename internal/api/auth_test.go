package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ShipRank/internal/config"
	"ShipRank/internal/model"
	"ShipRank/internal/service"
	"ShipRank/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPILogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func apiVotingConfig() *config.VotingConfig {
	return &config.VotingConfig{
		KFactor:            32,
		MaxMatches:         100,
		ExcludedCategories: []string{"Boba Drops"},
		EloMinMatches:      5,
		RatingMinRatings:   3,
	}
}

// inlineScheduler 在投递时同步执行统计重算，省去测试里等待 worker
type inlineScheduler struct {
	stats *service.StatsService
}

func (s inlineScheduler) Enqueue(projectID uint64) bool {
	_ = s.stats.Recompute(context.Background(), projectID)
	return true
}

// newTestRouter 按 main 的路由结构搭一个内存实现的测试路由
func newTestRouter(store *testutil.MemStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := newAPILogger()
	cfg := apiVotingConfig()

	votingHandler := &VotingHandler{
		matchupService:     service.NewMatchupServiceWithDeps(store, logger, cfg),
		eloService:         service.NewEloServiceWithDeps(store, store, logger, cfg.KFactor),
		leaderboardService: service.NewLeaderboardServiceWithDeps(store, logger),
		logger:             logger,
		defaultMinMatches:  cfg.EloMinMatches,
	}
	recalc := inlineScheduler{stats: service.NewStatsServiceWithDeps(store, testutil.RatingView{MemStore: store}, logger)}
	ratingHandler := &RatingHandler{
		ratingService:      service.NewRatingServiceWithDeps(store, testutil.RatingView{MemStore: store}, logger, recalc),
		leaderboardService: service.NewLeaderboardServiceWithDeps(store, logger),
		logger:             logger,
		defaultMinRatings:  cfg.RatingMinRatings,
	}
	statsHandler := &StatsHandler{
		projects: store,
		matches:  store,
		ratings:  testutil.RatingView{MemStore: store},
		logger:   logger,
	}

	r := gin.New()
	requireLogin := RequireLogin(store, logger)
	voting := r.Group("/api/v1/voting")
	{
		voting.GET("/elo/matchup", requireLogin, votingHandler.Matchup)
		voting.POST("/elo/vote", requireLogin, votingHandler.Vote)
		voting.GET("/elo/leaderboard", votingHandler.Leaderboard)
		voting.POST("/ratings", requireLogin, ratingHandler.Create)
		voting.GET("/ratings/leaderboard", ratingHandler.Leaderboard)
		voting.GET("/ratings/:project_id", requireLogin, ratingHandler.Show)
		voting.GET("/stats", statsHandler.Overview)
	}
	return r
}

func doRequest(r *gin.Engine, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedVoter(store *testutil.MemStore) *model.User {
	return store.AddUser(&model.User{Email: "voter@example.com", APIKey: "sk-voter"})
}

func TestRequireLoginMissingKey(t *testing.T) {
	store := testutil.NewMemStore()
	r := newTestRouter(store)

	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginInvalidKey(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	r := newTestRouter(store)

	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "sk-wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid api key", decodeBody(t, w)["error"])
}

func TestRequireLoginBearerHeader(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/voting/elo/matchup", nil)
	req.Header.Set("Authorization", "Bearer sk-voter")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireLoginRejectsSchemelessAuthorization(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	// 不带 Bearer 方案的 Authorization 头不能当作 api_key
	for _, header := range []string{"sk-voter", "Bearersk-voter", "Basic sk-voter"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/voting/elo/matchup", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestRequireLoginXApiKeyHeader(t *testing.T) {
	store := testutil.NewMemStore()
	seedVoter(store)
	store.AddProject(&model.Project{Name: "a", OwnerEmail: "a@example.com"})
	store.AddProject(&model.Project{Name: "b", OwnerEmail: "b@example.com"})
	r := newTestRouter(store)

	w := doRequest(r, http.MethodGet, "/api/v1/voting/elo/matchup", "sk-voter", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
