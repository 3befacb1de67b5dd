package api

import (
	"errors"
	"net/http"
	"strconv"

	"ShipRank/internal/config"
	"ShipRank/internal/metrics"
	"ShipRank/internal/model"
	"ShipRank/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VotingHandler ELO投票接口：随机配对、投票、排行榜
type VotingHandler struct {
	matchupService     *service.MatchupService
	eloService         *service.EloService
	leaderboardService *service.LeaderboardService
	logger             *logrus.Logger
	defaultMinMatches  int
}

// NewVotingHandler 创建 VotingHandler
func NewVotingHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *VotingHandler {
	return &VotingHandler{
		matchupService:     service.NewMatchupService(db, logger, &cfg.Voting),
		eloService:         service.NewEloService(db, logger, cfg.Voting.KFactor),
		leaderboardService: service.NewLeaderboardService(db, logger),
		logger:             logger,
		defaultMinMatches:  cfg.Voting.EloMinMatches,
	}
}

// Matchup 随机配对接口
// GET /api/v1/voting/elo/matchup
func (h *VotingHandler) Matchup(c *gin.Context) {
	voter := CurrentUser(c)
	projects, err := h.matchupService.SelectMatchup(c.Request.Context(), voter)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientCandidates) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Matchup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

// voteRequest 投票请求体
type voteRequest struct {
	WinnerID uint64 `json:"winner_id" binding:"required"`
	LoserID  uint64 `json:"loser_id" binding:"required"`
}

// Vote 投票接口，winner_id 胜 loser_id
// POST /api/v1/voting/elo/vote
func (h *VotingHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winner_id and loser_id are required"})
		return
	}

	voter := CurrentUser(c)
	match, err := h.eloService.RecordVote(c.Request.Context(), voter, req.WinnerID, req.LoserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVote), errors.Is(err, service.ErrDuplicateVote):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Vote failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	metrics.VotesTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"match": gin.H{
			"winner_rating": service.Round1(match.WinnerRatingAfter),
			"loser_rating":  service.Round1(match.LoserRatingAfter),
		},
	})
}

// Leaderboard ELO排行榜
// GET /api/v1/voting/elo/leaderboard?min_matches=5&limit=50
func (h *VotingHandler) Leaderboard(c *gin.Context) {
	minMatches, err := strconv.Atoi(c.DefaultQuery("min_matches", strconv.Itoa(h.defaultMinMatches)))
	if err != nil || minMatches < 0 {
		minMatches = h.defaultMinMatches
	}
	limit := clampLimit(c.DefaultQuery("limit", "50"))

	projects, err := h.leaderboardService.EloLeaderboard(c.Request.Context(), minMatches, limit)
	if err != nil {
		h.logger.WithError(err).Error("EloLeaderboard failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		items = append(items, gin.H{
			"id":            p.ID,
			"external_id":   p.ExternalID,
			"name":          p.Name,
			"category":      p.Category,
			"elo_rating":    service.Round1(p.EloRating),
			"matches_count": p.EloMatchesCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

// projectJSON 配对接口的项目摘要
func projectJSON(p *model.Project) gin.H {
	return gin.H{
		"id":             p.ID,
		"external_id":    p.ExternalID,
		"name":           p.Name,
		"category":       p.Category,
		"description":    p.Description,
		"screenshot_url": p.ScreenshotURL,
		"demo_url":       p.DemoURL,
		"code_url":       p.CodeURL,
	}
}

// clampLimit 排行榜条数限制在 1-200
func clampLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 50
	}
	if limit < 1 {
		return 1
	}
	if limit > 200 {
		return 200
	}
	return limit
}
