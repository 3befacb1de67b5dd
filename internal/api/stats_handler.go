package api

import (
	"net/http"

	"ShipRank/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsHandler 投票引擎概览统计，给运营页面用
type StatsHandler struct {
	projects repository.ProjectRepository
	matches  repository.MatchRepository
	ratings  repository.RatingRepository
	logger   *logrus.Logger
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(db *gorm.DB, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		projects: repository.NewProjectRepository(db),
		matches:  repository.NewMatchRepository(db),
		ratings:  repository.NewRatingRepository(db),
		logger:   logger,
	}
}

// Overview 投票与评分的总量统计
// GET /api/v1/voting/stats
func (h *StatsHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	totalMatches, err := h.matches.Count(ctx)
	if err != nil {
		h.logger.WithError(err).Error("统计对战总数失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	totalRatings, err := h.ratings.Count(ctx)
	if err != nil {
		h.logger.WithError(err).Error("统计评分总数失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	matchedProjects, err := h.projects.CountWithMatches(ctx)
	if err != nil {
		h.logger.WithError(err).Error("统计已对战项目数失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ratedProjects, err := h.projects.CountWithRatings(ctx)
	if err != nil {
		h.logger.WithError(err).Error("统计已评分项目数失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_matches":    totalMatches,
		"total_ratings":    totalRatings,
		"matched_projects": matchedProjects,
		"rated_projects":   ratedProjects,
	})
}
