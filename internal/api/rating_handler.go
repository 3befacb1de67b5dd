package api

import (
	"errors"
	"net/http"
	"strconv"

	"ShipRank/internal/config"
	"ShipRank/internal/metrics"
	"ShipRank/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RatingHandler 三维分类评分接口：提交、查询、排行榜
type RatingHandler struct {
	ratingService      *service.RatingService
	leaderboardService *service.LeaderboardService
	logger             *logrus.Logger
	defaultMinRatings  int
}

// NewRatingHandler 创建 RatingHandler。recalc 是后台重算队列
func NewRatingHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, recalc service.RecalcScheduler) *RatingHandler {
	return &RatingHandler{
		ratingService:      service.NewRatingService(db, logger, recalc),
		leaderboardService: service.NewLeaderboardService(db, logger),
		logger:             logger,
		defaultMinRatings:  cfg.Voting.RatingMinRatings,
	}
}

// createRatingRequest 评分提交请求体。三个分数不加 required：
// gin 会把字面量 0 当作缺失拒成 400，而 0 属于越界分数，
// 应由服务层范围校验返回 422。缺失的分数同样以 0 走 422。
type createRatingRequest struct {
	ProjectID   uint64 `json:"project_id" binding:"required"`
	Originality int    `json:"originality"`
	Technical   int    `json:"technical"`
	Usability   int    `json:"usability"`
}

// Create 提交或覆盖当前用户对项目的评分
// POST /api/v1/voting/ratings
func (h *RatingHandler) Create(c *gin.Context) {
	var req createRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	voter := CurrentUser(c)
	rating, err := h.ratingService.SubmitRating(c.Request.Context(), voter, req.ProjectID, req.Originality, req.Technical, req.Usability)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRating), errors.Is(err, service.ErrInvalidScore):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("SubmitRating failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	metrics.RatingsTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{
		"project_id":  rating.ProjectID,
		"originality": rating.Originality,
		"technical":   rating.Technical,
		"usability":   rating.Usability,
		"total_score": rating.TotalScore(),
	})
}

// Show 查询当前用户对项目的评分及项目统计聚合
// GET /api/v1/voting/ratings/:project_id
func (h *RatingHandler) Show(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("project_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id must be a number"})
		return
	}

	voter := CurrentUser(c)
	rating, project, err := h.ratingService.GetRating(c.Request.Context(), voter, projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("GetRating failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := gin.H{
		"project_id":     project.ID,
		"originality":    nil,
		"technical":      nil,
		"usability":      nil,
		"total_score":    nil,
		"project_median": project.RatingsMedian,
		"project_count":  project.RatingsCount,
	}
	if rating != nil {
		resp["originality"] = rating.Originality
		resp["technical"] = rating.Technical
		resp["usability"] = rating.Usability
		resp["total_score"] = rating.TotalScore()
	}
	c.JSON(http.StatusOK, resp)
}

// Leaderboard 评分排行榜，按中位数倒序
// GET /api/v1/voting/ratings/leaderboard?min_ratings=3&limit=50
func (h *RatingHandler) Leaderboard(c *gin.Context) {
	minRatings, err := strconv.Atoi(c.DefaultQuery("min_ratings", strconv.Itoa(h.defaultMinRatings)))
	if err != nil || minRatings < 0 {
		minRatings = h.defaultMinRatings
	}
	limit := clampLimit(c.DefaultQuery("limit", "50"))

	projects, err := h.leaderboardService.RatingLeaderboard(c.Request.Context(), minRatings, limit)
	if err != nil {
		h.logger.WithError(err).Error("RatingLeaderboard failed")
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
			"median_score":  p.RatingsMedian,
			"ratings_count": p.RatingsCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}
