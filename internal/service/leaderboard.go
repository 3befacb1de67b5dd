package service

import (
	"context"
	"fmt"

	"ShipRank/internal/model"
	"ShipRank/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LeaderboardService 两种排行榜的只读查询，直接读当前聚合状态，无副作用
type LeaderboardService struct {
	logger   *logrus.Logger
	projects repository.ProjectRepository
}

// NewLeaderboardService 创建 LeaderboardService
func NewLeaderboardService(db *gorm.DB, logger *logrus.Logger) *LeaderboardService {
	return NewLeaderboardServiceWithDeps(repository.NewProjectRepository(db), logger)
}

// NewLeaderboardServiceWithDeps 创建 LeaderboardService，支持注入仓储实现
func NewLeaderboardServiceWithDeps(projects repository.ProjectRepository, logger *logrus.Logger) *LeaderboardService {
	return &LeaderboardService{logger: logger, projects: projects}
}

// EloLeaderboard 按 ELO 评分倒序，过滤对战次数低于 minMatches 的项目
func (s *LeaderboardService) EloLeaderboard(ctx context.Context, minMatches, limit int) ([]*model.Project, error) {
	projects, err := s.projects.EloLeaderboard(ctx, minMatches, limit)
	if err != nil {
		return nil, fmt.Errorf("查询ELO排行榜失败: %w", err)
	}
	return projects, nil
}

// RatingLeaderboard 按中位数倒序（同分按人数倒序），过滤评分人数不足的项目
func (s *LeaderboardService) RatingLeaderboard(ctx context.Context, minRatings, limit int) ([]*model.Project, error) {
	projects, err := s.projects.RatingLeaderboard(ctx, minRatings, limit)
	if err != nil {
		return nil, fmt.Errorf("查询评分排行榜失败: %w", err)
	}
	return projects, nil
}
