package service

import (
	"context"
	"fmt"

	"ShipRank/internal/config"
	"ShipRank/internal/model"
	"ShipRank/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MatchupService 为投票人挑选随机对战组合，纯读操作
type MatchupService struct {
	logger             *logrus.Logger
	projects           repository.ProjectRepository
	excludedCategories []string
	maxMatches         int
}

// NewMatchupService 创建 MatchupService
func NewMatchupService(db *gorm.DB, logger *logrus.Logger, cfg *config.VotingConfig) *MatchupService {
	return NewMatchupServiceWithDeps(repository.NewProjectRepository(db), logger, cfg)
}

// NewMatchupServiceWithDeps 创建 MatchupService，支持注入仓储实现
func NewMatchupServiceWithDeps(projects repository.ProjectRepository, logger *logrus.Logger, cfg *config.VotingConfig) *MatchupService {
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 100
	}
	return &MatchupService{
		logger:             logger,
		projects:           projects,
		excludedCategories: cfg.ExcludedCategories,
		maxMatches:         maxMatches,
	}
}

// SelectMatchup 随机返回两个互不相同的可投票项目。
// 排除投票人自己的项目、分类黑名单、对战次数达上限的项目；
// 候选不足两个时返回 ErrInsufficientCandidates。
func (s *MatchupService) SelectMatchup(ctx context.Context, voter *model.User) ([]*model.Project, error) {
	projects, err := s.projects.PickRandomEligible(ctx, voter.Email, s.excludedCategories, s.maxMatches, 2)
	if err != nil {
		return nil, fmt.Errorf("随机挑选项目失败: %w", err)
	}
	if len(projects) < 2 {
		return nil, ErrInsufficientCandidates
	}
	return projects, nil
}
