package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ShipRank/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsService 负责项目评分统计（人数与中位数）的全量重算。
// 结果只取决于当前全部评分，不依赖增量，重复或乱序执行都收敛到同一结果。
type StatsService struct {
	logger   *logrus.Logger
	projects repository.ProjectRepository
	ratings  repository.RatingRepository
}

// NewStatsService 创建 StatsService
func NewStatsService(db *gorm.DB, logger *logrus.Logger) *StatsService {
	return NewStatsServiceWithDeps(repository.NewProjectRepository(db), repository.NewRatingRepository(db), logger)
}

// NewStatsServiceWithDeps 创建 StatsService，支持注入仓储实现
func NewStatsServiceWithDeps(projects repository.ProjectRepository, ratings repository.RatingRepository, logger *logrus.Logger) *StatsService {
	return &StatsService{
		logger:   logger,
		projects: projects,
		ratings:  ratings,
	}
}

// Recompute 重算一个项目的评分统计并写回。
// 项目已被删除时直接跳过，不算失败。
func (s *StatsService) Recompute(ctx context.Context, projectID uint64) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WithField("project_id", projectID).Warn("项目不存在，跳过统计重算")
			return nil
		}
		return fmt.Errorf("查询项目失败: %w", err)
	}

	totals, err := s.ratings.ListTotalScores(ctx, projectID)
	if err != nil {
		return fmt.Errorf("查询评分总分失败: %w", err)
	}

	count := len(totals)
	var median *float64
	if count > 0 {
		m := medianOf(totals)
		median = &m
	}

	if err := s.projects.UpdateRatingStats(ctx, projectID, count, median); err != nil {
		return fmt.Errorf("写回评分统计失败: %w", err)
	}

	entry := s.logger.WithFields(logrus.Fields{"project_id": projectID, "count": count})
	if median != nil {
		entry = entry.WithField("median", *median)
	}
	entry.Info("评分统计已更新")
	return nil
}

// medianOf 升序排序后取中位数：奇数个取中间值，偶数个取中间两值的均值
func medianOf(totals []int) float64 {
	scores := make([]int, len(totals))
	copy(scores, totals)
	sort.Ints(scores)

	n := len(scores)
	if n%2 == 1 {
		return float64(scores[n/2])
	}
	return float64(scores[n/2-1]+scores[n/2]) / 2.0
}
