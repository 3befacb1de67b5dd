package service

import (
	"context"
	"errors"
	"fmt"

	"ShipRank/internal/model"
	"ShipRank/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecalcScheduler 评分统计重算任务的投递口。实现方是后台任务队列，
// 投递失败（队列满）返回 false，不阻塞请求路径。
type RecalcScheduler interface {
	Enqueue(projectID uint64) bool
}

// RatingService 处理三维分类评分的提交与查询
type RatingService struct {
	logger   *logrus.Logger
	projects repository.ProjectRepository
	ratings  repository.RatingRepository
	recalc   RecalcScheduler
}

// NewRatingService 创建 RatingService。recalc 为 nil 时不触发后台重算（仅测试用）
func NewRatingService(db *gorm.DB, logger *logrus.Logger, recalc RecalcScheduler) *RatingService {
	return NewRatingServiceWithDeps(repository.NewProjectRepository(db), repository.NewRatingRepository(db), logger, recalc)
}

// NewRatingServiceWithDeps 创建 RatingService，支持注入仓储实现
func NewRatingServiceWithDeps(projects repository.ProjectRepository, ratings repository.RatingRepository, logger *logrus.Logger, recalc RecalcScheduler) *RatingService {
	return &RatingService{
		logger:   logger,
		projects: projects,
		ratings:  ratings,
		recalc:   recalc,
	}
}

// SubmitRating 覆盖写入投票人对项目的三维评分并触发后台统计重算。
// 自己的项目返回 ErrSelfRating，分数越界返回 ErrInvalidScore。
func (s *RatingService) SubmitRating(ctx context.Context, voter *model.User, projectID uint64, originality, technical, usability int) (*model.ProjectRating, error) {
	if !scoreInRange(originality) || !scoreInRange(technical) || !scoreInRange(usability) {
		return nil, ErrInvalidScore
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}
	if project.OwnerEmail == voter.Email {
		return nil, ErrSelfRating
	}

	rating := &model.ProjectRating{
		UserID:      voter.ID,
		ProjectID:   project.ID,
		Originality: originality,
		Technical:   technical,
		Usability:   usability,
	}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("写入评分失败: %w", err)
	}

	// 写入已提交，重算异步执行；队列满只记日志，下一次提交会再触发
	if s.recalc != nil && !s.recalc.Enqueue(project.ID) {
		s.logger.WithField("project_id", project.ID).Warn("重算队列已满，此次评分统计延后更新")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     voter.ID,
		"project_id":  project.ID,
		"total_score": rating.TotalScore(),
	}).Info("评分已提交")

	return rating, nil
}

// GetRating 返回投票人对项目的评分（可能不存在，此时 rating 为 nil）
// 以及项目当前的统计聚合，供前端展示上下文。
func (s *RatingService) GetRating(ctx context.Context, voter *model.User, projectID uint64) (*model.ProjectRating, *model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("查询项目失败: %w", err)
	}

	rating, err := s.ratings.GetByUserAndProject(ctx, voter.ID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project, nil
		}
		return nil, nil, fmt.Errorf("查询评分失败: %w", err)
	}
	return rating, project, nil
}

func scoreInRange(score int) bool {
	return score >= 1 && score <= 5
}
