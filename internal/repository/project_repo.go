package repository

import (
	"context"
	"time"

	"ShipRank/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository 项目聚合行持久化。ELO 字段与评分统计字段的写入口都在这里，
// 其他模块不得直接改 projects 表。
type ProjectRepository interface {
	// GetByID 通过主键获取项目
	GetByID(ctx context.Context, id uint64) (*model.Project, error)
	// PickRandomEligible 随机挑选可参与配对的项目：排除指定作者、排除分类黑名单、
	// 排除对战次数达到上限的项目
	PickRandomEligible(ctx context.Context, excludeOwnerEmail string, excludedCategories []string, maxMatches, limit int) ([]*model.Project, error)
	// RecordMatchResult 在单个事务内完成一次投票落库：按 id 升序对两行加排他锁，
	// 调用 apply 计算赛后评分，更新两个项目并插入对战审计行。apply 返回错误则整体回滚。
	RecordMatchResult(ctx context.Context, winnerID, loserID uint64, apply func(winner, loser *model.Project) (*model.EloMatch, error)) (*model.EloMatch, error)
	// UpdateRatingStats 写回评分统计（人数与中位数），median 为 nil 表示清空
	UpdateRatingStats(ctx context.Context, projectID uint64, count int, median *float64) error
	// EloLeaderboard 按 ELO 评分倒序的排行榜，过滤对战次数不足的项目
	EloLeaderboard(ctx context.Context, minMatches, limit int) ([]*model.Project, error)
	// RatingLeaderboard 按中位数倒序（同分按评分人数倒序）的排行榜
	RatingLeaderboard(ctx context.Context, minRatings, limit int) ([]*model.Project, error)
	// CountWithMatches 至少参与过一场对战的项目数
	CountWithMatches(ctx context.Context) (int64, error)
	// CountWithRatings 至少收到过一条评分的项目数
	CountWithRatings(ctx context.Context) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建 ProjectRepository 实例
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// GetByID 通过主键获取项目
func (r *projectRepository) GetByID(ctx context.Context, id uint64) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PickRandomEligible 随机挑选可参与配对的项目
func (r *projectRepository) PickRandomEligible(ctx context.Context, excludeOwnerEmail string, excludedCategories []string, maxMatches, limit int) ([]*model.Project, error) {
	if limit <= 0 {
		limit = 2
	}
	db := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("owner_email <> ?", excludeOwnerEmail).
		Where("elo_matches_count < ?", maxMatches)
	if len(excludedCategories) > 0 {
		db = db.Where("category NOT IN ?", excludedCategories)
	}

	var projects []*model.Project
	if err := db.Order("RANDOM()").Limit(limit).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// RecordMatchResult 单事务投票落库。两行锁按 id 升序获取，
// 保证并发投票涉及同一项目时不会互相死锁。
func (r *projectRepository) RecordMatchResult(ctx context.Context, winnerID, loserID uint64, apply func(winner, loser *model.Project) (*model.EloMatch, error)) (*model.EloMatch, error) {
	var match *model.EloMatch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pair []*model.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", []uint64{winnerID, loserID}).
			Order("id ASC").
			Find(&pair).Error; err != nil {
			return err
		}
		if len(pair) != 2 {
			return gorm.ErrRecordNotFound
		}

		winner, loser := pair[0], pair[1]
		if winner.ID != winnerID {
			winner, loser = loser, winner
		}

		m, err := apply(winner, loser)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&model.Project{}).Where("id = ?", winner.ID).
			Updates(map[string]interface{}{
				"elo_rating":        m.WinnerRatingAfter,
				"elo_matches_count": gorm.Expr("elo_matches_count + 1"),
				"updated_at":        now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", loser.ID).
			Updates(map[string]interface{}{
				"elo_rating":        m.LoserRatingAfter,
				"elo_matches_count": gorm.Expr("elo_matches_count + 1"),
				"updated_at":        now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Create(m).Error; err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

// UpdateRatingStats 写回评分统计
func (r *projectRepository) UpdateRatingStats(ctx context.Context, projectID uint64, count int, median *float64) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"ratings_count":  count,
			"ratings_median": median,
			"updated_at":     time.Now(),
		}).Error
}

// EloLeaderboard 按 ELO 评分倒序
func (r *projectRepository) EloLeaderboard(ctx context.Context, minMatches, limit int) ([]*model.Project, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var projects []*model.Project
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("elo_matches_count >= ?", minMatches).
		Order("elo_rating DESC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// RatingLeaderboard 按中位数倒序，未产生过中位数的项目不出现在榜单
func (r *projectRepository) RatingLeaderboard(ctx context.Context, minRatings, limit int) ([]*model.Project, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var projects []*model.Project
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("ratings_median IS NOT NULL AND ratings_count >= ?", minRatings).
		Order("ratings_median DESC, ratings_count DESC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// CountWithMatches 至少参与过一场对战的项目数
func (r *projectRepository) CountWithMatches(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("elo_matches_count > 0").Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountWithRatings 至少收到过一条评分的项目数
func (r *projectRepository) CountWithRatings(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("ratings_count > 0").Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
