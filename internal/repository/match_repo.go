package repository

import (
	"context"

	"ShipRank/internal/model"

	"gorm.io/gorm"
)

// MatchRepository 对战审计行的只读查询。插入发生在 ProjectRepository 的投票事务内，
// 这里不提供写接口。
type MatchRepository interface {
	// Exists 精确有序三元组 (user, winner, loser) 是否已投过票
	Exists(ctx context.Context, userID, winnerProjectID, loserProjectID uint64) (bool, error)
	// Count 对战总数
	Count(ctx context.Context) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository 创建 MatchRepository 实例
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// Exists 精确有序三元组是否已存在，反向组合不算重复
func (r *matchRepository) Exists(ctx context.Context, userID, winnerProjectID, loserProjectID uint64) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.EloMatch{}).
		Where("user_id = ? AND winner_project_id = ? AND loser_project_id = ?",
			userID, winnerProjectID, loserProjectID).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// Count 对战总数
func (r *matchRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.EloMatch{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
