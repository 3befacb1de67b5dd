package repository

import (
	"context"
	"time"

	"ShipRank/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository 分类评分持久化
type RatingRepository interface {
	// Upsert 按 (user_id, project_id) 覆盖写入评分，不保留历史
	Upsert(ctx context.Context, rating *model.ProjectRating) error
	// GetByUserAndProject 查询某用户对某项目的评分，不存在返回 gorm.ErrRecordNotFound
	GetByUserAndProject(ctx context.Context, userID, projectID uint64) (*model.ProjectRating, error)
	// ListTotalScores 返回某项目全部评分的总分（三维之和），供中位数重算用
	ListTotalScores(ctx context.Context, projectID uint64) ([]int, error)
	// Count 评分总数
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建 RatingRepository 实例
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert 冲突时原地更新三个分数
func (r *ratingRepository) Upsert(ctx context.Context, rating *model.ProjectRating) error {
	now := time.Now()
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}
	rating.UpdatedAt = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"originality", "technical", "usability", "updated_at"}),
	}).Create(rating).Error
}

// GetByUserAndProject 查询某用户对某项目的评分
func (r *ratingRepository) GetByUserAndProject(ctx context.Context, userID, projectID uint64) (*model.ProjectRating, error) {
	var rating model.ProjectRating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListTotalScores 总分在数据库侧求和，减少一次模型扫描
func (r *ratingRepository) ListTotalScores(ctx context.Context, projectID uint64) ([]int, error) {
	var totals []int
	if err := r.db.WithContext(ctx).Model(&model.ProjectRating{}).
		Where("project_id = ?", projectID).
		Pluck("originality + technical + usability", &totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

// Count 评分总数
func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ProjectRating{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
