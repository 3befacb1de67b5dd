package repository

import (
	"context"

	"ShipRank/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户只读查询，写入由外部登录系统负责
type UserRepository interface {
	// GetByAPIKey 通过 api_key 解析当前用户，不存在返回 gorm.ErrRecordNotFound
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByAPIKey 通过 api_key 解析当前用户
func (r *userRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
