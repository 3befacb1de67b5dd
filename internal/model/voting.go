package model

import (
	"time"
)

// EloMatch 对应 elo_matches 表，记录一次两两对比投票的审计数据。
// 行创建后不再修改；(user_id, winner, loser) 精确有序三元组唯一，
// 反向组合视为另一场对战。
type EloMatch struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MatchUUID          string    `gorm:"column:match_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	UserID             uint64    `gorm:"column:user_id;type:bigint;not null;uniqueIndex:uk_user_winner_loser;comment:投票用户ID"`
	WinnerProjectID    uint64    `gorm:"column:winner_project_id;type:bigint;not null;uniqueIndex:uk_user_winner_loser;index;comment:胜者项目ID"`
	LoserProjectID     uint64    `gorm:"column:loser_project_id;type:bigint;not null;uniqueIndex:uk_user_winner_loser;index;comment:败者项目ID"`
	WinnerRatingBefore float64   `gorm:"column:winner_rating_before;type:numeric(10,4);not null;comment:胜者赛前评分"`
	LoserRatingBefore  float64   `gorm:"column:loser_rating_before;type:numeric(10,4);not null;comment:败者赛前评分"`
	WinnerRatingAfter  float64   `gorm:"column:winner_rating_after;type:numeric(10,4);not null;comment:胜者赛后评分"`
	LoserRatingAfter   float64   `gorm:"column:loser_rating_after;type:numeric(10,4);not null;comment:败者赛后评分"`
	CreatedAt          time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

// ProjectRating 对应 project_ratings 表，一个用户对一个项目的三维评分。
// (user_id, project_id) 唯一，重复提交原地覆盖，不保留历史。
type ProjectRating struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserID      uint64    `gorm:"column:user_id;type:bigint;not null;uniqueIndex:uk_user_project;comment:评分用户ID"`
	ProjectID   uint64    `gorm:"column:project_id;type:bigint;not null;uniqueIndex:uk_user_project;index;comment:被评项目ID"`
	Originality int       `gorm:"column:originality;type:int;not null;comment:原创性 1-5"`
	Technical   int       `gorm:"column:technical;type:int;not null;comment:技术性 1-5"`
	Usability   int       `gorm:"column:usability;type:int;not null;comment:可用性 1-5"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// TotalScore 三个维度之和，取值范围 3-15。
func (r *ProjectRating) TotalScore() int {
	return r.Originality + r.Technical + r.Usability
}

func (EloMatch) TableName() string      { return "elo_matches" }
func (ProjectRating) TableName() string { return "project_ratings" }
