package model

import (
	"time"
)

// User 对应 users 表。身份由外部登录系统维护，本服务只读，
// 通过 api_key 解析当前投票人。
type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Email     string    `gorm:"column:email;type:varchar(128);uniqueIndex;not null;comment:用户邮箱"`
	APIKey    string    `gorm:"column:api_key;type:varchar(64);uniqueIndex;not null;comment:API访问密钥"`
	Admin     bool      `gorm:"column:admin;type:boolean;default:false;comment:是否管理员"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// Project 对应 projects 表。项目条目由外部目录同步写入；
// ELO 字段仅由投票事务更新，评分统计字段仅由后台重算任务更新。
type Project struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	ExternalID      string    `gorm:"column:external_id;type:varchar(64);uniqueIndex;comment:外部目录ID"`
	Name            string    `gorm:"column:name;type:varchar(256);comment:项目名称"`
	Category        string    `gorm:"column:category;type:varchar(64);index;comment:所属活动/来源分类"`
	Description     string    `gorm:"column:description;type:text;comment:项目描述"`
	OwnerEmail      string    `gorm:"column:owner_email;type:varchar(128);index;not null;comment:项目作者邮箱"`
	ScreenshotURL   string    `gorm:"column:screenshot_url;type:varchar(512);comment:截图地址"`
	DemoURL         string    `gorm:"column:demo_url;type:varchar(512);comment:演示地址"`
	CodeURL         string    `gorm:"column:code_url;type:varchar(512);comment:代码仓库地址"`
	EloRating       float64   `gorm:"column:elo_rating;type:numeric(10,4);default:1500;comment:ELO评分"`
	EloMatchesCount int       `gorm:"column:elo_matches_count;type:int;default:0;comment:已参与对战次数"`
	RatingsCount    int       `gorm:"column:ratings_count;type:int;default:0;comment:分类评分人数"`
	RatingsMedian   *float64  `gorm:"column:ratings_median;type:numeric(6,2);comment:分类评分总分中位数"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

func (User) TableName() string    { return "users" }
func (Project) TableName() string { return "projects" }
