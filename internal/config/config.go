package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig `mapstructure:"postgres"` // PostgreSQL配置
	Voting   VotingConfig   `mapstructure:"voting"`   // 投票引擎配置
	Stats    StatsConfig    `mapstructure:"stats"`    // 评分统计重算配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// VotingConfig 投票引擎配置。KFactor 与 MaxMatches 对应原来散落在代码里的常量，
// 这里统一做成配置项。
type VotingConfig struct {
	KFactor            float64  `mapstructure:"k_factor"`            // ELO K系数，每场最多交换的分数
	MaxMatches         int      `mapstructure:"max_matches"`         // 单项目对战次数上限，超过后不再进入随机配对
	ExcludedCategories []string `mapstructure:"excluded_categories"` // 不参与投票的项目分类
	EloMinMatches      int      `mapstructure:"elo_min_matches"`     // ELO排行榜默认最少对战次数
	RatingMinRatings   int      `mapstructure:"rating_min_ratings"`  // 评分排行榜默认最少评分人数
}

// StatsConfig 评分统计重算任务队列配置
type StatsConfig struct {
	QueueSize  int           `mapstructure:"queue_size"`  // 任务队列缓冲大小
	Workers    int           `mapstructure:"workers"`     // 并发worker数量
	MaxRetries int           `mapstructure:"max_retries"` // 单个任务最大重试次数
	RetryDelay time.Duration `mapstructure:"retry_delay"` // 重试间隔
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// applyDefaults 关键参数兜底，避免配置缺失时引擎行为异常
func applyDefaults(cfg *Config) {
	if cfg.Voting.KFactor <= 0 {
		cfg.Voting.KFactor = 32
	}
	if cfg.Voting.MaxMatches <= 0 {
		cfg.Voting.MaxMatches = 100
	}
	if cfg.Voting.EloMinMatches <= 0 {
		cfg.Voting.EloMinMatches = 5
	}
	if cfg.Voting.RatingMinRatings <= 0 {
		cfg.Voting.RatingMinRatings = 3
	}
	if cfg.Stats.QueueSize <= 0 {
		cfg.Stats.QueueSize = 1024
	}
	if cfg.Stats.Workers <= 0 {
		cfg.Stats.Workers = 2
	}
	if cfg.Stats.MaxRetries <= 0 {
		cfg.Stats.MaxRetries = 3
	}
	if cfg.Stats.RetryDelay <= 0 {
		cfg.Stats.RetryDelay = time.Second
	}
}
