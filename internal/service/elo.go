package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ShipRank/internal/model"
	"ShipRank/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EloService 处理两两对比投票：校验、在单事务内更新双方评分并写入审计行
type EloService struct {
	logger   *logrus.Logger
	projects repository.ProjectRepository
	matches  repository.MatchRepository
	kFactor  float64
}

// NewEloService 创建 EloService
func NewEloService(db *gorm.DB, logger *logrus.Logger, kFactor float64) *EloService {
	return NewEloServiceWithDeps(repository.NewProjectRepository(db), repository.NewMatchRepository(db), logger, kFactor)
}

// NewEloServiceWithDeps 创建 EloService，支持注入仓储实现
func NewEloServiceWithDeps(projects repository.ProjectRepository, matches repository.MatchRepository, logger *logrus.Logger, kFactor float64) *EloService {
	if kFactor <= 0 {
		kFactor = 32
	}
	return &EloService{
		logger:   logger,
		projects: projects,
		matches:  matches,
		kFactor:  kFactor,
	}
}

// RecordVote 记录一次 winner 胜 loser 的投票。
// 校验失败返回 ErrInvalidVote / ErrDuplicateVote / ErrProjectNotFound；
// 成功返回含赛前赛后评分的审计行。
func (s *EloService) RecordVote(ctx context.Context, voter *model.User, winnerID, loserID uint64) (*model.EloMatch, error) {
	if winnerID == loserID {
		return nil, ErrInvalidVote
	}

	exists, err := s.matches.Exists(ctx, voter.ID, winnerID, loserID)
	if err != nil {
		return nil, fmt.Errorf("查询历史对战失败: %w", err)
	}
	if exists {
		return nil, ErrDuplicateVote
	}

	match, err := s.projects.RecordMatchResult(ctx, winnerID, loserID, func(winner, loser *model.Project) (*model.EloMatch, error) {
		winnerBefore := winner.EloRating
		loserBefore := loser.EloRating

		expectedWinner := ExpectedScore(winnerBefore, loserBefore)
		expectedLoser := 1.0 - expectedWinner

		winnerAfter := winnerBefore + s.kFactor*(1.0-expectedWinner)
		loserAfter := loserBefore + s.kFactor*(0.0-expectedLoser)

		return &model.EloMatch{
			MatchUUID:          uuid.NewString(),
			UserID:             voter.ID,
			WinnerProjectID:    winner.ID,
			LoserProjectID:     loser.ID,
			WinnerRatingBefore: winnerBefore,
			LoserRatingBefore:  loserBefore,
			WinnerRatingAfter:  winnerAfter,
			LoserRatingAfter:   loserAfter,
			CreatedAt:          time.Now(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		// 唯一索引兜底：并发下 Exists 预检查可能漏掉同时提交的重复投票
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVote
		}
		return nil, fmt.Errorf("投票事务失败: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"match_uuid": match.MatchUUID,
		"user_id":    voter.ID,
		"winner_id":  winnerID,
		"loser_id":   loserID,
	}).Info("投票已记录")

	return match, nil
}

// ExpectedScore ELO 期望得分：rating_a 对 rating_b 的预测胜率
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// Round1 保留一位小数，用于对外展示评分
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
