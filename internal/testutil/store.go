// Package testutil 提供仓储接口的内存实现，供 service 与 api 的单元测试复用，
// 不依赖真实 PostgreSQL。RecordMatchResult 用互斥锁串行化，
// 模拟数据库行锁下投票事务的可串行化语义。
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"ShipRank/internal/model"

	"gorm.io/gorm"
)

// MemStore 全部仓储接口的内存实现
type MemStore struct {
	mu       sync.Mutex
	projects map[uint64]*model.Project
	users    map[uint64]*model.User
	matches  []*model.EloMatch
	ratings  map[string]*model.ProjectRating

	nextProjectID uint64
	nextUserID    uint64
	nextRowID     uint64
}

// NewMemStore 创建空的 MemStore
func NewMemStore() *MemStore {
	return &MemStore{
		projects: make(map[uint64]*model.Project),
		users:    make(map[uint64]*model.User),
		ratings:  make(map[string]*model.ProjectRating),
	}
}

// AddUser 写入一个用户并分配ID
func (s *MemStore) AddUser(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u.ID = s.nextUserID
	s.users[u.ID] = u
	return u
}

// AddProject 写入一个项目并分配ID，未设置的ELO评分按 1500 兜底
func (s *MemStore) AddProject(p *model.Project) *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProjectID++
	p.ID = s.nextProjectID
	if p.EloRating == 0 {
		p.EloRating = 1500
	}
	s.projects[p.ID] = p
	return p
}

// MatchCount 已记录的对战行数
func (s *MemStore) MatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// RatingRows 已存储的评分行数
func (s *MemStore) RatingRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

// GetByID 实现 ProjectRepository
func (s *MemStore) GetByID(ctx context.Context, id uint64) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

// PickRandomEligible 实现 ProjectRepository
func (s *MemStore) PickRandomEligible(ctx context.Context, excludeOwnerEmail string, excludedCategories []string, maxMatches, limit int) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := make(map[string]bool, len(excludedCategories))
	for _, c := range excludedCategories {
		excluded[c] = true
	}
	var eligible []*model.Project
	for _, p := range s.projects {
		if p.OwnerEmail == excludeOwnerEmail || excluded[p.Category] || p.EloMatchesCount >= maxMatches {
			continue
		}
		cp := *p
		eligible = append(eligible, &cp)
	}
	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

// RecordMatchResult 实现 ProjectRepository，整体持锁模拟事务内行锁
func (s *MemStore) RecordMatchResult(ctx context.Context, winnerID, loserID uint64, apply func(winner, loser *model.Project) (*model.EloMatch, error)) (*model.EloMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	winner, ok := s.projects[winnerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loser, ok := s.projects[loserID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	match, err := apply(winner, loser)
	if err != nil {
		return nil, err
	}
	// 唯一索引兜底：同一用户的精确有序三元组不允许第二行
	for _, m := range s.matches {
		if m.UserID == match.UserID && m.WinnerProjectID == winnerID && m.LoserProjectID == loserID {
			return nil, gorm.ErrDuplicatedKey
		}
	}

	winner.EloRating = match.WinnerRatingAfter
	winner.EloMatchesCount++
	loser.EloRating = match.LoserRatingAfter
	loser.EloMatchesCount++

	s.nextRowID++
	match.ID = s.nextRowID
	s.matches = append(s.matches, match)
	return match, nil
}

// UpdateRatingStats 实现 ProjectRepository
func (s *MemStore) UpdateRatingStats(ctx context.Context, projectID uint64, count int, median *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil
	}
	p.RatingsCount = count
	p.RatingsMedian = median
	return nil
}

// EloLeaderboard 实现 ProjectRepository
func (s *MemStore) EloLeaderboard(ctx context.Context, minMatches, limit int) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []*model.Project
	for _, p := range s.projects {
		if p.EloMatchesCount >= minMatches {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EloRating > list[j].EloRating })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// RatingLeaderboard 实现 ProjectRepository
func (s *MemStore) RatingLeaderboard(ctx context.Context, minRatings, limit int) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var list []*model.Project
	for _, p := range s.projects {
		if p.RatingsMedian != nil && p.RatingsCount >= minRatings {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if *list[i].RatingsMedian != *list[j].RatingsMedian {
			return *list[i].RatingsMedian > *list[j].RatingsMedian
		}
		return list[i].RatingsCount > list[j].RatingsCount
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// CountWithMatches 实现 ProjectRepository
func (s *MemStore) CountWithMatches(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, p := range s.projects {
		if p.EloMatchesCount > 0 {
			total++
		}
	}
	return total, nil
}

// CountWithRatings 实现 ProjectRepository
func (s *MemStore) CountWithRatings(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, p := range s.projects {
		if p.RatingsCount > 0 {
			total++
		}
	}
	return total, nil
}

// Exists 实现 MatchRepository
func (s *MemStore) Exists(ctx context.Context, userID, winnerProjectID, loserProjectID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.UserID == userID && m.WinnerProjectID == winnerProjectID && m.LoserProjectID == loserProjectID {
			return true, nil
		}
	}
	return false, nil
}

// Count 实现 MatchRepository（对战总数）。评分总数见 RatingView.Count
func (s *MemStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matches)), nil
}

// RatingView 以 MemStore 为底实现 RatingRepository：
// Count 语义切换为评分总数，其余方法直接复用
type RatingView struct {
	*MemStore
}

// Count 评分总数
func (v RatingView) Count(ctx context.Context) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int64(len(v.ratings)), nil
}

// Upsert 实现 RatingRepository
func (s *MemStore) Upsert(ctx context.Context, rating *model.ProjectRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey(rating.UserID, rating.ProjectID)
	if existing, ok := s.ratings[key]; ok {
		existing.Originality = rating.Originality
		existing.Technical = rating.Technical
		existing.Usability = rating.Usability
		existing.UpdatedAt = time.Now()
		rating.ID = existing.ID
		return nil
	}
	s.nextRowID++
	rating.ID = s.nextRowID
	cp := *rating
	s.ratings[key] = &cp
	return nil
}

// GetByUserAndProject 实现 RatingRepository
func (s *MemStore) GetByUserAndProject(ctx context.Context, userID, projectID uint64) (*model.ProjectRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[ratingKey(userID, projectID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

// ListTotalScores 实现 RatingRepository
func (s *MemStore) ListTotalScores(ctx context.Context, projectID uint64) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var totals []int
	for _, r := range s.ratings {
		if r.ProjectID == projectID {
			totals = append(totals, r.TotalScore())
		}
	}
	return totals, nil
}

// GetByAPIKey 实现 UserRepository
func (s *MemStore) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.APIKey == apiKey {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func ratingKey(userID, projectID uint64) string {
	return fmt.Sprintf("%d:%d", userID, projectID)
}
