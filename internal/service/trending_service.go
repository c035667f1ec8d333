package service

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/consts"
	"VoteFight/internal/pkg/redis"
	"VoteFight/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

// 热度算法固定权重，不做运行时配置
const (
	weightVelocity   = 0.4
	weightEngagement = 0.3
	weightTotalVotes = 0.2
	weightTimeDecay  = 0.1
	weightCategory   = 0.1

	decayWindowHours   = 168 // 一周线性衰减
	decayFloor         = 0.1 // 衰减下限，保证老对战仍可排序
	velocityWindow     = 24 * time.Hour
	categoryWindowDays = 7
)

const (
	feedCacheTTL         = 5 * time.Minute
	personalizedCacheTTL = 10 * time.Minute
	categoriesCacheTTL   = 30 * time.Minute
)

type TrendingService interface {
	RecalculateBattleScore(ctx context.Context, battle *model.Battle, now time.Time) (float64, error)
	SweepTrendingScores(ctx context.Context) (int, error)
	GetTrendingBattles(ctx context.Context, category string, limit, offset int) ([]*dto.TrendingBattleDTO, error)
	GetTrendingCategories(ctx context.Context, limit int) ([]*dto.TrendingCategoryDTO, error)
	GetPersonalizedTrending(ctx context.Context, userID uint64, limit int) ([]*dto.TrendingBattleDTO, error)
	InvalidateTrendingCache(ctx context.Context)
}

type trendingServiceImpl struct {
	battleRepo repository.BattleRepo
	voteRepo   repository.VoteRepo
}

func NewTrendingService(battleRepo repository.BattleRepo, voteRepo repository.VoteRepo) TrendingService {
	return &trendingServiceImpl{
		battleRepo: battleRepo,
		voteRepo:   voteRepo,
	}
}

// RecalculateBattleScore 重算单个对战的热度分并落库，每次投票和删票后同步调用
func (s *trendingServiceImpl) RecalculateBattleScore(ctx context.Context, battle *model.Battle, now time.Time) (float64, error) {
	recentVotes, err := s.voteRepo.CountByBattleSince(ctx, battle.ID, now.Add(-velocityWindow))
	if err != nil {
		return 0, err
	}

	categoryCount, err := s.battleRepo.CountActiveInCategorySince(ctx, battle.Category, now.AddDate(0, 0, -categoryWindowDays))
	if err != nil {
		return 0, err
	}

	hours := now.Sub(battle.CreatedAt).Hours()
	score, velocity, engagement := computeTrendingScore(trendingInputs{
		RecentVotes:        recentVotes,
		HoursSinceCreation: hours,
		Likes:              battle.LikesCount,
		Shares:             battle.SharesCount,
		Comments:           battle.CommentsCount,
		Views:              battle.Views,
		TotalVotes:         battle.TotalVotes,
		CategoryFactor:     categoryTrendingFactor(categoryCount),
	})

	if err = s.battleRepo.UpdateTrendingFields(ctx, battle.ID, score, velocity, engagement); err != nil {
		return 0, err
	}

	battle.TrendingScore = score
	battle.VoteVelocity = velocity
	battle.EngagementScore = engagement
	return score, nil
}

// SweepTrendingScores 周期全量重算：先落已过期对战的状态，再刷所有活跃对战的分数。
// 调度节奏由外部 cron 决定，这里只暴露操作本身。
func (s *trendingServiceImpl) SweepTrendingScores(ctx context.Context) (int, error) {
	now := time.Now()

	due, err := s.battleRepo.ListDueBattles(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, battle := range due {
		if err = s.battleRepo.MarkExpired(ctx, battle.ID); err != nil {
			log.ErrorContext(ctx, "mark battle expired error", "battle_id", battle.ID, "err", err)
		}
	}

	ids, err := s.battleRepo.ListActiveBattleIDs(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		battle, err := s.battleRepo.GetBattle(ctx, id)
		if err != nil || battle == nil {
			continue
		}
		if _, err = s.RecalculateBattleScore(ctx, battle, now); err != nil {
			log.ErrorContext(ctx, "recalculate trending score error", "battle_id", id, "err", err)
			continue
		}
		updated++
	}

	s.InvalidateTrendingCache(ctx)
	return updated, nil
}

func (s *trendingServiceImpl) GetTrendingBattles(ctx context.Context, category string, limit, offset int) ([]*dto.TrendingBattleDTO, error) {
	key := fmt.Sprintf("%s%s:%d:%d", consts.TrendingFeedKey, category, limit, offset)

	var cached []*dto.TrendingBattleDTO
	if ok := s.loadCache(ctx, key, &cached); ok {
		return cached, nil
	}

	battles, err := s.battleRepo.ListTrending(ctx, category, limit, offset)
	if err != nil {
		return nil, err
	}

	result := convertTrendingList(battles)
	s.storeCache(ctx, key, result, feedCacheTTL)
	return result, nil
}

func (s *trendingServiceImpl) GetTrendingCategories(ctx context.Context, limit int) ([]*dto.TrendingCategoryDTO, error) {
	key := fmt.Sprintf("%s%d", consts.TrendingCategoriesKey, limit)

	var cached []*dto.TrendingCategoryDTO
	if ok := s.loadCache(ctx, key, &cached); ok {
		return cached, nil
	}

	stats, err := s.battleRepo.CategoryStats(ctx, time.Now().AddDate(0, 0, -categoryWindowDays), limit)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.TrendingCategoryDTO, 0, len(stats))
	for _, stat := range stats {
		result = append(result, &dto.TrendingCategoryDTO{
			Category:         stat.Category,
			BattleCount:      stat.BattleCount,
			TotalVotes:       stat.TotalVotes,
			AvgTrendingScore: roundScore(stat.AvgTrendingScore),
		})
	}

	s.storeCache(ctx, key, result, categoriesCacheTTL)
	return result, nil
}

// GetPersonalizedTrending 按用户投过票和创建过的分类偏好过滤热度榜
func (s *trendingServiceImpl) GetPersonalizedTrending(ctx context.Context, userID uint64, limit int) ([]*dto.TrendingBattleDTO, error) {
	key := fmt.Sprintf("%s%d:%d", consts.TrendingPersonalizedKey, userID, limit)

	var cached []*dto.TrendingBattleDTO
	if ok := s.loadCache(ctx, key, &cached); ok {
		return cached, nil
	}

	voted, err := s.battleRepo.ListCategoriesByVoter(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.battleRepo.ListCategoriesByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(voted)+len(created))
	var preferred []string
	for _, c := range append(voted, created...) {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			preferred = append(preferred, c)
		}
	}

	battles, err := s.battleRepo.ListTrendingByCategories(ctx, preferred, limit)
	if err != nil {
		return nil, err
	}

	result := convertTrendingList(battles)
	s.storeCache(ctx, key, result, personalizedCacheTTL)
	return result, nil
}

// InvalidateTrendingCache 按命名空间整体清除。不做按键依赖追踪，TTL 本身兜底陈旧度
func (s *trendingServiceImpl) InvalidateTrendingCache(ctx context.Context) {
	if err := redis.DeleteByPrefix(ctx, consts.TrendingNamespace); err != nil {
		log.WarnContext(ctx, "invalidate trending cache error", "err", err)
	}
}

func (s *trendingServiceImpl) loadCache(ctx context.Context, key string, out interface{}) bool {
	raw, err := redis.GetValue(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err = json.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}

func (s *trendingServiceImpl) storeCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = redis.SetWithExpiration(ctx, key, string(raw), ttl)
}

func convertTrendingList(battles []*model.Battle) []*dto.TrendingBattleDTO {
	result := make([]*dto.TrendingBattleDTO, 0, len(battles))
	for _, battle := range battles {
		item := &dto.TrendingBattleDTO{}
		_ = copier.Copy(item, battle)
		item.Creator = dto.CreatorDTO{ID: battle.CreatorID}
		if battle.Creator.Username != nil {
			item.Creator.Username = *battle.Creator.Username
		}
		item.Elements = make([]*dto.ElementDTO, 0, len(battle.Elements))
		for i := range battle.Elements {
			e := &dto.ElementDTO{}
			_ = copier.Copy(e, &battle.Elements[i])
			item.Elements = append(item.Elements, e)
		}
		item.CreatedAt = battle.CreatedAt.Format("2006-01-02 15:04:05")
		result = append(result, item)
	}
	return result
}

// trendingInputs 热度分计算的全部输入
type trendingInputs struct {
	RecentVotes        int64 // 近 24 小时票数
	HoursSinceCreation float64
	Likes              int64
	Shares             int64
	Comments           int64
	Views              int64
	TotalVotes         int64
	CategoryFactor     float64
}

// computeTrendingScore 纯函数计算热度分。票速按对战生命周期归一：
// 创建仅 2 小时的对战不因只有 2 小时数据而吃亏。
func computeTrendingScore(in trendingInputs) (score float64, velocity int, engagement int) {
	denominator := math.Max(1, math.Min(24, in.HoursSinceCreation))
	voteVelocity := float64(in.RecentVotes) / denominator

	engagementScore := float64(in.Likes)*2 + float64(in.Shares)*3 + float64(in.Comments)*1 + float64(in.Views)*0.1

	timeDecay := math.Max(decayFloor, 1-in.HoursSinceCreation/decayWindowHours)

	raw := voteVelocity*weightVelocity +
		engagementScore*weightEngagement +
		float64(in.TotalVotes)*weightTotalVotes +
		timeDecay*weightTimeDecay +
		in.CategoryFactor*weightCategory

	return roundScore(raw), int(voteVelocity), int(engagementScore)
}

// categoryTrendingFactor 按分类近 7 天新增活跃对战数给出动量系数
func categoryTrendingFactor(recentBattles int64) float64 {
	switch {
	case recentBattles > 10:
		return 1.2
	case recentBattles > 5:
		return 1.0
	default:
		return 0.8
	}
}

// roundScore 热度分定点存储，保留三位小数
func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
