package repository

import (
	"VoteFight/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CategoryStat 分类聚合统计
type CategoryStat struct {
	Category         string
	BattleCount      int64
	TotalVotes       int64
	AvgTrendingScore float64
}

type BattleRepo interface {
	CreateBattle(ctx context.Context, battle *model.Battle, elements []*model.Element) error
	GetBattle(ctx context.Context, id uint64) (*model.Battle, error)
	GetBattleWithElements(ctx context.Context, id uint64) (*model.Battle, error)
	UpdateBattle(ctx context.Context, battle *model.Battle) error
	DeleteBattle(ctx context.Context, id uint64) error
	ListBattles(ctx context.Context, category, status string, publicOnly bool, limit, offset int) ([]*model.Battle, error)
	ListTrending(ctx context.Context, category string, limit, offset int) ([]*model.Battle, error)
	ListTrendingByCategories(ctx context.Context, categories []string, limit int) ([]*model.Battle, error)
	ListActiveBattleIDs(ctx context.Context) ([]uint64, error)
	ListDueBattles(ctx context.Context, now time.Time) ([]*model.Battle, error)
	MarkExpired(ctx context.Context, id uint64) error
	CountActiveInCategorySince(ctx context.Context, category string, since time.Time) (int64, error)
	UpdateCounts(ctx context.Context, id uint64, votes, likes, shares, comments int64) error
	UpdateTrendingFields(ctx context.Context, id uint64, score float64, velocity, engagement int) error
	IncrementViews(ctx context.Context, id uint64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CategoryStats(ctx context.Context, since time.Time, limit int) ([]*CategoryStat, error)
	ListCategoriesByVoter(ctx context.Context, userID uint64) ([]string, error)
	ListCategoriesByCreator(ctx context.Context, userID uint64) ([]string, error)
}

type BattleRepoImpl struct {
	db *gorm.DB
}

func NewBattleRepo(db *gorm.DB) BattleRepo {
	return &BattleRepoImpl{db}
}

func (s *BattleRepoImpl) CreateBattle(ctx context.Context, battle *model.Battle, elements []*model.Element) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(battle).Error; err != nil {
			return err
		}
		for _, e := range elements {
			e.BattleID = battle.ID
		}
		return tx.Create(elements).Error
	})
}

func (s *BattleRepoImpl) GetBattle(ctx context.Context, id uint64) (*model.Battle, error) {
	var battle model.Battle
	err := s.db.WithContext(ctx).First(&battle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

func (s *BattleRepoImpl) GetBattleWithElements(ctx context.Context, id uint64) (*model.Battle, error) {
	var battle model.Battle
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		First(&battle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

func (s *BattleRepoImpl) UpdateBattle(ctx context.Context, battle *model.Battle) error {
	return s.db.WithContext(ctx).Save(battle).Error
}

// DeleteBattle 级联删除对战及其选项、投票、点赞、分享、评论
func (s *BattleRepoImpl) DeleteBattle(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("battle_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("battle_id = ?", id).Delete(&model.Element{}).Error; err != nil {
			return err
		}
		if err := tx.Where("battle_id = ?", id).Delete(&model.BattleLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("battle_id = ?", id).Delete(&model.BattleShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("battle_id = ?", id).Delete(&model.BattleComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Battle{}, id).Error
	})
}

func (s *BattleRepoImpl) ListBattles(ctx context.Context, category, status string, publicOnly bool, limit, offset int) ([]*model.Battle, error) {
	query := s.db.WithContext(ctx).Model(&model.Battle{})
	if publicOnly {
		query = query.Where("is_public = ?", true)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status = ?", model.BattleStatusActive)
	}

	var battles []*model.Battle
	err := query.
		Preload("Creator").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&battles).Error
	return battles, err
}

func (s *BattleRepoImpl) ListTrending(ctx context.Context, category string, limit, offset int) ([]*model.Battle, error) {
	query := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("status = ? AND is_active = ? AND is_public = ?", model.BattleStatusActive, true, true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var battles []*model.Battle
	err := query.
		Preload("Creator").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Order("trending_score DESC").
		Limit(limit).Offset(offset).
		Find(&battles).Error
	return battles, err
}

func (s *BattleRepoImpl) ListTrendingByCategories(ctx context.Context, categories []string, limit int) ([]*model.Battle, error) {
	query := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("status = ? AND is_active = ? AND is_public = ?", model.BattleStatusActive, true, true)
	if len(categories) > 0 {
		query = query.Where("category IN ?", categories)
	}

	var battles []*model.Battle
	err := query.
		Preload("Creator").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Order("trending_score DESC").
		Limit(limit).
		Find(&battles).Error
	return battles, err
}

func (s *BattleRepoImpl) ListActiveBattleIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("status = ? AND is_active = ?", model.BattleStatusActive, true).
		Pluck("id", &ids).Error
	return ids, err
}

// ListDueBattles 截止时间已过但仍标记为 active 的对战
func (s *BattleRepoImpl) ListDueBattles(ctx context.Context, now time.Time) ([]*model.Battle, error) {
	var battles []*model.Battle
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline <= ?", model.BattleStatusActive, now).
		Find(&battles).Error
	return battles, err
}

func (s *BattleRepoImpl) MarkExpired(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.BattleStatusExpired,
			"is_active": false,
		}).Error
}

func (s *BattleRepoImpl) CountActiveInCategorySince(ctx context.Context, category string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("category = ? AND status = ? AND is_active = ? AND created_at >= ?",
			category, model.BattleStatusActive, true, since).
		Count(&count).Error
	return count, err
}

func (s *BattleRepoImpl) UpdateCounts(ctx context.Context, id uint64, votes, likes, shares, comments int64) error {
	return s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_votes":    votes,
			"likes_count":    likes,
			"shares_count":   shares,
			"comments_count": comments,
		}).Error
}

func (s *BattleRepoImpl) UpdateTrendingFields(ctx context.Context, id uint64, score float64, velocity, engagement int) error {
	return s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"trending_score":   score,
			"vote_velocity":    velocity,
			"engagement_score": engagement,
		}).Error
}

func (s *BattleRepoImpl) IncrementViews(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (s *BattleRepoImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (s *BattleRepoImpl) CategoryStats(ctx context.Context, since time.Time, limit int) ([]*CategoryStat, error) {
	var stats []*CategoryStat
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Select("category, COUNT(id) AS battle_count, COALESCE(SUM(total_votes), 0) AS total_votes, COALESCE(AVG(trending_score), 0) AS avg_trending_score").
		Where("status = ? AND is_active = ? AND is_public = ? AND created_at >= ?",
			model.BattleStatusActive, true, true, since).
		Group("category").
		Order("total_votes DESC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}

func (s *BattleRepoImpl) ListCategoriesByVoter(ctx context.Context, userID uint64) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Table("battles").
		Joins("JOIN battle_votes ON battle_votes.battle_id = battles.id").
		Where("battle_votes.user_id = ?", userID).
		Distinct().
		Pluck("battles.category", &categories).Error
	return categories, err
}

func (s *BattleRepoImpl) ListCategoriesByCreator(ctx context.Context, userID uint64) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&model.Battle{}).
		Where("creator_id = ?", userID).
		Distinct().
		Pluck("category", &categories).Error
	return categories, err
}
