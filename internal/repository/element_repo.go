package repository

import (
	"VoteFight/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ElementRepo interface {
	GetElement(ctx context.Context, id uint64) (*model.Element, error)
	ListByBattle(ctx context.Context, battleID uint64) ([]*model.Element, error)
	UpdateVoteStats(ctx context.Context, id uint64, count int64, percentage float64) error
}

type ElementRepoImpl struct {
	db *gorm.DB
}

func NewElementRepo(db *gorm.DB) ElementRepo {
	return &ElementRepoImpl{db}
}

func (s *ElementRepoImpl) GetElement(ctx context.Context, id uint64) (*model.Element, error) {
	var element model.Element
	err := s.db.WithContext(ctx).First(&element, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &element, nil
}

func (s *ElementRepoImpl) ListByBattle(ctx context.Context, battleID uint64) ([]*model.Element, error) {
	var elements []*model.Element
	err := s.db.WithContext(ctx).
		Where("battle_id = ?", battleID).
		Order("display_order ASC, created_at ASC").
		Find(&elements).Error
	return elements, err
}

func (s *ElementRepoImpl) UpdateVoteStats(ctx context.Context, id uint64, count int64, percentage float64) error {
	return s.db.WithContext(ctx).Model(&model.Element{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"vote_count":      count,
			"vote_percentage": percentage,
		}).Error
}
