package repository

import (
	"VoteFight/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type BattleActionRepo interface {
	CreateLike(ctx context.Context, like *model.BattleLike) error
	DeleteLike(ctx context.Context, userID, battleID uint64) error
	CheckLikeExists(ctx context.Context, userID, battleID uint64) (bool, error)
	CountLikesByBattle(ctx context.Context, battleID uint64) (int64, error)

	CreateShare(ctx context.Context, share *model.BattleShare) error
	CountSharesByBattle(ctx context.Context, battleID uint64) (int64, error)

	CreateComment(ctx context.Context, comment *model.BattleComment) error
	GetCommentByID(ctx context.Context, commentID uint64) (*model.BattleComment, error)
	DeleteComment(ctx context.Context, commentID uint64) error
	ListRootComments(ctx context.Context, battleID uint64, limit, offset int) ([]*model.BattleComment, error)
	ListReplies(ctx context.Context, parentID uint64, limit, offset int) ([]*model.BattleComment, error)
	CountCommentsByBattle(ctx context.Context, battleID uint64) (int64, error)
}

type BattleActionRepoImpl struct {
	db *gorm.DB
}

func NewBattleActionRepo(db *gorm.DB) BattleActionRepo {
	return &BattleActionRepoImpl{db}
}

func (s *BattleActionRepoImpl) CreateLike(ctx context.Context, like *model.BattleLike) error {
	return s.db.WithContext(ctx).Create(like).Error
}

func (s *BattleActionRepoImpl) DeleteLike(ctx context.Context, userID, battleID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND battle_id = ?", userID, battleID).
		Delete(&model.BattleLike{}).Error
}

func (s *BattleActionRepoImpl) CheckLikeExists(ctx context.Context, userID, battleID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.BattleLike{}).
		Where("user_id = ? AND battle_id = ?", userID, battleID).
		Count(&count).Error
	return count > 0, err
}

func (s *BattleActionRepoImpl) CountLikesByBattle(ctx context.Context, battleID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.BattleLike{}).
		Where("battle_id = ?", battleID).
		Count(&count).Error
	return count, err
}

func (s *BattleActionRepoImpl) CreateShare(ctx context.Context, share *model.BattleShare) error {
	return s.db.WithContext(ctx).Create(share).Error
}

func (s *BattleActionRepoImpl) CountSharesByBattle(ctx context.Context, battleID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.BattleShare{}).
		Where("battle_id = ?", battleID).
		Count(&count).Error
	return count, err
}

func (s *BattleActionRepoImpl) CreateComment(ctx context.Context, comment *model.BattleComment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *BattleActionRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.BattleComment, error) {
	var comment model.BattleComment
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", commentID, false).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment 同时软删其下的回复
func (s *BattleActionRepoImpl) DeleteComment(ctx context.Context, commentID uint64) error {
	return s.db.WithContext(ctx).Model(&model.BattleComment{}).
		Where("(id = ? OR parent_id = ?) AND is_deleted = ?", commentID, commentID, false).
		Update("is_deleted", true).Error
}

func (s *BattleActionRepoImpl) ListRootComments(ctx context.Context, battleID uint64, limit, offset int) ([]*model.BattleComment, error) {
	var comments []*model.BattleComment
	err := s.db.WithContext(ctx).
		Where("battle_id = ? AND parent_id = ? AND is_deleted = ?", battleID, 0, false).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (s *BattleActionRepoImpl) ListReplies(ctx context.Context, parentID uint64, limit, offset int) ([]*model.BattleComment, error) {
	var comments []*model.BattleComment
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (s *BattleActionRepoImpl) CountCommentsByBattle(ctx context.Context, battleID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.BattleComment{}).
		Where("battle_id = ? AND is_deleted = ?", battleID, false).
		Count(&count).Error
	return count, err
}
