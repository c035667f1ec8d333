package repository

import (
	"VoteFight/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// VoteRepo 投票台账，只有创建和删除，没有更新
type VoteRepo interface {
	CreateVote(ctx context.Context, vote *model.Vote) error
	GetVoteByID(ctx context.Context, id uint64) (*model.Vote, error)
	DeleteVote(ctx context.Context, id uint64) error

	HasVotedByUser(ctx context.Context, battleID, userID uint64) (bool, error)
	HasVotedByDevice(ctx context.Context, battleID uint64, ip, fingerprint string) (bool, error)
	GetLatestDeviceVote(ctx context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error)
	GetOldestDeviceVote(ctx context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error)
	CountDeviceVotes(ctx context.Context, ip, fingerprint string, since time.Time) (int64, error)

	CountByBattle(ctx context.Context, battleID uint64) (int64, error)
	CountByBattleSince(ctx context.Context, battleID uint64, since time.Time) (int64, error)
	CountByElement(ctx context.Context, elementID uint64) (int64, error)

	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.Vote, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
}

type VoteRepoImpl struct {
	db *gorm.DB
}

func NewVoteRepo(db *gorm.DB) VoteRepo {
	return &VoteRepoImpl{db}
}

func (s *VoteRepoImpl) CreateVote(ctx context.Context, vote *model.Vote) error {
	return s.db.WithContext(ctx).Create(vote).Error
}

func (s *VoteRepoImpl) GetVoteByID(ctx context.Context, id uint64) (*model.Vote, error) {
	var vote model.Vote
	err := s.db.WithContext(ctx).First(&vote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (s *VoteRepoImpl) DeleteVote(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Delete(&model.Vote{}, id).Error
}

func (s *VoteRepoImpl) HasVotedByUser(ctx context.Context, battleID, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("battle_id = ? AND user_id = ?", battleID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *VoteRepoImpl) HasVotedByDevice(ctx context.Context, battleID uint64, ip, fingerprint string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("battle_id = ? AND voter_ip = ? AND fingerprint = ?", battleID, ip, fingerprint).
		Count(&count).Error
	return count > 0, err
}

// GetLatestDeviceVote 设备维度最近一次投票，用于冷却判定，无记录返回 nil
func (s *VoteRepoImpl) GetLatestDeviceVote(ctx context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error) {
	var vote model.Vote
	err := s.db.WithContext(ctx).
		Where("voter_ip = ? AND fingerprint = ? AND created_at >= ?", ip, fingerprint, since).
		Order("created_at DESC").
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetOldestDeviceVote 滑动窗口内最早的一票，用于计算限流重置时间
func (s *VoteRepoImpl) GetOldestDeviceVote(ctx context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error) {
	var vote model.Vote
	err := s.db.WithContext(ctx).
		Where("voter_ip = ? AND fingerprint = ? AND created_at >= ?", ip, fingerprint, since).
		Order("created_at ASC").
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (s *VoteRepoImpl) CountDeviceVotes(ctx context.Context, ip, fingerprint string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("voter_ip = ? AND fingerprint = ? AND created_at >= ?", ip, fingerprint, since).
		Count(&count).Error
	return count, err
}

func (s *VoteRepoImpl) CountByBattle(ctx context.Context, battleID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("battle_id = ?", battleID).
		Count(&count).Error
	return count, err
}

func (s *VoteRepoImpl) CountByBattleSince(ctx context.Context, battleID uint64, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("battle_id = ? AND created_at >= ?", battleID, since).
		Count(&count).Error
	return count, err
}

func (s *VoteRepoImpl) CountByElement(ctx context.Context, elementID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("element_id = ?", elementID).
		Count(&count).Error
	return count, err
}

func (s *VoteRepoImpl) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.Vote, error) {
	var votes []*model.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&votes).Error
	return votes, err
}

func (s *VoteRepoImpl) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
