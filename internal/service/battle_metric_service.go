package service

import (
	"VoteFight/internal/repository"
	"context"
	"math"
)

// BattleMetricService 从台账全量重算对战和选项的计数，可重复执行且结果稳定
type BattleMetricService interface {
	RecomputeBattle(ctx context.Context, battleID uint64) error
}

type battleMetricServiceImpl struct {
	battleRepo  repository.BattleRepo
	elementRepo repository.ElementRepo
	voteRepo    repository.VoteRepo
	actionRepo  repository.BattleActionRepo
}

func NewBattleMetricService(
	battleRepo repository.BattleRepo,
	elementRepo repository.ElementRepo,
	voteRepo repository.VoteRepo,
	actionRepo repository.BattleActionRepo,
) BattleMetricService {
	return &battleMetricServiceImpl{
		battleRepo:  battleRepo,
		elementRepo: elementRepo,
		voteRepo:    voteRepo,
		actionRepo:  actionRepo,
	}
}

// RecomputeBattle 按各自的表重新计数，不做增量累加
func (s *battleMetricServiceImpl) RecomputeBattle(ctx context.Context, battleID uint64) error {
	votes, err := s.voteRepo.CountByBattle(ctx, battleID)
	if err != nil {
		return err
	}
	likes, err := s.actionRepo.CountLikesByBattle(ctx, battleID)
	if err != nil {
		return err
	}
	shares, err := s.actionRepo.CountSharesByBattle(ctx, battleID)
	if err != nil {
		return err
	}
	comments, err := s.actionRepo.CountCommentsByBattle(ctx, battleID)
	if err != nil {
		return err
	}

	if err = s.battleRepo.UpdateCounts(ctx, battleID, votes, likes, shares, comments); err != nil {
		return err
	}

	return s.recomputeElements(ctx, battleID, votes)
}

func (s *battleMetricServiceImpl) recomputeElements(ctx context.Context, battleID uint64, totalVotes int64) error {
	elements, err := s.elementRepo.ListByBattle(ctx, battleID)
	if err != nil {
		return err
	}
	for _, element := range elements {
		count, err := s.voteRepo.CountByElement(ctx, element.ID)
		if err != nil {
			return err
		}
		if err = s.elementRepo.UpdateVoteStats(ctx, element.ID, count, votePercentage(count, totalVotes)); err != nil {
			return err
		}
	}
	return nil
}

// votePercentage 选项得票占比，保留两位小数，总票数为 0 时为 0
func votePercentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
