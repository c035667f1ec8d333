package service

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/consts"
	"VoteFight/internal/pkg/redis"
	"VoteFight/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// 投票频控参数
const (
	voteCooldown      = time.Minute
	rateLimitWindow   = 5 * time.Minute
	rateLimitMaxVotes = 10

	eligibilityMemoTTL = time.Hour
)

// 投过票的身份在 redis 记一条短期否定缓存，资格预检命中时免查台账
const memoAlreadyVoted = "voted"

func eligibilityMemoKey(identityKey string, battleID uint64) string {
	return consts.VoteEligibilityKey + identityKey + ":" + strconv.FormatUint(battleID, 10)
}

type VoteService interface {
	SubmitVote(ctx context.Context, voter VoterContext, req *dto.SubmitVoteReq) (*dto.VoteDTO, error)
	CheckEligibility(ctx context.Context, battleID uint64, voter VoterContext) (*dto.EligibilityDTO, error)
	DeleteVote(ctx context.Context, voteID, requesterID uint64) error
	GetBattleStatistics(ctx context.Context, battleID uint64) (*dto.BattleStatisticsDTO, error)
	GetVoteHistory(ctx context.Context, userID uint64, limit, offset int) (*dto.VoteHistoryDTO, error)
}

type voteServiceImpl struct {
	voteRepo    repository.VoteRepo
	battleRepo  repository.BattleRepo
	elementRepo repository.ElementRepo
	userRepo    repository.UserRepo
	metricSvc   BattleMetricService
	trendingSvc TrendingService
}

func NewVoteService(
	voteRepo repository.VoteRepo,
	battleRepo repository.BattleRepo,
	elementRepo repository.ElementRepo,
	userRepo repository.UserRepo,
	metricSvc BattleMetricService,
	trendingSvc TrendingService,
) VoteService {
	return &voteServiceImpl{
		voteRepo:    voteRepo,
		battleRepo:  battleRepo,
		elementRepo: elementRepo,
		userRepo:    userRepo,
		metricSvc:   metricSvc,
		trendingSvc: trendingSvc,
	}
}

// eligibilitySnapshot 资格判定所需的台账切片，先读后算，判定本身是纯函数
type eligibilitySnapshot struct {
	HasVoted       bool
	LatestDeviceAt *time.Time // 冷却窗口内设备最近一次投票时间
	WindowCount    int64      // 滑动窗口内设备票数
	OldestInWindow *time.Time // 滑动窗口内最早一票时间
}

// eligibilityResult 判定结果，Reason 为 eligible 时 RemainingVotes 有效
type eligibilityResult struct {
	Reason         string
	Detail         int64
	RemainingVotes int64
}

func (r *eligibilityResult) Eligible() bool {
	return r.Reason == ReasonEligible
}

// evaluateEligibility 按固定顺序检查，第一个不通过的原因即为结果：
// 生命周期 → 重复投票 → 冷却 → 滑动窗口限流
func evaluateEligibility(battle *model.Battle, snap eligibilitySnapshot, now time.Time) *eligibilityResult {
	if !battle.IsVotable(now) {
		if battle.Status != model.BattleStatusActive || !battle.IsActive {
			return &eligibilityResult{Reason: ReasonBattleInactive}
		}
		return &eligibilityResult{Reason: ReasonBattleExpired}
	}

	if snap.HasVoted {
		return &eligibilityResult{Reason: ReasonAlreadyVoted}
	}

	if snap.LatestDeviceAt != nil {
		remaining := int64(voteCooldown.Seconds()) - int64(now.Sub(*snap.LatestDeviceAt).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		if remaining > 0 {
			return &eligibilityResult{Reason: ReasonCooldown, Detail: remaining}
		}
	}

	if snap.WindowCount >= rateLimitMaxVotes {
		var resetAt int64
		if snap.OldestInWindow != nil {
			resetAt = snap.OldestInWindow.Add(rateLimitWindow).Unix()
		}
		return &eligibilityResult{Reason: ReasonRateLimited, Detail: resetAt}
	}

	return &eligibilityResult{
		Reason:         ReasonEligible,
		RemainingVotes: rateLimitMaxVotes - snap.WindowCount,
	}
}

// eligibilityReasonError 原因码到哨兵错误的映射
func eligibilityReasonError(result *eligibilityResult) error {
	var sentinel error
	switch result.Reason {
	case ReasonBattleInactive:
		sentinel = ErrBattleInactive
	case ReasonBattleExpired:
		sentinel = ErrBattleExpired
	case ReasonAlreadyVoted:
		sentinel = ErrAlreadyVoted
	case ReasonCooldown:
		sentinel = ErrVoteCooldown
	case ReasonRateLimited:
		sentinel = ErrRateLimited
	default:
		return nil
	}
	return &EligibilityError{Reason: result.Reason, Detail: result.Detail, Err: sentinel}
}

// gatherSnapshot 读取判定所需的台账切片。重复投票按身份变体查询，
// 冷却和限流始终按设备维度（IP+指纹）。
func (s *voteServiceImpl) gatherSnapshot(ctx context.Context, battleID uint64, identity VoterIdentity, now time.Time) (eligibilitySnapshot, error) {
	var snap eligibilitySnapshot
	var err error

	if identity.Authenticated() {
		snap.HasVoted, err = s.voteRepo.HasVotedByUser(ctx, battleID, identity.UserID)
	} else {
		snap.HasVoted, err = s.voteRepo.HasVotedByDevice(ctx, battleID, identity.IP, identity.Fingerprint)
	}
	if err != nil {
		return snap, err
	}

	// 只要有 IP 就走设备窗口，指纹缺失按空串精确匹配，不因此放行
	if identity.IP != "" {
		latest, err := s.voteRepo.GetLatestDeviceVote(ctx, identity.IP, identity.Fingerprint, now.Add(-voteCooldown))
		if err != nil {
			return snap, err
		}
		if latest != nil {
			t := latest.CreatedAt
			snap.LatestDeviceAt = &t
		}

		windowStart := now.Add(-rateLimitWindow)
		snap.WindowCount, err = s.voteRepo.CountDeviceVotes(ctx, identity.IP, identity.Fingerprint, windowStart)
		if err != nil {
			return snap, err
		}
		oldest, err := s.voteRepo.GetOldestDeviceVote(ctx, identity.IP, identity.Fingerprint, windowStart)
		if err != nil {
			return snap, err
		}
		if oldest != nil {
			t := oldest.CreatedAt
			snap.OldestInWindow = &t
		}
	}

	return snap, nil
}

func (s *voteServiceImpl) CheckEligibility(ctx context.Context, battleID uint64, voter VoterContext) (*dto.EligibilityDTO, error) {
	identity, err := ResolveVoterIdentity(voter)
	if err != nil {
		return nil, err
	}

	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, ErrBattleNotFound
	}

	// 生命周期原因优先，只有可投的对战才吃快速否定；redis 不可用时退回台账
	now := time.Now()
	if battle.IsVotable(now) {
		if val, err := redis.GetValue(ctx, eligibilityMemoKey(identity.Key(), battleID)); err == nil && val == memoAlreadyVoted {
			return convertEligibilityDTO(&eligibilityResult{Reason: ReasonAlreadyVoted}), nil
		}
	}

	snap, err := s.gatherSnapshot(ctx, battleID, identity, now)
	if err != nil {
		return nil, err
	}

	return convertEligibilityDTO(evaluateEligibility(battle, snap, now)), nil
}

func convertEligibilityDTO(result *eligibilityResult) *dto.EligibilityDTO {
	out := &dto.EligibilityDTO{
		Eligible: result.Eligible(),
		Reason:   result.Reason,
	}
	switch result.Reason {
	case ReasonEligible:
		out.Message = "当前可以投票"
		remaining := result.RemainingVotes
		out.RemainingVotes = &remaining
	case ReasonBattleInactive:
		out.Message = ErrBattleInactive.Error()
	case ReasonBattleExpired:
		out.Message = ErrBattleExpired.Error()
	case ReasonAlreadyVoted:
		out.Message = ErrAlreadyVoted.Error()
	case ReasonCooldown:
		detail := result.Detail
		out.Message = (&EligibilityError{Reason: ReasonCooldown, Detail: detail, Err: ErrVoteCooldown}).Error()
		out.CooldownRemaining = &detail
	case ReasonRateLimited:
		detail := result.Detail
		out.Message = ErrRateLimited.Error()
		out.ResetTime = &detail
	}
	return out
}

// SubmitVote 资格检查通过后落台账。battle_id+voter_key 唯一索引保证同一身份
// 并发提交只有一个成功，落败方的 1062 冲突映射为已投票。
func (s *voteServiceImpl) SubmitVote(ctx context.Context, voter VoterContext, req *dto.SubmitVoteReq) (*dto.VoteDTO, error) {
	identity, err := ResolveVoterIdentity(voter)
	if err != nil {
		return nil, err
	}

	battle, err := s.battleRepo.GetBattle(ctx, req.BattleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, ErrBattleNotFound
	}

	element, err := s.elementRepo.GetElement(ctx, req.ElementID)
	if err != nil {
		return nil, err
	}
	if element == nil {
		return nil, ErrElementNotFound
	}
	if element.BattleID != battle.ID {
		return nil, ErrIntegrityViolation
	}

	now := time.Now()
	snap, err := s.gatherSnapshot(ctx, battle.ID, identity, now)
	if err != nil {
		return nil, err
	}
	if result := evaluateEligibility(battle, snap, now); !result.Eligible() {
		return nil, eligibilityReasonError(result)
	}

	vote := &model.Vote{
		BattleID:           battle.ID,
		ElementID:          element.ID,
		UserID:             identity.UserID,
		VoterIP:            voter.IP,
		Fingerprint:        voter.Fingerprint,
		UserAgent:          voter.UserAgent,
		SessionKey:         voter.SessionKey,
		VoterKey:           identity.Key(),
		VoteWeight:         1,
		IsVerified:         true,
		VerificationMethod: model.VerificationStandard,
		CreatedAt:          now,
	}
	if err = s.voteRepo.CreateVote(ctx, vote); err != nil {
		if isDuplicateError(err) {
			return nil, &EligibilityError{Reason: ReasonAlreadyVoted, Err: ErrAlreadyVoted}
		}
		return nil, err
	}

	s.refreshBattle(ctx, battle.ID, now)

	_ = redis.SetWithExpiration(ctx, eligibilityMemoKey(identity.Key(), battle.ID), memoAlreadyVoted, eligibilityMemoTTL)

	return &dto.VoteDTO{
		ID:        vote.ID,
		BattleID:  vote.BattleID,
		ElementID: vote.ElementID,
		CreatedAt: vote.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// DeleteVote 仅投票作者或管理员可删，删除后走和创建相同的重算链路
func (s *voteServiceImpl) DeleteVote(ctx context.Context, voteID, requesterID uint64) error {
	vote, err := s.voteRepo.GetVoteByID(ctx, voteID)
	if err != nil {
		return err
	}
	if vote == nil {
		return ErrVoteNotFound
	}

	if vote.UserID == 0 || vote.UserID != requesterID {
		requester, err := s.userRepo.GetUserByID(ctx, requesterID)
		if err != nil {
			return err
		}
		if requester == nil || !requester.IsStaff {
			return ErrPermissionDenied
		}
	}

	if err = s.voteRepo.DeleteVote(ctx, voteID); err != nil {
		return err
	}

	// 清掉否定缓存，该身份可立即重新投票
	_ = redis.DeleteKey(ctx, eligibilityMemoKey(vote.VoterKey, vote.BattleID))

	s.refreshBattle(ctx, vote.BattleID, time.Now())
	return nil
}

// refreshBattle 投票写入后的同步重算链路：计数重算 → 热度分重算 → 热度缓存失效。
// 各步骤幂等，失败留给下一次投票或周期任务补偿，不回滚已落账的票。
func (s *voteServiceImpl) refreshBattle(ctx context.Context, battleID uint64, now time.Time) {
	if err := s.metricSvc.RecomputeBattle(ctx, battleID); err != nil {
		log.ErrorContext(ctx, "recompute battle metrics error", "battle_id", battleID, "err", err)
	}

	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil || battle == nil {
		log.ErrorContext(ctx, "reload battle for trending error", "battle_id", battleID, "err", err)
		return
	}
	if _, err = s.trendingSvc.RecalculateBattleScore(ctx, battle, now); err != nil {
		log.ErrorContext(ctx, "recalculate trending score error", "battle_id", battleID, "err", err)
	}

	s.trendingSvc.InvalidateTrendingCache(ctx)
}

func (s *voteServiceImpl) GetBattleStatistics(ctx context.Context, battleID uint64) (*dto.BattleStatisticsDTO, error) {
	battle, err := s.battleRepo.GetBattleWithElements(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, ErrBattleNotFound
	}

	stats := &dto.BattleStatisticsDTO{
		BattleID:    battle.ID,
		BattleTitle: battle.Title,
		TotalVotes:  battle.TotalVotes,
		Elements:    make([]*dto.ElementStatDTO, 0, len(battle.Elements)),
	}
	for i := range battle.Elements {
		element := &battle.Elements[i]
		stats.Elements = append(stats.Elements, &dto.ElementStatDTO{
			ID:             element.ID,
			Name:           element.Name,
			VoteCount:      element.VoteCount,
			VotePercentage: element.VotePercentage,
		})
	}
	return stats, nil
}

func (s *voteServiceImpl) GetVoteHistory(ctx context.Context, userID uint64, limit, offset int) (*dto.VoteHistoryDTO, error) {
	votes, err := s.voteRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.voteRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.VoteHistoryItemDTO, 0, len(votes))
	for _, vote := range votes {
		item := &dto.VoteHistoryItemDTO{
			ID:       vote.ID,
			BattleID: vote.BattleID,
			VotedAt:  vote.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if battle, err := s.battleRepo.GetBattle(ctx, vote.BattleID); err == nil && battle != nil {
			item.BattleTitle = battle.Title
			item.BattleCategory = battle.Category
		}
		if element, err := s.elementRepo.GetElement(ctx, vote.ElementID); err == nil && element != nil {
			item.ElementName = element.Name
		}
		items = append(items, item)
	}

	return &dto.VoteHistoryDTO{
		Votes:      items,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
