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

	"github.com/google/uuid"
)

const (
	ActionDo     = 1
	ActionCancel = 2

	actionCountTTL = 10 * time.Minute

	reportAutoHideThreshold = 10
)

type BattleActionService interface {
	LikeBattle(ctx context.Context, userID, battleID uint64, action int) error
	ShareBattle(ctx context.Context, userID, battleID uint64, platform string) error
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	ListComments(ctx context.Context, battleID uint64, limit, offset int) ([]*dto.CommentDTO, error)
	GetActionState(ctx context.Context, userID, battleID uint64) (*dto.BattleActionStateDTO, error)
	ReportBattle(ctx context.Context, battleID uint64) error
}

type battleActionServiceImpl struct {
	actionRepo repository.BattleActionRepo
	battleRepo repository.BattleRepo
	userRepo   repository.UserRepo
	metricSvc  BattleMetricService
}

func NewBattleActionService(
	actionRepo repository.BattleActionRepo,
	battleRepo repository.BattleRepo,
	userRepo repository.UserRepo,
	metricSvc BattleMetricService,
) BattleActionService {
	return &battleActionServiceImpl{
		actionRepo: actionRepo,
		battleRepo: battleRepo,
		userRepo:   userRepo,
		metricSvc:  metricSvc,
	}
}

func (s *battleActionServiceImpl) LikeBattle(ctx context.Context, userID, battleID uint64, action int) error {
	if err := s.ensureBattle(ctx, battleID); err != nil {
		return err
	}

	switch action {
	case ActionDo:
		err := s.actionRepo.CreateLike(ctx, &model.BattleLike{UserID: userID, BattleID: battleID})
		if err != nil {
			if isDuplicateError(err) {
				return ErrActionDuplicate
			}
			return err
		}
	case ActionCancel:
		exists, err := s.actionRepo.CheckLikeExists(ctx, userID, battleID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrActionDuplicate
		}
		if err = s.actionRepo.DeleteLike(ctx, userID, battleID); err != nil {
			return err
		}
	default:
		return ErrParamInvalid
	}

	s.refreshCounts(ctx, battleID)
	return nil
}

func (s *battleActionServiceImpl) ShareBattle(ctx context.Context, userID, battleID uint64, platform string) error {
	if err := s.ensureBattle(ctx, battleID); err != nil {
		return err
	}
	if platform == "" {
		platform = "internal"
	}

	err := s.actionRepo.CreateShare(ctx, &model.BattleShare{
		UserID:   userID,
		BattleID: battleID,
		Platform: platform,
	})
	if err != nil {
		return err
	}

	s.refreshCounts(ctx, battleID)
	return nil
}

func (s *battleActionServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	if err := s.ensureBattle(ctx, req.BattleID); err != nil {
		return nil, err
	}

	// 仅支持一层回复，父评论本身不能再是回复
	if req.ParentID != 0 {
		parent, err := s.actionRepo.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.BattleID != req.BattleID {
			return nil, ErrCommentNotFound
		}
		if parent.ParentID != 0 {
			return nil, ErrCommentNested
		}
	}

	comment := &model.BattleComment{
		BattleID: req.BattleID,
		UserID:   userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := s.actionRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.refreshCounts(ctx, req.BattleID)
	return s.convertComment(ctx, comment, false), nil
}

func (s *battleActionServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.actionRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}

	if comment.UserID != userID {
		operator, err := s.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		if operator == nil || !operator.IsStaff {
			return ErrPermissionDenied
		}
	}

	if err = s.actionRepo.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.refreshCounts(ctx, comment.BattleID)
	return nil
}

func (s *battleActionServiceImpl) ListComments(ctx context.Context, battleID uint64, limit, offset int) ([]*dto.CommentDTO, error) {
	if limit <= 0 {
		limit = consts.DefaultFeedLimit
	}

	comments, err := s.actionRepo.ListRootComments(ctx, battleID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.CommentDTO, 0, len(comments))
	for _, comment := range comments {
		out = append(out, s.convertComment(ctx, comment, true))
	}
	return out, nil
}

// GetActionState 互动计数优先读缓存，未命中回源后写回
func (s *battleActionServiceImpl) GetActionState(ctx context.Context, userID, battleID uint64) (*dto.BattleActionStateDTO, error) {
	if err := s.ensureBattle(ctx, battleID); err != nil {
		return nil, err
	}

	state := &dto.BattleActionStateDTO{}
	var err error
	state.LikeCount, err = s.cachedCount(ctx, consts.BattleLikeCountKey, battleID, s.actionRepo.CountLikesByBattle)
	if err != nil {
		return nil, err
	}
	state.ShareCount, err = s.cachedCount(ctx, consts.BattleShareCountKey, battleID, s.actionRepo.CountSharesByBattle)
	if err != nil {
		return nil, err
	}
	state.CommentCount, err = s.cachedCount(ctx, consts.BattleCommentCountKey, battleID, s.actionRepo.CountCommentsByBattle)
	if err != nil {
		return nil, err
	}

	if userID != 0 {
		state.IsLiked, err = s.actionRepo.CheckLikeExists(ctx, userID, battleID)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ReportBattle 举报计数在 redis 累加，达到阈值时抢锁下架，锁保证只有一个请求执行
func (s *battleActionServiceImpl) ReportBattle(ctx context.Context, battleID uint64) error {
	if err := s.ensureBattle(ctx, battleID); err != nil {
		return err
	}

	key := consts.BattleReportKey + strconv.FormatUint(battleID, 10)
	if err := redis.Incr(ctx, key); err != nil {
		return err
	}
	count, err := redis.GetInt64(ctx, key)
	if err != nil {
		return err
	}
	if count < reportAutoHideThreshold {
		return nil
	}

	lockKey := consts.ReportLock + strconv.FormatUint(battleID, 10)
	lockValue := uuid.NewString()
	locked, err := redis.TryLock(ctx, lockKey, lockValue, time.Minute, 0)
	if err != nil || !locked {
		return err
	}
	defer redis.UnLock(ctx, lockKey, lockValue)

	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if battle == nil || !battle.IsActive {
		return nil
	}

	battle.IsActive = false
	if err = s.battleRepo.UpdateBattle(ctx, battle); err != nil {
		return err
	}
	log.WarnContext(ctx, "battle auto hidden by reports", "battle_id", battleID, "report_count", count)
	return nil
}

func (s *battleActionServiceImpl) ensureBattle(ctx context.Context, battleID uint64) error {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if battle == nil {
		return ErrBattleNotFound
	}
	return nil
}

func (s *battleActionServiceImpl) cachedCount(ctx context.Context, prefix string, battleID uint64, loader func(context.Context, uint64) (int64, error)) (int64, error) {
	key := prefix + strconv.FormatUint(battleID, 10)
	if count, err := redis.GetInt64(ctx, key); err == nil {
		return count, nil
	}

	count, err := loader(ctx, battleID)
	if err != nil {
		return 0, err
	}
	if err = redis.SetWithExpiration(ctx, key, count, actionCountTTL); err != nil {
		log.WarnContext(ctx, "set action count cache error", "key", key, "err", err)
	}
	return count, nil
}

// refreshCounts 互动变化后清计数缓存并回填对战计数
func (s *battleActionServiceImpl) refreshCounts(ctx context.Context, battleID uint64) {
	id := strconv.FormatUint(battleID, 10)
	for _, prefix := range []string{consts.BattleLikeCountKey, consts.BattleShareCountKey, consts.BattleCommentCountKey} {
		if err := redis.DeleteKey(ctx, prefix+id); err != nil {
			log.WarnContext(ctx, "delete action count cache error", "battle_id", battleID, "err", err)
		}
	}

	if err := s.metricSvc.RecomputeBattle(ctx, battleID); err != nil {
		log.ErrorContext(ctx, "recompute battle metrics error", "battle_id", battleID, "err", err)
	}
}

func (s *battleActionServiceImpl) convertComment(ctx context.Context, comment *model.BattleComment, withReplies bool) *dto.CommentDTO {
	out := &dto.CommentDTO{
		ID:         comment.ID,
		BattleID:   comment.BattleID,
		UserID:     comment.UserID,
		Content:    comment.Content,
		ParentID:   comment.ParentID,
		LikesCount: comment.LikesCount,
		CreatedAt:  comment.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if user, err := s.userRepo.GetUserByID(ctx, comment.UserID); err == nil && user != nil && user.Username != nil {
		out.Username = *user.Username
	}

	if withReplies && comment.ParentID == 0 {
		replies, err := s.actionRepo.ListReplies(ctx, comment.ID, consts.DefaultFeedLimit, 0)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WarnContext(ctx, "list comment replies error", "comment_id", comment.ID, "err", err)
		}
		for _, reply := range replies {
			out.Replies = append(out.Replies, s.convertComment(ctx, reply, false))
		}
	}
	return out
}
