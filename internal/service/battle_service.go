package service

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/consts"
	"VoteFight/internal/pkg/util"
	"VoteFight/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
)

type BattleService interface {
	CreateBattle(ctx context.Context, creatorID uint64, req *dto.BattleCreateDTO) (*dto.BattleDTO, error)
	GetBattleDetail(ctx context.Context, battleID uint64) (*dto.BattleDTO, error)
	UpdateBattle(ctx context.Context, battleID, operatorID uint64, req *dto.BattleUpdateDTO) (*dto.BattleDTO, error)
	DeleteBattle(ctx context.Context, battleID, operatorID uint64) error
	ListBattles(ctx context.Context, category, status string, limit, offset int) (*dto.BattleListDTO, error)
	SetFeatured(ctx context.Context, battleID uint64, featured bool) error
}

type battleServiceImpl struct {
	battleRepo  repository.BattleRepo
	userRepo    repository.UserRepo
	trendingSvc TrendingService
}

func NewBattleService(battleRepo repository.BattleRepo, userRepo repository.UserRepo, trendingSvc TrendingService) BattleService {
	return &battleServiceImpl{
		battleRepo:  battleRepo,
		userRepo:    userRepo,
		trendingSvc: trendingSvc,
	}
}

func (s *battleServiceImpl) CreateBattle(ctx context.Context, creatorID uint64, req *dto.BattleCreateDTO) (*dto.BattleDTO, error) {
	if len(req.Elements) < consts.MinBattleElements || len(req.Elements) > consts.MaxBattleElements {
		return nil, ErrElementCount
	}
	names := make(map[string]struct{}, len(req.Elements))
	for _, e := range req.Elements {
		if _, ok := names[e.Name]; ok {
			return nil, ErrElementNameDup
		}
		names[e.Name] = struct{}{}
	}

	category := req.Category
	if category == "" {
		category = model.CategoryOther
	}
	if !model.IsValidCategory(category) {
		return nil, ErrParamInvalid
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return nil, ErrParamInvalid
		}
		deadline = &t
	}

	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	battle := &model.Battle{
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Status:      model.BattleStatusActive,
		Deadline:    deadline,
		IsActive:    true,
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Slug:        slug,
	}
	elements := make([]*model.Element, 0, len(req.Elements))
	for i, e := range req.Elements {
		elements = append(elements, &model.Element{
			Name:         e.Name,
			Description:  e.Description,
			MediaType:    e.MediaType,
			MediaURL:     e.MediaURL,
			DisplayOrder: i,
		})
	}

	if err = s.battleRepo.CreateBattle(ctx, battle, elements); err != nil {
		if isDuplicateError(err) {
			return nil, ErrElementNameDup
		}
		return nil, err
	}

	s.trendingSvc.InvalidateTrendingCache(ctx)
	return s.GetBattleDetail(ctx, battle.ID)
}

// uniqueSlug 标题生成 slug，冲突时追加序号
func (s *battleServiceImpl) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "battle"
	}
	slug := base
	for i := 1; ; i++ {
		exists, err := s.battleRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *battleServiceImpl) GetBattleDetail(ctx context.Context, battleID uint64) (*dto.BattleDTO, error) {
	battle, err := s.battleRepo.GetBattleWithElements(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, ErrBattleNotFound
	}

	if err = s.battleRepo.IncrementViews(ctx, battleID); err != nil {
		log.WarnContext(ctx, "increment battle views error", "battle_id", battleID, "err", err)
	}

	return convertBattleDTO(battle), nil
}

func (s *battleServiceImpl) UpdateBattle(ctx context.Context, battleID, operatorID uint64, req *dto.BattleUpdateDTO) (*dto.BattleDTO, error) {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, ErrBattleNotFound
	}
	if err = s.checkOperator(ctx, battle, operatorID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		battle.Title = *req.Title
	}
	if req.Description != nil {
		battle.Description = *req.Description
	}
	if req.Category != nil {
		if !model.IsValidCategory(*req.Category) {
			return nil, ErrParamInvalid
		}
		battle.Category = *req.Category
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			battle.Deadline = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.Deadline)
			if err != nil {
				return nil, ErrParamInvalid
			}
			battle.Deadline = &t
		}
	}
	if req.IsPublic != nil {
		battle.IsPublic = *req.IsPublic
	}

	if err = s.battleRepo.UpdateBattle(ctx, battle); err != nil {
		return nil, err
	}

	s.trendingSvc.InvalidateTrendingCache(ctx)
	return s.GetBattleDetail(ctx, battleID)
}

func (s *battleServiceImpl) DeleteBattle(ctx context.Context, battleID, operatorID uint64) error {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if battle == nil {
		return ErrBattleNotFound
	}
	if err = s.checkOperator(ctx, battle, operatorID); err != nil {
		return err
	}

	if err = s.battleRepo.DeleteBattle(ctx, battleID); err != nil {
		return err
	}

	s.trendingSvc.InvalidateTrendingCache(ctx)
	return nil
}

func (s *battleServiceImpl) ListBattles(ctx context.Context, category, status string, limit, offset int) (*dto.BattleListDTO, error) {
	if limit <= 0 {
		limit = consts.DefaultFeedLimit
	}
	if limit > consts.MaxFeedLimit {
		limit = consts.MaxFeedLimit
	}

	battles, err := s.battleRepo.ListBattles(ctx, category, status, true, limit+1, offset)
	if err != nil {
		return nil, err
	}

	hasMore := len(battles) > limit
	if hasMore {
		battles = battles[:limit]
	}
	list := make([]*dto.BattleDTO, 0, len(battles))
	for _, battle := range battles {
		list = append(list, convertBattleDTO(battle))
	}
	return &dto.BattleListDTO{List: list, HasMore: hasMore}, nil
}

// SetFeatured 设置或取消精选标记，管理员权限由路由层中间件保证
func (s *battleServiceImpl) SetFeatured(ctx context.Context, battleID uint64, featured bool) error {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if battle == nil {
		return ErrBattleNotFound
	}
	if battle.IsFeatured == featured {
		return nil
	}

	battle.IsFeatured = featured
	if err = s.battleRepo.UpdateBattle(ctx, battle); err != nil {
		return err
	}

	s.trendingSvc.InvalidateTrendingCache(ctx)
	return nil
}

// checkOperator 仅创建者或管理员可操作
func (s *battleServiceImpl) checkOperator(ctx context.Context, battle *model.Battle, operatorID uint64) error {
	if battle.CreatorID == operatorID {
		return nil
	}
	operator, err := s.userRepo.GetUserByID(ctx, operatorID)
	if err != nil {
		return err
	}
	if operator == nil || !operator.IsStaff {
		return ErrPermissionDenied
	}
	return nil
}

func convertBattleDTO(battle *model.Battle) *dto.BattleDTO {
	out := &dto.BattleDTO{}
	_ = copier.Copy(out, battle)
	out.CreatedAt = battle.CreatedAt.Format("2006-01-02 15:04:05")
	if battle.Deadline != nil {
		out.Deadline = util.PtrString(battle.Deadline.Format(time.RFC3339))
	}
	out.Creator = dto.CreatorDTO{ID: battle.Creator.ID}
	if battle.Creator.Username != nil {
		out.Creator.Username = *battle.Creator.Username
	}
	out.Elements = make([]*dto.ElementDTO, 0, len(battle.Elements))
	for i := range battle.Elements {
		e := &dto.ElementDTO{}
		_ = copier.Copy(e, &battle.Elements[i])
		out.Elements = append(out.Elements, e)
	}
	return out
}
