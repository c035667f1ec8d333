package handler

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/pkg/response"
	"VoteFight/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BattleHandler struct {
	battleSvc service.BattleService
}

func NewBattleHandler(battleSvc service.BattleService) *BattleHandler {
	return &BattleHandler{
		battleSvc: battleSvc,
	}
}

// CreateBattle 创建对战，需要 2-10 个选项
func (s *BattleHandler) CreateBattle(c *gin.Context) {
	var req dto.BattleCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	userID := c.GetUint64("user_id")

	battle, err := s.battleSvc.CreateBattle(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, battle)
}

// GetBattle 对战详情，访问即记一次浏览
func (s *BattleHandler) GetBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	battle, err := s.battleSvc.GetBattleDetail(c.Request.Context(), battleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, battle)
}

// UpdateBattle 更新对战，仅创建者或管理员
func (s *BattleHandler) UpdateBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.BattleUpdateDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	userID := c.GetUint64("user_id")

	battle, err := s.battleSvc.UpdateBattle(c.Request.Context(), battleID, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, battle)
}

// DeleteBattle 删除对战及其全部投票互动数据
func (s *BattleHandler) DeleteBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	if err = s.battleSvc.DeleteBattle(c.Request.Context(), battleID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// FeatureBattle 设置或取消精选标记，管理员专用
func (s *BattleHandler) FeatureBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.BattleFeatureReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err = s.battleSvc.SetFeatured(c.Request.Context(), battleID, *req.IsFeatured); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListBattles 对战分页列表，支持按分类和状态过滤
func (s *BattleHandler) ListBattles(c *gin.Context) {
	category := c.Query("category")
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := s.battleSvc.ListBattles(c.Request.Context(), category, status, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
