package handler

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/pkg/response"
	"VoteFight/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BattleActionHandler struct {
	actionSvc service.BattleActionService
}

func NewBattleActionHandler(actionSvc service.BattleActionService) *BattleActionHandler {
	return &BattleActionHandler{
		actionSvc: actionSvc,
	}
}

// LikeBattle 点赞/取消点赞对战
func (s *BattleActionHandler) LikeBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")
	var req dto.BattleActionReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.actionSvc.LikeBattle(c.Request.Context(), userID, battleID, req.Action); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ShareBattle 记录一次分享
func (s *BattleActionHandler) ShareBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")
	var req dto.BattleShareReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.actionSvc.ShareBattle(c.Request.Context(), userID, battleID, req.Platform); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CreateComment 发表评论或回复
func (s *BattleActionHandler) CreateComment(c *gin.Context) {
	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	userID := c.GetUint64("user_id")

	comment, err := s.actionSvc.CreateComment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论，仅评论作者或管理员
func (s *BattleActionHandler) DeleteComment(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	if err = s.actionSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListComments 一级评论列表，每条附带部分回复
func (s *BattleActionHandler) ListComments(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	comments, err := s.actionSvc.ListComments(c.Request.Context(), battleID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

// GetActionState 对战详情页的互动计数和当前用户点赞状态
func (s *BattleActionHandler) GetActionState(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	state, err := s.actionSvc.GetActionState(c.Request.Context(), userID, battleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

// ReportBattle 举报对战，达到阈值自动下架
func (s *BattleActionHandler) ReportBattle(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.actionSvc.ReportBattle(c.Request.Context(), battleID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
