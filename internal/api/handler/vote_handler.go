package handler

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/pkg/response"
	"VoteFight/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteSvc service.VoteService
}

func NewVoteHandler(voteSvc service.VoteService) *VoteHandler {
	return &VoteHandler{
		voteSvc: voteSvc,
	}
}

// voterContext 从请求中提取投票者身份要素，指纹优先取请求体，兜底取头
func voterContext(c *gin.Context, fingerprint string) service.VoterContext {
	if fingerprint == "" {
		fingerprint = c.GetHeader("X-Fingerprint")
	}
	sessionKey, _ := c.Cookie("session_key")
	return service.VoterContext{
		UserID:      c.GetUint64("user_id"),
		IP:          c.ClientIP(),
		Fingerprint: fingerprint,
		UserAgent:   c.GetHeader("User-Agent"),
		SessionKey:  sessionKey,
	}
}

// SubmitVote 提交投票，登录与匿名共用入口
func (s *VoteHandler) SubmitVote(c *gin.Context) {
	var req dto.SubmitVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	vote, err := s.voteSvc.SubmitVote(c.Request.Context(), voterContext(c, req.Fingerprint), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, vote)
}

// CheckEligibility 预检当前身份对指定对战的投票资格
func (s *VoteHandler) CheckEligibility(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	eligibility, err := s.voteSvc.CheckEligibility(c.Request.Context(), battleID, voterContext(c, ""))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, eligibility)
}

// DeleteVote 撤销投票，仅投票作者或管理员
func (s *VoteHandler) DeleteVote(c *gin.Context) {
	voteID, err := strconv.ParseUint(c.Param("vote_id"), 10, 64)
	if err != nil || voteID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	if err = s.voteSvc.DeleteVote(c.Request.Context(), voteID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetBattleStatistics 对战票数统计
func (s *VoteHandler) GetBattleStatistics(c *gin.Context) {
	battleID, err := strconv.ParseUint(c.Param("battle_id"), 10, 64)
	if err != nil || battleID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	stats, err := s.voteSvc.GetBattleStatistics(c.Request.Context(), battleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// GetVoteHistory 当前用户的投票历史
func (s *VoteHandler) GetVoteHistory(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := s.voteSvc.GetVoteHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}
