package handler

import (
	"VoteFight/internal/pkg/consts"
	"VoteFight/internal/pkg/response"
	"VoteFight/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TrendingHandler struct {
	trendingSvc service.TrendingService
}

func NewTrendingHandler(trendingSvc service.TrendingService) *TrendingHandler {
	return &TrendingHandler{
		trendingSvc: trendingSvc,
	}
}

func clampLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return consts.DefaultFeedLimit
	}
	if limit > consts.MaxFeedLimit {
		return consts.MaxFeedLimit
	}
	return limit
}

// GetTrendingFeed 热度榜，支持按分类过滤
func (s *TrendingHandler) GetTrendingFeed(c *gin.Context) {
	category := c.Query("category")
	limit := clampLimit(c.Query("limit"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	list, err := s.trendingSvc.GetTrendingBattles(c.Request.Context(), category, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetTrendingCategories 近一周的分类热度聚合
func (s *TrendingHandler) GetTrendingCategories(c *gin.Context) {
	limit := clampLimit(c.Query("limit"))

	list, err := s.trendingSvc.GetTrendingCategories(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetPersonalizedTrending 按用户分类偏好过滤的热度榜
func (s *TrendingHandler) GetPersonalizedTrending(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit := clampLimit(c.Query("limit"))

	list, err := s.trendingSvc.GetPersonalizedTrending(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
