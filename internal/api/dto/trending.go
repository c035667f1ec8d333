package dto

// TrendingBattleDTO 热度榜条目
type TrendingBattleDTO struct {
	ID            uint64        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Creator       CreatorDTO    `json:"creator"`
	TrendingScore float64       `json:"trending_score"`
	TotalVotes    int64         `json:"total_votes"`
	LikesCount    int64         `json:"likes_count"`
	Views         int64         `json:"views"`
	Elements      []*ElementDTO `json:"elements"`
	CreatedAt     string        `json:"created_at"`
}

// TrendingCategoryDTO 分类热度聚合
type TrendingCategoryDTO struct {
	Category         string  `json:"category"`
	BattleCount      int64   `json:"battle_count"`
	TotalVotes       int64   `json:"total_votes"`
	AvgTrendingScore float64 `json:"avg_trending_score"`
}
