package dto

// ElementCreateDTO 创建对战时的选项
type ElementCreateDTO struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	MediaType   string `json:"media_type" binding:"omitempty,oneof=image video audio document"`
	MediaURL    string `json:"media_url" binding:"omitempty,url,max=500"`
}

// BattleCreateDTO 创建对战请求
type BattleCreateDTO struct {
	Title       string              `json:"title" binding:"required,min=3,max=200"`
	Description string              `json:"description" binding:"max=1000"`
	Category    string              `json:"category"`
	Deadline    *string             `json:"deadline"` // RFC3339，可空
	IsPublic    *bool               `json:"is_public"`
	Elements    []*ElementCreateDTO `json:"elements" binding:"required,min=2,max=10,dive"`
}

// BattleUpdateDTO 更新对战请求，空字段不更新
type BattleUpdateDTO struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category"`
	Deadline    *string `json:"deadline"`
	IsPublic    *bool   `json:"is_public"`
}

// BattleFeatureReq 设置精选标记请求
type BattleFeatureReq struct {
	IsFeatured *bool `json:"is_featured" binding:"required"`
}

// ElementDTO 选项详情
type ElementDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	MediaType      string  `json:"media_type"`
	MediaURL       string  `json:"media_url"`
	VoteCount      int64   `json:"vote_count"`
	VotePercentage float64 `json:"vote_percentage"`
	DisplayOrder   int     `json:"display_order"`
}

// CreatorDTO 对战创建者信息
type CreatorDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// BattleDTO 对战详情
type BattleDTO struct {
	ID            uint64        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Status        string        `json:"status"`
	Slug          string        `json:"slug"`
	Deadline      *string       `json:"deadline,omitempty"`
	IsActive      bool          `json:"is_active"`
	IsPublic      bool          `json:"is_public"`
	Creator       CreatorDTO    `json:"creator"`
	Views         int64         `json:"views"`
	LikesCount    int64         `json:"likes_count"`
	SharesCount   int64         `json:"shares_count"`
	CommentsCount int64         `json:"comments_count"`
	TotalVotes    int64         `json:"total_votes"`
	TrendingScore float64       `json:"trending_score"`
	Elements      []*ElementDTO `json:"elements"`
	CreatedAt     string        `json:"created_at"`
}

// BattleListDTO 对战分页列表
type BattleListDTO struct {
	List    []*BattleDTO `json:"list"`
	HasMore bool         `json:"has_more"`
}
