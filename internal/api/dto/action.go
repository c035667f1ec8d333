package dto

// BattleActionReq 点赞通用请求
type BattleActionReq struct {
	Action int `json:"action" binding:"required,oneof=1 2"` // 1:执行, 2:取消
}

// BattleShareReq 分享请求
type BattleShareReq struct {
	Platform string `json:"platform" binding:"omitempty,max=20"`
}

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	BattleID uint64 `json:"battle_id" binding:"required"`
	Content  string `json:"content" binding:"required,max=500"`
	ParentID uint64 `json:"parent_id"` // 0 表示一级评论
}

// CommentDTO 评论详情
type CommentDTO struct {
	ID         uint64        `json:"id"`
	BattleID   uint64        `json:"battle_id"`
	UserID     uint64        `json:"user_id"`
	Username   string        `json:"username"`
	Content    string        `json:"content"`
	ParentID   uint64        `json:"parent_id"`
	LikesCount int           `json:"likes_count"`
	Replies    []*CommentDTO `json:"replies,omitempty"`
	CreatedAt  string        `json:"created_at"`
}

// BattleActionStateDTO 对战详情页互动状态
type BattleActionStateDTO struct {
	LikeCount    int64 `json:"like_count"`
	ShareCount   int64 `json:"share_count"`
	CommentCount int64 `json:"comment_count"`
	IsLiked      bool  `json:"is_liked"`
}
