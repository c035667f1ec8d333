package dto

// SubmitVoteReq 提交投票请求，指纹由前端采集后透传
type SubmitVoteReq struct {
	BattleID    uint64 `json:"battle_id" binding:"required"`
	ElementID   uint64 `json:"element_id" binding:"required"`
	Fingerprint string `json:"fingerprint" binding:"max=255"`
}

// EligibilityDetail 投票被拒时返回的结构化细节
type EligibilityDetail struct {
	Reason string `json:"reason"`
	Detail int64  `json:"detail"` // 冷却剩余秒数或限流重置时间戳，无细节时为 0
}

// EligibilityDTO 投票资格查询结果
type EligibilityDTO struct {
	Eligible          bool   `json:"eligible"`
	Reason            string `json:"reason"`
	Message           string `json:"message"`
	CooldownRemaining *int64 `json:"cooldown_remaining,omitempty"`
	ResetTime         *int64 `json:"reset_time,omitempty"`
	RemainingVotes    *int64 `json:"remaining_votes,omitempty"`
}

// VoteDTO 投票成功返回
type VoteDTO struct {
	ID        uint64 `json:"id"`
	BattleID  uint64 `json:"battle_id"`
	ElementID uint64 `json:"element_id"`
	CreatedAt string `json:"created_at"`
}

// VoteHistoryItemDTO 用户投票历史条目
type VoteHistoryItemDTO struct {
	ID             uint64 `json:"id"`
	BattleID       uint64 `json:"battle_id"`
	BattleTitle    string `json:"battle_title"`
	BattleCategory string `json:"battle_category"`
	ElementName    string `json:"element_name"`
	VotedAt        string `json:"voted_at"`
}

// VoteHistoryDTO 用户投票历史
type VoteHistoryDTO struct {
	Votes      []*VoteHistoryItemDTO `json:"votes"`
	TotalCount int64                 `json:"total_count"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
}

// ElementStatDTO 单个选项的票数统计
type ElementStatDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	VoteCount      int64   `json:"vote_count"`
	VotePercentage float64 `json:"vote_percentage"`
}

// BattleStatisticsDTO 对战票数统计
type BattleStatisticsDTO struct {
	BattleID    uint64            `json:"battle_id"`
	BattleTitle string            `json:"battle_title"`
	TotalVotes  int64             `json:"total_votes"`
	Elements    []*ElementStatDTO `json:"elements"`
}
