package model

import (
	"time"
)

// Vote 只增不改的投票台账，battle_id+voter_key 唯一索引兜底并发去重
type Vote struct {
	ID        uint64 `gorm:"primaryKey"`
	BattleID  uint64 `gorm:"not null;uniqueIndex:idx_battle_voter;index:idx_battle_id" json:"battle_id"`
	ElementID uint64 `gorm:"not null;index:idx_element_id" json:"element_id"`
	UserID    uint64 `gorm:"not null;default:0;index:idx_user_id" json:"user_id"` // 0 表示匿名投票

	// 防刷票追踪
	VoterIP     string `gorm:"type:varchar(45);not null;index:idx_device,priority:1" json:"voter_ip"`
	Fingerprint string `gorm:"type:varchar(255);not null;index:idx_device,priority:2" json:"fingerprint"`
	UserAgent   string `gorm:"type:varchar(500)" json:"user_agent"`
	SessionKey  string `gorm:"type:varchar(40)" json:"session_key"`
	VoterKey    string `gorm:"type:varchar(320);not null;uniqueIndex:idx_battle_voter" json:"voter_key"`

	// 投票元数据
	VoteWeight         int    `gorm:"not null;default:1" json:"vote_weight"` // 预留加权投票
	IsVerified         bool   `gorm:"type:tinyint(1);not null;default:1" json:"is_verified"`
	VerificationMethod string `gorm:"type:varchar(20);not null;default:'standard'" json:"verification_method"`

	CreatedAt time.Time `gorm:"index:idx_created_at" json:"created_at"`
}

func (Vote) TableName() string {
	return "battle_votes"
}
