package model

import (
	"time"
)

type BattleComment struct {
	ID         uint64    `gorm:"primaryKey"`
	BattleID   uint64    `gorm:"not null;index:idx_battle_id" json:"battle_id"`
	UserID     uint64    `gorm:"not null" json:"user_id"`
	Content    string    `gorm:"type:varchar(500);not null" json:"content"`
	ParentID   uint64    `gorm:"not null;default:0;index:idx_parent_id" json:"parent_id"` // 0 表示一级评论，仅支持一层回复
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	IsDeleted  bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (BattleComment) TableName() string {
	return "battle_comments"
}
