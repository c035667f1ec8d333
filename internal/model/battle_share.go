package model

import (
	"time"
)

// BattleShare 分享可重复，带平台标记
type BattleShare struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index:idx_user_id" json:"user_id"`
	BattleID  uint64    `gorm:"not null;index:idx_battle_id" json:"battle_id"`
	Platform  string    `gorm:"type:varchar(20);not null;default:'internal'" json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

func (BattleShare) TableName() string {
	return "battle_shares"
}
