package model

import (
	"time"
)

type BattleLike struct {
	UserID    uint64    `gorm:"primaryKey" json:"user_id"`
	BattleID  uint64    `gorm:"primaryKey;index:idx_battle_id" json:"battle_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (BattleLike) TableName() string {
	return "battle_likes"
}
