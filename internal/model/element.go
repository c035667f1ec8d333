package model

import (
	"time"
)

type Element struct {
	ID          uint64 `gorm:"primaryKey"`
	BattleID    uint64 `gorm:"not null;uniqueIndex:idx_battle_name;index:idx_battle_id" json:"battle_id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_battle_name" json:"name"`
	Description string `gorm:"type:varchar(500)" json:"description"`

	MediaType string `gorm:"type:varchar(20)" json:"media_type"`
	MediaURL  string `gorm:"type:varchar(500)" json:"media_url"`

	VoteCount      int64   `gorm:"not null;default:0" json:"vote_count"`
	VotePercentage float64 `gorm:"type:decimal(5,2);not null;default:0" json:"vote_percentage"`

	DisplayOrder int `gorm:"not null;default:0;column:display_order" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Element) TableName() string {
	return "battle_elements"
}
