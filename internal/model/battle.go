package model

import (
	"time"
)

type Battle struct {
	ID          uint64     `gorm:"primaryKey"`
	CreatorID   uint64     `gorm:"not null;index:idx_creator_id" json:"creator_id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Description string     `gorm:"type:varchar(1000)" json:"description"`
	Category    string     `gorm:"type:varchar(20);not null;default:'other';index:idx_category_status" json:"category"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active';index:idx_category_status;index:idx_status_active" json:"status"`
	Deadline    *time.Time `json:"deadline"`
	IsActive    bool       `gorm:"type:tinyint(1);not null;default:1;index:idx_status_active" json:"is_active"`
	IsPublic    bool       `gorm:"type:tinyint(1);not null;default:1" json:"is_public"`
	IsFeatured  bool       `gorm:"type:tinyint(1);not null;default:0" json:"is_featured"`
	Slug        string     `gorm:"type:varchar(255);uniqueIndex:idx_slug" json:"slug"`

	// 互动计数，定期由全量重算回填
	Views         int64 `gorm:"not null;default:0" json:"views"`
	LikesCount    int64 `gorm:"not null;default:0" json:"likes_count"`
	SharesCount   int64 `gorm:"not null;default:0" json:"shares_count"`
	CommentsCount int64 `gorm:"not null;default:0" json:"comments_count"`
	TotalVotes    int64 `gorm:"not null;default:0" json:"total_votes"`

	// 热度算法字段
	TrendingScore   float64 `gorm:"type:decimal(8,3);not null;default:0;index:idx_trending_score" json:"trending_score"`
	VoteVelocity    int     `gorm:"not null;default:0" json:"vote_velocity"`
	EngagementScore int     `gorm:"not null;default:0" json:"engagement_score"`

	CreatedAt time.Time `gorm:"index:idx_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator  User      `gorm:"foreignKey:CreatorID;references:ID"`
	Elements []Element `gorm:"foreignKey:BattleID;references:ID"`
}

func (Battle) TableName() string {
	return "battles"
}

// IsExpired 纯函数判断对战是否已过截止时间，读路径不落库
func (s *Battle) IsExpired(now time.Time) bool {
	return s.Deadline != nil && !s.Deadline.After(now)
}

// IsVotable 状态、激活位、截止时间三者全部通过才可投票
func (s *Battle) IsVotable(now time.Time) bool {
	return s.Status == BattleStatusActive && s.IsActive && !s.IsExpired(now)
}
