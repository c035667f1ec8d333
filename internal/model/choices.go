package model

// 对战状态
const (
	BattleStatusActive   = "active"
	BattleStatusExpired  = "expired"
	BattleStatusDraft    = "draft"
	BattleStatusArchived = "archived"
)

// 对战分类
const (
	CategoryTechnology    = "technology"
	CategorySports        = "sports"
	CategoryEntertainment = "entertainment"
	CategoryFood          = "food"
	CategoryTravel        = "travel"
	CategoryFashion       = "fashion"
	CategoryMusic         = "music"
	CategoryGaming        = "gaming"
	CategoryPolitics      = "politics"
	CategoryOther         = "other"
)

// Categories 全部合法分类
var Categories = []string{
	CategoryTechnology, CategorySports, CategoryEntertainment,
	CategoryFood, CategoryTravel, CategoryFashion,
	CategoryMusic, CategoryGaming, CategoryPolitics, CategoryOther,
}

// IsValidCategory 判断分类是否合法
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// 选项媒体类型
const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeAudio    = "audio"
	MediaTypeDocument = "document"
)

// 投票验证方式
const (
	VerificationStandard = "standard"
	VerificationCaptcha  = "captcha"
	VerificationEmail    = "email"
	VerificationPhone    = "phone"
)
