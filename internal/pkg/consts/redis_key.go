package consts

const (
	// 热度榜缓存命名空间，分数变化时按前缀整体清除
	TrendingNamespace       = "trending:"
	TrendingFeedKey         = "trending:feed:"
	TrendingCategoriesKey   = "trending:categories:"
	TrendingPersonalizedKey = "trending:personalized:"

	BattleLikeCountKey    = "battle:like:count:"
	BattleShareCountKey   = "battle:share:count:"
	BattleCommentCountKey = "battle:comment:count:"
	BattleReportKey       = "battle:report:count:"

	VoteEligibilityKey = "vote:eligibility:"
)

const (
	ReportLock = "lock:battle:report:"
)
