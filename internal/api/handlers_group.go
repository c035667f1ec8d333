package api

import "VoteFight/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler         *handler.UserHandler
	BattleHandler       *handler.BattleHandler
	VoteHandler         *handler.VoteHandler
	TrendingHandler     *handler.TrendingHandler
	BattleActionHandler *handler.BattleActionHandler
}
