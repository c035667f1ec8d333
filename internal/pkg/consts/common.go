package consts

const (
	MinBattleElements = 2
	MaxBattleElements = 10
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)
