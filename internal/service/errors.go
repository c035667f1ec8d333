package service

import (
	"errors"
	"fmt"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserExist         = errors.New("用户已存在")
	ErrPasswordIncorrect = errors.New("密码错误")
	ErrUserBan           = errors.New("用户已被封禁")

	ErrBattleNotFound  = errors.New("对战不存在")
	ErrElementNotFound = errors.New("选项不存在")
	ErrVoteNotFound    = errors.New("投票记录不存在")
	ErrCommentNotFound = errors.New("评论不存在")

	ErrElementCount     = errors.New("对战必须包含 2 到 10 个选项")
	ErrElementNameDup   = errors.New("同一对战内的选项名称不能重复")
	ErrCommentNested    = errors.New("只支持一级回复")
	ErrActionDuplicate  = errors.New("重复操作")
	ErrPermissionDenied = errors.New("没有权限执行该操作")

	ErrInvalidIdentity = errors.New("匿名投票必须提供 IP 和浏览器指纹")
	ErrBattleInactive  = errors.New("该对战已不再开放")
	ErrBattleExpired   = errors.New("该对战已过截止时间")
	ErrAlreadyVoted    = errors.New("你已经在该对战中投过票")
	ErrVoteCooldown    = errors.New("投票过于频繁，请稍后再试")
	ErrRateLimited     = errors.New("投票次数超过限制，请稍后再试")

	// 选项与对战不匹配属于数据或程序错误，按服务端故障上报
	ErrIntegrityViolation = errors.New("选项与对战不匹配")

	UnExpectedError = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUserNotFound:      NotFound,
	ErrUserExist:         BadRequest,
	ErrPasswordIncorrect: Unauthorized,
	ErrUserBan:           Unauthorized,

	ErrBattleNotFound:  NotFound,
	ErrElementNotFound: NotFound,
	ErrVoteNotFound:    NotFound,
	ErrCommentNotFound: NotFound,

	ErrElementCount:     BadRequest,
	ErrElementNameDup:   BadRequest,
	ErrCommentNested:    BadRequest,
	ErrActionDuplicate:  BadRequest,
	ErrPermissionDenied: Forbidden,

	ErrInvalidIdentity: BadRequest,
	ErrBattleInactive:  BadRequest,
	ErrBattleExpired:   BadRequest,
	ErrAlreadyVoted:    BadRequest,
	ErrVoteCooldown:    TooManyRequests,
	ErrRateLimited:     TooManyRequests,

	ErrIntegrityViolation: InternalServerError,
	UnExpectedError:       InternalServerError,
}

// 投票资格拒绝原因码
const (
	ReasonEligible       = "eligible"
	ReasonBattleInactive = "battle_inactive"
	ReasonBattleExpired  = "battle_expired"
	ReasonAlreadyVoted   = "already_voted"
	ReasonCooldown       = "cooldown"
	ReasonRateLimited    = "rate_limited"
)

// EligibilityError 携带拒绝原因码和数值细节（冷却剩余秒数、限流重置时间戳）的投票拒绝
type EligibilityError struct {
	Reason string
	Detail int64
	Err    error
}

func (e *EligibilityError) Error() string {
	switch e.Reason {
	case ReasonCooldown:
		return fmt.Sprintf("请等待 %d 秒后再投票", e.Detail)
	default:
		return e.Err.Error()
	}
}

func (e *EligibilityError) Unwrap() error {
	return e.Err
}
