package service

import (
	"fmt"
)

// VoterContext 一次投票请求携带的全部来访信息，由 HTTP 层填充
type VoterContext struct {
	UserID      uint64 // 0 表示未登录
	IP          string
	Fingerprint string
	UserAgent   string
	SessionKey  string
}

// VoterIdentity 去重身份：已登录用户按用户 ID，匿名按 IP+指纹
type VoterIdentity struct {
	UserID      uint64
	IP          string
	Fingerprint string
}

// ResolveVoterIdentity 解析投票身份。登录用户以用户 ID 为准，IP 和指纹仅留作审计；
// 匿名投票必须同时提供 IP 和指纹，指纹内容不做校验只当作不透明字符串。
func ResolveVoterIdentity(voter VoterContext) (VoterIdentity, error) {
	if voter.UserID > 0 {
		return VoterIdentity{
			UserID:      voter.UserID,
			IP:          voter.IP,
			Fingerprint: voter.Fingerprint,
		}, nil
	}
	if voter.IP == "" || voter.Fingerprint == "" {
		return VoterIdentity{}, ErrInvalidIdentity
	}
	return VoterIdentity{
		IP:          voter.IP,
		Fingerprint: voter.Fingerprint,
	}, nil
}

// Authenticated 是否为登录身份
func (v VoterIdentity) Authenticated() bool {
	return v.UserID > 0
}

// Key 身份落库键，battle_id+voter_key 唯一索引依赖它做并发去重
func (v VoterIdentity) Key() string {
	if v.Authenticated() {
		return fmt.Sprintf("u:%d", v.UserID)
	}
	return fmt.Sprintf("a:%s:%s", v.IP, v.Fingerprint)
}
