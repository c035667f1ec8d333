package service

import (
	"VoteFight/internal/api/dto"
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func activeBattle(deadline *time.Time) *model.Battle {
	return &model.Battle{
		ID:       1,
		Status:   model.BattleStatusActive,
		IsActive: true,
		Deadline: deadline,
	}
}

func TestEvaluateEligibility_CleanSnapshot(t *testing.T) {
	now := time.Now()
	result := evaluateEligibility(activeBattle(nil), eligibilitySnapshot{}, now)

	if !result.Eligible() {
		t.Fatalf("reason = %s, want eligible", result.Reason)
	}
	if result.RemainingVotes != rateLimitMaxVotes {
		t.Errorf("remaining votes = %d, want %d", result.RemainingVotes, rateLimitMaxVotes)
	}
}

func TestEvaluateEligibility_BattleInactive(t *testing.T) {
	now := time.Now()

	battle := activeBattle(nil)
	battle.Status = model.BattleStatusDraft
	if result := evaluateEligibility(battle, eligibilitySnapshot{}, now); result.Reason != ReasonBattleInactive {
		t.Errorf("draft battle reason = %s, want %s", result.Reason, ReasonBattleInactive)
	}

	battle = activeBattle(nil)
	battle.IsActive = false
	if result := evaluateEligibility(battle, eligibilitySnapshot{}, now); result.Reason != ReasonBattleInactive {
		t.Errorf("hidden battle reason = %s, want %s", result.Reason, ReasonBattleInactive)
	}
}

func TestEvaluateEligibility_BattleExpired(t *testing.T) {
	now := time.Now()
	deadline := now.Add(-time.Minute)

	result := evaluateEligibility(activeBattle(&deadline), eligibilitySnapshot{}, now)
	if result.Reason != ReasonBattleExpired {
		t.Errorf("reason = %s, want %s", result.Reason, ReasonBattleExpired)
	}

	// 未到截止时间不受影响
	deadline = now.Add(time.Hour)
	if result = evaluateEligibility(activeBattle(&deadline), eligibilitySnapshot{}, now); !result.Eligible() {
		t.Errorf("future deadline reason = %s, want eligible", result.Reason)
	}
}

// 下架优先于过期：同时满足时按下架上报
func TestEvaluateEligibility_InactiveBeatsExpired(t *testing.T) {
	now := time.Now()
	deadline := now.Add(-time.Minute)
	battle := activeBattle(&deadline)
	battle.IsActive = false

	if result := evaluateEligibility(battle, eligibilitySnapshot{}, now); result.Reason != ReasonBattleInactive {
		t.Errorf("reason = %s, want %s", result.Reason, ReasonBattleInactive)
	}
}

func TestEvaluateEligibility_AlreadyVoted(t *testing.T) {
	now := time.Now()
	snap := eligibilitySnapshot{HasVoted: true}

	result := evaluateEligibility(activeBattle(nil), snap, now)
	if result.Reason != ReasonAlreadyVoted {
		t.Errorf("reason = %s, want %s", result.Reason, ReasonAlreadyVoted)
	}
}

func TestEvaluateEligibility_Cooldown(t *testing.T) {
	now := time.Now()
	last := now.Add(-30 * time.Second)
	snap := eligibilitySnapshot{LatestDeviceAt: &last}

	result := evaluateEligibility(activeBattle(nil), snap, now)
	if result.Reason != ReasonCooldown {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonCooldown)
	}
	if result.Detail != 30 {
		t.Errorf("cooldown remaining = %d, want 30", result.Detail)
	}
}

func TestEvaluateEligibility_CooldownElapsed(t *testing.T) {
	now := time.Now()
	last := now.Add(-61 * time.Second)
	snap := eligibilitySnapshot{LatestDeviceAt: &last}

	result := evaluateEligibility(activeBattle(nil), snap, now)
	if !result.Eligible() {
		t.Errorf("reason = %s, want eligible after cooldown elapsed", result.Reason)
	}
}

func TestEvaluateEligibility_RateLimited(t *testing.T) {
	now := time.Now()
	oldest := now.Add(-2 * time.Minute)
	last := now.Add(-90 * time.Second)
	snap := eligibilitySnapshot{
		LatestDeviceAt: &last,
		WindowCount:    rateLimitMaxVotes,
		OldestInWindow: &oldest,
	}

	result := evaluateEligibility(activeBattle(nil), snap, now)
	if result.Reason != ReasonRateLimited {
		t.Fatalf("reason = %s, want %s", result.Reason, ReasonRateLimited)
	}
	if want := oldest.Add(rateLimitWindow).Unix(); result.Detail != want {
		t.Errorf("reset time = %d, want %d", result.Detail, want)
	}
}

func TestEvaluateEligibility_BelowRateLimit(t *testing.T) {
	now := time.Now()
	last := now.Add(-2 * time.Minute)
	snap := eligibilitySnapshot{
		LatestDeviceAt: &last,
		WindowCount:    rateLimitMaxVotes - 1,
	}

	result := evaluateEligibility(activeBattle(nil), snap, now)
	if !result.Eligible() {
		t.Fatalf("reason = %s, want eligible", result.Reason)
	}
	if result.RemainingVotes != 1 {
		t.Errorf("remaining votes = %d, want 1", result.RemainingVotes)
	}
}

func TestEligibilityReasonError(t *testing.T) {
	cases := []struct {
		reason string
		want   error
	}{
		{ReasonBattleInactive, ErrBattleInactive},
		{ReasonBattleExpired, ErrBattleExpired},
		{ReasonAlreadyVoted, ErrAlreadyVoted},
		{ReasonCooldown, ErrVoteCooldown},
		{ReasonRateLimited, ErrRateLimited},
	}
	for _, c := range cases {
		err := eligibilityReasonError(&eligibilityResult{Reason: c.reason})
		if !errors.Is(err, c.want) {
			t.Errorf("reason %s: error %v does not wrap %v", c.reason, err, c.want)
		}
	}

	if err := eligibilityReasonError(&eligibilityResult{Reason: ReasonEligible}); err != nil {
		t.Errorf("eligible result produced error: %v", err)
	}
}

func TestEligibilityErrorMessage(t *testing.T) {
	err := &EligibilityError{Reason: ReasonCooldown, Detail: 42, Err: ErrVoteCooldown}
	if got, want := err.Error(), "请等待 42 秒后再投票"; got != want {
		t.Errorf("cooldown message = %q, want %q", got, want)
	}

	err = &EligibilityError{Reason: ReasonAlreadyVoted, Err: ErrAlreadyVoted}
	if got := err.Error(); got != ErrAlreadyVoted.Error() {
		t.Errorf("message = %q, want sentinel message", got)
	}
}

func TestEligibilityMemoKey(t *testing.T) {
	if got, want := eligibilityMemoKey("u:42", 7), consts.VoteEligibilityKey+"u:42:7"; got != want {
		t.Errorf("memo key = %q, want %q", got, want)
	}
}

// 登录用户不带指纹时设备窗口依旧生效，空指纹按空串精确匹配
func TestCheckEligibility_EmptyFingerprintStillCoolsDown(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	f := newServiceFixture()
	f.addBattle(&model.Battle{ID: 1, Status: model.BattleStatusActive, IsActive: true, IsPublic: true, Category: model.CategoryOther, CreatedAt: now.Add(-2 * time.Hour)})
	f.addElement(&model.Element{ID: 10, BattleID: 1, Name: "甲"})
	// 同设备已在其它对战投满滑动窗口，最近一票 5 秒前
	for i := 0; i < rateLimitMaxVotes; i++ {
		f.votes.votes = append(f.votes.votes, &model.Vote{
			ID:        uint64(100 + i),
			BattleID:  2,
			ElementID: 20,
			VoterIP:   "9.9.9.9",
			VoterKey:  fmt.Sprintf("a:9.9.9.9:s%d", i),
			CreatedAt: now.Add(-time.Duration(i*20+5) * time.Second),
		})
	}

	out, err := f.voteSvc.CheckEligibility(ctx, 1, VoterContext{UserID: 42, IP: "9.9.9.9"})
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
	if out.Eligible {
		t.Fatal("eligible = true, want device cooldown to apply without fingerprint")
	}
	if out.Reason != ReasonCooldown {
		t.Errorf("reason = %s, want %s", out.Reason, ReasonCooldown)
	}

	_, err = f.voteSvc.SubmitVote(ctx, VoterContext{UserID: 42, IP: "9.9.9.9"}, &dto.SubmitVoteReq{BattleID: 1, ElementID: 10})
	if !errors.Is(err, ErrVoteCooldown) {
		t.Errorf("submit error = %v, want %v", err, ErrVoteCooldown)
	}
}

func TestCheckEligibility_EmptyFingerprintStillRateLimited(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	f := newServiceFixture()
	f.addBattle(&model.Battle{ID: 1, Status: model.BattleStatusActive, IsActive: true, IsPublic: true, Category: model.CategoryOther, CreatedAt: now.Add(-2 * time.Hour)})
	// 窗口投满但冷却已过：最近一票 90 秒前
	for i := 0; i < rateLimitMaxVotes; i++ {
		f.votes.votes = append(f.votes.votes, &model.Vote{
			ID:        uint64(100 + i),
			BattleID:  2,
			ElementID: 20,
			VoterIP:   "9.9.9.9",
			VoterKey:  fmt.Sprintf("a:9.9.9.9:s%d", i),
			CreatedAt: now.Add(-time.Duration(i*10+90) * time.Second),
		})
	}

	out, err := f.voteSvc.CheckEligibility(ctx, 1, VoterContext{UserID: 42, IP: "9.9.9.9"})
	if err != nil {
		t.Fatalf("check eligibility: %v", err)
	}
	if out.Eligible || out.Reason != ReasonRateLimited {
		t.Errorf("reason = %s, want %s", out.Reason, ReasonRateLimited)
	}
}

// 并发落败方的唯一索引冲突映射为已投票
func TestSubmitVote_DuplicateKeyMapsToAlreadyVoted(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.addBattle(&model.Battle{ID: 1, Status: model.BattleStatusActive, IsActive: true, CreatedAt: time.Now().Add(-time.Hour)})
	f.addElement(&model.Element{ID: 10, BattleID: 1, Name: "甲"})
	f.votes.createErr = &mysql.MySQLError{Number: 1062}

	_, err := f.voteSvc.SubmitVote(ctx, VoterContext{UserID: 7, IP: "1.1.1.1", Fingerprint: "fp"}, &dto.SubmitVoteReq{BattleID: 1, ElementID: 10})
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("error = %v, want %v", err, ErrAlreadyVoted)
	}
	var eligibilityErr *EligibilityError
	if !errors.As(err, &eligibilityErr) || eligibilityErr.Reason != ReasonAlreadyVoted {
		t.Errorf("error = %v, want reason %s", err, ReasonAlreadyVoted)
	}
}

// 选项必须属于目标对战
func TestSubmitVote_ElementFromAnotherBattle(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.addBattle(&model.Battle{ID: 1, Status: model.BattleStatusActive, IsActive: true, CreatedAt: time.Now().Add(-time.Hour)})
	f.addBattle(&model.Battle{ID: 2, Status: model.BattleStatusActive, IsActive: true, CreatedAt: time.Now().Add(-time.Hour)})
	f.addElement(&model.Element{ID: 20, BattleID: 2, Name: "乙"})

	_, err := f.voteSvc.SubmitVote(ctx, VoterContext{UserID: 7, IP: "1.1.1.1", Fingerprint: "fp"}, &dto.SubmitVoteReq{BattleID: 1, ElementID: 20})
	if !errors.Is(err, ErrIntegrityViolation) {
		t.Fatalf("error = %v, want %v", err, ErrIntegrityViolation)
	}
	if len(f.votes.votes) != 0 {
		t.Errorf("ledger has %d votes, want none recorded", len(f.votes.votes))
	}
}

func TestSubmitVote_SuccessRefreshesCounts(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	f.addBattle(&model.Battle{ID: 1, Status: model.BattleStatusActive, IsActive: true, IsPublic: true, Category: model.CategoryOther, CreatedAt: time.Now().Add(-time.Hour)})
	f.addElement(&model.Element{ID: 10, BattleID: 1, Name: "甲"})
	f.addElement(&model.Element{ID: 11, BattleID: 1, Name: "乙"})

	out, err := f.voteSvc.SubmitVote(ctx, VoterContext{UserID: 7, IP: "1.1.1.1", Fingerprint: "fp"}, &dto.SubmitVoteReq{BattleID: 1, ElementID: 10})
	if err != nil {
		t.Fatalf("submit vote: %v", err)
	}
	if out.BattleID != 1 || out.ElementID != 10 {
		t.Errorf("vote dto = %+v", out)
	}

	battle := f.battles.battles[1]
	if battle.TotalVotes != 1 {
		t.Errorf("total votes = %d, want 1", battle.TotalVotes)
	}
	if battle.TrendingScore <= 0 {
		t.Errorf("trending score = %v, want recalculated above zero", battle.TrendingScore)
	}
	element := f.elements.elements[10]
	if element.VoteCount != 1 || element.VotePercentage != 100 {
		t.Errorf("element stats = %d/%v, want 1/100", element.VoteCount, element.VotePercentage)
	}

	// 同一用户再投同一对战被去重
	_, err = f.voteSvc.SubmitVote(ctx, VoterContext{UserID: 7, IP: "2.2.2.2", Fingerprint: "other"}, &dto.SubmitVoteReq{BattleID: 1, ElementID: 11})
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second submit error = %v, want %v", err, ErrAlreadyVoted)
	}
}

func TestConvertEligibilityDTO(t *testing.T) {
	out := convertEligibilityDTO(&eligibilityResult{Reason: ReasonEligible, RemainingVotes: 7})
	if !out.Eligible || out.RemainingVotes == nil || *out.RemainingVotes != 7 {
		t.Errorf("eligible dto = %+v, want remaining 7", out)
	}

	out = convertEligibilityDTO(&eligibilityResult{Reason: ReasonCooldown, Detail: 15})
	if out.Eligible || out.CooldownRemaining == nil || *out.CooldownRemaining != 15 {
		t.Errorf("cooldown dto = %+v, want cooldown 15", out)
	}

	out = convertEligibilityDTO(&eligibilityResult{Reason: ReasonRateLimited, Detail: 1700000000})
	if out.Eligible || out.ResetTime == nil || *out.ResetTime != 1700000000 {
		t.Errorf("rate limited dto = %+v, want reset time", out)
	}
}
