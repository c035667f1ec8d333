package service

import (
	"VoteFight/internal/model"
	"context"
	"fmt"
	"testing"
	"time"
)

func TestVotePercentage(t *testing.T) {
	cases := []struct {
		count, total int64
		want         float64
	}{
		{75, 100, 75},
		{25, 100, 25},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 10, 0},
		{0, 0, 0},
		{5, 0, 0}, // 总数为 0 不产生除零
		{10, 10, 100},
	}
	for _, c := range cases {
		if got := votePercentage(c.count, c.total); got != c.want {
			t.Errorf("votePercentage(%d, %d) = %v, want %v", c.count, c.total, got, c.want)
		}
	}
}

// 全量重算以台账为准，脏计数被覆盖，重复执行结果不变
func TestRecomputeBattle_MatchesLedger(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	battle := f.addBattle(&model.Battle{
		ID:         1,
		Status:     model.BattleStatusActive,
		IsActive:   true,
		TotalVotes: 99, // 漂移的旧计数
		CreatedAt:  time.Now().Add(-time.Hour),
	})
	f.addElement(&model.Element{ID: 10, BattleID: 1, Name: "甲"})
	f.addElement(&model.Element{ID: 11, BattleID: 1, Name: "乙"})
	for i := 0; i < 3; i++ {
		f.votes.votes = append(f.votes.votes, &model.Vote{
			ID: uint64(i + 1), BattleID: 1, ElementID: 10, VoterKey: fmt.Sprintf("u:%d", i+1),
		})
	}
	f.votes.votes = append(f.votes.votes, &model.Vote{ID: 4, BattleID: 1, ElementID: 11, VoterKey: "u:9"})
	f.actions.likes[1] = 2
	f.actions.shares[1] = 1
	f.actions.comments[1] = 4

	for round := 1; round <= 2; round++ {
		if err := f.metricSvc.RecomputeBattle(ctx, 1); err != nil {
			t.Fatalf("recompute round %d: %v", round, err)
		}
		if battle.TotalVotes != 4 {
			t.Errorf("round %d: total votes = %d, want 4", round, battle.TotalVotes)
		}
		if battle.LikesCount != 2 || battle.SharesCount != 1 || battle.CommentsCount != 4 {
			t.Errorf("round %d: counts = %d/%d/%d, want 2/1/4",
				round, battle.LikesCount, battle.SharesCount, battle.CommentsCount)
		}
		if e := f.elements.elements[10]; e.VoteCount != 3 || e.VotePercentage != 75 {
			t.Errorf("round %d: element 10 stats = %d/%v, want 3/75", round, e.VoteCount, e.VotePercentage)
		}
		if e := f.elements.elements[11]; e.VoteCount != 1 || e.VotePercentage != 25 {
			t.Errorf("round %d: element 11 stats = %d/%v, want 1/25", round, e.VoteCount, e.VotePercentage)
		}
	}
}
