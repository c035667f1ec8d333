package service

import (
	"VoteFight/internal/model"
	"VoteFight/internal/pkg/redis"
	"VoteFight/internal/repository"
	"context"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	goredis "github.com/redis/go-redis/v9"
)

// 单测不连真实 redis：客户端指向必然拒连的地址，缓存读写全部走错误分支回源
func init() {
	redis.Rdb = goredis.NewClient(&goredis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  time.Millisecond,
		ReadTimeout:  time.Millisecond,
		WriteTimeout: time.Millisecond,
		MaxRetries:   -1,
	})
}

// fakeVoteRepo 内存投票台账，查询语义与 VoteRepoImpl 的 SQL 对齐：
// 设备维度按 voter_ip 和 fingerprint 精确相等，空指纹按空串匹配
type fakeVoteRepo struct {
	votes     []*model.Vote
	nextID    uint64
	createErr error // 注入 CreateVote 的失败
}

func (s *fakeVoteRepo) CreateVote(_ context.Context, vote *model.Vote) error {
	if s.createErr != nil {
		return s.createErr
	}
	// battle_id+voter_key 唯一索引
	for _, v := range s.votes {
		if v.BattleID == vote.BattleID && v.VoterKey == vote.VoterKey {
			return &mysql.MySQLError{Number: 1062}
		}
	}
	s.nextID++
	vote.ID = s.nextID
	s.votes = append(s.votes, vote)
	return nil
}

func (s *fakeVoteRepo) GetVoteByID(_ context.Context, id uint64) (*model.Vote, error) {
	for _, v := range s.votes {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (s *fakeVoteRepo) DeleteVote(_ context.Context, id uint64) error {
	for i, v := range s.votes {
		if v.ID == id {
			s.votes = append(s.votes[:i], s.votes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeVoteRepo) HasVotedByUser(_ context.Context, battleID, userID uint64) (bool, error) {
	for _, v := range s.votes {
		if v.BattleID == battleID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeVoteRepo) HasVotedByDevice(_ context.Context, battleID uint64, ip, fingerprint string) (bool, error) {
	for _, v := range s.votes {
		if v.BattleID == battleID && v.VoterIP == ip && v.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeVoteRepo) deviceVotes(ip, fingerprint string, since time.Time) []*model.Vote {
	var out []*model.Vote
	for _, v := range s.votes {
		if v.VoterIP == ip && v.Fingerprint == fingerprint && !v.CreatedAt.Before(since) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *fakeVoteRepo) GetLatestDeviceVote(_ context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error) {
	votes := s.deviceVotes(ip, fingerprint, since)
	if len(votes) == 0 {
		return nil, nil
	}
	return votes[len(votes)-1], nil
}

func (s *fakeVoteRepo) GetOldestDeviceVote(_ context.Context, ip, fingerprint string, since time.Time) (*model.Vote, error) {
	votes := s.deviceVotes(ip, fingerprint, since)
	if len(votes) == 0 {
		return nil, nil
	}
	return votes[0], nil
}

func (s *fakeVoteRepo) CountDeviceVotes(_ context.Context, ip, fingerprint string, since time.Time) (int64, error) {
	return int64(len(s.deviceVotes(ip, fingerprint, since))), nil
}

func (s *fakeVoteRepo) CountByBattle(_ context.Context, battleID uint64) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.BattleID == battleID {
			count++
		}
	}
	return count, nil
}

func (s *fakeVoteRepo) CountByBattleSince(_ context.Context, battleID uint64, since time.Time) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.BattleID == battleID && !v.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeVoteRepo) CountByElement(_ context.Context, elementID uint64) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.ElementID == elementID {
			count++
		}
	}
	return count, nil
}

func (s *fakeVoteRepo) ListByUser(_ context.Context, userID uint64, limit, offset int) ([]*model.Vote, error) {
	var out []*model.Vote
	for _, v := range s.votes {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeVoteRepo) CountByUser(_ context.Context, userID uint64) (int64, error) {
	var count int64
	for _, v := range s.votes {
		if v.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeBattleRepo 内存对战表，过滤和排序语义与 BattleRepoImpl 对齐
type fakeBattleRepo struct {
	battles  map[uint64]*model.Battle
	elements *fakeElementRepo
	nextID   uint64
}

func (s *fakeBattleRepo) CreateBattle(_ context.Context, battle *model.Battle, elements []*model.Element) error {
	s.nextID++
	battle.ID = s.nextID
	if battle.CreatedAt.IsZero() {
		battle.CreatedAt = time.Now()
	}
	s.battles[battle.ID] = battle
	for _, e := range elements {
		e.BattleID = battle.ID
		s.elements.nextID++
		e.ID = s.elements.nextID
		s.elements.elements[e.ID] = e
	}
	return nil
}

func (s *fakeBattleRepo) GetBattle(_ context.Context, id uint64) (*model.Battle, error) {
	battle, ok := s.battles[id]
	if !ok {
		return nil, nil
	}
	return battle, nil
}

func (s *fakeBattleRepo) GetBattleWithElements(ctx context.Context, id uint64) (*model.Battle, error) {
	battle, ok := s.battles[id]
	if !ok {
		return nil, nil
	}
	elements, _ := s.elements.ListByBattle(ctx, id)
	battle.Elements = battle.Elements[:0]
	for _, e := range elements {
		battle.Elements = append(battle.Elements, *e)
	}
	return battle, nil
}

func (s *fakeBattleRepo) UpdateBattle(_ context.Context, battle *model.Battle) error {
	s.battles[battle.ID] = battle
	return nil
}

func (s *fakeBattleRepo) DeleteBattle(_ context.Context, id uint64) error {
	delete(s.battles, id)
	return nil
}

func (s *fakeBattleRepo) ListBattles(_ context.Context, category, status string, publicOnly bool, limit, offset int) ([]*model.Battle, error) {
	if status == "" {
		status = model.BattleStatusActive
	}
	var out []*model.Battle
	for _, b := range s.battles {
		if b.Status != status {
			continue
		}
		if publicOnly && !b.IsPublic {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageBattles(out, limit, offset), nil
}

func (s *fakeBattleRepo) ListTrending(_ context.Context, category string, limit, offset int) ([]*model.Battle, error) {
	var out []*model.Battle
	for _, b := range s.battles {
		if b.Status != model.BattleStatusActive || !b.IsActive || !b.IsPublic {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrendingScore > out[j].TrendingScore })
	return pageBattles(out, limit, offset), nil
}

func (s *fakeBattleRepo) ListTrendingByCategories(_ context.Context, categories []string, limit int) ([]*model.Battle, error) {
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}
	var out []*model.Battle
	for _, b := range s.battles {
		if b.Status != model.BattleStatusActive || !b.IsActive || !b.IsPublic {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[b.Category]; !ok {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrendingScore > out[j].TrendingScore })
	return pageBattles(out, limit, 0), nil
}

func (s *fakeBattleRepo) ListActiveBattleIDs(_ context.Context) ([]uint64, error) {
	var ids []uint64
	for _, b := range s.battles {
		if b.Status == model.BattleStatusActive && b.IsActive {
			ids = append(ids, b.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *fakeBattleRepo) ListDueBattles(_ context.Context, now time.Time) ([]*model.Battle, error) {
	var out []*model.Battle
	for _, b := range s.battles {
		if b.Status == model.BattleStatusActive && b.Deadline != nil && !b.Deadline.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBattleRepo) MarkExpired(_ context.Context, id uint64) error {
	if b, ok := s.battles[id]; ok {
		b.Status = model.BattleStatusExpired
		b.IsActive = false
	}
	return nil
}

func (s *fakeBattleRepo) CountActiveInCategorySince(_ context.Context, category string, since time.Time) (int64, error) {
	var count int64
	for _, b := range s.battles {
		if b.Category == category && b.Status == model.BattleStatusActive && b.IsActive && !b.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *fakeBattleRepo) UpdateCounts(_ context.Context, id uint64, votes, likes, shares, comments int64) error {
	if b, ok := s.battles[id]; ok {
		b.TotalVotes = votes
		b.LikesCount = likes
		b.SharesCount = shares
		b.CommentsCount = comments
	}
	return nil
}

func (s *fakeBattleRepo) UpdateTrendingFields(_ context.Context, id uint64, score float64, velocity, engagement int) error {
	if b, ok := s.battles[id]; ok {
		b.TrendingScore = score
		b.VoteVelocity = velocity
		b.EngagementScore = engagement
	}
	return nil
}

func (s *fakeBattleRepo) IncrementViews(_ context.Context, id uint64) error {
	if b, ok := s.battles[id]; ok {
		b.Views++
	}
	return nil
}

func (s *fakeBattleRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, b := range s.battles {
		if b.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBattleRepo) CategoryStats(_ context.Context, _ time.Time, _ int) ([]*repository.CategoryStat, error) {
	return nil, nil
}

func (s *fakeBattleRepo) ListCategoriesByVoter(_ context.Context, _ uint64) ([]string, error) {
	return nil, nil
}

func (s *fakeBattleRepo) ListCategoriesByCreator(_ context.Context, userID uint64) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range s.battles {
		if b.CreatorID != userID {
			continue
		}
		if _, ok := seen[b.Category]; !ok {
			seen[b.Category] = struct{}{}
			out = append(out, b.Category)
		}
	}
	return out, nil
}

func pageBattles(battles []*model.Battle, limit, offset int) []*model.Battle {
	if offset >= len(battles) {
		return nil
	}
	battles = battles[offset:]
	if limit > 0 && len(battles) > limit {
		battles = battles[:limit]
	}
	return battles
}

type fakeElementRepo struct {
	elements map[uint64]*model.Element
	nextID   uint64
}

func (s *fakeElementRepo) GetElement(_ context.Context, id uint64) (*model.Element, error) {
	element, ok := s.elements[id]
	if !ok {
		return nil, nil
	}
	return element, nil
}

func (s *fakeElementRepo) ListByBattle(_ context.Context, battleID uint64) ([]*model.Element, error) {
	var out []*model.Element
	for _, e := range s.elements {
		if e.BattleID == battleID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (s *fakeElementRepo) UpdateVoteStats(_ context.Context, id uint64, count int64, percentage float64) error {
	if e, ok := s.elements[id]; ok {
		e.VoteCount = count
		e.VotePercentage = percentage
	}
	return nil
}

type fakeUserRepo struct {
	users  map[uint64]*model.User
	nextID uint64
}

func (s *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserRepo) GetUserByID(_ context.Context, id uint64) (*model.User, error) {
	user, ok := s.users[id]
	if !ok || user.IsDelete {
		return nil, nil
	}
	return user, nil
}

func (s *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username != nil && *user.Username == username && !user.IsDelete {
			return user, nil
		}
	}
	return nil, nil
}

// fakeActionRepo 互动数据只保留计数，指标重算只关心数量
type fakeActionRepo struct {
	likes    map[uint64]int64
	shares   map[uint64]int64
	comments map[uint64]int64
}

func (s *fakeActionRepo) CreateLike(_ context.Context, like *model.BattleLike) error {
	s.likes[like.BattleID]++
	return nil
}

func (s *fakeActionRepo) DeleteLike(_ context.Context, _, battleID uint64) error {
	if s.likes[battleID] > 0 {
		s.likes[battleID]--
	}
	return nil
}

func (s *fakeActionRepo) CheckLikeExists(_ context.Context, _, _ uint64) (bool, error) {
	return false, nil
}

func (s *fakeActionRepo) CountLikesByBattle(_ context.Context, battleID uint64) (int64, error) {
	return s.likes[battleID], nil
}

func (s *fakeActionRepo) CreateShare(_ context.Context, share *model.BattleShare) error {
	s.shares[share.BattleID]++
	return nil
}

func (s *fakeActionRepo) CountSharesByBattle(_ context.Context, battleID uint64) (int64, error) {
	return s.shares[battleID], nil
}

func (s *fakeActionRepo) CreateComment(_ context.Context, comment *model.BattleComment) error {
	s.comments[comment.BattleID]++
	return nil
}

func (s *fakeActionRepo) GetCommentByID(_ context.Context, _ uint64) (*model.BattleComment, error) {
	return nil, nil
}

func (s *fakeActionRepo) DeleteComment(_ context.Context, _ uint64) error {
	return nil
}

func (s *fakeActionRepo) ListRootComments(_ context.Context, _ uint64, _, _ int) ([]*model.BattleComment, error) {
	return nil, nil
}

func (s *fakeActionRepo) ListReplies(_ context.Context, _ uint64, _, _ int) ([]*model.BattleComment, error) {
	return nil, nil
}

func (s *fakeActionRepo) CountCommentsByBattle(_ context.Context, battleID uint64) (int64, error) {
	return s.comments[battleID], nil
}

// serviceFixture 一套内存仓储加真实服务的组装，服务层用例共用
type serviceFixture struct {
	votes    *fakeVoteRepo
	battles  *fakeBattleRepo
	elements *fakeElementRepo
	users    *fakeUserRepo
	actions  *fakeActionRepo

	metricSvc   BattleMetricService
	trendingSvc TrendingService
	voteSvc     VoteService
	battleSvc   BattleService
}

func newServiceFixture() *serviceFixture {
	elements := &fakeElementRepo{elements: make(map[uint64]*model.Element)}
	battles := &fakeBattleRepo{battles: make(map[uint64]*model.Battle), elements: elements}
	votes := &fakeVoteRepo{}
	users := &fakeUserRepo{users: make(map[uint64]*model.User)}
	actions := &fakeActionRepo{
		likes:    make(map[uint64]int64),
		shares:   make(map[uint64]int64),
		comments: make(map[uint64]int64),
	}

	f := &serviceFixture{votes: votes, battles: battles, elements: elements, users: users, actions: actions}
	f.metricSvc = NewBattleMetricService(battles, elements, votes, actions)
	f.trendingSvc = NewTrendingService(battles, votes)
	f.voteSvc = NewVoteService(votes, battles, elements, users, f.metricSvc, f.trendingSvc)
	f.battleSvc = NewBattleService(battles, users, f.trendingSvc)
	return f
}

func (f *serviceFixture) addBattle(battle *model.Battle) *model.Battle {
	if battle.ID > f.battles.nextID {
		f.battles.nextID = battle.ID
	}
	f.battles.battles[battle.ID] = battle
	return battle
}

func (f *serviceFixture) addElement(element *model.Element) *model.Element {
	if element.ID > f.elements.nextID {
		f.elements.nextID = element.ID
	}
	f.elements.elements[element.ID] = element
	return element
}
