package combat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	cleanup func()
	repo    combat.Repository
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	var err error
	s.repo, err = combat.NewRedisRepository(&combat.Config{
		Client: client,
		Clock:  clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) newSnapshot() *entities.CombatSnapshot {
	return &entities.CombatSnapshot{
		CampaignID: "camp_1",
		Enemy: entities.Enemy{
			ID:      "enm_skeleton",
			Name:    "Skeleton Warrior",
			Health:  18,
			Attack:  8,
			Defense: 4,
		},
		EnemyHP:          18,
		EnemyMaxHP:       18,
		CharacterAttack:  10,
		CharacterDefense: 6,
		WeaponBonus:      2,
		ShieldBonus:      1,
		Inventory: []entities.Item{
			{ID: "itm_healing_draught", Name: "Healing Draught", StatModified: entities.StatHealth, StatValue: 8},
			{ID: "itm_healing_draught", Name: "Healing Draught", StatModified: entities.StatHealth, StatValue: 8},
			{ID: "itm_whetstone", Name: "Whetstone", StatModified: entities.StatAttack, StatValue: 2},
		},
		OriginalItemIDs: []string{"itm_healing_draught", "itm_healing_draught", "itm_whetstone"},
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, combat.GetInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.Equal("enm_skeleton", out.Snapshot.Enemy.ID)
	s.Equal(18, out.Snapshot.EnemyHP)
	s.Equal(12, out.Snapshot.EffectiveAttack())
	s.Equal(7, out.Snapshot.EffectiveDefense())
}

func (s *RedisRepositoryTestSuite) TestCreateReplacesExisting() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	replacement := s.newSnapshot()
	replacement.Enemy.ID = "enm_ogre"
	replacement.EnemyHP = 35
	replacement.EnemyMaxHP = 35
	_, err = s.repo.Create(s.ctx, combat.CreateInput{Snapshot: replacement})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, combat.GetInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.Equal("enm_ogre", out.Snapshot.Enemy.ID)
}

func (s *RedisRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, combat.GetInput{CampaignID: "camp_none"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateEnemyHPClampsAtZero() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	out, err := s.repo.UpdateEnemyHP(s.ctx, combat.UpdateEnemyHPInput{CampaignID: "camp_1", Delta: -50})
	s.Require().NoError(err)
	s.Equal(0, out.Snapshot.EnemyHP)
}

func (s *RedisRepositoryTestSuite) TestUpdateEnemyHPClampsAtMax() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	_, err = s.repo.UpdateEnemyHP(s.ctx, combat.UpdateEnemyHPInput{CampaignID: "camp_1", Delta: -5})
	s.Require().NoError(err)
	out, err := s.repo.UpdateEnemyHP(s.ctx, combat.UpdateEnemyHPInput{CampaignID: "camp_1", Delta: 100})
	s.Require().NoError(err)
	s.Equal(18, out.Snapshot.EnemyHP)
}

func (s *RedisRepositoryTestSuite) TestApplyBuffStacks() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	_, err = s.repo.ApplyBuff(s.ctx, combat.ApplyBuffInput{CampaignID: "camp_1", Stat: entities.StatAttack, Value: 2})
	s.Require().NoError(err)
	out, err := s.repo.ApplyBuff(s.ctx, combat.ApplyBuffInput{CampaignID: "camp_1", Stat: entities.StatAttack, Value: 3})
	s.Require().NoError(err)

	s.Equal(5, out.Snapshot.Buffs.Attack)
	s.Equal(17, out.Snapshot.EffectiveAttack())
}

func (s *RedisRepositoryTestSuite) TestApplyBuffRejectsHealth() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	_, err = s.repo.ApplyBuff(s.ctx, combat.ApplyBuffInput{CampaignID: "camp_1", Stat: entities.StatHealth, Value: 5})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestRemoveOneItemShrinksStackByOne() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	out, err := s.repo.RemoveOneItem(s.ctx, combat.RemoveOneItemInput{
		CampaignID: "camp_1",
		ItemID:     "itm_healing_draught",
	})
	s.Require().NoError(err)
	s.Equal("Healing Draught", out.Item.Name)
	s.Len(out.Snapshot.Inventory, 2)
	s.NotNil(out.Snapshot.FindItem("itm_healing_draught"))

	s.Equal([]string{"itm_healing_draught"}, out.Snapshot.ConsumedItemIDs())
}

func (s *RedisRepositoryTestSuite) TestRemoveOneItemMissing() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	_, err = s.repo.RemoveOneItem(s.ctx, combat.RemoveOneItemInput{
		CampaignID: "camp_1",
		ItemID:     "itm_nope",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestAppendLog() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	_, err = s.repo.AppendLog(s.ctx, combat.AppendLogInput{CampaignID: "camp_1", Line: "You strike for 8."})
	s.Require().NoError(err)
	out, err := s.repo.AppendLog(s.ctx, combat.AppendLogInput{CampaignID: "camp_1", Line: "The skeleton claws back for 3."})
	s.Require().NoError(err)

	s.Equal([]string{"You strike for 8.", "The skeleton claws back for 3."}, out.Snapshot.Log)
}

func (s *RedisRepositoryTestSuite) TestDeleteIsIdempotent() {
	_, err := s.repo.Create(s.ctx, combat.CreateInput{Snapshot: s.newSnapshot()})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, combat.DeleteInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.True(out.Existed)

	out, err = s.repo.Delete(s.ctx, combat.DeleteInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.False(out.Existed)

	_, err = s.repo.Get(s.ctx, combat.GetInput{CampaignID: "camp_1"})
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
