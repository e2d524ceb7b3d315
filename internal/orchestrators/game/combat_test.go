package game_test

import (
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/orchestrators/game"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
)

// installFight puts a campaign into an active fight: a durable encounter
// event plus a snapshot, the same pair the engine writes when combat starts.
func (s *OrchestratorTestSuite) installFight(campaignID string, en *entities.Enemy, attack, defense int, items []entities.Item) {
	s.appendEncounter(campaignID, en)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	_, err := s.combatStore.Create(s.ctx, combat.CreateInput{
		Snapshot: &entities.CombatSnapshot{
			CampaignID:       campaignID,
			Enemy:            *en,
			EnemyHP:          en.Health,
			EnemyMaxHP:       en.Health,
			CharacterAttack:  attack,
			CharacterDefense: defense,
			Inventory:        items,
			OriginalItemIDs:  ids,
		},
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) characterHealth(campaignID string) int {
	out, err := s.characterRepo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: campaignID})
	s.Require().NoError(err)
	return out.Character.CurrentHealth
}

func (s *OrchestratorTestSuite) TestAttackExchangeThenVictory() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10, 10, 10)
	campaignID := s.seedCampaign(10, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	// First exchange: 10 attack less 3 defense deals 7; the counter of
	// 8 attack less 5 defense takes 3.
	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(entities.PhaseCombat, out.State.Phase)
	s.Require().NotNil(out.Combat)
	s.Equal(7, out.Combat.DamageDealt)
	s.Equal(3, out.Combat.DamageTaken)
	s.Equal(10, out.Combat.Roll)
	s.Equal(dice.Regular, out.Combat.RollOutcome)
	s.False(out.Combat.EnemyDefeated)
	s.Require().NotNil(out.State.Combat)
	s.Equal(5, out.State.Combat.EnemyHP)
	s.Equal(7, s.characterHealth(campaignID))

	// Second exchange kills the enemy before it can swing. The reward
	// roll of 10 applies the narrator's +5 health boost at face value.
	out, err = svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(entities.PhaseExploration, out.State.Phase)
	s.Require().NotNil(out.Combat)
	s.True(out.Combat.EnemyDefeated)
	s.Equal(0, out.Combat.DamageTaken)
	s.Nil(out.State.Combat)
	s.Equal(12, s.characterHealth(campaignID))

	_, err = s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.True(errors.IsNotFound(err))

	latest, err := s.eventRepo.Latest(s.ctx, gameevent.LatestInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(entities.EventCombat, latest.Event.Type)
	s.Equal(entities.CombatPhaseConclusion, latest.Event.Payload.Combat.Phase)
	s.Equal(entities.CombatOutcomeVictory, latest.Event.Payload.Combat.Outcome)
}

func (s *OrchestratorTestSuite) TestDamageNeverDropsBelowOne() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10)
	campaignID := s.seedCampaign(5, 50, 10, 100)
	en := s.seedEnemy("enm_wall", 50, 8, 100, false)
	s.installFight(campaignID, en, 10, 100, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(1, out.Combat.DamageDealt)
	s.Equal(1, out.Combat.DamageTaken)
	s.Equal(4, s.characterHealth(campaignID))
}

func (s *OrchestratorTestSuite) TestCounterattackKillEndsCampaign() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10)
	campaignID := s.seedCampaign(1, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 50, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(entities.PhaseGameOver, out.State.Phase)
	s.Empty(out.State.Choices)
	s.Contains(out.Message, "The dungeon keeps what it takes.")
	s.Equal(0, s.characterHealth(campaignID))

	camp, err := s.campaignRepo.Get(s.ctx, campaign.GetInput{ID: campaignID})
	s.Require().NoError(err)
	s.Equal(entities.CampaignGameOver, camp.Campaign.State)

	_, err = s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestFleeFailureGivesFreeSwing() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 5)
	campaignID := s.seedCampaign(10, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionFlee))
	s.Require().NoError(err)
	s.Equal(entities.PhaseCombat, out.State.Phase)
	s.Require().NotNil(out.Combat)
	s.False(out.Combat.Fled)
	s.Equal(3, out.Combat.DamageTaken)
	s.Equal(7, s.characterHealth(campaignID))

	// The fight is still live.
	snap, err := s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(12, snap.Snapshot.EnemyHP)
}

func (s *OrchestratorTestSuite) TestFleeSuccessClosesFightAndMovesOn() {
	sn := &scriptedNarrator{types: []entities.EventType{entities.EventDescriptive}}
	svc := s.newService(sn, game.Tuning{}, 15)
	campaignID := s.seedCampaign(10, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionFlee))
	s.Require().NoError(err)
	s.Equal(entities.PhaseExploration, out.State.Phase)
	s.Require().NotNil(out.Combat)
	s.True(out.Combat.Fled)
	s.Equal(10, s.characterHealth(campaignID))

	_, err = s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.True(errors.IsNotFound(err))

	// Encounter, fled conclusion, and the immediately rolled next event.
	s.Equal(3, s.eventCount(campaignID))
	events, err := s.eventRepo.ListRecent(s.ctx, gameevent.ListRecentInput{CampaignID: campaignID, Limit: 10})
	s.Require().NoError(err)
	s.Equal(entities.CombatOutcomeFled, events.Events[1].Payload.Combat.Outcome)
}

func (s *OrchestratorTestSuite) TestFleeingKeepsConsumedItemsSpent() {
	potion := entities.Item{ID: "itm_potion", Name: "Potion", StatModified: entities.StatHealth, StatValue: 8}
	sn := &scriptedNarrator{types: []entities.EventType{entities.EventDescriptive}}
	svc := s.newService(sn, game.Tuning{}, 15)
	campaignID := s.seedCampaign(10, 50, 10, 5)
	_, err := s.inventoryRepo.Add(s.ctx, inventory.AddInput{CampaignID: campaignID, Item: &potion})
	s.Require().NoError(err)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, []entities.Item{potion})

	_, err = svc.ProcessAction(s.ctx, &game.ProcessActionInput{
		AccountID: "acct_1",
		Action:    entities.PlayerAction{CampaignID: campaignID, Type: entities.ActionUseItem, ItemID: potion.ID},
	})
	s.Require().NoError(err)
	s.Equal(18, s.characterHealth(campaignID))

	_, err = svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionFlee))
	s.Require().NoError(err)

	// Escaping does not refund the potion drunk mid-fight.
	held, err := s.inventoryRepo.List(s.ctx, inventory.ListInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Empty(held.Items)
}

func (s *OrchestratorTestSuite) TestUseItemHealClampsAtMax() {
	potion := entities.Item{ID: "itm_potion", Name: "Potion", StatModified: entities.StatHealth, StatValue: 8}
	svc := s.newService(&scriptedNarrator{}, game.Tuning{})
	campaignID := s.seedCampaign(48, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, []entities.Item{potion})

	out, err := svc.ProcessAction(s.ctx, &game.ProcessActionInput{
		AccountID: "acct_1",
		Action:    entities.PlayerAction{CampaignID: campaignID, Type: entities.ActionUseItem, ItemID: potion.ID},
	})
	s.Require().NoError(err)
	s.Equal(entities.PhaseCombat, out.State.Phase)
	s.Contains(out.Message, "+2 health")
	s.Equal(50, s.characterHealth(campaignID))

	snap, err := s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Empty(snap.Snapshot.Inventory)
}

func (s *OrchestratorTestSuite) TestUseItemBuffRaisesDamage() {
	whetstone := entities.Item{ID: "itm_whetstone", Name: "Whetstone", StatModified: entities.StatAttack, StatValue: 2}
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10)
	campaignID := s.seedCampaign(30, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 20, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, []entities.Item{whetstone})

	_, err := svc.ProcessAction(s.ctx, &game.ProcessActionInput{
		AccountID: "acct_1",
		Action:    entities.PlayerAction{CampaignID: campaignID, Type: entities.ActionUseItem, ItemID: whetstone.ID},
	})
	s.Require().NoError(err)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(9, out.Combat.DamageDealt)

	// The buff never reaches the durable character.
	ch, err := s.characterRepo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(10, ch.Character.Attack)
}

func (s *OrchestratorTestSuite) TestUseItemNotInFight() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{})
	campaignID := s.seedCampaign(30, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	_, err := svc.ProcessAction(s.ctx, &game.ProcessActionInput{
		AccountID: "acct_1",
		Action:    entities.PlayerAction{CampaignID: campaignID, Type: entities.ActionUseItem, ItemID: "itm_ghost"},
	})
	s.True(errors.IsNotFound(err))
	s.Equal(30, s.characterHealth(campaignID))
}

func (s *OrchestratorTestSuite) TestBossKillCompletesCampaign() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10, 1)
	campaignID := s.seedCampaign(30, 50, 10, 5)
	boss := s.seedEnemy("enm_boss", 1, 10, 3, true)
	s.installFight(campaignID, boss, 10, 5, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(entities.PhaseVictory, out.State.Phase)
	s.Empty(out.State.Choices)
	s.Contains(out.Message, "Your campaign is complete.")
	// The reward roll of 1 is a critical failure: no loot, no boost.
	s.Nil(out.ItemFound)
	s.Contains(out.Message, "crumble to dust")

	camp, err := s.campaignRepo.Get(s.ctx, campaign.GetInput{ID: campaignID})
	s.Require().NoError(err)
	s.Equal(entities.CampaignCompleted, camp.Campaign.State)

	// The campaign is now read-only.
	repeat, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionContinue))
	s.Require().NoError(err)
	s.Equal(entities.PhaseVictory, repeat.State.Phase)
}

func (s *OrchestratorTestSuite) TestCriticalSuccessRewardGrantsLootAndBonus() {
	trophy := &entities.Item{ID: "itm_war_trophy", Name: "War Trophy", StatModified: entities.StatDefense, StatValue: 1}
	sn := &scriptedNarrator{item: trophy}
	svc := s.newService(sn, game.Tuning{}, 10, 18)
	campaignID := s.seedCampaign(30, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 1, 8, 3, false)
	s.installFight(campaignID, en, 10, 5, nil)

	out, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Require().NotNil(out.ItemFound)
	s.Equal("itm_war_trophy", out.ItemFound.ID)

	held, err := s.inventoryRepo.List(s.ctx, inventory.ListInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Require().Len(held.Items, 1)
	s.Equal("itm_war_trophy", held.Items[0].ID)

	// Flat +1 attack bonus alongside the loot.
	ch, err := s.characterRepo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(11, ch.Character.Attack)

	latest, err := s.eventRepo.Latest(s.ctx, gameevent.LatestInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Require().NotNil(latest.Event.Payload.Loot)
	s.True(latest.Event.Payload.Loot.Kept)
}

func (s *OrchestratorTestSuite) TestOpenFightIsRecoveredOnRead() {
	potion := entities.Item{ID: "itm_potion", Name: "Potion", StatModified: entities.StatHealth, StatValue: 8}
	svc := s.newService(&scriptedNarrator{}, game.Tuning{}, 10)
	campaignID := s.seedCampaign(30, 50, 10, 5)
	_, err := s.inventoryRepo.Add(s.ctx, inventory.AddInput{CampaignID: campaignID, Item: &potion})
	s.Require().NoError(err)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)

	// An encounter event with no snapshot: the transient store was lost.
	s.appendEncounter(campaignID, en)

	out, err := svc.GetGameState(s.ctx, &game.GetGameStateInput{AccountID: "acct_1", CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(entities.PhaseCombat, out.State.Phase)
	s.Require().NotNil(out.State.Combat)
	s.Equal(12, out.State.Combat.EnemyHP)

	// Rebuilt conservatively: full enemy health, no buffs, empty log.
	snap, err := s.combatStore.Get(s.ctx, combat.GetInput{CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(12, snap.Snapshot.EnemyHP)
	s.Equal(entities.TemporaryBuffs{}, snap.Snapshot.Buffs)
	s.Empty(snap.Snapshot.Log)
	s.Equal([]string{"itm_potion"}, snap.Snapshot.OriginalItemIDs)

	// The recovered fight accepts combat actions.
	attacked, err := svc.ProcessAction(s.ctx, s.action(campaignID, entities.ActionAttack))
	s.Require().NoError(err)
	s.Equal(entities.PhaseCombat, attacked.State.Phase)
}

func (s *OrchestratorTestSuite) TestConcludedFightStaysClosed() {
	svc := s.newService(&scriptedNarrator{}, game.Tuning{})
	campaignID := s.seedCampaign(30, 50, 10, 5)
	en := s.seedEnemy("enm_dummy", 12, 8, 3, false)

	s.appendEncounter(campaignID, en)
	_, err := s.eventRepo.Append(s.ctx, gameevent.AppendInput{
		CampaignID: campaignID,
		Type:       entities.EventCombat,
		Message:    "It falls.",
		Payload: &entities.EventPayload{
			Combat: &entities.CombatData{
				EnemyID: en.ID,
				Phase:   entities.CombatPhaseConclusion,
				Outcome: entities.CombatOutcomeVictory,
			},
		},
	})
	s.Require().NoError(err)

	out, err := svc.GetGameState(s.ctx, &game.GetGameStateInput{AccountID: "acct_1", CampaignID: campaignID})
	s.Require().NoError(err)
	s.Equal(entities.PhaseExploration, out.State.Phase)
	s.Nil(out.State.Combat)
}
