package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/narrator"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/rules"
)

// fleeSuccessFloor is the roll a flee must beat; rolls of 11-20 escape,
// an even 50% chance on a d20.
const fleeSuccessFloor = 10

// damage is the combat formula: attacker always lands at least 1.
func damage(attack, defense int) int {
	return max(1, attack-defense)
}

// handleAttack resolves one exchange: the player strikes, and if the enemy
// survives it strikes back. The roll classification colors the narrative
// only; damage is pure stats.
func (o *orchestrator) handleAttack(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot) (*ProcessActionOutput, error) {
	roll, outcome, err := o.rollClassified()
	if err != nil {
		return nil, err
	}

	dealt := damage(snap.EffectiveAttack(), snap.Enemy.Defense)
	updated, err := o.combatStore.UpdateEnemyHP(ctx, combat.UpdateEnemyHPInput{
		CampaignID: camp.ID,
		Delta:      -dealt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply damage")
	}
	snap = updated.Snapshot

	hitLine := fmt.Sprintf("You hit the %s for %d damage.", snap.Enemy.Name, dealt)
	if outcome == dice.CriticalSuccess {
		hitLine = fmt.Sprintf("A perfect strike! You hit the %s for %d damage.", snap.Enemy.Name, dealt)
	}
	if _, err := o.combatStore.AppendLog(ctx, combat.AppendLogInput{CampaignID: camp.ID, Line: hitLine}); err != nil {
		return nil, errors.Wrap(err, "failed to append combat log")
	}

	result := &CombatResult{Roll: roll, RollOutcome: outcome, DamageDealt: dealt}

	if snap.EnemyHP <= 0 {
		result.EnemyDefeated = true
		return o.concludeVictory(ctx, camp, snap, result)
	}

	return o.enemyCounterattack(ctx, camp, snap, result, hitLine)
}

// enemyCounterattack applies the enemy's swing to durable character health
// and concludes with defeat when it kills.
func (o *orchestrator) enemyCounterattack(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot, result *CombatResult, priorLine string) (*ProcessActionOutput, error) {
	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	ch := chOut.Character

	taken := damage(snap.Enemy.Attack, snap.EffectiveDefense())
	ch.ApplyHealthDelta(-taken)
	if _, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: ch}); err != nil {
		return nil, errors.Wrap(err, "failed to save character")
	}
	result.DamageTaken = taken

	counterLine := fmt.Sprintf("The %s strikes back for %d damage.", snap.Enemy.Name, taken)
	logged, err := o.combatStore.AppendLog(ctx, combat.AppendLogInput{CampaignID: camp.ID, Line: counterLine})
	if err != nil {
		return nil, errors.Wrap(err, "failed to append combat log")
	}
	snap = logged.Snapshot

	if ch.IsDead() {
		return o.concludeDefeat(ctx, camp, snap, result)
	}

	message := priorLine + " " + counterLine
	state, err := o.buildState(ctx, camp, entities.PhaseCombat, message, snap)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message, Combat: result}, nil
}

// handleFlee rolls the 50% escape gate. Success concludes the fight and
// immediately rolls the next event; failure hands the enemy a free swing.
func (o *orchestrator) handleFlee(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot) (*ProcessActionOutput, error) {
	roll, outcome, err := o.rollClassified()
	if err != nil {
		return nil, err
	}
	result := &CombatResult{Roll: roll, RollOutcome: outcome}

	if roll <= fleeSuccessFloor {
		if _, err := o.combatStore.AppendLog(ctx, combat.AppendLogInput{
			CampaignID: camp.ID,
			Line:       "You try to run, but the way is blocked.",
		}); err != nil {
			return nil, errors.Wrap(err, "failed to append combat log")
		}
		return o.enemyCounterattack(ctx, camp, snap, result, "You fail to escape.")
	}

	result.Fled = true

	if err := o.reconcileConsumedItems(ctx, camp.ID, snap); err != nil {
		return nil, err
	}

	fleeMessage, err := o.concludeFight(ctx, camp, snap, entities.CombatOutcomeFled, nil)
	if err != nil {
		return nil, err
	}

	// The player is back in the corridor; give them the next event right
	// away so the story never stalls.
	out, err := o.handleContinue(ctx, camp)
	if err != nil {
		return nil, err
	}
	out.Message = fleeMessage + " " + out.Message
	out.State.Message = out.Message
	out.Combat = result
	return out, nil
}

// handleUseItem consumes an item mid-fight. Health effects land on the
// durable character; attack and defense become temporary buffs that die
// with the snapshot.
func (o *orchestrator) handleUseItem(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot, itemID string) (*ProcessActionOutput, error) {
	item := snap.FindItem(itemID)
	if item == nil {
		return nil, errors.NotFoundf("item %s is not available in this fight", itemID)
	}

	var line string
	switch item.StatModified {
	case entities.StatHealth:
		chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
		if err != nil {
			return nil, errors.Wrap(err, "failed to load character")
		}
		ch := chOut.Character
		applied := ch.ApplyHealthDelta(item.StatValue)
		if _, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: ch}); err != nil {
			return nil, errors.Wrap(err, "failed to save character")
		}
		line = fmt.Sprintf("You use %s: %+d health.", item.Name, applied)
		if ch.IsDead() {
			// Cursed consumables can finish the job the enemy started.
			removed, rerr := o.combatStore.RemoveOneItem(ctx, combat.RemoveOneItemInput{CampaignID: camp.ID, ItemID: itemID})
			if rerr != nil {
				return nil, errors.Wrap(rerr, "failed to consume item")
			}
			return o.concludeDefeat(ctx, camp, removed.Snapshot, &CombatResult{})
		}
	case entities.StatAttack, entities.StatDefense:
		if _, err := o.combatStore.ApplyBuff(ctx, combat.ApplyBuffInput{
			CampaignID: camp.ID,
			Stat:       item.StatModified,
			Value:      item.StatValue,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to apply buff")
		}
		line = fmt.Sprintf("You use %s: %+d %s for this fight.", item.Name, item.StatValue, item.StatModified)
	default:
		return nil, errors.Internalf("item %s has unknown stat %q", item.ID, item.StatModified)
	}

	if _, err := o.combatStore.RemoveOneItem(ctx, combat.RemoveOneItemInput{CampaignID: camp.ID, ItemID: itemID}); err != nil {
		return nil, errors.Wrap(err, "failed to consume item")
	}
	logged, err := o.combatStore.AppendLog(ctx, combat.AppendLogInput{CampaignID: camp.ID, Line: line})
	if err != nil {
		return nil, errors.Wrap(err, "failed to append combat log")
	}
	snap = logged.Snapshot

	state, err := o.buildState(ctx, camp, entities.PhaseCombat, line, snap)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: line}, nil
}

// concludeVictory resolves rewards, reconciles consumed items, and closes
// the fight. A boss kill completes the campaign.
func (o *orchestrator) concludeVictory(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot, result *CombatResult) (*ProcessActionOutput, error) {
	rewardMessage, itemFound, err := o.resolveRewards(ctx, camp, snap)
	if err != nil {
		return nil, err
	}

	if err := o.reconcileConsumedItems(ctx, camp.ID, snap); err != nil {
		return nil, err
	}

	phase := entities.PhaseExploration
	if snap.Enemy.Boss {
		camp.State = entities.CampaignCompleted
		if _, err := o.campaignRepo.Update(ctx, campaign.UpdateInput{Campaign: camp}); err != nil {
			return nil, errors.Wrap(err, "failed to complete campaign")
		}
		phase = entities.PhaseVictory
	}

	message, err := o.concludeFight(ctx, camp, snap, entities.CombatOutcomeVictory, itemFound)
	if err != nil {
		return nil, err
	}
	if rewardMessage != "" {
		message += " " + rewardMessage
	}
	if phase == entities.PhaseVictory {
		message += " " + victoryMessage
	}

	state, err := o.buildState(ctx, camp, phase, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message, Combat: result, ItemFound: itemFound}, nil
}

// concludeDefeat ends the campaign. Durable writes land before the snapshot
// is cleared so a failure here leaves the fight recoverable.
func (o *orchestrator) concludeDefeat(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot, result *CombatResult) (*ProcessActionOutput, error) {
	if err := o.reconcileConsumedItems(ctx, camp.ID, snap); err != nil {
		return nil, err
	}

	camp.State = entities.CampaignGameOver
	if _, err := o.campaignRepo.Update(ctx, campaign.UpdateInput{Campaign: camp}); err != nil {
		return nil, errors.Wrap(err, "failed to end campaign")
	}

	message, err := o.concludeFight(ctx, camp, snap, entities.CombatOutcomeDefeat, nil)
	if err != nil {
		return nil, err
	}
	message += " " + gameOverMessage

	state, err := o.buildState(ctx, camp, entities.PhaseGameOver, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message, Combat: result}, nil
}

// concludeFight logs the conclusion event, announces it on the bus, and —
// only after every durable write succeeded — clears the snapshot.
func (o *orchestrator) concludeFight(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot, outcome entities.CombatOutcome, loot *entities.Item) (string, error) {
	message, err := o.narrator.GenerateDescription(ctx, narrator.EventContext{
		CampaignID: camp.ID,
		EventType:  entities.EventCombat,
		Enemy:      &snap.Enemy,
		Outcome:    outcome,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to generate conclusion")
	}

	payload := &entities.EventPayload{
		Combat: &entities.CombatData{
			EnemyID:   snap.Enemy.ID,
			EnemyName: snap.Enemy.Name,
			Phase:     entities.CombatPhaseConclusion,
			Outcome:   outcome,
		},
	}
	if loot != nil {
		payload.Loot = &entities.LootData{ItemID: loot.ID, ItemName: loot.Name, Kept: true}
	}

	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventCombat,
		Message:    message,
		Payload:    payload,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to log conclusion")
	}

	o.publishLogged(ctx, camp, appended.Event)
	o.publish(ctx, topicCombatEnded, &snap.Enemy,
		"campaign_id", camp.ID,
		"outcome", string(outcome))

	if _, err := o.combatStore.Delete(ctx, combat.DeleteInput{CampaignID: camp.ID}); err != nil {
		return "", errors.Wrap(err, "failed to clear combat snapshot")
	}
	return message, nil
}

// resolveRewards classifies a fresh roll: nothing on a critical failure, a
// scaled stat boost on a regular roll, and loot plus a flat bonus stat on a
// critical success. The two critical-success narrator calls run
// concurrently; both land or both fall back before the turn resolves.
func (o *orchestrator) resolveRewards(ctx context.Context, camp *entities.Campaign, snap *entities.CombatSnapshot) (string, *entities.Item, error) {
	roll, outcome, err := o.rollClassified()
	if err != nil {
		return "", nil, err
	}

	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to load character")
	}
	ch := chOut.Character

	ec := narrator.EventContext{
		CampaignID:    camp.ID,
		CharacterName: ch.Name,
		EventType:     entities.EventCombat,
		Enemy:         &snap.Enemy,
		Outcome:       entities.CombatOutcomeVictory,
	}

	switch outcome {
	case dice.CriticalFailure:
		return "The spoils crumble to dust in your hands.", nil, nil

	case dice.CriticalSuccess:
		var (
			wg    sync.WaitGroup
			item  *entities.Item
			bonus *narrator.StatBoost
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			item, _ = o.narrator.GenerateItemDrop(ctx, ec)
		}()
		go func() {
			defer wg.Done()
			bonus, _ = o.narrator.GenerateBonusStat(ctx, ec)
		}()
		wg.Wait()
		if item == nil || bonus == nil {
			return "", nil, errors.Internal("reward generation returned no content")
		}

		held, err := o.inventoryRepo.List(ctx, inventory.ListInput{CampaignID: camp.ID})
		if err != nil {
			return "", nil, errors.Wrap(err, "failed to load inventory")
		}
		kept := len(held.Items) < o.tuning.InventoryCapacity
		if kept {
			if _, err := o.inventoryRepo.Add(ctx, inventory.AddInput{CampaignID: camp.ID, Item: item}); err != nil {
				return "", nil, errors.Wrap(err, "failed to store loot")
			}
		}

		applied := ch.ApplyStatDelta(bonus.Stat, bonus.Value)
		if _, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: ch}); err != nil {
			return "", nil, errors.Wrap(err, "failed to save character")
		}

		message := fmt.Sprintf("A triumphant haul: you find %s and gain %+d %s.", item.Name, applied, bonus.Stat)
		if !kept {
			message = fmt.Sprintf("You gain %+d %s, but your pack is too full for the %s.", applied, bonus.Stat, item.Name)
			return message, nil, nil
		}
		return message, item, nil

	default:
		boost, err := o.narrator.GenerateStatBoost(ctx, ec)
		if err != nil {
			return "", nil, errors.Wrap(err, "failed to generate reward")
		}
		final, err := rules.ApplyRoll(roll, boost.Value)
		if err != nil {
			return "", nil, err
		}
		applied := ch.ApplyStatDelta(boost.Stat, final)
		if applied != 0 {
			if _, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: ch}); err != nil {
				return "", nil, errors.Wrap(err, "failed to save character")
			}
		}
		if applied == 0 {
			return "You search the remains and find nothing of worth.", nil, nil
		}
		return fmt.Sprintf("Among the remains you find strength: %+d %s.", applied, boost.Stat), nil, nil
	}
}

// reconcileConsumedItems removes from durable inventory every copy used
// during the fight. Missing rows are tolerated; the snapshot is the
// authority on what was consumed.
func (o *orchestrator) reconcileConsumedItems(ctx context.Context, campaignID string, snap *entities.CombatSnapshot) error {
	for _, itemID := range snap.ConsumedItemIDs() {
		_, err := o.inventoryRepo.RemoveOne(ctx, inventory.RemoveOneInput{
			CampaignID: campaignID,
			ItemID:     itemID,
		})
		if err != nil && !errors.IsNotFound(err) {
			return errors.Wrap(err, "failed to reconcile consumed items")
		}
	}
	return nil
}
