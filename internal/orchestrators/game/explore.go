package game

import (
	"context"
	"fmt"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/narrator"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/enemy"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/rules"
)

const maxEnemyTier = 3

// handleContinue advances exploration by one event. The narrator picks the
// event type unless the boss threshold or the pacing guard overrides it.
func (o *orchestrator) handleContinue(ctx context.Context, camp *entities.Campaign) (*ProcessActionOutput, error) {
	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	ch := chOut.Character

	recent, err := o.eventRepo.ListRecent(ctx, gameevent.ListRecentInput{
		CampaignID: camp.ID,
		Limit:      o.tuning.RecentEventWindow,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recent events")
	}

	nextNumber := 1
	if n := len(recent.Events); n > 0 {
		nextNumber = recent.Events[n-1].Number + 1
	}

	ec := narrator.EventContext{
		CampaignID:    camp.ID,
		CharacterName: ch.Name,
		EventNumber:   nextNumber,
		RecentEvents:  eventMessages(recent.Events),
	}

	// The boss is not optional: once the campaign is deep enough the next
	// encounter is the boss fight.
	if nextNumber >= o.tuning.BossEventThreshold {
		return o.eventCombat(ctx, camp, ch, ec, true)
	}

	eventType, err := o.narrator.GenerateEventType(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pick event type")
	}
	if eventType == entities.EventDescriptive &&
		trailingDescriptive(recent.Events) >= o.tuning.MaxConsecutiveDescriptive {
		eventType = entities.EventEnvironmental
	}

	switch eventType {
	case entities.EventEnvironmental:
		return o.eventEnvironmental(ctx, camp, ec)
	case entities.EventCombat:
		return o.eventCombat(ctx, camp, ch, ec, false)
	case entities.EventItemDrop:
		return o.eventItemDrop(ctx, camp, ec)
	default:
		return o.eventDescriptive(ctx, camp, ec)
	}
}

// eventDescriptive logs a pure narrative beat.
func (o *orchestrator) eventDescriptive(ctx context.Context, camp *entities.Campaign, ec narrator.EventContext) (*ProcessActionOutput, error) {
	ec.EventType = entities.EventDescriptive
	message, err := o.narrator.GenerateDescription(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate description")
	}

	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventDescriptive,
		Message:    message,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to log event")
	}
	o.publishLogged(ctx, camp, appended.Event)

	state, err := o.buildState(ctx, camp, entities.PhaseExploration, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message}, nil
}

// eventEnvironmental offers an investigation. Nothing durable changes until
// the player answers; the prompt lives only in memory.
func (o *orchestrator) eventEnvironmental(ctx context.Context, camp *entities.Campaign, ec narrator.EventContext) (*ProcessActionOutput, error) {
	ec.EventType = entities.EventEnvironmental
	message, err := o.narrator.GenerateDescription(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate description")
	}

	o.prompts.set(camp.ID, pendingPrompt{
		Type:        entities.EventEnvironmental,
		Description: message,
		EventNumber: ec.EventNumber,
	})

	state, err := o.buildState(ctx, camp, entities.PhaseInvestigation, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message}, nil
}

// eventItemDrop generates loot and stores it, space permitting.
func (o *orchestrator) eventItemDrop(ctx context.Context, camp *entities.Campaign, ec narrator.EventContext) (*ProcessActionOutput, error) {
	item, err := o.narrator.GenerateItemDrop(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate item")
	}

	held, err := o.inventoryRepo.List(ctx, inventory.ListInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	kept := len(held.Items) < o.tuning.InventoryCapacity
	if kept {
		if _, err := o.inventoryRepo.Add(ctx, inventory.AddInput{CampaignID: camp.ID, Item: item}); err != nil {
			return nil, errors.Wrap(err, "failed to store item")
		}
	}

	ec.EventType = entities.EventItemDrop
	ec.Item = item
	message, err := o.narrator.GenerateDescription(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate description")
	}
	if !kept {
		message += " Your pack is full; you leave it behind."
	}

	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventItemDrop,
		Message:    message,
		Payload: &entities.EventPayload{
			Loot: &entities.LootData{ItemID: item.ID, ItemName: item.Name, Kept: kept},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to log event")
	}
	o.publishLogged(ctx, camp, appended.Event)

	state, err := o.buildState(ctx, camp, entities.PhaseExploration, message, nil)
	if err != nil {
		return nil, err
	}
	out := &ProcessActionOutput{State: state, Message: message}
	if kept {
		out.ItemFound = item
	}
	return out, nil
}

// eventCombat spawns a fight. The encounter event is durable before the
// snapshot exists, so a crash between the two still recovers into combat.
func (o *orchestrator) eventCombat(ctx context.Context, camp *entities.Campaign, ch *entities.Character, ec narrator.EventContext, boss bool) (*ProcessActionOutput, error) {
	maxTier := 1 + ec.EventNumber/o.tuning.DifficultyTierEvents
	if maxTier > maxEnemyTier {
		maxTier = maxEnemyTier
	}
	if boss {
		maxTier = maxEnemyTier
	}

	picked, err := o.enemyRepo.GetRandom(ctx, enemy.GetRandomInput{MaxTier: maxTier, Boss: boss})
	if err != nil {
		return nil, errors.Wrap(err, "failed to pick enemy")
	}
	en := picked.Enemy

	ec.EventType = entities.EventCombat
	ec.Enemy = en
	message, err := o.narrator.GenerateDescription(ctx, ec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate description")
	}

	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventCombat,
		Message:    message,
		Payload: &entities.EventPayload{
			Combat: &entities.CombatData{
				EnemyID:   en.ID,
				EnemyName: en.Name,
				Phase:     entities.CombatPhaseEncounter,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to log encounter")
	}

	items, err := o.inventoryRepo.List(ctx, inventory.ListInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	created, err := o.combatStore.Create(ctx, combat.CreateInput{
		Snapshot: snapshotFrom(camp.ID, ch, en, items.Items),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create combat snapshot")
	}

	o.publishLogged(ctx, camp, appended.Event)
	o.publish(ctx, topicCombatStarted, ch,
		"campaign_id", camp.ID,
		"enemy_id", en.ID,
		"boss", boss)

	state, err := o.buildState(ctx, camp, entities.PhaseCombat, message, created.Snapshot)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message}, nil
}

// handleInvestigate resolves a pending prompt: roll, scale the narrator's
// proposed stat change, and apply it durably.
func (o *orchestrator) handleInvestigate(ctx context.Context, camp *entities.Campaign) (*ProcessActionOutput, error) {
	prompt, ok := o.prompts.get(camp.ID)
	if !ok {
		return nil, errors.FailedPrecondition("no investigation is pending")
	}

	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	ch := chOut.Character

	roll, outcome, err := o.rollClassified()
	if err != nil {
		return nil, err
	}

	boost, err := o.narrator.GenerateStatBoost(ctx, narrator.EventContext{
		CampaignID:    camp.ID,
		CharacterName: ch.Name,
		EventNumber:   prompt.EventNumber,
		EventType:     prompt.Type,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate stat boost")
	}

	final, err := rules.ApplyRoll(roll, boost.Value)
	if err != nil {
		return nil, err
	}

	applied := ch.ApplyStatDelta(boost.Stat, final)
	if applied != 0 {
		if _, err := o.characterRepo.Update(ctx, character.UpdateInput{Character: ch}); err != nil {
			return nil, errors.Wrap(err, "failed to save character")
		}
	}

	message := investigationMessage(outcome, boost.Stat, applied)
	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventEnvironmental,
		Message:    message,
		Payload: &entities.EventPayload{
			Roll:       &entities.RollData{Value: roll, Outcome: string(outcome)},
			StatChange: &entities.StatChangeData{Stat: boost.Stat, Base: boost.Value, Applied: applied},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to log investigation")
	}

	o.prompts.clear(camp.ID)
	o.publishLogged(ctx, camp, appended.Event)

	state, err := o.buildState(ctx, camp, entities.PhaseExploration, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message}, nil
}

// handleDecline walks away from the prompt and immediately rolls the next
// event so the player always has a next action.
func (o *orchestrator) handleDecline(ctx context.Context, camp *entities.Campaign) (*ProcessActionOutput, error) {
	prompt, ok := o.prompts.get(camp.ID)
	if !ok {
		return nil, errors.FailedPrecondition("no investigation is pending")
	}

	o.prompts.clear(camp.ID)

	message := "You decide not to linger and press on."
	appended, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventEnvironmental,
		Message:    message,
		Payload: &entities.EventPayload{
			Declined: &entities.DeclinedEventData{DeclinedType: prompt.Type},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to log decline")
	}
	o.publishLogged(ctx, camp, appended.Event)

	return o.handleContinue(ctx, camp)
}

func (o *orchestrator) publishLogged(ctx context.Context, camp *entities.Campaign, event *entities.GameEvent) {
	o.publish(ctx, topicEventLogged, event,
		"campaign_id", camp.ID,
		"event_number", event.Number,
		"event_type", string(event.Type))
}

func investigationMessage(outcome dice.Outcome, stat entities.StatType, applied int) string {
	switch {
	case outcome == dice.CriticalFailure:
		return "Whatever power dwelt here slips through your fingers. Nothing happens."
	case applied == 0:
		return "You search carefully, but find nothing of use."
	case applied > 0:
		return fmt.Sprintf("Power seeps into you: %+d %s.", applied, stat)
	default:
		return fmt.Sprintf("A cold sting runs through you: %+d %s.", applied, stat)
	}
}

func eventMessages(events []*entities.GameEvent) []string {
	msgs := make([]string, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

func trailingDescriptive(events []*entities.GameEvent) int {
	count := 0
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != entities.EventDescriptive {
			break
		}
		count++
	}
	return count
}
