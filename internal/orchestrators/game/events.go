package game

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"
)

// Bus topics published by the engine. Subscribers (metrics, future
// achievements) hang off these without the engine knowing about them.
const (
	topicCampaignStarted = "dungeon.campaign.started"
	topicEventLogged     = "dungeon.event.logged"
	topicCombatStarted   = "dungeon.combat.started"
	topicCombatEnded     = "dungeon.combat.ended"
)

// publish emits a bus event with key/value context pairs. Publishing is
// best-effort: a subscriber failure is logged, never surfaced to the player.
func (o *orchestrator) publish(ctx context.Context, topic string, source core.Entity, kv ...any) {
	event := events.NewGameEvent(topic, source, nil)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		event.Context().Set(key, kv[i+1])
	}

	if err := o.eventBus.Publish(ctx, event); err != nil {
		o.logger.Warn("event bus publish failed",
			"topic", topic,
			"error", err)
	}
}
