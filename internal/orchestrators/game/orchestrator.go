// Package game implements the campaign game engine: the state machine that
// turns a single player action into a new, consistent game state by
// combining dice randomness, stat rules, the transient combat store, and
// narrator content.
package game

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/narrator"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/idgen"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/keylock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/enemy"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
)

// Terminal messages are stable: once a campaign ends, every response
// repeats them verbatim.
const (
	gameOverMessage = "Your story has ended in the dark. The dungeon keeps what it takes."
	victoryMessage  = "The boss lies defeated. Your campaign is complete."
)

// Config holds the dependencies for the game orchestrator
type Config struct {
	CampaignRepo  campaign.Repository
	CharacterRepo character.Repository
	EnemyRepo     enemy.Repository
	InventoryRepo inventory.Repository
	EventRepo     gameevent.Repository
	CombatStore   combat.Repository
	Narrator      narrator.Service
	Roller        dice.Roller
	EventBus      events.EventBus
	IDGenerator   idgen.Generator
	Logger        *slog.Logger
	Tuning        Tuning
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.EnemyRepo == nil {
		vb.RequiredField("EnemyRepo")
	}
	if c.InventoryRepo == nil {
		vb.RequiredField("InventoryRepo")
	}
	if c.EventRepo == nil {
		vb.RequiredField("EventRepo")
	}
	if c.CombatStore == nil {
		vb.RequiredField("CombatStore")
	}
	if c.Narrator == nil {
		vb.RequiredField("Narrator")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	campaignRepo  campaign.Repository
	characterRepo character.Repository
	enemyRepo     enemy.Repository
	inventoryRepo inventory.Repository
	eventRepo     gameevent.Repository
	combatStore   combat.Repository
	narrator      narrator.Service
	roller        dice.Roller
	eventBus      events.EventBus
	idGen         idgen.Generator
	logger        *slog.Logger
	tuning        Tuning

	// locks serializes mutations per campaign; other campaigns proceed
	// independently.
	locks   *keylock.KeyLock
	prompts *promptStore
}

// NewOrchestrator creates a new game orchestrator with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &orchestrator{
		campaignRepo:  cfg.CampaignRepo,
		characterRepo: cfg.CharacterRepo,
		enemyRepo:     cfg.EnemyRepo,
		inventoryRepo: cfg.InventoryRepo,
		eventRepo:     cfg.EventRepo,
		combatStore:   cfg.CombatStore,
		narrator:      cfg.Narrator,
		roller:        cfg.Roller,
		eventBus:      cfg.EventBus,
		idGen:         cfg.IDGenerator,
		logger:        logger,
		tuning:        cfg.Tuning.withDefaults(),
		locks:         keylock.New(),
		prompts:       newPromptStore(),
	}, nil
}

var _ Service = (*orchestrator)(nil)

func (o *orchestrator) StartCampaign(ctx context.Context, input *StartCampaignInput) (*StartCampaignOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.AccountID == "" {
		return nil, errors.InvalidArgument("account ID is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("campaign name is required")
	}
	characterName := input.CharacterName
	if characterName == "" {
		characterName = "The Adventurer"
	}

	created, err := o.campaignRepo.Create(ctx, campaign.CreateInput{
		Campaign: &entities.Campaign{
			ID:        o.idGen.Generate(),
			AccountID: input.AccountID,
			Name:      input.Name,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create campaign")
	}
	camp := created.Campaign

	chOut, err := o.characterRepo.Create(ctx, character.CreateInput{
		Character: &entities.Character{
			ID:            o.idGen.Generate(),
			CampaignID:    camp.ID,
			Name:          characterName,
			CurrentHealth: 30,
			MaxHealth:     30,
			Attack:        10,
			Defense:       5,
			SpriteRef:     "sprites/hero",
			WeaponID:      "wpn_rusty_sword",
			ArmorID:       "arm_leather",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	opening, err := o.narrator.GenerateDescription(ctx, narrator.EventContext{
		CampaignID:    camp.ID,
		CharacterName: characterName,
		EventNumber:   1,
		EventType:     entities.EventDescriptive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate opening")
	}

	if _, err := o.eventRepo.Append(ctx, gameevent.AppendInput{
		CampaignID: camp.ID,
		Type:       entities.EventDescriptive,
		Message:    opening,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to log opening event")
	}

	o.publish(ctx, topicCampaignStarted, chOut.Character,
		"campaign_id", camp.ID)

	state, err := o.buildState(ctx, camp, entities.PhaseExploration, opening, nil)
	if err != nil {
		return nil, err
	}
	return &StartCampaignOutput{State: state}, nil
}

func (o *orchestrator) ListCampaigns(ctx context.Context, input *ListCampaignsInput) (*ListCampaignsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.AccountID == "" {
		return nil, errors.InvalidArgument("account ID is required")
	}

	out, err := o.campaignRepo.ListByAccount(ctx, campaign.ListByAccountInput{AccountID: input.AccountID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list campaigns")
	}
	return &ListCampaignsOutput{Campaigns: out.Campaigns}, nil
}

func (o *orchestrator) GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	// Reads take the campaign lock too: lossy combat recovery may install
	// a snapshot, and that must not race a concurrent action.
	release := o.locks.Lock(input.CampaignID)
	defer release()

	camp, err := o.ownedCampaign(ctx, input.AccountID, input.CampaignID)
	if err != nil {
		return nil, err
	}

	phase, snap, err := o.currentPhase(ctx, camp)
	if err != nil {
		return nil, err
	}

	message, err := o.currentMessage(ctx, camp, phase)
	if err != nil {
		return nil, err
	}

	state, err := o.buildState(ctx, camp, phase, message, snap)
	if err != nil {
		return nil, err
	}
	return &GetGameStateOutput{State: state}, nil
}

func (o *orchestrator) ProcessAction(ctx context.Context, input *ProcessActionInput) (*ProcessActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	action := input.Action
	if action.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}
	if !entities.KnownActionType(action.Type) {
		return nil, errors.InvalidArgumentf("unknown action type %q", action.Type)
	}
	if action.Type == entities.ActionUseItem && action.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required for use_item")
	}

	release := o.locks.Lock(action.CampaignID)
	defer release()

	camp, err := o.ownedCampaign(ctx, input.AccountID, action.CampaignID)
	if err != nil {
		return nil, err
	}

	if camp.IsTerminal() {
		return o.terminalOutput(ctx, camp)
	}

	phase, snap, err := o.currentPhase(ctx, camp)
	if err != nil {
		return nil, err
	}

	actionType := action.Type
	// A continue submitted against a pending prompt is a decline: the
	// player moved on without investigating.
	if actionType == entities.ActionContinue && phase == entities.PhaseInvestigation {
		actionType = entities.ActionDecline
	}

	if !phase.Allows(actionType) {
		return nil, errors.FailedPreconditionf(
			"action %q is not available in the %s phase", actionType, phase)
	}

	switch actionType {
	case entities.ActionContinue:
		return o.handleContinue(ctx, camp)
	case entities.ActionInvestigate:
		return o.handleInvestigate(ctx, camp)
	case entities.ActionDecline:
		return o.handleDecline(ctx, camp)
	case entities.ActionAttack:
		return o.handleAttack(ctx, camp, snap)
	case entities.ActionFlee:
		return o.handleFlee(ctx, camp, snap)
	case entities.ActionUseItem:
		return o.handleUseItem(ctx, camp, snap, action.ItemID)
	default:
		return nil, errors.Internalf("unhandled action type %q", actionType)
	}
}

// ownedCampaign loads a campaign and checks ownership. A campaign that
// exists but belongs to someone else looks exactly like one that does not
// exist.
func (o *orchestrator) ownedCampaign(ctx context.Context, accountID, campaignID string) (*entities.Campaign, error) {
	if accountID == "" {
		return nil, errors.InvalidArgument("account ID is required")
	}

	out, err := o.campaignRepo.Get(ctx, campaign.GetInput{ID: campaignID})
	if err != nil {
		return nil, err
	}
	if out.Campaign.AccountID != accountID {
		return nil, errors.NotFoundf("campaign %s not found", campaignID)
	}
	return out.Campaign, nil
}

// currentPhase derives the state machine position. When the snapshot store
// is empty but the latest durable event is an unresolved combat encounter,
// the fight is rebuilt from durable state (lossy: buffs and log are reset).
func (o *orchestrator) currentPhase(ctx context.Context, camp *entities.Campaign) (entities.GamePhase, *entities.CombatSnapshot, error) {
	switch camp.State {
	case entities.CampaignGameOver:
		return entities.PhaseGameOver, nil, nil
	case entities.CampaignCompleted:
		return entities.PhaseVictory, nil, nil
	}

	if _, ok := o.prompts.get(camp.ID); ok {
		return entities.PhaseInvestigation, nil, nil
	}

	got, err := o.combatStore.Get(ctx, combat.GetInput{CampaignID: camp.ID})
	if err == nil {
		return entities.PhaseCombat, got.Snapshot, nil
	}
	if !errors.IsNotFound(err) {
		return "", nil, errors.Wrap(err, "failed to read combat store")
	}

	latest, err := o.eventRepo.Latest(ctx, gameevent.LatestInput{CampaignID: camp.ID})
	if err != nil {
		return "", nil, err
	}
	if open, enemyID := openEncounter(latest.Event); open {
		snap, err := o.rebuildSnapshot(ctx, camp, enemyID)
		if err != nil {
			return "", nil, err
		}
		return entities.PhaseCombat, snap, nil
	}

	return entities.PhaseExploration, nil, nil
}

// openEncounter reports whether the event is a combat encounter with no
// later conclusion. Conclusions are themselves the latest event when a
// fight resolved, so inspecting only the newest event suffices.
func openEncounter(event *entities.GameEvent) (bool, string) {
	if event == nil || event.Type != entities.EventCombat {
		return false, ""
	}
	if event.Payload == nil || event.Payload.Combat == nil {
		return false, ""
	}
	if event.Payload.Combat.Phase != entities.CombatPhaseEncounter {
		return false, ""
	}
	return true, event.Payload.Combat.EnemyID
}

func (o *orchestrator) rebuildSnapshot(ctx context.Context, camp *entities.Campaign, enemyID string) (*entities.CombatSnapshot, error) {
	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character for combat recovery")
	}
	enemyOut, err := o.enemyRepo.Get(ctx, enemy.GetInput{ID: enemyID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load enemy for combat recovery")
	}
	items, err := o.inventoryRepo.List(ctx, inventory.ListInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory for combat recovery")
	}

	snap := snapshotFrom(camp.ID, chOut.Character, enemyOut.Enemy, items.Items)
	created, err := o.combatStore.Create(ctx, combat.CreateInput{Snapshot: snap})
	if err != nil {
		return nil, errors.Wrap(err, "failed to restore combat snapshot")
	}

	o.logger.Info("rebuilt combat snapshot after restart",
		"campaign_id", camp.ID,
		"enemy_id", enemyID)
	return created.Snapshot, nil
}

// snapshotFrom captures the character baseline and inventory at combat
// start. Enemy HP starts full; buffs and log start empty.
func snapshotFrom(campaignID string, ch *entities.Character, en *entities.Enemy, items []*entities.Item) *entities.CombatSnapshot {
	inv := make([]entities.Item, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		inv = append(inv, *it)
		ids = append(ids, it.ID)
	}
	return &entities.CombatSnapshot{
		CampaignID:       campaignID,
		Enemy:            *en,
		EnemyHP:          en.Health,
		EnemyMaxHP:       en.Health,
		CharacterAttack:  ch.Attack,
		CharacterDefense: ch.Defense,
		WeaponBonus:      ch.WeaponBonus(),
		ShieldBonus:      ch.ShieldBonus(),
		Inventory:        inv,
		OriginalItemIDs:  ids,
	}
}

// currentMessage picks the text GetGameState shows: terminal text, the
// pending prompt, or the latest logged event.
func (o *orchestrator) currentMessage(ctx context.Context, camp *entities.Campaign, phase entities.GamePhase) (string, error) {
	switch phase {
	case entities.PhaseGameOver:
		return gameOverMessage, nil
	case entities.PhaseVictory:
		return victoryMessage, nil
	case entities.PhaseInvestigation:
		if p, ok := o.prompts.get(camp.ID); ok {
			return p.Description, nil
		}
	}

	latest, err := o.eventRepo.Latest(ctx, gameevent.LatestInput{CampaignID: camp.ID})
	if err != nil {
		return "", err
	}
	if latest.Event == nil {
		return "You stand at the dungeon's mouth.", nil
	}
	return latest.Event.Message, nil
}

func (o *orchestrator) terminalOutput(ctx context.Context, camp *entities.Campaign) (*ProcessActionOutput, error) {
	phase := entities.PhaseGameOver
	message := gameOverMessage
	if camp.State == entities.CampaignCompleted {
		phase = entities.PhaseVictory
		message = victoryMessage
	}

	state, err := o.buildState(ctx, camp, phase, message, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessActionOutput{State: state, Message: message}, nil
}

func (o *orchestrator) buildState(ctx context.Context, camp *entities.Campaign, phase entities.GamePhase, message string, snap *entities.CombatSnapshot) (*GameState, error) {
	chOut, err := o.characterRepo.GetByCampaign(ctx, character.GetByCampaignInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character")
	}
	items, err := o.inventoryRepo.List(ctx, inventory.ListInput{CampaignID: camp.ID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	recent, err := o.eventRepo.ListRecent(ctx, gameevent.ListRecentInput{
		CampaignID: camp.ID,
		Limit:      o.tuning.RecentEventWindow,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recent events")
	}

	state := &GameState{
		Campaign:     camp,
		Character:    chOut.Character,
		Phase:        phase,
		Choices:      phase.Choices(),
		Message:      message,
		Inventory:    items.Items,
		RecentEvents: recent.Events,
	}
	if snap != nil {
		state.Combat = &CombatView{
			Enemy:            snap.Enemy,
			EnemyHP:          snap.EnemyHP,
			EnemyMaxHP:       snap.EnemyMaxHP,
			EffectiveAttack:  snap.EffectiveAttack(),
			EffectiveDefense: snap.EffectiveDefense(),
			Inventory:        snap.Inventory,
			Log:              snap.Log,
		}
	}
	return state, nil
}

// rollClassified draws one d20 and classifies it.
func (o *orchestrator) rollClassified() (int, dice.Outcome, error) {
	value, err := o.roller.Roll()
	if err != nil {
		return 0, "", errors.Wrap(err, "dice roll failed")
	}
	outcome, err := dice.Classify(value)
	if err != nil {
		return 0, "", err
	}
	return value, outcome, nil
}
