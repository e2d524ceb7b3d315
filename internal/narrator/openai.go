package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
)

const systemPrompt = `You are the narrator of a grim, turn-based dungeon crawl.
Answer every request with ONLY the exact format asked for: no preamble, no
markdown, no explanation. Keep descriptions to at most three sentences.`

// OpenAIConfig holds the configuration for the OpenAI narrator
type OpenAIConfig struct {
	Client *openai.Client
	Model  string
}

// Validate ensures all required dependencies are provided
func (c *OpenAIConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("openai client is required")
	}
	if c.Model == "" {
		return errors.InvalidArgument("model is required")
	}
	return nil
}

type openAINarrator struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a narrator backed by the OpenAI chat completion API
func NewOpenAI(cfg *OpenAIConfig) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &openAINarrator{client: cfg.Client, model: cfg.Model}, nil
}

var _ Service = (*openAINarrator)(nil)

func (n *openAINarrator) GenerateEventType(ctx context.Context, ec EventContext) (entities.EventType, error) {
	prompt := fmt.Sprintf(
		"Pick the next event for %s (turn %d). Recent events:\n%s\nAnswer with exactly one of: DESCRIPTIVE, ENVIRONMENTAL, COMBAT, ITEM_DROP.",
		ec.CharacterName, ec.EventNumber, recentList(ec))
	answer, err := n.complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	t := entities.EventType(strings.ToUpper(strings.TrimSpace(answer)))
	if !entities.KnownEventType(t) {
		return "", errors.Internalf("narrator returned unknown event type %q", answer)
	}
	return t, nil
}

func (n *openAINarrator) GenerateDescription(ctx context.Context, ec EventContext) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Narrate a %s event for %s (turn %d).", ec.EventType, ec.CharacterName, ec.EventNumber)
	if ec.Enemy != nil {
		fmt.Fprintf(&sb, " The enemy is a %s.", ec.Enemy.Name)
	}
	if ec.Item != nil {
		fmt.Fprintf(&sb, " The found item is %q: %s.", ec.Item.Name, ec.Item.Description)
	}
	if ec.Outcome != "" {
		fmt.Fprintf(&sb, " The fight just ended in %s.", ec.Outcome)
	}
	fmt.Fprintf(&sb, " Recent events:\n%s", recentList(ec))

	answer, err := n.complete(ctx, sb.String())
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.Internal("narrator returned an empty description")
	}
	return answer, nil
}

func (n *openAINarrator) GenerateStatBoost(ctx context.Context, ec EventContext) (*StatBoost, error) {
	prompt := fmt.Sprintf(
		`Propose a stat change for %s after a %s event (turn %d). Answer with JSON only: {"stat":"health|attack|defense","value":<integer between -10 and 10, non-zero>}.`,
		ec.CharacterName, ec.EventType, ec.EventNumber)
	return n.completeStat(ctx, prompt)
}

func (n *openAINarrator) GenerateItemDrop(ctx context.Context, ec EventContext) (*entities.Item, error) {
	prompt := fmt.Sprintf(
		`Invent a dungeon item found by %s (turn %d). Answer with JSON only: {"name":"...","description":"...","stat":"health|attack|defense","value":<integer between -5 and 10, non-zero>,"rarity":"common|uncommon|rare"}.`,
		ec.CharacterName, ec.EventNumber)
	answer, err := n.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Stat        string `json:"stat"`
		Value       int    `json:"value"`
		Rarity      string `json:"rarity"`
	}
	if err := json.Unmarshal([]byte(extractJSON(answer)), &raw); err != nil {
		return nil, errors.Wrapf(err, "unparseable item drop %q", answer)
	}

	stat := entities.StatType(strings.ToLower(raw.Stat))
	if raw.Name == "" || raw.Value == 0 || !knownStat(stat) {
		return nil, errors.Internalf("invalid item drop %q", answer)
	}
	if raw.Rarity == "" {
		raw.Rarity = "common"
	}

	return &entities.Item{
		ID:           itemID(raw.Name),
		Name:         raw.Name,
		Description:  raw.Description,
		StatModified: stat,
		StatValue:    raw.Value,
		Rarity:       raw.Rarity,
	}, nil
}

func (n *openAINarrator) GenerateBonusStat(ctx context.Context, ec EventContext) (*StatBoost, error) {
	prompt := fmt.Sprintf(
		`Propose a small permanent bonus for %s after a critical victory (turn %d). Answer with JSON only: {"stat":"health|attack|defense","value":<integer between 1 and 3>}.`,
		ec.CharacterName, ec.EventNumber)
	return n.completeStat(ctx, prompt)
}

func (n *openAINarrator) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     n.model,
		MaxTokens: 256,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeUnavailable, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Unavailable("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (n *openAINarrator) completeStat(ctx context.Context, prompt string) (*StatBoost, error) {
	answer, err := n.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Stat  string `json:"stat"`
		Value int    `json:"value"`
	}
	if err := json.Unmarshal([]byte(extractJSON(answer)), &raw); err != nil {
		return nil, errors.Wrapf(err, "unparseable stat boost %q", answer)
	}

	stat := entities.StatType(strings.ToLower(raw.Stat))
	if raw.Value == 0 || !knownStat(stat) {
		return nil, errors.Internalf("invalid stat boost %q", answer)
	}
	return &StatBoost{Stat: stat, Value: raw.Value}, nil
}

func recentList(ec EventContext) string {
	if len(ec.RecentEvents) == 0 {
		return "(none yet)"
	}
	return "- " + strings.Join(ec.RecentEvents, "\n- ")
}

func knownStat(s entities.StatType) bool {
	switch s {
	case entities.StatHealth, entities.StatAttack, entities.StatDefense:
		return true
	}
	return false
}

// extractJSON strips anything around the outermost JSON object; models like
// to wrap answers in code fences despite instructions.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// itemID derives a stable id from the item name so identical drops stack in
// the inventory.
func itemID(name string) string {
	slug := strings.ToLower(name)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		}
		return -1
	}, slug)
	return "itm_" + strings.Trim(slug, "_")
}
