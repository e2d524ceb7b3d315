package combat

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	redisclient "github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/redis"
)

const (
	// Key pattern: combat_session:{campaign_id}
	snapshotKeyPrefix = "combat_session:"
	defaultTTL        = 24 * time.Hour

	errCampaignIDEmpty = "campaign ID cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL bounds how long an abandoned fight survives. Zero means the
	// default.
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl cannot be negative")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for combat snapshots
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    ttl,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument("snapshot cannot be nil")
	}
	if input.Snapshot.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	snapshot := *input.Snapshot
	snapshot.CreatedAt = r.clock.Now().UTC()

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}

	key := r.buildKey(snapshot.CampaignID)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to store snapshot in Redis")
	}

	return &CreateOutput{Snapshot: &snapshot}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	snapshot, err := r.load(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Snapshot: snapshot}, nil
}

func (r *redisRepository) UpdateEnemyHP(ctx context.Context, input UpdateEnemyHPInput) (*UpdateEnemyHPOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	snapshot, err := r.mutate(ctx, input.CampaignID, func(s *entities.CombatSnapshot) error {
		hp := s.EnemyHP + input.Delta
		if hp < 0 {
			hp = 0
		}
		if hp > s.EnemyMaxHP {
			hp = s.EnemyMaxHP
		}
		s.EnemyHP = hp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &UpdateEnemyHPOutput{Snapshot: snapshot}, nil
}

func (r *redisRepository) ApplyBuff(ctx context.Context, input ApplyBuffInput) (*ApplyBuffOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	snapshot, err := r.mutate(ctx, input.CampaignID, func(s *entities.CombatSnapshot) error {
		switch input.Stat {
		case entities.StatAttack:
			s.Buffs.Attack += input.Value
		case entities.StatDefense:
			s.Buffs.Defense += input.Value
		default:
			return errors.InvalidArgumentf("stat %q cannot be buffed in combat", input.Stat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ApplyBuffOutput{Snapshot: snapshot}, nil
}

func (r *redisRepository) RemoveOneItem(ctx context.Context, input RemoveOneItemInput) (*RemoveOneItemOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	var removed *entities.Item
	snapshot, err := r.mutate(ctx, input.CampaignID, func(s *entities.CombatSnapshot) error {
		for i := range s.Inventory {
			if s.Inventory[i].ID != input.ItemID {
				continue
			}
			item := s.Inventory[i]
			removed = &item
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return nil
		}
		return errors.NotFoundf("item %s not in combat inventory", input.ItemID)
	})
	if err != nil {
		return nil, err
	}
	return &RemoveOneItemOutput{Item: removed, Snapshot: snapshot}, nil
}

func (r *redisRepository) AppendLog(ctx context.Context, input AppendLogInput) (*AppendLogOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	snapshot, err := r.mutate(ctx, input.CampaignID, func(s *entities.CombatSnapshot) error {
		s.Log = append(s.Log, input.Line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AppendLogOutput{Snapshot: snapshot}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	deleted, err := r.client.Del(ctx, r.buildKey(input.CampaignID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete snapshot from Redis")
	}

	return &DeleteOutput{Existed: deleted > 0}, nil
}

// load fetches and decodes a snapshot.
func (r *redisRepository) load(ctx context.Context, campaignID string) (*entities.CombatSnapshot, error) {
	data, err := r.client.Get(ctx, r.buildKey(campaignID)).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.NotFoundf("no active combat for campaign %s", campaignID)
		}
		return nil, errors.Wrap(err, "failed to get snapshot from Redis")
	}

	var snapshot entities.CombatSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal snapshot")
	}
	return &snapshot, nil
}

// mutate is a read-modify-write helper. The engine serializes actions per
// campaign, so there is a single writer per key and no CAS is needed here.
// KeepTTL preserves the expiry set at combat start.
func (r *redisRepository) mutate(ctx context.Context, campaignID string, fn func(*entities.CombatSnapshot) error) (*entities.CombatSnapshot, error) {
	snapshot, err := r.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := fn(snapshot); err != nil {
		return nil, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal snapshot")
	}

	if err := r.client.Set(ctx, r.buildKey(campaignID), data, redis.KeepTTL).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to update snapshot in Redis")
	}

	return snapshot, nil
}

func (r *redisRepository) buildKey(campaignID string) string {
	return snapshotKeyPrefix + campaignID
}
