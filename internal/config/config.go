// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
)

// Config holds everything the server needs to start.
type Config struct {
	// Server settings
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	SQLitePath string `envconfig:"SQLITE_PATH" default:"dungeon.db"`
	RedisAddr  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Narrator. An empty API key switches the narrator to static mode, so
	// the game stays playable without OpenAI access.
	OpenAIKey       string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	NarratorTimeout time.Duration `envconfig:"NARRATOR_TIMEOUT" default:"8s"`

	// Combat snapshots expire if a fight is abandoned.
	CombatSessionTTL time.Duration `envconfig:"COMBAT_SESSION_TTL" default:"24h"`

	// Game tuning
	BossEventThreshold        int `envconfig:"BOSS_EVENT_THRESHOLD" default:"20"`
	DifficultyTierEvents      int `envconfig:"DIFFICULTY_TIER_EVENTS" default:"7"`
	MaxConsecutiveDescriptive int `envconfig:"MAX_CONSECUTIVE_DESCRIPTIVE" default:"3"`
	InventoryCapacity         int `envconfig:"INVENTORY_CAPACITY" default:"10"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return &cfg, nil
}
