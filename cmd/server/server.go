package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/config"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/database"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/dice"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/handlers/api"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/narrator"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/orchestrators/game"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/idgen"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/redis"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/combat"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/enemy"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/gameevent"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/inventory"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the game server with sqlite storage, redis combat sessions, and the configured narrator.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	db, err := database.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	redisClient, err := redis.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create redis client")
	}
	defer func() { _ = redisClient.Close() }()

	realClock := clock.New()

	campaignRepo, err := campaign.NewSQLite(&campaign.Config{DB: db, Clock: realClock})
	if err != nil {
		return err
	}
	characterRepo, err := character.NewSQLite(&character.Config{DB: db})
	if err != nil {
		return err
	}
	enemyRepo, err := enemy.NewSQLite(&enemy.Config{DB: db})
	if err != nil {
		return err
	}
	inventoryRepo, err := inventory.NewSQLite(&inventory.Config{DB: db, Clock: realClock})
	if err != nil {
		return err
	}
	eventRepo, err := gameevent.NewSQLite(&gameevent.Config{
		DB:    db,
		Clock: realClock,
		IDGen: idgen.NewPrefixed("evt"),
	})
	if err != nil {
		return err
	}
	combatStore, err := combat.NewRedisRepository(&combat.Config{
		Client: redisClient,
		Clock:  realClock,
		TTL:    cfg.CombatSessionTTL,
	})
	if err != nil {
		return err
	}

	gameService, err := game.NewOrchestrator(&game.Config{
		CampaignRepo:  campaignRepo,
		CharacterRepo: characterRepo,
		EnemyRepo:     enemyRepo,
		InventoryRepo: inventoryRepo,
		EventRepo:     eventRepo,
		CombatStore:   combatStore,
		Narrator:      buildNarrator(cfg, logger),
		Roller:        dice.NewRoller(),
		EventBus:      events.NewBus(),
		IDGenerator:   idgen.NewPrefixed("camp"),
		Logger:        logger,
		Tuning: game.Tuning{
			BossEventThreshold:        cfg.BossEventThreshold,
			DifficultyTierEvents:      cfg.DifficultyTierEvents,
			MaxConsecutiveDescriptive: cfg.MaxConsecutiveDescriptive,
			InventoryCapacity:         cfg.InventoryCapacity,
		},
	})
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(&api.Config{GameService: gameService, Logger: logger})
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- errors.Wrap(err, "failed to serve")
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down http server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timeout exceeded, forcing stop")
			return srv.Close()
		}
		logger.Info("server stopped gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

// buildNarrator wires OpenAI behind the fallback decorator. Without an API
// key the narrator runs in static mode and the game stays playable.
func buildNarrator(cfg *config.Config, logger *slog.Logger) narrator.Service {
	var inner narrator.Service
	if cfg.OpenAIKey != "" {
		openAI, err := narrator.NewOpenAI(&narrator.OpenAIConfig{
			Client: openai.NewClient(cfg.OpenAIKey),
			Model:  cfg.OpenAIModel,
		})
		if err != nil {
			logger.Warn("failed to build openai narrator, using static content", "error", err)
		} else {
			inner = openAI
		}
	} else {
		logger.Info("no openai api key configured, narrator running in static mode")
	}

	return narrator.NewFallback(&narrator.FallbackConfig{
		Inner:   inner,
		Timeout: cfg.NarratorTimeout,
		Logger:  logger,
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
