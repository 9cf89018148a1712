package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reelsmith/reelsmith/internal/api"
	"github.com/reelsmith/reelsmith/internal/compile"
	"github.com/reelsmith/reelsmith/internal/config"
	"github.com/reelsmith/reelsmith/internal/db"
	"github.com/reelsmith/reelsmith/internal/ffmpeg"
	"github.com/reelsmith/reelsmith/internal/logging"
	"github.com/reelsmith/reelsmith/internal/media"
	"github.com/reelsmith/reelsmith/internal/music"
	"github.com/reelsmith/reelsmith/internal/narration"
	"github.com/reelsmith/reelsmith/internal/publish"
	"github.com/reelsmith/reelsmith/internal/sourcing"
	"github.com/reelsmith/reelsmith/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.WorkspaceDir(), 0755); err != nil {
		return fmt.Errorf("failed to create workspace dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reelsmith", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}
	logger.Info("api auth token ready", "token", logging.SanitizeToken(authToken))

	fmt.Println()
	fmt.Printf("  Reelsmith %s\n", config.Version)
	fmt.Printf("  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Println()

	runnerCfg := ffmpeg.DefaultConfig(logger)
	runnerCfg.FFmpegPath = cfg.FFmpegPath()
	runnerCfg.FFprobePath = cfg.FFprobePath()
	runnerCfg.RenderTimeout = cfg.RenderTimeout()
	runnerCfg.PollInterval = cfg.PollInterval()
	runnerCfg.PollBudget = cfg.PollBudget()

	mediaRunner, err := ffmpeg.NewRunner(runnerCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize media runner: %w", err)
	}

	presets, err := compile.LoadPresets(cfg.PresetsPath())
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	planner := narration.NewPlanner(cfg.LLMBaseURL(), cfg.LLMAPIKey(), cfg.LLMModel(), logger)
	speech := narration.NewTTSClient(cfg.TTSBaseURL(), cfg.TTSAPIKey(), cfg.TTSVoice(), mediaRunner, logger)
	stock := sourcing.NewStockClient(cfg.StockBaseURL(), cfg.StockAPIKey(), mediaRunner, logger)
	generator := sourcing.NewGenerateClient(cfg.GenBaseURL(), cfg.GenAPIKey(), mediaRunner, logger)
	musicClient := music.NewClient(cfg.MusicBaseURL(), cfg.MusicAPIKey(), mediaRunner, logger)

	uploader := publish.NewYouTubeUploader(
		cfg.YouTubeClientID(), cfg.YouTubeClientSecret(), cfg.YouTubeRefreshToken(), logger)
	if !uploader.Configured() {
		logger.Info("youtube credentials not set, publishing disabled")
	}

	editService := store.NewService(repo, logger)

	runner := store.NewRunner(store.RunnerDeps{
		Repo:      repo,
		Planner:   planner,
		Stock:     stock,
		Generator: generator,
		Speech:    speech,
		Music:     musicClient,
		Media:     mediaRunner,
		Presets:   presets,
		Workspace: cfg.WorkspaceDir(),
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:        cfg.Port(),
		EditService: editService,
		Repository:  repo,
		Runner:      runner,
		Media:       mediaRunner,
		Streamer:    media.NewServer(logger),
		Publisher:   uploader,
		Logger:      logger,
		StartTime:   startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo store.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
