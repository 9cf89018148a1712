// Package config provides configuration management for Reelsmith.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".reelsmith"

	// Environment variable names
	EnvPort     = "REELSMITH_PORT"
	EnvLogLevel = "REELSMITH_LOG_LEVEL"
	EnvDataDir  = "REELSMITH_DATA_DIR"

	EnvFFmpegPath  = "REELSMITH_FFMPEG_PATH"
	EnvFFprobePath = "REELSMITH_FFPROBE_PATH"
	EnvPresetsPath = "REELSMITH_PRESETS_PATH"

	EnvLLMBaseURL = "REELSMITH_LLM_BASE_URL"
	EnvLLMAPIKey  = "REELSMITH_LLM_API_KEY"
	EnvLLMModel   = "REELSMITH_LLM_MODEL"

	EnvTTSBaseURL = "REELSMITH_TTS_BASE_URL"
	EnvTTSAPIKey  = "REELSMITH_TTS_API_KEY"
	EnvTTSVoice   = "REELSMITH_TTS_VOICE"

	EnvStockBaseURL = "REELSMITH_STOCK_BASE_URL"
	EnvStockAPIKey  = "REELSMITH_STOCK_API_KEY"

	EnvGenBaseURL = "REELSMITH_GEN_BASE_URL"
	EnvGenAPIKey  = "REELSMITH_GEN_API_KEY"

	EnvMusicBaseURL = "REELSMITH_MUSIC_BASE_URL"
	EnvMusicAPIKey  = "REELSMITH_MUSIC_API_KEY"

	EnvYouTubeClientID     = "REELSMITH_YT_CLIENT_ID"
	EnvYouTubeClientSecret = "REELSMITH_YT_CLIENT_SECRET"
	EnvYouTubeRefreshToken = "REELSMITH_YT_REFRESH_TOKEN"

	EnvRenderTimeout = "REELSMITH_RENDER_TIMEOUT_SECONDS"
	EnvPollInterval  = "REELSMITH_POLL_INTERVAL_SECONDS"
	EnvPollBudget    = "REELSMITH_POLL_BUDGET"

	// Database filename
	DBFilename = "reelsmith.db"

	// Render defaults
	DefaultLLMModel             = "gpt-4o-mini"
	DefaultRenderTimeoutSeconds = 600
	DefaultPollIntervalSeconds  = 2
	DefaultPollBudget           = 30
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	WorkspaceDir() string
	PresetsPath() string

	FFmpegPath() string
	FFprobePath() string
	RenderTimeout() time.Duration
	PollInterval() time.Duration
	PollBudget() int

	LLMBaseURL() string
	LLMAPIKey() string
	LLMModel() string

	TTSBaseURL() string
	TTSAPIKey() string
	TTSVoice() string

	StockBaseURL() string
	StockAPIKey() string

	GenBaseURL() string
	GenAPIKey() string

	MusicBaseURL() string
	MusicAPIKey() string

	YouTubeClientID() string
	YouTubeClientSecret() string
	YouTubeRefreshToken() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port                 int
	logLevel             string
	dataDir              string
	presetsPath          string
	ffmpegPath           string
	ffprobePath          string
	renderTimeoutSeconds int
	pollIntervalSeconds  int
	pollBudget           int

	llmBaseURL string
	llmAPIKey  string
	llmModel   string

	ttsBaseURL string
	ttsAPIKey  string
	ttsVoice   string

	stockBaseURL string
	stockAPIKey  string

	genBaseURL string
	genAPIKey  string

	musicBaseURL string
	musicAPIKey  string

	ytClientID     string
	ytClientSecret string
	ytRefreshToken string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:                 DefaultPort,
		logLevel:             DefaultLogLevel,
		dataDir:              defaultDataDir(),
		renderTimeoutSeconds: DefaultRenderTimeoutSeconds,
		pollIntervalSeconds:  DefaultPollIntervalSeconds,
		pollBudget:           DefaultPollBudget,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if rt := os.Getenv(EnvRenderTimeout); rt != "" {
		seconds, err := strconv.Atoi(rt)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvRenderTimeout)
		}
		cfg.renderTimeoutSeconds = seconds
	}

	if pi := os.Getenv(EnvPollInterval); pi != "" {
		seconds, err := strconv.Atoi(pi)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPollInterval)
		}
		cfg.pollIntervalSeconds = seconds
	}

	if pb := os.Getenv(EnvPollBudget); pb != "" {
		budget, err := strconv.Atoi(pb)
		if err != nil || budget <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPollBudget)
		}
		cfg.pollBudget = budget
	}

	cfg.presetsPath = os.Getenv(EnvPresetsPath)
	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)
	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	cfg.llmBaseURL = os.Getenv(EnvLLMBaseURL)
	cfg.llmAPIKey = os.Getenv(EnvLLMAPIKey)
	cfg.llmModel = os.Getenv(EnvLLMModel)

	cfg.ttsBaseURL = os.Getenv(EnvTTSBaseURL)
	cfg.ttsAPIKey = os.Getenv(EnvTTSAPIKey)
	cfg.ttsVoice = os.Getenv(EnvTTSVoice)

	cfg.stockBaseURL = os.Getenv(EnvStockBaseURL)
	cfg.stockAPIKey = os.Getenv(EnvStockAPIKey)

	cfg.genBaseURL = os.Getenv(EnvGenBaseURL)
	cfg.genAPIKey = os.Getenv(EnvGenAPIKey)

	cfg.musicBaseURL = os.Getenv(EnvMusicBaseURL)
	cfg.musicAPIKey = os.Getenv(EnvMusicAPIKey)

	cfg.ytClientID = os.Getenv(EnvYouTubeClientID)
	cfg.ytClientSecret = os.Getenv(EnvYouTubeClientSecret)
	cfg.ytRefreshToken = os.Getenv(EnvYouTubeRefreshToken)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// WorkspaceDir returns the directory where per-edit assets and renders live
func (c *EnvConfig) WorkspaceDir() string {
	return filepath.Join(c.dataDir, "workspace")
}

func (c *EnvConfig) PresetsPath() string {
	if c.presetsPath != "" {
		return c.presetsPath
	}
	return filepath.Join(c.dataDir, "presets.yaml")
}

func (c *EnvConfig) FFmpegPath() string  { return c.ffmpegPath }
func (c *EnvConfig) FFprobePath() string { return c.ffprobePath }

func (c *EnvConfig) RenderTimeout() time.Duration {
	return time.Duration(c.renderTimeoutSeconds) * time.Second
}

func (c *EnvConfig) PollInterval() time.Duration {
	return time.Duration(c.pollIntervalSeconds) * time.Second
}

func (c *EnvConfig) PollBudget() int { return c.pollBudget }

func (c *EnvConfig) LLMBaseURL() string { return c.llmBaseURL }
func (c *EnvConfig) LLMAPIKey() string  { return c.llmAPIKey }

func (c *EnvConfig) LLMModel() string {
	if c.llmModel != "" {
		return c.llmModel
	}
	return DefaultLLMModel
}

func (c *EnvConfig) TTSBaseURL() string { return c.ttsBaseURL }
func (c *EnvConfig) TTSAPIKey() string  { return c.ttsAPIKey }
func (c *EnvConfig) TTSVoice() string   { return c.ttsVoice }

func (c *EnvConfig) StockBaseURL() string { return c.stockBaseURL }
func (c *EnvConfig) StockAPIKey() string  { return c.stockAPIKey }

func (c *EnvConfig) GenBaseURL() string { return c.genBaseURL }
func (c *EnvConfig) GenAPIKey() string  { return c.genAPIKey }

func (c *EnvConfig) MusicBaseURL() string { return c.musicBaseURL }
func (c *EnvConfig) MusicAPIKey() string  { return c.musicAPIKey }

func (c *EnvConfig) YouTubeClientID() string     { return c.ytClientID }
func (c *EnvConfig) YouTubeClientSecret() string { return c.ytClientSecret }
func (c *EnvConfig) YouTubeRefreshToken() string { return c.ytRefreshToken }

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
