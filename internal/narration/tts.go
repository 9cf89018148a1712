package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/reelsmith/reelsmith/internal/ffmpeg"
)

// Voiceover is synthesized speech on disk.
type Voiceover struct {
	Path     string
	Duration float64
}

// Prober reads media metadata from a file on disk.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// TTSClient synthesizes a narration script into an mp3.
type TTSClient struct {
	baseURL    string
	apiKey     string
	voice      string
	httpClient *http.Client
	prober     Prober
	logger     *slog.Logger
}

func NewTTSClient(baseURL, apiKey, voice string, prober Prober, logger *slog.Logger) *TTSClient {
	if voice == "" {
		voice = "alloy"
	}
	return &TTSClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		voice:   voice,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		prober: prober,
		logger: logger,
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Synthesize writes spoken audio for script into dir and probes its duration.
func (c *TTSClient) Synthesize(ctx context.Context, script, dir string) (Voiceover, error) {
	if script == "" {
		return Voiceover{}, fmt.Errorf("empty narration script")
	}

	payload, err := json.Marshal(speechRequest{Model: "tts-1", Voice: c.voice, Input: script})
	if err != nil {
		return Voiceover{}, fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return Voiceover{}, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Voiceover{}, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Voiceover{}, &PlannerError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	path := filepath.Join(dir, "voice.mp3")
	if err := writeAudio(path, resp.Body); err != nil {
		return Voiceover{}, err
	}

	info, err := c.prober.Probe(ctx, path)
	if err != nil {
		return Voiceover{}, fmt.Errorf("probe voiceover: %w", err)
	}

	c.logger.Info("voiceover synthesized",
		"path", path,
		"duration", info.Duration,
		"script_len", len(script),
	)
	return Voiceover{Path: path, Duration: info.Duration}, nil
}

func writeAudio(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return fmt.Errorf("write audio file: %w", err)
	}
	return nil
}
