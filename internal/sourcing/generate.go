package sourcing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrGenerationTimeout is returned when a generation task does not finish
// within the poll budget. The task may still complete on the provider side.
var ErrGenerationTimeout = errors.New("clip generation did not finish within the poll budget")

// GenerateClient submits prompts to an AI clip generation service and polls
// the resulting task until the clip is ready to download.
type GenerateClient struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	prober       Prober
	logger       *slog.Logger
	pollInterval time.Duration
	pollBudget   int
}

func NewGenerateClient(baseURL, apiKey string, prober Prober, logger *slog.Logger) *GenerateClient {
	return &GenerateClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		prober:       prober,
		logger:       logger,
		pollInterval: 5 * time.Second,
		pollBudget:   60,
	}
}

type generateRequest struct {
	Prompt          string  `json:"prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	AspectRatio     string  `json:"aspect_ratio"`
}

type generateTask struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	Error    string `json:"error"`
}

// Generate runs the full submit, poll, download cycle for one clip.
func (c *GenerateClient) Generate(ctx context.Context, prompt string, durationSeconds float64, dir string) (LocalClip, error) {
	taskID, err := c.submit(ctx, prompt, durationSeconds)
	if err != nil {
		return LocalClip{}, err
	}

	videoURL, err := c.await(ctx, taskID)
	if err != nil {
		return LocalClip{}, err
	}

	path := filepath.Join(dir, "gen-"+uuid.NewString()+".mp4")
	if err := c.download(ctx, videoURL, path); err != nil {
		return LocalClip{}, err
	}

	info, err := c.prober.Probe(ctx, path)
	if err != nil {
		return LocalClip{}, fmt.Errorf("probe generated clip: %w", err)
	}

	c.logger.Info("generated clip ready",
		"task_id", taskID,
		"path", path,
		"duration", info.Duration,
	)

	return LocalClip{Path: path, Duration: info.Duration, Width: info.Width, Height: info.Height}, nil
}

func (c *GenerateClient) submit(ctx context.Context, prompt string, durationSeconds float64) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Prompt:          prompt,
		DurationSeconds: durationSeconds,
		AspectRatio:     "9:16",
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	task, err := c.doTask(req, "clip generation submit")
	if err != nil {
		return "", err
	}
	if task.ID == "" {
		return "", fmt.Errorf("generation submit returned no task id")
	}

	c.logger.Info("generation task submitted", "task_id", task.ID, "prompt_len", len(prompt))
	return task.ID, nil
}

// await polls the task a bounded number of times. Terminal states are
// completed (returns the video URL) and failed; anything else after the
// budget is spent is a timeout.
func (c *GenerateClient) await(ctx context.Context, taskID string) (string, error) {
	for attempt := 0; attempt < c.pollBudget; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/generations/"+taskID, nil)
		if err != nil {
			return "", fmt.Errorf("create poll request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		task, err := c.doTask(req, "clip generation poll")
		if err != nil {
			return "", err
		}

		switch task.Status {
		case "completed":
			if task.VideoURL == "" {
				return "", fmt.Errorf("generation task %s completed without a video url", taskID)
			}
			return task.VideoURL, nil
		case "failed":
			return "", fmt.Errorf("generation task %s failed: %s", taskID, task.Error)
		}

		c.logger.Debug("generation task pending", "task_id", taskID, "status", task.Status, "attempt", attempt+1)
	}
	return "", ErrGenerationTimeout
}

func (c *GenerateClient) doTask(req *http.Request, service string) (generateTask, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return generateTask{}, fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return generateTask{}, &APIError{Service: service, StatusCode: resp.StatusCode, Body: string(body[:min(len(body), 4096)])}
	}

	var task generateTask
	if err := json.Unmarshal(body, &task); err != nil {
		return generateTask{}, fmt.Errorf("parse %s response: %w", service, err)
	}
	return task, nil
}

func (c *GenerateClient) download(ctx context.Context, videoURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Service: "clip generation download", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return writeStream(path, resp.Body)
}
