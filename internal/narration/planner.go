// Package narration turns a user prompt into a scene plan, a spoken script,
// and a loose editing suggestion for the assembler to sanitize.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Scene is one planned segment of the final video.
type Scene struct {
	SearchQuery     string  `json:"search_query"`
	VisualPrompt    string  `json:"visual_prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	Narration       string  `json:"narration"`
}

// Plan is the model's answer: scenes to source, the script to speak, a music
// search query, and an untyped editing suggestion. The suggestion is
// untrusted and must be clamped before use.
type Plan struct {
	Scenes     []Scene        `json:"scenes"`
	Script     string         `json:"script"`
	MusicQuery string         `json:"music_query"`
	Suggestion map[string]any `json:"edit_suggestion"`
}

// PlannerError represents a non-2xx response from the language model API.
type PlannerError struct {
	StatusCode int
	Body       string
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("planner request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *PlannerError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Planner calls a chat-completions style endpoint to plan an edit.
type Planner struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewPlanner(baseURL, apiKey, model string, logger *slog.Logger) *Planner {
	return &Planner{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

const systemPrompt = `You are a short-form video editor. Given a topic, reply with a single JSON object:
{
  "scenes": [{"search_query": "...", "visual_prompt": "...", "duration_seconds": 5, "narration": "..."}],
  "script": "full narration text",
  "music_query": "mood keywords for background music",
  "edit_suggestion": {"transition": {...}, "color": {...}, "text_overlays": [...], "speed": 1.0}
}
Use 3 to 5 scenes, vertical 9:16 framing, total length under 60 seconds. Reply with JSON only.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// PlanEdit asks the model for a complete plan for the given topic.
func (p *Planner) PlanEdit(ctx context.Context, topic string) (*Plan, error) {
	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: topic},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal planner request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create planner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planner request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PlannerError{StatusCode: resp.StatusCode, Body: string(body[:min(len(body), 4096)])}
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("parse planner response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices")
	}

	plan, err := parsePlan(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Info("edit planned",
		"topic", topic,
		"scenes", len(plan.Scenes),
		"script_len", len(plan.Script),
	)
	return plan, nil
}

// parsePlan tolerates markdown code fences around the JSON body, which chat
// models frequently add despite instructions.
func parsePlan(content string) (*Plan, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}
	if len(plan.Scenes) == 0 {
		return nil, fmt.Errorf("plan contains no scenes")
	}
	return &plan, nil
}
