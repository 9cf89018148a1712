package api

import (
	"time"

	"github.com/reelsmith/reelsmith/internal/store"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string        `json:"state"`
	LastError     string        `json:"last_error,omitempty"`
	EditsTotal    int           `json:"edits_total"`
	EditsPending  int           `json:"edits_pending"`
	EditsRunning  int           `json:"edits_running"`
	EditsFailed   int           `json:"edits_failed"`
	EditsComplete int           `json:"edits_complete"`
	ActiveEdit    *EditResponse `json:"active_edit,omitempty"`
}

type RunnerStateResponse struct {
	State string `json:"state"`
}

type CreateEditRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode,omitempty"`
}

type EditResponse struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Mode       string `json:"mode"`
	Status     string `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type EditsResponse struct {
	Edits []EditResponse `json:"edits"`
}

type AssetResponse struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
	Position int     `json:"position"`
}

type EditDetailResponse struct {
	EditResponse
	Assets []AssetResponse `json:"assets"`
}

type PublishRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Privacy     string   `json:"privacy,omitempty"`
}

type PublishResponse struct {
	VideoID string `json:"video_id"`
}

type ProbeRequest struct {
	Path string `json:"path"`
}

type ProbeResponse struct {
	Path      string  `json:"path"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
	HasVideo  bool    `json:"has_video"`
	HasAudio  bool    `json:"has_audio"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func EditToResponse(e *store.Edit) EditResponse {
	return EditResponse{
		ID:         e.ID,
		Prompt:     e.Prompt,
		Mode:       e.Mode,
		Status:     e.Status,
		OutputPath: e.OutputPath,
		Error:      e.Error,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.Format(time.RFC3339),
	}
}

func AssetToResponse(a *store.Asset) AssetResponse {
	return AssetResponse{
		ID:       a.ID,
		Kind:     a.Kind,
		Path:     a.Path,
		Duration: a.Duration,
		Position: a.Position,
	}
}
