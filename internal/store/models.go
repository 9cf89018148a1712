// Package store persists edits and their assets, and runs the background
// pipeline that turns a queued edit into a rendered video.
package store

import (
	"time"

	"github.com/google/uuid"
)

const (
	EditStatusPending   = "pending"
	EditStatusSourcing  = "sourcing"
	EditStatusRendering = "rendering"
	EditStatusCompleted = "completed"
	EditStatusFailed    = "failed"

	// ModeStock sources clips from the stock footage provider;
	// ModeGenerate asks the AI clip generation service instead.
	ModeStock    = "stock"
	ModeGenerate = "generate"

	AssetKindClip  = "clip"
	AssetKindVoice = "voice"
	AssetKindMusic = "music"
)

// Edit is one video assembly job from prompt to rendered file.
type Edit struct {
	ID         string    `json:"id"`
	Prompt     string    `json:"prompt"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Asset is one downloaded or synthesized input tied to an edit.
type Asset struct {
	ID        string    `json:"id"`
	EditID    string    `json:"edit_id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Duration  float64   `json:"duration"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ConfigEntry is a key/value row used for agent-level settings such as the
// API auth token.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	return uuid.NewString()
}
