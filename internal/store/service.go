package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EditService is the API-facing surface for queueing and reading edits.
type EditService interface {
	QueueEdit(ctx context.Context, prompt, mode string) (*Edit, error)
	GetEdit(ctx context.Context, id string) (*Edit, error)
	ListEdits(ctx context.Context, limit int) ([]*Edit, error)
	GetAssets(ctx context.Context, editID string) ([]*Asset, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) QueueEdit(ctx context.Context, prompt, mode string) (*Edit, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	switch mode {
	case "":
		mode = ModeStock
	case ModeStock, ModeGenerate:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	now := time.Now().UTC()
	edit := &Edit{
		ID:        NewID(),
		Prompt:    prompt,
		Mode:      mode,
		Status:    EditStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateEdit(ctx, edit); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("edit queued", "edit_id", edit.ID, "mode", mode)
	}
	return edit, nil
}

func (s *Service) GetEdit(ctx context.Context, id string) (*Edit, error) {
	return s.repo.GetEdit(ctx, id)
}

func (s *Service) ListEdits(ctx context.Context, limit int) ([]*Edit, error) {
	return s.repo.ListEdits(ctx, limit)
}

func (s *Service) GetAssets(ctx context.Context, editID string) ([]*Asset, error) {
	return s.repo.ListAssetsByEdit(ctx, editID)
}
