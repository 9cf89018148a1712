package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reelsmith/reelsmith/internal/compile"
	"github.com/reelsmith/reelsmith/internal/ffmpeg"
	"github.com/reelsmith/reelsmith/internal/music"
	"github.com/reelsmith/reelsmith/internal/narration"
	"github.com/reelsmith/reelsmith/internal/sourcing"
)

// Planner produces the scene plan and edit suggestion for a prompt.
type Planner interface {
	PlanEdit(ctx context.Context, topic string) (*narration.Plan, error)
}

// StockSource finds and downloads stock footage.
type StockSource interface {
	Search(ctx context.Context, query string, count int) ([]sourcing.StockVideo, error)
	Download(ctx context.Context, v sourcing.StockVideo, dir string) (sourcing.LocalClip, error)
}

// ClipGenerator produces AI-generated clips.
type ClipGenerator interface {
	Generate(ctx context.Context, prompt string, durationSeconds float64, dir string) (sourcing.LocalClip, error)
}

// Speech synthesizes the narration script.
type Speech interface {
	Synthesize(ctx context.Context, script, dir string) (narration.Voiceover, error)
}

// MusicSource finds and downloads background tracks.
type MusicSource interface {
	Search(ctx context.Context, query string, count int) ([]music.Track, error)
	Download(ctx context.Context, track music.Track, dir string) (music.LocalTrack, error)
}

// Runner claims pending edits and drives each one through the full pipeline:
// plan, gather assets, compile the render command, execute it, and verify
// the output file.
type Runner struct {
	repo      Repository
	planner   Planner
	stock     StockSource
	generator ClipGenerator
	speech    Speech
	music     MusicSource
	media     ffmpeg.Runner
	presets   map[string]compile.Preset
	workspace string
	logger    *slog.Logger

	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

type RunnerDeps struct {
	Repo      Repository
	Planner   Planner
	Stock     StockSource
	Generator ClipGenerator
	Speech    Speech
	Music     MusicSource
	Media     ffmpeg.Runner
	Presets   map[string]compile.Preset
	Workspace string
	Logger    *slog.Logger
}

func NewRunner(deps RunnerDeps) *Runner {
	return &Runner{
		repo:         deps.Repo,
		planner:      deps.Planner,
		stock:        deps.Stock,
		generator:    deps.Generator,
		speech:       deps.Speech,
		music:        deps.Music,
		media:        deps.Media,
		presets:      deps.Presets,
		workspace:    deps.Workspace,
		logger:       deps.Logger,
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("edit runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("edit runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextEdit(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("edit runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("edit runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) processNextEdit(ctx context.Context) {
	edits, err := r.repo.ListPendingEdits(ctx)
	if err != nil {
		r.logger.Error("failed to list pending edits", "error", err)
		return
	}
	if len(edits) == 0 {
		return
	}

	edit := edits[0]
	r.logger.Info("processing edit", "edit_id", edit.ID, "mode", edit.Mode)

	if err := r.processEdit(ctx, edit); err != nil {
		r.logger.Error("edit failed", "edit_id", edit.ID, "error", err)
		r.repo.UpdateEditStatus(ctx, edit.ID, EditStatusFailed, err.Error())
		return
	}

	r.repo.UpdateEditStatus(ctx, edit.ID, EditStatusCompleted, "")
	r.logger.Info("edit completed", "edit_id", edit.ID)
}

// editAssets is everything gathered for one edit before rendering.
type editAssets struct {
	clips []sourcing.LocalClip
	voice *narration.Voiceover
	track *music.LocalTrack
}

func (r *Runner) processEdit(ctx context.Context, edit *Edit) error {
	if err := r.repo.UpdateEditStatus(ctx, edit.ID, EditStatusSourcing, ""); err != nil {
		return err
	}

	plan, err := r.planner.PlanEdit(ctx, edit.Prompt)
	if err != nil {
		return fmt.Errorf("plan edit: %w", err)
	}

	dir := filepath.Join(r.workspace, edit.ID)
	assets, err := r.gatherAssets(ctx, edit, plan, dir)
	if err != nil {
		return err
	}
	if err := r.persistAssets(ctx, edit.ID, assets); err != nil {
		return fmt.Errorf("record assets: %w", err)
	}

	if err := r.repo.UpdateEditStatus(ctx, edit.ID, EditStatusRendering, ""); err != nil {
		return err
	}

	outputPath := filepath.Join(dir, "final.mp4")
	cmd, err := r.compileEdit(plan, assets, outputPath)
	if err != nil {
		return fmt.Errorf("compile edit: %w", err)
	}

	result, err := r.media.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !result.IsSuccess() {
		return fmt.Errorf("render exited %d: %s", result.ExitCode, tail(result.StderrTail, 512))
	}

	if err := r.media.AwaitOutput(ctx, outputPath); err != nil {
		return fmt.Errorf("verify output: %w", err)
	}

	if err := r.repo.SetEditOutput(ctx, edit.ID, outputPath); err != nil {
		return err
	}
	return nil
}

// gatherAssets fetches clips, voiceover, and music concurrently. Clips for
// the individual scenes are fetched sequentially inside their goroutine to
// stay polite to the provider.
func (r *Runner) gatherAssets(ctx context.Context, edit *Edit, plan *narration.Plan, dir string) (*editAssets, error) {
	assets := &editAssets{}

	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		clips, err := r.sourceClips(ctx, edit, plan, dir)
		if err != nil {
			errCh <- err
			return
		}
		assets.clips = clips
	}()

	if plan.Script != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vo, err := r.speech.Synthesize(ctx, plan.Script, dir)
			if err != nil {
				errCh <- fmt.Errorf("synthesize voiceover: %w", err)
				return
			}
			assets.voice = &vo
		}()
	}

	if plan.MusicQuery != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			track, err := r.sourceMusic(ctx, plan.MusicQuery, dir)
			if err != nil {
				// Music is decorative; a failure downgrades the edit
				// rather than failing it.
				r.logger.Warn("music sourcing failed", "edit_id", edit.ID, "error", err)
				return
			}
			assets.track = track
		}()
	}

	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *Runner) sourceClips(ctx context.Context, edit *Edit, plan *narration.Plan, dir string) ([]sourcing.LocalClip, error) {
	clips := make([]sourcing.LocalClip, 0, len(plan.Scenes))

	for i, scene := range plan.Scenes {
		var clip sourcing.LocalClip
		var err error

		switch edit.Mode {
		case ModeGenerate:
			prompt := scene.VisualPrompt
			if prompt == "" {
				prompt = scene.SearchQuery
			}
			clip, err = r.generator.Generate(ctx, prompt, scene.DurationSeconds, dir)
		default:
			clip, err = r.sourceStockClip(ctx, scene, dir)
		}
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (r *Runner) sourceStockClip(ctx context.Context, scene narration.Scene, dir string) (sourcing.LocalClip, error) {
	videos, err := r.stock.Search(ctx, scene.SearchQuery, 3)
	if err != nil {
		return sourcing.LocalClip{}, fmt.Errorf("stock search %q: %w", scene.SearchQuery, err)
	}
	if len(videos) == 0 {
		return sourcing.LocalClip{}, fmt.Errorf("no stock footage for %q", scene.SearchQuery)
	}
	return r.stock.Download(ctx, videos[0], dir)
}

func (r *Runner) sourceMusic(ctx context.Context, query, dir string) (*music.LocalTrack, error) {
	tracks, err := r.music.Search(ctx, query, 3)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks for %q", query)
	}
	track, err := r.music.Download(ctx, tracks[0], dir)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

func (r *Runner) persistAssets(ctx context.Context, editID string, assets *editAssets) error {
	now := time.Now().UTC()
	for i, clip := range assets.clips {
		a := &Asset{
			ID: NewID(), EditID: editID, Kind: AssetKindClip,
			Path: clip.Path, Duration: clip.Duration, Position: i, CreatedAt: now,
		}
		if err := r.repo.CreateAsset(ctx, a); err != nil {
			return err
		}
	}
	if assets.voice != nil {
		a := &Asset{
			ID: NewID(), EditID: editID, Kind: AssetKindVoice,
			Path: assets.voice.Path, Duration: assets.voice.Duration, CreatedAt: now,
		}
		if err := r.repo.CreateAsset(ctx, a); err != nil {
			return err
		}
	}
	if assets.track != nil {
		a := &Asset{
			ID: NewID(), EditID: editID, Kind: AssetKindMusic,
			Path: assets.track.Path, Duration: assets.track.Duration, CreatedAt: now,
		}
		if err := r.repo.CreateAsset(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// compileEdit maps the plan and gathered assets onto a typed edit request.
// The voiceover, when present, is the audio bed; otherwise the music track
// is. The model's suggestion is clamped by normalization inside Compile.
func (r *Runner) compileEdit(plan *narration.Plan, assets *editAssets, outputPath string) (*compile.CompiledCommand, error) {
	req := &compile.EditRequest{}

	for i, clip := range assets.clips {
		requested := 0.0
		if i < len(plan.Scenes) {
			requested = plan.Scenes[i].DurationSeconds
		}
		req.Clips = append(req.Clips, compile.Clip{
			SourcePath:        clip.Path,
			SourceDuration:    clip.Duration,
			RequestedDuration: requested,
		})
	}

	var audioPath string
	var audioDuration float64
	switch {
	case assets.voice != nil:
		audioPath, audioDuration = assets.voice.Path, assets.voice.Duration
	case assets.track != nil:
		audioPath, audioDuration = assets.track.Path, assets.track.Duration
	}
	if audioPath != "" {
		req.Audio = &compile.AudioTrack{SourcePath: audioPath, SourceDuration: audioDuration}
		compile.SuggestionToAudioMix(plan.Suggestion, req.Audio)
	}

	req.Effects = compile.SuggestionToEffects(plan.Suggestion)
	if name, ok := plan.Suggestion["preset"].(string); ok {
		if preset, found := r.presets[name]; found {
			compile.ApplyPreset(&req.Effects, preset)
		}
	}

	return compile.Compile(req, outputPath)
}

func tail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}
