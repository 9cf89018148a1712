package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/reelsmith/reelsmith/internal/config"
	"github.com/reelsmith/reelsmith/internal/publish"
	"github.com/reelsmith/reelsmith/internal/store"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Post("/pause", pauseHandler(cfg))
		r.Post("/resume", resumeHandler(cfg))
		r.Post("/edits", createEditHandler(cfg))
		r.Get("/edits", listEditsHandler(cfg))
		r.Get("/edits/{id}", getEditHandler(cfg))
		r.Get("/edits/{id}/video", editVideoHandler(cfg))
		r.Get("/edits/{id}/edl", edlHandler(cfg))
		r.Post("/edits/{id}/publish", publishEditHandler(cfg))
		r.Post("/probe", probeHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edits, err := cfg.Repository.ListEdits(r.Context(), 100)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list edits", "INTERNAL_ERROR")
			return
		}

		resp := StatusResponse{State: "idle", EditsTotal: len(edits)}
		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			resp.State = "paused"
		}

		for _, e := range edits {
			switch e.Status {
			case store.EditStatusPending:
				resp.EditsPending++
			case store.EditStatusSourcing, store.EditStatusRendering:
				resp.EditsRunning++
				if resp.ActiveEdit == nil {
					active := EditToResponse(e)
					resp.ActiveEdit = &active
				}
			case store.EditStatusFailed:
				resp.EditsFailed++
				if resp.LastError == "" {
					resp.LastError = e.Error
				}
			case store.EditStatusCompleted:
				resp.EditsComplete++
			}
		}

		if resp.EditsRunning > 0 && resp.State == "idle" {
			resp.State = "working"
		} else if resp.LastError != "" && resp.State == "idle" {
			resp.State = "error"
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusServiceUnavailable, "edit runner not available", "RUNNER_UNAVAILABLE")
			return
		}
		cfg.Runner.Pause()
		WriteJSON(w, http.StatusOK, RunnerStateResponse{State: "paused"})
	}
}

func resumeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Runner == nil {
			WriteError(w, http.StatusServiceUnavailable, "edit runner not available", "RUNNER_UNAVAILABLE")
			return
		}
		cfg.Runner.Resume()
		WriteJSON(w, http.StatusOK, RunnerStateResponse{State: "running"})
	}
}

func createEditHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		edit, err := cfg.EditService.QueueEdit(r.Context(), req.Prompt, req.Mode)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusAccepted, EditToResponse(edit))
	}
}

func listEditsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		edits, err := cfg.EditService.ListEdits(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list edits", "INTERNAL_ERROR")
			return
		}

		resp := EditsResponse{Edits: make([]EditResponse, len(edits))}
		for i, e := range edits {
			resp.Edits[i] = EditToResponse(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getEditHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "edit id required", "BAD_REQUEST")
			return
		}

		edit, err := cfg.EditService.GetEdit(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if edit == nil {
			WriteError(w, http.StatusNotFound, "edit not found", "NOT_FOUND")
			return
		}

		assets, err := cfg.EditService.GetAssets(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := EditDetailResponse{EditResponse: EditToResponse(edit)}
		resp.Assets = make([]AssetResponse, len(assets))
		for i, a := range assets {
			resp.Assets[i] = AssetToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func editVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		edit, err := cfg.EditService.GetEdit(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if edit == nil {
			WriteError(w, http.StatusNotFound, "edit not found", "NOT_FOUND")
			return
		}
		if edit.Status != store.EditStatusCompleted || edit.OutputPath == "" {
			WriteError(w, http.StatusConflict, "edit is not rendered yet", "NOT_READY")
			return
		}

		if err := cfg.Streamer.ServeFile(w, r, edit.OutputPath); err != nil {
			cfg.Logger.Error("video serve error", "error", err, "edit_id", id)
		}
	}
}

func publishEditHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		edit, err := cfg.EditService.GetEdit(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if edit == nil {
			WriteError(w, http.StatusNotFound, "edit not found", "NOT_FOUND")
			return
		}
		if edit.Status != store.EditStatusCompleted || edit.OutputPath == "" {
			WriteError(w, http.StatusConflict, "edit is not rendered yet", "NOT_READY")
			return
		}

		// Body is optional; an absent body publishes with defaults.
		var req PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			req.Title = edit.Prompt
		}

		videoID, err := cfg.Publisher.Upload(r.Context(), publish.UploadRequest{
			VideoPath:   edit.OutputPath,
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			Privacy:     req.Privacy,
		})
		if err != nil {
			WriteError(w, http.StatusBadGateway, err.Error(), "UPLOAD_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, PublishResponse{VideoID: videoID})
	}
}

func probeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProbeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		info, err := cfg.Media.Probe(r.Context(), req.Path)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "PROBE_FAILED")
			return
		}

		WriteJSON(w, http.StatusOK, ProbeResponse{
			Path:      info.Path,
			Duration:  info.Duration,
			Width:     info.Width,
			Height:    info.Height,
			FrameRate: info.FrameRate,
			HasVideo:  info.HasVideo,
			HasAudio:  info.HasAudio,
		})
	}
}
