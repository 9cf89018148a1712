package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/reelsmith/reelsmith/internal/export"
	"github.com/reelsmith/reelsmith/internal/store"
)

// edlHandler renders an edit's clip sequence as a CMX-style EDL so the cut
// can be reopened in a desktop editor.
func edlHandler(cfg ServerConfig) http.HandlerFunc {
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

		assets, err := cfg.EditService.GetAssets(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		var clips []export.CutClip
		for _, a := range assets {
			if a.Kind != store.AssetKindClip {
				continue
			}
			clips = append(clips, export.CutClip{
				ClipName:  export.SanitizeName(fmt.Sprintf("Scene %d", a.Position+1), 160),
				MediaPath: a.Path,
				StartMs:   0,
				EndMs:     int(math.Round(a.Duration * 1000)),
			})
		}
		if len(clips) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "edit has no clips to export", "NO_CLIPS")
			return
		}

		title := export.SanitizeName(edit.Prompt, 120)
		if title == "" {
			title = "reelsmith_export"
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(export.GenerateEDL(clips, title, 30.0)))
	}
}
