package music

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/reelsmith/reelsmith/internal/ffmpeg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubProber struct {
	duration float64
}

func (p *stubProber) Probe(_ context.Context, path string) (*ffmpeg.MediaInfo, error) {
	return &ffmpeg.MediaInfo{Path: path, Duration: p.duration, HasAudio: true}, nil
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "ambient synthwave" {
			t.Errorf("query = %q", got)
		}
		json.NewEncoder(w).Encode(searchResponse{Tracks: []Track{
			{ID: "t1", Title: "Night Drive", Duration: 120, AudioURL: "http://x/t1.mp3"},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "music-key", &stubProber{}, testLogger())

	tracks, err := client.Search(context.Background(), "ambient synthwave", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Night Drive" {
		t.Fatalf("tracks = %+v", tracks)
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "music-key", &stubProber{}, testLogger())

	_, err := client.Search(context.Background(), "mood", 5)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !apiErr.IsRetryable() {
		t.Error("500 should be retryable")
	}
}

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3 bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "music-key", &stubProber{duration: 95.4}, testLogger())

	track := Track{ID: "t1", Title: "Night Drive", AudioURL: server.URL + "/t1.mp3"}
	local, err := client.Download(context.Background(), track, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.Duration != 95.4 {
		t.Errorf("duration = %v, want probed 95.4", local.Duration)
	}
	if _, err := os.Stat(local.Path); err != nil {
		t.Errorf("music file missing: %v", err)
	}
}

func TestClient_Download_NoURL(t *testing.T) {
	client := NewClient("http://unused", "k", &stubProber{}, testLogger())
	if _, err := client.Download(context.Background(), Track{ID: "t2"}, t.TempDir()); err == nil {
		t.Fatal("expected error for track without audio url")
	}
}
