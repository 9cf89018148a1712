package narration

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

const planJSON = `{
	"scenes": [
		{"search_query": "city timelapse", "duration_seconds": 5, "narration": "The city never sleeps."},
		{"search_query": "neon streets", "duration_seconds": 4, "narration": "Lights guide the way."}
	],
	"script": "The city never sleeps. Lights guide the way.",
	"music_query": "ambient synthwave",
	"edit_suggestion": {"speed": 1.1, "color": {"saturation": 1.15}}
}`

func chatBody(content string) []byte {
	resp := chatResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message chatMessage `json:"message"`
	}{Message: chatMessage{Role: "assistant", Content: content}})
	b, _ := json.Marshal(resp)
	return b
}

func TestPlanner_PlanEdit(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		receivedAuth = r.Header.Get("Authorization")

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[1].Content != "night city tour" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Write(chatBody(planJSON))
	}))
	defer server.Close()

	planner := NewPlanner(server.URL, "llm-key", "gpt-4o-mini", testLogger())

	plan, err := planner.PlanEdit(context.Background(), "night city tour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receivedAuth != "Bearer llm-key" {
		t.Errorf("auth = %q", receivedAuth)
	}
	if len(plan.Scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(plan.Scenes))
	}
	if plan.Scenes[0].SearchQuery != "city timelapse" {
		t.Errorf("scene 0 query = %q", plan.Scenes[0].SearchQuery)
	}
	if plan.MusicQuery != "ambient synthwave" {
		t.Errorf("music query = %q", plan.MusicQuery)
	}
	if _, ok := plan.Suggestion["speed"]; !ok {
		t.Error("edit_suggestion lost the speed key")
	}
}

func TestPlanner_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	planner := NewPlanner(server.URL, "llm-key", "gpt-4o-mini", testLogger())

	_, err := planner.PlanEdit(context.Background(), "topic")
	var perr *PlannerError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PlannerError", err)
	}
	if !perr.IsRetryable() {
		t.Error("429 should be retryable")
	}
}

func TestParsePlan(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"bare json", planJSON, false},
		{"fenced json", "```json\n" + planJSON + "\n```", false},
		{"fenced no language", "```\n" + planJSON + "\n```", false},
		{"not json", "I cannot help with that.", true},
		{"empty scenes", `{"scenes": [], "script": "x"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := parsePlan(tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(plan.Scenes) == 0 {
				t.Error("plan has no scenes")
			}
		})
	}
}

func TestTTSClient_Synthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req speechRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Voice != "nova" {
			t.Errorf("voice = %q, want nova", req.Voice)
		}
		w.Write([]byte("mp3 bytes"))
	}))
	defer server.Close()

	client := NewTTSClient(server.URL, "tts-key", "nova", &stubProber{duration: 14.2}, testLogger())

	vo, err := client.Synthesize(context.Background(), "The city never sleeps.", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vo.Duration != 14.2 {
		t.Errorf("duration = %v, want 14.2", vo.Duration)
	}
	if _, err := os.Stat(vo.Path); err != nil {
		t.Errorf("voiceover file missing: %v", err)
	}
}

func TestTTSClient_EmptyScript(t *testing.T) {
	client := NewTTSClient("http://unused", "k", "", &stubProber{}, testLogger())
	if _, err := client.Synthesize(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for empty script")
	}
}
