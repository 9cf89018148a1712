// Package music finds and downloads background tracks for an edit.
package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/reelsmith/reelsmith/internal/ffmpeg"
)

// Track is one search hit from the music provider.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	AudioURL string  `json:"audio_url"`
}

// LocalTrack is a downloaded track on disk with its probed duration.
type LocalTrack struct {
	Path     string
	Title    string
	Duration float64
}

// APIError represents a non-2xx response from the music provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("music request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Prober reads media metadata from a file on disk.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

type searchResponse struct {
	Tracks []Track `json:"tracks"`
}

// Client searches and downloads background music.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	prober     Prober
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, prober Prober, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		prober: prober,
		logger: logger,
	}
}

// Search returns candidate tracks for the mood keywords in query.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Track, error) {
	if count <= 0 {
		count = 5
	}

	u := fmt.Sprintf("%s/tracks/search?query=%s&limit=%d", c.baseURL, url.QueryEscape(query), count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create music search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("music search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body[:min(len(body), 4096)])}
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse music search response: %w", err)
	}

	c.logger.Info("music search completed", "query", query, "hits", len(result.Tracks))
	return result.Tracks, nil
}

// Download fetches a track into dir and probes its real duration.
func (c *Client) Download(ctx context.Context, track Track, dir string) (LocalTrack, error) {
	if track.AudioURL == "" {
		return LocalTrack{}, fmt.Errorf("track %s has no audio url", track.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.AudioURL, nil)
	if err != nil {
		return LocalTrack{}, fmt.Errorf("create music download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LocalTrack{}, fmt.Errorf("music download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return LocalTrack{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	path := filepath.Join(dir, "music.mp3")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return LocalTrack{}, fmt.Errorf("create music directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return LocalTrack{}, fmt.Errorf("create music file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return LocalTrack{}, fmt.Errorf("write music file: %w", err)
	}

	info, err := c.prober.Probe(ctx, path)
	if err != nil {
		return LocalTrack{}, fmt.Errorf("probe music track: %w", err)
	}

	c.logger.Info("music track downloaded", "track_id", track.ID, "title", track.Title, "duration", info.Duration)
	return LocalTrack{Path: path, Title: track.Title, Duration: info.Duration}, nil
}
