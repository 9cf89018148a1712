package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StockVideo is one search hit from the stock footage provider.
type StockVideo struct {
	ID       string      `json:"id"`
	Duration float64     `json:"duration"`
	Files    []StockFile `json:"files"`
}

// StockFile is one downloadable rendition of a stock video.
type StockFile struct {
	Link    string `json:"link"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Quality string `json:"quality"`
}

type stockSearchResponse struct {
	Videos []StockVideo `json:"videos"`
}

// StockClient searches and downloads stock footage.
type StockClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	prober     Prober
	logger     *slog.Logger
}

func NewStockClient(baseURL, apiKey string, prober Prober, logger *slog.Logger) *StockClient {
	return &StockClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		prober: prober,
		logger: logger,
	}
}

// Search queries the provider for portrait-orientation footage.
func (c *StockClient) Search(ctx context.Context, query string, count int) ([]StockVideo, error) {
	if count <= 0 {
		count = 5
	}

	u := fmt.Sprintf("%s/videos/search?query=%s&orientation=portrait&per_page=%d",
		c.baseURL, url.QueryEscape(query), count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stock search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Service: "stock search", StatusCode: resp.StatusCode, Body: string(body[:min(len(body), 4096)])}
	}

	var result stockSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse stock search response: %w", err)
	}

	c.logger.Info("stock search completed", "query", query, "hits", len(result.Videos))
	return result.Videos, nil
}

// Download fetches the best vertical rendition of v into dir and probes it.
func (c *StockClient) Download(ctx context.Context, v StockVideo, dir string) (LocalClip, error) {
	file, ok := bestVerticalFile(v.Files)
	if !ok {
		return LocalClip{}, fmt.Errorf("stock video %s has no usable rendition", v.ID)
	}

	path := filepath.Join(dir, "clip-"+uuid.NewString()+".mp4")
	if err := c.fetchFile(ctx, file.Link, path); err != nil {
		return LocalClip{}, err
	}

	info, err := c.prober.Probe(ctx, path)
	if err != nil {
		return LocalClip{}, fmt.Errorf("probe downloaded clip: %w", err)
	}

	c.logger.Info("stock clip downloaded",
		"video_id", v.ID,
		"path", path,
		"duration", info.Duration,
	)

	return LocalClip{Path: path, Duration: info.Duration, Width: info.Width, Height: info.Height}, nil
}

func (c *StockClient) fetchFile(ctx context.Context, link, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stock download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Service: "stock download", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return writeStream(path, resp.Body)
}

// bestVerticalFile prefers portrait renditions, highest resolution first.
func bestVerticalFile(files []StockFile) (StockFile, bool) {
	var best StockFile
	found := false
	for _, f := range files {
		if f.Link == "" {
			continue
		}
		if !found {
			best, found = f, true
			continue
		}
		bestVertical := best.Height > best.Width
		candVertical := f.Height > f.Width
		switch {
		case candVertical && !bestVertical:
			best = f
		case candVertical == bestVertical && f.Height > best.Height:
			best = f
		}
	}
	return best, found
}
