package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// MediaInfo is the metadata the compiler needs from a file: duration,
// dimensions, and whether an audio stream exists. The compiler never parses
// media bytes itself; this is its only window into a file.
type MediaInfo struct {
	Path      string  `json:"path"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
	HasVideo  bool    `json:"has_video"`
	HasAudio  bool    `json:"has_audio"`
}

// Probe runs ffprobe over a single file.
func (r *BinaryRunner) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("probe: path is required")
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	cmd := exec.CommandContext(ctx, r.ffprobe, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// ProbeAll probes every path concurrently. There is no ordering dependency
// between probes, but the caller needs all of them before durations can be
// reconciled, so this blocks until the last probe finishes. The first error
// wins.
func (r *BinaryRunner) ProbeAll(ctx context.Context, paths []string) ([]*MediaInfo, error) {
	infos := make([]*MediaInfo, len(paths))
	errCh := make(chan error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			info, err := r.Probe(ctx, path)
			if err != nil {
				errCh <- err
				return
			}
			infos[idx] = info
		}(i, p)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return infos, nil
}

// probeResult matches the ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbeOutput(data []byte) (*MediaInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("cannot parse probe output: %w", err)
	}

	info := &MediaInfo{}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = dur
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			info.HasVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.FrameRate = parseFrameRate(stream.RFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}

	if info.Duration <= 0 {
		return nil, fmt.Errorf("no usable duration in probe output")
	}
	return info, nil
}

// parseFrameRate converts ffprobe's "30000/1001" style rational into a float.
func parseFrameRate(r string) float64 {
	parts := strings.SplitN(r, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, errN := strconv.ParseFloat(parts[0], 64)
	den, errD := strconv.ParseFloat(parts[1], 64)
	if errN != nil || errD != nil || den == 0 {
		return 0
	}
	return num / den
}
