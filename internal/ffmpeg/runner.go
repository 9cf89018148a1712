// Package ffmpeg executes compiled edit commands and probes media files.
// It is the only place the external media binaries are invoked; the compiler
// never touches a process, and this package never builds filter graphs.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/reelsmith/reelsmith/internal/compile"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
)

// Runner is the execution contract for compiled commands and media probes.
type Runner interface {
	// Execute runs a compiled edit command to completion.
	Execute(ctx context.Context, cmd *compile.CompiledCommand) (RunResult, error)

	// Probe returns metadata for a single media file.
	Probe(ctx context.Context, path string) (*MediaInfo, error)

	// ProbeAll probes several files concurrently and returns results in
	// input order.
	ProbeAll(ctx context.Context, paths []string) ([]*MediaInfo, error)

	// AwaitOutput polls an output file until its size is stable.
	AwaitOutput(ctx context.Context, path string) error
}

// Config holds the runner's configuration.
type Config struct {
	FFmpegPath    string        // path to ffmpeg; empty = look up on PATH
	FFprobePath   string        // path to ffprobe; empty = look up on PATH
	RenderTimeout time.Duration // timeout for a single transcode
	ProbeTimeout  time.Duration // timeout for a single probe
	PollInterval  time.Duration // output stability poll interval
	PollBudget    int           // max stability polls before giving up
	Logger        *slog.Logger
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig(logger *slog.Logger) Config {
	return Config{
		RenderTimeout: 10 * time.Minute,
		ProbeTimeout:  30 * time.Second,
		PollInterval:  2 * time.Second,
		PollBudget:    30,
		Logger:        logger,
	}
}

// RunResult is the structured outcome of one media-binary invocation.
type RunResult struct {
	ExitCode   int           `json:"exit_code"`
	OutputPath string        `json:"output_path,omitempty"`
	StderrTail string        `json:"stderr_tail,omitempty"` // last N bytes of stderr
	Duration   time.Duration `json:"duration"`
}

// IsSuccess returns true when the binary exited cleanly.
func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }

// BinaryRunner is the production implementation of Runner.
type BinaryRunner struct {
	cfg     Config
	ffmpeg  string
	ffprobe string
}

// NewRunner resolves the ffmpeg/ffprobe binaries and returns a runner.
func NewRunner(cfg Config) (*BinaryRunner, error) {
	ffmpeg, err := resolveBinary(cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	ffprobe, err := resolveBinary(cfg.FFprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info("media runner initialised", "ffmpeg", ffmpeg, "ffprobe", ffprobe)

	return &BinaryRunner{cfg: cfg, ffmpeg: ffmpeg, ffprobe: ffprobe}, nil
}

// Execute runs the compiled command. A non-zero exit is reported through the
// result, not the error; the error covers problems starting the process or
// preparing the output directory.
func (r *BinaryRunner) Execute(ctx context.Context, c *compile.CompiledCommand) (RunResult, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(c.OutputPath), 0755); err != nil {
		return RunResult{ExitCode: -1}, fmt.Errorf("cannot create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	args := c.Args()
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	r.cfg.Logger.Info("executing render command",
		"inputs", len(c.Inputs),
		"output", filepath.Base(c.OutputPath),
		"graph_len", len(c.FilterGraph),
	)

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	stderrTail := stderrBuf.String()

	if exitCode != 0 {
		r.cfg.Logger.Warn("render command failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrTail, 512),
		)
	} else {
		r.cfg.Logger.Info("render command succeeded",
			"duration_ms", elapsed.Milliseconds(),
			"output", filepath.Base(c.OutputPath),
		)
	}

	return RunResult{
		ExitCode:   exitCode,
		OutputPath: c.OutputPath,
		StderrTail: stderrTail,
		Duration:   elapsed,
	}, nil
}

// resolveBinary finds a usable media binary.
func resolveBinary(preferred, name string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured %s %q not found", name, preferred)
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	return p, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
