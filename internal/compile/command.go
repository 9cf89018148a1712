package compile

import (
	"fmt"
	"sort"
)

// inputRegistry assigns stream indices to input files as they are added.
// The index returned for each path is the N that the graph's [N:v]/[N:a]
// references must match, so the registry is the single source of truth for
// input ordering.
type inputRegistry struct {
	paths []string
}

func (r *inputRegistry) add(path string) int {
	r.paths = append(r.paths, path)
	return len(r.paths) - 1
}

// Compile validates and normalizes an edit request, reconciles the timeline,
// builds the filter graph, and assembles the final command description.
//
// Fatal input problems (no clips, missing paths, zero total duration) return
// an error before graph construction; every other irregularity is absorbed
// by normalization. On success the command is always complete, never partial.
func Compile(req *EditRequest, outputPath string) (*CompiledCommand, error) {
	if len(req.Clips) == 0 {
		return nil, ErrNoClips
	}
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	for i, c := range req.Clips {
		if c.SourcePath == "" {
			return nil, fmt.Errorf("clip %d: missing source path", i)
		}
	}
	if req.Audio != nil && req.Audio.SourcePath == "" {
		return nil, fmt.Errorf("audio track: missing source path")
	}

	// Clips with explicit timeline offsets play in offset order; ties keep
	// their request order.
	if anyOffset(req.Clips) {
		sort.SliceStable(req.Clips, func(i, j int) bool {
			return req.Clips[i].StartOffset < req.Clips[j].StartOffset
		})
	}

	Normalize(req)

	tl, err := Reconcile(req.Clips, req.Audio)
	if err != nil {
		return nil, err
	}

	graph := buildGraph(req, tl)

	reg := &inputRegistry{}
	for _, c := range req.Clips {
		reg.add(c.SourcePath)
	}
	audioIndex := -1
	if req.Audio != nil {
		audioIndex = reg.add(req.Audio.SourcePath)
	}

	// buildGraph always ends in the finalization stage, so the terminal
	// label is always present to map.
	opts := []string{"-map", "[" + TerminalLabel + "]"}

	if req.Audio != nil {
		opts = append(opts,
			"-map", fmt.Sprintf("%d:a", audioIndex),
			"-af", audioFilterChain(req.Audio, tl.TargetDuration),
			"-c:a", "aac",
			"-b:a", "192k",
		)
	}

	opts = append(opts,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprintf("%d", req.Output.Quality),
		"-r", fmt.Sprintf("%d", req.Output.FPS),
		"-t", formatSeconds(tl.TargetDuration),
	)
	if req.Output.Format == "mp4" {
		opts = append(opts, "-movflags", "+faststart")
	}

	return &CompiledCommand{
		Inputs:      reg.paths,
		FilterGraph: graph.String(),
		OutputOpts:  opts,
		OutputPath:  outputPath,
	}, nil
}

func anyOffset(clips []Clip) bool {
	for _, c := range clips {
		if c.StartOffset != 0 {
			return true
		}
	}
	return false
}
