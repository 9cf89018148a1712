// Package compile turns a declarative edit request into a single FFmpeg
// command line. It is a pure computation: given clip paths with probed
// durations and a set of effect parameters, it deterministically produces
// the input list, the filter_complex graph, and the output options. It
// performs no I/O and holds no shared state, so independent requests may
// be compiled concurrently.
package compile

import "fmt"

// Clip references a local video file plus its edit parameters. SourceDuration
// comes from probing the file and is authoritative; RequestedDuration is
// optional (zero means "use the source duration").
type Clip struct {
	SourcePath        string  `json:"source_path"`
	SourceDuration    float64 `json:"source_duration"`
	RequestedDuration float64 `json:"requested_duration,omitempty"`
	StartOffset       float64 `json:"start_offset,omitempty"`
	Speed             float64 `json:"speed,omitempty"` // playback rate, 0 means 1.0
}

// AudioTrack is a narration or music file with its mix parameters.
type AudioTrack struct {
	SourcePath     string  `json:"source_path"`
	SourceDuration float64 `json:"source_duration"`
	Volume         float64 `json:"volume,omitempty"`
	FadeInSeconds  float64 `json:"fade_in_seconds,omitempty"`
	FadeOutSeconds float64 `json:"fade_out_seconds,omitempty"`
	Bass           float64 `json:"bass,omitempty"`
	Treble         float64 `json:"treble,omitempty"`
	Normalize      bool    `json:"normalize,omitempty"`
}

// Transition describes the crossfade applied between consecutive clips.
type Transition struct {
	Type            string  `json:"type" yaml:"type"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// TextOverlay is a single drawtext stage applied to the composed timeline.
type TextOverlay struct {
	Content         string  `json:"content"`
	Position        string  `json:"position,omitempty"`
	FontSize        int     `json:"font_size,omitempty"`
	Color           string  `json:"color,omitempty"`
	StartTime       float64 `json:"start_time,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// ColorAdjustment holds whole-timeline grading parameters.
type ColorAdjustment struct {
	Brightness float64 `json:"brightness,omitempty" yaml:"brightness"`
	Contrast   float64 `json:"contrast,omitempty" yaml:"contrast"`
	Saturation float64 `json:"saturation,omitempty" yaml:"saturation"`
	Gamma      float64 `json:"gamma,omitempty" yaml:"gamma"`
	Vibrance   float64 `json:"vibrance,omitempty" yaml:"vibrance"`
}

// ZoomPan animates a zoom/pan across a clip's duration.
type ZoomPan struct {
	ZoomStart       float64 `json:"zoom_start"`
	ZoomEnd         float64 `json:"zoom_end"`
	XStart          float64 `json:"x_start,omitempty"`
	XEnd            float64 `json:"x_end,omitempty"`
	YStart          float64 `json:"y_start,omitempty"`
	YEnd            float64 `json:"y_end,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// EffectSet carries the optional, orthogonal modifiers applied to the whole
// timeline. Nil pointer fields mean the effect is absent.
type EffectSet struct {
	Transition  *Transition      `json:"transition,omitempty"`
	Overlays    []TextOverlay    `json:"overlays,omitempty"`
	Color       *ColorAdjustment `json:"color,omitempty"`
	ZoomPan     *ZoomPan         `json:"zoom_pan,omitempty"`
	Speed       float64          `json:"speed,omitempty"` // global multiplier, 0 means unset
	FinalFilter string           `json:"final_filter,omitempty"`
}

// OutputSpec describes the container and encoding of the rendered file.
type OutputSpec struct {
	Format     string `json:"format,omitempty"`
	Resolution string `json:"resolution,omitempty"` // "WIDTHxHEIGHT"
	FPS        int    `json:"fps,omitempty"`
	Quality    int    `json:"quality,omitempty"` // CRF
}

// EditRequest is the aggregate consumed by Compile. It is a value object:
// constructed once per request, read by the compiler, then discarded.
type EditRequest struct {
	Clips   []Clip      `json:"clips"`
	Audio   *AudioTrack `json:"audio,omitempty"`
	Effects EffectSet   `json:"effects"`
	Output  OutputSpec  `json:"output"`
}

// CompiledCommand is the compiler's only product: everything the execution
// layer needs to invoke the media binary exactly once.
type CompiledCommand struct {
	Inputs      []string // ordered -i paths; the graph's [N:v] indices match this order
	FilterGraph string   // filter_complex expression, empty when no graph is needed
	OutputOpts  []string // maps, codecs, audio filter, duration, etc.
	OutputPath  string
}

// Args assembles the full argument list for the media binary, without the
// binary name itself.
func (c *CompiledCommand) Args() []string {
	args := []string{"-y"}
	for _, in := range c.Inputs {
		args = append(args, "-i", in)
	}
	if c.FilterGraph != "" {
		args = append(args, "-filter_complex", c.FilterGraph)
	}
	args = append(args, c.OutputOpts...)
	args = append(args, c.OutputPath)
	return args
}

// Timeline is the result of duration reconciliation: the final output length
// and each clip's actual on-screen duration.
type Timeline struct {
	TargetDuration  float64
	Scale           float64
	ActualDurations []float64
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
