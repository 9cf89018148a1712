package compile

import (
	"strings"
	"testing"
)

func TestCompile_ThreeClipsWithVoiceover(t *testing.T) {
	req := &EditRequest{
		Clips: testClips(3, 6),
		Audio: &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 15},
		Effects: EffectSet{
			Transition: &Transition{Type: "fade", DurationSeconds: 1},
		},
	}

	cmd, err := Compile(req, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if len(cmd.Inputs) != 4 {
		t.Fatalf("got %d inputs, want 3 clips + 1 audio", len(cmd.Inputs))
	}
	if cmd.Inputs[3] != "/voice.mp3" {
		t.Fatalf("audio input at index 3 is %q", cmd.Inputs[3])
	}

	opts := strings.Join(cmd.OutputOpts, " ")
	if !strings.Contains(opts, "-map [finalv]") {
		t.Fatalf("missing video map: %q", opts)
	}
	// Three video inputs precede the audio track, so it maps as stream 3.
	if !strings.Contains(opts, "-map 3:a") {
		t.Fatalf("audio should map from input index 3: %q", opts)
	}
	if !strings.Contains(opts, "afade=t=in") || !strings.Contains(opts, "afade=t=out") {
		t.Fatalf("audio chain missing fades: %q", opts)
	}
	if !strings.Contains(opts, "volume=1") {
		t.Fatalf("audio chain missing volume: %q", opts)
	}
	if !strings.Contains(opts, "-t 15.000") {
		t.Fatalf("missing target duration flag: %q", opts)
	}

	// Audio fade-out must end exactly at the 15s target.
	if !strings.Contains(opts, "afade=t=out:st=14.000:d=1.000") {
		t.Fatalf("fade-out not anchored at target duration: %q", opts)
	}

	checkLabelUniqueness(t, cmd.FilterGraph)
}

func TestCompile_VideoOnlyHasNoAudioMap(t *testing.T) {
	req := &EditRequest{Clips: testClips(2, 4)}

	cmd, err := Compile(req, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	opts := strings.Join(cmd.OutputOpts, " ")
	if strings.Contains(opts, ":a") || strings.Contains(opts, "-af") {
		t.Fatalf("video-only edit should not map or filter audio: %q", opts)
	}
	if len(cmd.Inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(cmd.Inputs))
	}
}

func TestCompile_RejectsFatalInput(t *testing.T) {
	tests := []struct {
		name string
		req  *EditRequest
		out  string
	}{
		{name: "no clips", req: &EditRequest{}, out: "/out/x.mp4"},
		{name: "missing clip path", req: &EditRequest{Clips: []Clip{{SourceDuration: 3}}}, out: "/out/x.mp4"},
		{name: "zero durations", req: &EditRequest{Clips: []Clip{{SourcePath: "/a.mp4"}}}, out: "/out/x.mp4"},
		{name: "missing output", req: &EditRequest{Clips: testClips(1, 5)}, out: ""},
		{
			name: "missing audio path",
			req:  &EditRequest{Clips: testClips(1, 5), Audio: &AudioTrack{SourceDuration: 9}},
			out:  "/out/x.mp4",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Compile(tc.req, tc.out); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestCompile_ClipsOrderedByStartOffset(t *testing.T) {
	req := &EditRequest{
		Clips: []Clip{
			{SourcePath: "/late.mp4", SourceDuration: 3, StartOffset: 6},
			{SourcePath: "/first.mp4", SourceDuration: 3, StartOffset: 0},
			{SourcePath: "/mid.mp4", SourceDuration: 3, StartOffset: 3},
		},
	}

	cmd, err := Compile(req, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := []string{"/first.mp4", "/mid.mp4", "/late.mp4"}
	for i, p := range want {
		if cmd.Inputs[i] != p {
			t.Fatalf("input %d = %q, want %q", i, cmd.Inputs[i], p)
		}
	}
}

func TestCompile_OverlongRequestCappedAtSource(t *testing.T) {
	req := &EditRequest{
		Clips: []Clip{{SourcePath: "/a.mp4", SourceDuration: 6, RequestedDuration: 12}},
		Audio: &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 18},
	}

	cmd, err := Compile(req, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if !strings.Contains(cmd.FilterGraph, "trim=duration=6.000") {
		t.Fatalf("trim must stop at the source length: %q", cmd.FilterGraph)
	}
	if strings.Contains(cmd.FilterGraph, "trim=duration=12.000") {
		t.Fatalf("trim promises frames the file does not hold: %q", cmd.FilterGraph)
	}

	opts := strings.Join(cmd.OutputOpts, " ")
	if !strings.Contains(opts, "-t 6.000") {
		t.Fatalf("-t must match the capped timeline: %q", opts)
	}
}

func TestCompile_AlwaysMapsTerminalLabel(t *testing.T) {
	req := &EditRequest{
		Clips: []Clip{{SourcePath: "/a.mp4", SourceDuration: 5}},
	}

	cmd, err := Compile(req, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if cmd.FilterGraph == "" {
		t.Fatal("graph must carry at least the finalization stage")
	}

	opts := strings.Join(cmd.OutputOpts, " ")
	if !strings.Contains(opts, "-map ["+TerminalLabel+"]") {
		t.Fatalf("output must map the terminal label: %q", opts)
	}
}

func TestCompiledCommand_Args(t *testing.T) {
	cmd := &CompiledCommand{
		Inputs:      []string{"/a.mp4", "/b.mp4"},
		FilterGraph: "[0:v]null[finalv]",
		OutputOpts:  []string{"-map", "[finalv]"},
		OutputPath:  "/out/final.mp4",
	}

	args := strings.Join(cmd.Args(), " ")
	want := "-y -i /a.mp4 -i /b.mp4 -filter_complex [0:v]null[finalv] -map [finalv] /out/final.mp4"
	if args != want {
		t.Fatalf("args = %q, want %q", args, want)
	}
}

func TestCompiledCommand_ArgsOmitsEmptyGraph(t *testing.T) {
	cmd := &CompiledCommand{
		Inputs:     []string{"/a.mp4"},
		OutputOpts: []string{"-map", "0:v"},
		OutputPath: "/out/final.mp4",
	}

	args := strings.Join(cmd.Args(), " ")
	if strings.Contains(args, "filter_complex") {
		t.Fatalf("empty graph must omit -filter_complex: %q", args)
	}
}
