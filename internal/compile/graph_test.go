package compile

import (
	"fmt"
	"strings"
	"testing"
)

// parseLabels walks a serialized graph and counts, for every intermediate
// label, how often it is produced and how often it is consumed. Escaped
// brackets inside filter text (\[ and \]) are skipped.
func parseLabels(graph string) (defs, refs map[string]int) {
	defs = make(map[string]int)
	refs = make(map[string]int)

	for _, stage := range strings.Split(graph, ";") {
		var labels []string
		i := 0
		for i < len(stage) {
			switch {
			case stage[i] == '\\':
				i += 2
			case stage[i] == '[':
				end := strings.IndexByte(stage[i:], ']')
				if end < 0 {
					i = len(stage)
					break
				}
				labels = append(labels, stage[i+1:i+end])
				i += end + 1
			default:
				i++
			}
		}
		if len(labels) == 0 {
			continue
		}
		// Last bracketed label in a stage is its output; all earlier ones
		// are inputs.
		out := labels[len(labels)-1]
		defs[out]++
		for _, in := range labels[:len(labels)-1] {
			if strings.Contains(in, ":") {
				continue // [N:v] source stream, not an intermediate label
			}
			refs[in]++
		}
	}
	return defs, refs
}

func checkLabelUniqueness(t *testing.T, graph string) {
	t.Helper()
	defs, refs := parseLabels(graph)

	for label, n := range defs {
		if n != 1 {
			t.Fatalf("label %q defined %d times in %q", label, n, graph)
		}
		if label == TerminalLabel {
			continue
		}
		if refs[label] != 1 {
			t.Fatalf("label %q referenced %d times, want 1, in %q", label, refs[label], graph)
		}
	}
	for label := range refs {
		if defs[label] == 0 {
			t.Fatalf("label %q referenced but never defined in %q", label, graph)
		}
	}
	if defs[TerminalLabel] != 1 {
		t.Fatalf("terminal label %q not defined exactly once in %q", TerminalLabel, graph)
	}
}

func testClips(n int, duration float64) []Clip {
	clips := make([]Clip, n)
	for i := range clips {
		clips[i] = Clip{SourcePath: fmt.Sprintf("/clips/%d.mp4", i), SourceDuration: duration}
	}
	return clips
}

func TestBuildGraph_LabelUniqueness(t *testing.T) {
	tests := []struct {
		name string
		req  EditRequest
	}{
		{
			name: "plain concat",
			req:  EditRequest{Clips: testClips(3, 6)},
		},
		{
			name: "transition",
			req: EditRequest{
				Clips:   testClips(4, 5),
				Effects: EffectSet{Transition: &Transition{Type: "fade", DurationSeconds: 1}},
			},
		},
		{
			name: "everything at once",
			req: EditRequest{
				Clips: []Clip{
					{SourcePath: "/a.mp4", SourceDuration: 6, Speed: 1.5},
					{SourcePath: "/b.mp4", SourceDuration: 6},
				},
				Effects: EffectSet{
					Transition: &Transition{Type: "fade", DurationSeconds: 1},
					Color:      &ColorAdjustment{Brightness: 0.1, Contrast: 1.1, Saturation: 1.1, Gamma: 1.0, Vibrance: 1.1},
					ZoomPan:    &ZoomPan{ZoomStart: 1, ZoomEnd: 1.2},
					Overlays: []TextOverlay{
						{Content: "hello [world]: it's 'here'", Position: "center,top"},
						{Content: "second", Position: "center,bottom", StartTime: 2, DurationSeconds: 3},
					},
					Speed:       1.25,
					FinalFilter: "hue=s=0",
				},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			Normalize(&req)
			tl, err := Reconcile(req.Clips, req.Audio)
			if err != nil {
				t.Fatalf("Reconcile returned error: %v", err)
			}
			graph := buildGraph(&req, tl)
			checkLabelUniqueness(t, graph.String())
		})
	}
}

func TestBuildGraph_SingleClipNoEffectsIsTrivial(t *testing.T) {
	req := EditRequest{Clips: testClips(1, 10)}
	Normalize(&req)
	tl, err := Reconcile(req.Clips, nil)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	graph := buildGraph(&req, tl)
	if len(graph.Nodes()) != 1 {
		t.Fatalf("trivial request produced %d stages, want 1: %q", len(graph.Nodes()), graph.String())
	}
	node := graph.Nodes()[0]
	if node.Output != TerminalLabel {
		t.Fatalf("single stage emits %q, want %q", node.Output, TerminalLabel)
	}
	if node.Inputs[0] != "0:v" {
		t.Fatalf("single stage reads %q, want source stream 0:v", node.Inputs[0])
	}
}

func TestBuildGraph_ThreeClipFadeScenario(t *testing.T) {
	req := EditRequest{
		Clips: testClips(3, 6),
		Audio: &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 15},
		Effects: EffectSet{
			Transition: &Transition{Type: "fade", DurationSeconds: 1},
		},
	}
	Normalize(&req)
	tl, err := Reconcile(req.Clips, req.Audio)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	graph := buildGraph(&req, tl).String()
	checkLabelUniqueness(t, graph)

	if !strings.Contains(graph, "concat=n=3:v=1:a=0") {
		t.Fatalf("missing concat stage: %q", graph)
	}
	// First clip fades out only, last fades in only, middle does both.
	if !strings.Contains(graph, "[clip0]fade=t=out") {
		t.Fatalf("clip 0 should fade out only: %q", graph)
	}
	if strings.Contains(graph, "[clip0]fade=t=in") {
		t.Fatalf("clip 0 must not fade in: %q", graph)
	}
	if !strings.Contains(graph, "[clip1]fade=t=in:st=0:d=1.000,fade=t=out") {
		t.Fatalf("clip 1 should fade both ways: %q", graph)
	}
	if !strings.Contains(graph, "[clip2]fade=t=in") {
		t.Fatalf("clip 2 should fade in: %q", graph)
	}
	if strings.Contains(graph, "[clip2]fade=t=in:st=0:d=1.000,fade=t=out") {
		t.Fatalf("clip 2 must not fade out: %q", graph)
	}
	if !strings.Contains(graph, "format=yuv420p["+TerminalLabel+"]") {
		t.Fatalf("missing format finalization: %q", graph)
	}
	// Fade-out start is relative to the reconciled 5s clip length.
	if !strings.Contains(graph, "fade=t=out:st=4.000:d=1.000") {
		t.Fatalf("fade-out not anchored at actualDuration-transition: %q", graph)
	}

	normChains := strings.Count(graph, "force_original_aspect_ratio=decrease")
	if normChains != 3 {
		t.Fatalf("found %d normalization chains, want 3: %q", normChains, graph)
	}
}

func TestBuildGraph_ShortClipOverlappingFadesAccepted(t *testing.T) {
	req := EditRequest{
		Clips: []Clip{
			{SourcePath: "/a.mp4", SourceDuration: 1.5},
			{SourcePath: "/b.mp4", SourceDuration: 1.5},
			{SourcePath: "/c.mp4", SourceDuration: 1.5},
		},
		Effects: EffectSet{Transition: &Transition{Type: "fade", DurationSeconds: 1}},
	}
	Normalize(&req)
	tl, err := Reconcile(req.Clips, nil)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	// Clip duration 1.5s < 2x the 1s fade: windows overlap but the graph
	// still builds and stays well-formed.
	graph := buildGraph(&req, tl).String()
	checkLabelUniqueness(t, graph)
	if !strings.Contains(graph, "fade=t=in:st=0:d=1.000,fade=t=out:st=0.500:d=1.000") {
		t.Fatalf("middle clip fades not overlapping as accepted: %q", graph)
	}
}

func TestBuildGraph_OverlaysApplyInOrder(t *testing.T) {
	req := EditRequest{
		Clips: testClips(2, 4),
		Effects: EffectSet{
			Overlays: []TextOverlay{
				{Content: "first"},
				{Content: "second"},
			},
		},
	}
	Normalize(&req)
	tl, _ := Reconcile(req.Clips, nil)
	graph := buildGraph(&req, tl).String()

	first := strings.Index(graph, "text='first'")
	second := strings.Index(graph, "text='second'")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("overlays out of order: %q", graph)
	}
	if !strings.Contains(graph, "[mainv]") {
		t.Fatalf("overlay chain should start from mainv: %q", graph)
	}
	checkLabelUniqueness(t, graph)
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "it's", want: `it\'s`},
		{in: "a:b", want: `a\:b`},
		{in: "[x]", want: `\[x\]`},
		{in: `back\slash`, want: `back\\slash`},
		{in: `mix: 'a' [b]\`, want: `mix\: \'a\' \[b\]\\`},
	}

	for _, tc := range tests {
		if got := escapeText(tc.in); got != tc.want {
			t.Fatalf("escapeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
