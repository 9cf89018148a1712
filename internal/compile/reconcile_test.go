package compile

import (
	"math"
	"testing"
)

func TestReconcile_ProportionalScaling(t *testing.T) {
	clips := []Clip{
		{SourcePath: "/a.mp4", SourceDuration: 6},
		{SourcePath: "/b.mp4", SourceDuration: 6},
		{SourcePath: "/c.mp4", SourceDuration: 6},
	}
	audio := &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 15}

	tl, err := Reconcile(clips, audio)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if math.Abs(tl.TargetDuration-15) > 1e-9 {
		t.Fatalf("target duration = %f, want 15", tl.TargetDuration)
	}
	if math.Abs(tl.Scale-15.0/18.0) > 1e-9 {
		t.Fatalf("scale = %f, want %f", tl.Scale, 15.0/18.0)
	}

	sum := 0.0
	for i, d := range tl.ActualDurations {
		sum += d
		ratio := d / 6.0
		if math.Abs(ratio-tl.Scale) > 1e-9 {
			t.Fatalf("clip %d ratio = %f, want uniform %f", i, ratio, tl.Scale)
		}
	}
	if math.Abs(sum-15) > 1e-9 {
		t.Fatalf("sum of actual durations = %f, want 15", sum)
	}
}

func TestReconcile_UnevenDurationsStayProportional(t *testing.T) {
	clips := []Clip{
		{SourcePath: "/a.mp4", SourceDuration: 2},
		{SourcePath: "/b.mp4", SourceDuration: 5},
		{SourcePath: "/c.mp4", SourceDuration: 13},
	}
	audio := &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 10}

	tl, err := Reconcile(clips, audio)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	sum := 0.0
	for _, d := range tl.ActualDurations {
		sum += d
	}
	if math.Abs(sum-10) > 1e-9 {
		t.Fatalf("sum of actual durations = %f, want 10", sum)
	}
	want := []float64{1.0, 2.5, 6.5}
	for i, d := range tl.ActualDurations {
		if math.Abs(d-want[i]) > 1e-9 {
			t.Fatalf("clip %d actual = %f, want %f", i, d, want[i])
		}
	}
}

func TestReconcile_RequestedDurationOverridesSource(t *testing.T) {
	clips := []Clip{
		{SourcePath: "/a.mp4", SourceDuration: 30, RequestedDuration: 4},
		{SourcePath: "/b.mp4", SourceDuration: 30, RequestedDuration: 6},
	}

	tl, err := Reconcile(clips, nil)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if tl.TargetDuration != 10 {
		t.Fatalf("target duration = %f, want 10", tl.TargetDuration)
	}
	if tl.Scale != 1 {
		t.Fatalf("scale without audio = %f, want 1", tl.Scale)
	}
}

func TestReconcile_RequestedDurationCappedAtSource(t *testing.T) {
	clips := []Clip{
		{SourcePath: "/a.mp4", SourceDuration: 6, RequestedDuration: 12},
		{SourcePath: "/b.mp4", SourceDuration: 8, RequestedDuration: 4},
	}

	tl, err := Reconcile(clips, nil)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if tl.TargetDuration != 10 {
		t.Fatalf("target duration = %f, want 10 (12s request capped at 6s source)", tl.TargetDuration)
	}
	if tl.ActualDurations[0] != 6 {
		t.Fatalf("clip 0 actual = %f, want source length 6", tl.ActualDurations[0])
	}
	if tl.ActualDurations[1] != 4 {
		t.Fatalf("clip 1 actual = %f, want requested 4", tl.ActualDurations[1])
	}
}

func TestReconcile_CappedDurationsScaleAgainstAudio(t *testing.T) {
	clips := []Clip{
		{SourcePath: "/a.mp4", SourceDuration: 6, RequestedDuration: 20},
		{SourcePath: "/b.mp4", SourceDuration: 6, RequestedDuration: 20},
	}
	audio := &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 9}

	tl, err := Reconcile(clips, audio)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if math.Abs(tl.TargetDuration-9) > 1e-9 {
		t.Fatalf("target duration = %f, want 9", tl.TargetDuration)
	}
	for i, d := range tl.ActualDurations {
		if math.Abs(d-4.5) > 1e-9 {
			t.Fatalf("clip %d actual = %f, want 4.5", i, d)
		}
	}
}

func TestReconcile_AudioLongerThanVideoKeepsVideoLength(t *testing.T) {
	clips := []Clip{{SourcePath: "/a.mp4", SourceDuration: 5}}
	audio := &AudioTrack{SourcePath: "/voice.mp3", SourceDuration: 60}

	tl, err := Reconcile(clips, audio)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if tl.TargetDuration != 5 {
		t.Fatalf("target duration = %f, want 5 (video wins)", tl.TargetDuration)
	}
	if tl.Scale != 1 {
		t.Fatalf("scale = %f, want 1", tl.Scale)
	}
}

func TestReconcile_FatalInputs(t *testing.T) {
	tests := []struct {
		name  string
		clips []Clip
	}{
		{name: "empty clip list", clips: nil},
		{name: "zero total duration", clips: []Clip{{SourcePath: "/a.mp4", SourceDuration: 0}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Reconcile(tc.clips, nil); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
