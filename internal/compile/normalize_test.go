package compile

import "testing"

func TestClamp_Idempotent(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
	}{
		{v: -10, lo: 0.5, hi: 2.0},
		{v: 0.5, lo: 0.5, hi: 2.0},
		{v: 1.3, lo: 0.5, hi: 2.0},
		{v: 2.0, lo: 0.5, hi: 2.0},
		{v: 99, lo: 0.5, hi: 2.0},
		{v: -0.3, lo: -0.2, hi: 0.2},
	}

	for _, tc := range tests {
		once := clamp(tc.v, tc.lo, tc.hi)
		twice := clamp(once, tc.lo, tc.hi)
		if once != twice {
			t.Fatalf("clamp not idempotent for %f: %f then %f", tc.v, once, twice)
		}
		if once < tc.lo || once > tc.hi {
			t.Fatalf("clamp(%f, %f, %f) = %f escaped the range", tc.v, tc.lo, tc.hi, once)
		}
	}
}

func TestNormalize_ClampsUntrustedParameters(t *testing.T) {
	req := EditRequest{
		Clips: []Clip{{SourcePath: "/a.mp4", SourceDuration: 10, Speed: 9}},
		Audio: &AudioTrack{
			SourcePath:     "/voice.mp3",
			SourceDuration: 20,
			Volume:         3.5,
			FadeInSeconds:  30,
			FadeOutSeconds: 0.01,
		},
		Effects: EffectSet{
			Transition: &Transition{DurationSeconds: 10},
			Color:      &ColorAdjustment{Brightness: -5, Contrast: 99, Saturation: 0, Gamma: 0, Vibrance: 7},
			Speed:      0.01,
		},
	}

	Normalize(&req)

	if req.Clips[0].Speed != 2.0 {
		t.Fatalf("clip speed = %f, want clamped to 2.0", req.Clips[0].Speed)
	}
	if req.Audio.Volume != 1.0 {
		t.Fatalf("volume = %f, want clamped to 1.0", req.Audio.Volume)
	}
	if req.Audio.FadeInSeconds != 2.0 {
		t.Fatalf("fade in = %f, want clamped to 2.0", req.Audio.FadeInSeconds)
	}
	if req.Audio.FadeOutSeconds != 0.5 {
		t.Fatalf("fade out = %f, want clamped to 0.5", req.Audio.FadeOutSeconds)
	}
	if req.Effects.Transition.DurationSeconds != 2.0 {
		t.Fatalf("transition = %f, want clamped to 2.0", req.Effects.Transition.DurationSeconds)
	}
	if req.Effects.Transition.Type != "fade" {
		t.Fatalf("transition type = %q, want default fade", req.Effects.Transition.Type)
	}
	if req.Effects.Color.Brightness != -0.2 {
		t.Fatalf("brightness = %f, want clamped to -0.2", req.Effects.Color.Brightness)
	}
	if req.Effects.Color.Contrast != 1.2 {
		t.Fatalf("contrast = %f, want clamped to 1.2", req.Effects.Color.Contrast)
	}
	if req.Effects.Color.Saturation != 1.0 {
		t.Fatalf("unset saturation = %f, want default 1.0", req.Effects.Color.Saturation)
	}
	if req.Effects.Color.Vibrance != 1.2 {
		t.Fatalf("vibrance = %f, want clamped to 1.2", req.Effects.Color.Vibrance)
	}
	if req.Effects.Speed != 0.5 {
		t.Fatalf("global speed = %f, want clamped to 0.5", req.Effects.Speed)
	}
}

func TestNormalize_ResolutionFallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "garbage", in: "abc", want: DefaultResolution},
		{name: "width only", in: "1080", want: DefaultResolution},
		{name: "empty", in: "", want: DefaultResolution},
		{name: "negative-ish", in: "-10x20", want: DefaultResolution},
		{name: "valid portrait", in: "720x1280", want: "720x1280"},
		{name: "valid landscape", in: "1920x1080", want: "1920x1080"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := EditRequest{
				Clips:  []Clip{{SourcePath: "/a.mp4", SourceDuration: 5}},
				Output: OutputSpec{Resolution: tc.in},
			}
			Normalize(&req)
			if req.Output.Resolution != tc.want {
				t.Fatalf("resolution %q normalized to %q, want %q", tc.in, req.Output.Resolution, tc.want)
			}
		})
	}
}

func TestNormalize_OutputDefaults(t *testing.T) {
	req := EditRequest{Clips: []Clip{{SourcePath: "/a.mp4", SourceDuration: 5}}}
	Normalize(&req)

	if req.Output.FPS != DefaultFPS {
		t.Fatalf("fps = %d, want %d", req.Output.FPS, DefaultFPS)
	}
	if req.Output.Quality != DefaultCRF {
		t.Fatalf("quality = %d, want %d", req.Output.Quality, DefaultCRF)
	}
	if req.Output.Format != DefaultFormat {
		t.Fatalf("format = %q, want %q", req.Output.Format, DefaultFormat)
	}
}
