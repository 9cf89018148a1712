package compile

import "regexp"

// Effect parameters arrive from an AI-generated edit suggestion and are
// untrusted. Every numeric field is clamped into a safe operating range
// before it reaches the graph builder; the compiler prefers producing a
// tame command over rejecting the request.
const (
	DefaultResolution = "1080x1920"
	DefaultFPS        = 30
	DefaultCRF        = 23
	DefaultFormat     = "mp4"

	minVolume, maxVolume         = 0.5, 1.0
	minFade, maxFade             = 0.5, 2.0
	minBrightness, maxBrightness = -0.2, 0.2
	minContrast, maxContrast     = 0.9, 1.2
	minSaturation, maxSaturation = 0.9, 1.2
	minGamma, maxGamma           = 0.9, 1.1
	minVibrance, maxVibrance     = 1.0, 1.2
	minTransition, maxTransition = 0.5, 2.0
	minSpeed, maxSpeed           = 0.5, 2.0
)

var resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)

// clamp constrains v to [lo, hi]. It is idempotent: clamping a clamped value
// is a no-op.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampOr returns the clamped value, substituting def when the field was
// never set (zero).
func clampOr(v, def, lo, hi float64) float64 {
	if v == 0 {
		v = def
	}
	return clamp(v, lo, hi)
}

// Normalize rewrites an edit request in place so every parameter the graph
// builder reads is within its documented range. Missing fields pick up their
// defaults first, then get clamped.
func Normalize(req *EditRequest) {
	for i := range req.Clips {
		if req.Clips[i].Speed != 0 {
			req.Clips[i].Speed = clamp(req.Clips[i].Speed, minSpeed, maxSpeed)
		}
	}

	if a := req.Audio; a != nil {
		a.Volume = clampOr(a.Volume, 1.0, minVolume, maxVolume)
		a.FadeInSeconds = clampOr(a.FadeInSeconds, 1.0, minFade, maxFade)
		a.FadeOutSeconds = clampOr(a.FadeOutSeconds, 1.0, minFade, maxFade)
		// Fade windows must fit inside the track; halve each side if not.
		if a.SourceDuration > 0 && a.FadeInSeconds+a.FadeOutSeconds > a.SourceDuration {
			a.FadeInSeconds = a.SourceDuration / 2
			a.FadeOutSeconds = a.SourceDuration / 2
		}
	}

	if t := req.Effects.Transition; t != nil {
		if t.Type == "" {
			t.Type = "fade"
		}
		t.DurationSeconds = clampOr(t.DurationSeconds, 1.0, minTransition, maxTransition)
	}

	if c := req.Effects.Color; c != nil {
		c.Brightness = clamp(c.Brightness, minBrightness, maxBrightness)
		c.Contrast = clampOr(c.Contrast, 1.0, minContrast, maxContrast)
		c.Saturation = clampOr(c.Saturation, 1.0, minSaturation, maxSaturation)
		c.Gamma = clampOr(c.Gamma, 1.0, minGamma, maxGamma)
		c.Vibrance = clampOr(c.Vibrance, 1.0, minVibrance, maxVibrance)
	}

	if z := req.Effects.ZoomPan; z != nil {
		z.ZoomStart = clampOr(z.ZoomStart, 1.0, 1.0, 2.0)
		z.ZoomEnd = clampOr(z.ZoomEnd, 1.2, 1.0, 2.0)
	}

	if req.Effects.Speed != 0 {
		req.Effects.Speed = clamp(req.Effects.Speed, minSpeed, maxSpeed)
	}

	for i := range req.Effects.Overlays {
		o := &req.Effects.Overlays[i]
		if o.FontSize <= 0 {
			o.FontSize = 48
		}
		if o.Color == "" {
			o.Color = "white"
		}
	}

	if req.Output.Format == "" {
		req.Output.Format = DefaultFormat
	}
	if !resolutionPattern.MatchString(req.Output.Resolution) {
		req.Output.Resolution = DefaultResolution
	}
	if req.Output.FPS <= 0 {
		req.Output.FPS = DefaultFPS
	}
	if req.Output.Quality <= 0 || req.Output.Quality > 51 {
		req.Output.Quality = DefaultCRF
	}
}
