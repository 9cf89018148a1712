package compile

// The edit planner returns a loosely-typed JSON object: fields may be absent,
// mistyped, or out of range. This file is the boundary where that structure
// becomes a typed EffectSet; past this point the compiler never touches
// untyped data. Range enforcement happens later in Normalize.

// SuggestionToEffects converts a decoded suggestion object into an EffectSet.
// Unknown keys are ignored; malformed values leave the effect unset.
func SuggestionToEffects(raw map[string]any) EffectSet {
	var fx EffectSet

	if t, ok := raw["transition"].(map[string]any); ok {
		fx.Transition = &Transition{
			Type:            asString(t["type"]),
			DurationSeconds: asFloat(t["duration"]),
		}
	}

	if c, ok := raw["color"].(map[string]any); ok {
		fx.Color = &ColorAdjustment{
			Brightness: asFloat(c["brightness"]),
			Contrast:   asFloat(c["contrast"]),
			Saturation: asFloat(c["saturation"]),
			Gamma:      asFloat(c["gamma"]),
			Vibrance:   asFloat(c["vibrance"]),
		}
	}

	if z, ok := raw["zoom_pan"].(map[string]any); ok {
		fx.ZoomPan = &ZoomPan{
			ZoomStart:       asFloat(z["zoom_start"]),
			ZoomEnd:         asFloat(z["zoom_end"]),
			XStart:          asFloat(z["x_start"]),
			XEnd:            asFloat(z["x_end"]),
			YStart:          asFloat(z["y_start"]),
			YEnd:            asFloat(z["y_end"]),
			DurationSeconds: asFloat(z["duration"]),
		}
	}

	if overlays, ok := raw["text_overlays"].([]any); ok {
		for _, entry := range overlays {
			o, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			content := asString(o["content"])
			if content == "" {
				continue
			}
			fx.Overlays = append(fx.Overlays, TextOverlay{
				Content:         content,
				Position:        asString(o["position"]),
				FontSize:        int(asFloat(o["font_size"])),
				Color:           asString(o["color"]),
				StartTime:       asFloat(o["start_time"]),
				DurationSeconds: asFloat(o["duration"]),
			})
		}
	}

	fx.Speed = asFloat(raw["speed"])
	fx.FinalFilter = asString(raw["final_filter"])

	return fx
}

// SuggestionToAudioMix copies mix parameters from a suggestion onto an audio
// track. The track itself (path, duration) comes from the collaborators, not
// from the suggestion.
func SuggestionToAudioMix(raw map[string]any, track *AudioTrack) {
	if track == nil {
		return
	}
	if a, ok := raw["audio"].(map[string]any); ok {
		track.Volume = asFloat(a["volume"])
		track.FadeInSeconds = asFloat(a["fade_in"])
		track.FadeOutSeconds = asFloat(a["fade_out"])
		track.Bass = asFloat(a["bass"])
		track.Treble = asFloat(a["treble"])
		if b, ok := a["normalize"].(bool); ok {
			track.Normalize = b
		}
	}
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
