package compile

import (
	"errors"
	"fmt"
)

// ErrNoClips is returned when an edit request arrives with an empty clip list
// or a zero total duration. The compiler refuses to build a graph for it.
var ErrNoClips = errors.New("edit request has no usable clip duration")

// Reconcile decides the final timeline length and each clip's on-screen
// duration. The requested durations are scaled proportionally so the
// concatenated clips exactly fill the target:
//
//	target = min(sum of requested durations, audio duration)
//
// Without an audio track the video durations are kept as requested. When the
// audio runs longer than the concatenated video, the video wins: clips are
// never looped or stretched, and the audio is cut at the target duration by
// the assembler's -t flag.
//
// The probed source duration also wins over the requested one: a request for
// more seconds than the file holds is capped at the source length, so the
// trim never promises frames that do not exist.
func Reconcile(clips []Clip, audio *AudioTrack) (Timeline, error) {
	if len(clips) == 0 {
		return Timeline{}, ErrNoClips
	}

	total := 0.0
	requested := make([]float64, len(clips))
	for i, c := range clips {
		d := c.RequestedDuration
		if d <= 0 {
			d = c.SourceDuration
		}
		if c.SourceDuration > 0 && d > c.SourceDuration {
			d = c.SourceDuration
		}
		if d < 0 {
			return Timeline{}, fmt.Errorf("clip %d: negative duration %.3f", i, d)
		}
		requested[i] = d
		total += d
	}

	if total <= 0 {
		return Timeline{}, ErrNoClips
	}

	target := total
	if audio != nil && audio.SourceDuration > 0 && audio.SourceDuration < total {
		target = audio.SourceDuration
	}

	scale := target / total
	actual := make([]float64, len(clips))
	for i, d := range requested {
		actual[i] = d * scale
	}

	return Timeline{
		TargetDuration:  target,
		Scale:           scale,
		ActualDurations: actual,
	}, nil
}
