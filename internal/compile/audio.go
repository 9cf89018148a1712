package compile

import (
	"fmt"
	"strings"
)

// audioFilterChain composes the audio side of the edit: fades, tone, loudness
// and gain. Audio deliberately never enters the video filter graph; the chain
// is attached as an -af output option so the two sides stay independent.
func audioFilterChain(a *AudioTrack, targetDuration float64) string {
	fadeIn := a.FadeInSeconds
	fadeOut := a.FadeOutSeconds
	if fadeIn+fadeOut > targetDuration {
		fadeIn = targetDuration / 2
		fadeOut = targetDuration / 2
	}

	parts := []string{
		fmt.Sprintf("afade=t=in:st=0:d=%s", formatSeconds(fadeIn)),
		fmt.Sprintf("afade=t=out:st=%s:d=%s",
			formatSeconds(targetDuration-fadeOut), formatSeconds(fadeOut)),
	}

	if a.Bass != 0 {
		parts = append(parts, fmt.Sprintf("bass=g=%s", formatFactor(a.Bass)))
	}
	if a.Treble != 0 {
		parts = append(parts, fmt.Sprintf("treble=g=%s", formatFactor(a.Treble)))
	}
	if a.Normalize {
		parts = append(parts, "loudnorm=I=-16:TP=-1.5:LRA=11")
	}

	parts = append(parts, fmt.Sprintf("volume=%s", formatFactor(a.Volume)))
	return strings.Join(parts, ",")
}
