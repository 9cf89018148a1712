package compile

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one stage of the filter graph: a filter expression consuming named
// input labels and producing exactly one named output label. Keeping the
// graph as explicit nodes (instead of an accumulated string) makes label
// bookkeeping mechanically checkable and keeps escaping out of the
// construction logic.
type Node struct {
	Inputs []string
	Output string
	Filter string
}

// Graph is an ordered list of filter nodes ending in the terminal label
// "finalv".
type Graph struct {
	nodes []Node
}

func (g *Graph) add(filter, output string, inputs ...string) {
	g.nodes = append(g.nodes, Node{Inputs: inputs, Output: output, Filter: filter})
}

// Nodes returns the stages in construction order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// String serializes the graph into filter_complex syntax:
// [in0][in1]filter[out];[out]filter[out2];...
func (g *Graph) String() string {
	var b strings.Builder
	for i, n := range g.nodes {
		if i > 0 {
			b.WriteByte(';')
		}
		for _, in := range n.Inputs {
			b.WriteByte('[')
			b.WriteString(in)
			b.WriteByte(']')
		}
		b.WriteString(n.Filter)
		b.WriteByte('[')
		b.WriteString(n.Output)
		b.WriteByte(']')
	}
	return b.String()
}

// TerminalLabel is the label the command assembler maps to the output stream.
const TerminalLabel = "finalv"

// buildGraph constructs the video filter graph for a reconciled request.
// Inputs are referenced as [N:v] where N is the clip's position in the input
// list; the command assembler registers inputs in the same order, keeping the
// indices in agreement.
func buildGraph(req *EditRequest, tl Timeline) *Graph {
	g := &Graph{}
	n := len(req.Clips)
	width, height := parseResolution(req.Output.Resolution)
	fps := req.Output.FPS

	hasTransition := req.Effects.Transition != nil && n > 1
	hasPost := req.Effects.Color != nil ||
		len(req.Effects.Overlays) > 0 ||
		(req.Effects.Speed != 0 && req.Effects.Speed != 1) ||
		req.Effects.FinalFilter != ""

	// Trivial path: one clip, nothing to blend or overlay. The whole request
	// collapses into a single normalization stage that already emits finalv.
	if n == 1 && !hasTransition && !hasPost && !clipNeedsStages(req.Clips[0], req.Effects.ZoomPan) {
		chain := normalizationChain(width, height, fps, tl.ActualDurations[0])
		g.add(chain+",format=yuv420p", TerminalLabel, "0:v")
		return g
	}

	// Per-clip chains. Each stage consumes the previous label and emits a
	// fresh one so every label is defined once and referenced once.
	finals := make([]string, n)
	for i, clip := range req.Clips {
		dur := tl.ActualDurations[i]
		label := fmt.Sprintf("clip%d", i)
		g.add(normalizationChain(width, height, fps, dur), label, fmt.Sprintf("%d:v", i))

		if clip.Speed != 0 && clip.Speed != 1 {
			next := fmt.Sprintf("speedclip%d", i)
			g.add(fmt.Sprintf("setpts=%s*PTS", formatFactor(1/clip.Speed)), next, label)
			label = next
		}

		if z := req.Effects.ZoomPan; z != nil {
			next := fmt.Sprintf("zoomclip%d", i)
			g.add(zoomPanFilter(z, dur, width, height, fps), next, label)
			label = next
		}

		if hasTransition {
			if f := fadeFilter(req.Effects.Transition, i, n, dur); f != "" {
				next := fmt.Sprintf("fadeclip%d", i)
				g.add(f, next, label)
				label = next
			}
		}

		finals[i] = label
	}

	// Concatenate into the single video-only timeline. Audio never passes
	// through this graph; it is mixed at the output-options stage.
	cur := "mainv"
	if n == 1 {
		cur = finals[0]
	} else {
		g.add(fmt.Sprintf("concat=n=%d:v=1:a=0", n), cur, finals...)
	}

	// Whole-timeline chain, fixed order: color, overlays, global speed,
	// raw passthrough filter, pixel-format finalization.
	if c := req.Effects.Color; c != nil {
		next := "colorv"
		g.add(colorFilter(c), next, cur)
		cur = next
	}

	for j, o := range req.Effects.Overlays {
		next := fmt.Sprintf("textv%d", j)
		g.add(drawtextFilter(o), next, cur)
		cur = next
	}

	if s := req.Effects.Speed; s != 0 && s != 1 {
		g.add(fmt.Sprintf("setpts=%s*PTS", formatFactor(1/s)), "speedv", cur)
		cur = "speedv"
	}

	if f := req.Effects.FinalFilter; f != "" {
		g.add(f, "customv", cur)
		cur = "customv"
	}

	g.add("format=yuv420p", TerminalLabel, cur)
	return g
}

// clipNeedsStages reports whether a clip would grow stages beyond the base
// normalization chain.
func clipNeedsStages(c Clip, z *ZoomPan) bool {
	if c.Speed != 0 && c.Speed != 1 {
		return true
	}
	return z != nil
}

// normalizationChain is the fixed per-clip sequence: frame rate, scale to
// target resolution preserving aspect, pad to fill, square pixels, trim to
// the reconciled duration, reset timestamps.
func normalizationChain(width, height, fps int, duration float64) string {
	return fmt.Sprintf(
		"fps=%d,scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1,trim=duration=%s,setpts=PTS-STARTPTS",
		fps, width, height, width, height, formatSeconds(duration))
}

// fadeFilter produces the transition fades for clip i of n: fade-out on every
// clip but the last, fade-in on every clip but the first. Fade lengths are
// capped at the clip's own duration; a clip shorter than two fade windows
// simply overlaps them.
func fadeFilter(t *Transition, i, n int, clipDuration float64) string {
	d := t.DurationSeconds
	if d > clipDuration {
		d = clipDuration
	}
	if d <= 0 {
		return ""
	}

	var parts []string
	if i > 0 {
		parts = append(parts, fmt.Sprintf("fade=t=in:st=0:d=%s", formatSeconds(d)))
	}
	if i < n-1 {
		st := clipDuration - d
		if st < 0 {
			st = 0
		}
		parts = append(parts, fmt.Sprintf("fade=t=out:st=%s:d=%s", formatSeconds(st), formatSeconds(d)))
	}
	return strings.Join(parts, ",")
}

// colorFilter builds the whole-timeline grade. Vibrance has its own filter
// and is only chained when it deviates from identity.
func colorFilter(c *ColorAdjustment) string {
	f := fmt.Sprintf("eq=brightness=%s:contrast=%s:saturation=%s:gamma=%s",
		formatFactor(c.Brightness), formatFactor(c.Contrast),
		formatFactor(c.Saturation), formatFactor(c.Gamma))
	if c.Vibrance != 0 && c.Vibrance != 1 {
		f += fmt.Sprintf(",vibrance=intensity=%s", formatFactor(c.Vibrance-1))
	}
	return f
}

func drawtextFilter(o TextOverlay) string {
	f := fmt.Sprintf("drawtext=text='%s':fontsize=%d:fontcolor=%s:%s:borderw=2:bordercolor=black",
		escapeText(o.Content), o.FontSize, o.Color, resolvePosition(o.Position))
	if o.DurationSeconds > 0 {
		f += fmt.Sprintf(":enable='between(t,%s,%s)'",
			formatSeconds(o.StartTime), formatSeconds(o.StartTime+o.DurationSeconds))
	}
	return f
}

// zoomPanFilter animates zoom and pan linearly across the clip. Pan endpoints
// are fractions of the available pan range; when unset the motion stays
// centered.
func zoomPanFilter(z *ZoomPan, duration float64, width, height, fps int) string {
	frames := int(duration * float64(fps))
	if z.DurationSeconds > 0 && z.DurationSeconds < duration {
		frames = int(z.DurationSeconds * float64(fps))
	}
	if frames < 1 {
		frames = 1
	}

	zExpr := fmt.Sprintf("%s+%s*on/%d",
		formatFactor(z.ZoomStart), formatFactor(z.ZoomEnd-z.ZoomStart), frames)

	xExpr := "iw/2-(iw/zoom/2)"
	if z.XStart != 0 || z.XEnd != 0 {
		xExpr = fmt.Sprintf("(%s+%s*on/%d)*(iw-iw/zoom)",
			formatFactor(z.XStart), formatFactor(z.XEnd-z.XStart), frames)
	}
	yExpr := "ih/2-(ih/zoom/2)"
	if z.YStart != 0 || z.YEnd != 0 {
		yExpr = fmt.Sprintf("(%s+%s*on/%d)*(ih-ih/zoom)",
			formatFactor(z.YStart), formatFactor(z.YEnd-z.YStart), frames)
	}

	return fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=1:s=%dx%d:fps=%d",
		zExpr, xExpr, yExpr, width, height, fps)
}

// parseResolution splits a validated "WIDTHxHEIGHT" string. Normalize has
// already replaced malformed values with the default, so parse failures
// cannot happen on a normalized request; the fallback covers direct callers.
func parseResolution(res string) (int, int) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) == 2 {
		w, errW := strconv.Atoi(parts[0])
		h, errH := strconv.Atoi(parts[1])
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 1080, 1920
}

func formatFactor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
