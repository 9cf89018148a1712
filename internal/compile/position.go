package compile

import (
	"fmt"
	"strconv"
	"strings"
)

// Named anchor vocabulary for text overlays. Expressions are relative to the
// frame (w, h) and the rendered text box (text_w, text_h) so they hold at any
// resolution.
var anchorPositions = map[string]string{
	"center,center": "x=(w-text_w)/2:y=(h-text_h)/2",
	"center,top":    "x=(w-text_w)/2:y=h*0.1",
	"center,bottom": "x=(w-text_w)/2:y=h*0.9-text_h",
	"left,center":   "x=w*0.05:y=(h-text_h)/2",
	"right,center":  "x=w*0.95-text_w:y=(h-text_h)/2",
	"left,top":      "x=w*0.05:y=h*0.1",
	"right,top":     "x=w*0.95-text_w:y=h*0.1",
	"left,bottom":   "x=w*0.05:y=h*0.9-text_h",
	"right,bottom":  "x=w*0.95-text_w:y=h*0.9-text_h",
}

const defaultAnchor = "x=(w-text_w)/2:y=(h-text_h)/2"

// resolvePosition maps an overlay position to drawtext x/y options.
//
// Three forms are accepted: a named anchor ("center,bottom"), a named anchor
// with a pixel offset ("center,top+150"), or two literal numbers ("40,960")
// used verbatim as coordinates. Anything unrecognized falls back to centered
// rather than failing the request.
func resolvePosition(pos string) string {
	pos = strings.TrimSpace(strings.ToLower(pos))
	if pos == "" {
		return defaultAnchor
	}

	if expr, ok := anchorPositions[pos]; ok {
		return expr
	}

	// Literal "x,y" coordinates.
	if parts := strings.Split(pos, ","); len(parts) == 2 {
		x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errX == nil && errY == nil {
			return fmt.Sprintf("x=%s:y=%s", trimFloat(x), trimFloat(y))
		}
	}

	// Offset variant: "<anchor>+N" or "<anchor>-N" applied to the y term.
	if base, offset, ok := splitOffset(pos); ok {
		if expr, found := anchorPositions[base]; found {
			return applyYOffset(expr, offset)
		}
	}

	return defaultAnchor
}

// splitOffset separates "center,top+150" into "center,top" and +150.
func splitOffset(pos string) (base string, offset float64, ok bool) {
	idx := strings.LastIndexAny(pos, "+-")
	if idx <= 0 {
		return "", 0, false
	}
	off, err := strconv.ParseFloat(pos[idx:], 64)
	if err != nil {
		return "", 0, false
	}
	return pos[:idx], off, true
}

func applyYOffset(expr string, offset float64) string {
	parts := strings.SplitN(expr, ":", 2)
	if len(parts) != 2 {
		return expr
	}
	if offset >= 0 {
		return fmt.Sprintf("%s:%s+%s", parts[0], parts[1], trimFloat(offset))
	}
	return fmt.Sprintf("%s:%s-%s", parts[0], parts[1], trimFloat(-offset))
}

func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return s
}
