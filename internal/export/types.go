// Package export renders an edit's cut list in interchange formats so a
// finished assembly can be reopened in a desktop editor.
package export

// CutClip is one timeline entry of a rendered edit.
type CutClip struct {
	ClipName  string
	MediaPath string
	StartMs   int
	EndMs     int
}
