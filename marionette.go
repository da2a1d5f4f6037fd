package marionette

import (
	"errors"
	"fmt"
	"os"
)

// Vec2 is a 2D vector used for positions, offsets, pivots, and keyframe
// values throughout the API. Scalar attributes (rotation, transparency)
// use the X component only.
type Vec2 struct {
	X, Y float64
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Sentinel errors. Structural failures caused by interactive input
// (duplicate rename, unknown bone) are reported as bool/ok results instead;
// these sentinels cover the API calls where an error return is warranted.
var (
	// ErrDuplicateName is returned when adding a bone whose name is taken.
	ErrDuplicateName = errors.New("duplicate bone name")
	// ErrBoneNotFound is returned when a bone id or name does not resolve.
	ErrBoneNotFound = errors.New("bone not found")
	// ErrUnknownEasing is returned when an easing name is not registered.
	ErrUnknownEasing = errors.New("unknown easing")
	// ErrInvalidFrame is returned for negative keyframe indices.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrFormat is returned (wrapped) when a persisted file fails to parse.
	// The load fails wholesale; no partial state is produced.
	ErrFormat = errors.New("malformed file")
)

// Debug enables stderr diagnostics for recoverable editor-command failures
// and other non-fatal anomalies. Off by default; no logging on hot paths.
var Debug bool

func debugf(format string, args ...any) {
	if !Debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[marionette] "+format+"\n", args...)
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpVec2 linearly interpolates both components.
func lerpVec2(a, b Vec2, t float64) Vec2 {
	return Vec2{X: lerp(a.X, b.X, t), Y: lerp(a.Y, b.Y, t)}
}
