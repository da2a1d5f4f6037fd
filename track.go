package marionette

import (
	"fmt"
	"sort"
)

// Attribute identifies which part of a bone's pose a keyframe track drives.
type Attribute uint8

const (
	AttrPosition     Attribute = iota // Local.X / Local.Y
	AttrRotation                      // Local.Rotation (X component, radians)
	AttrScale                         // Local.ScaleX / Local.ScaleY
	AttrTransparency                  // Transparency (X component)
)

// attributes is the fixed iteration order used by sampling and persistence.
var attributes = [...]Attribute{AttrPosition, AttrRotation, AttrScale, AttrTransparency}

// String returns the persisted name of the attribute.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrRotation:
		return "rotation"
	case AttrScale:
		return "scale"
	case AttrTransparency:
		return "transparency"
	}
	return "unknown"
}

// parseAttribute is the inverse of String.
func parseAttribute(s string) (Attribute, bool) {
	switch s {
	case "position":
		return AttrPosition, true
	case "rotation":
		return AttrRotation, true
	case "scale":
		return AttrScale, true
	case "transparency":
		return AttrTransparency, true
	}
	return 0, false
}

// Keyframe is an authored value at a frame index. Easing names the curve
// shaping the segment that leads INTO this key from the previous one; empty
// means linear.
type Keyframe struct {
	Frame  int
	Value  Vec2
	Easing string
}

// KeyframeTrack holds sparse keyframes for one bone attribute, kept in
// strictly increasing frame order.
type KeyframeTrack struct {
	keys []Keyframe
}

// SetKey inserts or overwrites the key at the given frame.
// Fails with ErrInvalidFrame for negative frames.
func (tr *KeyframeTrack) SetKey(frame int, value Vec2, easing string) error {
	if frame < 0 {
		return fmt.Errorf("marionette: frame %d: %w", frame, ErrInvalidFrame)
	}
	i := sort.Search(len(tr.keys), func(i int) bool { return tr.keys[i].Frame >= frame })
	key := Keyframe{Frame: frame, Value: value, Easing: easing}
	if i < len(tr.keys) && tr.keys[i].Frame == frame {
		tr.keys[i] = key
		return nil
	}
	tr.keys = append(tr.keys, Keyframe{})
	copy(tr.keys[i+1:], tr.keys[i:])
	tr.keys[i] = key
	return nil
}

// DeleteKey removes the key at the given frame. Returns false if no key
// exists there.
func (tr *KeyframeTrack) DeleteKey(frame int) bool {
	i := sort.Search(len(tr.keys), func(i int) bool { return tr.keys[i].Frame >= frame })
	if i >= len(tr.keys) || tr.keys[i].Frame != frame {
		return false
	}
	copy(tr.keys[i:], tr.keys[i+1:])
	tr.keys = tr.keys[:len(tr.keys)-1]
	return true
}

// Key returns the key at exactly the given frame.
func (tr *KeyframeTrack) Key(frame int) (Keyframe, bool) {
	i := sort.Search(len(tr.keys), func(i int) bool { return tr.keys[i].Frame >= frame })
	if i >= len(tr.keys) || tr.keys[i].Frame != frame {
		return Keyframe{}, false
	}
	return tr.keys[i], true
}

// Keys returns the keys in frame order.
// The returned slice MUST NOT be mutated by the caller.
func (tr *KeyframeTrack) Keys() []Keyframe {
	return tr.keys
}

// Len returns the number of keys.
func (tr *KeyframeTrack) Len() int {
	return len(tr.keys)
}

// Sample returns the track's value at the given frame. ok is false for an
// empty track, in which case the caller substitutes the attribute's
// bind-pose default.
//
// Edge policy, preserved exactly because it defines visible animation
// behavior: frames at or before the first key return the first key's value;
// frames at or after the last key return the last key's value; in between,
// the bracketing pair (k0 <= frame < k1) is found, k1's easing reshapes
// t = (frame-k0)/(k1-k0), and the values interpolate linearly by eased t.
func (tr *KeyframeTrack) Sample(frame int) (Vec2, bool) {
	n := len(tr.keys)
	if n == 0 {
		return Vec2{}, false
	}
	if frame <= tr.keys[0].Frame {
		return tr.keys[0].Value, true
	}
	if frame >= tr.keys[n-1].Frame {
		return tr.keys[n-1].Value, true
	}
	// First key strictly after frame; its predecessor starts the segment.
	i := sort.Search(n, func(i int) bool { return tr.keys[i].Frame > frame })
	k0 := tr.keys[i-1]
	k1 := tr.keys[i]
	t := float64(frame-k0.Frame) / float64(k1.Frame-k0.Frame)
	return lerpVec2(k0.Value, k1.Value, applyEasing(k1.Easing, t)), true
}

// FirstFrame returns the lowest keyed frame, or -1 for an empty track.
func (tr *KeyframeTrack) FirstFrame() int {
	if len(tr.keys) == 0 {
		return -1
	}
	return tr.keys[0].Frame
}

// LastFrame returns the highest keyed frame, or -1 for an empty track.
func (tr *KeyframeTrack) LastFrame() int {
	if len(tr.keys) == 0 {
		return -1
	}
	return tr.keys[len(tr.keys)-1].Frame
}

// bindDefault returns the value an empty track samples to, matching the
// bind pose of the given bone.
func (a Attribute) bindDefault(b *Bone) Vec2 {
	switch a {
	case AttrPosition:
		return Vec2{X: b.bind.X, Y: b.bind.Y}
	case AttrRotation:
		return Vec2{X: b.bind.Rotation}
	case AttrScale:
		return Vec2{X: b.bind.ScaleX, Y: b.bind.ScaleY}
	case AttrTransparency:
		return Vec2{X: 1}
	}
	return Vec2{}
}
