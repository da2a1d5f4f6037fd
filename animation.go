package marionette

import (
	"fmt"
	"sort"
)

// PoseSample is one interpolated value for a (bone, attribute) pair,
// produced by SkinnedAnimation.Interpolate and consumed by Apply.
type PoseSample struct {
	Bone  string
	Attr  Attribute
	Value Vec2
}

// SkinnedAnimation is a named collection of keyframe tracks, one per
// keyed (bone, attribute) pair, keyed by bone name so tracks survive
// serialization and can be re-keyed on bone rename.
//
// FrameCount is a clamp window over the key data: shrinking it never
// deletes keys beyond the window, it only limits the max playable frame.
//
// An animation is exclusively owned by the session that loaded it.
type SkinnedAnimation struct {
	Name string

	frameCount int
	tracks     map[string]map[Attribute]*KeyframeTrack

	// dirty is set on any track mutation and cleared once sampled.
	dirty     bool
	lastFrame int
}

// NewSkinnedAnimation creates an empty animation with a frame count of 1.
// An empty name defaults to "untitled".
func NewSkinnedAnimation(name string) *SkinnedAnimation {
	if name == "" {
		name = "untitled"
	}
	return &SkinnedAnimation{
		Name:       name,
		frameCount: 1,
		tracks:     make(map[string]map[Attribute]*KeyframeTrack),
		lastFrame:  -1,
	}
}

// FrameCount returns the number of playable frames (>= 1).
func (a *SkinnedAnimation) FrameCount() int {
	return a.frameCount
}

// SetFrameCount resizes the playable window. Counts below 1 clamp to 1.
// Keys beyond the window are retained.
func (a *SkinnedAnimation) SetFrameCount(n int) {
	if n < 1 {
		n = 1
	}
	if n == a.frameCount {
		return
	}
	a.frameCount = n
	a.dirty = true
}

// Dirty reports whether a track mutated since the last Update sample.
func (a *SkinnedAnimation) Dirty() bool {
	return a.dirty
}

// Track returns the keyframe track for a (bone, attribute) pair.
func (a *SkinnedAnimation) Track(bone string, attr Attribute) (*KeyframeTrack, bool) {
	tr, ok := a.tracks[bone][attr]
	return tr, ok
}

func (a *SkinnedAnimation) ensureTrack(bone string, attr Attribute) *KeyframeTrack {
	byAttr := a.tracks[bone]
	if byAttr == nil {
		byAttr = make(map[Attribute]*KeyframeTrack)
		a.tracks[bone] = byAttr
	}
	tr := byAttr[attr]
	if tr == nil {
		tr = &KeyframeTrack{}
		byAttr[attr] = tr
	}
	return tr
}

// SetKey inserts or overwrites a key on the named bone's attribute track,
// creating the track on first use. Fails with ErrInvalidFrame for negative
// frames. Keying past the frame-count window is allowed.
func (a *SkinnedAnimation) SetKey(bone string, attr Attribute, frame int, value Vec2, easing string) error {
	if err := a.ensureTrack(bone, attr).SetKey(frame, value, easing); err != nil {
		return err
	}
	a.dirty = true
	return nil
}

// DeleteKey removes a key. Returns false if none exists at that frame.
func (a *SkinnedAnimation) DeleteKey(bone string, attr Attribute, frame int) bool {
	tr, ok := a.tracks[bone][attr]
	if !ok || !tr.DeleteKey(frame) {
		return false
	}
	a.dirty = true
	return true
}

// DeleteKeys removes the named bone's keys on every attribute at a frame.
// Returns true if any key was removed.
func (a *SkinnedAnimation) DeleteKeys(bone string, frame int) bool {
	removed := false
	for _, attr := range attributes {
		if a.DeleteKey(bone, attr, frame) {
			removed = true
		}
	}
	return removed
}

// CaptureKey snapshots the bone's current pose into keys on all four
// attribute tracks at the given frame, then drops keys made redundant by
// an identical predecessor (never the frame-0 key).
func (a *SkinnedAnimation) CaptureKey(b *Bone, frame int) error {
	if frame < 0 {
		return fmt.Errorf("marionette: frame %d: %w", frame, ErrInvalidFrame)
	}
	values := map[Attribute]Vec2{
		AttrPosition:     {X: b.Local.X, Y: b.Local.Y},
		AttrRotation:     {X: b.Local.Rotation},
		AttrScale:        {X: b.Local.ScaleX, Y: b.Local.ScaleY},
		AttrTransparency: {X: b.Transparency},
	}
	for _, attr := range attributes {
		if err := a.SetKey(b.name, attr, frame, values[attr], ""); err != nil {
			return err
		}
	}
	a.cleanupDuplicateKeys(b.name, frame)
	return nil
}

// cleanupDuplicateKeys removes the key at frame when the preceding key
// holds an identical value and easing, so repeated captures of an
// unchanged pose don't litter the track. The frame-0 key is never removed.
func (a *SkinnedAnimation) cleanupDuplicateKeys(bone string, frame int) {
	if frame <= 0 {
		return
	}
	for _, attr := range attributes {
		tr, ok := a.tracks[bone][attr]
		if !ok {
			continue
		}
		key, ok := tr.Key(frame)
		if !ok {
			continue
		}
		keys := tr.Keys()
		i := sort.Search(len(keys), func(i int) bool { return keys[i].Frame >= frame })
		if i == 0 {
			continue
		}
		prev := keys[i-1]
		if prev.Value == key.Value && prev.Easing == key.Easing {
			tr.DeleteKey(frame)
		}
	}
}

// clampFrame limits a frame to the playable window.
func (a *SkinnedAnimation) clampFrame(frame int) int {
	if frame < 0 {
		return 0
	}
	if frame > a.frameCount-1 {
		return a.frameCount - 1
	}
	return frame
}

// Interpolate samples every track at the given frame (clamped to the
// playable window), producing one value per keyed (bone, attribute) in
// model traversal order. Empty tracks yield the bone's bind-pose default.
// Bones present in the animation but absent from the model are skipped.
func (a *SkinnedAnimation) Interpolate(frame int, m *BoneModel) []PoseSample {
	frame = a.clampFrame(frame)
	samples := make([]PoseSample, 0, len(a.tracks)*len(attributes))
	for _, b := range m.Bones() {
		byAttr, ok := a.tracks[b.name]
		if !ok {
			continue
		}
		for _, attr := range attributes {
			tr, ok := byAttr[attr]
			if !ok {
				continue
			}
			value, ok := tr.Sample(frame)
			if !ok {
				value = attr.bindDefault(b)
			}
			samples = append(samples, PoseSample{Bone: b.name, Attr: attr, Value: value})
		}
	}
	return samples
}

// Apply writes interpolated samples into the model's local transforms and
// clears the dirty flag. Samples naming unknown bones are ignored.
func (a *SkinnedAnimation) Apply(samples []PoseSample, m *BoneModel) {
	for _, s := range samples {
		b, ok := m.BoneByName(s.Bone)
		if !ok {
			continue
		}
		switch s.Attr {
		case AttrPosition:
			b.Local.X = s.Value.X
			b.Local.Y = s.Value.Y
		case AttrRotation:
			b.Local.Rotation = s.Value.X
		case AttrScale:
			b.Local.ScaleX = s.Value.X
			b.Local.ScaleY = s.Value.Y
		case AttrTransparency:
			b.Transparency = s.Value.X
		}
		m.Invalidate(b.id)
	}
	a.dirty = false
}

// Update is the single per-tick entry point: it interpolates and applies
// the pose only when the frame changed since the last call or a track
// mutated, and reports whether a resample happened. Paused playback on an
// unchanged frame costs nothing.
func (a *SkinnedAnimation) Update(frame int, m *BoneModel) bool {
	if frame == a.lastFrame && !a.dirty {
		return false
	}
	a.Apply(a.Interpolate(frame, m), m)
	a.lastFrame = frame
	return true
}

// RenameBone re-keys the track mapping from an old bone name to a new one
// without altering keyframe data. No-op if the old name has no tracks.
func (a *SkinnedAnimation) RenameBone(oldName, newName string) {
	byAttr, ok := a.tracks[oldName]
	if !ok || oldName == newName {
		return
	}
	delete(a.tracks, oldName)
	a.tracks[newName] = byAttr
}

// KeyFrames returns the sorted union of frames keyed on any of the named
// bone's attribute tracks.
func (a *SkinnedAnimation) KeyFrames(bone string) []int {
	seen := map[int]bool{}
	for _, tr := range a.tracks[bone] {
		for _, key := range tr.Keys() {
			seen[key.Frame] = true
		}
	}
	frames := make([]int, 0, len(seen))
	for f := range seen {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// KeyedBones returns the sorted names of bones with at least one key.
func (a *SkinnedAnimation) KeyedBones() []string {
	names := make([]string, 0, len(a.tracks))
	for name, byAttr := range a.tracks {
		for _, tr := range byAttr {
			if tr.Len() > 0 {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// Clip shrinks the frame-count window to just past the last keyed frame
// (minimum 1), trimming trailing dead air from a recording.
func (a *SkinnedAnimation) Clip() {
	last := 0
	for _, byAttr := range a.tracks {
		for _, tr := range byAttr {
			if lf := tr.LastFrame(); lf > last {
				last = lf
			}
		}
	}
	a.SetFrameCount(last + 1)
}
