package marionette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pick distances in rig-space pixels.
const (
	pickDistancePivot = 20.0
	pickDistanceImage = 5.0
)

// EditorSettings is the configuration bag for one editing session. Pure
// presentation state; zero value disables every overlay.
type EditorSettings struct {
	Wireframe    bool
	EdgePoints   bool
	ImageAreas   bool
	Pivots       bool
	Names        bool
	DebugAnimate bool
	DisableDrag  bool
	// Tesselation is the grid cell size in pixels for bone meshes.
	Tesselation float64
}

// DefaultEditorSettings returns the settings a fresh session starts with.
func DefaultEditorSettings() EditorSettings {
	return EditorSettings{
		ImageAreas:  true,
		Pivots:      true,
		Names:       true,
		Tesselation: 32,
	}
}

// PointerEventType identifies a kind of pointer event.
type PointerEventType uint8

const (
	PointerDown PointerEventType = iota
	PointerMove
	PointerUp
)

// PointerEvent is one pointer sample in rig space, fed to
// SkinnedEditor.Update by the host once per tick.
type PointerEvent struct {
	Type PointerEventType
	X, Y float64
}

// Command is a typed editing operation. The host enqueues commands and the
// editor drains and applies them once per tick, in FIFO order, so edits
// stay deterministic regardless of when the UI produced them.
type Command interface {
	isCommand()
}

// RenameBone renames the active bone; the animation's tracks are re-keyed
// on success. Rejected (and dropped) when the name is taken.
type RenameBone struct{ NewName string }

// ResetPose restores every bone to its bind pose.
type ResetPose struct{}

// SetTesselation changes the mesh grid cell size.
type SetTesselation struct{ Size float64 }

// ConnectBone re-parents a bone.
type ConnectBone struct{ Bone, Parent BoneID }

// ExtrudeBone creates a child of the active bone with its pivot at the
// given rig-space point, auto-named after the parent.
type ExtrudeBone struct{ At Vec2 }

// ToggleVisible flips the active bone's visibility.
type ToggleVisible struct{}

// CaptureKey snapshots the active bone's pose into keys at a frame.
type CaptureKey struct{ Frame int }

// DeleteKey removes the active bone's keys at a frame.
type DeleteKey struct{ Frame int }

// SetFrameCount resizes the animation's playable window.
type SetFrameCount struct{ Count int }

func (RenameBone) isCommand()     {}
func (ResetPose) isCommand()      {}
func (SetTesselation) isCommand() {}
func (ConnectBone) isCommand()    {}
func (ExtrudeBone) isCommand()    {}
func (ToggleVisible) isCommand()  {}
func (CaptureKey) isCommand()     {}
func (DeleteKey) isCommand()      {}
func (SetFrameCount) isCommand()  {}

// dragMode tracks what a pointer-down grabbed.
type dragMode uint8

const (
	dragNone dragMode = iota
	dragPivot
	dragImage
)

// SkinnedEditor mutates one BoneModel interactively. It owns the session's
// settings, the single-selection active bone, the command queue, and drag
// state. One editor per model; sessions never share models.
type SkinnedEditor struct {
	model *BoneModel
	anim  *SkinnedAnimation
	// Settings may be toggled by the host between ticks.
	Settings EditorSettings

	active BoneID
	queue  []Command

	drag      dragMode
	dragBone  BoneID
	dragStart Vec2
	dragOrig  Vec2

	mouse Vec2
	time  float64
}

// NewSkinnedEditor binds an editing session to a model and an animation.
func NewSkinnedEditor(model *BoneModel, anim *SkinnedAnimation, settings EditorSettings) *SkinnedEditor {
	return &SkinnedEditor{model: model, anim: anim, Settings: settings}
}

// Model returns the bone model this session edits.
func (e *SkinnedEditor) Model() *BoneModel { return e.model }

// Animation returns the animation this session edits.
func (e *SkinnedEditor) Animation() *SkinnedAnimation { return e.anim }

// SetAnimation replaces the session's animation wholesale (New/Load).
func (e *SkinnedEditor) SetAnimation(anim *SkinnedAnimation) {
	e.anim = anim
}

// ActiveBone returns the selected bone id, ok=false when nothing is
// selected.
func (e *SkinnedEditor) ActiveBone() (BoneID, bool) {
	if e.active == NoBone {
		return NoBone, false
	}
	if _, ok := e.model.Bone(e.active); !ok {
		return NoBone, false
	}
	return e.active, true
}

// SetActiveBone selects a bone; NoBone clears the selection.
func (e *SkinnedEditor) SetActiveBone(id BoneID) {
	e.active = id
}

// Mouse returns the last pointer position seen by the editor.
func (e *SkinnedEditor) Mouse() Vec2 { return e.mouse }

// Enqueue appends a command for the next Update tick.
func (e *SkinnedEditor) Enqueue(cmd Command) {
	e.queue = append(e.queue, cmd)
}

// Update runs one editor tick: drains the command queue, processes pointer
// events, applies the debug-animate oscillation, then samples the
// animation at the given frame. dt is the tick duration in seconds.
func (e *SkinnedEditor) Update(frame int, dt float64, events []PointerEvent) {
	queue := e.queue
	e.queue = e.queue[:0]
	for _, cmd := range queue {
		if err := e.apply(cmd); err != nil {
			debugf("command %T: %v", cmd, err)
		}
	}

	for _, ev := range events {
		e.mouse = Vec2{X: ev.X, Y: ev.Y}
		switch ev.Type {
		case PointerDown:
			e.pointerDown(e.mouse)
		case PointerMove:
			e.pointerMove(e.mouse)
		case PointerUp:
			e.stopDrag()
		}
	}

	e.time += dt
	if e.Settings.DebugAnimate {
		e.debugAnimate()
	}

	if e.anim != nil {
		e.anim.Update(frame, e.model)
	}
}

func (e *SkinnedEditor) apply(cmd Command) error {
	switch c := cmd.(type) {
	case RenameBone:
		b, ok := e.activeBone()
		if !ok {
			return ErrBoneNotFound
		}
		oldName := b.Name()
		if !e.model.RenameBone(b.ID(), c.NewName) {
			return fmt.Errorf("rename to %q: %w", c.NewName, ErrDuplicateName)
		}
		if e.anim != nil {
			e.anim.RenameBone(oldName, c.NewName)
		}
	case ResetPose:
		e.model.ResetPose()
	case SetTesselation:
		if c.Size > 0 {
			e.Settings.Tesselation = c.Size
		}
	case ConnectBone:
		if !e.model.Connect(c.Bone, c.Parent) {
			return ErrBoneNotFound
		}
	case ExtrudeBone:
		return e.extrudeBone(c.At)
	case ToggleVisible:
		b, ok := e.activeBone()
		if !ok {
			return ErrBoneNotFound
		}
		b.Visible = !b.Visible
	case CaptureKey:
		b, ok := e.activeBone()
		if !ok {
			return ErrBoneNotFound
		}
		if e.anim == nil {
			return nil
		}
		return e.anim.CaptureKey(b, c.Frame)
	case DeleteKey:
		b, ok := e.activeBone()
		if !ok {
			return ErrBoneNotFound
		}
		if e.anim != nil {
			e.anim.DeleteKeys(b.Name(), c.Frame)
		}
	case SetFrameCount:
		if e.anim != nil {
			e.anim.SetFrameCount(c.Count)
		}
	}
	return nil
}

func (e *SkinnedEditor) activeBone() (*Bone, bool) {
	id, ok := e.ActiveBone()
	if !ok {
		return nil, false
	}
	return e.model.Bone(id)
}

// extrudeBone creates a child of the active bone at a rig-space point,
// named "<base> N" with the first free N (a trailing number on the parent
// name is treated as part of the numbering, not the base).
func (e *SkinnedEditor) extrudeBone(at Vec2) error {
	parent, ok := e.activeBone()
	if !ok {
		return ErrBoneNotFound
	}
	base := parent.Name()
	parts := strings.Fields(base)
	if len(parts) > 1 {
		if _, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			parts = parts[:len(parts)-1]
		}
	}
	base = strings.Join(parts, " ")

	name := ""
	for i := 1; ; i++ {
		name = fmt.Sprintf("%s %d", base, i)
		if _, taken := e.model.BoneByName(name); !taken {
			break
		}
	}

	id, err := e.model.AddBone(name, parent.ID())
	if err != nil {
		return err
	}
	b, _ := e.model.Bone(id)
	b.Local.PivotX = at.X
	b.Local.PivotY = at.Y
	b.ZOrder = parent.ZOrder + 1
	e.model.Rebind(id)
	e.model.Invalidate(id)
	e.SetActiveBone(id)
	return nil
}

// --- Pointer interaction ---

func (e *SkinnedEditor) pointerDown(pos Vec2) {
	e.stopDrag()

	var picked *Bone
	if e.Settings.Pivots {
		if b, ok := e.pickPivot(pos); ok {
			picked = b
			e.SetActiveBone(b.ID())
			e.drag = dragPivot
			e.dragBone = b.ID()
			e.dragStart = pos
			e.dragOrig = Vec2{X: b.Local.PivotX, Y: b.Local.PivotY}
		} else {
			e.SetActiveBone(NoBone)
		}
	}

	if e.Settings.ImageAreas && picked == nil {
		if b, ok := e.pickImage(pos); ok {
			e.drag = dragImage
			e.dragBone = b.ID()
			e.dragStart = pos
			e.dragOrig = Vec2{X: b.Image.X, Y: b.Image.Y}
		}
	}
}

func (e *SkinnedEditor) pointerMove(pos Vec2) {
	if e.drag == dragNone || e.Settings.DisableDrag {
		return
	}
	b, ok := e.model.Bone(e.dragBone)
	if !ok {
		e.stopDrag()
		return
	}
	dx := pos.X - e.dragStart.X
	dy := pos.Y - e.dragStart.Y
	switch e.drag {
	case dragPivot:
		b.Local.PivotX = e.dragOrig.X + dx
		b.Local.PivotY = e.dragOrig.Y + dy
		e.model.Invalidate(b.ID())
	case dragImage:
		if b.Image != nil {
			b.Image.X = e.dragOrig.X + dx
			b.Image.Y = e.dragOrig.Y + dy
		}
	}
}

func (e *SkinnedEditor) stopDrag() {
	e.drag = dragNone
	e.dragBone = NoBone
}

// pickPivot returns the bone whose transformed pivot is nearest to pos,
// within the pivot pick distance.
func (e *SkinnedEditor) pickPivot(pos Vec2) (*Bone, bool) {
	var closest *Bone
	closestDist := math.Inf(1)
	for _, b := range e.model.Bones() {
		pivot, _ := e.model.PivotWorld(b.ID())
		dist := math.Hypot(pivot.X-pos.X, pivot.Y-pos.Y)
		if dist < pickDistancePivot && dist < closestDist {
			closest = b
			closestDist = dist
		}
	}
	return closest, closest != nil
}

// pickImage returns the bone whose image-rect outline passes nearest to
// pos, within the image pick distance.
func (e *SkinnedEditor) pickImage(pos Vec2) (*Bone, bool) {
	var closest *Bone
	closestDist := math.Inf(1)
	for _, b := range e.model.Bones() {
		if b.Image == nil {
			continue
		}
		outline := imageOutline(b.Image)
		for i := 0; i < len(outline)-1; i++ {
			dist := segmentDistance(outline[i], outline[i+1], pos)
			if dist < pickDistanceImage && dist < closestDist {
				closest = b
				closestDist = dist
			}
		}
	}
	return closest, closest != nil
}

// imageOutline returns the closed rectangle outline of a bone image.
func imageOutline(img *BoneImage) [5]Vec2 {
	return [5]Vec2{
		{X: img.X, Y: img.Y},
		{X: img.X + img.Width, Y: img.Y},
		{X: img.X + img.Width, Y: img.Y + img.Height},
		{X: img.X, Y: img.Y + img.Height},
		{X: img.X, Y: img.Y},
	}
}

// segmentDistance returns the distance from point p to the segment ab.
func segmentDistance(a, b, p Vec2) float64 {
	px := b.X - a.X
	py := b.Y - a.Y
	lenSq := px*px + py*py
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	u := ((p.X-a.X)*px + (p.Y-a.Y)*py) / lenSq
	if u > 1 {
		u = 1
	} else if u < 0 {
		u = 0
	}
	return math.Hypot(a.X+u*px-p.X, a.Y+u*py-p.Y)
}

// debugAnimate applies a small procedural oscillation to every non-root
// bone, purely for visualization. The pose is overwritten each tick;
// persisted keyframes are never touched.
func (e *SkinnedEditor) debugAnimate() {
	angle := math.Sin(e.time * 0.5)
	for _, b := range e.model.Bones() {
		if b.Parent() == NoBone {
			continue
		}
		b.Local.Rotation = angle
		e.model.Invalidate(b.ID())
	}
}
