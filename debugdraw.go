package marionette

import "fmt"

// Debug overlay palette.
var (
	colorActive    = Color{R: 0, G: 1, B: 0, A: 1}
	colorPivot     = Color{R: 1, G: 1, B: 1, A: 1}
	colorLink      = Color{R: 0, G: 0, B: 1, A: 1}
	colorImageArea = Color{R: 1, G: 1, B: 0, A: 1}
	colorEdge      = Color{R: 1, G: 0, B: 0, A: 1}
	colorText      = Color{R: 1, G: 1, B: 1, A: 1}
	colorKeyOther  = Color{R: 1, G: 1, B: 0, A: 1}
)

// DebugPoint is a circle primitive in rig space.
type DebugPoint struct {
	Pos    Vec2
	Radius float64
	Color  Color
	Filled bool
}

// DebugLine is a line-segment primitive in rig space.
type DebugLine struct {
	From, To Vec2
	Color    Color
}

// DebugLabel is a text primitive. AlignRight anchors the text's right edge
// at Pos instead of its left.
type DebugLabel struct {
	Pos        Vec2
	Text       string
	Color      Color
	AlignRight bool
}

// DebugDraw is a batch of overlay primitives for the host to rasterize.
type DebugDraw struct {
	Points []DebugPoint
	Lines  []DebugLine
	Labels []DebugLabel
}

// VisualizeBones produces the editor overlay for the current pose and
// settings: image-area outlines, edge-point polygons, pivot circles with
// parent links, hover highlights, and name labels. Pure function of state;
// the only output is the returned primitive list.
func (e *SkinnedEditor) VisualizeBones() DebugDraw {
	var out DebugDraw
	activeID, hasActive := e.ActiveBone()

	var hoverPivot, hoverImage *Bone
	if e.mouse != (Vec2{}) {
		hoverPivot, _ = e.pickPivot(e.mouse)
		hoverImage, _ = e.pickImage(e.mouse)
	}

	for _, b := range e.model.Bones() {
		pivot, _ := e.model.PivotWorld(b.ID())

		if e.Settings.ImageAreas && b.Image != nil {
			areaColor := colorImageArea
			if hoverPivot == nil && hoverImage != nil && b.ID() == hoverImage.ID() {
				areaColor = colorActive
				out.Labels = append(out.Labels, DebugLabel{
					Pos:   Vec2{X: e.mouse.X + 20, Y: e.mouse.Y},
					Text:  b.Name(),
					Color: colorText,
				})
			}
			outline := imageOutline(b.Image)
			for i := 0; i < len(outline)-1; i++ {
				out.Lines = append(out.Lines, DebugLine{From: outline[i], To: outline[i+1], Color: areaColor})
			}
		}

		if e.Settings.EdgePoints && len(b.Points) > 0 {
			world, _ := e.model.WorldTransform(b.ID())
			prev := Vec2{}
			for i, p := range b.Points {
				x, y := transformPoint(world, p.X, p.Y)
				cur := Vec2{X: x, Y: y}
				out.Points = append(out.Points, DebugPoint{Pos: cur, Radius: 3, Color: colorActive, Filled: true})
				if i > 0 {
					out.Lines = append(out.Lines, DebugLine{From: prev, To: cur, Color: colorEdge})
				}
				prev = cur
			}
		}

		if e.Settings.Pivots {
			if parent, ok := e.model.Bone(b.Parent()); ok {
				parentPivot, _ := e.model.PivotWorld(parent.ID())
				out.Lines = append(out.Lines, DebugLine{From: pivot, To: parentPivot, Color: colorLink})
			}

			out.Points = append(out.Points, DebugPoint{Pos: pivot, Radius: 8, Color: colorPivot, Filled: true})
			if hoverPivot != nil && b.ID() == hoverPivot.ID() {
				out.Points = append(out.Points, DebugPoint{Pos: pivot, Radius: 4, Color: colorActive, Filled: true})
			}

			if e.Settings.Names {
				textColor := colorText
				if hasActive && b.ID() == activeID {
					textColor = colorActive
				}
				out.Labels = append(out.Labels, DebugLabel{
					Pos:   Vec2{X: pivot.X + 15, Y: pivot.Y - 10},
					Text:  b.Name(),
					Color: textColor,
				})
			}
		}
	}

	return out
}

// DrawDebugText lists keyed frames as right-aligned labels anchored at the
// top-right of a view of the given size. With an active bone it lists that
// bone's key frames; otherwise every keyed bone grouped by name.
func (a *SkinnedAnimation) DrawDebugText(e *SkinnedEditor, size Vec2) []DebugLabel {
	const lineHeight = 20.0
	x := size.X - 10
	y := 10.0
	var labels []DebugLabel

	push := func(text string, color Color) {
		labels = append(labels, DebugLabel{Pos: Vec2{X: x, Y: y}, Text: text, Color: color, AlignRight: true})
		y += lineHeight
	}

	if b, ok := e.activeBone(); ok {
		push(fmt.Sprintf("Keys for bone '%s'", b.Name()), colorActive)
		for _, frame := range a.KeyFrames(b.Name()) {
			push(fmt.Sprintf("%d", frame), colorText)
		}
		return labels
	}

	for _, name := range a.KeyedBones() {
		push(name, colorActive)
		for _, frame := range a.KeyFrames(name) {
			push(fmt.Sprintf("%d", frame), colorText)
		}
	}
	return labels
}

// DrawDebugKeyFrames marks the pivots of keyed bones: green circles for
// bones keyed on the current frame, yellow for bones keyed elsewhere.
func (a *SkinnedAnimation) DrawDebugKeyFrames(e *SkinnedEditor, frame int) []DebugPoint {
	var points []DebugPoint
	for _, name := range a.KeyedBones() {
		b, ok := e.model.BoneByName(name)
		if !ok {
			continue
		}
		color := colorKeyOther
		for _, keyed := range a.KeyFrames(name) {
			if keyed == frame {
				color = colorActive
				break
			}
		}
		pivot, _ := e.model.PivotWorld(b.ID())
		points = append(points, DebugPoint{Pos: pivot, Radius: 8, Color: color})
	}
	return points
}
