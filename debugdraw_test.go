package marionette

import (
	"strings"
	"testing"
)

func TestVisualizeBonesPivotsAndLinks(t *testing.T) {
	e, _, _, _, _ := testEditor(t)
	out := e.VisualizeBones()

	// Three pivot circles, two parent links, three name labels.
	if len(out.Points) != 3 {
		t.Errorf("points = %d, want 3", len(out.Points))
	}
	links := 0
	for _, l := range out.Lines {
		if l.Color == colorLink {
			links++
		}
	}
	if links != 2 {
		t.Errorf("parent links = %d, want 2", links)
	}
	if len(out.Labels) != 3 {
		t.Errorf("labels = %d, want 3", len(out.Labels))
	}
}

func TestVisualizeBonesActiveNameHighlighted(t *testing.T) {
	e, _, _, arm, _ := testEditor(t)
	e.SetActiveBone(arm)
	out := e.VisualizeBones()

	for _, l := range out.Labels {
		want := colorText
		if l.Text == "arm" {
			want = colorActive
		}
		if l.Color != want {
			t.Errorf("label %q color = %v, want %v", l.Text, l.Color, want)
		}
	}
}

func TestVisualizeBonesImageOutline(t *testing.T) {
	e, m, root, _, _ := testEditor(t)
	b, _ := m.Bone(root)
	b.Image = &BoneImage{Name: "skin", X: 0, Y: 0, Width: 64, Height: 32}

	out := e.VisualizeBones()
	areas := 0
	for _, l := range out.Lines {
		if l.Color == colorImageArea {
			areas++
		}
	}
	if areas != 4 {
		t.Errorf("image outline segments = %d, want 4", areas)
	}
}

func TestVisualizeBonesEdgePoints(t *testing.T) {
	e, m, root, _, _ := testEditor(t)
	e.Settings.EdgePoints = true
	e.Settings.Pivots = false
	b, _ := m.Bone(root)
	b.Points = []Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}

	out := e.VisualizeBones()
	if len(out.Points) != 3 {
		t.Errorf("edge points = %d, want 3", len(out.Points))
	}
	edges := 0
	for _, l := range out.Lines {
		if l.Color == colorEdge {
			edges++
		}
	}
	if edges != 2 {
		t.Errorf("edge segments = %d, want 2", edges)
	}
}

func TestVisualizeBonesEdgePointsFollowPose(t *testing.T) {
	e, m, root, _, _ := testEditor(t)
	e.Settings.EdgePoints = true
	e.Settings.Pivots = false
	b, _ := m.Bone(root)
	b.Points = []Vec2{{X: 5, Y: 0}}
	b.Local.X = 100
	m.Invalidate(root)

	out := e.VisualizeBones()
	if len(out.Points) != 1 {
		t.Fatalf("points = %d, want 1", len(out.Points))
	}
	assertNear(t, "posed edge point X", out.Points[0].Pos.X, 105)
}

func TestVisualizeBonesHoverRing(t *testing.T) {
	e, m, root, _, _ := testEditor(t)
	rb, _ := m.Bone(root)
	rb.Local.PivotX = 100
	rb.Local.PivotY = 100
	m.Invalidate(root)

	e.Update(0, 0, []PointerEvent{{Type: PointerMove, X: 102, Y: 101}})
	out := e.VisualizeBones()

	// The hovered pivot gets an inner green ring on top of its circle.
	ring := false
	for _, p := range out.Points {
		if p.Radius == 4 && p.Color == colorActive {
			ring = true
		}
	}
	if !ring {
		t.Error("no hover ring on the pivot under the pointer")
	}
}

func TestDrawDebugTextActiveBone(t *testing.T) {
	e, _, _, arm, _ := testEditor(t)
	e.Animation().SetKey("arm", AttrRotation, 5, Vec2{}, "")
	e.Animation().SetKey("arm", AttrPosition, 12, Vec2{}, "")
	e.SetActiveBone(arm)

	labels := e.Animation().DrawDebugText(e, Vec2{X: 640, Y: 480})
	if len(labels) != 3 { // header + frames 5 and 12
		t.Fatalf("labels = %d, want 3", len(labels))
	}
	if !strings.Contains(labels[0].Text, "arm") {
		t.Errorf("header = %q, want the bone name in it", labels[0].Text)
	}
	if labels[1].Text != "5" || labels[2].Text != "12" {
		t.Errorf("frame labels = %q, %q; want 5, 12", labels[1].Text, labels[2].Text)
	}
	for _, l := range labels {
		if !l.AlignRight {
			t.Error("label not right-aligned")
		}
		assertNear(t, "anchor X", l.Pos.X, 630)
	}
}

func TestDrawDebugTextNoSelectionListsAllBones(t *testing.T) {
	e, _, _, _, _ := testEditor(t)
	e.Animation().SetKey("arm", AttrRotation, 3, Vec2{}, "")
	e.Animation().SetKey("hand", AttrRotation, 7, Vec2{}, "")

	labels := e.Animation().DrawDebugText(e, Vec2{X: 640, Y: 480})
	if len(labels) != 4 { // two bone headers, one frame each
		t.Fatalf("labels = %d, want 4", len(labels))
	}
	if labels[0].Text != "arm" || labels[2].Text != "hand" {
		t.Errorf("bone order = %q, %q; want arm, hand", labels[0].Text, labels[2].Text)
	}
}

func TestDrawDebugKeyFrames(t *testing.T) {
	e, _, _, _, _ := testEditor(t)
	e.Animation().SetKey("arm", AttrRotation, 10, Vec2{}, "")
	e.Animation().SetKey("hand", AttrRotation, 20, Vec2{}, "")

	points := e.Animation().DrawDebugKeyFrames(e, 10)
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	// KeyedBones is sorted, so arm comes first.
	if points[0].Color != colorActive {
		t.Error("bone keyed on the current frame not green")
	}
	if points[1].Color != colorKeyOther {
		t.Error("bone keyed elsewhere not yellow")
	}
}

func TestDrawDebugKeyFramesSkipsMissingBones(t *testing.T) {
	e, _, _, _, _ := testEditor(t)
	e.Animation().SetKey("ghost", AttrRotation, 0, Vec2{}, "")
	points := e.Animation().DrawDebugKeyFrames(e, 0)
	if len(points) != 0 {
		t.Errorf("points for unknown bone = %d, want 0", len(points))
	}
}
