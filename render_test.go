package marionette

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestGridCells(t *testing.T) {
	cases := []struct {
		extent, cell float64
		want         int
	}{
		{64, 32, 2},
		{65, 32, 3},
		{10, 32, 1},
		{0, 32, 1},
		{64, 0, 1},
	}
	for _, c := range cases {
		if got := gridCells(c.extent, c.cell); got != c.want {
			t.Errorf("gridCells(%v, %v) = %d, want %d", c.extent, c.cell, got, c.want)
		}
	}
}

func TestBuildGridMesh(t *testing.T) {
	img := &BoneImage{Name: "skin", X: 10, Y: 20, Width: 64, Height: 32}
	vertices, indices := buildGridMesh(img, 32)

	// 2x1 cells: 3x2 vertices, 2 triangles per cell.
	if len(vertices) != 6 {
		t.Fatalf("vertices = %d, want 6", len(vertices))
	}
	if len(indices) != 12 {
		t.Fatalf("indices = %d, want 12", len(indices))
	}

	// Dst is rig space (offset by the image rect), Src is texture space.
	first := vertices[0]
	if first.DstX != 10 || first.DstY != 20 {
		t.Errorf("first Dst = (%v, %v), want (10, 20)", first.DstX, first.DstY)
	}
	if first.SrcX != 0 || first.SrcY != 0 {
		t.Errorf("first Src = (%v, %v), want (0, 0)", first.SrcX, first.SrcY)
	}
	last := vertices[len(vertices)-1]
	if last.DstX != 74 || last.DstY != 52 {
		t.Errorf("last Dst = (%v, %v), want (74, 52)", last.DstX, last.DstY)
	}
	if last.SrcX != 64 || last.SrcY != 32 {
		t.Errorf("last Src = (%v, %v), want (64, 32)", last.SrcX, last.SrcY)
	}

	for _, i := range indices {
		if int(i) >= len(vertices) {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestTransformSkinVertices(t *testing.T) {
	src := []ebiten.Vertex{
		{DstX: 1, DstY: 2, SrcX: 3, SrcY: 4, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 1)

	transformSkinVertices(src, dst, [6]float64{1, 0, 0, 1, 5, 7}, 0.5)
	v := dst[0]
	if v.DstX != 6 || v.DstY != 9 {
		t.Errorf("Dst = (%v, %v), want (6, 9)", v.DstX, v.DstY)
	}
	if v.SrcX != 3 || v.SrcY != 4 {
		t.Errorf("Src changed: (%v, %v)", v.SrcX, v.SrcY)
	}
	if v.ColorA != 0.5 || v.ColorR != 0.5 {
		t.Errorf("alpha not premultiplied: R=%v A=%v", v.ColorR, v.ColorA)
	}

	// Source vertices are untouched.
	if src[0].DstX != 1 || src[0].ColorA != 1 {
		t.Error("transform mutated the source buffer")
	}
}

func TestUniforms(t *testing.T) {
	m := NewBoneModel()
	rb := NewRenderBridge(m)
	rb.Size = Vec2{X: 640, Y: 480}

	u := rb.Uniforms(1.5, 0.25)
	if u[UniformShownTime] != 1.5 {
		t.Errorf("shownTime = %v", u[UniformShownTime])
	}
	if u[UniformAnimationTime] != 0.25 {
		t.Errorf("animationTime = %v", u[UniformAnimationTime])
	}
	if u[UniformTime] != 1.5 {
		t.Errorf("time = %v, want the shown clock", u[UniformTime])
	}
	size, ok := u[UniformImageSize].([]float64)
	if !ok || len(size) != 2 || size[0] != 640 || size[1] != 480 {
		t.Errorf("imageSize = %v", u[UniformImageSize])
	}
}

func skinnedModel(t *testing.T) (*BoneModel, *RenderBridge) {
	t.Helper()
	m := NewBoneModel()
	back, _ := m.AddBone("back", NoBone)
	front, _ := m.AddBone("front", NoBone)
	mid, _ := m.AddBone("mid", NoBone)

	for i, id := range []BoneID{back, front, mid} {
		b, _ := m.Bone(id)
		b.Image = &BoneImage{Name: b.Name(), Width: 32, Height: 32}
		b.ZOrder = []int{0, 2, 1}[i]
	}

	rb := NewRenderBridge(m)
	var tex *ebiten.Image
	rb.SetTexture("back", tex)
	rb.SetTexture("front", tex)
	rb.SetTexture("mid", tex)
	return m, rb
}

func TestFrameOrdersByZOrder(t *testing.T) {
	_, rb := skinnedModel(t)
	commands := rb.Frame()
	if len(commands) != 3 {
		t.Fatalf("commands = %d, want 3", len(commands))
	}
	want := []string{"back", "mid", "front"}
	for i, cmd := range commands {
		if cmd.Bone != want[i] {
			t.Errorf("command %d = %q, want %q", i, cmd.Bone, want[i])
		}
	}
}

func TestFrameSkipsHiddenAndUnskinned(t *testing.T) {
	m, rb := skinnedModel(t)
	hidden, _ := m.BoneByName("mid")
	hidden.Visible = false
	m.AddBone("bare", NoBone) // no image at all

	commands := rb.Frame()
	if len(commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(commands))
	}
	for _, cmd := range commands {
		if cmd.Bone == "mid" || cmd.Bone == "bare" {
			t.Errorf("command for skipped bone %q", cmd.Bone)
		}
	}
}

func TestFrameSkipsMissingTexture(t *testing.T) {
	m := NewBoneModel()
	id, _ := m.AddBone("bone", NoBone)
	b, _ := m.Bone(id)
	b.Image = &BoneImage{Name: "unregistered", Width: 32, Height: 32}

	rb := NewRenderBridge(m)
	if commands := rb.Frame(); len(commands) != 0 {
		t.Errorf("commands = %d, want 0", len(commands))
	}
}

func TestFrameAppliesWorldTransform(t *testing.T) {
	m, rb := skinnedModel(t)
	b, _ := m.BoneByName("back")
	b.Local.X = 100
	m.Invalidate(b.ID())

	commands := rb.Frame()
	if commands[0].Bone != "back" {
		t.Fatal("unexpected order")
	}
	if got := commands[0].Vertices[0].DstX; got != 100 {
		t.Errorf("first vertex DstX = %v, want 100", got)
	}
}

func TestFrameBakesTransparency(t *testing.T) {
	m, rb := skinnedModel(t)
	b, _ := m.BoneByName("back")
	b.Transparency = 0.25

	commands := rb.Frame()
	if got := commands[0].Vertices[0].ColorA; got != 0.25 {
		t.Errorf("ColorA = %v, want 0.25", got)
	}
}

func TestMeshRebuildsOnTesselationChange(t *testing.T) {
	_, rb := skinnedModel(t)
	before := len(rb.Frame()[0].Vertices) // cell 32 over 32x32: 2x2 vertices

	rb.SetTesselation(16)
	after := len(rb.Frame()[0].Vertices) // 2x2 cells: 3x3 vertices
	if before != 4 || after != 9 {
		t.Errorf("vertex counts = %d then %d, want 4 then 9", before, after)
	}

	// Non-positive sizes are ignored.
	rb.SetTesselation(0)
	if got := len(rb.Frame()[0].Vertices); got != 9 {
		t.Errorf("vertices after SetTesselation(0) = %d, want 9", got)
	}
}

func TestMeshRebuildsOnImageResize(t *testing.T) {
	m, rb := skinnedModel(t)
	before := len(rb.Frame()[0].Vertices)

	b, _ := m.BoneByName("back")
	b.Image.Width = 96 // 3 cells wide at tesselation 32
	after := len(rb.Frame()[0].Vertices)
	if before != 4 || after != 8 {
		t.Errorf("vertex counts = %d then %d, want 4 then 8", before, after)
	}
}
