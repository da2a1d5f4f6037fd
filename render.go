package marionette

import (
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Uniform keys read by the host shader each frame. The naming scheme is
// stable; hosts key their Kage uniforms off these.
const (
	UniformShownTime     = "shownTime"
	UniformAnimationTime = "animationTime"
	UniformTime          = "time"
	UniformImageSize     = "imageSize"
)

// DrawCommand is one bone's worth of geometry, ready for a single
// DrawTriangles call. Vertices are already in world space with
// transparency baked into the vertex colors.
type DrawCommand struct {
	Bone     string
	ZOrder   int
	Image    *ebiten.Image
	Vertices []ebiten.Vertex
	Indices  []uint16
}

// boneMesh caches the tesselated grid for one bone image plus a reusable
// transform buffer.
type boneMesh struct {
	cell        float64
	width       float64
	height      float64
	vertices    []ebiten.Vertex
	indices     []uint16
	transformed []ebiten.Vertex
}

// RenderBridge binds a BoneModel's pose and a set of named textures into
// vertex buffers and uniform values for the external renderer. It holds no
// GPU state of its own; one Frame call per tick.
type RenderBridge struct {
	model       *BoneModel
	textures    map[string]*ebiten.Image
	meshes      map[BoneID]*boneMesh
	tesselation float64

	// Size is the rig-space canvas size reported through the imageSize
	// uniform. Set by the host.
	Size Vec2
}

// NewRenderBridge creates a bridge over the given model with the default
// tesselation cell size.
func NewRenderBridge(model *BoneModel) *RenderBridge {
	return &RenderBridge{
		model:       model,
		textures:    make(map[string]*ebiten.Image),
		meshes:      make(map[BoneID]*boneMesh),
		tesselation: 32,
	}
}

// SetTexture registers the texture a BoneImage name resolves to.
func (rb *RenderBridge) SetTexture(name string, img *ebiten.Image) {
	rb.textures[name] = img
}

// SetTesselation changes the grid cell size in pixels. Smaller cells mean
// finer meshes. Cached meshes rebuild lazily on the next Frame.
func (rb *RenderBridge) SetTesselation(size float64) {
	if size > 0 {
		rb.tesselation = size
	}
}

// Uniforms returns the per-tick uniform map. shownTime and animationTime
// are the host's display and animation clocks in seconds.
func (rb *RenderBridge) Uniforms(shownTime, animationTime float64) map[string]any {
	return map[string]any{
		UniformShownTime:     shownTime,
		UniformAnimationTime: animationTime,
		UniformTime:          shownTime,
		UniformImageSize:     []float64{rb.Size.X, rb.Size.Y},
	}
}

// Frame samples the model's current world transforms and returns one draw
// command per visible skinned bone, ordered by ZOrder (model order breaks
// ties). Returned slices are reused across calls; consume before the next
// Frame.
func (rb *RenderBridge) Frame() []DrawCommand {
	bones := make([]*Bone, 0, rb.model.Len())
	for _, b := range rb.model.Bones() {
		if !b.Visible || b.Image == nil {
			continue
		}
		if _, ok := rb.textures[b.Image.Name]; !ok {
			debugf("no texture registered for image %q (bone %q)", b.Image.Name, b.Name())
			continue
		}
		bones = append(bones, b)
	}
	sort.SliceStable(bones, func(i, j int) bool { return bones[i].ZOrder < bones[j].ZOrder })

	commands := make([]DrawCommand, 0, len(bones))
	for _, b := range bones {
		mesh := rb.ensureMesh(b)
		world, _ := rb.model.WorldTransform(b.ID())
		transformSkinVertices(mesh.vertices, mesh.transformed, world, b.Transparency)
		commands = append(commands, DrawCommand{
			Bone:     b.Name(),
			ZOrder:   b.ZOrder,
			Image:    rb.textures[b.Image.Name],
			Vertices: mesh.transformed,
			Indices:  mesh.indices,
		})
	}
	return commands
}

// ensureMesh returns the bone's cached grid mesh, rebuilding it when the
// tesselation or image size changed.
func (rb *RenderBridge) ensureMesh(b *Bone) *boneMesh {
	mesh := rb.meshes[b.ID()]
	if mesh != nil && mesh.cell == rb.tesselation &&
		mesh.width == b.Image.Width && mesh.height == b.Image.Height {
		return mesh
	}
	vertices, indices := buildGridMesh(b.Image, rb.tesselation)
	mesh = &boneMesh{
		cell:        rb.tesselation,
		width:       b.Image.Width,
		height:      b.Image.Height,
		vertices:    vertices,
		indices:     indices,
		transformed: make([]ebiten.Vertex, len(vertices)),
	}
	rb.meshes[b.ID()] = mesh
	return mesh
}

// buildGridMesh tesselates an image rect into a grid of cells no larger
// than cell pixels per side. Dst coordinates are rig space (the image rect
// offset applies); Src coordinates index the texture from its origin.
func buildGridMesh(img *BoneImage, cell float64) ([]ebiten.Vertex, []uint16) {
	cols := gridCells(img.Width, cell)
	rows := gridCells(img.Height, cell)

	vertices := make([]ebiten.Vertex, 0, (cols+1)*(rows+1))
	for row := 0; row <= rows; row++ {
		y := img.Height * float64(row) / float64(rows)
		for col := 0; col <= cols; col++ {
			x := img.Width * float64(col) / float64(cols)
			vertices = append(vertices, ebiten.Vertex{
				DstX:   float32(img.X + x),
				DstY:   float32(img.Y + y),
				SrcX:   float32(x),
				SrcY:   float32(y),
				ColorR: 1,
				ColorG: 1,
				ColorB: 1,
				ColorA: 1,
			})
		}
	}

	indices := make([]uint16, 0, cols*rows*6)
	stride := cols + 1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			topLeft := uint16(row*stride + col)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint16(stride)
			bottomRight := bottomLeft + 1
			indices = append(indices,
				topLeft, topRight, bottomLeft,
				topRight, bottomRight, bottomLeft,
			)
		}
	}
	return vertices, indices
}

// gridCells returns the cell count along one axis for the given extent.
func gridCells(extent, cell float64) int {
	if extent <= 0 || cell <= 0 {
		return 1
	}
	n := int(math.Ceil(extent / cell))
	if n < 1 {
		return 1
	}
	return n
}

// transformSkinVertices applies a world affine transform and an alpha
// multiplier to src vertices, writing into dst. dst must be at least
// len(src) long.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
// newX = a*x + c*y + tx, newY = b*x + d*y + ty
func transformSkinVertices(src, dst []ebiten.Vertex, transform [6]float64, alpha float64) {
	a, b, c, d, tx, ty := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]
	ca := float32(alpha)

	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * ca,
			ColorG: s.ColorG * ca,
			ColorB: s.ColorB * ca,
			ColorA: s.ColorA * ca,
		}
	}
}
