package marionette

// BoneID is a stable integer identity assigned at creation. Ownership and
// parent links always go through ids; the name index exists only for
// lookup and persistence and is rebuilt on rename.
type BoneID uint32

// NoBone is the zero BoneID. A root bone has Parent() == NoBone.
const NoBone BoneID = 0

// BoneImage describes the image rect a bone is skinned to, in rig space.
// The Name references a texture registered on the RenderBridge.
type BoneImage struct {
	Name   string
	X, Y   float64
	Width  float64
	Height float64
}

// Rect returns the image's rig-space rectangle.
func (img BoneImage) Rect() Rect {
	return Rect{X: img.X, Y: img.Y, Width: img.Width, Height: img.Height}
}

// Bone is a node in the skeletal hierarchy. Pose fields (Local,
// Transparency) may be written directly; call BoneModel.Invalidate
// afterwards so cached world transforms are recomputed.
type Bone struct {
	id     BoneID
	name   string
	parent BoneID
	// children ids in attach order, maintained by AddBone/Connect.
	children []BoneID

	// Local is the current local pose. bind is the rest pose it resets to.
	Local Transform
	bind  Transform

	// Transparency in [0, 1]; multiplies vertex alpha at render time.
	Transparency float64
	ZOrder       int
	Visible      bool

	// Image is nil for pure joint bones.
	Image *BoneImage
	// Points is the simplified edge polygon of the image, in rig space.
	// Used only by debug overlays.
	Points []Vec2

	world      [6]float64
	worldDirty bool
}

// ID returns the bone's stable identity.
func (b *Bone) ID() BoneID { return b.id }

// Name returns the bone's unique name.
func (b *Bone) Name() string { return b.name }

// Parent returns the parent id, or NoBone for a root.
func (b *Bone) Parent() BoneID { return b.parent }

// Bind returns the bone's rest pose.
func (b *Bone) Bind() Transform { return b.bind }

// BoneModel owns an ordered sequence of bones. Traversal order is always
// parent-before-child, and no bone is its own ancestor.
//
// A BoneModel is exclusively owned by one editing session at a time; it is
// not safe for concurrent use (marionette is single-threaded).
type BoneModel struct {
	bones  []*Bone
	byID   map[BoneID]*Bone
	byName map[string]BoneID
	nextID BoneID
}

// NewBoneModel creates an empty skeleton.
func NewBoneModel() *BoneModel {
	return &BoneModel{
		byID:   make(map[BoneID]*Bone),
		byName: make(map[string]BoneID),
	}
}

// AddBone appends a bone under the given parent (NoBone for a root).
// Fails with ErrDuplicateName if the name is taken, ErrBoneNotFound if the
// parent does not exist. The bone's current pose becomes its bind pose.
func (m *BoneModel) AddBone(name string, parent BoneID) (BoneID, error) {
	if _, taken := m.byName[name]; taken {
		return NoBone, ErrDuplicateName
	}
	var parentBone *Bone
	if parent != NoBone {
		var ok bool
		parentBone, ok = m.byID[parent]
		if !ok {
			return NoBone, ErrBoneNotFound
		}
	}

	m.nextID++
	b := &Bone{
		id:           m.nextID,
		name:         name,
		parent:       parent,
		Local:        bindTransform(),
		bind:         bindTransform(),
		Transparency: 1,
		Visible:      true,
		worldDirty:   true,
	}
	m.bones = append(m.bones, b)
	m.byID[b.id] = b
	m.byName[name] = b.id
	if parentBone != nil {
		parentBone.children = append(parentBone.children, b.id)
	}
	return b.id, nil
}

// RenameBone changes a bone's name. Returns false if the bone does not
// exist or the new name is already taken by another bone. Keyframe tracks
// referencing the old name must be re-keyed by the caller (see
// SkinnedAnimation.RenameBone).
func (m *BoneModel) RenameBone(id BoneID, newName string) bool {
	b, ok := m.byID[id]
	if !ok {
		return false
	}
	if b.name == newName {
		return true
	}
	if _, taken := m.byName[newName]; taken {
		return false
	}
	delete(m.byName, b.name)
	b.name = newName
	m.byName[newName] = id
	return true
}

// Bone returns the bone with the given id.
func (m *BoneModel) Bone(id BoneID) (*Bone, bool) {
	b, ok := m.byID[id]
	return b, ok
}

// BoneByName returns the bone with the given name.
func (m *BoneModel) BoneByName(name string) (*Bone, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.byID[id], true
}

// Bones returns the bones in traversal order (parent before child).
// The returned slice MUST NOT be mutated by the caller.
func (m *BoneModel) Bones() []*Bone {
	return m.bones
}

// Len returns the number of bones.
func (m *BoneModel) Len() int {
	return len(m.bones)
}

// Connect re-parents a bone. Returns false if either bone is missing or
// the new parent is the bone itself or one of its descendants (which would
// create a cycle). Traversal order is re-established afterwards.
func (m *BoneModel) Connect(id, parent BoneID) bool {
	b, ok := m.byID[id]
	if !ok {
		return false
	}
	var newParent *Bone
	if parent != NoBone {
		newParent, ok = m.byID[parent]
		if !ok {
			return false
		}
		if m.isAncestor(id, parent) {
			return false
		}
	}
	if b.parent == parent {
		return true
	}
	if old, ok := m.byID[b.parent]; ok {
		old.children = removeID(old.children, id)
	}
	b.parent = parent
	if newParent != nil {
		newParent.children = append(newParent.children, id)
	}
	m.reorder()
	m.Invalidate(id)
	return true
}

// isAncestor reports whether candidate is id itself or one of its ancestors.
func (m *BoneModel) isAncestor(candidate, id BoneID) bool {
	for cur := id; cur != NoBone; {
		if cur == candidate {
			return true
		}
		b, ok := m.byID[cur]
		if !ok {
			return false
		}
		cur = b.parent
	}
	return false
}

// reorder rebuilds the bone slice so parents precede children, preserving
// the relative order of siblings and roots.
func (m *BoneModel) reorder() {
	ordered := make([]*Bone, 0, len(m.bones))
	var visit func(b *Bone)
	visit = func(b *Bone) {
		ordered = append(ordered, b)
		for _, childID := range b.children {
			visit(m.byID[childID])
		}
	}
	for _, b := range m.bones {
		if b.parent == NoBone {
			visit(b)
		}
	}
	m.bones = ordered
}

// WorldTransform returns the bone's world affine matrix: the composition of
// its local transform with every ancestor's, root first. The result is
// memoized; any mutation reported through Invalidate marks the subtree
// stale and it is recomputed lazily on the next call.
func (m *BoneModel) WorldTransform(id BoneID) ([6]float64, bool) {
	b, ok := m.byID[id]
	if !ok {
		return identityAffine, false
	}
	return m.worldOf(b), true
}

func (m *BoneModel) worldOf(b *Bone) [6]float64 {
	if !b.worldDirty {
		return b.world
	}
	parentWorld := identityAffine
	if p, ok := m.byID[b.parent]; ok {
		parentWorld = m.worldOf(p)
	}
	b.world = multiplyAffine(parentWorld, b.Local.Affine())
	b.worldDirty = false
	return b.world
}

// Invalidate marks a bone's cached world transform stale, along with every
// descendant's. Call after writing Bone.Local directly.
func (m *BoneModel) Invalidate(id BoneID) {
	b, ok := m.byID[id]
	if !ok {
		return
	}
	m.markSubtreeDirty(b)
}

func (m *BoneModel) markSubtreeDirty(b *Bone) {
	b.worldDirty = true
	for _, childID := range b.children {
		m.markSubtreeDirty(m.byID[childID])
	}
}

// InvalidateAll marks every bone's world transform stale.
func (m *BoneModel) InvalidateAll() {
	for _, b := range m.bones {
		b.worldDirty = true
	}
}

// ResetPose restores every bone's local transform to its bind pose.
func (m *BoneModel) ResetPose() {
	for _, b := range m.bones {
		b.Local = b.bind
		b.worldDirty = true
	}
}

// Rebind snapshots the bone's current local transform as its bind pose.
// Returns false if the bone does not exist. Used after authoring a rest
// pose and by the rig loader.
func (m *BoneModel) Rebind(id BoneID) bool {
	b, ok := m.byID[id]
	if !ok {
		return false
	}
	b.bind = b.Local
	return true
}

// PivotWorld returns the bone's pivot point in world space.
func (m *BoneModel) PivotWorld(id BoneID) (Vec2, bool) {
	b, ok := m.byID[id]
	if !ok {
		return Vec2{}, false
	}
	x, y := transformPoint(m.worldOf(b), b.Local.PivotX, b.Local.PivotY)
	return Vec2{X: x, Y: y}, true
}

// removeID removes the first occurrence of id from ids.
func removeID(ids []BoneID, id BoneID) []BoneID {
	for i, v := range ids {
		if v == id {
			copy(ids[i:], ids[i+1:])
			return ids[:len(ids)-1]
		}
	}
	return ids
}
