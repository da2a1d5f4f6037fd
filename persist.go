package marionette

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// File format versions. Bumped on incompatible schema changes; loads of
// other versions fail wholesale.
const (
	rigFileVersion  = 1
	animFileVersion = 1
)

// --- JSON structure types ---

type jsonRigFile struct {
	Version int        `json:"version"`
	Bones   []jsonBone `json:"bones"`
}

type jsonBone struct {
	Name         string       `json:"name"`
	Parent       string       `json:"parent,omitempty"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	ScaleX       float64      `json:"scaleX"`
	ScaleY       float64      `json:"scaleY"`
	Rotation     float64      `json:"rotation"`
	PivotX       float64      `json:"pivotX"`
	PivotY       float64      `json:"pivotY"`
	Transparency float64      `json:"transparency"`
	ZOrder       int          `json:"zOrder"`
	Visible      bool         `json:"visible"`
	Image        *jsonImage   `json:"image,omitempty"`
	Points       [][2]float64 `json:"points,omitempty"`
}

type jsonImage struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonAnimFile struct {
	Version    int         `json:"version"`
	Name       string      `json:"name"`
	FrameCount int         `json:"frameCount"`
	Tracks     []jsonTrack `json:"tracks"`
}

type jsonTrack struct {
	Bone      string    `json:"bone"`
	Attribute string    `json:"attribute"`
	Keys      []jsonKey `json:"keys"`
}

type jsonKey struct {
	Frame  int        `json:"frame"`
	Value  [2]float64 `json:"value"`
	Easing string     `json:"easing,omitempty"`
}

// --- Rig ---

// EncodeRig serializes a BoneModel. Bones are written in traversal order
// (parent before child) so decoding is a single forward pass in the common
// case.
func EncodeRig(m *BoneModel) ([]byte, error) {
	file := jsonRigFile{Version: rigFileVersion}
	for _, b := range m.Bones() {
		jb := jsonBone{
			Name:         b.Name(),
			X:            b.Local.X,
			Y:            b.Local.Y,
			ScaleX:       b.Local.ScaleX,
			ScaleY:       b.Local.ScaleY,
			Rotation:     b.Local.Rotation,
			PivotX:       b.Local.PivotX,
			PivotY:       b.Local.PivotY,
			Transparency: b.Transparency,
			ZOrder:       b.ZOrder,
			Visible:      b.Visible,
		}
		if parent, ok := m.Bone(b.Parent()); ok {
			jb.Parent = parent.Name()
		}
		if b.Image != nil {
			jb.Image = &jsonImage{
				Name:   b.Image.Name,
				X:      b.Image.X,
				Y:      b.Image.Y,
				Width:  b.Image.Width,
				Height: b.Image.Height,
			}
		}
		for _, p := range b.Points {
			jb.Points = append(jb.Points, [2]float64{p.X, p.Y})
		}
		file.Bones = append(file.Bones, jb)
	}
	return json.MarshalIndent(file, "", " ")
}

// DecodeRig parses rig data into a new BoneModel. Malformed input (bad
// JSON, wrong version, duplicate names, unknown parents, parent cycles)
// fails the whole load with an error wrapping ErrFormat; no partial model
// is returned and any previously loaded state is untouched.
func DecodeRig(data []byte) (*BoneModel, error) {
	var file jsonRigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("marionette: rig: %v: %w", err, ErrFormat)
	}
	if file.Version != rigFileVersion {
		return nil, fmt.Errorf("marionette: rig version %d, want %d: %w", file.Version, rigFileVersion, ErrFormat)
	}

	m := NewBoneModel()
	ids := make(map[string]BoneID, len(file.Bones))

	// Bones are usually listed parent-first; loop until no insertion
	// succeeds so out-of-order files still load. Leftovers mean an unknown
	// parent or a cycle.
	pending := file.Bones
	for len(pending) > 0 {
		var next []jsonBone
		for _, jb := range pending {
			parent := NoBone
			if jb.Parent != "" {
				id, ok := ids[jb.Parent]
				if !ok {
					next = append(next, jb)
					continue
				}
				parent = id
			}
			id, err := m.AddBone(jb.Name, parent)
			if err != nil {
				return nil, fmt.Errorf("marionette: rig bone %q: %v: %w", jb.Name, err, ErrFormat)
			}
			ids[jb.Name] = id

			b, _ := m.Bone(id)
			b.Local = Transform{
				X: jb.X, Y: jb.Y,
				ScaleX: jb.ScaleX, ScaleY: jb.ScaleY,
				Rotation: jb.Rotation,
				PivotX:   jb.PivotX, PivotY: jb.PivotY,
			}
			b.Transparency = jb.Transparency
			b.ZOrder = jb.ZOrder
			b.Visible = jb.Visible
			if jb.Image != nil {
				b.Image = &BoneImage{
					Name:   jb.Image.Name,
					X:      jb.Image.X,
					Y:      jb.Image.Y,
					Width:  jb.Image.Width,
					Height: jb.Image.Height,
				}
			}
			for _, p := range jb.Points {
				b.Points = append(b.Points, Vec2{X: p[0], Y: p[1]})
			}
			m.Rebind(id)
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("marionette: rig bone %q: unresolved parent %q: %w", next[0].Name, next[0].Parent, ErrFormat)
		}
		pending = next
	}

	m.InvalidateAll()
	return m, nil
}

// SaveRig writes a BoneModel to a rig file. Round-trips exactly: names,
// parent links, local transforms, pivots, transparency, z-order,
// visibility, images, and edge points.
func SaveRig(m *BoneModel, path string) error {
	data, err := EncodeRig(m)
	if err != nil {
		return fmt.Errorf("marionette: save rig %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("marionette: save rig: %w", err)
	}
	return nil
}

// LoadRig reads a rig file into a new BoneModel.
func LoadRig(path string) (*BoneModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marionette: load rig: %w", err)
	}
	return DecodeRig(data)
}

// --- Animation ---

// EncodeAnimation serializes a SkinnedAnimation with tracks ordered by
// bone name then attribute, so output is deterministic.
func EncodeAnimation(a *SkinnedAnimation) ([]byte, error) {
	file := jsonAnimFile{
		Version:    animFileVersion,
		Name:       a.Name,
		FrameCount: a.FrameCount(),
	}

	bones := make([]string, 0, len(a.tracks))
	for name := range a.tracks {
		bones = append(bones, name)
	}
	sort.Strings(bones)

	for _, bone := range bones {
		for _, attr := range attributes {
			tr, ok := a.tracks[bone][attr]
			if !ok || tr.Len() == 0 {
				continue
			}
			jt := jsonTrack{Bone: bone, Attribute: attr.String()}
			for _, key := range tr.Keys() {
				jt.Keys = append(jt.Keys, jsonKey{
					Frame:  key.Frame,
					Value:  [2]float64{key.Value.X, key.Value.Y},
					Easing: key.Easing,
				})
			}
			file.Tracks = append(file.Tracks, jt)
		}
	}
	return json.MarshalIndent(file, "", " ")
}

// DecodeAnimation parses animation data. Malformed input (bad JSON, wrong
// version, frame count below 1, unknown attributes, negative frames) fails
// wholesale with an error wrapping ErrFormat. Unknown easing names are
// kept; they degrade to linear at sample time.
func DecodeAnimation(data []byte) (*SkinnedAnimation, error) {
	var file jsonAnimFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("marionette: animation: %v: %w", err, ErrFormat)
	}
	if file.Version != animFileVersion {
		return nil, fmt.Errorf("marionette: animation version %d, want %d: %w", file.Version, animFileVersion, ErrFormat)
	}
	if file.FrameCount < 1 {
		return nil, fmt.Errorf("marionette: animation frame count %d: %w", file.FrameCount, ErrFormat)
	}

	a := NewSkinnedAnimation(file.Name)
	a.SetFrameCount(file.FrameCount)
	for _, jt := range file.Tracks {
		attr, ok := parseAttribute(jt.Attribute)
		if !ok {
			return nil, fmt.Errorf("marionette: animation track %q: unknown attribute %q: %w", jt.Bone, jt.Attribute, ErrFormat)
		}
		for _, key := range jt.Keys {
			value := Vec2{X: key.Value[0], Y: key.Value[1]}
			if err := a.SetKey(jt.Bone, attr, key.Frame, value, key.Easing); err != nil {
				return nil, fmt.Errorf("marionette: animation track %q %s: %v: %w", jt.Bone, jt.Attribute, err, ErrFormat)
			}
		}
	}
	a.dirty = false
	return a, nil
}

// SaveAnimation writes an animation file. Round-trips exactly: name, frame
// count, and every track's sparse keys with easing ids.
func SaveAnimation(a *SkinnedAnimation, path string) error {
	data, err := EncodeAnimation(a)
	if err != nil {
		return fmt.Errorf("marionette: save animation %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("marionette: save animation: %w", err)
	}
	return nil
}

// LoadAnimation reads an animation file into a new SkinnedAnimation.
func LoadAnimation(path string) (*SkinnedAnimation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marionette: load animation: %w", err)
	}
	return DecodeAnimation(data)
}
