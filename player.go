package marionette

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TrackInfo describes how one animation plays back. Descriptors are plain
// config; they can be authored inline or loaded from a YAML file with
// LoadTrackInfos.
type TrackInfo struct {
	// Name identifies the track and, for LoadTrackInfos-driven setups, the
	// animation it plays.
	Name string `yaml:"name"`
	// Repeat loops the animation with a modulo over the frame count.
	Repeat bool `yaml:"repeat"`
	// Cyclic ping-pongs: forward to the last frame, then backward.
	Cyclic bool `yaml:"cyclic"`
	// Reverse plays the frames back to front.
	Reverse bool `yaml:"reverse"`
	// AutoEnd freezes the track once it reaches its last frame.
	AutoEnd bool `yaml:"autoEnd"`
	// Clip trims trailing keyless frames from the animation when started.
	Clip bool `yaml:"clip"`
	// Speed is a playback-rate multiplier. Zero means 1.
	Speed float64 `yaml:"speed"`
	// FPS converts wall time to frame indices. Zero means 30.
	FPS float64 `yaml:"fps"`
}

// withDefaults fills zero Speed/FPS.
func (info TrackInfo) withDefaults() TrackInfo {
	if info.Speed == 0 {
		info.Speed = 1
	}
	if info.FPS == 0 {
		info.FPS = 30
	}
	return info
}

// LoadTrackInfos reads a YAML list of track descriptors. A descriptor
// without a name fails the whole load with an error wrapping ErrFormat.
func LoadTrackInfos(path string) ([]TrackInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("marionette: load track infos: %w", err)
	}
	var infos []TrackInfo
	if err := yaml.Unmarshal(data, &infos); err != nil {
		return nil, fmt.Errorf("marionette: track infos: %v: %w", err, ErrFormat)
	}
	for i := range infos {
		if infos[i].Name == "" {
			return nil, fmt.Errorf("marionette: track info %d: missing name: %w", i, ErrFormat)
		}
		infos[i] = infos[i].withDefaults()
	}
	return infos, nil
}

// playbackTrack is one running animation on a player.
type playbackTrack struct {
	info  TrackInfo
	anim  *SkinnedAnimation
	start float64
}

// frameIndex converts wall time to a raw (unbounded) frame index.
func (t *playbackTrack) frameIndex(now float64) int {
	delta := (now - t.start) * t.info.Speed
	return int(math.Round(delta * t.info.FPS))
}

// frameIndexClamped stops at the last frame.
func (t *playbackTrack) frameIndexClamped(now float64) int {
	index := t.frameIndex(now)
	if last := t.anim.FrameCount() - 1; index > last {
		return last
	}
	if index < 0 {
		return 0
	}
	return index
}

// frameIndexRepeat wraps with a modulo.
func (t *playbackTrack) frameIndexRepeat(now float64) int {
	return t.frameIndex(now) % t.anim.FrameCount()
}

// frameIndexCyclic ping-pongs between the first and last frame.
func (t *playbackTrack) frameIndexCyclic(now float64) int {
	index := t.frameIndex(now)
	count := t.anim.FrameCount()
	reversing := (index / count) % 2
	real := index % count
	if reversing == 1 {
		return count - real
	}
	return real
}

// atEnd reports whether a non-looping track reached its last frame.
func (t *playbackTrack) atEnd(now float64) bool {
	return t.frameIndexClamped(now) >= t.anim.FrameCount()-1
}

// currentFrame resolves the playback mode to a frame index.
func (t *playbackTrack) currentFrame(now float64) int {
	var index int
	switch {
	case t.info.Cyclic:
		index = t.frameIndexCyclic(now)
	case t.info.Repeat:
		index = t.frameIndexRepeat(now)
	default:
		index = t.frameIndexClamped(now)
	}
	if t.info.Reverse {
		index = (t.anim.FrameCount() - 1) - index
	}
	return index
}

// AnimationPlayer drives one or more animations against a BoneModel from
// wall time, outside the editor. Tracks apply in name order each Advance,
// and bones no active track animates ease back toward their bind pose.
type AnimationPlayer struct {
	model  *BoneModel
	tracks map[string]*playbackTrack
}

// NewAnimationPlayer creates a player over the given model.
func NewAnimationPlayer(model *BoneModel) *AnimationPlayer {
	return &AnimationPlayer{
		model:  model,
		tracks: make(map[string]*playbackTrack),
	}
}

// Start begins (or restarts) a track playing the given animation from the
// given time. Applies the descriptor's Clip setting.
func (p *AnimationPlayer) Start(info TrackInfo, anim *SkinnedAnimation, now float64) {
	info = info.withDefaults()
	if info.Clip {
		anim.Clip()
	}
	p.tracks[info.Name] = &playbackTrack{info: info, anim: anim, start: now}
}

// Stop removes a track. Unknown names are ignored.
func (p *AnimationPlayer) Stop(name string) {
	delete(p.tracks, name)
}

// Running returns the active track names, sorted.
func (p *AnimationPlayer) Running() []string {
	names := make([]string, 0, len(p.tracks))
	for name := range p.tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Advance applies every active track's pose for the given wall time, in
// name order, then eases unanimated bones back toward their bind pose.
func (p *AnimationPlayer) Advance(now float64) {
	for _, name := range p.Running() {
		track := p.tracks[name]
		if track.info.AutoEnd && track.atEnd(now) {
			continue
		}
		track.anim.Update(track.currentFrame(now), p.model)
	}
	p.restBones(now)
}

// restWeight is the per-tick blend toward bind pose for unanimated bones.
const restWeight = 0.1

// restBones eases every bone that no active track keys back toward its
// bind pose, so a stopped limb settles instead of snapping.
func (p *AnimationPlayer) restBones(now float64) {
	animated := p.animatedBones(now)
	for _, b := range p.model.Bones() {
		if animated[b.Name()] {
			continue
		}
		bind := b.Bind()
		b.Local.X = lerp(b.Local.X, bind.X, restWeight)
		b.Local.Y = lerp(b.Local.Y, bind.Y, restWeight)
		b.Local.Rotation = lerp(b.Local.Rotation, bind.Rotation, restWeight)
		b.Local.ScaleX = lerp(b.Local.ScaleX, bind.ScaleX, restWeight)
		b.Local.ScaleY = lerp(b.Local.ScaleY, bind.ScaleY, restWeight)
		p.model.Invalidate(b.ID())
	}
}

// animatedBones returns the names keyed by any track still active at now.
func (p *AnimationPlayer) animatedBones(now float64) map[string]bool {
	names := make(map[string]bool)
	for _, track := range p.tracks {
		if track.info.AutoEnd && track.atEnd(now) {
			continue
		}
		for _, name := range track.anim.KeyedBones() {
			names[name] = true
		}
	}
	return names
}
