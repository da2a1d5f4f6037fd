// Package marionette is a skinned 2D rig animation engine for [Ebitengine].
//
// Marionette provides the bone hierarchy, keyframe animation with easing
// curves, interactive rig editing, and the render-bridge glue a host game
// needs to pose and draw a skinned character each frame. It is a library:
// the host owns the window, the game loop, pointer capture, and the actual
// shader program. Marionette only exposes pose, meshes, and uniform values.
//
// # Quick start
//
// Build a rig, key a track, and sample it once per tick:
//
//	model := marionette.NewBoneModel()
//	root, _ := model.AddBone("root", marionette.NoBone)
//	arm, _ := model.AddBone("arm", root)
//
//	anim := marionette.NewSkinnedAnimation("wave")
//	anim.SetFrameCount(30)
//	anim.SetKey("arm", marionette.AttrRotation, 0, marionette.Vec2{}, "")
//	anim.SetKey("arm", marionette.AttrRotation, 29, marionette.Vec2{X: math.Pi / 2}, "inOutQuad")
//
//	// per tick:
//	anim.Update(frame, model)
//	world, _ := model.WorldTransform(arm)
//
// # Editing
//
// [SkinnedEditor] binds one [BoneModel] to a set of [EditorSettings] and
// consumes pointer events plus a typed command queue. The host enqueues
// commands ([RenameBone], [ResetPose], [CaptureKey], ...) and calls
// [SkinnedEditor.Update] once per tick; commands are drained and applied in
// order, so editing stays deterministic. Debug overlays are returned as
// plain primitive lists (points, lines, labels) for the host to draw.
//
// # Rendering
//
// [RenderBridge] tesselates each bone's image into a grid mesh, transforms
// the vertices by the bone's world transform, and emits one draw command per
// visible bone in z-order, plus a uniform map with stable keys (shownTime,
// animationTime, time, imageSize) that the host shader reads each frame.
//
// # Concurrency
//
// Marionette is single-threaded and tick-driven. One Update call per render
// frame, no concurrent mutation, no atomics. Re-entrant Update calls during
// a draw are not supported.
//
// Easing curves come from [gween]; playback descriptors can be loaded from
// YAML files.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package marionette
