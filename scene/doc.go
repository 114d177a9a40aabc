// Package scene is a retained 2D scene graph on [Ebitengine] that hosts
// sapling UIs.
//
// A [Scene] owns a tree of [Node] values and a [sapling.Scheduler] bound
// to it. Scene implements [sapling.Host], so builders mounted with
// [Scene.Mount] create, configure and reorder nodes of this package.
//
// # Quick start
//
//	s := scene.NewScene()
//	s.Mount(func(ui sapling.UI) {
//		ui.Add(scene.Button, sapling.Key("ok")).
//			Prop("text", sapling.String("OK")).
//			Event("pressed", onOK)
//	})
//	scene.Run(s, scene.RunConfig{Title: "Demo", Width: 640, Height: 480})
//
// For full control, drive [Scene.Update], [Scene.Draw] and [Scene.Layout]
// from your own [ebiten.Game].
//
// # Nodes
//
// The built-in kinds are Container, Panel, Label and Button, available as
// the descriptors [Container], [Panel], [Label] and [Button]. Register
// more with [Scene.Register]. Templates clone a prefab *Node and factories
// may return any *Node.
//
// Properties are addressed by name ("position", "size", "alpha", "color",
// "text", "anchor_left", ...) and components by path ("position:x",
// "color:a", "rect:w"). Unknown names are stored on the node as custom
// values.
//
// # Events
//
// Pointer input is hit-tested against interactable nodes and emitted as
// named events: "pressed" on click, "pointer_down", "pointer_up",
// "pointer_move", "pointer_enter", "pointer_leave", "drag_start", "drag"
// and "drag_end". Every interaction is also forwarded to an optional
// [EntityStore].
//
// # Scripted input
//
// [Scene.InjectClick] and friends queue synthetic pointer events.
// [LoadTestScript] sequences them with waits and property expectations.
//
// [Ebitengine]: https://ebitengine.org
package scene
