// Package ecs bridges scene interaction events into a [Donburi] world.
//
// [NewDonburiStore] publishes every pointer, click and drag event as a
// typed Donburi event. Systems subscribe with [OnEvent] or [OnNode] and
// drain the queue with [ProcessEvents]:
//
//	world := donburi.NewWorld()
//	s.SetEntityStore(ecs.NewDonburiStore(world))
//	ecs.OnNode(world, "play", func(w donburi.World, e scene.InteractionEvent) { ... })
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
