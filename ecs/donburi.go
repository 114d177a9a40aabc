package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/sapling/scene"
)

// InteractionEventType is the Donburi event type for scene interaction
// events. Subscribe to it in ECS systems to receive pointer, click and
// drag events.
var InteractionEventType = events.NewEventType[scene.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are queued on InteractionEventType and delivered by
// ProcessEvents.
func NewDonburiStore(world donburi.World) scene.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event scene.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// OnEvent subscribes fn to interaction events of one type.
func OnEvent(world donburi.World, typ scene.EventType, fn func(donburi.World, scene.InteractionEvent)) {
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		if e.Type == typ {
			fn(w, e)
		}
	})
}

// OnNode subscribes fn to every interaction event on nodes named name.
// UI nodes are named after their keys, so this selects a widget by key.
func OnNode(world donburi.World, name string, fn func(donburi.World, scene.InteractionEvent)) {
	InteractionEventType.Subscribe(world, func(w donburi.World, e scene.InteractionEvent) {
		if e.NodeName == name {
			fn(w, e)
		}
	})
}

// ProcessEvents delivers queued interaction events to subscribers. Call it
// once per tick from the ECS update.
func ProcessEvents(world donburi.World) {
	InteractionEventType.ProcessEvents(world)
}
