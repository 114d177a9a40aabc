package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/phanxgames/sapling"
)

// ErrNotConnected is returned when disconnecting a handler that is not bound.
var ErrNotConnected = errors.New("scene: handler not connected")

// Connect binds cb to the named event. A callable may be bound to an event
// once.
func (n *Node) Connect(event string, cb *sapling.Callable) error {
	if cb == nil {
		return fmt.Errorf("scene: nil handler for %q", event)
	}
	if slices.Contains(n.handlers[event], cb) {
		return fmt.Errorf("scene: handler already connected to %q", event)
	}
	if n.handlers == nil {
		n.handlers = make(map[string][]*sapling.Callable)
	}
	n.handlers[event] = append(n.handlers[event], cb)
	return nil
}

// Disconnect unbinds cb from the named event.
func (n *Node) Disconnect(event string, cb *sapling.Callable) error {
	hs := n.handlers[event]
	i := slices.Index(hs, cb)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotConnected, event)
	}
	hs = slices.Delete(hs, i, i+1)
	if len(hs) == 0 {
		delete(n.handlers, event)
	} else {
		n.handlers[event] = hs
	}
	return nil
}

// IsConnected reports whether any handler is bound to the named event.
func (n *Node) IsConnected(event string) bool {
	return len(n.handlers[event]) > 0
}

// SetBlocked suppresses or resumes event delivery from n.
func (n *Node) SetBlocked(blocked bool) {
	n.blocked = blocked
}

// Emit calls every handler bound to the named event, in connection order.
// It reports whether any handler ran; blocked nodes run none.
func (n *Node) Emit(event string, args ...sapling.Value) bool {
	if n.blocked || n.disposed {
		return false
	}
	hs := n.handlers[event]
	if len(hs) == 0 {
		return false
	}
	// Handlers may rebind while running.
	for _, cb := range slices.Clone(hs) {
		cb.Call(args...)
	}
	return true
}
