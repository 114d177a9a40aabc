package scene

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint.
var ColorWhite = Color{1, 1, 1, 1}

// Rect is an axis-aligned rectangle. The origin is the top-left, with Y
// increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Kind selects how a Node is drawn and hit-tested.
type Kind uint8

const (
	KindContainer Kind = iota // group node with no visual output
	KindPanel                 // solid color rectangle
	KindLabel                 // single block of debug-font text
	KindButton                // panel with a centered label, interactable
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "Container"
	case KindPanel:
		return "Panel"
	case KindLabel:
		return "Label"
	case KindButton:
		return "Button"
	default:
		return "Unknown"
	}
}

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerDown  EventType = iota // a pointer button is pressed
	EventPointerUp                     // a pointer button is released
	EventPointerMove                   // the pointer moves with no button held
	EventClick                         // press then release over the same node
	EventDragStart                     // movement exceeds the drag dead zone
	EventDrag                          // every frame while dragging
	EventDragEnd                       // release after dragging
	EventPointerEnter                  // the pointer enters a node's bounds
	EventPointerLeave                  // the pointer leaves a node's bounds
)

// eventNames maps interaction events to the names nodes emit them under.
var eventNames = [...]string{
	EventPointerDown:  "pointer_down",
	EventPointerUp:    "pointer_up",
	EventPointerMove:  "pointer_move",
	EventClick:        "pressed",
	EventDragStart:    "drag_start",
	EventDrag:         "drag",
	EventDragEnd:      "drag_end",
	EventPointerEnter: "pointer_enter",
	EventPointerLeave: "pointer_leave",
}

// Name returns the event name nodes emit this event under.
func (e EventType) Name() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return ""
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events are forwarded to it.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	NodeName  string
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}
