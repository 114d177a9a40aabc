package sapling

// Handle is an opaque reference to a host node. Its lifetime is owned by the
// host; proxies only borrow it.
type Handle any

// Host is the narrow boundary to the engine that owns the scene graph.
// Every method is called synchronously from the logic or pre-render tick.
type Host interface {
	// Instantiate creates a node from a type descriptor. It returns an error
	// wrapping ErrInvalidChildType when the descriptor cannot produce a node.
	Instantiate(t *NodeType) (Handle, error)
	// Free releases a node created by Instantiate.
	Free(n Handle)
	// SetName gives a node a human-readable name.
	SetName(n Handle, name string)

	// Property reads a property by plain name.
	Property(n Handle, name string) (Value, error)
	// SetProperty writes a property by plain name.
	SetProperty(n Handle, name string, v Value) error
	// IndexedProperty reads a property by path ("position:x").
	IndexedProperty(n Handle, path string) (Value, error)
	// SetIndexedProperty writes a property by path.
	SetIndexedProperty(n Handle, path string, v Value) error

	// Connect binds cb to the named event of n.
	Connect(n Handle, event string, cb *Callable) error
	// Disconnect unbinds cb from the named event of n.
	Disconnect(n Handle, event string, cb *Callable) error
	// BlockEvents suppresses (or resumes) outward event delivery from n.
	BlockEvents(n Handle, blocked bool)

	// AddChild appends child to parent.
	AddChild(parent, child Handle)
	// RemoveChild detaches child from parent without freeing it.
	RemoveChild(parent, child Handle)
	// MoveChild moves child to index among its siblings.
	MoveChild(parent, child Handle, index int)

	// Elapsed returns the seconds elapsed since the previous tick.
	Elapsed() float64
}

// VisualHost is implemented by hosts that support a visual-only transform
// applied on top of layout, used by AnimateRect smoothing.
type VisualHost interface {
	SetVisualTransform(n Handle, offsetX, offsetY, scaleX, scaleY float64)
}

// TypeKind distinguishes the ways a NodeType produces a node.
type TypeKind uint8

const (
	TypeConstructor TypeKind = iota // native node class, looked up by name
	TypeTemplate                    // prefab the host clones
	TypeFactory                     // function that builds the node
)

func (k TypeKind) String() string {
	switch k {
	case TypeConstructor:
		return "constructor"
	case TypeTemplate:
		return "template"
	case TypeFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// NodeType describes how to produce a host node. Children are keyed by the
// descriptor's pointer identity, so declare descriptors once (typically as
// package-level variables) and reuse them across passes.
type NodeType struct {
	kind     TypeKind
	name     string
	template any
	factory  func() (Handle, error)
}

// Constructor returns a descriptor for a host node class.
func Constructor(name string) *NodeType {
	return &NodeType{kind: TypeConstructor, name: name}
}

// Template returns a descriptor for a prefab the host knows how to clone.
func Template(name string, prefab any) *NodeType {
	return &NodeType{kind: TypeTemplate, name: name, template: prefab}
}

// Factory returns a descriptor that builds nodes with fn.
func Factory(name string, fn func() (Handle, error)) *NodeType {
	return &NodeType{kind: TypeFactory, name: name, factory: fn}
}

// Kind reports how the descriptor produces nodes.
func (t *NodeType) Kind() TypeKind { return t.kind }

// Name returns the descriptor's class or display name.
func (t *NodeType) Name() string { return t.name }

// Prefab returns the template of a TypeTemplate descriptor.
func (t *NodeType) Prefab() any { return t.template }

// Build runs the factory of a TypeFactory descriptor.
func (t *NodeType) Build() (Handle, error) {
	if t.kind != TypeFactory || t.factory == nil {
		return nil, ErrInvalidChildType
	}
	return t.factory()
}

// Callable is an event callback with identity. Bindings compare callables by
// pointer: declaring the same *Callable on every pass keeps the host
// connection untouched, while a new one replaces it.
type Callable struct {
	fn func(args ...Value)
}

// Func wraps fn in a Callable.
func Func(fn func(args ...Value)) *Callable {
	return &Callable{fn: fn}
}

// Call invokes the callback. A nil Callable is a no-op.
func (c *Callable) Call(args ...Value) {
	if c == nil || c.fn == nil {
		return
	}
	c.fn(args...)
}
