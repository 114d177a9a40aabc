package scene

import (
	"fmt"

	"github.com/phanxgames/sapling"
)

// Descriptors for the built-in node kinds. Declare children with them:
//
//	ui.Add(scene.Button).Prop("text", sapling.String("OK"))
var (
	Container = sapling.Constructor("Container")
	Panel     = sapling.Constructor("Panel")
	Label     = sapling.Constructor("Label")
	Button    = sapling.Constructor("Button")
)

const (
	defaultButtonW = 120
	defaultButtonH = 32
)

func builtinConstructors() map[string]func(name string) *Node {
	return map[string]func(name string) *Node{
		"Container": NewContainer,
		"Panel":     func(name string) *Node { return NewPanel(name, 0, 0, ColorWhite) },
		"Label":     func(name string) *Node { return NewLabel(name, "") },
		"Button":    func(name string) *Node { return NewButton(name, "", defaultButtonW, defaultButtonH) },
	}
}

// Register makes a constructor descriptor named name produce nodes with fn.
// It replaces a built-in of the same name.
func (s *Scene) Register(name string, fn func(name string) *Node) *sapling.NodeType {
	s.constructors[name] = fn
	return sapling.Constructor(name)
}

var (
	_ sapling.Host       = (*Scene)(nil)
	_ sapling.VisualHost = (*Scene)(nil)
)

// asNode unwraps a handle. Handles always come from this scene, so anything
// else is a programming error.
func asNode(h sapling.Handle) *Node {
	n, ok := h.(*Node)
	if !ok || n == nil {
		panic(fmt.Sprintf("scene: handle is %T, not *scene.Node", h))
	}
	return n
}

// Instantiate implements sapling.Host.
func (s *Scene) Instantiate(t *sapling.NodeType) (sapling.Handle, error) {
	switch t.Kind() {
	case sapling.TypeConstructor:
		fn, ok := s.constructors[t.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: no constructor registered for %q", sapling.ErrInvalidChildType, t.Name())
		}
		return fn(t.Name()), nil
	case sapling.TypeTemplate:
		prefab, ok := t.Prefab().(*Node)
		if !ok || prefab == nil || prefab.disposed {
			return nil, fmt.Errorf("%w: template %q is not a live *scene.Node", sapling.ErrInvalidChildType, t.Name())
		}
		return prefab.Clone(), nil
	case sapling.TypeFactory:
		h, err := t.Build()
		if err != nil {
			return nil, err
		}
		if _, ok := h.(*Node); !ok {
			return nil, fmt.Errorf("%w: factory %q built %T", sapling.ErrInvalidChildType, t.Name(), h)
		}
		return h, nil
	default:
		return nil, sapling.ErrInvalidChildType
	}
}

// Free implements sapling.Host.
func (s *Scene) Free(h sapling.Handle) {
	asNode(h).Dispose()
}

// SetName implements sapling.Host.
func (s *Scene) SetName(h sapling.Handle, name string) {
	asNode(h).Name = name
}

// Property implements sapling.Host.
func (s *Scene) Property(h sapling.Handle, name string) (sapling.Value, error) {
	n := asNode(h)
	s.debugCheckDisposed(n, "Property")
	return n.Get(name)
}

// SetProperty implements sapling.Host.
func (s *Scene) SetProperty(h sapling.Handle, name string, v sapling.Value) error {
	n := asNode(h)
	s.debugCheckDisposed(n, "SetProperty")
	return n.Set(name, v)
}

// IndexedProperty implements sapling.Host.
func (s *Scene) IndexedProperty(h sapling.Handle, path string) (sapling.Value, error) {
	n := asNode(h)
	s.debugCheckDisposed(n, "IndexedProperty")
	return n.GetPath(path)
}

// SetIndexedProperty implements sapling.Host.
func (s *Scene) SetIndexedProperty(h sapling.Handle, path string, v sapling.Value) error {
	n := asNode(h)
	s.debugCheckDisposed(n, "SetIndexedProperty")
	return n.SetPath(path, v)
}

// Connect implements sapling.Host.
func (s *Scene) Connect(h sapling.Handle, event string, cb *sapling.Callable) error {
	return asNode(h).Connect(event, cb)
}

// Disconnect implements sapling.Host.
func (s *Scene) Disconnect(h sapling.Handle, event string, cb *sapling.Callable) error {
	return asNode(h).Disconnect(event, cb)
}

// BlockEvents implements sapling.Host.
func (s *Scene) BlockEvents(h sapling.Handle, blocked bool) {
	asNode(h).SetBlocked(blocked)
}

// AddChild implements sapling.Host.
func (s *Scene) AddChild(parent, child sapling.Handle) {
	p := asNode(parent)
	s.debugCheckDisposed(p, "AddChild")
	p.AddChild(asNode(child))
	s.debugCheckTreeDepth(asNode(child))
}

// RemoveChild implements sapling.Host. Removing a node that is not a child
// of parent is a no-op.
func (s *Scene) RemoveChild(parent, child sapling.Handle) {
	p, c := asNode(parent), asNode(child)
	if c.Parent == p {
		p.RemoveChild(c)
	}
}

// MoveChild implements sapling.Host.
func (s *Scene) MoveChild(parent, child sapling.Handle, index int) {
	asNode(parent).SetChildIndex(asNode(child), index)
}

// Elapsed implements sapling.Host. It is the fixed delta when one is
// configured, otherwise one tick at the current TPS.
func (s *Scene) Elapsed() float64 {
	if s.fixedDelta > 0 {
		return s.fixedDelta
	}
	return s.tickDelta()
}

// SetVisualTransform implements sapling.VisualHost.
func (s *Scene) SetVisualTransform(h sapling.Handle, offsetX, offsetY, scaleX, scaleY float64) {
	asNode(h).setVisual(visualTransform{
		offsetX: offsetX, offsetY: offsetY,
		scaleX: scaleX, scaleY: scaleY,
	})
}
