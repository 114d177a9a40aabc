package sapling

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// fakeNode is a node of fakeHost.
type fakeNode struct {
	typ      *NodeType
	name     string
	parent   *fakeNode
	children []*fakeNode
	props    map[string]Value
	events   map[string]*Callable
	blocked  bool
	freed    bool

	visual [4]float64
}

// fakeHost records every operation the reconciler issues.
type fakeHost struct {
	elapsed float64

	instantiated int
	freed        int
	added        int
	removed      int
	moved        int
	writes       int
	connects     int
	disconnects  int
	log          []string

	connectErr error
}

var errNoProperty = errors.New("no such property")

var (
	typeA      = Constructor("A")
	typeB      = Constructor("B")
	typeBroken = Factory("Broken", func() (Handle, error) { return nil, errors.New("boom") })
)

func newFakeHost() *fakeHost {
	return &fakeHost{elapsed: 1.0 / 60}
}

func newFakeNode(typ *NodeType) *fakeNode {
	return &fakeNode{
		typ: typ,
		props: map[string]Value{
			"position": Vec2(0, 0),
			"alpha":    Float(1),
			"text":     String(""),
		},
		events: make(map[string]*Callable),
	}
}

func (h *fakeHost) Instantiate(t *NodeType) (Handle, error) {
	if t.Kind() == TypeFactory {
		return t.Build()
	}
	h.instantiated++
	h.log = append(h.log, "new "+t.Name())
	return newFakeNode(t), nil
}

func (h *fakeHost) Free(n Handle) {
	h.freed++
	n.(*fakeNode).freed = true
}

func (h *fakeHost) SetName(n Handle, name string) { n.(*fakeNode).name = name }

func (h *fakeHost) Property(n Handle, name string) (Value, error) {
	v, ok := n.(*fakeNode).props[name]
	if !ok {
		return Nil, errNoProperty
	}
	return v, nil
}

func (h *fakeHost) SetProperty(n Handle, name string, v Value) error {
	h.writes++
	n.(*fakeNode).props[name] = v
	return nil
}

// IndexedProperty supports "name:x" and "name:y" on Vec2 properties.
func (h *fakeHost) IndexedProperty(n Handle, path string) (Value, error) {
	name, sub, ok := strings.Cut(path, ":")
	if !ok {
		return h.Property(n, path)
	}
	v, err := h.Property(n, name)
	if err != nil {
		return Nil, err
	}
	x, y := v.AsVec2()
	switch sub {
	case "x":
		return Float(x), nil
	case "y":
		return Float(y), nil
	}
	return Nil, errNoProperty
}

func (h *fakeHost) SetIndexedProperty(n Handle, path string, v Value) error {
	name, sub, ok := strings.Cut(path, ":")
	if !ok {
		return h.SetProperty(n, path, v)
	}
	cur, err := h.Property(n, name)
	if err != nil {
		return err
	}
	x, y := cur.AsVec2()
	switch sub {
	case "x":
		x = v.AsFloat()
	case "y":
		y = v.AsFloat()
	default:
		return errNoProperty
	}
	return h.SetProperty(n, name, Vec2(x, y))
}

func (h *fakeHost) Connect(n Handle, event string, cb *Callable) error {
	if h.connectErr != nil {
		return h.connectErr
	}
	h.connects++
	n.(*fakeNode).events[event] = cb
	return nil
}

func (h *fakeHost) Disconnect(n Handle, event string, cb *Callable) error {
	fn := n.(*fakeNode)
	if fn.events[event] != cb {
		return fmt.Errorf("%s not connected", event)
	}
	h.disconnects++
	delete(fn.events, event)
	return nil
}

func (h *fakeHost) BlockEvents(n Handle, blocked bool) { n.(*fakeNode).blocked = blocked }

func (h *fakeHost) AddChild(parent, child Handle) {
	h.added++
	p, c := parent.(*fakeNode), child.(*fakeNode)
	c.parent = p
	p.children = append(p.children, c)
}

func (h *fakeHost) RemoveChild(parent, child Handle) {
	h.removed++
	p, c := parent.(*fakeNode), child.(*fakeNode)
	if i := slices.Index(p.children, c); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	c.parent = nil
}

func (h *fakeHost) MoveChild(parent, child Handle, index int) {
	p, c := parent.(*fakeNode), child.(*fakeNode)
	i := slices.Index(p.children, c)
	if i < 0 || i == index {
		return
	}
	h.moved++
	p.children = slices.Delete(p.children, i, i+1)
	index = min(index, len(p.children))
	p.children = slices.Insert(p.children, index, c)
}

func (h *fakeHost) Elapsed() float64 { return h.elapsed }

func (h *fakeHost) SetVisualTransform(n Handle, offX, offY, sx, sy float64) {
	n.(*fakeNode).visual = [4]float64{offX, offY, sx, sy}
}

// emit delivers an event the way a host would, honouring BlockEvents.
func (n *fakeNode) emit(event string, args ...Value) bool {
	cb := n.events[event]
	if cb == nil || n.blocked {
		return false
	}
	cb.Call(args...)
	return true
}

func (n *fakeNode) names() []string {
	out := make([]string, len(n.children))
	for i, c := range n.children {
		out[i] = c.name
	}
	return out
}

// errorSink collects reported errors.
type errorSink struct {
	errs []error
}

func (s *errorSink) handle(err error) { s.errs = append(s.errs, err) }

func (s *errorSink) has(target error) bool {
	for _, err := range s.errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// newTestScheduler mounts build on a fresh root node.
func newTestScheduler(build func(UI)) (*Scheduler, *fakeHost, *fakeNode, UI, *errorSink) {
	h := newFakeHost()
	sink := &errorSink{}
	s := NewScheduler(h, WithErrorHandler(sink.handle))
	root := newFakeNode(Constructor("Root"))
	ui := s.Mount(root, build)
	return s, h, root, ui, sink
}
