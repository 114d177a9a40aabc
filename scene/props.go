package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phanxgames/sapling"
)

var (
	// ErrUnknownProperty is returned when reading a property a node does not have.
	ErrUnknownProperty = errors.New("scene: unknown property")
	// ErrPropertyType is returned when a value has the wrong kind for a property.
	ErrPropertyType = errors.New("scene: wrong value kind for property")
	// ErrReadOnly is returned when writing a computed property.
	ErrReadOnly = errors.New("scene: property is read-only")
)

type property struct {
	kind sapling.Kind
	get  func(n *Node) sapling.Value
	set  func(n *Node, v sapling.Value) // nil for read-only properties
}

func vec2Prop(x, y func(n *Node) *float64, dirty bool) property {
	return property{
		kind: sapling.KindVec2,
		get:  func(n *Node) sapling.Value { return sapling.Vec2(*x(n), *y(n)) },
		set: func(n *Node, v sapling.Value) {
			*x(n), *y(n) = v.AsVec2()
			if dirty {
				n.transformDirty = true
			}
		},
	}
}

func floatProp(f func(n *Node) *float64, dirty bool) property {
	return property{
		kind: sapling.KindFloat,
		get:  func(n *Node) sapling.Value { return sapling.Float(*f(n)) },
		set: func(n *Node, v sapling.Value) {
			*f(n) = v.AsFloat()
			if dirty {
				n.transformDirty = true
			}
		},
	}
}

func colorProp(f func(n *Node) *Color) property {
	return property{
		kind: sapling.KindColor,
		get: func(n *Node) sapling.Value {
			c := f(n)
			return sapling.Color(c.R, c.G, c.B, c.A)
		},
		set: func(n *Node, v sapling.Value) {
			c := f(n)
			c.R, c.G, c.B, c.A = v.AsColor()
		},
	}
}

func boolProp(f func(n *Node) *bool) property {
	return property{
		kind: sapling.KindBool,
		get:  func(n *Node) sapling.Value { return sapling.Bool(*f(n)) },
		set:  func(n *Node, v sapling.Value) { *f(n) = v.AsBool() },
	}
}

func edgeProp(f func(n *Node) *float64) property {
	p := floatProp(f, true)
	set := p.set
	p.set = func(n *Node, v sapling.Value) {
		if !n.Anchored {
			// Start from the node's current rect so unset edges keep it.
			n.Anchored = true
			n.Anchors = [4]float64{}
			n.Offsets = [4]float64{n.X, n.Y, n.X + n.Width, n.Y + n.Height}
		}
		set(n, v)
	}
	return p
}

var properties = map[string]property{
	"position": vec2Prop(func(n *Node) *float64 { return &n.X }, func(n *Node) *float64 { return &n.Y }, true),
	"size":     vec2Prop(func(n *Node) *float64 { return &n.Width }, func(n *Node) *float64 { return &n.Height }, true),
	"scale":    vec2Prop(func(n *Node) *float64 { return &n.ScaleX }, func(n *Node) *float64 { return &n.ScaleY }, true),
	"pivot":    vec2Prop(func(n *Node) *float64 { return &n.PivotX }, func(n *Node) *float64 { return &n.PivotY }, true),
	"rotation": floatProp(func(n *Node) *float64 { return &n.Rotation }, true),
	"alpha":    floatProp(func(n *Node) *float64 { return &n.Alpha }, true),

	"color":      colorProp(func(n *Node) *Color { return &n.Color }),
	"text_color": colorProp(func(n *Node) *Color { return &n.TextColor }),

	"visible":      boolProp(func(n *Node) *bool { return &n.Visible }),
	"interactable": boolProp(func(n *Node) *bool { return &n.Interactable }),

	"text": {
		kind: sapling.KindString,
		get:  func(n *Node) sapling.Value { return sapling.String(n.Text) },
		set:  func(n *Node, v sapling.Value) { n.SetText(v.AsString()) },
	},
	"rect": {
		kind: sapling.KindRect,
		get: func(n *Node) sapling.Value {
			return sapling.Rect(n.X, n.Y, n.Width, n.Height)
		},
	},

	"anchor_left":   edgeProp(func(n *Node) *float64 { return &n.Anchors[0] }),
	"anchor_top":    edgeProp(func(n *Node) *float64 { return &n.Anchors[1] }),
	"anchor_right":  edgeProp(func(n *Node) *float64 { return &n.Anchors[2] }),
	"anchor_bottom": edgeProp(func(n *Node) *float64 { return &n.Anchors[3] }),
	"offset_left":   edgeProp(func(n *Node) *float64 { return &n.Offsets[0] }),
	"offset_top":    edgeProp(func(n *Node) *float64 { return &n.Offsets[1] }),
	"offset_right":  edgeProp(func(n *Node) *float64 { return &n.Offsets[2] }),
	"offset_bottom": edgeProp(func(n *Node) *float64 { return &n.Offsets[3] }),
}

// Get reads a property by name. Names without a built-in meaning read
// values previously stored with Set.
func (n *Node) Get(name string) (sapling.Value, error) {
	if p, ok := properties[name]; ok {
		return p.get(n), nil
	}
	if v, ok := n.custom[name]; ok {
		return v, nil
	}
	return sapling.Nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
}

// Set writes a property by name. Names without a built-in meaning are
// stored as custom properties of any kind.
func (n *Node) Set(name string, v sapling.Value) error {
	p, ok := properties[name]
	if !ok {
		if n.custom == nil {
			n.custom = make(map[string]sapling.Value)
		}
		n.custom[name] = v
		return nil
	}
	if p.set == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	if v.Kind() != p.kind {
		return fmt.Errorf("%w: %s wants %s, got %s", ErrPropertyType, name, p.kind, v.Kind())
	}
	p.set(n, v)
	return nil
}

// components lists the sub-path names of each composite kind.
var components = map[sapling.Kind][]string{
	sapling.KindVec2:  {"x", "y"},
	sapling.KindColor: {"r", "g", "b", "a"},
	sapling.KindRect:  {"x", "y", "w", "h"},
}

func component(k sapling.Kind, sub string) int {
	for i, c := range components[k] {
		if c == sub {
			return i
		}
	}
	return -1
}

func unpack(v sapling.Value) [4]float64 {
	switch v.Kind() {
	case sapling.KindVec2:
		x, y := v.AsVec2()
		return [4]float64{x, y}
	case sapling.KindColor:
		r, g, b, a := v.AsColor()
		return [4]float64{r, g, b, a}
	case sapling.KindRect:
		x, y, w, h := v.AsRect()
		return [4]float64{x, y, w, h}
	}
	return [4]float64{}
}

func pack(k sapling.Kind, c [4]float64) sapling.Value {
	switch k {
	case sapling.KindVec2:
		return sapling.Vec2(c[0], c[1])
	case sapling.KindColor:
		return sapling.Color(c[0], c[1], c[2], c[3])
	case sapling.KindRect:
		return sapling.Rect(c[0], c[1], c[2], c[3])
	}
	return sapling.Nil
}

// GetPath reads a property by path. "position:x" reads one component of a
// composite property; a path without ':' is a plain name.
func (n *Node) GetPath(path string) (sapling.Value, error) {
	name, sub, ok := strings.Cut(path, ":")
	if !ok {
		return n.Get(path)
	}
	v, err := n.Get(name)
	if err != nil {
		return sapling.Nil, err
	}
	i := component(v.Kind(), sub)
	if i < 0 {
		return sapling.Nil, fmt.Errorf("%w: %s", ErrUnknownProperty, path)
	}
	return sapling.Float(unpack(v)[i]), nil
}

// SetPath writes a property by path. Writing a component requires a Float.
func (n *Node) SetPath(path string, v sapling.Value) error {
	name, sub, ok := strings.Cut(path, ":")
	if !ok {
		return n.Set(path, v)
	}
	cur, err := n.Get(name)
	if err != nil {
		return err
	}
	i := component(cur.Kind(), sub)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, path)
	}
	if v.Kind() != sapling.KindFloat {
		return fmt.Errorf("%w: %s wants float, got %s", ErrPropertyType, path, v.Kind())
	}
	c := unpack(cur)
	c[i] = v.AsFloat()
	return n.Set(name, pack(cur.Kind(), c))
}
