package sapling

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindNil    Kind = iota // no value
	KindBool               // true/false, not interpolable
	KindFloat              // single float64
	KindVec2               // 2D vector (X, Y)
	KindColor              // RGBA color, components in [0, 1]
	KindRect               // rectangle (X, Y, Width, Height)
	KindString             // text, not interpolable
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindColor:
		return "color"
	case KindRect:
		return "rect"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the closed set of property values exchanged with the host and
// animated by a Motion. The zero Value is nil. Values are comparable with ==.
type Value struct {
	kind Kind
	n    [4]float64
	s    string
}

// Nil is the empty value.
var Nil = Value{}

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.n[0] = 1
	}
	return v
}

// Float returns a scalar value.
func Float(f float64) Value {
	return Value{kind: KindFloat, n: [4]float64{f}}
}

// Vec2 returns a 2D vector value.
func Vec2(x, y float64) Value {
	return Value{kind: KindVec2, n: [4]float64{x, y}}
}

// Color returns an RGBA color value. Components are not premultiplied.
func Color(r, g, b, a float64) Value {
	return Value{kind: KindColor, n: [4]float64{r, g, b, a}}
}

// Rect returns a rectangle value.
func Rect(x, y, w, h float64) Value {
	return Value{kind: KindRect, n: [4]float64{x, y, w, h}}
}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Kind reports the concrete kind held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v holds no value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean held by v, or false for other kinds.
func (v Value) AsBool() bool { return v.kind == KindBool && v.n[0] != 0 }

// AsFloat returns the scalar held by v, or 0 for other kinds.
func (v Value) AsFloat() float64 {
	if v.kind != KindFloat {
		return 0
	}
	return v.n[0]
}

// AsVec2 returns the components of a Vec2 value.
func (v Value) AsVec2() (x, y float64) {
	if v.kind != KindVec2 {
		return 0, 0
	}
	return v.n[0], v.n[1]
}

// AsColor returns the components of a Color value.
func (v Value) AsColor() (r, g, b, a float64) {
	if v.kind != KindColor {
		return 0, 0, 0, 0
	}
	return v.n[0], v.n[1], v.n[2], v.n[3]
}

// AsRect returns the components of a Rect value.
func (v Value) AsRect() (x, y, w, h float64) {
	if v.kind != KindRect {
		return 0, 0, 0, 0
	}
	return v.n[0], v.n[1], v.n[2], v.n[3]
}

// AsString returns the text held by v, or "" for other kinds.
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// width returns how many numeric components an arithmetic kind uses.
func (k Kind) width() int {
	switch k {
	case KindFloat:
		return 1
	case KindVec2:
		return 2
	case KindColor, KindRect:
		return 4
	default:
		return 0
	}
}

// Add returns v + o. Both values must share an arithmetic kind.
func (v Value) Add(o Value) (Value, error) {
	if err := checkArith("add", v, o); err != nil {
		return Nil, err
	}
	r := Value{kind: v.kind}
	for i := 0; i < v.kind.width(); i++ {
		r.n[i] = v.n[i] + o.n[i]
	}
	return r, nil
}

// Sub returns v - o. Both values must share an arithmetic kind.
func (v Value) Sub(o Value) (Value, error) {
	if err := checkArith("subtract", v, o); err != nil {
		return Nil, err
	}
	r := Value{kind: v.kind}
	for i := 0; i < v.kind.width(); i++ {
		r.n[i] = v.n[i] - o.n[i]
	}
	return r, nil
}

// Scale returns v * f.
func (v Value) Scale(f float64) (Value, error) {
	if v.kind.width() == 0 {
		return Nil, fmt.Errorf("%w: cannot scale %s", ErrUnsupportedInterpolation, v.kind)
	}
	r := Value{kind: v.kind}
	for i := 0; i < v.kind.width(); i++ {
		r.n[i] = v.n[i] * f
	}
	return r, nil
}

func checkArith(op string, a, b Value) error {
	if a.kind != b.kind || a.kind.width() == 0 {
		return fmt.Errorf("%w: cannot %s %s and %s", ErrUnsupportedInterpolation, op, a.kind, b.kind)
	}
	return nil
}

// ApproxEqual reports whether v and o are the same kind and every numeric
// component differs by at most eps. Non-numeric kinds compare exactly.
func (v Value) ApproxEqual(o Value, eps float64) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind.width() == 0 {
		return v == o
	}
	for i := 0; i < v.kind.width(); i++ {
		if math.Abs(v.n[i]-o.n[i]) > eps {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "<nil>"
	case KindBool:
		return fmt.Sprint(v.AsBool())
	case KindFloat:
		return fmt.Sprint(v.n[0])
	case KindVec2:
		return fmt.Sprintf("(%g, %g)", v.n[0], v.n[1])
	case KindColor:
		return fmt.Sprintf("rgba(%g, %g, %g, %g)", v.n[0], v.n[1], v.n[2], v.n[3])
	case KindRect:
		return fmt.Sprintf("rect(%g, %g, %g, %g)", v.n[0], v.n[1], v.n[2], v.n[3])
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return v.kind.String()
	}
}

// interpolate evaluates the transition from start to end after elapsed
// seconds of a keyframe lasting duration seconds.
func interpolate(start, end Value, kind Ease, strength, elapsed, duration float64, custom ease.TweenFunc) (Value, error) {
	if start.kind == KindNil {
		// Unknown start value: hold the target.
		start = end
	}
	var p float64
	if duration == 0 {
		if elapsed < 0 {
			p = 0
		} else {
			p = 1
		}
	} else {
		p = elapsed / duration
	}
	var t float64
	if kind == EaseCustom && custom != nil {
		t = evalCustom(custom, p)
	} else {
		t = EvalTime(kind, p, strength)
	}
	delta, err := end.Sub(start)
	if err != nil {
		return Nil, err
	}
	step, err := delta.Scale(t)
	if err != nil {
		return Nil, err
	}
	return start.Add(step)
}
