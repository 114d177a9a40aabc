package sapling

import "fmt"

type side uint8

const (
	sideLeft side = 1 << iota
	sideTop
	sideRight
	sideBottom

	sideAll = sideLeft | sideTop | sideRight | sideBottom
)

// FullRect anchors the node to all four edges of its parent with no offset.
func (u UI) FullRect() UI {
	return u.Props(map[string]Value{
		"anchor_left":   Float(0),
		"anchor_top":    Float(0),
		"anchor_right":  Float(1),
		"anchor_bottom": Float(1),
		"offset_left":   Float(0),
		"offset_top":    Float(0),
		"offset_right":  Float(0),
		"offset_bottom": Float(0),
	})
}

// Margin insets every edge. m is a Unit, a number of pixels, or a string
// such as "8px" or "10%".
func (u UI) Margin(m any) UI { return u.margin("UI.Margin", m, sideAll) }

// LeftMargin insets the left edge.
func (u UI) LeftMargin(m any) UI { return u.margin("UI.LeftMargin", m, sideLeft) }

// TopMargin insets the top edge.
func (u UI) TopMargin(m any) UI { return u.margin("UI.TopMargin", m, sideTop) }

// RightMargin insets the right edge.
func (u UI) RightMargin(m any) UI { return u.margin("UI.RightMargin", m, sideRight) }

// BottomMargin insets the bottom edge.
func (u UI) BottomMargin(m any) UI { return u.margin("UI.BottomMargin", m, sideBottom) }

// HorizontalMargin insets the left and right edges.
func (u UI) HorizontalMargin(m any) UI { return u.margin("UI.HorizontalMargin", m, sideLeft|sideRight) }

// VerticalMargin insets the top and bottom edges.
func (u UI) VerticalMargin(m any) UI { return u.margin("UI.VerticalMargin", m, sideTop|sideBottom) }

func (u UI) margin(op string, m any, sides side) UI {
	t, p := u.writable(op)
	if p == nil {
		return u
	}
	unit, err := toUnit(m)
	if err != nil {
		t.report(op, p, fmt.Errorf("%v: %w", m, err))
		return u
	}

	edge := func(s side, name string, far bool) {
		if sides&s == 0 {
			return
		}
		var anchor, offset float64
		switch unit.Type {
		case UnitPixels:
			offset = unit.Value
			if far {
				anchor, offset = 1, -unit.Value
			}
		case UnitPercentage:
			anchor = unit.Value
			if far {
				anchor = 1 - unit.Value
			}
		}
		t.setProp(op, p, "anchor_"+name, Float(anchor))
		t.setProp(op, p, "offset_"+name, Float(offset))
	}
	edge(sideLeft, "left", false)
	edge(sideTop, "top", false)
	edge(sideRight, "right", true)
	edge(sideBottom, "bottom", true)
	return u
}
