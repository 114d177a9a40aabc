package scene

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/sapling"
)

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	hoverNode *Node // last node the pointer was over, for enter/leave
	dragging  bool
	button    MouseButton // button captured at press time
}

// CapturePointer routes all events for pointerID to the given node.
func (s *Scene) CapturePointer(pointerID int, node *Node) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = node
	}
}

// ReleasePointer stops routing events for pointerID to a captured node.
func (s *Scene) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set, otherwise the node's size.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable walks the tree in painter order, appending
// interactable nodes to buf. Invisible subtrees are skipped; a
// non-interactable parent does not hide interactable children.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || n.disposed {
		return buf
	}
	if n.Interactable {
		buf = append(buf, n)
	}
	for _, child := range n.children {
		buf = collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (x, y), or nil.
func (s *Scene) hitTest(x, y float64) *Node {
	s.hitBuf = collectInteractable(s.root, s.hitBuf[:0])
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		lx, ly := n.WorldToLocal(x, y)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Scene.Update with world transforms fresh.
// Injected events replace real mouse input for the frame they are consumed.
func (s *Scene) processInput() {
	if s.headless {
		s.processInjectedInput(0)
		return
	}
	mods := readModifiers()
	if !s.processInjectedInput(mods) {
		s.processMousePointer(mods)
	}
	s.processTouchPointers(mods)
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	s.processPointer(0, float64(mx), float64(my), pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps a touch to a pointer slot (1-9), allocating one if needed.
// Returns -1 if all slots are taken.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Scene) processPointer(pointerID int, wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointers[pointerID]

	target := s.captured[pointerID]
	if target == nil {
		target = s.hitTest(wx, wy)
	}

	if target != ps.hoverNode {
		if ps.hoverNode != nil {
			s.fire(EventPointerLeave, ps.hoverNode, wx, wy, button, mods, nil)
		}
		if target != nil {
			s.fire(EventPointerEnter, target, wx, wy, button, mods, nil)
		}
		ps.hoverNode = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitNode = target
		ps.dragging = false
		s.fire(EventPointerDown, target, wx, wy, ps.button, mods, nil)

	case !pressed && ps.down:
		if ps.dragging {
			s.fire(EventDragEnd, ps.hitNode, wx, wy, ps.button, mods, &dragInfo{
				startX: ps.startX, startY: ps.startY,
				deltaX: wx - ps.lastX, deltaY: wy - ps.lastY,
			})
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.fire(EventClick, target, wx, wy, ps.button, mods, nil)
		}
		s.fire(EventPointerUp, target, wx, wy, ps.button, mods, nil)

		s.captured[pointerID] = nil
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false

	case pressed && ps.down:
		if wx != ps.lastX || wy != ps.lastY {
			if !ps.dragging {
				dx := wx - ps.startX
				dy := wy - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.fire(EventDragStart, ps.hitNode, wx, wy, ps.button, mods, &dragInfo{
						startX: ps.startX, startY: ps.startY,
						deltaX: dx, deltaY: dy,
					})
				}
			}
			if ps.dragging {
				s.fire(EventDrag, ps.hitNode, wx, wy, ps.button, mods, &dragInfo{
					startX: ps.startX, startY: ps.startY,
					deltaX: wx - ps.lastX, deltaY: wy - ps.lastY,
				})
			}
		}
		ps.lastX, ps.lastY = wx, wy

	default:
		if wx != ps.lastX || wy != ps.lastY {
			s.fire(EventPointerMove, target, wx, wy, button, mods, nil)
			ps.lastX, ps.lastY = wx, wy
		}
	}
}

type dragInfo struct {
	startX, startY float64
	deltaX, deltaY float64
}

// fire delivers an interaction to the node's connected callbacks and to the
// entity store. Click emits "pressed" with no arguments. Other events pass
// the local position as a Vec2; drag events add the frame delta as a second
// Vec2.
func (s *Scene) fire(evt EventType, node *Node, wx, wy float64, button MouseButton, mods KeyModifiers, drag *dragInfo) {
	if node == nil {
		return
	}
	lx, ly := node.WorldToLocal(wx, wy)

	switch {
	case evt == EventClick:
		node.Emit(evt.Name())
	case drag != nil:
		node.Emit(evt.Name(), sapling.Vec2(lx, ly), sapling.Vec2(drag.deltaX, drag.deltaY))
	default:
		node.Emit(evt.Name(), sapling.Vec2(lx, ly))
	}

	if s.store == nil {
		return
	}
	ie := InteractionEvent{
		Type:      evt,
		EntityID:  node.EntityID,
		NodeName:  node.Name,
		GlobalX:   wx,
		GlobalY:   wy,
		LocalX:    lx,
		LocalY:    ly,
		Button:    button,
		Modifiers: mods,
	}
	if drag != nil {
		ie.StartX, ie.StartY = drag.startX, drag.startY
		ie.DeltaX, ie.DeltaY = drag.deltaX, drag.deltaY
	}
	s.store.EmitEvent(ie)
}
