package scene

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/sapling"
)

// Debug-font metrics used to size labels.
const (
	glyphWidth  = 6
	glyphHeight = 16
)

// HitShape is used for custom hit testing regions, in local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// nodeIDCounter is a plain counter; scenes are single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// visualTransform is applied on top of layout for drawing only.
type visualTransform struct {
	offsetX, offsetY float64
	scaleX, scaleY   float64
}

var identityVisual = visualTransform{scaleX: 1, scaleY: 1}

// Node is the scene graph element. A single flat struct is used for all
// kinds.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Kind Kind

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y          float64
	Width, Height float64
	ScaleX        float64
	ScaleY        float64
	Rotation      float64
	PivotX        float64
	PivotY        float64

	// Anchored layout. When Anchored is set, X, Y, Width and Height are
	// derived every frame from the parent's size: each edge sits at
	// anchor*parentSize + offset. Anchors and offsets are ordered left, top,
	// right, bottom.
	Anchored bool
	Anchors  [4]float64
	Offsets  [4]float64

	visual visualTransform

	// Computed during traversal
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	// Appearance
	Color     Color
	Text      string
	TextColor Color

	// Metadata
	UserData any
	EntityID uint32

	// Hit testing
	HitShape HitShape

	// Rendered text, redrawn when Text changes.
	textImage *ebiten.Image
	textDrawn string

	// Custom properties set through the host boundary.
	custom map[string]sapling.Value

	// Named event handlers
	handlers map[string][]*sapling.Callable
	blocked  bool

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.TextColor = ColorWhite
	n.Visible = true
	n.visual = identityVisual
	n.transformDirty = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Kind: KindContainer}
	nodeDefaults(n)
	return n
}

// NewPanel creates a solid color rectangle.
func NewPanel(name string, w, h float64, c Color) *Node {
	n := &Node{Name: name, Kind: KindPanel, Width: w, Height: h}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewLabel creates a text node sized to its content.
func NewLabel(name, text string) *Node {
	n := &Node{Name: name, Kind: KindLabel}
	nodeDefaults(n)
	n.SetText(text)
	return n
}

// NewButton creates an interactable panel with a centered caption. Buttons
// emit "pressed" when clicked.
func NewButton(name, text string, w, h float64) *Node {
	n := &Node{Name: name, Kind: KindButton, Width: w, Height: h, Text: text}
	nodeDefaults(n)
	n.Color = Color{0.25, 0.25, 0.3, 1}
	n.Interactable = true
	return n
}

// SetText sets the node's text. Labels are resized to fit it.
func (n *Node) SetText(s string) {
	n.Text = s
	if n.Kind == KindLabel && !n.Anchored {
		n.Width, n.Height = textSize(s)
	}
}

func textSize(s string) (w, h float64) {
	if s == "" {
		return 0, 0
	}
	lines, longest, cur := 1, 0, 0
	for _, r := range s {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float64(longest * glyphWidth), float64(lines * glyphHeight)
}

// Clone returns a deep copy of n and its subtree with fresh IDs. Event
// handlers are not copied.
func (n *Node) Clone() *Node {
	c := *n
	c.ID = nextNodeID()
	c.Parent = nil
	c.children = nil
	c.handlers = nil
	c.blocked = false
	c.transformDirty = true
	c.textImage = nil
	c.textDrawn = ""
	if n.custom != nil {
		c.custom = make(map[string]sapling.Value, len(n.custom))
		for k, v := range n.custom {
			c.custom[k] = v
		}
	}
	for _, child := range n.children {
		c.AddChild(child.Clone())
	}
	return &c
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("scene: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("scene: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings. An index past
// the end moves it last.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("scene: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 {
		panic("scene: child index out of range")
	}
	index = min(index, nc-1)
	oldIndex := -1
	for i, c := range n.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

// Find returns the first node named name in n's subtree, n included.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.HitShape = nil
	n.UserData = nil
	n.custom = nil
	n.handlers = nil
	if n.textImage != nil {
		n.textImage.Deallocate()
		n.textImage = nil
	}
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
