package sapling

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// syntheticPrefix starts every key assigned to an unkeyed child. Explicit
// keys may not use it.
const syntheticPrefix = "__sapling_id:"

// UI is a handle to one proxy. The zero UI is invalid and every method on
// it is a no-op. A UI whose proxy was freed reports ErrStaleProxy.
type UI struct {
	tree *tree
	id   proxyID
}

// AddOption configures a single Add call.
type AddOption func(*addOptions)

type addOptions struct {
	key     any
	hasKey  bool
	persist bool
}

// Key gives the child an explicit identity among siblings of the same type.
// Non-string keys are formatted with fmt.Sprint.
func Key(k any) AddOption {
	return func(o *addOptions) {
		o.key = k
		o.hasKey = true
	}
}

// Persist keeps the child's node cached, detached, when a pass omits it, so
// a later pass that declares it again reuses the same node.
func Persist() AddOption {
	return func(o *addOptions) { o.persist = true }
}

func (u UI) resolve(op string) (*tree, *proxy) {
	if u.tree == nil {
		return nil, nil
	}
	p := u.tree.get(u.id)
	if p == nil {
		u.tree.report(op, nil, ErrStaleProxy)
		return nil, nil
	}
	return u.tree, p
}

// writable resolves u and checks that its declaration window is open.
func (u UI) writable(op string) (*tree, *proxy) {
	t, p := u.resolve(op)
	if p == nil {
		return nil, nil
	}
	if !t.open(p) {
		t.report(op, p, ErrOutsidePass)
		return nil, nil
	}
	return t, p
}

// Valid reports whether u refers to a live proxy.
func (u UI) Valid() bool {
	return u.tree != nil && u.tree.get(u.id) != nil
}

// Ref returns the host node behind u, or nil.
func (u UI) Ref() Handle {
	if !u.Valid() {
		return nil
	}
	return u.tree.get(u.id).node
}

// Key returns the key u was declared with.
func (u UI) Key() string {
	if !u.Valid() {
		return ""
	}
	return u.tree.get(u.id).key
}

// Parent returns the parent proxy. The root has no parent.
func (u UI) Parent() UI {
	if !u.Valid() {
		return UI{}
	}
	p := u.tree.get(u.id)
	if u.tree.get(p.parent) == nil {
		return UI{}
	}
	return UI{tree: u.tree, id: p.parent}
}

// Root returns the proxy the tree was mounted on.
func (u UI) Root() UI {
	if !u.Valid() {
		return UI{}
	}
	return UI{tree: u.tree, id: u.tree.root}
}

// Add declares a child of type typ at the current position. A child with the
// same type and key as one from the previous pass is reused in place;
// otherwise a node is instantiated. Add is only legal while u is being
// declared.
func (u UI) Add(typ *NodeType, opts ...AddOption) UI {
	const op = "UI.Add"
	t, p := u.writable(op)
	if p == nil {
		return UI{}
	}
	if typ == nil {
		t.report(op, p, ErrInvalidChildType)
		return UI{}
	}

	var o addOptions
	for _, fn := range opts {
		fn(&o)
	}

	c := p.collection(typ)
	var key string
	if o.hasKey {
		key = fmt.Sprint(o.key)
		if strings.HasPrefix(key, syntheticPrefix) {
			t.report(op, p, fmt.Errorf("%w: %q", ErrReservedKey, key))
			return UI{}
		}
	} else {
		key = syntheticPrefix + strconv.Itoa(c.idx)
		c.idx++
	}

	child := t.get(c.children[key])
	if child == nil {
		node, err := t.host.Instantiate(typ)
		if err == nil && node == nil {
			err = ErrInvalidChildType
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidChildType) {
				err = fmt.Errorf("%w: %s: %v", ErrInvalidChildType, typ.Name(), err)
			}
			t.report(op, p, err)
			return UI{}
		}
		t.host.SetName(node, t.nodeName(typ, key, o.hasKey))

		child = t.alloc()
		child.root = p.root
		child.parent = p.id
		child.key = key
		child.typ = typ
		child.node = node
		c.insert(key, child.id)
		t.sched.stats.Created++
		t.sched.debugCheckTreeDepth(t, child)
	}

	if child.visitedPass == t.pass {
		t.report(op, p, fmt.Errorf("%w: %s %q", ErrDuplicateChild, typ.Name(), key))
		return UI{}
	}
	child.visitedPass = t.pass
	child.deletion = false
	child.persist = o.persist
	child.repaint = false

	if child.prePass != t.pass {
		t.preUpdate(child)
	}
	if !child.inside {
		t.host.AddChild(p.node, child.node)
		child.inside = true
	}
	t.host.MoveChild(p.node, child.node, p.childIdx)
	p.childIdx++

	return UI{tree: t, id: child.id}
}

// Show stores fn as u's builder and reconciles u's subtree with it now.
// Called inside a parent builder it runs within the parent's pass.
func (u UI) Show(fn func(UI)) UI {
	const op = "UI.Show"
	t, p := u.resolve(op)
	if p == nil {
		return u
	}
	if p.building || (t.inPass && p.builtPass == t.pass) {
		t.report(op, p, ErrReentrantUpdate)
		return u
	}
	if t.inPass && p.prePass != t.pass {
		t.report(op, p, ErrOutsidePass)
		return u
	}
	p.builder = fn
	p.repaint = true
	t.reconcile(p)
	return u
}

// Prop sets a property by path, writing only when the host value differs.
func (u UI) Prop(path string, v Value) UI {
	const op = "UI.Prop"
	t, p := u.writable(op)
	if p == nil {
		return u
	}
	t.setProp(op, p, path, v)
	return u
}

// Props sets several properties, in key order.
func (u UI) Props(values map[string]Value) UI {
	const op = "UI.Props"
	t, p := u.writable(op)
	if p == nil {
		return u
	}
	paths := make([]string, 0, len(values))
	for k := range values {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	for _, path := range paths {
		t.setProp(op, p, path, values[path])
	}
	return u
}

func (t *tree) setProp(op string, p *proxy, path string, v Value) {
	if cur, err := t.host.IndexedProperty(p.node, path); err == nil && cur == v {
		return
	}
	if err := t.host.SetIndexedProperty(p.node, path, v); err != nil {
		t.report(op, p, fmt.Errorf("%s: %w", path, err))
		return
	}
	t.sched.stats.PropWrites++
}

// Event declares that cb handles the named event this pass. Declaring the
// same callable again keeps the connection; a different callable replaces
// it; an event not declared this pass is disconnected at the end of it.
func (u UI) Event(name string, cb *Callable) UI {
	const op = "UI.Event"
	t, p := u.writable(op)
	if p == nil {
		return u
	}

	b, ok := p.signals[name]
	if !ok {
		b = &signalBinding{}
		p.signals[name] = b
		p.signalOrder = append(p.signalOrder, name)
	}
	if b.declared == t.pass {
		t.report(op, p, fmt.Errorf("%w: %s", ErrSignalAlreadyBound, name))
		return u
	}
	b.declared = t.pass

	if cb == nil {
		// Leaves a previous binding pending, so it is dropped at post.
		return u
	}
	if b.target != nil && b.target != cb {
		t.disconnect(p, name, b.target)
		b.target = nil
	}
	if b.target == nil {
		if err := t.connect(p, name, cb); err != nil {
			t.report(op, p, fmt.Errorf("%s: %w", name, err))
			b.pending = false
			return u
		}
		b.target = cb
	}
	b.pending = false
	return u
}

// Motion authors u's timeline. The timeline is created on first use and
// authored again every pass.
func (u UI) Motion(fn func(m *Motion)) UI {
	t, p := u.writable("UI.Motion")
	if p == nil {
		return u
	}
	if p.motion == nil {
		p.motion = NewMotion(t.host, p.node, t.sched.report)
		p.motion.key = p.key
	}
	fn(p.motion)
	return u
}

// QueueUpdate schedules u's subtree for reconciliation on the next logic
// tick.
func (u UI) QueueUpdate() {
	t, p := u.resolve("UI.QueueUpdate")
	if p == nil {
		return
	}
	if p.builder == nil {
		t.logger().Warn("queued update on a proxy without a builder", "key", p.key)
	}
	p.repaint = true
}

// RootQueueUpdate schedules the whole tree for reconciliation.
func (u UI) RootQueueUpdate() {
	t, p := u.resolve("UI.RootQueueUpdate")
	if p == nil {
		return
	}
	if root := t.get(p.root); root != nil {
		root.repaint = true
	}
}

// ClearChildren detaches and frees every child of u, cached ones included.
func (u UI) ClearChildren() {
	t, p := u.resolve("UI.ClearChildren")
	if p == nil {
		return
	}
	if p.building {
		t.report("UI.ClearChildren", p, ErrReentrantUpdate)
		return
	}
	t.clearChildren(p)
}
