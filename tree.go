package sapling

import (
	"fmt"
	"log/slog"
)

// proxyID addresses a proxy in its tree's arena. A released slot bumps its
// generation so stale ids stop resolving.
type proxyID struct {
	index uint32
	gen   uint32
}

var noProxy = proxyID{}

type slot struct {
	gen uint32
	p   *proxy
}

// childCollection holds the children of one type descriptor in declaration
// order.
type childCollection struct {
	idx      int // synthetic key counter, reset every pass
	keys     []string
	children map[string]proxyID
}

func (c *childCollection) insert(key string, id proxyID) {
	c.keys = append(c.keys, key)
	c.children[key] = id
}

func (c *childCollection) erase(key string) {
	delete(c.children, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			return
		}
	}
}

type signalBinding struct {
	target   *Callable
	pending  bool   // disconnect at post_update unless declared again
	declared uint64 // pass that last declared the binding
}

// proxy is the retained record of one host node.
type proxy struct {
	id     proxyID
	root   proxyID
	parent proxyID
	key    string
	typ    *NodeType
	node   Handle

	types     map[*NodeType]*childCollection
	typeOrder []*NodeType

	signals     map[string]*signalBinding
	signalOrder []string

	inside   bool
	deletion bool
	persist  bool
	repaint  bool
	building bool
	childIdx int

	prePass     uint64
	builtPass   uint64
	visitedPass uint64

	builder func(UI)
	motion  *Motion
	draw    *drawState
	smooth  *rectSmoothing
}

func (p *proxy) collection(t *NodeType) *childCollection {
	c, ok := p.types[t]
	if !ok {
		c = &childCollection{children: make(map[string]proxyID)}
		p.types[t] = c
		p.typeOrder = append(p.typeOrder, t)
	}
	return c
}

// tree owns every proxy reachable from one mounted root.
type tree struct {
	sched *Scheduler
	host  Host

	slots []slot
	free  []uint32
	root  proxyID

	pass   uint64
	inPass bool
	serial uint64
}

func newTree(s *Scheduler, node Handle, build func(UI)) *tree {
	t := &tree{sched: s, host: s.host}
	// Slot 0 is never handed out so the zero proxyID stays invalid.
	t.slots = append(t.slots, slot{gen: 1})
	p := t.alloc()
	p.root = p.id
	p.node = node
	p.key = "root"
	p.inside = true
	p.persist = true
	p.repaint = true
	p.builder = build
	t.root = p.id
	return t
}

func (t *tree) alloc() *proxy {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{gen: 1})
	}
	p := &proxy{
		id:      proxyID{index: idx, gen: t.slots[idx].gen},
		types:   make(map[*NodeType]*childCollection),
		signals: make(map[string]*signalBinding),
	}
	t.slots[idx].p = p
	return p
}

func (t *tree) release(id proxyID) {
	if t.get(id) == nil {
		return
	}
	s := &t.slots[id.index]
	s.p = nil
	s.gen++
	t.free = append(t.free, id.index)
}

func (t *tree) get(id proxyID) *proxy {
	if id.index == 0 || int(id.index) >= len(t.slots) {
		return nil
	}
	s := t.slots[id.index]
	if s.gen != id.gen {
		return nil
	}
	return s.p
}

// live returns the number of proxies currently allocated.
func (t *tree) live() int {
	return len(t.slots) - 1 - len(t.free)
}

func (t *tree) report(op string, p *proxy, err error) {
	key := ""
	if p != nil {
		key = p.key
	}
	t.sched.report(&OpError{Op: op, Key: key, Err: err})
}

func (t *tree) logger() *slog.Logger {
	return t.sched.logger
}

// nodeName returns a readable name for a freshly created node: the key
// when one was given, otherwise the type name and a serial.
func (t *tree) nodeName(typ *NodeType, key string, explicit bool) string {
	if explicit {
		return key
	}
	t.serial++
	return fmt.Sprintf("%s:%d", typ.Name(), t.serial)
}

// eachChild calls fn for every child of p in type-then-declaration order.
// fn may erase the current child.
func (t *tree) eachChild(p *proxy, fn func(c *childCollection, key string, child *proxy)) {
	for _, typ := range p.typeOrder {
		c := p.types[typ]
		keys := append([]string(nil), c.keys...)
		for _, key := range keys {
			if child := t.get(c.children[key]); child != nil {
				fn(c, key, child)
			}
		}
	}
}
