package sapling

import "time"

// begin opens a pass unless one is already running. It reports whether the
// caller owns the pass and must end it.
func (t *tree) begin() bool {
	if t.inPass {
		return false
	}
	t.inPass = true
	t.pass++
	t.sched.stats.Passes++
	return true
}

func (t *tree) end() {
	t.inPass = false
}

// open reports whether p may be re-declared: its subtree was marked during
// the running pass.
func (t *tree) open(p *proxy) bool {
	return t.inPass && p.prePass == t.pass
}

// checkUpdate reconciles the topmost proxies that requested a repaint.
func (t *tree) checkUpdate(p *proxy) {
	if p.repaint {
		t.reconcile(p)
		return
	}
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if child.inside {
			t.checkUpdate(child)
		}
	})
}

// reconcile runs pre_update, ui_process and post_update over p's subtree.
func (t *tree) reconcile(p *proxy) {
	owner := t.begin()
	if p.prePass != t.pass {
		t.preUpdate(p)
	}
	t.process(p)
	t.postUpdate(p)
	if owner {
		t.end()
	}
}

// preUpdate marks every attached child for deletion and every bound signal
// for disconnection, depth first, and resets the authoring state.
func (t *tree) preUpdate(p *proxy) {
	p.prePass = t.pass
	for _, typ := range p.typeOrder {
		p.types[typ].idx = 0
	}
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if !child.inside {
			return
		}
		child.deletion = true
		t.preUpdate(child)
	})
	for _, name := range p.signalOrder {
		if b := p.signals[name]; b.target != nil {
			b.pending = true
		}
	}
	if p.motion != nil {
		p.motion.clear()
	}
	t.host.BlockEvents(p.node, true)
	p.childIdx = 0
}

// process runs p's builder, then the stored builders of visited children
// that were not rebuilt by it.
func (t *tree) process(p *proxy) {
	p.repaint = false
	p.builtPass = t.pass
	if p.builder != nil {
		p.building = true
		t.safeBuild(p)
		p.building = false
	}
	t.rebuildChildren(p)
}

func (t *tree) rebuildChildren(p *proxy) {
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if child.visitedPass != t.pass || child.builtPass == t.pass {
			return
		}
		if child.builder != nil {
			t.process(child)
			return
		}
		child.builtPass = t.pass
		t.rebuildChildren(child)
	})
}

func (t *tree) safeBuild(p *proxy) {
	defer func() {
		if r := recover(); r != nil {
			t.sched.report(&BuildError{
				Key:        p.key,
				Recovered:  r,
				StackTrace: captureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	p.builder(UI{tree: t, id: p.id})
}

// postUpdate removes children that were not declared again, drops bindings
// that were not declared again and resumes event delivery.
func (t *tree) postUpdate(p *proxy) {
	t.eachChild(p, func(c *childCollection, key string, child *proxy) {
		if child.deletion && child.persist {
			t.retain(child)
		}
		if child.prePass == t.pass {
			t.postUpdate(child)
		}
		if !child.deletion {
			return
		}
		t.remove(p, child)
		if !child.persist {
			t.del(child)
			c.erase(key)
		}
	})

	kept := p.signalOrder[:0]
	for _, name := range p.signalOrder {
		b := p.signals[name]
		if b.pending {
			if b.target != nil {
				t.disconnect(p, name, b.target)
			}
			delete(p.signals, name)
			continue
		}
		kept = append(kept, name)
	}
	p.signalOrder = kept

	t.host.BlockEvents(p.node, false)
}

// retain clears the marks preUpdate left below a persistent child that is
// being detached, so the cached node keeps its subtree and bindings.
func (t *tree) retain(p *proxy) {
	for _, b := range p.signals {
		b.pending = false
	}
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if child.inside {
			child.deletion = false
			t.retain(child)
		}
	})
}

// remove detaches child from the host tree and unbinds everything it bound.
// The proxy and its node stay alive.
func (t *tree) remove(parent, child *proxy) {
	t.host.RemoveChild(parent.node, child.node)
	t.sched.stats.Removed++

	for _, name := range child.signalOrder {
		if b := child.signals[name]; b.target != nil {
			t.disconnect(child, name, b.target)
		}
	}
	clear(child.signals)
	child.signalOrder = child.signalOrder[:0]

	if child.motion != nil {
		child.motion.clear()
		child.motion.Reset()
	}
	if child.smooth != nil {
		child.smooth.primed = false
	}

	child.inside = false
	child.deletion = false
}

// del frees child's subtree, host nodes included, and releases the proxies.
func (t *tree) del(child *proxy) {
	t.eachChild(child, func(c *childCollection, key string, gc *proxy) {
		t.del(gc)
		c.erase(key)
	})
	t.host.Free(child.node)
	t.sched.stats.Freed++
	child.node = nil
	t.release(child.id)
}

// clearChildren detaches and frees every child of p, cached ones included.
func (t *tree) clearChildren(p *proxy) {
	t.eachChild(p, func(c *childCollection, key string, child *proxy) {
		if child.inside {
			t.host.RemoveChild(p.node, child.node)
			child.inside = false
		}
		t.del(child)
		c.erase(key)
	})
}

func (t *tree) connect(p *proxy, name string, cb *Callable) error {
	if err := t.host.Connect(p.node, name, cb); err != nil {
		return err
	}
	t.sched.stats.Connects++
	return nil
}

func (t *tree) disconnect(p *proxy, name string, cb *Callable) {
	if err := t.host.Disconnect(p.node, name, cb); err != nil {
		t.report("UI.Event", p, err)
		return
	}
	t.sched.stats.Disconnects++
}

// idle advances motion timelines depth first.
func (t *tree) idle(p *proxy, dt float64) {
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if child.inside {
			t.idle(child, dt)
		}
	})
	if p.inside && p.motion != nil {
		p.motion.Advance(dt)
	}
}
