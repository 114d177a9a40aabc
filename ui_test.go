package sapling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Reconciliation ---

func TestMountBuildsOnFirstLogicTick(t *testing.T) {
	calls := 0
	s, h, root, _, sink := newTestScheduler(func(ui UI) {
		calls++
		ui.Add(typeA)
		ui.Add(typeB)
		ui.Add(typeB, Key("title"))
	})
	assert.Equal(t, 0, calls, "builder must not run before the first tick")

	s.OnLogicTick()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, h.instantiated)
	assert.Equal(t, []string{"A:1", "B:2", "title"}, root.names())
	assert.Empty(t, sink.errs)

	s.OnLogicTick()
	assert.Equal(t, 1, calls, "builder reruns only after a queued update")
}

func TestReconcileIsIdempotent(t *testing.T) {
	inc := Func(func(...Value) {})
	s, h, _, ui, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Prop("text", String("hello")).Event("pressed", inc)
		ui.Add(typeB, Key("b")).Prop("position:x", Float(4))
		ui.Add(typeA)
	})
	s.OnLogicTick()
	before := *h

	ui.QueueUpdate()
	s.OnLogicTick()

	assert.Equal(t, before.instantiated, h.instantiated, "instantiated")
	assert.Equal(t, before.freed, h.freed, "freed")
	assert.Equal(t, before.added, h.added, "added")
	assert.Equal(t, before.removed, h.removed, "removed")
	assert.Equal(t, before.moved, h.moved, "moved")
	assert.Equal(t, before.writes, h.writes, "property writes")
	assert.Equal(t, before.connects, h.connects, "connects")
	assert.Equal(t, before.disconnects, h.disconnects, "disconnects")
	assert.Empty(t, sink.errs)
}

func TestKeyedRemovalAndPersistReuse(t *testing.T) {
	keys := []string{"x"}
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		for _, k := range keys {
			ui.Add(typeA, Key(k), Persist())
		}
	})
	s.OnLogicTick()
	require.Len(t, root.children, 1)
	x := root.children[0]

	keys = []string{"y"}
	ui.QueueUpdate()
	s.OnLogicTick()
	require.Len(t, root.children, 1)
	assert.NotSame(t, x, root.children[0])
	assert.Equal(t, 2, h.instantiated)
	assert.Equal(t, 1, h.removed)
	assert.Equal(t, 0, h.freed, "persistent child must stay cached")
	assert.Nil(t, x.parent)

	keys = []string{"x"}
	ui.QueueUpdate()
	s.OnLogicTick()
	require.Len(t, root.children, 1)
	assert.Same(t, x, root.children[0], "cached node must be reused")
	assert.Equal(t, 2, h.instantiated)
	assert.Empty(t, sink.errs)
}

func TestPersistentChildKeepsSubtree(t *testing.T) {
	show := true
	pressed := Func(func(...Value) {})
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		if show {
			ui.Add(typeA, Key("x"), Persist()).Show(func(ui UI) {
				ui.Add(typeB, Key("y")).Event("pressed", pressed)
			})
		}
	})
	s.OnLogicTick()
	require.Len(t, root.children, 1)
	x := root.children[0]
	require.Len(t, x.children, 1)
	y := x.children[0]
	require.Equal(t, 2, h.instantiated)

	show = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Empty(t, root.children)
	assert.Equal(t, 0, h.freed)
	require.Len(t, x.children, 1, "cached child keeps its own children")
	assert.Same(t, y, x.children[0])
	assert.Same(t, pressed, y.events["pressed"])

	show = true
	ui.QueueUpdate()
	s.OnLogicTick()
	require.Len(t, root.children, 1)
	assert.Same(t, x, root.children[0])
	require.Len(t, x.children, 1)
	assert.Same(t, y, x.children[0])
	assert.Equal(t, 2, h.instantiated, "re-added subtree is reused")
	assert.Equal(t, 0, h.freed)
	assert.Equal(t, 1, h.connects)
	assert.Equal(t, 0, h.disconnects)
	assert.Empty(t, sink.errs)
}

func TestUnvisitedChildIsFreed(t *testing.T) {
	show := true
	var child UI
	s, h, root, ui, _ := newTestScheduler(func(ui UI) {
		if show {
			child = ui.Add(typeA, Key(7))
		}
	})
	s.OnLogicTick()
	require.True(t, child.Valid())
	assert.Equal(t, "7", child.Key())
	node := child.Ref().(*fakeNode)

	show = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Empty(t, root.children)
	assert.True(t, node.freed)
	assert.Equal(t, 1, h.freed)
	assert.False(t, child.Valid())
	assert.Equal(t, 1, s.Live(), "only the root proxy is left")
}

func TestNestedChildrenFreedWithParent(t *testing.T) {
	show := true
	s, h, _, ui, _ := newTestScheduler(func(ui UI) {
		if !show {
			return
		}
		ui.Add(typeA).Show(func(ui UI) {
			ui.Add(typeB)
			ui.Add(typeB)
		})
	})
	s.OnLogicTick()
	assert.Equal(t, 3, h.instantiated)
	assert.Equal(t, 4, s.Live())

	show = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 3, h.freed)
	assert.Equal(t, 1, s.Live())
}

func TestDuplicateChild(t *testing.T) {
	var second UI
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA, Key("x"))
		second = ui.Add(typeA, Key("x"))
	})
	s.OnLogicTick()
	assert.True(t, sink.has(ErrDuplicateChild))
	assert.False(t, second.Valid())
	assert.Len(t, root.children, 1)
}

func TestSameKeyDifferentTypes(t *testing.T) {
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA, Key("x"))
		ui.Add(typeB, Key("x"))
	})
	s.OnLogicTick()
	assert.Empty(t, sink.errs)
	assert.Len(t, root.children, 2)
}

func TestReservedKey(t *testing.T) {
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA, Key(syntheticPrefix+"0"))
	})
	s.OnLogicTick()
	assert.True(t, sink.has(ErrReservedKey))
	assert.Empty(t, root.children)
}

func TestInvalidChildType(t *testing.T) {
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(nil)
		ui.Add(typeBroken)
		ui.Add(typeA)
	})
	s.OnLogicTick()
	require.Len(t, sink.errs, 2)
	for _, err := range sink.errs {
		assert.ErrorIs(t, err, ErrInvalidChildType)
	}
	assert.Len(t, root.children, 1, "siblings of a failed add are unaffected")
}

func TestSiblingOrderFollowsDeclaration(t *testing.T) {
	order := []string{"a", "b", "c"}
	s, _, root, ui, _ := newTestScheduler(func(ui UI) {
		for _, k := range order {
			ui.Add(typeA, Key(k)).Prop("text", String(k))
		}
	})
	s.OnLogicTick()

	text := func() []string {
		var out []string
		for _, c := range root.children {
			out = append(out, c.props["text"].AsString())
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, text())

	order = []string{"c", "a"}
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, []string{"c", "a"}, text())
}

func TestPropWritesOnlyChanges(t *testing.T) {
	text := "one"
	s, h, _, ui, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Props(map[string]Value{
			"text":  String(text),
			"alpha": Float(1),
		})
	})
	s.OnLogicTick()
	assert.Equal(t, 1, h.writes, "alpha already matches")

	text = "two"
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 2, h.writes)
	assert.Equal(t, 2, s.Stats().PropWrites)
}

// --- Events ---

func TestEventRebind(t *testing.T) {
	var got []string
	first := Func(func(...Value) { got = append(got, "first") })
	second := Func(func(...Value) { got = append(got, "second") })

	cb := first
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		c := ui.Add(typeA)
		if cb != nil {
			c.Event("pressed", cb)
		}
	})
	s.OnLogicTick()
	node := root.children[0]
	assert.True(t, node.emit("pressed"))
	assert.Equal(t, 1, h.connects)

	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 1, h.connects, "same callable keeps its connection")
	assert.Equal(t, 0, h.disconnects)

	cb = second
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 2, h.connects)
	assert.Equal(t, 1, h.disconnects)
	assert.True(t, node.emit("pressed"))

	cb = nil
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 2, h.disconnects)
	assert.False(t, node.emit("pressed"))

	assert.Equal(t, []string{"first", "second"}, got)
	assert.Empty(t, sink.errs)
}

func TestEventDeclaredTwice(t *testing.T) {
	a := Func(func(...Value) {})
	b := Func(func(...Value) {})
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Event("pressed", a).Event("pressed", b)
	})
	s.OnLogicTick()
	assert.True(t, sink.has(ErrSignalAlreadyBound))
	assert.Same(t, a, root.children[0].events["pressed"], "first declaration wins")
}

func TestEventConnectFailure(t *testing.T) {
	first := Func(func(...Value) {})
	second := Func(func(...Value) {})
	cb := first
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Event("pressed", cb)
	})
	s.OnLogicTick()
	require.Equal(t, 1, h.connects)

	refused := errors.New("connect refused")
	h.connectErr = refused
	cb = second
	ui.QueueUpdate()
	s.OnLogicTick()
	require.Len(t, sink.errs, 1, "only the failed connect is reported")
	assert.ErrorIs(t, sink.errs[0], refused)
	assert.Equal(t, 1, h.disconnects, "old callable is dropped once")
	assert.False(t, root.children[0].emit("pressed"))

	h.connectErr = nil
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Len(t, sink.errs, 1)
	assert.Equal(t, 2, h.connects, "binding is retried on the next pass")
	assert.Same(t, second, root.children[0].events["pressed"])
}

func TestEventsBlockedDuringPass(t *testing.T) {
	var blocked bool
	s, _, root, _, _ := newTestScheduler(func(ui UI) {
		c := ui.Add(typeA)
		blocked = c.Ref().(*fakeNode).blocked
	})
	s.OnLogicTick()
	assert.True(t, blocked)
	assert.False(t, root.children[0].blocked)
	assert.False(t, root.blocked)
}

func TestCallbackQueuesUpdate(t *testing.T) {
	count := 0
	var press *Callable
	s, _, root, ui, _ := newTestScheduler(nil)
	press = Func(func(...Value) {
		count++
		ui.QueueUpdate()
	})
	ui.Show(func(ui UI) {
		ui.Add(typeA).Prop("text", String(string(rune('0'+count))))
		ui.Add(typeB).Event("pressed", press)
	})
	s.OnLogicTick()
	assert.Equal(t, "0", root.children[0].props["text"].AsString())

	root.children[1].emit("pressed")
	s.OnLogicTick()
	assert.Equal(t, "1", root.children[0].props["text"].AsString())
}

// --- Builders ---

func TestNestedShowReconcilesSubtreeOnly(t *testing.T) {
	rootCalls, childCalls := 0, 0
	var child UI
	s, _, _, _, _ := newTestScheduler(func(ui UI) {
		rootCalls++
		child = ui.Add(typeA).Show(func(ui UI) {
			childCalls++
			ui.Add(typeB)
		})
	})
	s.OnLogicTick()
	assert.Equal(t, 1, rootCalls)
	assert.Equal(t, 1, childCalls)

	child.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 1, rootCalls)
	assert.Equal(t, 2, childCalls)
	assert.Len(t, child.Ref().(*fakeNode).children, 1)
}

func TestStoredChildBuilderRunsOncePerPass(t *testing.T) {
	childCalls := 0
	first := true
	s, h, _, ui, sink := newTestScheduler(func(ui UI) {
		c := ui.Add(typeA)
		if first {
			c.Show(func(ui UI) {
				childCalls++
				ui.Add(typeB)
			})
		}
	})
	s.OnLogicTick()
	require.Equal(t, 1, childCalls)

	first = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 2, childCalls, "stored builder reruns when the parent does not call Show")
	assert.Equal(t, 2, h.instantiated, "grandchild is kept")
	assert.Empty(t, sink.errs)
}

func TestShowTwiceInOnePass(t *testing.T) {
	s, _, _, _, sink := newTestScheduler(func(ui UI) {
		c := ui.Add(typeA)
		c.Show(func(UI) {})
		c.Show(func(UI) {})
	})
	s.OnLogicTick()
	assert.True(t, sink.has(ErrReentrantUpdate))
}

func TestBuilderPanicIsRecovered(t *testing.T) {
	fail := true
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA)
		if fail {
			panic("kaboom")
		}
		ui.Add(typeB)
	})
	s.OnLogicTick()

	var be *BuildError
	require.Len(t, sink.errs, 1)
	require.True(t, errors.As(sink.errs[0], &be))
	assert.Equal(t, "kaboom", be.Recovered)
	assert.NotEmpty(t, be.StackTrace)
	assert.Len(t, root.children, 1, "children declared before the panic survive")
	assert.False(t, root.blocked, "post_update still runs")

	fail = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Len(t, root.children, 2)
	assert.Equal(t, 2, h.instantiated)
}

func TestOperationsOutsidePass(t *testing.T) {
	var child UI
	s, h, _, ui, sink := newTestScheduler(func(ui UI) {
		child = ui.Add(typeA)
	})
	s.OnLogicTick()

	assert.False(t, ui.Add(typeB).Valid())
	child.Prop("text", String("late"))
	child.Event("pressed", Func(func(...Value) {}))
	child.Motion(func(m *Motion) { t.Error("motion builder must not run") })

	require.Len(t, sink.errs, 4)
	for _, err := range sink.errs {
		assert.ErrorIs(t, err, ErrOutsidePass)
	}
	assert.Equal(t, 1, h.instantiated)
	assert.Equal(t, 0, h.writes)
}

func TestStaleHandle(t *testing.T) {
	show := true
	var child UI
	s, _, _, ui, sink := newTestScheduler(func(ui UI) {
		if show {
			child = ui.Add(typeA)
		}
	})
	s.OnLogicTick()
	show = false
	ui.QueueUpdate()
	s.OnLogicTick()

	child.QueueUpdate()
	assert.True(t, sink.has(ErrStaleProxy))
	assert.Nil(t, child.Ref())
	assert.False(t, child.Parent().Valid())
}

func TestZeroUIIsInert(t *testing.T) {
	var ui UI
	assert.False(t, ui.Valid())
	assert.False(t, ui.Add(typeA).Valid())
	ui.Prop("text", String("x")).QueueUpdate()
	assert.Nil(t, ui.Ref())
}

func TestParentAndRoot(t *testing.T) {
	var a, b UI
	s, _, _, ui, _ := newTestScheduler(func(ui UI) {
		a = ui.Add(typeA).Show(func(ui UI) {
			b = ui.Add(typeB)
		})
	})
	s.OnLogicTick()
	assert.Equal(t, a, b.Parent())
	assert.Equal(t, ui, b.Root())
	assert.Equal(t, ui, a.Parent())
	assert.False(t, ui.Parent().Valid())
}

func TestRootQueueUpdate(t *testing.T) {
	rootCalls := 0
	var b UI
	s, _, _, _, _ := newTestScheduler(func(ui UI) {
		rootCalls++
		ui.Add(typeA).Show(func(ui UI) {
			b = ui.Add(typeB)
		})
	})
	s.OnLogicTick()
	b.RootQueueUpdate()
	s.OnLogicTick()
	assert.Equal(t, 2, rootCalls)
}

func TestClearChildrenFreesCachedNodes(t *testing.T) {
	show := true
	s, h, root, ui, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA)
		if show {
			ui.Add(typeB, Persist())
		}
	})
	s.OnLogicTick()
	show = false
	ui.QueueUpdate()
	s.OnLogicTick()
	require.Equal(t, 0, h.freed)

	ui.ClearChildren()
	assert.Equal(t, 2, h.freed)
	assert.Empty(t, root.children)
	assert.Equal(t, 1, s.Live())
}

func TestUnmount(t *testing.T) {
	s, h, root, ui, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Show(func(ui UI) { ui.Add(typeB) })
	})
	s.OnLogicTick()
	s.Unmount(ui)
	assert.Equal(t, 2, h.freed)
	assert.Empty(t, root.children)
	assert.False(t, root.freed, "the mounted node belongs to the caller")
	assert.False(t, ui.Valid())
	assert.Equal(t, 0, s.Live())
	s.OnLogicTick()
}

// --- Motion through UI ---

func TestUIMotionSurvivesPasses(t *testing.T) {
	s, h, root, ui, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Motion(func(m *Motion) {
			m.Prop("position").Linear(Vec2(10, 0), 1)
		})
	})
	h.elapsed = 0.5
	s.OnLogicTick()
	pos := root.children[0].props["position"]
	assert.True(t, pos.ApproxEqual(Vec2(5, 0), 1e-9), "position = %v", pos)

	ui.QueueUpdate()
	s.OnLogicTick()
	pos = root.children[0].props["position"]
	assert.True(t, pos.ApproxEqual(Vec2(10, 0), 1e-9), "position = %v", pos)
	assert.Empty(t, sink.errs)
}

func TestRemovedChildMotionRestarts(t *testing.T) {
	show := true
	var child UI
	s, h, _, ui, _ := newTestScheduler(func(ui UI) {
		if show {
			child = ui.Add(typeA, Persist()).Motion(func(m *Motion) {
				m.Prop("alpha").Linear(Float(0), 1)
			})
		}
	})
	h.elapsed = 0.25
	s.OnLogicTick()
	p := child.tree.get(child.id)
	assert.InDelta(t, 0.25, p.motion.Playback(), 1e-9)

	show = false
	ui.QueueUpdate()
	s.OnLogicTick()
	assert.Zero(t, p.motion.Playback(), "a detached child does not advance")
}

// --- Pre-render ---

func TestDrawRunsWhenQueued(t *testing.T) {
	calls := 0
	again := false
	s, _, _, ui, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Draw(func(d *DrawContext) {
			calls++
			if again {
				d.QueueRedraw()
			}
		})
	})
	s.OnLogicTick()
	s.OnPreRenderTick()
	s.OnPreRenderTick()
	assert.Equal(t, 1, calls)

	again = true
	ui.QueueUpdate()
	s.OnLogicTick()
	s.OnPreRenderTick()
	s.OnPreRenderTick()
	assert.Equal(t, 3, calls)
}

func TestAnimateRect(t *testing.T) {
	s, h, root, _, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA).AnimateRect(10)
	})
	s.OnLogicTick()
	n := root.children[0]
	n.props["rect"] = Rect(0, 0, 10, 10)
	s.OnPreRenderTick()
	assert.Equal(t, [4]float64{0, 0, 1, 1}, n.visual)

	n.props["rect"] = Rect(100, 0, 10, 10)
	h.elapsed = 0.05
	s.OnPreRenderTick()
	assert.Less(t, n.visual[0], 0.0, "visual lags behind layout")
	assert.Greater(t, n.visual[0], -100.0)

	for i := 0; i < 200; i++ {
		s.OnPreRenderTick()
	}
	assert.Equal(t, [4]float64{0, 0, 1, 1}, n.visual, "snaps once close enough")
}

// --- Layout helpers ---

func TestMargins(t *testing.T) {
	s, _, root, _, sink := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Margin("8px")
		ui.Add(typeA).HorizontalMargin(Percent(10)).TopMargin(4)
		ui.Add(typeA).FullRect()
		ui.Add(typeA).Margin("wide")
	})
	s.OnLogicTick()

	px := root.children[0].props
	assert.Equal(t, Float(0), px["anchor_left"])
	assert.Equal(t, Float(8), px["offset_left"])
	assert.Equal(t, Float(1), px["anchor_right"])
	assert.Equal(t, Float(-8), px["offset_right"])
	assert.Equal(t, Float(1), px["anchor_bottom"])
	assert.Equal(t, Float(-8), px["offset_bottom"])

	pc := root.children[1].props
	assert.InDelta(t, 0.1, pc["anchor_left"].AsFloat(), 1e-9)
	assert.InDelta(t, 0.9, pc["anchor_right"].AsFloat(), 1e-9)
	assert.Equal(t, Float(4), pc["offset_top"])
	_, hasBottom := pc["anchor_bottom"]
	assert.False(t, hasBottom)

	full := root.children[2].props
	assert.Equal(t, Float(1), full["anchor_right"])
	assert.Equal(t, Float(0), full["offset_right"])

	assert.True(t, sink.has(ErrInvalidUnit))
}

// --- Scheduler ---

func TestStatsCountHostOperations(t *testing.T) {
	cb := Func(func(...Value) {})
	s, _, _, _, _ := newTestScheduler(func(ui UI) {
		ui.Add(typeA).Prop("text", String("x")).Event("pressed", cb)
	})
	s.OnLogicTick()
	st := s.Stats()
	assert.Equal(t, 1, st.Passes)
	assert.Equal(t, 1, st.Created)
	assert.Equal(t, 1, st.PropWrites)
	assert.Equal(t, 1, st.Connects)
}

func TestDefaultErrorHandlerLogs(t *testing.T) {
	h := newFakeHost()
	s := NewScheduler(h)
	ui := s.Mount(newFakeNode(Constructor("Root")), nil)
	assert.NotPanics(t, func() { ui.Add(typeA) })
}
