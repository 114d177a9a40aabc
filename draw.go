package sapling

import "math"

// DrawContext is handed to a Draw callback during the pre-render tick.
type DrawContext struct {
	// Time is the seconds accumulated since the callback was first declared.
	Time float64
	// Delta is the seconds elapsed since the previous pre-render tick.
	Delta float64
	// Node is the host node the callback draws on.
	Node Handle

	queued bool
}

// QueueRedraw asks for the callback to run again on the next pre-render
// tick.
func (d *DrawContext) QueueRedraw() {
	d.queued = true
}

type drawState struct {
	ctx DrawContext
	fn  func(*DrawContext)
}

// rectSmoothing eases a node's visual rect towards its layout rect.
type rectSmoothing struct {
	speed   float64
	current [4]float64 // x, y, w, h
	primed  bool
}

// snapDistance is the per-component distance below which smoothing snaps to
// the target.
const snapDistance = 0.5

// Draw declares a custom draw callback. It runs once on the next
// pre-render tick, and again on every tick it calls QueueRedraw.
func (u UI) Draw(fn func(*DrawContext)) UI {
	_, p := u.writable("UI.Draw")
	if p == nil {
		return u
	}
	if p.draw == nil {
		p.draw = &drawState{ctx: DrawContext{Node: p.node}}
	}
	p.draw.fn = fn
	p.draw.ctx.queued = true
	return u
}

// AnimateRect smooths visual changes of the node's rect at the given speed.
// A speed of zero or less turns smoothing off.
func (u UI) AnimateRect(speed float64) UI {
	t, p := u.writable("UI.AnimateRect")
	if p == nil {
		return u
	}
	if speed <= 0 {
		if p.smooth != nil {
			if vh, ok := t.host.(VisualHost); ok {
				vh.SetVisualTransform(p.node, 0, 0, 1, 1)
			}
			p.smooth = nil
		}
		return u
	}
	if p.smooth == nil {
		p.smooth = &rectSmoothing{}
	}
	p.smooth.speed = speed
	return u
}

// drawUpdate runs the pre-render work depth first.
func (t *tree) drawUpdate(p *proxy, dt float64) {
	t.eachChild(p, func(_ *childCollection, _ string, child *proxy) {
		if child.inside {
			t.drawUpdate(child, dt)
		}
	})
	if p.smooth != nil {
		t.smoothRect(p, dt)
	}
	if d := p.draw; d != nil {
		d.ctx.Time += dt
		d.ctx.Delta = dt
		if d.queued() {
			d.ctx.queued = false
			d.fn(&d.ctx)
		}
	}
}

func (d *drawState) queued() bool {
	return d.fn != nil && d.ctx.queued
}

func (t *tree) smoothRect(p *proxy, dt float64) {
	vh, ok := t.host.(VisualHost)
	if !ok {
		return
	}
	v, err := t.host.Property(p.node, "rect")
	if err != nil || v.Kind() != KindRect {
		return
	}
	x, y, w, h := v.AsRect()
	target := [4]float64{x, y, w, h}

	s := p.smooth
	if !s.primed {
		s.current = target
		s.primed = true
	} else {
		k := 1 - math.Exp(-s.speed*dt)
		for i := range s.current {
			s.current[i] += (target[i] - s.current[i]) * k
			if math.Abs(target[i]-s.current[i]) < snapDistance {
				s.current[i] = target[i]
			}
		}
	}

	sx, sy := 1.0, 1.0
	if w != 0 {
		sx = s.current[2] / w
	}
	if h != 0 {
		sy = s.current[3] / h
	}
	vh.SetVisualTransform(p.node, s.current[0]-x, s.current[1]-y, sx, sy)
}
