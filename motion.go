package sapling

import (
	"log/slog"
	"math"

	"github.com/tanema/gween/ease"
)

type propertyKeyframe struct {
	start    float64
	duration float64
	target   Value
	end      Value // target resolved at progress 1.0
	ease     Ease
	strength float64
	custom   ease.TweenFunc
}

type propertyTrack struct {
	name    string
	indexed bool
	keys    []propertyKeyframe
	seed    Value // start value of the first keyframe
	current Value // authoring-time running value
}

type callbackKeyframe struct {
	time float64
	fn   func()
}

// Motion is a keyframe timeline bound to one host node.
//
// Authoring happens through chained calls that append keyframes at an
// authoring cursor; combinators (Chain, Parallel, Scope, Scale, Repeat)
// adjust that cursor for the calls made inside them. Playback is driven by
// Advance, which moves the playback cursor and writes interpolated values
// back to the node.
//
// A Motion owned by a UI proxy is cleared at the start of every pass and
// authored again by the builder, while its playback cursor and property
// seeds survive, so an unchanged builder yields an identical timeline.
type Motion struct {
	host   Host
	node   Handle
	key    string
	report ErrorHandler

	// Playback
	time     float64
	prevTime float64
	loop     bool

	// Authoring cursor
	keyTime     float64
	keyDuration float64
	keyScale    float64
	keyParallel bool

	tracks    []*propertyTrack
	byName    map[string]*propertyTrack
	seeds     map[string]Value
	selected  *propertyTrack
	callbacks []callbackKeyframe
}

// NewMotion returns a standalone timeline animating node through host.
// Errors go to onError; a nil handler logs them with slog.Default.
func NewMotion(host Host, node Handle, onError ErrorHandler) *Motion {
	if onError == nil {
		onError = logErrors(slog.Default())
	}
	m := &Motion{
		host:   host,
		node:   node,
		report: onError,
		seeds:  make(map[string]Value),
	}
	m.clear()
	return m
}

func (m *Motion) fail(op string, err error) {
	m.report(&OpError{Op: op, Key: m.key, Err: err})
}

// clear drops all authored content. The playback cursor and seeds are kept.
func (m *Motion) clear() {
	m.keyTime = 0
	m.keyDuration = 0
	m.keyParallel = false
	m.keyScale = 1
	m.loop = false
	m.tracks = m.tracks[:0]
	m.byName = make(map[string]*propertyTrack)
	m.selected = nil
	m.callbacks = m.callbacks[:0]
}

// Reset rewinds playback to the start and forgets property seeds.
func (m *Motion) Reset() {
	m.time = 0
	m.prevTime = 0
	clear(m.seeds)
}

// Time returns the authoring cursor.
func (m *Motion) Time() float64 { return m.keyTime }

// Duration returns the span authored so far.
func (m *Motion) Duration() float64 { return m.keyDuration }

// Playback returns the playback cursor.
func (m *Motion) Playback() float64 { return m.time }

// Loop enables or disables wrapping playback at the end of the timeline.
func (m *Motion) Loop(enabled bool) *Motion {
	m.loop = enabled
	return m
}

// Delay pushes playback back by d seconds, deferring the first visible effect.
// The shift applies to the live playhead and accumulates, so call it once
// (e.g. when the timeline is first created) rather than on every rebuild.
func (m *Motion) Delay(d float64) *Motion {
	m.time -= d
	m.prevTime -= d
	return m
}

// Prop selects the property track addressed by plain name, creating it and
// seeding it from the node's live value the first time the name is used.
func (m *Motion) Prop(name string) *Motion {
	m.selectTrack(name, false)
	return m
}

// PropIndexed selects a track addressed by path ("position:x").
func (m *Motion) PropIndexed(path string) *Motion {
	m.selectTrack(path, true)
	return m
}

func (m *Motion) selectTrack(name string, indexed bool) {
	if tr, ok := m.byName[name]; ok {
		m.selected = tr
		return
	}
	seed, ok := m.seeds[name]
	if !ok {
		v, err := m.read(name, indexed)
		if err != nil {
			m.fail("Motion.Prop", err)
		} else {
			m.seeds[name] = v
		}
		seed = v
	}
	tr := &propertyTrack{name: name, indexed: indexed, seed: seed, current: seed}
	m.tracks = append(m.tracks, tr)
	m.byName[name] = tr
	m.selected = tr
}

func (m *Motion) read(name string, indexed bool) (Value, error) {
	if indexed {
		return m.host.IndexedProperty(m.node, name)
	}
	return m.host.Property(m.node, name)
}

func (m *Motion) write(tr *propertyTrack, v Value) error {
	if tr.indexed {
		return m.host.SetIndexedProperty(m.node, tr.name, v)
	}
	return m.host.SetProperty(m.node, tr.name, v)
}

// Keyframe appends a transition to v lasting d seconds on the selected track.
func (m *Motion) Keyframe(v Value, d float64, kind Ease, strength float64) *Motion {
	return m.keyframe("Motion.Keyframe", v, d, kind, strength, nil)
}

func (m *Motion) keyframe(op string, v Value, d float64, kind Ease, strength float64, custom ease.TweenFunc) *Motion {
	if m.selected == nil {
		m.fail(op, ErrNoPropertySelected)
		return m
	}
	if d < 0 || math.IsNaN(d) {
		m.fail(op, ErrInvalidDuration)
		return m
	}
	d *= m.keyScale

	tr := m.selected
	end, err := interpolate(tr.current, v, kind, strength, 1, 1, custom)
	if err != nil {
		m.fail(op, err)
		return m
	}
	tr.current = end
	tr.keys = append(tr.keys, propertyKeyframe{
		start:    m.keyTime,
		duration: d,
		target:   v,
		end:      end,
		ease:     kind,
		strength: strength,
		custom:   custom,
	})

	if !m.keyParallel {
		m.keyTime += d
		m.keyDuration += d
	} else {
		m.keyDuration = math.Max(m.keyDuration, d)
	}
	return m
}

// Callback schedules fn at the authoring cursor. It fires once each time
// playback crosses that point going forward.
func (m *Motion) Callback(fn func()) *Motion {
	m.callbacks = append(m.callbacks, callbackKeyframe{time: m.keyTime, fn: fn})
	return m
}

// Wait advances the authoring cursor by d seconds without a keyframe.
func (m *Motion) Wait(d float64) *Motion {
	if d < 0 || math.IsNaN(d) {
		m.fail("Motion.Wait", ErrInvalidDuration)
		return m
	}
	m.keyTime += d * m.keyScale
	m.keyDuration += d * m.keyScale
	return m
}

// Current returns the authoring-time value of the selected track, that is
// the value the track will hold after every keyframe declared so far.
func (m *Motion) Current() Value {
	if m.selected == nil {
		m.fail("Motion.Current", ErrNoPropertySelected)
		return Nil
	}
	return m.selected.current
}

// Relative returns Current() + delta.
func (m *Motion) Relative(delta Value) Value {
	if m.selected == nil {
		m.fail("Motion.Relative", ErrNoPropertySelected)
		return Nil
	}
	v, err := m.selected.current.Add(delta)
	if err != nil {
		m.fail("Motion.Relative", err)
		return Nil
	}
	return v
}

// --- Combinators ---

// merge folds a finished sub-timeline back into the outer cursor.
func (m *Motion) merge(parallel bool, outerTime, outerDuration float64) {
	sub := m.keyDuration
	if !parallel {
		m.keyTime = outerTime + sub
		m.keyDuration = outerDuration + sub
	} else {
		m.keyTime = outerTime
		m.keyDuration = math.Max(outerDuration, sub)
	}
	m.keyParallel = parallel
}

// Scope runs fn in the current mode and merges its span into the outer
// cursor using that same mode.
func (m *Motion) Scope(fn func(m *Motion)) *Motion {
	parallel, t, d := m.keyParallel, m.keyTime, m.keyDuration
	m.keyDuration = 0
	fn(m)
	m.merge(parallel, t, d)
	return m
}

// Parallel runs fn with every keyframe starting at the current cursor.
// The sub-span is the longest keyframe.
func (m *Motion) Parallel(fn func(m *Motion)) *Motion {
	parallel, t, d := m.keyParallel, m.keyTime, m.keyDuration
	m.keyParallel = true
	m.keyDuration = 0
	fn(m)
	m.merge(parallel, t, d)
	return m
}

// Chain runs fn with keyframes laid out one after another.
func (m *Motion) Chain(fn func(m *Motion)) *Motion {
	parallel, t, d := m.keyParallel, m.keyTime, m.keyDuration
	m.keyParallel = false
	m.keyDuration = 0
	fn(m)
	m.merge(parallel, t, d)
	return m
}

// Repeat calls fn n times in sequence with the iteration index.
func (m *Motion) Repeat(n int, fn func(m *Motion, i int)) *Motion {
	parallel, t, d := m.keyParallel, m.keyTime, m.keyDuration
	m.keyParallel = false
	m.keyDuration = 0
	for i := 0; i < n; i++ {
		fn(m, i)
	}
	m.merge(parallel, t, d)
	return m
}

// Scale multiplies every duration declared inside fn by factor. Nested
// scales compose.
func (m *Motion) Scale(factor float64, fn func(m *Motion)) *Motion {
	if !(factor > 0) {
		m.fail("Motion.Scale", ErrInvalidScale)
		return m
	}
	saved := m.keyScale
	m.keyScale *= factor
	fn(m)
	m.keyScale = saved
	return m
}

// --- Keyframe helpers ---

func strengthOr(s []float64) float64 {
	if len(s) > 0 {
		return s[0]
	}
	return DefaultStrength
}

// Frame jumps to v instantly.
func (m *Motion) Frame(v Value) *Motion {
	return m.keyframe("Motion.Frame", v, 0, EaseConstant, 0, nil)
}

// FromCurrent pins the track at its current authoring value.
func (m *Motion) FromCurrent() *Motion {
	if m.selected == nil {
		m.fail("Motion.FromCurrent", ErrNoPropertySelected)
		return m
	}
	return m.Frame(m.selected.current)
}

// Constant holds the previous value for d seconds, then jumps to v.
func (m *Motion) Constant(v Value, d float64) *Motion {
	return m.keyframe("Motion.Constant", v, d, EaseConstant, 0, nil)
}

// Linear moves to v at constant speed.
func (m *Motion) Linear(v Value, d float64) *Motion {
	return m.keyframe("Motion.Linear", v, d, EaseLinear, 0, nil)
}

// EaseIn accelerates into v. Strength defaults to DefaultStrength.
func (m *Motion) EaseIn(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.EaseIn", v, d, EaseIn, strengthOr(strength), nil)
}

// EaseOut decelerates into v.
func (m *Motion) EaseOut(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.EaseOut", v, d, EaseOut, strengthOr(strength), nil)
}

// EaseInOut accelerates then decelerates.
func (m *Motion) EaseInOut(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.EaseInOut", v, d, EaseInOut, strengthOr(strength), nil)
}

// EaseOutIn decelerates then accelerates.
func (m *Motion) EaseOutIn(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.EaseOutIn", v, d, EaseOutIn, strengthOr(strength), nil)
}

// ElasticIn oscillates with growing amplitude into v.
func (m *Motion) ElasticIn(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.ElasticIn", v, d, EaseElasticIn, strengthOr(strength), nil)
}

// ElasticOut overshoots v and settles.
func (m *Motion) ElasticOut(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.ElasticOut", v, d, EaseElasticOut, strengthOr(strength), nil)
}

// ElasticInOut combines ElasticIn and ElasticOut.
func (m *Motion) ElasticInOut(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.ElasticInOut", v, d, EaseElasticInOut, strengthOr(strength), nil)
}

// ElasticOutIn combines ElasticOut and ElasticIn.
func (m *Motion) ElasticOutIn(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.ElasticOutIn", v, d, EaseElasticOutIn, strengthOr(strength), nil)
}

// Pulse rises quickly toward v and returns to the previous value.
func (m *Motion) Pulse(v Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.Pulse", v, d, EasePulse, strengthOr(strength), nil)
}

// Shake oscillates toward magnitude with decaying amplitude and settles
// back on the previous value.
func (m *Motion) Shake(magnitude Value, d float64, strength ...float64) *Motion {
	return m.keyframe("Motion.Shake", magnitude, d, EaseShake, strengthOr(strength), nil)
}

// Tween moves to v along a gween easing curve such as ease.OutBounce.
func (m *Motion) Tween(v Value, d float64, fn ease.TweenFunc) *Motion {
	if fn == nil {
		fn = ease.Linear
	}
	return m.keyframe("Motion.Tween", v, d, EaseCustom, 0, fn)
}

// --- Playback ---

// Advance moves playback forward by dt seconds and applies the timeline.
func (m *Motion) Advance(dt float64) {
	m.time += dt
	m.Animate()
}

// Animate writes every track's value at the playback cursor to the node,
// fires callbacks crossed since the previous call and wraps looping
// playback.
func (m *Motion) Animate() {
	for _, tr := range m.tracks {
		if len(tr.keys) == 0 {
			continue
		}
		// Active keyframe: the first one not finished yet, else the last.
		idx := len(tr.keys) - 1
		for i := range tr.keys {
			if tr.keys[i].start+tr.keys[i].duration > m.time {
				idx = i
				break
			}
		}
		start := tr.seed
		if idx > 0 {
			start = tr.keys[idx-1].end
		}
		k := &tr.keys[idx]
		v, err := interpolate(start, k.target, k.ease, k.strength, m.time-k.start, k.duration, k.custom)
		if err != nil {
			m.fail("Motion.Animate", err)
			continue
		}
		if err := m.write(tr, v); err != nil {
			m.fail("Motion.Animate", err)
		}
	}

	for _, cb := range m.callbacks {
		if m.prevTime <= cb.time && m.time > cb.time {
			cb.fn()
		}
	}

	if m.loop && m.keyDuration > 0 && m.time >= m.keyDuration {
		m.time -= m.keyDuration
	}
	m.prevTime = m.time
}
