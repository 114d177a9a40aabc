package sapling

import (
	"log/slog"
	"slices"
	"time"
)

// Scheduler drives every mounted tree from the host's two tick hooks:
// OnLogicTick reconciles and advances motion, OnPreRenderTick runs draw
// callbacks and rect smoothing.
type Scheduler struct {
	host    Host
	trees   []*tree
	logger  *slog.Logger
	onError ErrorHandler
	debug   bool
	stats   Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithErrorHandler routes recoverable errors to h instead of the logger.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Scheduler) { s.onError = h }
}

// WithDebug enables per-tick stats logging and tree sanity checks.
func WithDebug(enabled bool) Option {
	return func(s *Scheduler) { s.debug = enabled }
}

// NewScheduler returns a scheduler issuing host operations to host.
func NewScheduler(host Host, opts ...Option) *Scheduler {
	s := &Scheduler{host: host}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.onError == nil {
		s.onError = logErrors(s.logger)
	}
	return s
}

func (s *Scheduler) report(err error) {
	s.onError(err)
}

// Mount roots a new tree at node, an existing host node the scheduler does
// not own. build runs on the next logic tick.
func (s *Scheduler) Mount(node Handle, build func(UI)) UI {
	t := newTree(s, node, build)
	s.trees = append(s.trees, t)
	return UI{tree: t, id: t.root}
}

// Unmount frees every node the tree created and stops driving it. The
// mounted node itself is left to its owner.
func (s *Scheduler) Unmount(u UI) {
	i := slices.Index(s.trees, u.tree)
	if i < 0 {
		return
	}
	t := s.trees[i]
	root := t.get(t.root)
	t.clearChildren(root)
	for _, name := range root.signalOrder {
		if b := root.signals[name]; b.target != nil {
			t.disconnect(root, name, b.target)
		}
	}
	clear(root.signals)
	root.signalOrder = nil
	t.release(t.root)
	s.trees = slices.Delete(s.trees, i, i+1)
}

// OnLogicTick reconciles every proxy that requested a repaint, then
// advances motion timelines by the host's elapsed time.
func (s *Scheduler) OnLogicTick() {
	start := time.Now()
	before := s.stats
	dt := s.host.Elapsed()

	for _, t := range slices.Clone(s.trees) {
		if root := t.get(t.root); root != nil {
			t.checkUpdate(root)
		}
	}
	for _, t := range slices.Clone(s.trees) {
		if root := t.get(t.root); root != nil {
			t.idle(root, dt)
		}
	}

	s.debugLog(s.stats.sub(before), time.Since(start))
}

// OnPreRenderTick runs queued draw callbacks and rect smoothing.
func (s *Scheduler) OnPreRenderTick() {
	dt := s.host.Elapsed()
	for _, t := range slices.Clone(s.trees) {
		if root := t.get(t.root); root != nil {
			t.drawUpdate(root, dt)
		}
	}
}

// Stats returns the cumulative host operation counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Live returns the number of proxies alive across all mounted trees.
func (s *Scheduler) Live() int {
	n := 0
	for _, t := range s.trees {
		n += t.live()
	}
	return n
}

// SetDebug toggles debug logging and checks after construction.
func (s *Scheduler) SetDebug(enabled bool) {
	s.debug = enabled
}
