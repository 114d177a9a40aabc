package sapling

import (
	"fmt"
	"time"
)

// Stats counts host operations issued by a Scheduler. The counters are
// cumulative over the scheduler's lifetime.
type Stats struct {
	Passes      int
	Created     int
	Removed     int
	Freed       int
	PropWrites  int
	Connects    int
	Disconnects int
}

func (s Stats) sub(o Stats) Stats {
	return Stats{
		Passes:      s.Passes - o.Passes,
		Created:     s.Created - o.Created,
		Removed:     s.Removed - o.Removed,
		Freed:       s.Freed - o.Freed,
		PropWrites:  s.PropWrites - o.PropWrites,
		Connects:    s.Connects - o.Connects,
		Disconnects: s.Disconnects - o.Disconnects,
	}
}

// debugLog logs the work done by one logic tick. Ticks that did no
// reconciliation are skipped.
func (s *Scheduler) debugLog(tick Stats, elapsed time.Duration) {
	if !s.debug || tick.Passes == 0 {
		return
	}
	s.logger.Debug("logic tick",
		"passes", tick.Passes,
		"created", tick.Created,
		"removed", tick.Removed,
		"freed", tick.Freed,
		"props", tick.PropWrites,
		"connects", tick.Connects,
		"disconnects", tick.Disconnects,
		"took", elapsed)
}

// debugMaxTreeDepth is the nesting depth above which a warning is logged.
const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns when a proxy is nested unusually deep, which
// usually means a builder adds itself recursively.
func (s *Scheduler) debugCheckTreeDepth(t *tree, p *proxy) {
	if !s.debug {
		return
	}
	depth := 0
	for q := p; q != nil; q = t.get(q.parent) {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.logger.Warn(fmt.Sprintf("tree depth %d exceeds %d", depth, debugMaxTreeDepth), "key", p.key)
	}
}
