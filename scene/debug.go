package scene

import (
	"fmt"
	"time"
)

// debugStats holds per-frame draw metrics. Only populated in debug mode.
type debugStats struct {
	nodes     int
	drawCalls int
	drawTime  time.Duration
}

// debugLog logs one frame's draw stats.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug("frame",
		"nodes", stats.nodes,
		"draw_calls", stats.drawCalls,
		"took", stats.drawTime)
}

// debugCheckDisposed panics when a disposed node is used through the host
// interface in debug mode.
func (s *Scene) debugCheckDisposed(n *Node, op string) {
	if s.debug && n.disposed {
		panic(fmt.Sprintf("scene debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTreeDepth warns when a node is nested unusually deep or its
// parent holds an unusual number of children.
func (s *Scene) debugCheckTreeDepth(n *Node) {
	if !s.debug {
		return
	}
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.logger.Warn(fmt.Sprintf("tree depth %d exceeds %d", depth, debugMaxTreeDepth), "node", n.Name)
	}
	if p := n.Parent; p != nil && len(p.children) > debugMaxChildCount {
		s.logger.Warn(fmt.Sprintf("node has %d children (threshold %d)", len(p.children), debugMaxChildCount), "node", p.Name)
	}
}
