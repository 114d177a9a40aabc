package scene

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/sapling"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`

	// expect
	Node  string `yaml:"node,omitempty"`
	Prop  string `yaml:"prop,omitempty"`
	Value string `yaml:"value,omitempty"`
}

type testScript struct {
	Steps []testStep `yaml:"steps"`
}

// TestRunner sequences injected input and property checks across frames
// for scripted UI testing. Attach it to a Scene with SetTestRunner.
//
// A script is YAML (or JSON, which YAML accepts):
//
//	steps:
//	  - {action: click, x: 60, y: 20}
//	  - {action: wait, frames: 2}
//	  - {action: expect, node: count, prop: text, value: "1"}
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	failures  []error
}

// LoadTestScript parses a test script.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "wait":
		case "expect":
			if st.Node == "" || st.Prop == "" {
				return nil, fmt.Errorf("parse test script: step %d: expect needs node and prop", i)
			}
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// Err returns the failed expectations so far, joined, or nil.
func (r *TestRunner) Err() error {
	return errors.Join(r.failures...)
}

// step advances the runner by one frame. Called from Scene.Update.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Let pending injections drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(2, st.Frames))
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "expect":
		if err := r.expect(s, st); err != nil {
			s.logger.Warn("test script expectation failed", "step", r.cursor-1, "err", err)
			r.failures = append(r.failures, err)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

func (r *TestRunner) expect(s *Scene, st testStep) error {
	n := s.root.Find(st.Node)
	if n == nil {
		return fmt.Errorf("step %d: no node named %q", r.cursor-1, st.Node)
	}
	v, err := n.GetPath(st.Prop)
	if err != nil {
		return fmt.Errorf("step %d: %w", r.cursor-1, err)
	}
	if got := formatValue(v); got != st.Value {
		return fmt.Errorf("step %d: %s.%s = %s, want %s", r.cursor-1, st.Node, st.Prop, got, st.Value)
	}
	return nil
}

// formatValue renders a value the way scripts spell it: strings bare,
// everything else in its String form.
func formatValue(v sapling.Value) string {
	if v.Kind() == sapling.KindString {
		return v.AsString()
	}
	return strings.TrimSpace(v.String())
}
