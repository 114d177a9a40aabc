package scene

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/sapling"
)

// Scene owns the node tree, the UI scheduler driving it and the input
// state. It implements ebiten.Game through Update, Draw and Layout, and
// sapling.Host for the scheduler.
type Scene struct {
	root   *Node
	store  EntityStore
	debug  bool
	logger *slog.Logger
	ui     *sapling.Scheduler

	constructors map[string]func(name string) *Node

	// ClearColor fills the screen before drawing when its alpha is non-zero.
	ClearColor Color

	width, height float64
	fixedDelta    float64
	headless      bool
	showFPS       bool

	// Input state
	captured     [maxPointers]*Node
	pointers     [maxPointers]pointerState
	hitBuf       []*Node
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	injectQueue  []syntheticPointerEvent

	testRunner *TestRunner
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used by the scene and its scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithDebug enables per-frame debug logging and extra checks.
func WithDebug(enabled bool) Option {
	return func(s *Scene) { s.debug = enabled }
}

// WithFixedDelta makes every tick advance by dt seconds instead of one
// tick at the current TPS.
func WithFixedDelta(dt float64) Option {
	return func(s *Scene) { s.fixedDelta = dt }
}

// WithSize sets the initial screen size. Layout overrides it once the game
// loop runs.
func WithSize(w, h float64) Option {
	return func(s *Scene) { s.width, s.height = w, h }
}

// WithHeadless ignores real mouse, keyboard and touch devices. Only injected
// input reaches the tree. Useful for tests and scripted runs.
func WithHeadless() Option {
	return func(s *Scene) { s.headless = true }
}

// WithFPS draws the actual FPS and TPS in the top-left corner.
func WithFPS() Option {
	return func(s *Scene) { s.showFPS = true }
}

// NewScene creates a scene with a root container and a scheduler bound to
// it.
func NewScene(opts ...Option) *Scene {
	s := &Scene{
		logger:       slog.Default(),
		constructors: builtinConstructors(),
		dragDeadZone: defaultDragDeadZone,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = NewContainer("root")
	s.resizeRoot()
	s.ui = sapling.NewScheduler(s,
		sapling.WithLogger(s.logger),
		sapling.WithDebug(s.debug),
	)
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Scheduler returns the UI scheduler driven by this scene.
func (s *Scene) Scheduler() *sapling.Scheduler {
	return s.ui
}

// Mount attaches a declarative UI to the root. The builder first runs on
// the next Update.
func (s *Scene) Mount(build func(sapling.UI)) sapling.UI {
	return s.ui.Mount(s.root, build)
}

// MountAt attaches a declarative UI to an existing node of this scene.
func (s *Scene) MountAt(n *Node, build func(sapling.UI)) sapling.UI {
	return s.ui.Mount(n, build)
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug logging of frame stats and
// disposed-node access.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	s.ui.SetDebug(enabled)
}

// SetTestRunner attaches a TestRunner. Its step runs at the start of every
// Update.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Update runs one logic tick: scripted input, layout, pointer input, then
// the UI scheduler, then layout again so drawing sees this tick's changes.
func (s *Scene) Update() error {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.updateTransforms()
	s.processInput()
	s.ui.OnLogicTick()
	s.updateTransforms()
	return nil
}

// Draw runs the pre-render tick and renders the tree to screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	s.ui.OnPreRenderTick()
	s.updateTransforms()
	s.render(screen)
}

// Layout implements ebiten.Game. The logical screen is the window size.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := float64(outsideWidth), float64(outsideHeight)
	if w != s.width || h != s.height {
		s.width, s.height = w, h
		s.resizeRoot()
	}
	return outsideWidth, outsideHeight
}

func (s *Scene) resizeRoot() {
	s.root.Width, s.root.Height = s.width, s.height
	s.root.transformDirty = true
}

func (s *Scene) updateTransforms() {
	updateWorldTransform(s.root, identityTransform, 1, s.width, s.height, false)
}

func (s *Scene) tickDelta() float64 {
	return 1 / float64(ebiten.TPS())
}
