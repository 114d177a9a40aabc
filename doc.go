// Package sapling is a declarative UI layer for retained scene graphs.
//
// A builder function describes, every time it runs, which children a node
// should have and which properties and events they carry. Sapling diffs that
// description against the previous one and issues the minimal set of host
// operations: nodes matching a previous declaration by type and key are
// reused in place, new ones are instantiated, and ones no longer declared
// are removed.
//
// # Quick start
//
// Implement [Host] for your engine (the sapling/scene package implements it
// on [Ebitengine]), then mount a tree and call the two tick hooks:
//
//	sched := sapling.NewScheduler(host)
//	count := 0
//	sched.Mount(rootNode, func(ui sapling.UI) {
//		ui.Add(label).Prop("text", sapling.String(fmt.Sprint(count)))
//		ui.Add(button).Event("pressed", inc)
//	})
//
//	// every frame
//	sched.OnLogicTick()
//	sched.OnPreRenderTick()
//
// A builder runs again after [UI.QueueUpdate]. Unkeyed children of one type
// match by position; use [Key] to match by identity and [Persist] to keep a
// node cached while it is hidden.
//
// # Passes
//
// Reconciling a subtree runs in three phases. pre_update marks every
// attached child for deletion and every bound event for disconnection and
// blocks event delivery. ui_process runs the builder, which unmarks what it
// declares. post_update removes what is still marked and resumes events.
// Declaration methods ([UI.Add], [UI.Prop], [UI.Event], [UI.Motion],
// [UI.Draw]) are only legal inside this window and report [ErrOutsidePass]
// elsewhere.
//
// # Motion
//
// [Motion] is a keyframe timeline authored inside a builder:
//
//	ui.Add(panel).Motion(func(m *sapling.Motion) {
//		m.Prop("position").
//			Frame(sapling.Vec2(0, -40)).
//			EaseOut(sapling.Vec2(0, 0), 0.3)
//	})
//
// It is authored again every pass while its playback position survives, so
// an unchanged builder does not restart it.
//
// # Errors
//
// Misuse never panics. Errors are passed to the scheduler's [ErrorHandler]
// (by default logged through log/slog) and the faulty operation is skipped.
// A builder that panics is recovered into a [BuildError].
//
// [Ebitengine]: https://ebitengine.org
package sapling
