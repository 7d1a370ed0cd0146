package sim

// HookPos says where in the event loop a hook is invoked.
type HookPos int

const (
	// HookPosBeforeEvent fires after the clock advanced, before the process resumes.
	HookPosBeforeEvent HookPos = iota
	// HookPosAfterEvent fires once the resumed process suspended or completed.
	HookPosAfterEvent
)

// HookCtx is the information passed to a Hook.
type HookCtx struct {
	Now     float64
	Pos     HookPos
	Event   *PendingEvent
	Pending int // events still in the heap
}

// Hook observes the scheduler's event loop. Hooks must not mutate
// simulation state; they are for progress reporting and invariant checks.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func implements Hook.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}
