package svcinstall

// rollback collects undo steps while an install progresses, so a failed
// activation can best-effort reverse everything applied so far. Undo
// failures are logged and never escalated: rollback must not mask the
// error that triggered it.
type rollback struct {
	steps []rollbackStep
}

type rollbackStep struct {
	what string
	undo func() error
}

// add records an undo step. Steps run in reverse registration order.
func (r *rollback) add(what string, undo func() error) {
	r.steps = append(r.steps, rollbackStep{what: what, undo: undo})
}

// run executes every recorded undo step, last first.
func (r *rollback) run() {
	for i := len(r.steps) - 1; i >= 0; i-- {
		step := r.steps[i]
		logger.Debugf("rolling back: %s", step.what)
		if err := step.undo(); err != nil {
			logger.Errorf("rollback of %s failed: %v", step.what, err)
		}
	}
}
