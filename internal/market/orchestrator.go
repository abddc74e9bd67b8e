package market

import "sync"

// attemptState is the tagged variant for one transaction attempt. The
// single-in-flight rule is a checked field here, not an artifact of
// call-site ordering.
type attemptState uint8

const (
	stateIdle attemptState = iota
	stateValidating
	stateSubmitting
	stateConfirming
	stateSucceeded
	stateFailed
)

// Orchestrator gates the mutating flows. Exactly one attempt may hold
// the gate at a time system-wide; a second request is rejected with
// ErrBusy immediately, never deferred.
type Orchestrator struct {
	mu    sync.Mutex
	state attemptState
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{state: stateIdle}
}

// TryBegin claims the gate for a new attempt.
func (o *Orchestrator) TryBegin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != stateIdle {
		return ErrBusy
	}
	o.state = stateValidating
	return nil
}

func (o *Orchestrator) to(s attemptState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// End releases the gate after a terminal state. The attempt's triggered
// rebuilds run before End, so the gate spans submission through the
// refreshed view, matching the externally observable loading flag.
func (o *Orchestrator) End() {
	o.mu.Lock()
	o.state = stateIdle
	o.mu.Unlock()
}

// Loading reports whether an attempt is past validation and not yet
// released. This is the single flag the presentation layer observes.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case stateSubmitting, stateConfirming, stateSucceeded, stateFailed:
		return true
	default:
		return false
	}
}
