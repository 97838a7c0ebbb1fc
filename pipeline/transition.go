// Package pipeline owns the frame-delivery loop, its cancellation and
// retry lifecycle, and the transition/mode state machine that blurs the
// preview across a camera or format switch. It is adapted from the
// original capture loop controller and app-state transition machine.
package pipeline

import "time"

// clearBlurDelay is the duration after the first post-switch frame
// during which the preview stays blurred (§4.6).
const clearBlurDelay = 1000 * time.Millisecond

// TransitionState coordinates the "blur the last frame, disable
// interactive controls, then smoothly restore" behavior that masks the
// multi-hundred-ms gap caused by switching camera or format.
//
// It holds no goroutines or timers itself; callers drive it by calling
// Start when a switch begins and OnFrameReceived for every frame that
// arrives afterward, then check ShouldBlur to decide whether to render
// blurred. ClearDeadline reports when the transition is ready to end, so
// a caller on a ticking scheduler can call MaybeClear without running its own
// timer goroutine per transition.
type TransitionState struct {
	inTransition bool
	uiDisabled   bool
	firstFrame   *time.Time
}

// Start begins a transition: the UI is disabled and no frame has been
// seen yet. Matches the Idle -> InTransition edge in §4.6's table.
func (t *TransitionState) Start() {
	t.inTransition = true
	t.uiDisabled = true
	t.firstFrame = nil
}

// OnFrameReceived records the first frame to arrive after Start. Frames
// after the first are no-ops; only the first frame's arrival time
// matters for the blur-clear deadline.
func (t *TransitionState) OnFrameReceived(now time.Time) {
	if !t.inTransition {
		return
	}
	if t.firstFrame == nil {
		ts := now
		t.firstFrame = &ts
	}
}

// ShouldBlur reports whether the preview should render blurred right
// now. Per §4.6: blur is active iff in_transition AND (no first frame
// yet, OR less than 1s has passed since the first frame).
func (t *TransitionState) ShouldBlur(now time.Time) bool {
	if !t.inTransition {
		return false
	}
	if t.firstFrame == nil {
		return true
	}
	return now.Sub(*t.firstFrame) < clearBlurDelay
}

// ClearDeadline returns the time at which the transition should end, or
// the zero Time if no first frame has arrived yet (no deadline is armed
// until then).
func (t *TransitionState) ClearDeadline() time.Time {
	if t.firstFrame == nil {
		return time.Time{}
	}
	return t.firstFrame.Add(clearBlurDelay)
}

// MaybeClear ends the transition if now is past ClearDeadline, matching
// the InTransition -> Idle "ClearBlur timer fires" edge. It returns
// whether the transition was cleared.
func (t *TransitionState) MaybeClear(now time.Time) bool {
	if !t.inTransition || t.firstFrame == nil {
		return false
	}
	if now.Before(t.ClearDeadline()) {
		return false
	}
	t.clear()
	return true
}

// Clear forces the transition back to Idle regardless of timing,
// matching the "any -> Idle on force clear()" edge (used e.g. when the
// app is backgrounded mid-transition).
func (t *TransitionState) Clear() {
	t.clear()
}

func (t *TransitionState) clear() {
	t.inTransition = false
	t.uiDisabled = false
	t.firstFrame = nil
}

// InTransition reports whether a transition is in progress.
func (t *TransitionState) InTransition() bool { return t.inTransition }

// UIDisabled reports whether interactive controls should be disabled.
func (t *TransitionState) UIDisabled() bool { return t.uiDisabled }
