// Package controller contains the input-current arbitration policy: the
// per-tick decision engine and the executor that applies its decisions to
// the hardware under a rate limit.
package controller

// Action is one discrete hardware adjustment decided per tick. Maybe*
// actions are subject to the executor's rate gate; SetDefault and SetMax
// are mode transitions and apply immediately.
type Action int

const (
	// Pass leaves the hardware alone this tick.
	Pass Action = iota
	// MaybeStepUp raises the shared input limit one rung (or brings the
	// boost converter back online first).
	MaybeStepUp
	// MaybeStepDown lowers the shared input limit one rung (or cuts the
	// boost converter off entirely when already at the minimum).
	MaybeStepDown
	// MaybeKeyboardPriorityUp shifts budget toward the keyboard's own
	// charge limit while stepping the shared input limit.
	MaybeKeyboardPriorityUp
	// MaybeStepKeyboardUp raises the keyboard's charge-current cap.
	MaybeStepKeyboardUp
	// SetDefault resets both limits to safe defaults.
	SetDefault
	// SetMax gives the main battery the maximum input current.
	SetMax
)

func (a Action) String() string {
	switch a {
	case Pass:
		return "pass"
	case MaybeStepUp:
		return "maybe-step-up"
	case MaybeStepDown:
		return "maybe-step-down"
	case MaybeKeyboardPriorityUp:
		return "maybe-keyboard-priority-up"
	case MaybeStepKeyboardUp:
		return "maybe-step-keyboard-up"
	case SetDefault:
		return "set-default"
	case SetMax:
		return "set-max"
	}
	return "unknown"
}

// RateLimited reports whether the action passes through the executor's
// rate gate.
func (a Action) RateLimited() bool {
	switch a {
	case MaybeStepUp, MaybeStepDown, MaybeKeyboardPriorityUp, MaybeStepKeyboardUp:
		return true
	}
	return false
}
