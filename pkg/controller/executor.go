package controller

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pinekb/kbatt/pkg/power"
	"github.com/pinekb/kbatt/pkg/variant"
)

// stepInterval is the minimum spacing between rate-limited actions. The
// hardware needs time to settle after a setpoint change before the next
// snapshot means anything.
const stepInterval = 10 * time.Second

// Writer applies setpoints to the hardware. Each method takes the
// currently-known value so implementations can skip no-op writes.
type Writer interface {
	SetBoostOnline(desired, cur bool) error
	SetInputLimit(limit, cur uint32) error
	SetKeyboardLimit(limit, cur uint32) error
}

// Executor applies decided actions to a Writer, enforcing the rate gate
// and the boost-converter offline recovery.
type Executor struct {
	dev     Writer
	variant variant.Variant
	now     func() time.Time
}

// NewExecutor returns an Executor using the wall clock.
func NewExecutor(dev Writer, v variant.Variant) *Executor {
	return &Executor{dev: dev, variant: v, now: time.Now}
}

// NewExecutorWithClock injects a clock. Used by tests.
func NewExecutorWithClock(dev Writer, v variant.Variant, now func() time.Time) *Executor {
	return &Executor{dev: dev, variant: v, now: now}
}

// Apply executes one action against the hardware and returns the updated
// memory. Before the action runs, the boost converter is force-enabled if
// it has been offline longer than the variant allows; it loses
// communication capability when left off too long, so disablement is
// never permanent.
func (e *Executor) Apply(action Action, snap *power.Snapshot, mem Memory) (Memory, error) {
	if !snap.Keyboard.BoostEnabled && e.now().Sub(mem.LastOffline) > e.variant.OfflineThreshold() {
		logrus.WithField("offlineFor", e.now().Sub(mem.LastOffline).String()).
			Info("boost converter offline too long, forcing online")
		mem.LastStep = e.now()
		if err := e.dev.SetBoostOnline(true, snap.Keyboard.BoostEnabled); err != nil {
			return mem, err
		}
	}

	switch action {
	case Pass:
		return mem, nil

	case MaybeStepUp:
		return e.maybeStep(mem, func(_ *Memory) error {
			return e.stepUp(snap)
		})

	case MaybeStepDown:
		return e.maybeStep(mem, func(m *Memory) error {
			return e.stepDown(snap, m)
		})

	case MaybeKeyboardPriorityUp:
		return e.maybeStep(mem, func(_ *Memory) error {
			if err := e.dev.SetBoostOnline(true, snap.Keyboard.BoostEnabled); err != nil {
				return err
			}
			lim := e.variant.LimitStep(true, snap.Main.Limit)
			if err := e.dev.SetKeyboardLimit(KeyboardBudget-lim, snap.Keyboard.Limit); err != nil {
				return err
			}
			return e.dev.SetInputLimit(lim, snap.Main.Limit)
		})

	case MaybeStepKeyboardUp:
		return e.maybeStep(mem, func(_ *Memory) error {
			if err := e.dev.SetBoostOnline(true, snap.Keyboard.BoostEnabled); err != nil {
				return err
			}
			if snap.Keyboard.Limit >= KeyboardBudget {
				return nil
			}
			next := snap.Keyboard.Limit + keyboardLimitStep
			if next > KeyboardBudget {
				next = KeyboardBudget
			}
			return e.dev.SetKeyboardLimit(next, snap.Keyboard.Limit)
		})

	case SetDefault:
		mem.LastStep = e.now()
		return mem, e.setBaseline(snap, e.variant.DefaultLimit())

	case SetMax:
		mem.LastStep = e.now()
		return mem, e.setBaseline(snap, e.variant.MaxLimit())
	}

	return mem, nil
}

// maybeStep runs f only if the rate gate is open, resetting the gate
// before f's side effects so a slow write cannot be re-entered.
func (e *Executor) maybeStep(mem Memory, f func(*Memory) error) (Memory, error) {
	if e.now().Sub(mem.LastStep) <= stepInterval {
		return mem, nil
	}
	mem.LastStep = e.now()
	err := f(&mem)
	return mem, err
}

// stepUp raises the shared input limit one rung. Bringing the keyboard
// back online takes priority over raising the limit.
func (e *Executor) stepUp(snap *power.Snapshot) error {
	if !snap.Keyboard.BoostEnabled {
		return e.dev.SetBoostOnline(true, snap.Keyboard.BoostEnabled)
	}
	return e.dev.SetInputLimit(e.variant.LimitStep(true, snap.Main.Limit), snap.Main.Limit)
}

// stepDown lowers the shared input limit one rung. At the table minimum
// there is no further rung, so the boost converter is cut off instead.
func (e *Executor) stepDown(snap *power.Snapshot, mem *Memory) error {
	if snap.Main.Limit == e.variant.MinLimit() {
		mem.LastOffline = e.now()
		return e.dev.SetBoostOnline(false, snap.Keyboard.BoostEnabled)
	}
	return e.dev.SetInputLimit(e.variant.LimitStep(false, snap.Main.Limit), snap.Main.Limit)
}

// setBaseline re-enables the boost converter, sets the shared input limit
// to the given value, and gives the keyboard charger the rest of the
// fixed budget.
func (e *Executor) setBaseline(snap *power.Snapshot, limit uint32) error {
	if err := e.dev.SetBoostOnline(true, snap.Keyboard.BoostEnabled); err != nil {
		return err
	}
	if err := e.dev.SetInputLimit(limit, snap.Main.Limit); err != nil {
		return err
	}
	return e.dev.SetKeyboardLimit(KeyboardBudget-e.variant.DefaultLimit(), snap.Keyboard.Limit)
}
