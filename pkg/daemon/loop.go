package daemon

import (
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pinekb/kbatt/pkg/controller"
	"github.com/pinekb/kbatt/pkg/power"
	"github.com/pinekb/kbatt/pkg/variant"
)

// controlLoop runs one arbitration tick per poll interval: snapshot,
// decide, log, execute. The mutex serializes scheduled ticks with ticks
// forced over the API; memory is owned exclusively by this loop.
type controlLoop struct {
	mu sync.Mutex

	dev      *power.Device
	variant  variant.Variant
	exec     *controller.Executor
	mem      controller.Memory
	interval time.Duration

	lastSnapshot *power.Snapshot
	lastLogged   tickStatus
	everLogged   bool
}

func newControlLoop(dev *power.Device, v variant.Variant, interval time.Duration) *controlLoop {
	return &controlLoop{
		dev:      dev,
		variant:  v,
		exec:     controller.NewExecutor(dev, v),
		mem:      controller.NewMemory(time.Now()),
		interval: interval,
	}
}

// run ticks until stop is closed. A failed tick is logged and retried on
// the next interval; the fixed period is the retry cadence.
func (l *controlLoop) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-time.After(l.interval):
		}

		if err := l.tick(); err != nil {
			logrus.WithError(err).Error("control tick failed, will retry")
		}
	}
}

func (l *controlLoop) tick() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.dev.Snapshot()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read telemetry")
	}
	l.lastSnapshot = snap

	action, mem := controller.Decide(l.mem, l.variant, snap)
	l.mem = mem

	l.logTick(snap, action)

	l.mem, err = l.exec.Apply(action, snap, l.mem)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to apply action %s", action)
	}
	return nil
}

// telemetry returns the most recent snapshot and the controller memory,
// reading a fresh snapshot if no tick has completed yet.
func (l *controlLoop) telemetry() (*power.Snapshot, controller.Memory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSnapshot != nil {
		return l.lastSnapshot, l.mem, nil
	}
	snap, err := l.dev.Snapshot()
	if err != nil {
		return nil, l.mem, err
	}
	l.lastSnapshot = snap
	return snap, l.mem, nil
}

// restoreDefaults puts the hardware back to its safe baseline. Called on
// shutdown so an unsupervised device does not keep an aggressive limit.
func (l *controlLoop) restoreDefaults() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.dev.Snapshot()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read telemetry")
	}
	l.mem, err = l.exec.Apply(controller.SetDefault, snap, l.mem)
	return err
}

// tickStatus is the comparable digest of one tick used to dedup logging.
type tickStatus struct {
	mbState power.State
	mbLimit uint32
	mbSOC   int
	kbState power.State
	kbLimit uint32
	kbSOC   int
	boost   bool
	action  controller.Action
}

// logTick logs the telemetry line the way the hardware people expect it:
// both sources side by side, plus the decided action. Unchanged ticks are
// demoted to trace so an idle loop stays quiet.
func (l *controlLoop) logTick(snap *power.Snapshot, action controller.Action) {
	cur := tickStatus{
		mbState: snap.Main.State,
		mbLimit: snap.Main.Limit,
		mbSOC:   socOrNegative(snap.Main.SOC),
		kbState: snap.Keyboard.State,
		kbLimit: snap.Keyboard.Limit,
		kbSOC:   socOrNegative(snap.Keyboard.SOC),
		boost:   snap.Keyboard.BoostEnabled,
		action:  action,
	}

	entry := logrus.WithFields(logrus.Fields{
		"mbVoltage": snap.Main.Voltage / 1000,
		"mbCurrent": snap.Main.Current / 1000,
		"mbState":   snap.Main.State.String(),
		"mbLimit":   snap.Main.Limit / 1000,
		"mbSOC":     socString(snap.Main.SOC),
		"kbVoltage": snap.Keyboard.Voltage / 1000,
		"kbCurrent": snap.Keyboard.Current / 1000,
		"kbState":   snap.Keyboard.State.String(),
		"kbLimit":   snap.Keyboard.Limit / 1000,
		"kbSOC":     socString(snap.Keyboard.SOC),
		"boost":     snap.Keyboard.BoostEnabled,
		"action":    action.String(),
	})

	if l.everLogged && cur == l.lastLogged {
		entry.Trace("control tick")
		return
	}

	entry.Info("control tick")
	l.lastLogged = cur
	l.everLogged = true
}

func socOrNegative(soc *int) int {
	if soc == nil {
		return -1
	}
	return *soc
}

func socString(soc *int) string {
	if soc == nil {
		return "n/a"
	}
	return strconv.Itoa(*soc)
}
