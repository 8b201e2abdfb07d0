package controller

import (
	"github.com/pinekb/kbatt/pkg/power"
	"github.com/pinekb/kbatt/pkg/variant"
)

// Policy constants. All currents and voltages are exact integer
// microunits; nothing here is derived or tunable.
const (
	// KeyboardBudget is the total charge current, in µA, split between
	// the keyboard charger and the shared input limit.
	KeyboardBudget = 2300000
	// keyboardLimitStep is the increment, in µA, by which the keyboard's
	// charge-current cap climbs while under budget.
	keyboardLimitStep = 100000
	// socFloor is the main-battery state of charge, in percent, below
	// which keeping the main battery alive outranks the keyboard.
	socFloor = 30
	// voltageBand is the hysteresis band, in µV, for comparing the two
	// sources' voltages while both discharge.
	voltageBand = 150000
)

// Decide maps the controller memory and one telemetry snapshot to an
// action. It is pure: the snapshot is never mutated and state changes
// come back in the returned memory.
func Decide(mem Memory, v variant.Variant, snap *power.Snapshot) (Action, Memory) {
	switch snap.Keyboard.State {
	case power.Charging:
		if !mem.KBCharging {
			// First tick of a charge session: reset both limits to a
			// known baseline before the arbitration starts.
			mem.KBCharging = true
			return SetDefault, mem
		}
		return decideKeyboardCharging(v, snap), mem

	case power.Full:
		if snap.Keyboard.BoostEnabled && mem.KBCharging {
			return SetMax, mem
		}
		return SetDefault, mem

	default: // power.Discharging
		if mem.KBCharging {
			mem.KBCharging = false
			return SetDefault, mem
		}
		return decideKeyboardDischarging(v, snap), mem
	}
}

// decideKeyboardCharging arbitrates while the keyboard accepts charge:
// grow the shared input limit as long as the total stays under the
// keyboard budget (plus 6.25% headroom) and the main battery still
// drains, otherwise rebalance or back off.
func decideKeyboardCharging(v variant.Variant, snap *power.Snapshot) Action {
	ceiling := KeyboardBudget + KeyboardBudget>>4
	kbCurrent := int(snap.Keyboard.Current)
	netTotal := kbCurrent + int(snap.Main.Limit)
	nextLimit := int(v.LimitStep(true, snap.Main.Limit))

	switch {
	case kbCurrent+nextLimit < ceiling && snap.Main.Current < 0:
		return MaybeStepUp
	case snap.Main.Current < 0:
		return MaybeKeyboardPriorityUp
	case netTotal >= ceiling:
		return MaybeStepDown
	case netTotal < KeyboardBudget:
		return MaybeStepKeyboardUp
	}
	return Pass
}

// decideKeyboardDischarging arbitrates while the keyboard battery itself
// supplies power.
func decideKeyboardDischarging(v variant.Variant, snap *power.Snapshot) Action {
	switch snap.Main.State {
	case power.Full:
		return SetDefault

	case power.Charging:
		if mainSOC(snap) > socFloor {
			return MaybeStepDown
		}
		// Keep the main battery above the floor for as long as possible,
		// even if that means charging it from the keyboard.
		delta := snap.Main.Limit - v.LimitStep(false, snap.Main.Limit)
		if snap.Main.Current > 0 && delta < uint32(snap.Main.Current) {
			return MaybeStepDown
		}
		return Pass

	default: // power.Discharging
		if mainSOC(snap) <= socFloor {
			// Both sources draining and the main battery is low: prefer
			// draining the keyboard.
			return MaybeStepUp
		}
		return decideBothDischarging(snap)
	}
}

// decideBothDischarging balances two draining sources by voltage, with a
// hysteresis band so the limit does not oscillate, falling back to
// current magnitude inside the band.
func decideBothDischarging(snap *power.Snapshot) Action {
	mbv := snap.Main.Voltage
	kbv := snap.Keyboard.Voltage
	mbc := abs32(snap.Main.Current)
	kbc := abs32(snap.Keyboard.Current)

	switch {
	case mbv > kbv && mbv-kbv > voltageBand:
		return MaybeStepDown
	case (mbv >= kbv && mbv-kbv < voltageBand) || (kbv >= mbv && kbv-mbv < voltageBand):
		return Pass
	case mbc > kbc:
		return MaybeStepUp
	}
	return Pass
}

// mainSOC treats an unavailable state of charge as at the floor, so the
// protective branches apply.
func mainSOC(snap *power.Snapshot) int {
	if snap.Main.SOC == nil {
		return socFloor
	}
	return *snap.Main.SOC
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
