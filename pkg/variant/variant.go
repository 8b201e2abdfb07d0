// Package variant holds the per-model static data the controller depends
// on: the discrete input-current-limit ladders, the boost-converter offline
// threshold, and the current-sign correction for models whose fuel gauge
// cannot report one.
package variant

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Variant is a supported hardware model.
type Variant int

const (
	// PinePhone is the original PinePhone (axp20x PMIC).
	PinePhone Variant = iota
	// PinePhonePro is the PinePhone Pro (rk818 PMIC).
	PinePhonePro
)

// PowerSupplyDir is the power-supply class directory. Only tests change it.
var PowerSupplyDir = "/sys/class/power_supply"

var (
	pinePhoneLimits    = []uint32{500000, 900000, 1500000, 2000000}
	pinePhoneProLimits = []uint32{450000, 850000, 1000000, 1250000, 1500000, 2000000}
)

func (v Variant) String() string {
	switch v {
	case PinePhone:
		return "pinephone"
	case PinePhonePro:
		return "pinephone-pro"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Parse returns the variant named by s, as used in the config file.
func Parse(s string) (Variant, error) {
	switch s {
	case "pinephone":
		return PinePhone, nil
	case "pinephone-pro":
		return PinePhonePro, nil
	}
	return 0, fmt.Errorf("unknown hardware variant %q", s)
}

// Detect probes the power-supply class for a known USB charger device.
func Detect() (Variant, error) {
	if _, err := os.Stat(filepath.Join(PowerSupplyDir, "rk818-usb")); err == nil {
		return PinePhonePro, nil
	}
	if _, err := os.Stat(filepath.Join(PowerSupplyDir, "axp20x-usb")); err == nil {
		return PinePhone, nil
	}
	return 0, fmt.Errorf("cannot identify hardware variant: no known usb power supply under %s", PowerSupplyDir)
}

// Limits returns the values the hardware accepts for the shared USB
// input-current limit, in µA, strictly increasing.
func (v Variant) Limits() []uint32 {
	switch v {
	case PinePhonePro:
		return pinePhoneProLimits
	default:
		return pinePhoneLimits
	}
}

// DefaultLimit is the safe baseline input-current limit.
func (v Variant) DefaultLimit() uint32 {
	return v.Limits()[0]
}

// MaxLimit is the highest input-current limit the model accepts.
func (v Variant) MaxLimit() uint32 {
	limits := v.Limits()
	return limits[len(limits)-1]
}

// MinLimit is the lowest input-current limit the model accepts.
func (v Variant) MinLimit() uint32 {
	return v.Limits()[0]
}

// LimitStep returns the ladder entry adjacent to cur in the given
// direction, clamped at the ends. A cur that matches no ladder entry means
// the hardware holds a value we never wrote (stale or out of band); the
// fixed third entry is returned to bring it back in range.
func (v Variant) LimitStep(up bool, cur uint32) uint32 {
	limits := v.Limits()
	for i, l := range limits {
		if l != cur {
			continue
		}
		if up {
			if i+1 < len(limits) {
				return limits[i+1]
			}
			return limits[len(limits)-1]
		}
		if i == 0 {
			return limits[0]
		}
		return limits[i-1]
	}
	return limits[2]
}

// OfflineThreshold is how long the boost converter may stay disabled
// before it must be forced back online. Leaving it off longer risks losing
// communication with the keyboard charge controller.
func (v Variant) OfflineThreshold() time.Duration {
	switch v {
	case PinePhonePro:
		return 20 * time.Second
	default:
		return 30 * time.Second
	}
}

// CorrectMainCurrent fixes up the main-battery current reading. The
// PinePhone fuel gauge reports only the magnitude of the current; when the
// magnitude exceeds 1.25x the active input limit the real value cannot be
// a charge current, so it is taken to be the bitwise complement of a
// negative reading. This catches the obvious cases only and is wrong near
// the threshold; it matches the gauge's observed behavior and must not be
// made cleverer.
func (v Variant) CorrectMainCurrent(raw int32, limit uint32) int32 {
	if v != PinePhone {
		return raw
	}
	if raw > int32(limit)+int32(limit)>>2 {
		return ^raw
	}
	return raw
}
