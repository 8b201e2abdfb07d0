package power

import (
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pinekb/kbatt/pkg/sysfs"
	"github.com/pinekb/kbatt/pkg/variant"
)

// Device knows where each power attribute lives for one hardware variant
// and performs the per-tick fan-out read plus the setpoint writes.
type Device struct {
	variant variant.Variant

	kbState   string
	kbSOC     string
	kbVoltage string
	kbCurrent string
	kbLimit   string
	kbOnline  string

	mbState   string
	mbSOC     string
	mbVoltage string
	mbCurrent string
	mbLimit   string
}

// NewDevice returns a Device rooted at the standard power-supply class
// directory.
func NewDevice(v variant.Variant) *Device {
	return NewDeviceAt(v, variant.PowerSupplyDir)
}

// NewDeviceAt roots the device at an alternate directory. Used by tests.
func NewDeviceAt(v variant.Variant, base string) *Device {
	d := &Device{
		variant:   v,
		kbState:   filepath.Join(base, "ip5xxx-charger/status"),
		kbSOC:     filepath.Join(base, "ip5xxx-charger/capacity"),
		kbVoltage: filepath.Join(base, "ip5xxx-charger/voltage_now"),
		kbCurrent: filepath.Join(base, "ip5xxx-charger/current_now"),
		kbLimit:   filepath.Join(base, "ip5xxx-charger/constant_charge_current"),
		kbOnline:  filepath.Join(base, "ip5xxx-boost/online"),
	}
	switch v {
	case variant.PinePhonePro:
		d.mbState = filepath.Join(base, "battery/status")
		d.mbSOC = filepath.Join(base, "battery/capacity")
		d.mbVoltage = filepath.Join(base, "battery/voltage_now")
		d.mbCurrent = filepath.Join(base, "battery/current_now")
		d.mbLimit = filepath.Join(base, "rk818-usb/input_current_limit")
	default:
		d.mbState = filepath.Join(base, "axp20x-battery/status")
		d.mbSOC = filepath.Join(base, "axp20x-battery/capacity")
		d.mbVoltage = filepath.Join(base, "axp20x-battery/voltage_now")
		d.mbCurrent = filepath.Join(base, "axp20x-battery/current_now")
		d.mbLimit = filepath.Join(base, "axp20x-usb/input_current_limit")
	}
	return d
}

// Variant returns the hardware variant this device was built for.
func (d *Device) Variant() variant.Variant {
	return d.variant
}

// Snapshot reads every attribute once and returns a consistent view of
// both power sources. Any failed read fails the snapshot, except
// state-of-charge, which not every gauge exposes: an unreadable SOC is
// reported as absent.
func (d *Device) Snapshot() (*Snapshot, error) {
	kb, err := d.readKeyboard()
	if err != nil {
		return nil, err
	}
	mb, err := d.readMain()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Main: mb, Keyboard: kb}, nil
}

func (d *Device) readKeyboard() (KeyboardBattery, error) {
	var kb KeyboardBattery

	s, err := sysfs.ReadString(d.kbState)
	if err != nil {
		return kb, err
	}
	kb.State, err = ParseState(s)
	if err != nil {
		return kb, pkgerrors.Wrapf(err, "keyboard battery")
	}
	if kb.Voltage, err = sysfs.ReadUint32(d.kbVoltage); err != nil {
		return kb, err
	}
	if kb.Current, err = sysfs.ReadInt32(d.kbCurrent); err != nil {
		return kb, err
	}
	if kb.Limit, err = sysfs.ReadUint32(d.kbLimit); err != nil {
		return kb, err
	}
	if kb.BoostEnabled, err = sysfs.ReadBool(d.kbOnline); err != nil {
		return kb, err
	}
	if soc, err := sysfs.ReadInt(d.kbSOC); err == nil {
		kb.SOC = &soc
	}
	return kb, nil
}

func (d *Device) readMain() (MainBattery, error) {
	var mb MainBattery

	limit, err := sysfs.ReadUint32(d.mbLimit)
	if err != nil {
		return mb, err
	}
	mb.Limit = limit

	raw, err := sysfs.ReadInt32(d.mbCurrent)
	if err != nil {
		return mb, err
	}
	mb.Current = d.variant.CorrectMainCurrent(raw, mb.Limit)

	s, err := sysfs.ReadString(d.mbState)
	if err != nil {
		return mb, err
	}
	state, err := ParseState(s)
	if err != nil {
		return mb, pkgerrors.Wrapf(err, "main battery")
	}
	// The status attribute lags reality: the charger can report Charging
	// while the battery is in fact draining. Trust the current sign.
	if state == Charging && mb.Current <= 0 {
		state = Discharging
	}
	mb.State = state

	if mb.Voltage, err = sysfs.ReadUint32(d.mbVoltage); err != nil {
		return mb, err
	}
	if soc, err := sysfs.ReadInt(d.mbSOC); err == nil {
		mb.SOC = &soc
	}
	return mb, nil
}

// SetBoostOnline switches the keyboard's boost converter, skipping the
// write when the hardware already matches.
func (d *Device) SetBoostOnline(desired, cur bool) error {
	if desired == cur {
		return nil
	}
	logrus.WithField("online", desired).Info("switching boost converter")
	return sysfs.WriteBool(d.kbOnline, desired)
}

// SetInputLimit sets the shared USB input-current limit, skipping the
// write when the hardware already matches.
func (d *Device) SetInputLimit(limit, cur uint32) error {
	if limit == cur {
		return nil
	}
	logrus.WithField("limitmA", limit/1000).Info("setting input current limit")
	return sysfs.WriteUint32(d.mbLimit, limit)
}

// SetKeyboardLimit sets the keyboard charger's constant-charge-current
// cap, skipping the write when the hardware already matches.
func (d *Device) SetKeyboardLimit(limit, cur uint32) error {
	if limit == cur {
		return nil
	}
	logrus.WithField("limitmA", limit/1000).Info("setting keyboard charge current limit")
	return sysfs.WriteUint32(d.kbLimit, limit)
}
