package power

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pinekb/kbatt/pkg/variant"
)

// fakeSupply creates a power-supply tree under dir with the given
// attribute contents.
func fakeSupply(t *testing.T, dir string, attrs map[string]string) {
	t.Helper()
	for name, content := range attrs {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func pinePhoneAttrs() map[string]string {
	return map[string]string{
		"ip5xxx-charger/status":                  "Discharging\n",
		"ip5xxx-charger/capacity":                "80\n",
		"ip5xxx-charger/voltage_now":             "3700000\n",
		"ip5xxx-charger/current_now":             "-200000\n",
		"ip5xxx-charger/constant_charge_current": "1800000\n",
		"ip5xxx-boost/online":                    "1\n",
		"axp20x-battery/status":                  "Charging\n",
		"axp20x-battery/capacity":                "55\n",
		"axp20x-battery/voltage_now":             "3900000\n",
		"axp20x-battery/current_now":             "450000\n",
		"axp20x-usb/input_current_limit":         "900000\n",
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	fakeSupply(t, dir, pinePhoneAttrs())
	dev := NewDeviceAt(variant.PinePhone, dir)

	snap, err := dev.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if snap.Main.State != Charging {
		t.Errorf("main state = %v, want Charging", snap.Main.State)
	}
	if snap.Main.Current != 450000 {
		t.Errorf("main current = %d, want 450000", snap.Main.Current)
	}
	if snap.Main.Limit != 900000 {
		t.Errorf("main limit = %d, want 900000", snap.Main.Limit)
	}
	if snap.Main.SOC == nil || *snap.Main.SOC != 55 {
		t.Errorf("main soc = %v, want 55", snap.Main.SOC)
	}
	if snap.Keyboard.State != Discharging {
		t.Errorf("keyboard state = %v, want Discharging", snap.Keyboard.State)
	}
	if snap.Keyboard.Current != -200000 {
		t.Errorf("keyboard current = %d, want -200000", snap.Keyboard.Current)
	}
	if !snap.Keyboard.BoostEnabled {
		t.Error("keyboard boost should be enabled")
	}
}

func TestSnapshotReclassifiesLaggingChargingStatus(t *testing.T) {
	dir := t.TempDir()
	attrs := pinePhoneAttrs()
	// Status still says Charging but the battery is draining.
	attrs["axp20x-battery/current_now"] = "-120000\n"
	fakeSupply(t, dir, attrs)
	dev := NewDeviceAt(variant.PinePhone, dir)

	snap, err := dev.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Main.State != Discharging {
		t.Errorf("main state = %v, want Discharging", snap.Main.State)
	}
}

func TestSnapshotAppliesSignHeuristic(t *testing.T) {
	dir := t.TempDir()
	attrs := pinePhoneAttrs()
	// The axp20x gauge reports magnitudes only. 2600000 exceeds
	// 1.25x the 2000000 limit, so the true current must be negative.
	attrs["axp20x-usb/input_current_limit"] = "2000000\n"
	attrs["axp20x-battery/current_now"] = "2600000\n"
	fakeSupply(t, dir, attrs)
	dev := NewDeviceAt(variant.PinePhone, dir)

	snap, err := dev.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Main.Current != -2600001 {
		t.Errorf("main current = %d, want -2600001", snap.Main.Current)
	}
	if snap.Main.State != Discharging {
		t.Errorf("main state = %v, want Discharging", snap.Main.State)
	}
}

func TestSnapshotMissingSOCDegrades(t *testing.T) {
	dir := t.TempDir()
	attrs := pinePhoneAttrs()
	delete(attrs, "ip5xxx-charger/capacity")
	delete(attrs, "axp20x-battery/capacity")
	fakeSupply(t, dir, attrs)
	dev := NewDeviceAt(variant.PinePhone, dir)

	snap, err := dev.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Keyboard.SOC != nil {
		t.Errorf("keyboard soc = %v, want nil", snap.Keyboard.SOC)
	}
	if snap.Main.SOC != nil {
		t.Errorf("main soc = %v, want nil", snap.Main.SOC)
	}
}

func TestSnapshotFailsOnMissingAttribute(t *testing.T) {
	dir := t.TempDir()
	attrs := pinePhoneAttrs()
	delete(attrs, "axp20x-battery/voltage_now")
	fakeSupply(t, dir, attrs)
	dev := NewDeviceAt(variant.PinePhone, dir)

	if _, err := dev.Snapshot(); err == nil {
		t.Error("Snapshot() should fail when a required attribute is missing")
	}
}

func TestSnapshotFailsOnUnknownStatus(t *testing.T) {
	dir := t.TempDir()
	attrs := pinePhoneAttrs()
	attrs["ip5xxx-charger/status"] = "Bogus\n"
	fakeSupply(t, dir, attrs)
	dev := NewDeviceAt(variant.PinePhone, dir)

	if _, err := dev.Snapshot(); err == nil {
		t.Error("Snapshot() should fail on an unknown status string")
	}
}

func TestSetInputLimitSkipsNoopWrite(t *testing.T) {
	dir := t.TempDir()
	fakeSupply(t, dir, pinePhoneAttrs())
	dev := NewDeviceAt(variant.PinePhone, dir)

	// Same value: the attribute file must stay untouched.
	if err := dev.SetInputLimit(900000, 900000); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "axp20x-usb/input_current_limit"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "900000\n" {
		t.Errorf("attribute rewritten to %q on a no-op", string(b))
	}

	if err := dev.SetInputLimit(1500000, 900000); err != nil {
		t.Fatal(err)
	}
	b, err = os.ReadFile(filepath.Join(dir, "axp20x-usb/input_current_limit"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "1500000\n" {
		t.Errorf("attribute = %q, want %q", string(b), "1500000\n")
	}
}

func TestSetBoostOnline(t *testing.T) {
	dir := t.TempDir()
	fakeSupply(t, dir, pinePhoneAttrs())
	dev := NewDeviceAt(variant.PinePhone, dir)

	if err := dev.SetBoostOnline(false, true); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "ip5xxx-boost/online"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "0" {
		t.Errorf("online attribute = %q, want %q", string(b), "0")
	}
}
