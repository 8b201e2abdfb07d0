package power

// MainBattery is the phone-side view of one telemetry snapshot.
// Units: Voltage µV, Current µA (positive = charging), Limit µA (the
// shared USB input-current limit). SOC is nil when the gauge cannot
// report it.
type MainBattery struct {
	State   State  `json:"state"`
	Voltage uint32 `json:"voltage"`
	Current int32  `json:"current"`
	Limit   uint32 `json:"limit"`
	SOC     *int   `json:"soc,omitempty"`
}

// KeyboardBattery is the keyboard-side view of one telemetry snapshot.
// Limit is the keyboard charger's own constant-charge-current setting.
// BoostEnabled reports whether the keyboard's output boost converter,
// which back-feeds the phone, is switched on.
type KeyboardBattery struct {
	State        State  `json:"state"`
	Voltage      uint32 `json:"voltage"`
	Current      int32  `json:"current"`
	Limit        uint32 `json:"limit"`
	SOC          *int   `json:"soc,omitempty"`
	BoostEnabled bool   `json:"boostEnabled"`
}

// Snapshot is a read-only view of both power sources at one instant.
// It is produced fresh every tick and never mutated.
type Snapshot struct {
	Main     MainBattery     `json:"main"`
	Keyboard KeyboardBattery `json:"keyboard"`
}

// Chemistry mirrors the kernel's chemistry-level battery view as reported
// by the daemon's /batteries endpoint. Units follow the upstream battery
// library: capacities in mWh, rates in mW, voltages in V.
type Chemistry struct {
	Current       float64 `json:"Current"`
	Full          float64 `json:"Full"`
	Design        float64 `json:"Design"`
	ChargeRate    float64 `json:"ChargeRate"`
	Voltage       float64 `json:"Voltage"`
	DesignVoltage float64 `json:"DesignVoltage"`
}
