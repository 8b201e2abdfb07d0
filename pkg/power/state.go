package power

import "fmt"

// State is the charging state of one power source.
type State int

const (
	// Discharging indicates the source is supplying power.
	Discharging State = iota
	// Charging indicates the source is accepting charge.
	Charging
	// Full indicates the source is satisfied.
	Full
)

func (s State) String() string {
	switch s {
	case Discharging:
		return "Discharging"
	case Charging:
		return "Charging"
	case Full:
		return "Full"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState maps a kernel status string to a State. "Not charging" is
// what the keyboard charger reports once its battery is satisfied, so it
// parses as Full.
func ParseState(s string) (State, error) {
	switch s {
	case "Charging":
		return Charging, nil
	case "Discharging":
		return Discharging, nil
	case "Full", "Not charging":
		return Full, nil
	}
	return 0, fmt.Errorf("unexpected power supply status %q", s)
}
