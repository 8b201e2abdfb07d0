package controller

import "time"

// Memory is the only controller state carried across ticks. It is owned
// by the control loop, never persisted, and reset on every process start.
type Memory struct {
	// KBCharging records whether a keyboard charge session has been
	// entered.
	KBCharging bool `json:"kbCharging"`
	// LastStep is when the last rate-limited action fired.
	LastStep time.Time `json:"lastStep"`
	// LastOffline is when the boost converter was last switched off.
	LastOffline time.Time `json:"lastOffline"`
}

// NewMemory returns the startup state: no session, both timers anchored
// at now.
func NewMemory(now time.Time) Memory {
	return Memory{KBCharging: false, LastStep: now, LastOffline: now}
}
