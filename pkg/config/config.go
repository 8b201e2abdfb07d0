package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the daemon's file-backed configuration. It carries daemon
// surface knobs only; controller state is never persisted.
type Config interface {
	// Variant overrides hardware auto-detection when non-empty.
	Variant() string
	// AllowNonRootAccess opens the control socket to non-root users.
	AllowNonRootAccess() bool
	// PollInterval is the control tick period.
	PollInterval() time.Duration

	SetVariant(string)
	SetAllowNonRootAccess(bool)
	SetPollInterval(time.Duration)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	// LogrusFields renders the effective config for startup logging.
	LogrusFields() logrus.Fields
}
