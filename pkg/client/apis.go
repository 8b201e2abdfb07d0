package client

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/pinekb/kbatt/pkg/config"
	"github.com/pinekb/kbatt/pkg/controller"
	"github.com/pinekb/kbatt/pkg/power"
)

// VariantInfo mirrors the daemon's /variant response.
type VariantInfo struct {
	Name                    string   `json:"name"`
	Limits                  []uint32 `json:"limits"`
	DefaultLimit            uint32   `json:"defaultLimit"`
	MaxLimit                uint32   `json:"maxLimit"`
	OfflineThresholdSeconds int      `json:"offlineThresholdSeconds"`
}

// GetTelemetry returns the most recent telemetry snapshot.
func (c *Client) GetTelemetry() (*power.Snapshot, error) {
	ret, err := c.Get("/telemetry")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get telemetry")
	}

	var snap power.Snapshot
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal telemetry")
	}
	return &snap, nil
}

// GetMemory returns the controller's cross-tick state.
func (c *Client) GetMemory() (*controller.Memory, error) {
	ret, err := c.Get("/memory")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get controller memory")
	}

	var mem controller.Memory
	if err := json.Unmarshal([]byte(ret), &mem); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal controller memory")
	}
	return &mem, nil
}

// GetVariant returns the active hardware variant and its limit table.
func (c *Client) GetVariant() (*VariantInfo, error) {
	ret, err := c.Get("/variant")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get hardware variant")
	}

	var v VariantInfo
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal hardware variant")
	}
	return &v, nil
}

// GetConfig returns the daemon's effective configuration.
func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

// GetBatteries returns the kernel's chemistry-level battery view.
func (c *Client) GetBatteries() ([]power.Chemistry, error) {
	ret, err := c.Get("/batteries")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var batteries []power.Chemistry
	if err := json.Unmarshal([]byte(ret), &batteries); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery info")
	}
	return batteries, nil
}

// GetVersion returns the daemon's build version.
func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get daemon version")
	}
	return strings.Trim(strings.TrimSpace(ret), `"`), nil
}

// ForceTick asks the daemon to run one control tick immediately.
func (c *Client) ForceTick() error {
	_, err := c.Put("/tick", "")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to force a control tick")
	}
	return nil
}
