package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pinekb/kbatt/pkg/controller"
	"github.com/pinekb/kbatt/pkg/power"
)

type statusData struct {
	snap      *power.Snapshot
	mem       *controller.Memory
	variant   *clientVariant
	batteries []power.Chemistry
}

type clientVariant struct {
	name         string
	limits       []uint32
	defaultLimit uint32
	maxLimit     uint32
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	snap, err := apiClient.GetTelemetry()
	if err != nil {
		return nil, fmt.Errorf("failed to get telemetry: %w", err)
	}

	mem, err := apiClient.GetMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get controller memory: %w", err)
	}

	v, err := apiClient.GetVariant()
	if err != nil {
		return nil, fmt.Errorf("failed to get hardware variant: %w", err)
	}

	// Chemistry info is best-effort; not every kernel exposes it fully.
	batteries, err := apiClient.GetBatteries()
	if err != nil {
		batteries = nil
	}

	return &statusData{
		snap: snap,
		mem:  mem,
		variant: &clientVariant{
			name:         v.Name,
			limits:       v.Limits,
			defaultLimit: v.DefaultLimit,
			maxLimit:     v.MaxLimit,
		},
		batteries: batteries,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of kbatt",
		Long:    `Get the power state of both batteries, the active hardware variant, and the controller state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			cmd.Println(bold("Hardware:"))
			cmd.Printf("  Variant: %s\n", bold("%s", data.variant.name))
			cmd.Printf("  Input current ladder: %s\n", bold("%s", limitLadder(data.variant.limits)))
			cmd.Printf("  Default/max input limit: %s\n",
				bold("%d mA / %d mA", data.variant.defaultLimit/1000, data.variant.maxLimit/1000))

			cmd.Println()
			cmd.Println(bold("Phone battery:"))
			printSource(cmd, data.snap.Main.State, data.snap.Main.Voltage, data.snap.Main.Current,
				data.snap.Main.Limit, data.snap.Main.SOC)

			cmd.Println()
			cmd.Println(bold("Keyboard battery:"))
			printSource(cmd, data.snap.Keyboard.State, data.snap.Keyboard.Voltage, data.snap.Keyboard.Current,
				data.snap.Keyboard.Limit, data.snap.Keyboard.SOC)
			cmd.Println("  Boost converter: " + bool2Text(data.snap.Keyboard.BoostEnabled))

			cmd.Println()
			cmd.Println(bold("Controller:"))
			cmd.Println("  Keyboard charge session: " + bool2Text(data.mem.KBCharging))
			cmd.Printf("  Last rate-limited action: %s\n", bold("%s", data.mem.LastStep.Format("15:04:05")))
			cmd.Printf("  Boost last switched off: %s\n", bold("%s", data.mem.LastOffline.Format("15:04:05")))

			if len(data.batteries) > 0 {
				cmd.Println()
				cmd.Println(bold("Chemistry (kernel view):"))
				for i, bat := range data.batteries {
					cmd.Printf("  Battery %d: %s of %s, rate %s\n", i,
						bold("%.0f mWh", bat.Current),
						bold("%.0f mWh", bat.Full),
						rateText(bat.ChargeRate, "mW"))
				}
			}

			return nil
		},
	}
}

func printSource(cmd *cobra.Command, state power.State, voltage uint32, current int32, limit uint32, soc *int) {
	cmd.Printf("  State: %s\n", stateText(state))
	cmd.Printf("  Voltage: %s\n", bold("%.3f V", float64(voltage)/1e6))
	cmd.Printf("  Current: %s\n", rateText(float64(current)/1000, "mA"))
	cmd.Printf("  Current limit: %s\n", bold("%d mA", limit/1000))
	if soc != nil {
		cmd.Printf("  Charge: %s\n", bold("%d%%", *soc))
	} else {
		cmd.Printf("  Charge: %s\n", bold("n/a"))
	}
}

func stateText(state power.State) string {
	switch state {
	case power.Charging:
		return color.GreenString("charging")
	case power.Discharging:
		return color.RedString("discharging")
	case power.Full:
		return "full"
	}
	return state.String()
}

func rateText(v float64, unit string) string {
	switch {
	case v > 0:
		return color.New(color.Bold, color.FgGreen).Sprintf("%+.0f %s", v, unit)
	case v < 0:
		return color.New(color.Bold, color.FgRed).Sprintf("%+.0f %s", v, unit)
	}
	return bold("%+.0f %s", v, unit)
}

func limitLadder(limits []uint32) string {
	s := ""
	for i, l := range limits {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", l/1000)
	}
	return s + " mA"
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
