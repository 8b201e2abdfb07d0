package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewTickCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tick",
		GroupID: gAdvanced,
		Short:   "Force an immediate control tick",
		Long:    `Ask the daemon to run one arbitration tick now instead of waiting for the next poll interval.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := apiClient.ForceTick(); err != nil {
				return fmt.Errorf("failed to force a control tick: %v", err)
			}

			logrus.Infof("control tick executed")

			return nil
		},
	}
}
