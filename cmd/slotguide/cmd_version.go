/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/slotguide/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("slotguide %s\n", version.Version)
		if !versionCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		info, err := version.NewChecker(zerolog.Nop()).Check(ctx)
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if info.UpdateAvailable {
			fmt.Printf("update available: %s (%s)\n", info.LatestVersion, info.ReleaseURL)
		} else {
			fmt.Println("up to date")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
