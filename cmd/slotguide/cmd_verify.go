/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/slotguide/internal/m3u"
	"github.com/friendsincode/slotguide/internal/shell"
	"github.com/friendsincode/slotguide/internal/verify"
)

var (
	verifyJSON   bool
	verifyStrict bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report how much of a playlist the family table covers",
	Long: `Match every live playlist entry against the family table and list the numbered
streams and event channels that no family claims.

Examples:
  slotguide verify --playlist playlist.m3u
  slotguide verify -p playlist.m3u --json --strict
`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print the report as JSON")
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "Exit non-zero unless the verdict is complete or good")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}
	if cfg.Playlist == "" {
		return errors.New("a playlist is required (--playlist or SLOTGUIDE_PLAYLIST)")
	}

	r, err := loadRules()
	if err != nil {
		return err
	}
	pl, err := m3u.NewLoader(cfg.FetchTimeout, logger).Load(context.Background(), cfg.Playlist)
	if err != nil {
		return err
	}

	report := verify.Check(pl, shell.NewMatcher(r))
	if verifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(struct {
			*verify.Report
			Verdict verify.Verdict `json:"verdict"`
		}{report, report.Verdict()})
	} else {
		err = report.Write(os.Stdout)
	}
	if err != nil {
		return err
	}

	if verifyStrict {
		switch report.Verdict() {
		case verify.VerdictComplete, verify.VerdictGood:
		default:
			return errors.New("playlist needs family table review")
		}
	}
	return nil
}
