// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/termweave/restore.go
// Summary: Print the screen content of the latest checkpoint.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termweave/termweave/checkpoint"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Show the visible screen of the most recent session checkpoint",
	Args:  cobra.NoArgs,
	RunE:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := checkpoint.LatestSession(cfg.Checkpoint.Dir)
	if err != nil {
		return err
	}
	mcfg := cfg.Checkpoint
	mcfg.Dir = session
	g, sb, err := checkpoint.NewManager(mcfg).Restore()
	if err != nil {
		return err
	}

	fmt.Println(g.VisibleContent())
	if sb != nil {
		fmt.Printf("(%d scrollback lines, %d retained)\n",
			sb.LineCount(), sb.LineCount()-sb.OldestRetained())
	}
	return nil
}
