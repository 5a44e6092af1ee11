// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/termweave/search.go
// Summary: Query the persistent search store.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termweave/termweave/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search captured scrollback history",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scfg := search.DefaultStoreConfig(filepath.Dir(cfg.SearchDBPath))
	scfg.DBPath = cfg.SearchDBPath
	store, err := search.NewStore(scfg)
	if err != nil {
		return fmt.Errorf("opening search store: %w", err)
	}
	defer store.Close()

	query := strings.Join(args, " ")
	results, err := store.Search(query, searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		marker := " "
		if r.IsCommand {
			marker = "$"
		}
		fmt.Printf("%s %s %6d  %s\n", r.Timestamp.Format("2006-01-02 15:04:05"), marker, r.Line, r.Content)
	}
	return nil
}
