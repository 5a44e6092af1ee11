// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/termweave/root.go
// Summary: Root cobra command and shared setup.

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/termweave/termweave/config"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:               "termweave",
		Short:             "A terminal engine with searchable history and durable sessions",
		Version:           "0.1.0",
		Run:               runRoot,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runRoot(cmd *cobra.Command, args []string) {
	cmd.Help()
}

// loadConfig reads the config file and routes the stdlib logger to the
// configured rotating file so engine diagnostics never hit the screen
// the shell is drawing on.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	return cfg, nil
}
