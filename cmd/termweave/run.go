// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/termweave/run.go
// Summary: Run a shell on a PTY through the engine.

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/termweave/termweave/checkpoint"
	"github.com/termweave/termweave/scrollback"
	"github.com/termweave/termweave/search"
	"github.com/termweave/termweave/term"
)

var runShell string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a shell with scrollback capture, search indexing and checkpoints",
	Args:  cobra.NoArgs,
	RunE:  runSession,
}

func init() {
	runCmd.Flags().StringVar(&runShell, "shell", "", "shell to run (defaults to $SHELL)")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shell := runShell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	rows, cols := cfg.Rows, cfg.Cols
	if w, h, err := xterm.GetSize(int(os.Stdin.Fd())); err == nil {
		cols, rows = w, h
	}

	scfg := search.DefaultStoreConfig(filepath.Dir(cfg.SearchDBPath))
	scfg.DBPath = cfg.SearchDBPath
	store, err := search.NewStore(scfg)
	if err != nil {
		return fmt.Errorf("opening search store: %w", err)
	}
	defer store.Close()

	sb := scrollback.New(cfg.Scrollback)
	mgr := checkpoint.NewSessionManager(cfg.Checkpoint.Dir, cfg.Checkpoint)

	proc := exec.Command(shell)
	proc.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.StartWithSize(proc, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return fmt.Errorf("starting pty: %w", err)
	}
	defer ptmx.Close()

	engine := term.New(rows, cols,
		term.WithLineSink(func(line string) {
			sb.PushStr(line)
			store.IndexLine(sb.LineCount()-1, time.Now(), false, line)
			mgr.NotifyLinesAdded(1)
		}),
		term.WithResponder(func(b []byte) {
			ptmx.Write(b)
		}),
	)

	oldState, err := xterm.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer xterm.Restore(int(os.Stdin.Fd()), oldState)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	resize := make(chan struct{}, 1)
	go func() {
		for range winch {
			select {
			case resize <- struct{}{}:
			default:
			}
		}
	}()

	go io.Copy(ptmx, os.Stdin)

	buf := make([]byte, 4096)
	for {
		select {
		case <-resize:
			if w, h, err := xterm.GetSize(int(os.Stdin.Fd())); err == nil {
				pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
				engine.Resize(h, w)
			}
			continue
		default:
		}

		n, err := ptmx.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
			engine.Process(buf[:n])
			if mgr.ShouldCheckpoint() {
				if _, err := mgr.Save(engine.Grid(), sb); err != nil {
					log.Printf("Run: Checkpoint save failed: %v", err)
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Run: PTY read error: %v", err)
			}
			break
		}
	}

	if _, err := mgr.Save(engine.Grid(), sb); err != nil {
		log.Printf("Run: Final checkpoint failed: %v", err)
	}
	if err := store.Flush(); err != nil {
		log.Printf("Run: Search flush failed: %v", err)
	}
	return proc.Wait()
}
