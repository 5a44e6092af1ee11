// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/termweave/main.go
// Summary: CLI entry point.

package main

func main() {
	Execute()
}
