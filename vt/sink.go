// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/sink.go
// Summary: Dispatch callback interface produced by the parser.

package vt

// ActionSink receives dispatch callbacks from Parser.Advance. Every
// callback fires synchronously inside Advance; the parser never defers
// dispatch.
//
// Slices passed to callbacks alias the parser's internal buffers and are
// only valid for the duration of the call.
type ActionSink interface {
	// Print delivers a printable character (UTF-8 decoded in ground state).
	Print(r rune)

	// Execute delivers a C0/C1 control byte.
	Execute(b byte)

	// CsiDispatch delivers a completed CSI sequence. Private-mode markers
	// ('?', '<', '=', '>') arrive as the first intermediate byte.
	CsiDispatch(params []uint16, intermediates []byte, final byte)

	// EscDispatch delivers a completed escape sequence.
	EscDispatch(intermediates []byte, final byte)

	// OscDispatch delivers an OSC string split on ';'.
	OscDispatch(params [][]byte)

	// DcsHook opens a device control string. Payload bytes follow via
	// DcsPut; DcsUnhook closes the string exactly once per hook.
	DcsHook(params []uint16, intermediates []byte, final byte)
	DcsPut(b byte)
	DcsUnhook()

	// ApcStart/ApcPut/ApcEnd bracket an application program command.
	ApcStart()
	ApcPut(b byte)
	ApcEnd()
}

// NullSink discards every action. Useful for draining input and in tests.
type NullSink struct{}

func (NullSink) Print(rune)                           {}
func (NullSink) Execute(byte)                         {}
func (NullSink) CsiDispatch([]uint16, []byte, byte)   {}
func (NullSink) EscDispatch([]byte, byte)             {}
func (NullSink) OscDispatch([][]byte)                 {}
func (NullSink) DcsHook([]uint16, []byte, byte)       {}
func (NullSink) DcsPut(byte)                          {}
func (NullSink) DcsUnhook()                           {}
func (NullSink) ApcStart()                            {}
func (NullSink) ApcPut(byte)                          {}
func (NullSink) ApcEnd()                              {}

var _ ActionSink = NullSink{}
