// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/table.go
// Summary: State transition table for the DEC ANSI parser.
//
// The table is built once at package init from the range rules of the
// vt100.net DEC ANSI parser, with two deviations carried over from
// modern terminals: ':' is a parameter byte (SGR subparameters) and BEL
// terminates OSC strings (xterm extension).

package vt

type actionType uint8

const (
	actNone actionType = iota
	actIgnore
	actPrint
	actExecute
	actClear
	actCollect
	actParam
	actEscDispatch
	actCsiDispatch
	actDcsHook
	actDcsPut
	actOscStart
	actOscPut
	actOscEnd
	actApcStart
	actApcPut
	actApcEnd
)

type transition struct {
	next   State
	action actionType
}

var transitions [stateCount][256]transition

func fill(state State, lo, hi int, next State, action actionType) {
	for b := lo; b <= hi; b++ {
		transitions[state][b] = transition{next: next, action: action}
	}
}

func one(state State, b int, next State, action actionType) {
	transitions[state][b] = transition{next: next, action: action}
}

// fillC0 covers the C0 controls that are executed (or ignored) inside a
// state: 0x00-0x17, 0x19, 0x1C-0x1F. CAN, SUB and ESC are excluded; they
// are set by the anywhere rules afterwards.
func fillC0(state State, next State, action actionType) {
	fill(state, 0x00, 0x17, next, action)
	one(state, 0x19, next, action)
	fill(state, 0x1C, 0x1F, next, action)
}

// anywhere rules are applied last so they override per-state entries.
func fillAnywhere() {
	for s := State(0); s < stateCount; s++ {
		// CAN and SUB abort any sequence. Exit actions (unhook, OSC
		// dispatch, APC end) are handled by the parser on state exit.
		one(s, 0x18, StateGround, actExecute)
		one(s, 0x1A, StateGround, actExecute)
		one(s, 0x1B, StateEscape, actClear)

		// 8-bit C1 controls.
		fill(s, 0x80, 0x8F, StateGround, actExecute)
		fill(s, 0x91, 0x97, StateGround, actExecute)
		one(s, 0x99, StateGround, actExecute)
		one(s, 0x9A, StateGround, actExecute)
		one(s, 0x90, StateDcsEntry, actClear)
		one(s, 0x9B, StateCsiEntry, actClear)
		one(s, 0x9C, StateGround, actIgnore) // ST
		one(s, 0x9D, StateOscString, actOscStart)
		one(s, 0x98, StateSosPmApcString, actNone) // SOS
		one(s, 0x9E, StateSosPmApcString, actNone) // PM
		one(s, 0x9F, StateSosPmApcString, actApcStart)
	}
}

func init() {
	// Ground
	fillC0(StateGround, StateGround, actExecute)
	fill(StateGround, 0x20, 0x7E, StateGround, actPrint)
	one(StateGround, 0x7F, StateGround, actIgnore)
	// 0xA0-0xFF never reach the table in ground state: Advance routes
	// them through the UTF-8 decoder. Keep them as print for safety.
	fill(StateGround, 0xA0, 0xFF, StateGround, actPrint)

	// Escape
	fillC0(StateEscape, StateEscape, actExecute)
	fill(StateEscape, 0x20, 0x2F, StateEscapeIntermediate, actCollect)
	fill(StateEscape, 0x30, 0x7E, StateGround, actEscDispatch)
	one(StateEscape, 0x50, StateDcsEntry, actClear)          // ESC P
	one(StateEscape, 0x58, StateSosPmApcString, actNone)     // ESC X (SOS)
	one(StateEscape, 0x5B, StateCsiEntry, actClear)          // ESC [
	one(StateEscape, 0x5D, StateOscString, actOscStart)      // ESC ]
	one(StateEscape, 0x5E, StateSosPmApcString, actNone)     // ESC ^ (PM)
	one(StateEscape, 0x5F, StateSosPmApcString, actApcStart) // ESC _ (APC)
	one(StateEscape, 0x7F, StateEscape, actIgnore)

	// EscapeIntermediate
	fillC0(StateEscapeIntermediate, StateEscapeIntermediate, actExecute)
	fill(StateEscapeIntermediate, 0x20, 0x2F, StateEscapeIntermediate, actCollect)
	fill(StateEscapeIntermediate, 0x30, 0x7E, StateGround, actEscDispatch)
	one(StateEscapeIntermediate, 0x7F, StateEscapeIntermediate, actIgnore)

	// CsiEntry
	fillC0(StateCsiEntry, StateCsiEntry, actExecute)
	fill(StateCsiEntry, 0x20, 0x2F, StateCsiIntermediate, actCollect)
	fill(StateCsiEntry, 0x30, 0x3B, StateCsiParam, actParam)
	fill(StateCsiEntry, 0x3C, 0x3F, StateCsiParam, actCollect)
	fill(StateCsiEntry, 0x40, 0x7E, StateGround, actCsiDispatch)
	one(StateCsiEntry, 0x7F, StateCsiEntry, actIgnore)

	// CsiParam
	fillC0(StateCsiParam, StateCsiParam, actExecute)
	fill(StateCsiParam, 0x20, 0x2F, StateCsiIntermediate, actCollect)
	fill(StateCsiParam, 0x30, 0x3B, StateCsiParam, actParam)
	fill(StateCsiParam, 0x3C, 0x3F, StateCsiIgnore, actNone)
	fill(StateCsiParam, 0x40, 0x7E, StateGround, actCsiDispatch)
	one(StateCsiParam, 0x7F, StateCsiParam, actIgnore)

	// CsiIntermediate
	fillC0(StateCsiIntermediate, StateCsiIntermediate, actExecute)
	fill(StateCsiIntermediate, 0x20, 0x2F, StateCsiIntermediate, actCollect)
	fill(StateCsiIntermediate, 0x30, 0x3F, StateCsiIgnore, actNone)
	fill(StateCsiIntermediate, 0x40, 0x7E, StateGround, actCsiDispatch)
	one(StateCsiIntermediate, 0x7F, StateCsiIntermediate, actIgnore)

	// CsiIgnore: discard everything up to a final byte, dispatch nothing.
	fillC0(StateCsiIgnore, StateCsiIgnore, actExecute)
	fill(StateCsiIgnore, 0x20, 0x3F, StateCsiIgnore, actIgnore)
	fill(StateCsiIgnore, 0x40, 0x7E, StateGround, actNone)
	one(StateCsiIgnore, 0x7F, StateCsiIgnore, actIgnore)

	// DcsEntry
	fillC0(StateDcsEntry, StateDcsEntry, actIgnore)
	fill(StateDcsEntry, 0x20, 0x2F, StateDcsIntermediate, actCollect)
	fill(StateDcsEntry, 0x30, 0x3B, StateDcsParam, actParam)
	fill(StateDcsEntry, 0x3C, 0x3F, StateDcsParam, actCollect)
	fill(StateDcsEntry, 0x40, 0x7E, StateDcsPassthrough, actDcsHook)
	one(StateDcsEntry, 0x7F, StateDcsEntry, actIgnore)

	// DcsParam
	fillC0(StateDcsParam, StateDcsParam, actIgnore)
	fill(StateDcsParam, 0x20, 0x2F, StateDcsIntermediate, actCollect)
	fill(StateDcsParam, 0x30, 0x3B, StateDcsParam, actParam)
	fill(StateDcsParam, 0x3C, 0x3F, StateDcsIgnore, actNone)
	fill(StateDcsParam, 0x40, 0x7E, StateDcsPassthrough, actDcsHook)
	one(StateDcsParam, 0x7F, StateDcsParam, actIgnore)

	// DcsIntermediate
	fillC0(StateDcsIntermediate, StateDcsIntermediate, actIgnore)
	fill(StateDcsIntermediate, 0x20, 0x2F, StateDcsIntermediate, actCollect)
	fill(StateDcsIntermediate, 0x30, 0x3F, StateDcsIgnore, actNone)
	fill(StateDcsIntermediate, 0x40, 0x7E, StateDcsPassthrough, actDcsHook)
	one(StateDcsIntermediate, 0x7F, StateDcsIntermediate, actIgnore)

	// DcsPassthrough: payload streams to DcsPut until ST.
	fillC0(StateDcsPassthrough, StateDcsPassthrough, actDcsPut)
	fill(StateDcsPassthrough, 0x20, 0x7E, StateDcsPassthrough, actDcsPut)
	one(StateDcsPassthrough, 0x7F, StateDcsPassthrough, actIgnore)
	fill(StateDcsPassthrough, 0xA0, 0xFF, StateDcsPassthrough, actDcsPut)

	// DcsIgnore: swallow a malformed DCS until its terminator.
	fillC0(StateDcsIgnore, StateDcsIgnore, actIgnore)
	fill(StateDcsIgnore, 0x20, 0x7F, StateDcsIgnore, actIgnore)
	fill(StateDcsIgnore, 0xA0, 0xFF, StateDcsIgnore, actIgnore)

	// OscString: collect until BEL or ST.
	fillC0(StateOscString, StateOscString, actIgnore)
	one(StateOscString, 0x07, StateGround, actOscEnd) // BEL terminator
	fill(StateOscString, 0x20, 0x7F, StateOscString, actOscPut)
	fill(StateOscString, 0xA0, 0xFF, StateOscString, actOscPut)

	// SosPmApcString: APC payload streams via ApcPut; SOS/PM discard.
	fillC0(StateSosPmApcString, StateSosPmApcString, actApcPut)
	fill(StateSosPmApcString, 0x20, 0x7F, StateSosPmApcString, actApcPut)
	fill(StateSosPmApcString, 0xA0, 0xFF, StateSosPmApcString, actApcPut)

	fillAnywhere()
}
