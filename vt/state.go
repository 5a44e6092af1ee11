// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/state.go
// Summary: Parser state enumeration for the DEC ANSI state machine.

package vt

// State identifies one of the fixed parser states. The set and the
// transitions between them follow the vt100.net DEC ANSI parser model.
type State uint8

const (
	StateGround State = iota
	StateEscape
	StateEscapeIntermediate
	StateCsiEntry
	StateCsiParam
	StateCsiIntermediate
	StateCsiIgnore
	StateDcsEntry
	StateDcsParam
	StateDcsIntermediate
	StateDcsPassthrough
	StateDcsIgnore
	StateOscString
	StateSosPmApcString

	stateCount = 14
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateGround:
		return "Ground"
	case StateEscape:
		return "Escape"
	case StateEscapeIntermediate:
		return "EscapeIntermediate"
	case StateCsiEntry:
		return "CsiEntry"
	case StateCsiParam:
		return "CsiParam"
	case StateCsiIntermediate:
		return "CsiIntermediate"
	case StateCsiIgnore:
		return "CsiIgnore"
	case StateDcsEntry:
		return "DcsEntry"
	case StateDcsParam:
		return "DcsParam"
	case StateDcsIntermediate:
		return "DcsIntermediate"
	case StateDcsPassthrough:
		return "DcsPassthrough"
	case StateDcsIgnore:
		return "DcsIgnore"
	case StateOscString:
		return "OscString"
	case StateSosPmApcString:
		return "SosPmApcString"
	}
	return "Invalid"
}
