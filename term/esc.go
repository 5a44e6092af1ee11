// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/esc.go
// Summary: ESC, OSC, DCS and APC dispatch.

package term

import (
	"log"

	"github.com/termweave/termweave/grid"
)

// EscDispatch routes a complete non-CSI escape sequence.
func (t *Terminal) EscDispatch(intermediates []byte, final byte) {
	if len(intermediates) > 0 {
		switch intermediates[0] {
		case '#':
			t.lineSizeEscape(final)
		case '(', ')', '*', '+':
			// Character set designation: G0-G3 charsets are not
			// implemented, the glyph path is UTF-8 only
		default:
			log.Printf("Term: Unhandled ESC intermediates %q final %c", intermediates, final)
		}
		return
	}

	switch final {
	case '7': // DECSC
		t.saveCursor()
	case '8': // DECRC
		t.restoreCursor()
	case 'D': // IND
		t.lineFeed()
	case 'E': // NEL
		t.active.CarriageReturn()
		t.lineFeed()
	case 'H': // HTS
		t.active.SetTabStop()
	case 'M': // RI
		t.reverseLineFeed()
	case 'c': // RIS
		t.fullReset()
	case '=', '>': // DECKPAM / DECKPNM
	case '\\': // ST terminating a string sequence
	default:
		log.Printf("Term: Unhandled ESC sequence: %c", final)
	}
}

// lineSizeEscape handles the DEC line attribute escapes (ESC # x).
// Changing a row to double size halves its effective width, so the
// cursor re-clamps inside the grid.
func (t *Terminal) lineSizeEscape(final byte) {
	g := t.active
	row := g.CursorRow()
	switch final {
	case '3': // DECDHL top half
		g.SetLineSize(row, grid.DoubleHeightTop)
	case '4': // DECDHL bottom half
		g.SetLineSize(row, grid.DoubleHeightBottom)
	case '5': // DECSWL
		g.SetLineSize(row, grid.SingleWidth)
	case '6': // DECDWL
		g.SetLineSize(row, grid.DoubleWidth)
	case '8': // DECALN
		t.decaln()
	}
}

// OscDispatch handles operating system commands. Only the window
// title (OSC 0 and 2) is interpreted.
func (t *Terminal) OscDispatch(params [][]byte) {
	if len(params) < 2 {
		return
	}
	switch string(params[0]) {
	case "0", "2":
		t.title = string(params[1])
	}
}

// DcsHook begins collecting a DCS payload.
func (t *Terminal) DcsHook(params []uint16, intermediates []byte, final byte) {
	t.dcsBuf = t.dcsBuf[:0]
}

// DcsPut appends one DCS payload byte, bounded.
func (t *Terminal) DcsPut(b byte) {
	if len(t.dcsBuf) < maxStringPayload {
		t.dcsBuf = append(t.dcsBuf, b)
	}
}

// DcsUnhook finalizes the DCS payload for diagnostics.
func (t *Terminal) DcsUnhook() {
	t.lastDCS = append([]byte(nil), t.dcsBuf...)
}

// ApcStart begins collecting an APC payload.
func (t *Terminal) ApcStart() {
	t.apcBuf = t.apcBuf[:0]
}

// ApcPut appends one APC payload byte, bounded.
func (t *Terminal) ApcPut(b byte) {
	if len(t.apcBuf) < maxStringPayload {
		t.apcBuf = append(t.apcBuf, b)
	}
}

// ApcEnd finalizes the APC payload for diagnostics.
func (t *Terminal) ApcEnd() {
	t.lastAPC = append([]byte(nil), t.apcBuf...)
}
