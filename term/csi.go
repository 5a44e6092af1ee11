// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/csi.go
// Summary: CSI sequence dispatch: cursor movement, erase, SGR, modes.

package term

import (
	"fmt"
	"log"

	"github.com/termweave/termweave/grid"
)

// CsiDispatch routes a complete CSI sequence.
func (t *Terminal) CsiDispatch(rawParams []uint16, intermediates []byte, final byte) {
	params := make([]int, len(rawParams))
	for i, p := range rawParams {
		params[i] = int(p)
	}
	private := len(intermediates) > 0 && intermediates[0] == '?'

	param := func(i, def int) int {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return def
	}

	if private {
		switch final {
		case 'h':
			t.setPrivateModes(params, true)
		case 'l':
			t.setPrivateModes(params, false)
		default:
			log.Printf("Term: Unhandled private CSI: ?%v%c", params, final)
		}
		return
	}
	if len(intermediates) > 0 {
		// DECSTR and friends carry intermediates we do not implement.
		log.Printf("Term: Unhandled CSI intermediates %q final %c", intermediates, final)
		return
	}

	g := t.active
	switch final {
	case 'A': // CUU
		t.cursorUp(param(0, 1))
	case 'B': // CUD
		t.cursorDown(param(0, 1))
	case 'C': // CUF
		g.CursorForward(param(0, 1))
	case 'D': // CUB
		g.CursorBackward(param(0, 1))
	case 'E': // CNL
		t.cursorDown(param(0, 1))
		g.CarriageReturn()
	case 'F': // CPL
		t.cursorUp(param(0, 1))
		g.CarriageReturn()
	case 'G', '`': // CHA / HPA
		g.SetCursor(g.CursorRow(), param(0, 1)-1)
	case 'H', 'f': // CUP / HVP
		t.moveCursorAbsolute(param(0, 1)-1, param(1, 1)-1)
	case 'd': // VPA
		t.moveCursorAbsolute(param(0, 1)-1, g.CursorCol())
	case 'a': // HPR
		g.CursorForward(param(0, 1))
	case 'e': // VPR
		t.cursorDown(param(0, 1))
	case 'I': // CHT
		for i := 0; i < param(0, 1); i++ {
			g.Tab()
		}
	case 'Z': // CBT
		for i := 0; i < param(0, 1); i++ {
			g.BackTab()
		}
	case 'J': // ED
		t.eraseInDisplay(param(0, 0))
	case 'K': // EL
		t.eraseInLine(param(0, 0))
	case 'L': // IL
		t.insertLines(param(0, 1))
	case 'M': // DL
		t.deleteLines(param(0, 1))
	case '@': // ICH
		g.InsertChars(param(0, 1), t.eraseColors())
	case 'P': // DCH
		g.DeleteChars(param(0, 1), t.eraseColors())
	case 'X': // ECH
		g.EraseChars(param(0, 1), t.eraseColors())
	case 'b': // REP
		t.repeatLast(param(0, 1))
	case 'S': // SU
		t.evict(g.ScrollRegionUp(t.marginTop, t.marginBottom, param(0, 1), t.eraseColors()))
	case 'T': // SD
		g.ScrollRegionDown(t.marginTop, t.marginBottom, param(0, 1), t.eraseColors())
	case 'm': // SGR
		t.handleSGR(params)
	case 'n': // DSR
		if param(0, 0) == 6 {
			row, col := t.Cursor()
			t.respond(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
		}
	case 'r': // DECSTBM
		t.setMargins(param(0, 1), param(1, g.Rows()))
	case 's': // SCOSC
		t.saveCursor()
	case 'u': // SCORC
		t.restoreCursor()
	case 'g': // TBC
		switch param(0, 0) {
		case 0:
			g.ClearTabStop()
		case 3:
			g.ClearAllTabStops()
		}
	case 'c': // DA
		t.respond("\x1b[?62;22c")
	case 'h':
		t.setAnsiModes(params, true)
	case 'l':
		t.setAnsiModes(params, false)
	case 'q', 't':
		// DECSCA, window manipulation
	default:
		log.Printf("Term: Unhandled CSI sequence: %q, params: %v", final, params)
	}
}

// cursorUp moves up n rows, stopping at the top margin when the cursor
// starts inside the scroll region.
func (t *Terminal) cursorUp(n int) {
	if n < 1 {
		n = 1
	}
	g := t.active
	limit := 0
	if g.CursorRow() >= t.marginTop {
		limit = t.marginTop
	}
	row := g.CursorRow() - n
	if row < limit {
		row = limit
	}
	g.SetCursor(row, g.CursorCol())
}

// cursorDown moves down n rows, stopping at the bottom margin when the
// cursor starts inside the scroll region.
func (t *Terminal) cursorDown(n int) {
	if n < 1 {
		n = 1
	}
	g := t.active
	limit := g.Rows() - 1
	if g.CursorRow() <= t.marginBottom {
		limit = t.marginBottom
	}
	row := g.CursorRow() + n
	if row > limit {
		row = limit
	}
	g.SetCursor(row, g.CursorCol())
}

// moveCursorAbsolute implements CUP/VPA addressing. With origin mode
// on, the row is relative to the top margin and the destination is
// confined to the scroll region.
func (t *Terminal) moveCursorAbsolute(row, col int) {
	if t.modes.Origin {
		row += t.marginTop
		if row > t.marginBottom {
			row = t.marginBottom
		}
		if row < t.marginTop {
			row = t.marginTop
		}
	}
	t.active.SetCursor(row, col)
}

// setMargins implements DECSTBM. An invalid region (top >= bottom
// after clamping) resets to the full screen; the cursor always homes,
// respecting origin mode.
func (t *Terminal) setMargins(top, bottom int) {
	g := t.active
	if top < 1 {
		top = 1
	}
	if bottom < 1 || bottom > g.Rows() {
		bottom = g.Rows()
	}
	if top >= bottom {
		t.marginTop = 0
		t.marginBottom = g.Rows() - 1
	} else {
		t.marginTop = top - 1
		t.marginBottom = bottom - 1
	}
	t.moveCursorAbsolute(0, 0)
}

func (t *Terminal) eraseInDisplay(mode int) {
	g := t.active
	bg := t.eraseColors()
	row, col := g.CursorRow(), g.CursorCol()
	switch mode {
	case 0: // cursor to end of screen
		g.EraseInRow(row, col, g.Cols(), bg)
		for r := row + 1; r < g.Rows(); r++ {
			g.EraseRow(r, bg)
		}
	case 1: // start of screen to cursor
		for r := 0; r < row; r++ {
			g.EraseRow(r, bg)
		}
		g.EraseInRow(row, 0, col+1, bg)
	case 2, 3:
		for r := 0; r < g.Rows(); r++ {
			g.EraseRow(r, bg)
		}
	}
}

func (t *Terminal) eraseInLine(mode int) {
	g := t.active
	bg := t.eraseColors()
	row, col := g.CursorRow(), g.CursorCol()
	switch mode {
	case 0:
		g.EraseInRow(row, col, g.Cols(), bg)
	case 1:
		g.EraseInRow(row, 0, col+1, bg)
	case 2:
		g.EraseRow(row, bg)
	}
}

// insertLines shifts rows at the cursor down within the scroll region.
// Outside the region it is a no-op.
func (t *Terminal) insertLines(n int) {
	g := t.active
	row := g.CursorRow()
	if row < t.marginTop || row > t.marginBottom {
		return
	}
	g.ScrollRegionDown(row, t.marginBottom, n, t.eraseColors())
	g.SetCursor(row, g.CursorCol())
}

// deleteLines removes rows at the cursor within the scroll region.
// The removed lines never reach the scrollback.
func (t *Terminal) deleteLines(n int) {
	g := t.active
	row := g.CursorRow()
	if row < t.marginTop || row > t.marginBottom {
		return
	}
	g.ScrollRegionUp(row, t.marginBottom, n, t.eraseColors())
	g.SetCursor(row, g.CursorCol())
}

func (t *Terminal) repeatLast(n int) {
	if t.lastPrinted == "" {
		return
	}
	r := []rune(t.lastPrinted)[0]
	for i := 0; i < n; i++ {
		t.Print(r)
	}
}

func (t *Terminal) setAnsiModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case 4: // IRM
			t.modes.Insert = set
		case 20: // LNM
			// Linefeed/newline mode: not implemented
		default:
			log.Printf("Term: Unhandled ANSI mode: %d set=%v", mode, set)
		}
	}
}

func (t *Terminal) setPrivateModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case 6: // DECOM
			t.modes.Origin = set
			if set {
				t.active.SetCursor(t.marginTop, 0)
			} else {
				t.active.SetCursor(0, 0)
			}
		case 7: // DECAWM
			t.modes.AutoWrap = set
		case 25: // DECTCEM
			t.modes.CursorVisible = set
		case 1049:
			if set {
				t.enterAltScreen()
			} else {
				t.leaveAltScreen()
			}
		case 2004:
			t.modes.BracketedPaste = set
		case 1, 12, 1000, 1002, 1004, 1006:
			// Cursor keys, blink, mouse and focus reporting: input-side
			// concerns outside the engine
		default:
			log.Printf("Term: Unhandled private mode: ?%d set=%v", mode, set)
		}
	}
}

func (t *Terminal) handleSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			t.pen = grid.DefaultStyle
		case p == 1:
			t.pen.Flags |= grid.FlagBold
		case p == 2:
			t.pen.Flags |= grid.FlagDim
		case p == 3:
			t.pen.Flags |= grid.FlagItalic
		case p == 4:
			t.pen.Flags |= grid.FlagUnderline
		case p == 5:
			t.pen.Flags |= grid.FlagBlink
		case p == 7:
			t.pen.Flags |= grid.FlagInverse
		case p == 8:
			t.pen.Flags |= grid.FlagHidden
		case p == 9:
			t.pen.Flags |= grid.FlagStrikethrough
		case p == 21:
			t.pen.Flags |= grid.FlagDoubleUnderline
		case p == 22:
			t.pen.Flags &^= grid.FlagBold | grid.FlagDim
		case p == 23:
			t.pen.Flags &^= grid.FlagItalic
		case p == 24:
			t.pen.Flags &^= grid.FlagUnderline | grid.FlagDoubleUnderline
		case p == 25:
			t.pen.Flags &^= grid.FlagBlink
		case p == 27:
			t.pen.Flags &^= grid.FlagInverse
		case p == 28:
			t.pen.Flags &^= grid.FlagHidden
		case p == 29:
			t.pen.Flags &^= grid.FlagStrikethrough
		case p >= 30 && p <= 37:
			t.pen.Colors = t.pen.Colors.IndexedFg(uint8(p - 30))
		case p == 38:
			i += t.extendedColor(params[i:], true)
		case p == 39:
			t.pen.Colors = t.pen.Colors.DefaultFg()
		case p >= 40 && p <= 47:
			t.pen.Colors = t.pen.Colors.IndexedBg(uint8(p - 40))
		case p == 48:
			i += t.extendedColor(params[i:], false)
		case p == 49:
			t.pen.Colors = t.pen.Colors.DefaultBg()
		case p >= 90 && p <= 97:
			t.pen.Colors = t.pen.Colors.IndexedFg(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			t.pen.Colors = t.pen.Colors.IndexedBg(uint8(p - 100 + 8))
		}
		i++
	}
}

// extendedColor consumes an SGR 38/48 color specification and returns
// how many extra parameters it used.
func (t *Terminal) extendedColor(params []int, fg bool) int {
	if len(params) >= 3 && params[1] == 5 { // 256-color palette
		idx := uint8(params[2])
		if fg {
			t.pen.Colors = t.pen.Colors.IndexedFg(idx)
		} else {
			t.pen.Colors = t.pen.Colors.IndexedBg(idx)
		}
		return 2
	}
	if len(params) >= 5 && params[1] == 2 { // RGB true color
		c := grid.RGB{R: uint8(params[2]), G: uint8(params[3]), B: uint8(params[4])}
		if fg {
			t.pen.Colors = t.pen.Colors.RGBFg()
			t.pen.FgRGB = c
		} else {
			t.pen.Colors = t.pen.Colors.RGBBg()
			t.pen.BgRGB = c
		}
		return 4
	}
	return 0
}

// decaln fills the screen with E for alignment checks (ESC # 8).
func (t *Terminal) decaln() {
	g := t.active
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			g.SetCell(r, c, grid.NewCell('E'))
		}
	}
	g.SetCursor(0, 0)
}
