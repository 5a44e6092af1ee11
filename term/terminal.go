// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/terminal.go
// Summary: The terminal: modes, scroll region, alt screen, C0 handling.
//
// Terminal binds a vt.Parser to a grid.Grid and implements the
// parser's ActionSink. It owns everything the grid deliberately does
// not: the current pen, DECSTBM margins, origin and autowrap modes,
// the alternate screen and the scroll-eviction hook.

package term

import (
	"github.com/mattn/go-runewidth"

	"github.com/termweave/termweave/grid"
	"github.com/termweave/termweave/vt"
)

// maxStringPayload bounds the retained DCS and APC payloads.
const maxStringPayload = 4096

// Modes is a snapshot of the terminal's mode flags.
type Modes struct {
	Origin         bool
	AutoWrap       bool
	Insert         bool
	CursorVisible  bool
	BracketedPaste bool
}

type savedCursor struct {
	row, col int
	pen      grid.Style
	origin   bool
	valid    bool
}

// Terminal is the engine facade: feed bytes in with Process, read
// authoritative state back out. Not safe for concurrent use.
type Terminal struct {
	parser *vt.Parser
	main   *grid.Grid
	alt    *grid.Grid
	active *grid.Grid

	pen         grid.Style
	lastPrinted string

	marginTop, marginBottom int

	modes       Modes
	inAltScreen bool

	saved     savedCursor
	savedMain struct{ row, col int }

	title   string
	lastDCS []byte
	lastAPC []byte
	dcsBuf  []byte
	apcBuf  []byte

	// OnLineEvicted receives the text of every line that scrolls off
	// the top of the main screen while no partial scroll region is
	// set. This is the scrollback and search feed.
	OnLineEvicted func(line string)

	// Respond carries report sequences (DSR, DA) back toward the pty.
	Respond func(p []byte)
}

// Option configures a Terminal at construction.
type Option func(*Terminal)

// WithLineSink sets the scroll-eviction callback.
func WithLineSink(fn func(string)) Option {
	return func(t *Terminal) { t.OnLineEvicted = fn }
}

// WithResponder sets the report-sequence callback.
func WithResponder(fn func([]byte)) Option {
	return func(t *Terminal) { t.Respond = fn }
}

// New creates a terminal with the given screen size. Dimensions clamp
// to a minimum of 1x1.
func New(rows, cols int, opts ...Option) *Terminal {
	t := &Terminal{
		parser: vt.NewParser(),
		main:   grid.New(rows, cols),
	}
	t.active = t.main
	t.marginTop = 0
	t.marginBottom = t.main.Rows() - 1
	t.modes = Modes{AutoWrap: true, CursorVisible: true}
	for _, o := range opts {
		o(t)
	}
	return t
}

var _ vt.ActionSink = (*Terminal)(nil)

// Process feeds raw bytes through the parser into the terminal.
func (t *Terminal) Process(p []byte) {
	t.parser.Advance(p, t)
}

// Grid returns the currently active screen buffer.
func (t *Terminal) Grid() *grid.Grid { return t.active }

// Cursor returns the cursor position on the active screen.
func (t *Terminal) Cursor() (row, col int) {
	return t.active.CursorRow(), t.active.CursorCol()
}

// Modes returns a snapshot of the terminal's mode flags.
func (t *Terminal) Modes() Modes { return t.modes }

// IsAlternateScreen reports whether the alt screen is active.
func (t *Terminal) IsAlternateScreen() bool { return t.inAltScreen }

// ScrollRegion returns the DECSTBM margins, inclusive and 0-based.
func (t *Terminal) ScrollRegion() (top, bottom int) {
	return t.marginTop, t.marginBottom
}

// Title returns the window title set via OSC 0/2.
func (t *Terminal) Title() string { return t.title }

// LastDCS returns the payload of the most recent DCS sequence.
func (t *Terminal) LastDCS() []byte { return t.lastDCS }

// LastAPC returns the payload of the most recent APC sequence.
func (t *Terminal) LastAPC() []byte { return t.lastAPC }

// VisibleContent renders the active screen.
func (t *Terminal) VisibleContent() string { return t.active.VisibleContent() }

// Resize changes the screen size. Both buffers resize, the scroll
// region resets to the full screen and the cursor re-clamps.
func (t *Terminal) Resize(rows, cols int) {
	t.main.Resize(rows, cols)
	if t.alt != nil {
		t.alt.Resize(rows, cols)
	}
	t.marginTop = 0
	t.marginBottom = t.active.Rows() - 1
	t.savedMain.row, t.savedMain.col = clampPos(t.savedMain.row, t.savedMain.col, t.main)
}

func clampPos(row, col int, g *grid.Grid) (int, int) {
	if row >= g.Rows() {
		row = g.Rows() - 1
	}
	if row < 0 {
		row = 0
	}
	if col >= g.Cols() {
		col = g.Cols() - 1
	}
	if col < 0 {
		col = 0
	}
	return row, col
}

// hasFullRegion reports whether the scroll region spans the screen.
func (t *Terminal) hasFullRegion() bool {
	return t.marginTop == 0 && t.marginBottom == t.active.Rows()-1
}

// eraseColors is the pen's background with the foreground dropped,
// the fill used by erase and scroll operations.
func (t *Terminal) eraseColors() grid.PackedColors {
	return t.pen.Colors.DefaultFg()
}

// evict hands scrolled-off lines to the sink. Lines leaving the alt
// screen or a partial scroll region are discarded.
func (t *Terminal) evict(lines []string) {
	if t.inAltScreen || !t.hasFullRegion() || t.OnLineEvicted == nil {
		return
	}
	for _, l := range lines {
		t.OnLineEvicted(l)
	}
}

// lineFeed moves the cursor down, scrolling the region when the cursor
// sits on the bottom margin.
func (t *Terminal) lineFeed() {
	g := t.active
	switch {
	case g.CursorRow() == t.marginBottom:
		t.evict(g.ScrollRegionUp(t.marginTop, t.marginBottom, 1, t.eraseColors()))
	case g.CursorRow() < g.Rows()-1:
		g.CursorDown(1)
	}
}

// reverseLineFeed moves the cursor up, scrolling the region down when
// the cursor sits on the top margin.
func (t *Terminal) reverseLineFeed() {
	g := t.active
	switch {
	case g.CursorRow() == t.marginTop:
		g.ScrollRegionDown(t.marginTop, t.marginBottom, 1, t.eraseColors())
	case g.CursorRow() > 0:
		g.CursorUp(1)
	}
}

// Print places one rune at the cursor, honoring insert mode, autowrap
// and wide-character spacers. Zero-width runes merge into the
// previously written cell.
func (t *Terminal) Print(r rune) {
	g := t.active
	width := runewidth.RuneWidth(r)

	if width == 0 {
		t.mergeCombining(r)
		return
	}

	if t.modes.AutoWrap {
		eff := g.EffectiveCols(g.CursorRow())
		if g.PendingWrap() || g.CursorCol()+width > eff {
			g.Row(g.CursorRow()).SetWrapped(true)
			g.CarriageReturn()
			t.lineFeed()
		}
	}
	if t.modes.Insert {
		g.InsertChars(width, t.eraseColors())
	}

	w := g.PutText(string(r), t.pen)
	t.lastPrinted = string(r)
	if t.modes.AutoWrap {
		g.AdvanceCursor(w)
	} else {
		g.CursorForward(w)
	}
}

// mergeCombining attaches a zero-width rune to the last written cell.
func (t *Terminal) mergeCombining(r rune) {
	g := t.active
	row, col := g.CursorRow(), g.CursorCol()
	if !g.PendingWrap() {
		if col == 0 {
			return
		}
		col--
	}
	if g.IsWideSpacer(row, col) && col > 0 {
		col--
	}
	g.AppendToCell(row, col, r)
}

// Execute handles C0 control bytes.
func (t *Terminal) Execute(b byte) {
	g := t.active
	switch b {
	case 0x08: // BS
		g.CursorBackward(1)
	case 0x09: // HT
		g.Tab()
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		t.lineFeed()
	case 0x0D: // CR
		g.CarriageReturn()
	case 0x07, 0x0E, 0x0F:
		// BEL, SO, SI: nothing to do without a bell or charsets
	}
}

// fullReset implements RIS: fresh screen, default modes, parser reset.
func (t *Terminal) fullReset() {
	rows, cols := t.main.Rows(), t.main.Cols()
	t.main = grid.New(rows, cols)
	t.alt = nil
	t.active = t.main
	t.inAltScreen = false
	t.pen = grid.DefaultStyle
	t.lastPrinted = ""
	t.marginTop = 0
	t.marginBottom = rows - 1
	t.modes = Modes{AutoWrap: true, CursorVisible: true}
	t.saved = savedCursor{}
	t.savedMain.row, t.savedMain.col = 0, 0
	t.title = ""
	t.lastDCS = nil
	t.lastAPC = nil
	t.parser.Reset()
}

func (t *Terminal) saveCursor() {
	t.saved = savedCursor{
		row:    t.active.CursorRow(),
		col:    t.active.CursorCol(),
		pen:    t.pen,
		origin: t.modes.Origin,
		valid:  true,
	}
}

func (t *Terminal) restoreCursor() {
	if !t.saved.valid {
		t.active.SetCursor(0, 0)
		t.pen = grid.DefaultStyle
		return
	}
	t.active.SetCursor(t.saved.row, t.saved.col)
	t.pen = t.saved.pen
	t.modes.Origin = t.saved.origin
}

// enterAltScreen switches to a fresh secondary buffer, saving the main
// screen cursor. The main buffer itself is left untouched so leaving
// restores it byte for byte.
func (t *Terminal) enterAltScreen() {
	if t.inAltScreen {
		return
	}
	t.inAltScreen = true
	t.savedMain.row, t.savedMain.col = t.main.CursorRow(), t.main.CursorCol()
	t.alt = grid.New(t.main.Rows(), t.main.Cols())
	t.active = t.alt
}

func (t *Terminal) leaveAltScreen() {
	if !t.inAltScreen {
		return
	}
	t.inAltScreen = false
	t.alt = nil
	t.active = t.main
	t.active.SetCursor(t.savedMain.row, t.savedMain.col)
}

func (t *Terminal) respond(s string) {
	if t.Respond != nil {
		t.Respond([]byte(s))
	}
}
