// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/grid.go
// Summary: The screen grid: cursor, tab stops, scrolling and writes.
//
// The grid owns the visible cell matrix and nothing else: no escape
// parsing, no scroll regions, no modes. Those live in the terminal,
// which composes the primitives here. One invariant holds after every
// exported operation: the cursor is inside the screen, and its column
// is inside the effective width of the row it sits on. Double-width
// and double-height rows halve that effective width, so vertical
// movement clamps against the destination row, not the source.

package grid

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const tabInterval = 8

// Grid is the cell matrix with a cursor. It is not safe for concurrent
// use; the engine is single-threaded by design.
type Grid struct {
	rows, cols int
	lines      []*Row

	cursorRow, cursorCol int
	// pendingWrap implements deferred autowrap: a write landing on the
	// last effective column leaves the cursor there and arms this flag;
	// the next wrapped write moves to the next line first. Any explicit
	// cursor motion disarms it.
	pendingWrap bool

	tabStops []bool
	glyphs   *glyphTable
}

// New creates a grid of the given size. Dimensions are clamped to a
// minimum of 1x1.
func New(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := &Grid{
		rows:   rows,
		cols:   cols,
		glyphs: newGlyphTable(),
	}
	g.lines = make([]*Row, rows)
	for i := range g.lines {
		g.lines[i] = newRow(cols)
	}
	g.resetTabStops()
	return g
}

// Rows returns the screen height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the allocated screen width.
func (g *Grid) Cols() int { return g.cols }

// CursorRow returns the cursor's row.
func (g *Grid) CursorRow() int { return g.cursorRow }

// CursorCol returns the cursor's column.
func (g *Grid) CursorCol() int { return g.cursorCol }

// Row returns the row at index i, or nil when out of range.
func (g *Grid) Row(i int) *Row {
	if i < 0 || i >= g.rows {
		return nil
	}
	return g.lines[i]
}

// EffectiveCols returns the usable width of row i: the full width for
// single-width rows, half (floor, minimum 1) for double-size rows.
func (g *Grid) EffectiveCols(i int) int {
	if i < 0 || i >= g.rows {
		return g.cols
	}
	if g.lines[i].size.IsDouble() {
		half := g.cols / 2
		if half < 1 {
			half = 1
		}
		return half
	}
	return g.cols
}

// SetLineSize sets row i's DEC line attribute and re-clamps the cursor
// if it sits on that row.
func (g *Grid) SetLineSize(i int, s LineSize) {
	if i < 0 || i >= g.rows {
		return
	}
	g.lines[i].size = s
	if g.cursorRow == i {
		g.clampCursor()
	}
}

// SetCursor moves the cursor, clamping to the screen and to the
// destination row's effective width.
func (g *Grid) SetCursor(row, col int) {
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	g.cursorRow = row
	eff := g.EffectiveCols(row)
	if col < 0 {
		col = 0
	}
	if col >= eff {
		col = eff - 1
	}
	g.cursorCol = col
	g.pendingWrap = false
}

// PendingWrap reports whether the next wrapped write will move to the
// next line before writing.
func (g *Grid) PendingWrap() bool { return g.pendingWrap }

func (g *Grid) clampCursor() {
	g.SetCursor(g.cursorRow, g.cursorCol)
}

// CursorUp moves the cursor up n rows, clamping at the top. The column
// re-clamps against the destination row's width.
func (g *Grid) CursorUp(n int) {
	if n < 1 {
		n = 1
	}
	g.SetCursor(g.cursorRow-n, g.cursorCol)
}

// CursorDown moves the cursor down n rows, clamping at the bottom.
func (g *Grid) CursorDown(n int) {
	if n < 1 {
		n = 1
	}
	g.SetCursor(g.cursorRow+n, g.cursorCol)
}

// CursorForward moves the cursor right n columns within the row.
func (g *Grid) CursorForward(n int) {
	if n < 1 {
		n = 1
	}
	g.SetCursor(g.cursorRow, g.cursorCol+n)
}

// CursorBackward moves the cursor left n columns within the row.
func (g *Grid) CursorBackward(n int) {
	if n < 1 {
		n = 1
	}
	g.SetCursor(g.cursorRow, g.cursorCol-n)
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.cursorCol = 0
	g.pendingWrap = false
}

// LineFeed moves the cursor down one row, scrolling the whole screen
// when it is already on the last row. Evicted top lines are returned
// as text.
func (g *Grid) LineFeed() []string {
	if g.cursorRow < g.rows-1 {
		g.SetCursor(g.cursorRow+1, g.cursorCol)
		return nil
	}
	return g.ScrollRegionUp(0, g.rows-1, 1, DefaultColors)
}

// ReverseLineFeed moves the cursor up one row, scrolling the screen
// down when it is already on the first row.
func (g *Grid) ReverseLineFeed() {
	if g.cursorRow > 0 {
		g.SetCursor(g.cursorRow-1, g.cursorCol)
		return
	}
	g.ScrollRegionDown(0, g.rows-1, 1, DefaultColors)
}

// Tab advances the cursor to the next tab stop, or the last effective
// column when none remains.
func (g *Grid) Tab() {
	eff := g.EffectiveCols(g.cursorRow)
	g.pendingWrap = false
	for col := g.cursorCol + 1; col < eff; col++ {
		if col < len(g.tabStops) && g.tabStops[col] {
			g.cursorCol = col
			return
		}
	}
	g.cursorCol = eff - 1
}

// BackTab moves the cursor to the previous tab stop, or column 0.
func (g *Grid) BackTab() {
	g.pendingWrap = false
	for col := g.cursorCol - 1; col > 0; col-- {
		if col < len(g.tabStops) && g.tabStops[col] {
			g.cursorCol = col
			return
		}
	}
	g.cursorCol = 0
}

// SetTabStop sets a tab stop at the cursor column (HTS).
func (g *Grid) SetTabStop() {
	if g.cursorCol < len(g.tabStops) {
		g.tabStops[g.cursorCol] = true
	}
}

// ClearTabStop clears a tab stop at the cursor column.
func (g *Grid) ClearTabStop() {
	if g.cursorCol < len(g.tabStops) {
		g.tabStops[g.cursorCol] = false
	}
}

// ClearAllTabStops removes every tab stop.
func (g *Grid) ClearAllTabStops() {
	for i := range g.tabStops {
		g.tabStops[i] = false
	}
}

func (g *Grid) resetTabStops() {
	g.tabStops = make([]bool, g.cols)
	for i := tabInterval; i < g.cols; i += tabInterval {
		g.tabStops[i] = true
	}
}

// Resize changes the screen dimensions, preserving content anchored at
// the top-left. Dimensions clamp to a minimum of 1x1; tab stops reset
// to every eighth column; the cursor re-clamps into the new bounds.
func (g *Grid) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	if rows == g.rows && cols == g.cols {
		return
	}
	for _, r := range g.lines {
		r.resize(cols)
	}
	switch {
	case rows < g.rows:
		g.lines = g.lines[:rows]
	case rows > g.rows:
		for len(g.lines) < rows {
			g.lines = append(g.lines, newRow(cols))
		}
	}
	g.rows, g.cols = rows, cols
	g.resetTabStops()
	g.clampCursor()
}

// ScrollRegionUp shifts rows [top, bottom] up by n, returning the text
// of the lines pushed off the top. Vacated bottom rows come in blank
// with the given background, single width, unwrapped.
func (g *Grid) ScrollRegionUp(top, bottom, n int, bg PackedColors) []string {
	top, bottom = g.clampRegion(top, bottom)
	span := bottom - top + 1
	if n < 1 {
		return nil
	}
	if n > span {
		n = span
	}
	evicted := make([]string, 0, n)
	for i := 0; i < n; i++ {
		evicted = append(evicted, g.lines[top+i].text(g.glyphs))
	}
	recycled := make([]*Row, n)
	copy(recycled, g.lines[top:top+n])
	copy(g.lines[top:], g.lines[top+n:bottom+1])
	for i, r := range recycled {
		r.clear(bg)
		r.size = SingleWidth
		g.lines[bottom-n+1+i] = r
	}
	g.clampCursor()
	return evicted
}

// ScrollRegionDown shifts rows [top, bottom] down by n. Lines pushed
// off the bottom are discarded; vacated top rows come in blank.
func (g *Grid) ScrollRegionDown(top, bottom, n int, bg PackedColors) {
	top, bottom = g.clampRegion(top, bottom)
	span := bottom - top + 1
	if n < 1 {
		return
	}
	if n > span {
		n = span
	}
	recycled := make([]*Row, n)
	copy(recycled, g.lines[bottom-n+1:bottom+1])
	copy(g.lines[top+n:bottom+1], g.lines[top:bottom+1-n])
	for i, r := range recycled {
		r.clear(bg)
		r.size = SingleWidth
		g.lines[top+i] = r
	}
	g.clampCursor()
}

func (g *Grid) clampRegion(top, bottom int) (int, int) {
	if top < 0 {
		top = 0
	}
	if bottom >= g.rows {
		bottom = g.rows - 1
	}
	if top > bottom {
		top, bottom = 0, g.rows-1
	}
	return top, bottom
}

// PutText writes one grapheme cluster at the cursor with the given
// style and returns the number of columns consumed (1 or 2). The
// cursor does not move; advancing is the caller's concern. A wide
// cluster with no room for its spacer backs up one column first.
func (g *Grid) PutText(cluster string, st Style) int {
	row := g.lines[g.cursorRow]
	eff := g.EffectiveCols(g.cursorRow)

	width := runewidth.StringWidth(cluster)
	if width < 1 {
		width = 1
	}
	if width > 2 {
		width = 2
	}
	if width == 2 && g.cursorCol >= eff-1 {
		if eff < 2 {
			width = 1
		} else {
			g.cursorCol = eff - 2
		}
	}

	col := g.cursorCol
	cell := g.makeCell(cluster, st)
	if width == 2 {
		cell.flags |= FlagWide
	}
	row.SetCell(col, cell)
	if st.Colors.FgIsRGB() || st.Colors.BgIsRGB() {
		row.setExtra(col, cellExtra{fg: st.FgRGB, bg: st.BgRGB})
	}
	if width == 2 {
		row.SetCell(col+1, Cell{glyph: ' ', colors: st.Colors, flags: FlagWideSpacer})
	}
	row.fixupWideAt(col)
	row.fixupWideAt(col + width)
	return width
}

// makeCell packs a cluster into a cell, interning through the glyph
// table when it does not fit the 16-bit glyph field.
func (g *Grid) makeCell(cluster string, st Style) Cell {
	r, size := utf8.DecodeRuneInString(cluster)
	if size == len(cluster) && r <= maxDirectGlyph {
		return StyledCell(r, st.Colors, st.Flags)
	}
	idx, ok := g.glyphs.intern(cluster)
	if !ok {
		return StyledCell('�', st.Colors, st.Flags)
	}
	return complexCell(idx, st.Colors, st.Flags)
}

// AppendToCell merges a combining rune into the cell at (row, col),
// turning it into a complex cell holding the whole cluster.
func (g *Grid) AppendToCell(row, col int, r rune) {
	rw := g.Row(row)
	if rw == nil || col < 0 || col >= rw.Cols() {
		return
	}
	base := g.CellText(row, col)
	if base == "" {
		base = " "
	}
	old := rw.Cell(col)
	idx, ok := g.glyphs.intern(base + string(r))
	if !ok {
		return
	}
	rw.cells[col] = complexCell(idx, old.colors, old.flags.Visual()|(old.flags&(FlagWide|FlagWideSpacer)))
}

// AdvanceCursor moves the cursor right by a just-written width. A
// write landing on the last effective column leaves the cursor there
// and arms the pending-wrap flag instead of moving past the edge.
func (g *Grid) AdvanceCursor(w int) {
	eff := g.EffectiveCols(g.cursorRow)
	if g.cursorCol+w < eff {
		g.cursorCol += w
	} else {
		g.cursorCol = eff - 1
		g.pendingWrap = true
	}
}

// WriteChar writes a rune at the cursor with default style and
// advances, overwriting the last column instead of wrapping.
func (g *Grid) WriteChar(r rune) {
	g.WriteCharStyled(r, DefaultStyle)
}

// WriteCharStyled writes a styled rune at the cursor and advances,
// overwriting the last column instead of wrapping.
func (g *Grid) WriteCharStyled(r rune, st Style) {
	w := g.PutText(string(r), st)
	eff := g.EffectiveCols(g.cursorRow)
	if g.cursorCol+w < eff {
		g.cursorCol += w
	} else {
		g.cursorCol = eff - 1
	}
}

// WriteCharWrap writes a rune at the cursor and advances, wrapping to
// the next row at the right edge and scrolling at the bottom. Evicted
// top lines are returned as text.
func (g *Grid) WriteCharWrap(r rune) []string {
	return g.WriteCharWrapStyled(r, DefaultStyle)
}

// WriteCharWrapStyled is WriteCharWrap with an explicit style.
func (g *Grid) WriteCharWrapStyled(r rune, st Style) []string {
	return g.writeWrap(string(r), runewidth.RuneWidth(r), st)
}

func (g *Grid) writeWrap(cluster string, width int, st Style) []string {
	var evicted []string
	if width < 1 {
		width = 1
	}
	eff := g.EffectiveCols(g.cursorRow)
	if g.pendingWrap || g.cursorCol+width > eff {
		g.lines[g.cursorRow].wrapped = true
		g.cursorCol = 0
		g.pendingWrap = false
		evicted = g.LineFeed()
	}
	w := g.PutText(cluster, st)
	g.AdvanceCursor(w)
	return evicted
}

// WriteString writes a string at the cursor, one grapheme cluster per
// cell, wrapping and scrolling as needed.
func (g *Grid) WriteString(s string) []string {
	var evicted []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		if cluster == "\n" {
			g.CarriageReturn()
			evicted = append(evicted, g.LineFeed()...)
			continue
		}
		evicted = append(evicted, g.writeWrap(cluster, runewidth.StringWidth(cluster), DefaultStyle)...)
	}
	return evicted
}

// Cell returns the cell at (row, col), or EmptyCell when out of range.
func (g *Grid) Cell(row, col int) Cell {
	if r := g.Row(row); r != nil {
		return r.Cell(col)
	}
	return EmptyCell
}

// SetCell stores a raw cell. Out-of-range writes are dropped.
func (g *Grid) SetCell(row, col int, c Cell) {
	if r := g.Row(row); r != nil {
		r.SetCell(col, c)
	}
}

// CellText resolves the display text of the cell at (row, col): the
// interned cluster for complex cells, the rune otherwise, "" for
// spacers and out-of-range positions.
func (g *Grid) CellText(row, col int) string {
	c := g.Cell(row, col)
	switch {
	case c.IsWideSpacer():
		return ""
	case c.IsComplex():
		return g.glyphs.text(c.glyph)
	default:
		return string(rune(c.glyph))
	}
}

// IsWidePrimary reports whether (row, col) holds the first half of a
// wide character.
func (g *Grid) IsWidePrimary(row, col int) bool {
	return g.Cell(row, col).IsWide()
}

// IsWideSpacer reports whether (row, col) holds the continuation half
// of a wide character.
func (g *Grid) IsWideSpacer(row, col int) bool {
	return g.Cell(row, col).IsWideSpacer()
}

// EraseInRow blanks cells [from, to) of the given row, keeping the
// given background.
func (g *Grid) EraseInRow(row, from, to int, bg PackedColors) {
	if r := g.Row(row); r != nil {
		r.clearRange(from, to, bg)
	}
}

// EraseRow blanks an entire row and resets its wrap flag.
func (g *Grid) EraseRow(row int, bg PackedColors) {
	if r := g.Row(row); r != nil {
		r.clear(bg)
	}
}

// InsertChars inserts count blanks at the cursor, shifting the rest of
// the row right (ICH).
func (g *Grid) InsertChars(count int, bg PackedColors) {
	g.lines[g.cursorRow].insertChars(g.cursorCol, count, bg)
}

// DeleteChars deletes count cells at the cursor, shifting the rest of
// the row left (DCH).
func (g *Grid) DeleteChars(count int, bg PackedColors) {
	g.lines[g.cursorRow].deleteChars(g.cursorCol, count, bg)
}

// EraseChars blanks count cells starting at the cursor without
// shifting (ECH).
func (g *Grid) EraseChars(count int, bg PackedColors) {
	if count < 1 {
		count = 1
	}
	g.lines[g.cursorRow].clearRange(g.cursorCol, g.cursorCol+count, bg)
}

// RowText returns the resolved text of row i, trailing blanks trimmed.
func (g *Grid) RowText(i int) string {
	if r := g.Row(i); r != nil {
		return r.text(g.glyphs)
	}
	return ""
}

// VisibleContent renders the whole screen, one line per row, trailing
// blanks trimmed.
func (g *Grid) VisibleContent() string {
	lines := make([]string, g.rows)
	for i, r := range g.lines {
		lines[i] = r.text(g.glyphs)
	}
	return strings.Join(lines, "\n")
}

// GlyphEntries returns the interned glyph strings, index-aligned, for
// serialization. Entry 0 is the reserved empty string.
func (g *Grid) GlyphEntries() []string {
	out := make([]string, len(g.glyphs.entries))
	copy(out, g.glyphs.entries)
	return out
}

// RestoreGlyphs replaces the glyph table with a serialized entry list.
// Entry 0 is forced back to the reserved empty string.
func (g *Grid) RestoreGlyphs(entries []string) {
	t := newGlyphTable()
	for i, s := range entries {
		if i == 0 {
			continue
		}
		t.entries = append(t.entries, s)
		t.lookup[s] = uint16(len(t.entries) - 1)
	}
	g.glyphs = t
}
