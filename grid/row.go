// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/row.go
// Summary: A single grid row: cells, line size and overflow extras.

package grid

import "strings"

// LineSize is the DEC line attribute of a row (DECSWL/DECDWL/DECDHL).
type LineSize uint8

const (
	// SingleWidth is the normal single-width, single-height line.
	SingleWidth LineSize = iota
	// DoubleWidth is a double-width, single-height line (DECDWL).
	DoubleWidth
	// DoubleHeightTop is the upper half of a double-height line.
	DoubleHeightTop
	// DoubleHeightBottom is the lower half of a double-height line.
	DoubleHeightBottom
)

// IsDouble reports whether the line renders its cells at double width.
func (s LineSize) IsDouble() bool { return s != SingleWidth }

func (s LineSize) String() string {
	switch s {
	case SingleWidth:
		return "single"
	case DoubleWidth:
		return "double-width"
	case DoubleHeightTop:
		return "double-height-top"
	case DoubleHeightBottom:
		return "double-height-bottom"
	default:
		return "unknown"
	}
}

// cellExtra holds per-cell data that does not fit the packed 8 bytes,
// currently the RGB color triples.
type cellExtra struct {
	fg, bg RGB
}

// Row is one line of the grid. Rows are moved by pointer during
// scrolling so the extras travel with their cells.
type Row struct {
	cells   []Cell
	size    LineSize
	wrapped bool
	extras  map[int]cellExtra
}

func newRow(cols int) *Row {
	r := &Row{cells: make([]Cell, cols)}
	for i := range r.cells {
		r.cells[i] = EmptyCell
	}
	return r
}

// Cols returns the allocated cell count. Double-size rows still allocate
// the full width; only the effective column limit changes.
func (r *Row) Cols() int { return len(r.cells) }

// LineSize returns the row's DEC line attribute.
func (r *Row) LineSize() LineSize { return r.size }

// SetLineSize sets the row's DEC line attribute. Cell content is kept;
// the caller is responsible for re-clamping any cursor on this row.
func (r *Row) SetLineSize(s LineSize) { r.size = s }

// Wrapped reports whether the row continues onto the next one.
func (r *Row) Wrapped() bool { return r.wrapped }

// SetWrapped marks or clears the soft-wrap continuation flag.
func (r *Row) SetWrapped(w bool) { r.wrapped = w }

// Cell returns the cell at col, or EmptyCell when out of range.
func (r *Row) Cell(col int) Cell {
	if col < 0 || col >= len(r.cells) {
		return EmptyCell
	}
	return r.cells[col]
}

// SetCell stores a cell at col. Out-of-range writes are dropped.
func (r *Row) SetCell(col int, c Cell) {
	if col < 0 || col >= len(r.cells) {
		return
	}
	r.cells[col] = c
	delete(r.extras, col)
}

// SetCellRGB stores a cell along with its RGB overflow entry. Used
// when reconstructing rows from a serialized snapshot.
func (r *Row) SetCellRGB(col int, c Cell, fg, bg RGB) {
	if col < 0 || col >= len(r.cells) {
		return
	}
	r.cells[col] = c
	r.setExtra(col, cellExtra{fg: fg, bg: bg})
}

func (r *Row) setExtra(col int, e cellExtra) {
	if r.extras == nil {
		r.extras = make(map[int]cellExtra)
	}
	r.extras[col] = e
}

// FgRGB returns the foreground RGB triple for col. Valid only when the
// cell's color mode says RGB.
func (r *Row) FgRGB(col int) RGB { return r.extras[col].fg }

// BgRGB returns the background RGB triple for col.
func (r *Row) BgRGB(col int) RGB { return r.extras[col].bg }

// clearRange resets cells in [from, to) to blanks carrying bg, the
// erase semantics of EL/ED/ECH (background color persists, attributes
// do not).
func (r *Row) clearRange(from, to int, bg PackedColors) {
	if from < 0 {
		from = 0
	}
	if to > len(r.cells) {
		to = len(r.cells)
	}
	blank := Cell{glyph: ' ', colors: bg}
	for i := from; i < to; i++ {
		r.cells[i] = blank
		delete(r.extras, i)
	}
	r.fixupWideAt(from)
	r.fixupWideAt(to)
}

func (r *Row) clear(bg PackedColors) {
	r.clearRange(0, len(r.cells), bg)
	r.wrapped = false
}

// fixupWideAt repairs a wide pair severed at boundary col: a spacer
// whose primary is gone, or a primary whose spacer is gone, becomes a
// blank.
func (r *Row) fixupWideAt(col int) {
	if col > 0 && col < len(r.cells) {
		if r.cells[col].IsWideSpacer() && !r.cells[col-1].IsWide() {
			r.cells[col] = Cell{glyph: ' ', colors: r.cells[col].colors}
		}
		if r.cells[col-1].IsWide() && !r.cells[col].IsWideSpacer() {
			r.cells[col-1] = Cell{glyph: ' ', colors: r.cells[col-1].colors}
		}
	}
	if col == len(r.cells) && col > 0 && r.cells[col-1].IsWide() {
		r.cells[col-1] = Cell{glyph: ' ', colors: r.cells[col-1].colors}
	}
}

// insertChars shifts cells right from col by count within the row,
// dropping cells off the end and filling the gap with blanks (ICH).
func (r *Row) insertChars(col, count int, bg PackedColors) {
	n := len(r.cells)
	if col < 0 || col >= n || count <= 0 {
		return
	}
	if count > n-col {
		count = n - col
	}
	copy(r.cells[col+count:], r.cells[col:n-count])
	r.shiftExtras(col, count)
	blank := Cell{glyph: ' ', colors: bg}
	for i := col; i < col+count; i++ {
		r.cells[i] = blank
		delete(r.extras, i)
	}
	r.fixupWideAt(col + count)
}

// deleteChars removes count cells at col, shifting the remainder left
// and filling the tail with blanks (DCH).
func (r *Row) deleteChars(col, count int, bg PackedColors) {
	n := len(r.cells)
	if col < 0 || col >= n || count <= 0 {
		return
	}
	if count > n-col {
		count = n - col
	}
	copy(r.cells[col:], r.cells[col+count:])
	r.shiftExtras(col+count, -count)
	blank := Cell{glyph: ' ', colors: bg}
	for i := n - count; i < n; i++ {
		r.cells[i] = blank
		delete(r.extras, i)
	}
	r.fixupWideAt(col)
}

// shiftExtras moves extras keys at or beyond from by delta, discarding
// entries that fall out of range.
func (r *Row) shiftExtras(from, delta int) {
	if len(r.extras) == 0 {
		return
	}
	moved := make(map[int]cellExtra, len(r.extras))
	for col, e := range r.extras {
		nc := col
		if col >= from {
			nc = col + delta
		}
		if nc >= 0 && nc < len(r.cells) {
			moved[nc] = e
		}
	}
	r.extras = moved
}

// resize grows or truncates the row to cols, anchored at column 0.
func (r *Row) resize(cols int) {
	switch {
	case cols < len(r.cells):
		r.cells = r.cells[:cols]
		for col := range r.extras {
			if col >= cols {
				delete(r.extras, col)
			}
		}
		r.fixupWideAt(cols)
	case cols > len(r.cells):
		for len(r.cells) < cols {
			r.cells = append(r.cells, EmptyCell)
		}
	}
}

// text renders the row's content, resolving complex cells through the
// glyph table, skipping wide spacers and trimming trailing blanks.
func (r *Row) text(glyphs *glyphTable) string {
	var b strings.Builder
	for _, c := range r.cells {
		switch {
		case c.IsWideSpacer():
		case c.IsComplex():
			b.WriteString(glyphs.text(c.glyph))
		default:
			b.WriteRune(rune(c.glyph))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
