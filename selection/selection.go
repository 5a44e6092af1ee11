// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: selection/selection.go
// Summary: Text selection geometry over grid coordinates.
//
// A selection is anchored by two (row, col, side) triples. The side
// says which half of the cell the anchor grabbed: grabbing the right
// half of the first cell or the left half of the last cell excludes
// that cell, so sides only ever move a boundary inward. Wide glyphs
// are the one exception: a boundary that lands on half of a
// double-width pair is widened to cover the whole glyph.

package selection

// Side is the half of a cell an anchor points at.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Kind selects the selection geometry.
type Kind int

const (
	// Simple is a linear range flowing across rows.
	Simple Kind = iota
	// Block is the product of a row range and a column range.
	Block
)

// WideOracle reports the wide-character layout of the underlying
// screen. grid.Grid implements it.
type WideOracle interface {
	IsWidePrimary(row, col int) bool
	IsWideSpacer(row, col int) bool
}

type anchor struct {
	row, col int
	side     Side
}

// before orders anchors in reading order; a right-side anchor sits
// after a left-side anchor on the same cell.
func (a anchor) before(b anchor) bool {
	if a.row != b.row {
		return a.row < b.row
	}
	if a.col != b.col {
		return a.col < b.col
	}
	return a.side < b.side
}

// Selection tracks one in-progress or completed selection.
type Selection struct {
	oracle WideOracle
	kind   Kind
	start  anchor
	end    anchor

	active   bool
	complete bool
}

// New creates an empty selection over the given screen layout.
func New(oracle WideOracle) *Selection {
	return &Selection{oracle: oracle}
}

// Start begins a new selection at an anchor, discarding any previous
// one.
func (s *Selection) Start(row, col int, side Side, kind Kind) {
	s.kind = kind
	s.start = anchor{row: row, col: col, side: side}
	s.end = s.start
	s.active = true
	s.complete = false
}

// Update moves the free end of the selection.
func (s *Selection) Update(row, col int, side Side) {
	if !s.active {
		return
	}
	s.end = anchor{row: row, col: col, side: side}
}

// Complete freezes the selection; Contains answers against it from now
// on.
func (s *Selection) Complete() {
	if s.active {
		s.complete = true
	}
}

// Clear discards the selection.
func (s *Selection) Clear() {
	s.active = false
	s.complete = false
}

// Active reports whether a selection is in progress or completed.
func (s *Selection) Active() bool { return s.active }

// Completed reports whether Complete has been called.
func (s *Selection) Completed() bool { return s.complete }

// Contains reports whether the completed selection covers the cell at
// (row, col).
func (s *Selection) Contains(row, col int) bool {
	if !s.complete {
		return false
	}
	switch s.kind {
	case Block:
		return s.blockContains(row, col)
	default:
		return s.simpleContains(row, col)
	}
}

// ordered returns the anchors in reading order.
func (s *Selection) ordered() (anchor, anchor) {
	if s.end.before(s.start) {
		return s.end, s.start
	}
	return s.start, s.end
}

func (s *Selection) simpleContains(row, col int) bool {
	first, last := s.ordered()

	// Sides move the boundaries inward.
	startRow, startCol := first.row, first.col
	if first.side == SideRight {
		startCol++
	}
	endRow, endCol := last.row, last.col
	if last.side == SideLeft {
		endCol--
	}

	startCol = s.widenLeft(startRow, startCol)
	endCol = s.widenRight(endRow, endCol)

	if startRow > endRow || (startRow == endRow && startCol > endCol) {
		return false
	}
	if row < startRow || row > endRow {
		return false
	}
	if row == startRow && col < startCol {
		return false
	}
	if row == endRow && col > endCol {
		return false
	}
	return true
}

func (s *Selection) blockContains(row, col int) bool {
	first, last := s.ordered()

	topRow, bottomRow := first.row, last.row

	// Column range is independent of row order; the side of the
	// smaller column is the left boundary.
	leftCol, leftSide := first.col, first.side
	rightCol, rightSide := last.col, last.side
	if rightCol < leftCol {
		leftCol, rightCol = rightCol, leftCol
		leftSide, rightSide = rightSide, leftSide
	}
	if leftSide == SideRight {
		leftCol++
	}
	if rightSide == SideLeft {
		rightCol--
	}

	if row < topRow || row > bottomRow || leftCol > rightCol {
		return false
	}

	// Wide pairs are widened per row: the glyphs under the column
	// band differ from row to row.
	l := s.widenLeft(row, leftCol)
	r := s.widenRight(row, rightCol)
	return col >= l && col <= r
}

// widenLeft pulls a boundary sitting on a wide spacer back onto its
// primary cell.
func (s *Selection) widenLeft(row, col int) int {
	if s.oracle != nil && col > 0 && s.oracle.IsWideSpacer(row, col) {
		return col - 1
	}
	return col
}

// widenRight pushes a boundary sitting on a wide primary across its
// spacer cell.
func (s *Selection) widenRight(row, col int) int {
	if s.oracle != nil && s.oracle.IsWidePrimary(row, col) {
		return col + 1
	}
	return col
}
