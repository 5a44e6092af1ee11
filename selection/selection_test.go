// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: selection/selection_test.go
// Summary: Tests for selection geometry and wide-glyph widening.

package selection

import (
	"testing"

	"github.com/termweave/termweave/grid"
)

func TestSimpleSingleRow(t *testing.T) {
	s := New(nil)
	s.Start(2, 3, SideLeft, Simple)
	s.Update(2, 6, SideRight)
	s.Complete()

	for col := 3; col <= 6; col++ {
		if !s.Contains(2, col) {
			t.Errorf("Contains(2,%d) = false", col)
		}
	}
	if s.Contains(2, 2) || s.Contains(2, 7) {
		t.Error("selection leaks one cell past its anchors")
	}
	if s.Contains(1, 4) || s.Contains(3, 4) {
		t.Error("selection leaks to adjacent rows")
	}
}

func TestSimpleSpansRowsLinearly(t *testing.T) {
	s := New(nil)
	s.Start(1, 5, SideLeft, Simple)
	s.Update(3, 2, SideRight)
	s.Complete()

	if !s.Contains(1, 5) || !s.Contains(1, 99) {
		t.Error("first row should run from the anchor to the line end")
	}
	if s.Contains(1, 4) {
		t.Error("first row contains cells before the anchor")
	}
	if !s.Contains(2, 0) || !s.Contains(2, 99) {
		t.Error("middle row should be fully contained")
	}
	if !s.Contains(3, 0) || !s.Contains(3, 2) {
		t.Error("last row should run up to the anchor")
	}
	if s.Contains(3, 3) {
		t.Error("last row contains cells past the anchor")
	}
}

func TestSimpleReversedAnchors(t *testing.T) {
	s := New(nil)
	s.Start(3, 2, SideRight, Simple)
	s.Update(1, 5, SideLeft)
	s.Complete()

	if !s.Contains(2, 0) || !s.Contains(1, 5) || !s.Contains(3, 2) {
		t.Error("dragging upward should select the same range")
	}
	if s.Contains(0, 0) || s.Contains(4, 0) {
		t.Error("reversed selection leaks outside its rows")
	}
}

func TestSidesMoveInwardOnly(t *testing.T) {
	s := New(nil)
	// Grabbing the right half of the first cell excludes it.
	s.Start(0, 2, SideRight, Simple)
	s.Update(0, 5, SideLeft)
	s.Complete()

	if s.Contains(0, 2) {
		t.Error("right-side start anchor should exclude its cell")
	}
	if s.Contains(0, 5) {
		t.Error("left-side end anchor should exclude its cell")
	}
	if !s.Contains(0, 3) || !s.Contains(0, 4) {
		t.Error("interior cells missing")
	}
}

func TestInwardSidesCanEmptySelection(t *testing.T) {
	s := New(nil)
	s.Start(0, 3, SideRight, Simple)
	s.Update(0, 4, SideLeft)
	s.Complete()

	for col := 0; col < 8; col++ {
		if s.Contains(0, col) {
			t.Errorf("empty selection contains (0,%d)", col)
		}
	}
}

func TestBlockSelection(t *testing.T) {
	s := New(nil)
	s.Start(1, 6, SideLeft, Block)
	s.Update(4, 2, SideLeft)
	s.Complete()

	// Rows 1..4, cols 2..5 (left side of col 6 excludes it as the
	// right boundary).
	for row := 1; row <= 4; row++ {
		for col := 2; col <= 5; col++ {
			if !s.Contains(row, col) {
				t.Errorf("Contains(%d,%d) = false", row, col)
			}
		}
		if s.Contains(row, 1) || s.Contains(row, 6) {
			t.Errorf("row %d leaks outside the column band", row)
		}
	}
	if s.Contains(0, 3) || s.Contains(5, 3) {
		t.Error("block leaks outside its rows")
	}
}

func wideGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g := grid.New(3, 10)
	g.SetCursor(0, 2)
	g.PutText("世", grid.DefaultStyle) // primary at (0,2), spacer at (0,3)
	return g
}

func TestWideBoundaryOnPrimaryExtends(t *testing.T) {
	g := wideGrid(t)
	s := New(g)
	s.Start(0, 0, SideLeft, Simple)
	s.Update(0, 2, SideRight)
	s.Complete()

	if !s.Contains(0, 2) {
		t.Error("wide primary not contained")
	}
	if !s.Contains(0, 3) {
		t.Error("spacer of a selected wide glyph must be contained")
	}
	if s.Contains(0, 4) {
		t.Error("cell after the spacer should not be contained")
	}
}

func TestWideBoundaryOnSpacerExtendsBack(t *testing.T) {
	g := wideGrid(t)
	s := New(g)
	s.Start(0, 3, SideLeft, Simple)
	s.Update(0, 6, SideRight)
	s.Complete()

	if !s.Contains(0, 2) {
		t.Error("primary of a selected spacer must be contained")
	}
	if s.Contains(0, 1) {
		t.Error("cell before the primary should not be contained")
	}
}

func TestBlockWidensPerRow(t *testing.T) {
	g := grid.New(3, 10)
	g.SetCursor(1, 3)
	g.PutText("世", grid.DefaultStyle) // wide pair on row 1 only

	s := New(g)
	s.Start(0, 1, SideLeft, Block)
	s.Update(2, 3, SideRight)
	s.Complete()

	if s.Contains(0, 4) || s.Contains(2, 4) {
		t.Error("narrow rows should stop at the column band")
	}
	if !s.Contains(1, 4) {
		t.Error("wide row should include the spacer past the band")
	}
}

func TestContainsFalseBeforeComplete(t *testing.T) {
	s := New(nil)
	s.Start(0, 0, SideLeft, Simple)
	s.Update(0, 5, SideRight)
	if s.Contains(0, 2) {
		t.Error("Contains answered before Complete")
	}
	s.Complete()
	if !s.Contains(0, 2) {
		t.Error("Contains false after Complete")
	}
	s.Clear()
	if s.Contains(0, 2) || s.Active() {
		t.Error("Clear should drop the selection")
	}
}

func TestUpdateWithoutStartIsIgnored(t *testing.T) {
	s := New(nil)
	s.Update(1, 1, SideLeft)
	s.Complete()
	if s.Contains(1, 1) || s.Active() {
		t.Error("update without start should not create a selection")
	}
}
