package term

import (
	"strings"
	"testing"

	"github.com/termweave/termweave/grid"
)

func feed(t *Terminal, s string) {
	t.Process([]byte(s))
}

func TestPlainText(t *testing.T) {
	term := New(5, 20)
	feed(term, "hello")
	if got := term.Grid().RowText(0); got != "hello" {
		t.Errorf("row = %q", got)
	}
	if r, c := term.Cursor(); r != 0 || c != 5 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
}

func TestCupPositioning(t *testing.T) {
	term := New(10, 20)
	feed(term, "\x1b[5;10H")
	if r, c := term.Cursor(); r != 4 || c != 9 {
		t.Errorf("cursor = (%d,%d), want (4,9)", r, c)
	}

	// Out-of-range targets clamp to the screen.
	feed(term, "\x1b[99;99H")
	if r, c := term.Cursor(); r != 9 || c != 19 {
		t.Errorf("cursor = (%d,%d), want (9,19)", r, c)
	}

	// Zero and missing params default to 1.
	feed(term, "\x1b[H")
	if r, c := term.Cursor(); r != 0 || c != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", r, c)
	}
}

func TestCursorMovementClamps(t *testing.T) {
	term := New(5, 10)
	feed(term, "\x1b[99A")
	if r, _ := term.Cursor(); r != 0 {
		t.Errorf("CUU row = %d", r)
	}
	feed(term, "\x1b[99B")
	if r, _ := term.Cursor(); r != 4 {
		t.Errorf("CUD row = %d", r)
	}
	feed(term, "\x1b[99C")
	if _, c := term.Cursor(); c != 9 {
		t.Errorf("CUF col = %d", c)
	}
	feed(term, "\x1b[99D")
	if _, c := term.Cursor(); c != 0 {
		t.Errorf("CUB col = %d", c)
	}
}

func TestLineFeedAndWrap(t *testing.T) {
	term := New(3, 4)
	feed(term, "abcdef")
	g := term.Grid()
	if g.RowText(0) != "abcd" || g.RowText(1) != "ef" {
		t.Errorf("rows = %q / %q", g.RowText(0), g.RowText(1))
	}
	if !g.Row(0).Wrapped() {
		t.Error("row 0 must carry the wrap flag")
	}
}

func TestAutoWrapDisabled(t *testing.T) {
	term := New(3, 4)
	feed(term, "\x1b[?7l")
	feed(term, "abcdef")
	g := term.Grid()
	if g.RowText(0) != "abcf" {
		t.Errorf("row = %q", g.RowText(0))
	}
	if r, c := term.Cursor(); r != 0 || c != 3 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
}

func TestScrollRegionConfinesScrolling(t *testing.T) {
	term := New(5, 10)
	for i, s := range []string{"aa", "bb", "cc", "dd", "ee"} {
		feed(term, "\x1b["+string(rune('1'+i))+";1H"+s)
	}

	// Region rows 2..4 (1-based), cursor to region bottom, then LF.
	feed(term, "\x1b[2;4r")
	feed(term, "\x1b[4;1H\n")

	g := term.Grid()
	if g.RowText(0) != "aa" || g.RowText(4) != "ee" {
		t.Errorf("rows outside region scrolled: %q / %q", g.RowText(0), g.RowText(4))
	}
	if g.RowText(1) != "cc" || g.RowText(2) != "dd" || g.RowText(3) != "" {
		t.Errorf("region rows = %q %q %q", g.RowText(1), g.RowText(2), g.RowText(3))
	}
}

func TestDecstbmValidation(t *testing.T) {
	term := New(10, 20)

	// top >= bottom resets to full screen
	feed(term, "\x1b[7;3r")
	if top, bottom := term.ScrollRegion(); top != 0 || bottom != 9 {
		t.Errorf("region = [%d,%d]", top, bottom)
	}

	// Out-of-range bottom clamps to the last row.
	feed(term, "\x1b[2;99r")
	if top, bottom := term.ScrollRegion(); top != 1 || bottom != 9 {
		t.Errorf("region = [%d,%d]", top, bottom)
	}

	// DECSTBM homes the cursor.
	if r, c := term.Cursor(); r != 0 || c != 0 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
}

func TestOriginMode(t *testing.T) {
	term := New(10, 20)
	feed(term, "\x1b[3;7r") // region rows 2..6 (0-based)
	feed(term, "\x1b[?6h")

	if r, c := term.Cursor(); r != 2 || c != 0 {
		t.Errorf("origin-mode home = (%d,%d), want (2,0)", r, c)
	}

	// CUP 1;1 addresses the region top.
	feed(term, "\x1b[1;1H")
	if r, _ := term.Cursor(); r != 2 {
		t.Errorf("CUP row = %d, want 2", r)
	}

	// Addressing past the region bottom clamps to it.
	feed(term, "\x1b[99;1H")
	if r, _ := term.Cursor(); r != 6 {
		t.Errorf("CUP row = %d, want 6", r)
	}

	// Disabling origin mode homes to absolute (0,0).
	feed(term, "\x1b[?6l")
	if r, c := term.Cursor(); r != 0 || c != 0 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
	if !term.Modes().AutoWrap || term.Modes().Origin {
		t.Errorf("modes = %+v", term.Modes())
	}
}

func TestAltScreenRoundTrip(t *testing.T) {
	term := New(5, 20)
	feed(term, "main content")
	feed(term, "\x1b[2;4H")
	before := term.VisibleContent()
	wantRow, wantCol := term.Cursor()

	for cycle := 0; cycle < 5; cycle++ {
		feed(term, "\x1b[?1049h")
		if !term.IsAlternateScreen() {
			t.Fatal("should be on alt screen")
		}
		if term.VisibleContent() != strings.Repeat("\n", 4) {
			t.Errorf("alt screen not blank: %q", term.VisibleContent())
		}
		feed(term, "\x1b[H***garbage***\x1b[5;1Hmore")

		feed(term, "\x1b[?1049l")
		if term.IsAlternateScreen() {
			t.Fatal("should be back on main screen")
		}
		if got := term.VisibleContent(); got != before {
			t.Errorf("cycle %d: content %q, want %q", cycle, got, before)
		}
		if r, c := term.Cursor(); r != wantRow || c != wantCol {
			t.Errorf("cycle %d: cursor (%d,%d), want (%d,%d)", cycle, r, c, wantRow, wantCol)
		}
	}
}

func TestAltScreenEnterIdempotent(t *testing.T) {
	term := New(5, 20)
	feed(term, "keep")
	feed(term, "\x1b[?1049h\x1b[?1049h")
	feed(term, "junk")
	feed(term, "\x1b[?1049l")
	if term.Grid().RowText(0) != "keep" {
		t.Errorf("row = %q", term.Grid().RowText(0))
	}
	feed(term, "\x1b[?1049l") // leaving twice is a no-op
	if term.Grid().RowText(0) != "keep" {
		t.Errorf("row = %q", term.Grid().RowText(0))
	}
}

func TestEraseInDisplay(t *testing.T) {
	term := New(3, 10)
	feed(term, "aaaa\x1b[2;1Hbbbb\x1b[3;1Hcccc")

	feed(term, "\x1b[2;3H\x1b[0J")
	g := term.Grid()
	if g.RowText(0) != "aaaa" {
		t.Errorf("row 0 = %q", g.RowText(0))
	}
	if g.RowText(1) != "bb" {
		t.Errorf("row 1 = %q", g.RowText(1))
	}
	if g.RowText(2) != "" {
		t.Errorf("row 2 = %q", g.RowText(2))
	}

	feed(term, "\x1b[2J")
	if term.VisibleContent() != "\n\n" {
		t.Errorf("screen not cleared: %q", term.VisibleContent())
	}
}

func TestEraseInLine(t *testing.T) {
	term := New(3, 10)
	feed(term, "abcdefgh")
	feed(term, "\x1b[1;4H\x1b[K")
	if got := term.Grid().RowText(0); got != "abc" {
		t.Errorf("EL0: %q", got)
	}

	feed(term, "\x1b[1;1Habcdefgh\x1b[1;4H\x1b[1K")
	if got := term.Grid().RowText(0); got != "    efgh" {
		t.Errorf("EL1: %q", got)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	term := New(4, 10)
	feed(term, "aa\x1b[2;1Hbb\x1b[3;1Hcc\x1b[4;1Hdd")

	feed(term, "\x1b[2;1H\x1b[L")
	g := term.Grid()
	if g.RowText(1) != "" || g.RowText(2) != "bb" || g.RowText(3) != "cc" {
		t.Errorf("after IL: %q %q %q", g.RowText(1), g.RowText(2), g.RowText(3))
	}

	feed(term, "\x1b[M")
	if g.RowText(1) != "bb" || g.RowText(2) != "cc" || g.RowText(3) != "" {
		t.Errorf("after DL: %q %q %q", g.RowText(1), g.RowText(2), g.RowText(3))
	}
}

func TestSgrPen(t *testing.T) {
	term := New(3, 10)
	feed(term, "\x1b[1;31mX\x1b[0mY")
	g := term.Grid()

	x := g.Cell(0, 0)
	if !x.Flags().Has(grid.FlagBold) {
		t.Error("X should be bold")
	}
	if !x.Colors().FgIsIndexed() || x.Colors().FgIndex() != 1 {
		t.Errorf("X fg = %v", x.Colors())
	}

	y := g.Cell(0, 1)
	if y.Flags().Visual() != 0 || !y.Colors().FgIsDefault() {
		t.Error("Y should be reset")
	}
}

func TestSgrExtendedColors(t *testing.T) {
	term := New(3, 10)
	feed(term, "\x1b[38;5;196mA")
	c := term.Grid().Cell(0, 0)
	if !c.Colors().FgIsIndexed() || c.Colors().FgIndex() != 196 {
		t.Errorf("256-color fg = %v", c.Colors())
	}

	feed(term, "\x1b[48;2;10;20;30mB")
	c = term.Grid().Cell(0, 1)
	if !c.Colors().BgIsRGB() {
		t.Fatalf("rgb bg mode = %v", c.Colors())
	}
	if got := term.Grid().Row(0).BgRGB(1); got != (grid.RGB{R: 10, G: 20, B: 30}) {
		t.Errorf("rgb bg = %+v", got)
	}
}

func TestLineEviction(t *testing.T) {
	var evicted []string
	term := New(2, 10, WithLineSink(func(l string) { evicted = append(evicted, l) }))

	feed(term, "one\r\ntwo\r\nthree")
	if len(evicted) != 1 || evicted[0] != "one" {
		t.Errorf("evicted = %v", evicted)
	}
	g := term.Grid()
	if g.RowText(0) != "two" || g.RowText(1) != "three" {
		t.Errorf("rows = %q / %q", g.RowText(0), g.RowText(1))
	}
}

func TestNoEvictionFromAltScreen(t *testing.T) {
	var evicted []string
	term := New(2, 10, WithLineSink(func(l string) { evicted = append(evicted, l) }))

	feed(term, "\x1b[?1049h")
	feed(term, "a\r\nb\r\nc\r\nd")
	if len(evicted) != 0 {
		t.Errorf("alt screen must not evict: %v", evicted)
	}
}

func TestNoEvictionFromPartialRegion(t *testing.T) {
	var evicted []string
	term := New(5, 10, WithLineSink(func(l string) { evicted = append(evicted, l) }))

	feed(term, "\x1b[2;4r\x1b[4;1Hx\r\ny\r\nz")
	if len(evicted) != 0 {
		t.Errorf("partial region must not evict: %v", evicted)
	}
}

func TestDoubleWidthLineEscape(t *testing.T) {
	term := New(5, 10)
	feed(term, "\x1b[1;9H") // col 8
	feed(term, "\x1b#6")    // DECDWL halves the row to 5 effective cols

	g := term.Grid()
	if g.Row(0).LineSize() != grid.DoubleWidth {
		t.Fatalf("line size = %v", g.Row(0).LineSize())
	}
	if _, c := term.Cursor(); c != 4 {
		t.Errorf("cursor col = %d, want 4", c)
	}

	feed(term, "\x1b#5")
	if g.Row(0).LineSize() != grid.SingleWidth {
		t.Errorf("line size = %v", g.Row(0).LineSize())
	}
}

func TestDoubleHeightPair(t *testing.T) {
	term := New(5, 10)
	feed(term, "\x1b#3AB\x1b[2;1H\x1b#4AB")
	g := term.Grid()
	if g.Row(0).LineSize() != grid.DoubleHeightTop {
		t.Errorf("row 0 size = %v", g.Row(0).LineSize())
	}
	if g.Row(1).LineSize() != grid.DoubleHeightBottom {
		t.Errorf("row 1 size = %v", g.Row(1).LineSize())
	}
}

func TestDecaln(t *testing.T) {
	term := New(3, 4)
	feed(term, "\x1b#8")
	want := "EEEE\nEEEE\nEEEE"
	if got := term.VisibleContent(); got != want {
		t.Errorf("screen = %q", got)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	term := New(5, 20)
	feed(term, "\x1b[3;7H\x1b[1m\x1b7")
	feed(term, "\x1b[H\x1b[0m")
	feed(term, "\x1b8")
	if r, c := term.Cursor(); r != 2 || c != 6 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
	feed(term, "X")
	if !term.Grid().Cell(2, 6).Flags().Has(grid.FlagBold) {
		t.Error("restored pen should be bold")
	}
}

func TestReverseIndexScrollsDown(t *testing.T) {
	term := New(3, 10)
	feed(term, "aa\r\nbb\r\ncc\x1b[1;1H\x1bM")
	g := term.Grid()
	if g.RowText(0) != "" || g.RowText(1) != "aa" || g.RowText(2) != "bb" {
		t.Errorf("rows = %q %q %q", g.RowText(0), g.RowText(1), g.RowText(2))
	}
}

func TestRisFullReset(t *testing.T) {
	term := New(3, 10)
	feed(term, "\x1b[1mstuff\x1b[2;3r\x1b[?6h\x1b]0;title\x07")
	feed(term, "\x1bc")

	if term.VisibleContent() != "\n\n" {
		t.Errorf("screen = %q", term.VisibleContent())
	}
	if r, c := term.Cursor(); r != 0 || c != 0 {
		t.Errorf("cursor = (%d,%d)", r, c)
	}
	if top, bottom := term.ScrollRegion(); top != 0 || bottom != 2 {
		t.Errorf("region = [%d,%d]", top, bottom)
	}
	if term.Modes().Origin || term.Title() != "" {
		t.Error("modes/title survived RIS")
	}
	feed(term, "x")
	if term.Grid().Cell(0, 0).Flags().Visual() != 0 {
		t.Error("pen survived RIS")
	}
}

func TestWindowTitle(t *testing.T) {
	term := New(3, 10)
	feed(term, "\x1b]2;my session\x07")
	if term.Title() != "my session" {
		t.Errorf("title = %q", term.Title())
	}
	feed(term, "\x1b]0;other\x1b\\")
	if term.Title() != "other" {
		t.Errorf("title = %q", term.Title())
	}
}

func TestDsrResponse(t *testing.T) {
	var resp []byte
	term := New(10, 20, WithResponder(func(p []byte) { resp = append(resp, p...) }))
	feed(term, "\x1b[4;8H\x1b[6n")
	if string(resp) != "\x1b[4;8R" {
		t.Errorf("DSR response = %q", resp)
	}
}

func TestInsertMode(t *testing.T) {
	term := New(3, 10)
	feed(term, "abc\x1b[1;1H\x1b[4hX")
	if got := term.Grid().RowText(0); got != "Xabc" {
		t.Errorf("after IRM insert: %q", got)
	}
	feed(term, "\x1b[4l")
	feed(term, "Y")
	if got := term.Grid().RowText(0); got != "XYbc" {
		t.Errorf("after IRM reset: %q", got)
	}
}

func TestRepeatCharacter(t *testing.T) {
	term := New(3, 10)
	feed(term, "a\x1b[3b")
	if got := term.Grid().RowText(0); got != "aaaa" {
		t.Errorf("REP: %q", got)
	}
}

func TestWideCharsAndCombining(t *testing.T) {
	term := New(3, 10)
	feed(term, "世é")
	g := term.Grid()
	if !g.IsWidePrimary(0, 0) || !g.IsWideSpacer(0, 1) {
		t.Error("wide pair not placed")
	}
	if g.CellText(0, 2) != "é" {
		t.Errorf("cell 2 = %q", g.CellText(0, 2))
	}
}

func TestTabsAndHts(t *testing.T) {
	term := New(3, 40)
	feed(term, "\tx")
	if got := term.Grid().CellText(0, 8); got != "x" {
		t.Errorf("tab landing: cell 8 = %q", got)
	}
	feed(term, "\x1b[1;13H\x1bH\x1b[1;1H\t\t")
	if _, c := term.Cursor(); c != 12 {
		t.Errorf("cursor col = %d, want 12", c)
	}
	feed(term, "\x1b[3g\x1b[1;1H\t")
	if _, c := term.Cursor(); c != 39 {
		t.Errorf("cursor col after TBC 3 = %d", c)
	}
}

func TestDcsAndApcRetained(t *testing.T) {
	term := New(3, 10)
	feed(term, "\x1bPqpayload\x1b\\")
	if string(term.LastDCS()) != "payload" {
		t.Errorf("dcs = %q", term.LastDCS())
	}
	feed(term, "\x1b_Gi=1\x1b\\")
	if string(term.LastAPC()) != "Gi=1" {
		t.Errorf("apc = %q", term.LastAPC())
	}
}

func TestResizeResetsRegion(t *testing.T) {
	term := New(10, 20)
	feed(term, "\x1b[3;7r")
	term.Resize(6, 15)
	if top, bottom := term.ScrollRegion(); top != 0 || bottom != 5 {
		t.Errorf("region = [%d,%d]", top, bottom)
	}
	g := term.Grid()
	if g.Rows() != 6 || g.Cols() != 15 {
		t.Errorf("size = %dx%d", g.Rows(), g.Cols())
	}
}

func TestAdversarialInputNeverPanics(t *testing.T) {
	term := New(5, 10, WithLineSink(func(string) {}))
	inputs := []string{
		"\x1b[",
		"\x1b[9999999999999999m",
		"\x1b[;;;;;;;;;;;;;;;;;;;;;H",
		"\x1b]0;unterminated",
		"\x1bP+q\x1b[31m",
		"\xff\xfe\x80\x9b5A",
		"\x1b[?1049h\x1b[?1049h\x1b[?1049l\x1b[?1049l",
	}
	for _, in := range inputs {
		feed(term, in)
	}
	r, c := term.Cursor()
	if r < 0 || r >= term.Grid().Rows() || c < 0 || c >= term.Grid().Cols() {
		t.Errorf("cursor out of bounds: (%d,%d)", r, c)
	}
}
