// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/cell.go
// Summary: Packed 8-byte cell representation with color modes and flags.
//
// A Cell is exactly 8 bytes: a 16-bit glyph slot, 32 bits of packed
// colors and 16 bits of flags. Glyphs in the Basic Multilingual Plane
// are stored directly as their code unit; anything wider (non-BMP runes,
// grapheme clusters) is interned in the grid's glyph table and the cell
// stores the table index with the COMPLEX flag set.

package grid

// PackedColors encodes foreground and background in a single uint32.
//
// Bits 0-7 hold the FG palette index, bits 8-15 the BG palette index.
// Bits 24-27 and 28-31 are the FG and BG mode nibbles: 0 default,
// 1 indexed, 2 RGB. RGB values do not fit here; they live in the row's
// extras table and the mode nibble marks the lookup.
type PackedColors uint32

const (
	fgModeShift = 24
	bgModeShift = 28
	modeMask    = 0x0F

	colorModeDefault = 0
	colorModeIndexed = 1
	colorModeRGB     = 2
)

// DefaultColors has both foreground and background at terminal default.
const DefaultColors PackedColors = 0

// IndexedFg returns colors with the foreground set to a palette index.
func (c PackedColors) IndexedFg(index uint8) PackedColors {
	c &^= 0xFF | (modeMask << fgModeShift)
	return c | PackedColors(index) | (colorModeIndexed << fgModeShift)
}

// IndexedBg returns colors with the background set to a palette index.
func (c PackedColors) IndexedBg(index uint8) PackedColors {
	c &^= 0xFF00 | (modeMask << bgModeShift)
	return c | PackedColors(index)<<8 | (colorModeIndexed << bgModeShift)
}

// RGBFg marks the foreground as RGB. The actual triple is stored in the
// row extras keyed by column.
func (c PackedColors) RGBFg() PackedColors {
	c &^= modeMask << fgModeShift
	return c | (colorModeRGB << fgModeShift)
}

// RGBBg marks the background as RGB.
func (c PackedColors) RGBBg() PackedColors {
	c &^= modeMask << bgModeShift
	return c | (colorModeRGB << bgModeShift)
}

// DefaultFg clears the foreground back to the terminal default.
func (c PackedColors) DefaultFg() PackedColors {
	return c &^ ((modeMask << fgModeShift) | 0xFF)
}

// DefaultBg clears the background back to the terminal default.
func (c PackedColors) DefaultBg() PackedColors {
	return c &^ ((modeMask << bgModeShift) | 0xFF00)
}

func (c PackedColors) fgMode() uint32 { return (uint32(c) >> fgModeShift) & modeMask }
func (c PackedColors) bgMode() uint32 { return (uint32(c) >> bgModeShift) & modeMask }

// FgIsDefault reports whether the foreground is the terminal default.
func (c PackedColors) FgIsDefault() bool { return c.fgMode() == colorModeDefault }

// BgIsDefault reports whether the background is the terminal default.
func (c PackedColors) BgIsDefault() bool { return c.bgMode() == colorModeDefault }

// FgIsIndexed reports whether the foreground carries a palette index.
func (c PackedColors) FgIsIndexed() bool { return c.fgMode() == colorModeIndexed }

// BgIsIndexed reports whether the background carries a palette index.
func (c PackedColors) BgIsIndexed() bool { return c.bgMode() == colorModeIndexed }

// FgIsRGB reports whether the foreground needs an extras lookup.
func (c PackedColors) FgIsRGB() bool { return c.fgMode() == colorModeRGB }

// BgIsRGB reports whether the background needs an extras lookup.
func (c PackedColors) BgIsRGB() bool { return c.bgMode() == colorModeRGB }

// FgIndex returns the foreground palette index. Valid only when
// FgIsIndexed reports true.
func (c PackedColors) FgIndex() uint8 { return uint8(c) }

// BgIndex returns the background palette index. Valid only when
// BgIsIndexed reports true.
func (c PackedColors) BgIndex() uint8 { return uint8(c >> 8) }

// CellFlags is the 16-bit attribute field of a cell. Bit 15 is COMPLEX:
// when set the cell's glyph field is a glyph table index rather than a
// code unit.
type CellFlags uint16

const (
	FlagBold CellFlags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagBlink
	FlagInverse
	FlagHidden
	FlagStrikethrough
	FlagDoubleUnderline
	// FlagWide marks a character occupying two columns.
	FlagWide
	// FlagWideSpacer marks the continuation cell after a wide character.
	FlagWideSpacer

	// FlagComplex marks the glyph field as a glyph table index.
	FlagComplex CellFlags = 1 << 15
)

// visualFlagsMask covers the attribute bits that SGR can set, excluding
// the structural wide/spacer/complex bits.
const visualFlagsMask CellFlags = 0x01FF

// Has reports whether all bits of other are set.
func (f CellFlags) Has(other CellFlags) bool { return f&other == other }

// Visual returns only the SGR-controlled attribute bits.
func (f CellFlags) Visual() CellFlags { return f & visualFlagsMask }

// RGB is a 24-bit color triple used by the extras overflow.
type RGB struct {
	R, G, B uint8
}

// Cell is a single screen cell, exactly 8 bytes.
type Cell struct {
	glyph  uint16
	colors PackedColors
	flags  CellFlags
}

// maxDirectGlyph is the highest code point stored inline (the BMP).
const maxDirectGlyph = 0xFFFF

// EmptyCell is a space with default colors and no attributes.
var EmptyCell = Cell{glyph: ' '}

// NewCell builds a cell for a single BMP rune with default style.
// Runes outside the BMP are stored as U+FFFD; callers that need them
// intact must go through the grid's glyph table.
func NewCell(r rune) Cell {
	if r > maxDirectGlyph {
		r = '�'
	}
	return Cell{glyph: uint16(r)}
}

// StyledCell builds a cell with explicit colors and flags.
func StyledCell(r rune, colors PackedColors, flags CellFlags) Cell {
	c := NewCell(r)
	c.colors = colors
	c.flags |= flags
	return c
}

// complexCell builds a cell whose glyph field indexes the glyph table.
func complexCell(index uint16, colors PackedColors, flags CellFlags) Cell {
	return Cell{glyph: index, colors: colors, flags: flags | FlagComplex}
}

// Rune returns the cell's rune. For complex cells it returns U+FFFD;
// use Grid.CellText to resolve the full cluster.
func (c Cell) Rune() rune {
	if c.flags.Has(FlagComplex) {
		return '�'
	}
	return rune(c.glyph)
}

// Glyph returns the raw 16-bit glyph field (code unit or table index).
func (c Cell) Glyph() uint16 { return c.glyph }

// Colors returns the packed color field.
func (c Cell) Colors() PackedColors { return c.colors }

// Flags returns the attribute field.
func (c Cell) Flags() CellFlags { return c.flags }

// IsComplex reports whether the glyph field is a glyph table index.
func (c Cell) IsComplex() bool { return c.flags.Has(FlagComplex) }

// IsWide reports whether this cell starts a two-column character.
func (c Cell) IsWide() bool { return c.flags.Has(FlagWide) }

// IsWideSpacer reports whether this is the continuation half of a wide
// character.
func (c Cell) IsWideSpacer() bool { return c.flags.Has(FlagWideSpacer) }

// IsEmpty reports whether the cell is a plain default-styled space.
func (c Cell) IsEmpty() bool { return c == EmptyCell }

// Pack serializes the cell to its canonical 8-byte little-endian form.
func (c Cell) Pack() [8]byte {
	var b [8]byte
	b[0] = byte(c.glyph)
	b[1] = byte(c.glyph >> 8)
	b[2] = byte(c.colors)
	b[3] = byte(c.colors >> 8)
	b[4] = byte(c.colors >> 16)
	b[5] = byte(c.colors >> 24)
	b[6] = byte(c.flags)
	b[7] = byte(c.flags >> 8)
	return b
}

// UnpackCell rebuilds a cell from its canonical 8-byte form.
func UnpackCell(b [8]byte) Cell {
	return Cell{
		glyph:  uint16(b[0]) | uint16(b[1])<<8,
		colors: PackedColors(uint32(b[2]) | uint32(b[3])<<8 | uint32(b[4])<<16 | uint32(b[5])<<24),
		flags:  CellFlags(uint16(b[6]) | uint16(b[7])<<8),
	}
}

// Style is the pen a writer applies to new cells. RGB triples ride
// alongside the packed colors because they do not fit in 8 bytes; rows
// stash them in their extras table when the mode nibble says RGB.
type Style struct {
	Colors PackedColors
	FgRGB  RGB
	BgRGB  RGB
	Flags  CellFlags
}

// DefaultStyle is the reset pen.
var DefaultStyle = Style{}

// glyphTable interns strings that do not fit a cell's 16-bit glyph
// field. Index 0 is reserved so a zeroed cell never aliases an entry.
type glyphTable struct {
	entries []string
	lookup  map[string]uint16
}

func newGlyphTable() *glyphTable {
	return &glyphTable{
		entries: []string{""},
		lookup:  make(map[string]uint16),
	}
}

// intern returns the table index for s, adding it if unseen. The second
// return is false when the table is full (65535 entries).
func (t *glyphTable) intern(s string) (uint16, bool) {
	if idx, ok := t.lookup[s]; ok {
		return idx, true
	}
	if len(t.entries) > maxDirectGlyph {
		return 0, false
	}
	idx := uint16(len(t.entries))
	t.entries = append(t.entries, s)
	t.lookup[s] = idx
	return idx, true
}

// text returns the interned string for idx, or "" if out of range.
func (t *glyphTable) text(idx uint16) string {
	if int(idx) >= len(t.entries) {
		return ""
	}
	return t.entries[idx]
}
