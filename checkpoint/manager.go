// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: checkpoint/manager.go
// Summary: Directory-based binary snapshots of grid and scrollback state.
//
// Snapshot layout, little-endian throughout:
//
//	magic "TWCKPT01"
//	version uint16, flags uint16 (bit 0: scrollback present)
//	rows, cols, cursorRow, cursorCol uint32
//	glyph table: count uint32, then per entry len uint32 + bytes
//	per row: line size uint8, wrapped uint8, cols * 8-byte packed cells,
//	         overflow count uint32, then per entry col uint32 + fg + bg RGB
//	scrollback (if flagged): base int64, count uint32, per line len + bytes
//	crc32 (IEEE) over everything before it
//
// A snapshot that fails any structural check is rejected with an
// explicit error; Restore never hands back a silently empty grid.

package checkpoint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/termweave/termweave/grid"
	"github.com/termweave/termweave/scrollback"
)

var checkpointMagic = []byte("TWCKPT01")

const (
	snapshotVersion      = 1
	flagHasScrollback    = 1 << 0
	snapshotFilePattern  = "checkpoint-*.tw"
	maxSnapshotDimension = 1 << 16
)

// ErrNoCheckpoint means no snapshot exists for this session.
var ErrNoCheckpoint = errors.New("no checkpoint available")

// Config controls snapshot placement, cadence and retention.
type Config struct {
	// Dir is the session directory snapshots are written into.
	Dir string
	// LineInterval is how many scrollback lines accumulate before
	// ShouldCheckpoint reports true.
	LineInterval int64
	// Keep is how many snapshots to retain; older ones are removed
	// after each save.
	Keep int
	// Scrollback configures the store rebuilt by Restore.
	Scrollback scrollback.Config
}

// DefaultConfig returns the standard cadence and retention with
// snapshots written under dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:          dir,
		LineInterval: 500,
		Keep:         3,
		Scrollback:   scrollback.DefaultConfig(),
	}
}

// Manager writes and restores snapshots for one session.
type Manager struct {
	cfg        Config
	seq        int
	linesSince int64
}

// NewManager creates a manager over cfg.Dir. The directory is created
// on first Save, not here, so a read-only Restore works on a path that
// never existed.
func NewManager(cfg Config) *Manager {
	if cfg.LineInterval <= 0 {
		cfg.LineInterval = 500
	}
	if cfg.Keep <= 0 {
		cfg.Keep = 3
	}
	m := &Manager{cfg: cfg}
	m.seq = m.nextSeq()
	return m
}

// NewSessionManager creates a manager in a fresh UUID-named session
// directory under base.
func NewSessionManager(base string, cfg Config) *Manager {
	cfg.Dir = filepath.Join(base, uuid.NewString())
	return NewManager(cfg)
}

// Dir returns the session directory.
func (m *Manager) Dir() string { return m.cfg.Dir }

// NotifyLinesAdded records scrollback growth since the last save.
func (m *Manager) NotifyLinesAdded(n int64) {
	if n > 0 {
		m.linesSince += n
	}
}

// ShouldCheckpoint reports whether the line interval has elapsed.
func (m *Manager) ShouldCheckpoint() bool {
	return m.linesSince >= m.cfg.LineInterval
}

// HasCheckpoint reports whether at least one snapshot file exists.
func (m *Manager) HasCheckpoint() bool {
	paths, _ := filepath.Glob(filepath.Join(m.cfg.Dir, snapshotFilePattern))
	return len(paths) > 0
}

func (m *Manager) nextSeq() int {
	paths := m.snapshots()
	if len(paths) == 0 {
		return 0
	}
	return snapshotSeq(paths[len(paths)-1]) + 1
}

// snapshotSeq parses the sequence number out of a snapshot filename.
// Unparseable names sort before everything.
func snapshotSeq(path string) int {
	var n int
	if _, err := fmt.Sscanf(filepath.Base(path), "checkpoint-%d.tw", &n); err != nil {
		return -1
	}
	return n
}

// snapshots returns the session's snapshot files ordered by sequence
// number, oldest first. Filenames are zero-padded but the order must
// not depend on that: past the pad width a lexical sort goes wrong.
func (m *Manager) snapshots() []string {
	paths, _ := filepath.Glob(filepath.Join(m.cfg.Dir, snapshotFilePattern))
	sort.Slice(paths, func(i, j int) bool {
		return snapshotSeq(paths[i]) < snapshotSeq(paths[j])
	})
	return paths
}

// LatestSession returns the most recently modified session directory
// under base that holds at least one snapshot.
func LatestSession(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", ErrNoCheckpoint
	}
	var (
		newest     string
		newestTime int64
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(base, e.Name())
		paths, _ := filepath.Glob(filepath.Join(dir, snapshotFilePattern))
		if len(paths) == 0 {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); newest == "" || t > newestTime {
			newest, newestTime = dir, t
		}
	}
	if newest == "" {
		return "", ErrNoCheckpoint
	}
	return newest, nil
}

// Save serializes g and sb into a new snapshot file and returns its
// path. Passing a nil scrollback omits that section.
func (m *Manager) Save(g *grid.Grid, sb *scrollback.Scrollback) (string, error) {
	if err := os.MkdirAll(m.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating checkpoint dir: %w", err)
	}

	payload := encodeSnapshot(g, sb)

	path := filepath.Join(m.cfg.Dir, fmt.Sprintf("checkpoint-%06d.tw", m.seq))
	tmp, err := os.CreateTemp(m.cfg.Dir, "checkpoint-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("placing snapshot: %w", err)
	}

	m.seq++
	m.linesSince = 0
	m.cleanup()
	return path, nil
}

// cleanup removes snapshots beyond the retention count, oldest first.
func (m *Manager) cleanup() {
	paths := m.snapshots()
	if len(paths) <= m.cfg.Keep {
		return
	}
	for _, p := range paths[:len(paths)-m.cfg.Keep] {
		os.Remove(p)
	}
}

// Restore loads the newest structurally valid snapshot. Returns
// ErrNoCheckpoint when the directory or snapshot is absent; corrupt
// snapshots yield an explicit error.
func (m *Manager) Restore() (*grid.Grid, *scrollback.Scrollback, error) {
	paths := m.snapshots()
	if len(paths) == 0 {
		return nil, nil, ErrNoCheckpoint
	}

	var lastErr error
	for i := len(paths) - 1; i >= 0; i-- {
		p := paths[i]
		data, err := os.ReadFile(p)
		if err != nil {
			lastErr = fmt.Errorf("reading snapshot %s: %w", filepath.Base(p), err)
			continue
		}
		g, sb, err := decodeSnapshot(data, m.cfg.Scrollback)
		if err != nil {
			lastErr = fmt.Errorf("snapshot %s: %w", filepath.Base(p), err)
			continue
		}
		return g, sb, nil
	}
	return nil, nil, lastErr
}

func encodeSnapshot(g *grid.Grid, sb *scrollback.Scrollback) []byte {
	var buf bytes.Buffer
	buf.Write(checkpointMagic)

	var flags uint16
	if sb != nil {
		flags |= flagHasScrollback
	}
	putU16(&buf, snapshotVersion)
	putU16(&buf, flags)
	putU32(&buf, uint32(g.Rows()))
	putU32(&buf, uint32(g.Cols()))
	putU32(&buf, uint32(g.CursorRow()))
	putU32(&buf, uint32(g.CursorCol()))

	glyphs := g.GlyphEntries()
	putU32(&buf, uint32(len(glyphs)))
	for _, s := range glyphs {
		putStr(&buf, s)
	}

	for i := 0; i < g.Rows(); i++ {
		row := g.Row(i)
		buf.WriteByte(byte(row.LineSize()))
		if row.Wrapped() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		var extraCols []int
		for col := 0; col < g.Cols(); col++ {
			c := row.Cell(col)
			packed := c.Pack()
			buf.Write(packed[:])
			if c.Colors().FgIsRGB() || c.Colors().BgIsRGB() {
				extraCols = append(extraCols, col)
			}
		}
		putU32(&buf, uint32(len(extraCols)))
		for _, col := range extraCols {
			putU32(&buf, uint32(col))
			fg, bg := row.FgRGB(col), row.BgRGB(col)
			buf.Write([]byte{fg.R, fg.G, fg.B, bg.R, bg.G, bg.B})
		}
	}

	if sb != nil {
		base := sb.OldestRetained()
		var raw [8]byte
		binary.LittleEndian.PutUint64(raw[:], uint64(base))
		buf.Write(raw[:])
		count := sb.LineCount() - base
		putU32(&buf, uint32(count))
		for i := base; i < sb.LineCount(); i++ {
			line, _ := sb.GetLine(i)
			putStr(&buf, line)
		}
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	putU32(&buf, sum)
	return buf.Bytes()
}

func decodeSnapshot(data []byte, sbCfg scrollback.Config) (*grid.Grid, *scrollback.Scrollback, error) {
	if len(data) < len(checkpointMagic)+4 {
		return nil, nil, errors.New("truncated snapshot")
	}
	if !bytes.Equal(data[:len(checkpointMagic)], checkpointMagic) {
		return nil, nil, errors.New("bad snapshot magic")
	}

	body := data[:len(data)-4]
	want := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != want {
		return nil, nil, errors.New("snapshot checksum mismatch")
	}

	r := &snapshotReader{data: body[len(checkpointMagic):]}

	version := r.u16()
	if version != snapshotVersion {
		return nil, nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	flags := r.u16()

	rows := int(r.u32())
	cols := int(r.u32())
	cursorRow := int(r.u32())
	cursorCol := int(r.u32())
	if r.err != nil {
		return nil, nil, r.err
	}
	if rows < 1 || cols < 1 || rows > maxSnapshotDimension || cols > maxSnapshotDimension {
		return nil, nil, fmt.Errorf("implausible snapshot dimensions %dx%d", rows, cols)
	}

	glyphCount := int(r.u32())
	if r.err != nil {
		return nil, nil, r.err
	}
	// Each glyph entry carries at least its 4-byte length prefix, so
	// the count can never exceed a quarter of the remaining payload.
	if glyphCount < 0 || glyphCount > (len(r.data)-r.off)/4 {
		return nil, nil, fmt.Errorf("implausible glyph count %d", glyphCount)
	}
	glyphs := make([]string, 0, glyphCount)
	for i := 0; i < glyphCount && r.err == nil; i++ {
		glyphs = append(glyphs, r.str())
	}

	g := grid.New(rows, cols)
	g.RestoreGlyphs(glyphs)

	for i := 0; i < rows && r.err == nil; i++ {
		row := g.Row(i)
		size := grid.LineSize(r.u8())
		if size > grid.DoubleHeightBottom {
			return nil, nil, fmt.Errorf("invalid line size %d in row %d", size, i)
		}
		row.SetLineSize(size)
		row.SetWrapped(r.u8() != 0)
		for col := 0; col < cols && r.err == nil; col++ {
			var packed [8]byte
			r.bytes(packed[:])
			row.SetCell(col, grid.UnpackCell(packed))
		}
		extraCount := int(r.u32())
		for j := 0; j < extraCount && r.err == nil; j++ {
			col := int(r.u32())
			var rgb [6]byte
			r.bytes(rgb[:])
			if col < 0 || col >= cols {
				return nil, nil, fmt.Errorf("overflow entry column %d out of range", col)
			}
			row.SetCellRGB(col, row.Cell(col),
				grid.RGB{R: rgb[0], G: rgb[1], B: rgb[2]},
				grid.RGB{R: rgb[3], G: rgb[4], B: rgb[5]})
		}
	}
	if r.err != nil {
		return nil, nil, r.err
	}
	g.SetCursor(cursorRow, cursorCol)

	var sb *scrollback.Scrollback
	if flags&flagHasScrollback != 0 {
		var raw [8]byte
		r.bytes(raw[:])
		base := int64(binary.LittleEndian.Uint64(raw[:]))
		count := int(r.u32())
		if r.err != nil {
			return nil, nil, r.err
		}
		if base < 0 {
			return nil, nil, fmt.Errorf("negative scrollback base %d", base)
		}
		sb = scrollback.NewAt(sbCfg, base)
		for i := 0; i < count; i++ {
			sb.PushStr(r.str())
			if r.err != nil {
				return nil, nil, r.err
			}
		}
	}
	if len(r.data) != r.off {
		return nil, nil, errors.New("trailing bytes in snapshot")
	}
	return g, sb, nil
}

// snapshotReader walks the payload with sticky truncation errors.
type snapshotReader struct {
	data []byte
	off  int
	err  error
}

func (r *snapshotReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = errors.New("truncated snapshot")
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *snapshotReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *snapshotReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *snapshotReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *snapshotReader) str() string {
	n := int(r.u32())
	if r.err != nil {
		return ""
	}
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *snapshotReader) bytes(dst []byte) {
	b := r.take(len(dst))
	if b != nil {
		copy(dst, b)
	}
}

func putU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putStr(buf *bytes.Buffer, s string) {
	putU32(buf, uint32(len(s)))
	buf.WriteString(s)
}
