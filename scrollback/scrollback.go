// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scrollback/scrollback.go
// Summary: Tiered scrollback: hot and warm line tiers over packed cold
// blocks, bounded by a total byte budget.
//
// Lines enter the hot tier and age outward: hot overflow demotes the
// oldest hot line to warm, warm overflow packs the oldest warm line
// into a cold byte block. A total byte budget covers all three tiers;
// exceeding it evicts the coldest retained line first. Absolute line
// indices are assigned once and never reused, so an index either
// resolves to exactly the text that was pushed or reports a miss.

package scrollback

// Config sets the tier limits.
type Config struct {
	// HotLines caps the hot tier's line count.
	HotLines int
	// WarmLines caps the warm tier's line count.
	WarmLines int
	// ByteBudget bounds the text bytes retained across all tiers.
	ByteBudget int
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		HotLines:   1_000,
		WarmLines:  10_000,
		ByteBudget: 64 << 20,
	}
}

// coldBlockLines is how many lines pack into one cold block.
const coldBlockLines = 256

// coldBlock is a packed run of consecutive lines. Lines evicted from
// the front advance a cursor; the block frees when it empties.
type coldBlock struct {
	start   int64
	offsets []int
	data    []byte
	front   int
}

func (b *coldBlock) lineCount() int { return len(b.offsets) - b.front }

func (b *coldBlock) push(text string) {
	b.offsets = append(b.offsets, len(b.data))
	b.data = append(b.data, text...)
}

func (b *coldBlock) get(idx int64) (string, bool) {
	i := int(idx - b.start)
	if i < b.front || i >= len(b.offsets) {
		return "", false
	}
	end := len(b.data)
	if i+1 < len(b.offsets) {
		end = b.offsets[i+1]
	}
	return string(b.data[b.offsets[i]:end]), true
}

// popFront evicts the oldest line, returning its byte length.
func (b *coldBlock) popFront() int {
	end := len(b.data)
	if b.front+1 < len(b.offsets) {
		end = b.offsets[b.front+1]
	}
	n := end - b.offsets[b.front]
	b.front++
	return n
}

// Scrollback stores lines scrolled off the screen. Not safe for
// concurrent use.
type Scrollback struct {
	cfg Config

	hot  []string
	warm []string
	cold []*coldBlock

	// next is the absolute index the next pushed line receives; it
	// equals the total number of lines ever appended.
	next int64
	// oldest is the absolute index of the oldest retained line.
	oldest int64

	bytes int
}

// New creates a scrollback with the given limits. Non-positive limits
// fall back to the defaults.
func New(cfg Config) *Scrollback {
	def := DefaultConfig()
	if cfg.HotLines < 1 {
		cfg.HotLines = def.HotLines
	}
	if cfg.WarmLines < 1 {
		cfg.WarmLines = def.WarmLines
	}
	if cfg.ByteBudget < 1 {
		cfg.ByteBudget = def.ByteBudget
	}
	return &Scrollback{cfg: cfg}
}

// NewAt creates a scrollback whose next absolute index starts at base.
// Used when rebuilding from a snapshot so line numbering survives.
func NewAt(cfg Config, base int64) *Scrollback {
	s := New(cfg)
	if base > 0 {
		s.next = base
		s.oldest = base
	}
	return s
}

// PushStr appends a line at the next absolute index.
func (s *Scrollback) PushStr(text string) {
	s.hot = append(s.hot, text)
	s.next++
	s.bytes += len(text)

	if len(s.hot) > s.cfg.HotLines {
		s.demoteToWarm()
	}
	if len(s.warm) > s.cfg.WarmLines {
		s.demoteToCold()
	}
	s.enforceBudget()
}

func (s *Scrollback) demoteToWarm() {
	s.warm = append(s.warm, s.hot[0])
	s.hot = s.hot[1:]
}

func (s *Scrollback) demoteToCold() {
	text := s.warm[0]
	s.warm = s.warm[1:]

	idx := s.next - int64(len(s.hot)) - int64(len(s.warm)) - 1
	var b *coldBlock
	if n := len(s.cold); n > 0 {
		last := s.cold[n-1]
		if len(last.offsets) < coldBlockLines && last.start+int64(len(last.offsets)) == idx {
			b = last
		}
	}
	if b == nil {
		b = &coldBlock{start: idx}
		s.cold = append(s.cold, b)
	}
	b.push(text)
}

// enforceBudget evicts the coldest retained lines until the byte
// budget holds. The most recent line is never evicted, so a single
// oversized line still survives.
func (s *Scrollback) enforceBudget() {
	for s.bytes > s.cfg.ByteBudget && s.next-s.oldest > 1 {
		switch {
		case len(s.cold) > 0:
			b := s.cold[0]
			s.bytes -= b.popFront()
			if b.lineCount() == 0 {
				s.cold = s.cold[1:]
			}
		case len(s.warm) > 0:
			s.bytes -= len(s.warm[0])
			s.warm = s.warm[1:]
		default:
			s.bytes -= len(s.hot[0])
			s.hot = s.hot[1:]
		}
		s.oldest++
	}
}

// GetLine returns the text stored at an absolute index. The second
// return is false for indices never assigned or already evicted.
func (s *Scrollback) GetLine(index int64) (string, bool) {
	if index < s.oldest || index >= s.next {
		return "", false
	}
	hotStart := s.next - int64(len(s.hot))
	if index >= hotStart {
		return s.hot[index-hotStart], true
	}
	warmStart := hotStart - int64(len(s.warm))
	if index >= warmStart {
		return s.warm[index-warmStart], true
	}
	// Cold blocks are ordered by start index; scan from the newest.
	for i := len(s.cold) - 1; i >= 0; i-- {
		b := s.cold[i]
		if index >= b.start {
			return b.get(index)
		}
	}
	return "", false
}

// LineCount returns the total number of lines ever appended, including
// lines since evicted.
func (s *Scrollback) LineCount() int64 { return s.next }

// OldestRetained returns the absolute index of the oldest line still
// resolvable, or LineCount when nothing is retained.
func (s *Scrollback) OldestRetained() int64 { return s.oldest }

// BytesUsed returns the text bytes currently retained.
func (s *Scrollback) BytesUsed() int { return s.bytes }

// Clear drops every retained line. Indices are not reused: the next
// push continues the absolute sequence.
func (s *Scrollback) Clear() {
	s.hot = nil
	s.warm = nil
	s.cold = nil
	s.bytes = 0
	s.oldest = s.next
}
