package scrollback

import (
	"fmt"
	"strings"
	"testing"
)

func TestPushAndGet(t *testing.T) {
	s := New(DefaultConfig())
	s.PushStr("first")
	s.PushStr("second")

	if got, ok := s.GetLine(0); !ok || got != "first" {
		t.Errorf("line 0 = %q, %v", got, ok)
	}
	if got, ok := s.GetLine(1); !ok || got != "second" {
		t.Errorf("line 1 = %q, %v", got, ok)
	}
	if s.LineCount() != 2 {
		t.Errorf("count = %d", s.LineCount())
	}
}

func TestMissingIndex(t *testing.T) {
	s := New(DefaultConfig())
	s.PushStr("only")
	if _, ok := s.GetLine(5); ok {
		t.Error("unassigned index should miss")
	}
	if _, ok := s.GetLine(-1); ok {
		t.Error("negative index should miss")
	}
}

func TestTierDemotionPreservesContent(t *testing.T) {
	s := New(Config{HotLines: 5, WarmLines: 10, ByteBudget: 1 << 20})

	const total = 40 // forces hot -> warm -> cold transitions
	for i := 0; i < total; i++ {
		s.PushStr(fmt.Sprintf("line-%03d", i))
	}

	if s.LineCount() != total {
		t.Fatalf("count = %d", s.LineCount())
	}
	// Every line survives with exact content in order, no matter which
	// tier it landed in.
	for i := int64(0); i < total; i++ {
		got, ok := s.GetLine(i)
		if !ok {
			t.Fatalf("line %d missing", i)
		}
		if want := fmt.Sprintf("line-%03d", i); got != want {
			t.Errorf("line %d = %q, want %q", i, got, want)
		}
	}
}

func TestByteBudgetEvictsOldest(t *testing.T) {
	s := New(Config{HotLines: 2, WarmLines: 2, ByteBudget: 64})

	for i := 0; i < 20; i++ {
		s.PushStr(strings.Repeat("x", 10)) // 10 bytes per line
	}

	if s.BytesUsed() > 64 {
		t.Errorf("bytes used %d exceeds budget", s.BytesUsed())
	}
	if s.LineCount() != 20 {
		t.Errorf("count = %d", s.LineCount())
	}
	// Oldest lines are gone, newest survive.
	if _, ok := s.GetLine(0); ok {
		t.Error("line 0 should be evicted")
	}
	if _, ok := s.GetLine(19); !ok {
		t.Error("newest line must survive")
	}
	// Retention is a contiguous suffix.
	oldest := s.OldestRetained()
	for i := oldest; i < s.LineCount(); i++ {
		if _, ok := s.GetLine(i); !ok {
			t.Errorf("line %d inside retained range missing", i)
		}
	}
	for i := int64(0); i < oldest; i++ {
		if _, ok := s.GetLine(i); ok {
			t.Errorf("line %d before retained range present", i)
		}
	}
}

func TestOversizedLineSurvives(t *testing.T) {
	s := New(Config{HotLines: 2, WarmLines: 2, ByteBudget: 8})
	big := strings.Repeat("y", 100)
	s.PushStr(big)

	got, ok := s.GetLine(0)
	if !ok || got != big {
		t.Error("most recent line must never be evicted")
	}

	s.PushStr("next")
	if _, ok := s.GetLine(0); ok {
		t.Error("oversized line should go once a newer line exists")
	}
	if got, ok := s.GetLine(1); !ok || got != "next" {
		t.Errorf("line 1 = %q, %v", got, ok)
	}
}

func TestIndicesNeverReused(t *testing.T) {
	s := New(Config{HotLines: 2, WarmLines: 2, ByteBudget: 1 << 20})
	for i := 0; i < 10; i++ {
		s.PushStr("x")
	}
	s.Clear()
	if s.LineCount() != 10 {
		t.Errorf("count after clear = %d", s.LineCount())
	}
	s.PushStr("after")
	if got, ok := s.GetLine(10); !ok || got != "after" {
		t.Errorf("line 10 = %q, %v", got, ok)
	}
	if _, ok := s.GetLine(3); ok {
		t.Error("cleared lines must stay gone")
	}
}

func TestClearResetsBytes(t *testing.T) {
	s := New(DefaultConfig())
	s.PushStr("some text here")
	s.Clear()
	if s.BytesUsed() != 0 {
		t.Errorf("bytes = %d", s.BytesUsed())
	}
	if s.OldestRetained() != s.LineCount() {
		t.Errorf("oldest = %d, count = %d", s.OldestRetained(), s.LineCount())
	}
}

func TestEmptyLines(t *testing.T) {
	s := New(Config{HotLines: 1, WarmLines: 1, ByteBudget: 1 << 20})
	for i := 0; i < 5; i++ {
		s.PushStr("")
	}
	for i := int64(0); i < 5; i++ {
		if got, ok := s.GetLine(i); !ok || got != "" {
			t.Errorf("line %d = %q, %v", i, got, ok)
		}
	}
}

func TestManyColdBlocks(t *testing.T) {
	s := New(Config{HotLines: 1, WarmLines: 1, ByteBudget: 1 << 30})
	const total = coldBlockLines*3 + 17
	for i := 0; i < total; i++ {
		s.PushStr(fmt.Sprintf("%d", i))
	}
	for i := int64(0); i < total; i++ {
		got, ok := s.GetLine(i)
		if !ok || got != fmt.Sprintf("%d", i) {
			t.Fatalf("line %d = %q, %v", i, got, ok)
		}
	}
}
