// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: search/index_test.go
// Summary: Tests for the in-memory trigram index.

package search

import (
	"reflect"
	"testing"
)

func TestIndexSearchBasic(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(0, "hello world")
	ix.IndexLine(1, "goodbye world")
	ix.IndexLine(2, "hello again")

	got := ix.Search("hello")
	want := []int64{0, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search(hello) = %v, want %v", got, want)
	}

	got = ix.Search("world")
	want = []int64{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search(world) = %v, want %v", got, want)
	}
}

func TestIndexMissingTrigramIsEmpty(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(0, "hello world")

	if got := ix.Search("zzz"); got != nil {
		t.Errorf("Search(zzz) = %v, want nil", got)
	}
}

func TestIndexShortQueryReturnsAllLines(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(5, "five")
	ix.IndexLine(2, "two")
	ix.IndexLine(9, "nine")

	got := ix.Search("a")
	want := []int64{2, 5, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search(a) = %v, want %v", got, want)
	}
	if got := ix.Search(""); !reflect.DeepEqual(got, want) {
		t.Errorf("Search(\"\") = %v, want %v", got, want)
	}
}

func TestIndexReindexReplacesOldContent(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(0, "alpha")
	ix.IndexLine(0, "omega")

	if got := ix.Search("alpha"); got != nil {
		t.Errorf("Search(alpha) after reindex = %v, want nil", got)
	}
	if got := ix.Search("omega"); !reflect.DeepEqual(got, []int64{0}) {
		t.Errorf("Search(omega) = %v, want [0]", got)
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
}

func TestIndexSearchIsStable(t *testing.T) {
	ix := NewIndex()
	for i := int64(0); i < 20; i++ {
		ix.IndexLine(i, "line with common text")
	}
	first := ix.Search("common")
	for i := 0; i < 10; i++ {
		if got := ix.Search("common"); !reflect.DeepEqual(got, first) {
			t.Fatalf("repeat search %d = %v, want %v", i, got, first)
		}
	}
}

func TestIndexSearchWithPositions(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(0, "the needle is here")
	ix.IndexLine(1, "nee and dle but no match")
	ix.IndexLine(2, "needle at start")

	got := ix.SearchWithPositions("needle")
	want := []Match{
		{Line: 0, Start: 4, End: 10},
		{Line: 2, Start: 0, End: 6},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchWithPositions = %v, want %v", got, want)
	}
}

func TestIndexClear(t *testing.T) {
	ix := NewIndex()
	ix.IndexLine(0, "content")
	ix.Clear()

	if !ix.IsEmpty() {
		t.Error("IsEmpty = false after Clear")
	}
	if got := ix.Search("content"); got != nil {
		t.Errorf("Search after Clear = %v, want nil", got)
	}
}
