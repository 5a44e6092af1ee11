// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: search/index.go
// Summary: In-memory trigram index over scrollback lines.
//
// The index maps overlapping 3-byte windows of each line to posting
// sets of line numbers. A query of three bytes or more intersects the
// posting sets of its own trigrams: every line containing the query is
// in the result (no false negatives), lines containing the trigrams in
// other arrangements may appear too (false positives are allowed).
// SearchWithPositions removes those by verifying against cached text.

package search

import (
	"sort"
	"strings"
)

// Index is the synchronous in-memory trigram index. Not safe for
// concurrent use; the persistent Store covers the async path.
type Index struct {
	postings map[string]map[int64]struct{}
	lines    map[int64]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]map[int64]struct{}),
		lines:    make(map[int64]string),
	}
}

// trigramsOf returns the overlapping 3-byte windows of text.
func trigramsOf(text string) []string {
	if len(text) < 3 {
		return nil
	}
	out := make([]string, 0, len(text)-2)
	for i := 0; i+3 <= len(text); i++ {
		out = append(out, text[i:i+3])
	}
	return out
}

// IndexLine indexes text under line number n. Indexing the same line
// again replaces its previous content entirely.
func (ix *Index) IndexLine(n int64, text string) {
	if old, ok := ix.lines[n]; ok {
		for _, t := range trigramsOf(old) {
			if set := ix.postings[t]; set != nil {
				delete(set, n)
				if len(set) == 0 {
					delete(ix.postings, t)
				}
			}
		}
	}
	ix.lines[n] = text
	for _, t := range trigramsOf(text) {
		set := ix.postings[t]
		if set == nil {
			set = make(map[int64]struct{})
			ix.postings[t] = set
		}
		set[n] = struct{}{}
	}
}

// Search returns the sorted line numbers whose content may contain
// query. Queries shorter than three bytes cannot form a trigram and
// return every indexed line.
func (ix *Index) Search(query string) []int64 {
	if len(query) < 3 {
		return ix.allLines()
	}

	var result map[int64]struct{}
	for _, t := range trigramsOf(query) {
		set, ok := ix.postings[t]
		if !ok {
			return nil
		}
		if result == nil {
			result = make(map[int64]struct{}, len(set))
			for n := range set {
				result[n] = struct{}{}
			}
			continue
		}
		for n := range result {
			if _, ok := set[n]; !ok {
				delete(result, n)
			}
		}
		if len(result) == 0 {
			return nil
		}
	}

	return sortedLines(result)
}

// Match is a verified search hit with its byte range in the line.
type Match struct {
	Line  int64
	Start int
	End   int
}

// SearchWithPositions runs Search and verifies each candidate against
// the cached line text, returning only true substring hits with the
// byte range of the first occurrence.
func (ix *Index) SearchWithPositions(query string) []Match {
	var out []Match
	for _, n := range ix.Search(query) {
		text := ix.lines[n]
		if i := strings.Index(text, query); i >= 0 {
			out = append(out, Match{Line: n, Start: i, End: i + len(query)})
		}
	}
	return out
}

// Len returns the number of indexed lines.
func (ix *Index) Len() int { return len(ix.lines) }

// IsEmpty reports whether nothing is indexed.
func (ix *Index) IsEmpty() bool { return len(ix.lines) == 0 }

// Clear drops every posting and cached line.
func (ix *Index) Clear() {
	ix.postings = make(map[string]map[int64]struct{})
	ix.lines = make(map[int64]string)
}

func (ix *Index) allLines() []int64 {
	set := make(map[int64]struct{}, len(ix.lines))
	for n := range ix.lines {
		set[n] = struct{}{}
	}
	return sortedLines(set)
}

func sortedLines(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	out := make([]int64, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
