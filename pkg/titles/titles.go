// ESide
// Copyright (c) 2026 The ESide Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ESide.
//
// ESide is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ESide is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ESide.  If not, see <http://www.gnu.org/licenses/>.

// Package titles turns ROM filename stems into display titles.
package titles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/esideproject/eside/pkg/helpers"
	"golang.org/x/text/unicode/norm"
)

// Options toggles the optional cleanup steps run after the regex pipeline.
type Options struct {
	FixArticles    bool
	UnderscoreTail bool
	SplitCamelCase bool
}

// Entry is one path and its display title, in scan order.
type Entry struct {
	Path  string
	Title string
}

// Normalizer holds a compiled cleanup pipeline for one emulator.
type Normalizer struct {
	removers []*regexp.Regexp
	opts     Options
}

// NewNormalizer compiles the removal patterns in order. Empty patterns are
// skipped, an invalid one is an error.
func NewNormalizer(patterns []string, opts Options) (*Normalizer, error) {
	removers := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := helpers.CachedCompile(p)
		if err != nil {
			return nil, fmt.Errorf("name cleanup pattern %d: %w", i, err)
		}
		removers = append(removers, re)
	}
	return &Normalizer{removers: removers, opts: opts}, nil
}

// Title runs the full pipeline on a filename stem.
func (n *Normalizer) Title(stem string) string {
	title := CleanStem(norm.NFC.String(stem), n.removers)

	if n.opts.FixArticles {
		title = FixArticle(title)
	}
	if n.opts.UnderscoreTail {
		title = CollapseUnderscoreTail(title)
	}
	if n.opts.SplitCamelCase {
		title = SplitCamelAndDigits(title)
	}

	return title
}

// CleanStem removes every match of each pattern in order, trimming
// whitespace after each step.
func CleanStem(stem string, removers []*regexp.Regexp) string {
	s := strings.TrimSpace(stem)
	for _, re := range removers {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}
	return s
}

// FixArticle moves a "The" written after a comma to the front:
// "Smurfs, The Movie" becomes "The Smurfs Movie".
func FixArticle(title string) string {
	parts := strings.Fields(title)
	if len(parts) < 2 {
		return title
	}
	if parts[1] != "The" || !strings.HasSuffix(parts[0], ",") || len(parts[0]) < 2 {
		return title
	}

	fixed := make([]string, 0, len(parts))
	fixed = append(fixed, "The", strings.TrimSuffix(parts[0], ","))
	fixed = append(fixed, parts[2:]...)
	return strings.Join(fixed, " ")
}

// CollapseUnderscoreTail keeps only the text before the first underscore of
// a title with no spaces in it.
func CollapseUnderscoreTail(title string) string {
	if strings.Contains(title, " ") {
		return title
	}
	head, _, found := strings.Cut(title, "_")
	if !found || head == "" {
		return title
	}
	return head
}

// SplitCamelAndDigits breaks a title with no spaces at case and digit
// boundaries, so "CannonFodder2" becomes "Cannon Fodder 2". Runs of capitals
// stay together: "RTypeDX" becomes "R Type DX".
func SplitCamelAndDigits(title string) string {
	if title == "" || strings.Contains(title, " ") {
		return title
	}

	runes := []rune(title)
	var b strings.Builder
	b.Grow(len(title) + 8)

	for i, r := range runes {
		if i > 0 && isWordBoundary(runes, i) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isWordBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]

	switch {
	case unicode.IsDigit(cur):
		return unicode.IsLetter(prev)
	case unicode.IsDigit(prev):
		return unicode.IsLetter(cur)
	case unicode.IsUpper(cur) && unicode.IsLower(prev):
		return true
	case unicode.IsUpper(cur) && unicode.IsUpper(prev):
		// end of a capital run: "XMLParser" splits before "P"
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}

	return false
}

// Deduplicate renumbers exact title collisions in place. The first entry
// with a title keeps it, later ones get " (2)", " (3)" and so on, in slice
// order.
func Deduplicate(entries []Entry) {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.Title]++
	}

	seen := make(map[string]int, len(entries))
	for i := range entries {
		title := entries[i].Title
		if counts[title] < 2 {
			continue
		}
		seen[title]++
		if n := seen[title]; n > 1 {
			entries[i].Title = title + " (" + strconv.Itoa(n) + ")"
		}
	}
}
