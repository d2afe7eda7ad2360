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

package runpattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Iteration directives.
const (
	IterateRoms    = "iterate_roms"
	IterateAllRoms = "iterate_all_roms"
)

// directive is a parsed {{name:subtemplate:max}} word.
type directive struct {
	name string
	sub  string
	max  int
}

// parseDirective recognizes a whole word of the form {{name:sub:max}}.
// The name ends at the first colon and max follows the last one, so the
// sub-template may contain colons. Anything else is not a directive.
func parseDirective(word string) (directive, bool) {
	inner, ok := strings.CutPrefix(word, "{{")
	if !ok {
		return directive{}, false
	}
	inner, ok = strings.CutSuffix(inner, "}}")
	if !ok {
		return directive{}, false
	}

	name, rest, ok := strings.Cut(inner, ":")
	if !ok || (name != IterateRoms && name != IterateAllRoms) {
		return directive{}, false
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return directive{}, false
	}
	limit, err := strconv.Atoi(strings.TrimSpace(rest[i+1:]))
	if err != nil || limit < 1 {
		return directive{}, false
	}

	return directive{name: name, sub: rest[:i], max: limit}, true
}

// roms picks the files a directive iterates over. iterate_roms puts the
// selected file first followed by the other siblings, iterate_all_roms
// takes the sibling list as is.
func (d directive) roms(selected string, siblings []string) []string {
	var items []string
	if d.name == IterateRoms {
		items = append(items, selected)
		for _, s := range siblings {
			if s != selected {
				items = append(items, s)
			}
		}
	} else {
		items = append(items, siblings...)
	}
	if len(items) > d.max {
		items = items[:d.max]
	}
	return items
}

// Split breaks a template into words using shell quoting rules without
// touching placeholders.
func Split(tmpl string) ([]string, error) {
	words, err := shellquote.Split(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}
	return words, nil
}

// Expand turns a run pattern into an argument vector. The pattern is split
// into words once; every word becomes exactly one argument after
// substitution, so values containing spaces or quotes are never re-split.
// Iteration directives become one argument per iterated file. A word made
// only of placeholders that expands to nothing is dropped.
func Expand(tmpl string, ctx Context, selected string, siblings []string) ([]string, error) {
	words, err := Split(tmpl)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(words))
	for _, w := range words {
		if d, ok := parseDirective(w); ok {
			args, err := expandDirective(d, ctx, selected, siblings)
			if err != nil {
				return nil, err
			}
			argv = append(argv, args...)
			continue
		}

		arg, drop, err := expandWord(w, ctx)
		if err != nil {
			return nil, err
		}
		if !drop {
			argv = append(argv, arg)
		}
	}

	return argv, nil
}

// ExpandArgs formats each argument on its own, as pre-commands need.
func ExpandArgs(args []string, ctx Context) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := Format(a, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func expandWord(w string, ctx Context) (string, bool, error) {
	segs, err := parse(w)
	if err != nil {
		return "", false, err
	}
	arg, onlyKeys, err := render(segs, ctx)
	if err != nil {
		return "", false, err
	}
	return arg, onlyKeys && arg == "", nil
}

func expandDirective(d directive, ctx Context, selected string, siblings []string) ([]string, error) {
	segs, err := parse(d.sub)
	if err != nil {
		return nil, err
	}

	items := d.roms(selected, siblings)
	args := make([]string, 0, len(items))
	for i, rom := range items {
		local := ctx.Clone()
		local.SetRom(rom)
		local[KeyRomIndex] = strconv.Itoa(i)

		arg, onlyKeys, err := render(segs, local)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		if onlyKeys && arg == "" {
			continue
		}
		args = append(args, arg)
	}
	return args, nil
}

// Quote joins argv into a single shell-quoted string for display.
func Quote(argv []string) string {
	return shellquote.Join(argv...)
}
