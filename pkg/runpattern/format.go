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

// Package runpattern expands run patterns and pre-command arguments into
// argument vectors.
package runpattern

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrMalformedTemplate  = errors.New("malformed template")
)

// segment is a piece of a parsed template: literal text or a key.
type segment struct {
	text  string
	isKey bool
}

func parse(tmpl string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end < 0 || tmpl[i+1+end] != '}' {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrMalformedTemplate, i, tmpl)
			}
			key := tmpl[i+1 : i+1+end]
			if key == "" {
				return nil, fmt.Errorf("%w: empty placeholder in %q", ErrMalformedTemplate, tmpl)
			}
			flush()
			segs = append(segs, segment{text: key, isKey: true})
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at offset %d in %q", ErrMalformedTemplate, i, tmpl)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return segs, nil
}

// render fills the segments. The bool reports whether the template was
// made of placeholders only.
func render(segs []segment, ctx Context) (string, bool, error) {
	var sb strings.Builder
	onlyKeys := len(segs) > 0
	for _, s := range segs {
		if !s.isKey {
			onlyKeys = false
			sb.WriteString(s.text)
			continue
		}
		v, ok := ctx[s.text]
		if !ok {
			return "", false, fmt.Errorf("%w: {%s}", ErrUnknownPlaceholder, s.text)
		}
		sb.WriteString(v)
	}
	return sb.String(), onlyKeys, nil
}

// Format substitutes {key} placeholders from ctx. "{{" and "}}" stand for
// literal braces. An unknown key is an error.
func Format(tmpl string, ctx Context) (string, error) {
	segs, err := parse(tmpl)
	if err != nil {
		return "", err
	}
	s, _, err := render(segs, ctx)
	return s, err
}

// Keys lists the placeholders used by tmpl in order of appearance.
// Malformed templates give no keys.
func Keys(tmpl string) []string {
	segs, err := parse(tmpl)
	if err != nil {
		return nil
	}
	var keys []string
	for _, s := range segs {
		if s.isKey {
			keys = append(keys, s.text)
		}
	}
	return keys
}

// References reports whether tmpl uses the placeholder key.
func References(tmpl, key string) bool {
	for _, k := range Keys(tmpl) {
		if k == key {
			return true
		}
	}
	return false
}
