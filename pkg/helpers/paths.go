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

package helpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var windowsEnvRe = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// NormalizePathForComparison normalizes a path for cross-platform case-insensitive comparison.
// Converts to forward slashes and lowercases for consistent matching across all platforms.
func NormalizePathForComparison(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	return strings.ToLower(p)
}

// PathHasPrefix checks if path is within root directory, handling separator boundaries correctly.
// This avoids the prefix bug where "c:/roms2/game.bin" would incorrectly match root "c:/roms".
func PathHasPrefix(path, root string) bool {
	normPath := NormalizePathForComparison(path)
	normRoot := NormalizePathForComparison(root)

	if normPath == normRoot {
		return true
	}

	if normRoot == "" {
		return false
	}

	if !strings.HasSuffix(normRoot, "/") {
		normRoot += "/"
	}

	return strings.HasPrefix(normPath, normRoot)
}

// NormalizeConfigPath turns a path as written in the emulators file into a
// native path: both separator styles are accepted, environment variables in
// $VAR, ${VAR} and %VAR% form are expanded and a leading ~ becomes the home
// directory.
func NormalizeConfigPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	p = windowsEnvRe.ReplaceAllStringFunc(p, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
	p = os.ExpandEnv(p)
	p = strings.ReplaceAll(p, "\\", "/")

	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.ToSlash(home) + p[1:]
		}
	}

	return filepath.FromSlash(p)
}

// RealPath returns an absolute, symlink-free version of a path. Paths which
// can't be resolved are returned cleaned but otherwise untouched.
func RealPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// ExpandSearchPaths normalizes a list of search roots. An entry which
// expands to an OS path list (like $PATH) is split into its members. Empty
// and repeated entries are dropped, order is kept.
func ExpandSearchPaths(entries []string) []string {
	seen := make(map[string]struct{})
	paths := make([]string, 0, len(entries))

	for _, entry := range entries {
		expanded := NormalizeConfigPath(entry)
		for _, p := range filepath.SplitList(expanded) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			key := NormalizePathForComparison(p)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			paths = append(paths, p)
		}
	}

	return paths
}

// DefaultSearchRoots are the roots tried when the global section doesn't
// declare any: the home directory, a "systems" folder inside it and the
// directory holding the running binary.
func DefaultSearchRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, home, filepath.Join(home, "systems"))
	}
	if exeDir := ExeDir(); exeDir != "" {
		roots = append(roots, exeDir)
	}
	return roots
}

func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}

// Resolver finds executables, ROM roots and support files using tiered
// lookups against a set of search roots.
type Resolver struct {
	Fs       afero.Fs
	LookPath func(file string) (string, error)
	Roots    []string
}

// NewResolver returns a resolver on the real filesystem using the OS
// executable search path as its last tier.
func NewResolver(roots []string) *Resolver {
	return &Resolver{
		Fs:       afero.NewOsFs(),
		LookPath: exec.LookPath,
		Roots:    roots,
	}
}

type matchFunc func(fs afero.Fs, path string) bool

func isRegularFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

// glob expands a pattern and returns the first match accepted by ok.
func (r *Resolver) glob(pattern string, ok matchFunc) (string, bool) {
	if pattern == "" {
		return "", false
	}

	matches, err := afero.Glob(r.Fs, pattern)
	if err != nil {
		log.Debug().Err(err).Str("pattern", pattern).Msg("bad glob pattern")
		return "", false
	}

	for _, m := range matches {
		if ok(r.Fs, m) {
			return m, true
		}
	}

	return "", false
}

// tiered runs the candidate lookup order shared by executables and
// directories. Each candidate is tried verbatim, then joined to every search
// root, then by basename under every search root.
func (r *Resolver) tiered(candidates []string, ok matchFunc, usePath bool) (string, bool) {
	for _, raw := range candidates {
		candidate := NormalizeConfigPath(raw)
		if candidate == "" {
			continue
		}

		if p, found := r.glob(candidate, ok); found {
			return p, true
		}

		if filepath.IsAbs(candidate) {
			continue
		}

		for _, root := range r.Roots {
			if p, found := r.glob(filepath.Join(root, candidate), ok); found {
				return p, true
			}
		}

		base := filepath.Base(candidate)
		if base != candidate {
			for _, root := range r.Roots {
				if p, found := r.glob(filepath.Join(root, base), ok); found {
					return p, true
				}
			}
		}

		if usePath && r.LookPath != nil {
			if p, err := r.LookPath(base); err == nil && ok(r.Fs, p) {
				return p, true
			}
		}
	}

	return "", false
}

// ResolveExecutable returns the first candidate which exists as a regular
// file. Not finding one is a normal outcome.
func (r *Resolver) ResolveExecutable(candidates []string) (string, bool) {
	p, ok := r.tiered(candidates, isRegularFile, true)
	if !ok {
		log.Debug().Strs("candidates", candidates).Msg("no executable found")
	}
	return p, ok
}

// ResolveDir returns the first pattern which resolves to a directory.
func (r *Resolver) ResolveDir(patterns []string) (string, bool) {
	p, ok := r.tiered(patterns, isDir, false)
	if !ok {
		log.Debug().Strs("patterns", patterns).Msg("no directory found")
	}
	return p, ok
}

// FindFirst returns the first existing regular file matched by an ordered
// list of glob patterns. No search roots are involved.
func (r *Resolver) FindFirst(patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if p, ok := r.glob(NormalizeConfigPath(pattern), isRegularFile); ok {
			return p, true
		}
	}
	return "", false
}
