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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyFile copies a single file, replacing dst if it already exists. The
// destination's parent directory is created when missing. Copying a file
// onto itself is a no-op.
func CopyFile(afs afero.Fs, src, dst string) error {
	in, err := afs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}

	if err := afs.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := afs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	return nil
}

// CopyIntoDir copies every source file into dir, creating it if needed.
// Files already present in dir are left alone unless overwrite is set.
// Returns the number of files copied.
func CopyIntoDir(afs afero.Fs, srcs []string, dir string, overwrite bool) (int, error) {
	if err := afs.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	copied := 0
	for _, src := range srcs {
		dst := filepath.Join(dir, filepath.Base(src))
		if !overwrite {
			if exists, _ := afero.Exists(afs, dst); exists {
				continue
			}
		}
		if err := CopyFile(afs, src, dst); err != nil {
			return copied, err
		}
		copied++
	}

	return copied, nil
}

// AppendLine appends line plus a newline to the file at path, creating the
// file if it doesn't exist.
func AppendLine(afs afero.Fs, path, line string) error {
	f, err := afs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

// RemoveIfExists deletes a file. A missing file is not an error.
func RemoveIfExists(afs afero.Fs, path string) error {
	err := afs.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to remove %s: %w", path, err)
}
