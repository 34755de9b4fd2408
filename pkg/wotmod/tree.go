// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// ModsSubpath is where the game loads client mods from, relative to the archive root.
	ModsSubpath = "res/scripts/client/gui/mods"
	// SourceExt is the extension of interpretable sources, removed after compilation.
	SourceExt = ".py"
)

// BuildTree copies src into dst, compiles the copy in place with c and
// deletes every SourceExt file from it, leaving compiled files and data
// files.
func BuildTree(ctx context.Context, src, dst string, c Compiler) error {
	if err := CopyDir(src, dst); err != nil {
		return fmt.Errorf("copy sources: %w", err)
	}
	if err := c.Compile(ctx, dst); err != nil {
		return fmt.Errorf("compile sources: %w", err)
	}
	if _, err := StripSources(dst); err != nil {
		return fmt.Errorf("strip sources: %w", err)
	}
	return nil
}

// StripSources removes every regular file with the SourceExt extension under
// root and returns how many were removed.
func StripSources(root string) (int, error) {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != SourceExt {
			return nil
		}
		if rmErr := os.Remove(path); rmErr != nil {
			return rmErr
		}
		removed++
		return nil
	})
	return removed, err
}

// CopyDir recursively copies the directory src to dst, creating dst and its
// parents. Symbolic links are followed.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err = os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, statErr := os.Stat(srcPath)
		if statErr != nil {
			return fmt.Errorf("failed to stat %s: %w", srcPath, statErr)
		}

		if info.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// CopyFile copies a file from src to dst, keeping its permission bits.
func CopyFile(src, dst string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }() // Read-only file; close error non-critical

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}
