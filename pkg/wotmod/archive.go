// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ArchiveExt is the extension of mod archives.
const ArchiveExt = ".wotmod"

// ArchiveEntry describes one entry of a mod archive.
type ArchiveEntry struct {
	Name   string
	Size   uint64
	Method uint16
	IsDir  bool
}

// Stored reports whether the entry is stored uncompressed, as the game expects.
func (e ArchiveEntry) Stored() bool { return e.Method == zip.Store }

// ArchiveName returns the archive file name for a mod.
func ArchiveName(modName string) string { return modName + ArchiveExt }

// Archive writes every directory and file under srcDir into an uncompressed
// ZIP at target. Entry names are the paths relative to srcDir.
//
// The archive is written next to target first. Any file already at target is
// then removed and replaced; failing to remove it aborts without touching it.
func Archive(srcDir, target string) (err error) {
	targetDir := filepath.Dir(target)
	if err = os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(targetDir, ".*"+ArchiveExt+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath) // Best-effort cleanup of the partial archive
		}
	}()

	if err = writeArchive(tmp, srcDir); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to archive %s: %w", srcDir, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	if err = replaceFile(tmpPath, target); err != nil {
		return err
	}
	return nil
}

func writeArchive(w io.Writer, srcDir string) (err error) {
	zipWriter := zip.NewWriter(w)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, relErr := filepath.Rel(srcDir, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if relPath == "." {
			return nil
		}

		fileInfo, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info: %w", infoErr)
		}

		header, headerErr := zip.FileInfoHeader(fileInfo)
		if headerErr != nil {
			return fmt.Errorf("failed to create file header: %w", headerErr)
		}
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Store

		if d.IsDir() {
			header.Name += "/"
			_, createErr := zipWriter.CreateHeader(header)
			return createErr
		}

		writer, createErr := zipWriter.CreateHeader(header)
		if createErr != nil {
			return fmt.Errorf("failed to create ZIP entry: %w", createErr)
		}
		return copyInto(writer, path)
	})
}

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error non-critical

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// replaceFile moves src onto dst, deleting an existing dst first. Only a
// regular file (or a symlink) at dst is replaced.
func replaceFile(src, dst string) error {
	info, err := os.Lstat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("%w: inspect previous archive: %w", ErrArchiveReplace, err)
	case !info.Mode().IsRegular() && info.Mode()&fs.ModeSymlink == 0:
		return fmt.Errorf("%w: %s is a %s, not a file", ErrArchiveReplace, dst, kindOf(info.Mode()))
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove previous archive: %w", ErrArchiveReplace, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: move archive into place: %w", ErrArchiveReplace, err)
	}
	return nil
}

func kindOf(mode fs.FileMode) string {
	if mode.IsDir() {
		return "directory"
	}
	return "special file"
}

// ListArchive returns the entries of the archive at path in archive order.
func ListArchive(path string) (entries []ArchiveEntry, err error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if closeErr := zipReader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	entries = make([]ArchiveEntry, 0, len(zipReader.File))
	for _, file := range zipReader.File {
		entries = append(entries, ArchiveEntry{
			Name:   file.Name,
			Size:   file.UncompressedSize64,
			Method: file.Method,
			IsDir:  file.FileInfo().IsDir(),
		})
	}
	return entries, nil
}
