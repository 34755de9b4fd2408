// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ScratchPrefix starts the name of every scratch directory. The rest of the
// name is a random UUID.
const ScratchPrefix = "mod_build_"

var scratchNamePattern = regexp.MustCompile(
	`(?i)^` + regexp.QuoteMeta(ScratchPrefix) + `[0-9a-f]{8}-(?:[0-9a-f]{4}-){3}[0-9a-f]{12}$`,
)

// ScratchDir is a directory owned by a single packaging run.
// Release must be called when the run ends, usually with defer.
type ScratchDir struct {
	path     string
	logger   *log.Logger
	released bool
}

// IsScratchDirName reports whether name follows the scratch directory naming
// convention (ScratchPrefix followed by a UUID, case-insensitive).
func IsScratchDirName(name string) bool {
	return scratchNamePattern.MatchString(name)
}

// AcquireScratchDir reaps scratch directories left under root by earlier runs
// and creates a fresh one. An empty root means os.TempDir().
func AcquireScratchDir(root string, logger *log.Logger) (*ScratchDir, error) {
	logger = orDiscard(logger)
	if root == "" {
		root = os.TempDir()
	}

	if _, err := ReapScratchDirs(root, logger); err != nil {
		logger.Warn("could not sweep orphaned scratch directories", "root", root, "err", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}

	path := filepath.Join(root, ScratchPrefix+uuid.NewString())
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	logger.Debug("acquired scratch directory", "path", path)

	return &ScratchDir{path: path, logger: logger}, nil
}

// Path returns the scratch directory's path.
func (s *ScratchDir) Path() string { return s.path }

// Release removes the scratch directory and everything under it.
// Calling it more than once is a no-op.
func (s *ScratchDir) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	s.logger.Debug("released scratch directory", "path", s.path)
	return nil
}

// ReapScratchDirs removes every direct child of root whose name follows the
// scratch directory convention and returns the paths it removed. Failing to
// remove one directory is logged and does not stop the sweep. The returned
// error is only set when root cannot be listed; a missing root is not an error.
func ReapScratchDirs(root string, logger *log.Logger) ([]string, error) {
	logger = orDiscard(logger)

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() || !IsScratchDirName(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if rmErr := os.RemoveAll(path); rmErr != nil {
			logger.Warn("could not remove orphaned scratch directory", "path", path, "err", rmErr)
			continue
		}
		logger.Info("removed orphaned scratch directory", "path", path)
		removed = append(removed, path)
	}
	return removed, nil
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
