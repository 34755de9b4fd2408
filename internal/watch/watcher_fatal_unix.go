// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalFsnotifyError reports whether err means the watcher can no longer
// deliver events: the inotify watch limit (ENOSPC) or a descriptor limit
// (EMFILE, ENFILE) was hit. Raising fs.inotify.max_user_watches fixes the
// first on Linux.
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
