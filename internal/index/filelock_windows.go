//go:build windows

package index

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// lockRegionSize is the byte range locked in the rebuild lock file. The
// file carries no data, so one byte is enough.
const lockRegionSize uint32 = 1

// tryLockExclusive takes a non-blocking exclusive lock on the rebuild
// lock file.
func tryLockExclusive(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		lockRegionSize,
		0,
		&overlapped,
	)
}

func releaseFileLock(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(
		windows.Handle(f.Fd()),
		0,
		lockRegionSize,
		0,
		&overlapped,
	)
}

// lockWouldBlock reports whether err means another process holds the lock.
func lockWouldBlock(err error) bool {
	return errors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		errors.Is(err, windows.ERROR_SHARING_VIOLATION)
}
