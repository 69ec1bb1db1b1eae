//go:build linux

package sysfs

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// rewrite stores b at offset 0 with pwrite(2), leaving the shared file offset
// alone. The trailing truncate only matters for regular files (tests, tmpfs
// fixtures); sysfs ignores the size change, so its error is dropped.
func rewrite(f *os.File, b []byte) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	var n int
	var werr error
	cerr := rc.Write(func(fd uintptr) bool {
		n, werr = unix.Pwrite(int(fd), b, 0)
		if werr == unix.EAGAIN {
			return false
		}
		if werr == nil {
			_ = unix.Ftruncate(int(fd), int64(n))
		}
		return true
	})
	if cerr != nil {
		return cerr
	}
	if werr != nil {
		return werr
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}
