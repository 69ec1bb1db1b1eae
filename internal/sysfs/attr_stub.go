//go:build !linux

package sysfs

import (
	"io"
	"os"
)

// rewrite is the portable fallback used by fixtures on non-Linux hosts.
func rewrite(f *os.File, b []byte) error {
	n, err := f.WriteAt(b, 0)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	_ = f.Truncate(int64(n))
	return nil
}
