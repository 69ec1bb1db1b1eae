package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Attr is a sysfs attribute file held open for repeated writes.
//
// Each write replaces the whole value, so the same handle can be reused for
// the lifetime of the attribute. Attr is not safe for concurrent use.
type Attr struct {
	f    *os.File
	path string
}

// OpenAttr opens the attribute at path for reading and writing.
//
// No O_CREATE/O_TRUNC: sysfs attributes reject them and a missing attribute
// must surface as an error rather than be created.
func OpenAttr(path string) (*Attr, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &Attr{f: f, path: path}, nil
}

func (a *Attr) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// WriteUint writes v as decimal text.
func (a *Attr) WriteUint(v uint64) error {
	return a.WriteString(strconv.FormatUint(v, 10))
}

// WriteString writes s at offset 0 of the attribute.
func (a *Attr) WriteString(s string) error {
	if a == nil || a.f == nil {
		return fmt.Errorf("sysfs: write to closed attribute")
	}
	if err := rewrite(a.f, []byte(s)); err != nil {
		return fmt.Errorf("sysfs: write %s: %w", a.path, err)
	}
	return nil
}

// Close releases the handle. Closing an already closed Attr is a no-op.
func (a *Attr) Close() error {
	if a == nil || a.f == nil {
		return nil
	}
	err := a.f.Close()
	a.f = nil
	return err
}

// Closed reports whether the handle has been released.
func (a *Attr) Closed() bool {
	return a == nil || a.f == nil
}
