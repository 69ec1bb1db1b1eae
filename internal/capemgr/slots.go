// Package capemgr loads and unloads device-tree overlays through the
// BeagleBone cape manager's "slots" file.
//
// The slots file is a line protocol: reading lists one loaded overlay per
// line ("  7: ff:P-O-L Override Board Name,00A0,Override Manuf,bone_pwm_P9_14"),
// writing a fragment name asks the kernel to apply it, and writing "-<index>"
// removes the overlay in that slot.
package capemgr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrSlotsUnavailable is returned when the slots file cannot be opened,
// which usually means the running kernel has no cape manager.
var ErrSlotsUnavailable = errors.New("capemgr: slots file unavailable")

// Slot is one line of the slots table.
type Slot struct {
	Index int
	Info  string
}

// Slots talks to one slots file. The file is reopened and rescanned on every
// call; nothing is cached between calls.
type Slots struct {
	path string
}

func New(path string) *Slots {
	return &Slots{path: path}
}

func (s *Slots) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Slots) open() (*os.File, error) {
	if s == nil || s.path == "" {
		return nil, fmt.Errorf("%w: no path", ErrSlotsUnavailable)
	}
	f, err := os.OpenFile(s.path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlotsUnavailable, err)
	}
	return f, nil
}

// findLine returns the first line containing name.
func findLine(r io.Reader, name string) (string, bool, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if strings.Contains(sc.Text(), name) {
			return sc.Text(), true, nil
		}
	}
	return "", false, sc.Err()
}

// Load applies the overlay fragment name. If a slot already mentions name the
// file is left untouched.
func (s *Slots) Load(name string) error {
	if name == "" {
		return fmt.Errorf("capemgr: load: empty overlay name")
	}
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	_, found, err := findLine(f, name)
	if err != nil {
		return fmt.Errorf("capemgr: read %s: %w", s.path, err)
	}
	if found {
		return nil
	}
	if err := appendLine(f, name); err != nil {
		return fmt.Errorf("capemgr: load %s: %w", name, err)
	}
	return nil
}

// Unload removes the overlay whose slot line mentions name. Unloading an
// overlay that is not loaded succeeds without writing anything.
func (s *Slots) Unload(name string) error {
	if name == "" {
		return fmt.Errorf("capemgr: unload: empty overlay name")
	}
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	line, found, err := findLine(f, name)
	if err != nil {
		return fmt.Errorf("capemgr: read %s: %w", s.path, err)
	}
	if !found {
		return nil
	}
	idx, err := slotIndex(line)
	if err != nil {
		return err
	}
	if err := appendLine(f, "-"+strconv.Itoa(idx)); err != nil {
		return fmt.Errorf("capemgr: unload %s: %w", name, err)
	}
	return nil
}

// List returns the parsed slot table. Lines without a numeric index are
// skipped.
func (s *Slots) List() ([]Slot, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Slot
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		idx, err := slotIndex(line)
		if err != nil {
			continue
		}
		_, info, _ := strings.Cut(line, ":")
		out = append(out, Slot{Index: idx, Info: strings.TrimSpace(info)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("capemgr: read %s: %w", s.path, err)
	}
	return out, nil
}

// slotIndex parses the text before the first ':' of a slots line.
func slotIndex(line string) (int, error) {
	head, _, ok := strings.Cut(line, ":")
	if !ok {
		return 0, fmt.Errorf("capemgr: malformed slot line %q", line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("capemgr: malformed slot index in %q", line)
	}
	return n, nil
}

// appendLine writes one directive. The seek only matters for regular-file
// fixtures; the kernel ignores the offset on sysfs writes.
func appendLine(f *os.File, s string) error {
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	_, err := f.WriteString(s + "\n")
	return err
}
