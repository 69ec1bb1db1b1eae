package pwm

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bonepwm/internal/sysfs"
)

const fixtureSlots = ` 0: 54:PF--- 
 1: 55:PF--- 
 2: 56:PF--- 
 3: 57:PF--- 
 4: ff:P-O-L Bone-LT-eMMC-2G,00A0,Texas Instrument,BB-BONE-EMMC-2G
 5: ff:P-O-L Bone-Black-HDMI,00A0,Texas Instrument,BB-BONELT-HDMI
`

// fakeBoard is a /sys/devices look-alike with a capemgr slots file and one
// pwm_test directory per pin.
type fakeBoard struct {
	root      string
	slotsPath string
	ocpDir    string
	pinDirs   map[string]string
}

func newFakeBoard(t *testing.T, slots string, keys ...string) *fakeBoard {
	t.Helper()
	root := t.TempDir()
	b := &fakeBoard{
		root:      root,
		slotsPath: filepath.Join(root, "bone_capemgr.9", "slots"),
		ocpDir:    filepath.Join(root, "ocp.3"),
		pinDirs:   make(map[string]string),
	}
	mustMkdir(t, filepath.Join(root, "platform"))
	mustMkdir(t, filepath.Dir(b.slotsPath))
	mustMkdir(t, b.ocpDir)
	mustWrite(t, b.slotsPath, slots)
	for i, key := range keys {
		dir := filepath.Join(b.ocpDir, fmt.Sprintf("pwm_test_%s.%d", key, 15+i))
		mustMkdir(t, dir)
		mustWrite(t, filepath.Join(dir, "period"), "0\n")
		mustWrite(t, filepath.Join(dir, "duty"), "0\n")
		b.pinDirs[key] = dir
	}
	return b
}

func (b *fakeBoard) manager(t *testing.T) *Manager {
	t.Helper()
	m := New(Config{Root: b.root})
	if err := m.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return m
}

func (b *fakeBoard) slots(t *testing.T) string {
	t.Helper()
	return mustRead(t, b.slotsPath)
}

func (b *fakeBoard) attr(t *testing.T, key, name string) string {
	t.Helper()
	return mustRead(t, filepath.Join(b.pinDirs[key], name))
}

// trackOpens records every attribute handle the manager opens.
func trackOpens(t *testing.T) *[]*sysfs.Attr {
	t.Helper()
	var opened []*sysfs.Attr
	old := openAttrFn
	openAttrFn = func(path string) (*sysfs.Attr, error) {
		a, err := old(path)
		if err == nil {
			opened = append(opened, a)
		}
		return a, err
	}
	t.Cleanup(func() { openAttrFn = old })
	return &opened
}

func requireAllClosed(t *testing.T, attrs []*sysfs.Attr) {
	t.Helper()
	for _, a := range attrs {
		if !a.Closed() {
			t.Fatalf("handle %s left open", a.Path())
		}
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
}

func mustWrite(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(b)
}
