package sysfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindEntry_MissingDirFails(t *testing.T) {
	_, err := FindEntry(filepath.Join(t.TempDir(), "nope"), "ocp")
	if err == nil {
		t.Fatalf("expected error for missing dir")
	}
	if errors.Is(err, ErrNoMatch) {
		t.Fatalf("missing dir should not report ErrNoMatch: %v", err)
	}
}

func TestFindEntry_NoMatch(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "platform"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	_, err := FindEntry(dir, "bone_capemgr")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err=%v want ErrNoMatch", err)
	}
}

func TestFindEntry_SingleMatchWithUnpredictableSuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"platform", "bone_capemgr.9", "virtual"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}
	got, err := FindEntry(dir, "bone_capemgr")
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if want := filepath.Join(dir, "bone_capemgr.9"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFindEntry_MatchesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "slots"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := FindEntry(dir, "lot")
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if want := filepath.Join(dir, "slots"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFindEntry_MultipleMatchesPicksLexicographicallyFirst(t *testing.T) {
	dir := t.TempDir()
	// Created out of order on purpose.
	for _, name := range []string{"ocp.3", "ocp.12", "ocp.1"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		got, err := FindEntry(dir, "ocp")
		if err != nil {
			t.Fatalf("FindEntry: %v", err)
		}
		if want := filepath.Join(dir, "ocp.1"); got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}
