// ABOUTME: Tests for the haptic clip library
// ABOUTME: Covers directory scanning, naming and lookups
package clips

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"pulse.haptic": `{"pulse":true}`,
		"Buzz.HAPTIC":  `{"buzz":true}`,
		"notes.txt":    "ignored",
		"archive.json": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.haptic"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	lib, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"Buzz", "pulse"}
	if got := lib.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected names %v, got %v", want, got)
	}

	data, ok := lib.Get("pulse")
	if !ok || string(data) != `{"pulse":true}` {
		t.Errorf("unexpected pulse data: %q (found=%v)", data, ok)
	}

	if _, ok := lib.Get("notes"); ok {
		t.Error("expected non-clip file to be skipped")
	}
	if lib.Dir() != dir {
		t.Errorf("expected dir %s, got %s", dir, lib.Dir())
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"pulse.haptic", "pulse"},
		{"/clips/heart beat.haptic", "heart beat"},
		{"noext", "noext"},
		{"a.b.haptic", "a.b"},
	}

	for _, tt := range tests {
		if got := Name(tt.path); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAddReplaces(t *testing.T) {
	lib := NewLibrary()
	lib.Add("b", []byte("1"))
	lib.Add("a", []byte("2"))
	lib.Add("b", []byte("3"))

	if lib.Len() != 2 {
		t.Errorf("expected 2 clips, got %d", lib.Len())
	}
	if data, _ := lib.Get("b"); string(data) != "3" {
		t.Errorf("expected replaced data, got %q", data)
	}

	names := lib.Names()
	names[0] = "mutated"
	if lib.Names()[0] != "a" {
		t.Error("Names should return a copy")
	}
}
