package store

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s := NewFileStore(path)

	var missing []float64
	ok, err := s.Get("playedSegments_lesson1", &missing)
	if err != nil || ok {
		t.Fatalf("Get on empty store = %v, %v; want false, nil", ok, err)
	}

	if err := s.Set("playedSegments_lesson1", []float64{0, 30.5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("SavedImportedFolderName", "Unit 3"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened := NewFileStore(path)
	var played []float64
	ok, err = reopened.Get("playedSegments_lesson1", &played)
	if err != nil || !ok {
		t.Fatalf("Get after reopen = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(played, []float64{0, 30.5}) {
		t.Errorf("played = %v, want [0 30.5]", played)
	}

	var folder string
	if ok, err := reopened.Get("SavedImportedFolderName", &folder); err != nil || !ok || folder != "Unit 3" {
		t.Errorf("folder = %q (%v, %v), want %q", folder, ok, err, "Unit 3")
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "state.yaml"))
	for i := 0; i < 3; i++ {
		if err := s.Set("k", i); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".store-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only state.yaml, got %d entries", len(entries))
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml\n\t- ["), 0o644); err != nil {
		t.Fatal(err)
	}
	var v string
	if _, err := NewFileStore(path).Get("k", &v); err == nil {
		t.Error("expected decode error for corrupt store")
	}
}

func TestFileStore_DecodeMismatch(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "state.yaml"))
	if err := s.Set("k", "text"); err != nil {
		t.Fatal(err)
	}
	var n []float64
	ok, err := s.Get("k", &n)
	if !ok || err == nil {
		t.Errorf("Get with wrong type = %v, %v; want true, error", ok, err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	if err := m.Set("a", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	var got []float64
	if ok, err := m.Get("a", &got); !ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got, []float64{1, 2}) {
		t.Errorf("got %v", got)
	}
	if m.Writes() != 1 {
		t.Errorf("Writes = %d, want 1", m.Writes())
	}
	if ok, _ := m.Get("b", &got); ok {
		t.Error("missing key reported present")
	}
}
