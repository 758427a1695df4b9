package library

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"goodear/internal/store"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func names(pairs []Pair) []string {
	var out []string
	for _, p := range pairs {
		out = append(out, p.Name)
	}
	return out
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"b.mp3", "b.json",
		"a.wav", "a.srt", "a.json",
		"c.m4a", "c.SRT",
		"orphan.mp3",
		"notes.txt", "notes.srt",
		"sub/d.mp3", "sub/d.srt",
	)

	pairs, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := names(pairs); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("names = %v, want [a b c]", got)
	}

	want := map[string]string{"a": "a.srt", "b": "b.json", "c": "c.SRT"}
	for _, p := range pairs {
		if got := filepath.Base(p.Transcript); got != want[p.Name] {
			t.Errorf("%s transcript = %s, want %s", p.Name, got, want[p.Name])
		}
		if filepath.Dir(p.Audio) != dir {
			t.Errorf("%s audio dir = %s", p.Name, filepath.Dir(p.Audio))
		}
	}
}

func TestScan_MissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Scan(missing) error = %v, want ErrNotExist", err)
	}
}

func TestTranscriptFor(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "x.mp3", "x.json", "x.srt", "y.mp3", "y.json", "z.mp3")

	tests := []struct {
		audio string
		want  string
	}{
		{"x.mp3", "x.srt"},
		{"y.mp3", "y.json"},
	}
	for _, tt := range tests {
		got, err := TranscriptFor(filepath.Join(dir, tt.audio))
		if err != nil {
			t.Errorf("TranscriptFor(%s): %v", tt.audio, err)
			continue
		}
		if filepath.Base(got) != tt.want {
			t.Errorf("TranscriptFor(%s) = %s, want %s", tt.audio, filepath.Base(got), tt.want)
		}
	}

	if _, err := TranscriptFor(filepath.Join(dir, "z.mp3")); !errors.Is(err, ErrNoTranscript) {
		t.Errorf("TranscriptFor(z.mp3) error = %v, want ErrNoTranscript", err)
	}
}

func TestImportRestore(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Course")
	writeFiles(t, src, "one.mp3", "one.srt", "two.wav", "two.json", "extra/readme.txt")

	st := store.NewMemory()
	lib := &Library{Root: t.TempDir(), Store: st}

	pairs, err := lib.Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := names(pairs); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Fatalf("imported names = %v", got)
	}
	for _, p := range pairs {
		if filepath.Dir(p.Audio) != lib.Dir("Course") {
			t.Errorf("audio %s not inside library", p.Audio)
		}
	}
	if _, err := os.Stat(filepath.Join(lib.Dir("Course"), "extra", "readme.txt")); err != nil {
		t.Errorf("nested file not copied: %v", err)
	}

	name, ok, err := lib.Folder()
	if err != nil || !ok || name != "Course" {
		t.Errorf("Folder() = %q, %v, %v", name, ok, err)
	}

	restored, err := lib.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !reflect.DeepEqual(restored, pairs) {
		t.Errorf("Restore = %v, want %v", restored, pairs)
	}
}

func TestImport_ReplacesPrevious(t *testing.T) {
	parent := t.TempDir()
	src := filepath.Join(parent, "Course")
	writeFiles(t, src, "old.mp3", "old.srt")

	lib := &Library{Root: t.TempDir(), Store: store.NewMemory()}
	if _, err := lib.Import(src); err != nil {
		t.Fatalf("first Import: %v", err)
	}

	if err := os.RemoveAll(src); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, src, "new.mp3", "new.srt")

	pairs, err := lib.Import(src)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if got := names(pairs); !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("names after re-import = %v, want [new]", got)
	}
}

func TestImport_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "file.mp3")
	lib := &Library{Root: t.TempDir(), Store: store.NewMemory()}

	if _, err := lib.Import(filepath.Join(dir, "file.mp3")); err == nil {
		t.Error("expected error importing a file")
	}
	if _, err := lib.Import(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error importing a missing folder")
	}
}

func TestRestore_Empty(t *testing.T) {
	st := store.NewMemory()
	lib := &Library{Root: t.TempDir(), Store: st, FolderKey: "folder"}

	pairs, err := lib.Restore()
	if err != nil || pairs != nil {
		t.Errorf("Restore with no key = %v, %v; want nil, nil", pairs, err)
	}

	if err := st.Set("folder", "Gone"); err != nil {
		t.Fatal(err)
	}
	pairs, err = lib.Restore()
	if err != nil || pairs != nil {
		t.Errorf("Restore with missing folder = %v, %v; want nil, nil", pairs, err)
	}
}

func TestImport_OverlappingLibrary(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Course")
	writeFiles(t, src, "one.mp3", "one.srt")

	inside := &Library{Root: filepath.Join(src, "state"), Store: store.NewMemory()}
	if _, err := inside.Import(src); err == nil {
		t.Error("expected error when the library lives inside the imported folder")
	}
	if _, err := os.Stat(filepath.Join(src, "state", ImportedDir, "Course", "state")); err == nil {
		t.Error("import copied the library into itself")
	}

	lib := &Library{Root: t.TempDir(), Store: store.NewMemory()}
	if _, err := lib.Import(src); err != nil {
		t.Fatalf("Import: %v", err)
	}
	nested := filepath.Join(lib.Dir("Course"), "Course")
	writeFiles(t, nested, "two.mp3", "two.srt")
	if _, err := lib.Import(nested); err == nil {
		t.Error("expected error importing a folder inside its own destination")
	}
	if _, err := os.Stat(filepath.Join(nested, "two.srt")); err != nil {
		t.Errorf("source removed by rejected import: %v", err)
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/a", "/a/b", true},
		{"/a", "/a/b/c", true},
		{"/a", "/a", false},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
		{"/a", "/..b", false},
	}
	for _, tt := range tests {
		if got := within(tt.dir, tt.path); got != tt.want {
			t.Errorf("within(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
