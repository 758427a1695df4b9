package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"goodear/internal/store"
)

// ImportedDir is the directory under Root that holds the imported folder.
const ImportedDir = "ImportedLessons"

// DefaultFolderKey is the store key remembering the imported folder name.
const DefaultFolderKey = "SavedImportedFolderName"

// Library is a working copy of one imported lesson folder.
type Library struct {
	Root      string
	Store     store.Store
	FolderKey string
}

func (l *Library) folderKey() string {
	if l.FolderKey == "" {
		return DefaultFolderKey
	}
	return l.FolderKey
}

// Dir returns where a folder called name is kept.
func (l *Library) Dir(name string) string {
	return filepath.Join(l.Root, ImportedDir, name)
}

// Import copies src into the library, replacing any earlier copy with the
// same name, remembers it, and returns its lessons.
func (l *Library) Import(src string) ([]Pair, error) {
	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", src, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import %s: not a directory", src)
	}

	name := filepath.Base(abs)
	dest, err := filepath.Abs(l.Dir(name))
	if err != nil {
		return nil, fmt.Errorf("resolve library: %w", err)
	}
	if dest != abs {
		if within(abs, dest) || within(dest, abs) {
			return nil, fmt.Errorf("import %s: folder overlaps the library at %s", src, dest)
		}
		if err := os.RemoveAll(dest); err != nil {
			return nil, fmt.Errorf("remove previous import: %w", err)
		}
		if err := copyDir(abs, dest); err != nil {
			return nil, fmt.Errorf("copy %s: %w", name, err)
		}
	}

	if err := l.Store.Set(l.folderKey(), name); err != nil {
		return nil, fmt.Errorf("remember folder: %w", err)
	}
	slog.Info("folder imported", "name", name, "path", dest)

	return Scan(dest)
}

// Restore returns the lessons of the remembered folder. It returns no
// lessons when nothing was imported or the copy has gone.
func (l *Library) Restore() ([]Pair, error) {
	var name string
	ok, err := l.Store.Get(l.folderKey(), &name)
	if err != nil {
		return nil, fmt.Errorf("read remembered folder: %w", err)
	}
	if !ok || name == "" {
		return nil, nil
	}

	dir := l.Dir(name)
	pairs, err := Scan(dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("imported folder missing", "name", name, "path", dir)
		return nil, nil
	}
	return pairs, err
}

// Folder returns the remembered folder name, if any.
func (l *Library) Folder() (string, bool, error) {
	var name string
	ok, err := l.Store.Get(l.folderKey(), &name)
	return name, ok && name != "", err
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			slog.Debug("skipping non-regular file", "path", path)
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
