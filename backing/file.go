package backing

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/mplewis/layerkv"
)

// File stores each entry as a file under a root directory. Ids are clean
// slash-separated paths relative to root. Hidden files and directories are
// not enumerated, which keeps in-flight temp files out of Keys, so ids with a
// segment starting with a dot are rejected with ErrKeyValidation.
type File struct {
	root string
}

// NewFile creates a filesystem backing rooted at root. The directory is
// created on first write.
func NewFile(root string) *File {
	root = filepath.Clean(root)
	logger.Debug("file backing", "root", root)
	return &File{root: root}
}

// Root returns the directory entries are stored under.
func (f *File) Root() string {
	return f.root
}

// path maps id to its file. Ids must be clean relative paths and no segment
// may start with a dot, since Keys never reports hidden entries.
func (f *File) path(id string) (string, error) {
	rel := filepath.FromSlash(id)
	if id == "" || !filepath.IsLocal(rel) {
		return "", layerkv.InvalidKey(id, "not a relative path inside the root")
	}
	if pathpkg.Clean(id) != id {
		return "", layerkv.InvalidKey(id, "not a canonical path")
	}
	for _, seg := range strings.Split(id, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", layerkv.InvalidKey(id, "hidden path segment")
		}
	}
	return filepath.Join(f.root, rel), nil
}

// Get reads the file for id.
func (f *File) Get(id string) ([]byte, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, layerkv.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return data, nil
}

// Set writes the file for id atomically through a temp file and rename.
func (f *File) Set(id string, data []byte) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", id, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", id, err)
	}
	return nil
}

// Delete removes the file for id and any directories left empty.
func (f *File) Delete(id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return layerkv.NotFound(id)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}

	for dir := filepath.Dir(path); dir != f.root; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}

// Keys walks the root lazily in lexical order.
func (f *File) Keys() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == f.root {
					return fs.SkipAll
				}
				return err
			}
			if path == f.root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(f.root, path)
			if err != nil {
				return err
			}
			if !yield(filepath.ToSlash(rel), nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("listing %s: %w", f.root, err))
		}
	}
}

// Contains reports whether a regular file exists for id. Ids that cannot
// name a file inside the root are reported absent.
func (f *File) Contains(id string) (bool, error) {
	path, err := f.path(id)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Count walks the whole tree; there is no cheaper way to count files.
func (f *File) Count() (int, error) {
	return layerkv.CountKeys(f.Keys())
}
