// Package fsutil provides billy file system helpers shared by the
// generators.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/seitarof/poris-gen/internal/errs"
)

const tempPrefix = ".poris-gen-"

// Exists reports whether name exists in fsys.
func Exists(fsys billy.Filesystem, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errs.IO("stat", name, err)
}

// IsDir reports whether name exists and is a directory.
func IsDir(fsys billy.Filesystem, name string) (bool, error) {
	fi, err := fsys.Stat(name)
	if err == nil {
		return fi.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errs.IO("stat", name, err)
}

// ReadFile reads name, classifying a missing file as NotFound.
func ReadFile(fsys billy.Filesystem, name string) ([]byte, error) {
	data, err := util.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.NotFound("file", name, "")
		}
		return nil, errs.IO("read", name, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary sibling of name and renames it
// into place, so readers never observe a partially written file.
func WriteFileAtomic(fsys billy.Filesystem, name string, data []byte) error {
	dir := path.Dir(name)
	if dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return errs.IO("mkdir", dir, err)
		}
	}

	tmp, err := util.TempFile(fsys, dir, tempPrefix)
	if err != nil {
		return errs.IO("create temp in", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return errs.IO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return errs.IO("close", tmpName, err)
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName)
		return errs.IO("rename to", name, err)
	}
	return nil
}

// EnsureFile creates name with content when it does not exist yet. It
// reports whether the file was created.
func EnsureFile(fsys billy.Filesystem, name string, content []byte) (bool, error) {
	ok, err := Exists(fsys, name)
	if err != nil || ok {
		return false, err
	}
	if err := WriteFileAtomic(fsys, name, content); err != nil {
		return false, err
	}
	return true, nil
}

// ListDirs returns the sorted names of the non-hidden directories directly
// under dir. A missing dir yields an empty list.
func ListDirs(fsys billy.Filesystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.IO("list", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Within reports whether p is root itself or nested below it. Both paths
// are cleaned, slash-separated and relative to the same file system.
func Within(p, root string) bool {
	p = path.Clean(p)
	root = path.Clean(root)
	if root == "." {
		return !strings.HasPrefix(p, "../") && p != ".."
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
