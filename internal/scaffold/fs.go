package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/tools/txtar"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

//go:embed templates/*.txtar
var templateFS embed.FS

// Builtin returns the embedded default template: the library one when
// library is set, the full component one otherwise.
func Builtin(library bool) (Tree, error) {
	name := "templates/component.txtar"
	if library {
		name = "templates/library.txtar"
	}
	data, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("builtin template: %w", err)
	}
	return TreeFromArchive(txtar.Parse(data)), nil
}

// TreeFromArchive converts a txtar archive into a tree. Directories are
// implied by file paths.
func TreeFromArchive(a *txtar.Archive) Tree {
	tr := make(Tree, 0, len(a.Files))
	for _, f := range a.Files {
		tr = append(tr, Entry{Path: path.Clean(f.Name), Data: f.Data})
	}
	tr.sort()
	return tr
}

// ReadTree loads every directory and file below dir.
func ReadTree(fsys billy.Filesystem, dir string) (Tree, error) {
	ok, err := fsutil.IsDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("template", dir, "")
	}

	var tr Tree
	root := path.Clean(dir)
	err = util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errs.IO("walk", p, err)
		}
		rel := p
		if root != "." {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		}
		if rel == "" || rel == "." {
			return nil
		}
		if info.IsDir() {
			tr = append(tr, Entry{Path: rel, Dir: true})
			return nil
		}
		data, err := fsutil.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		tr = append(tr, Entry{Path: rel, Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	tr.sort()
	return tr, nil
}

// WriteTree materializes tr below dest, replacing files that already exist.
func WriteTree(fsys billy.Filesystem, dest string, tr Tree) error {
	if err := fsys.MkdirAll(dest, 0o755); err != nil {
		return errs.IO("mkdir", dest, err)
	}
	for _, e := range tr {
		p := path.Join(dest, e.Path)
		if e.Dir {
			if err := fsys.MkdirAll(p, 0o755); err != nil {
				return errs.IO("mkdir", p, err)
			}
			continue
		}
		if err := fsutil.WriteFileAtomic(fsys, p, e.Data); err != nil {
			return err
		}
	}
	return nil
}
