package scaffold

import (
	"path"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

// Vendor copies every entry of src into dst byte for byte. Existing files in
// dst are overwritten and unrelated ones are kept. It returns the copied file
// paths relative to dst.
func Vendor(fsys billy.Filesystem, src, dst string) ([]string, error) {
	src, dst = path.Clean(src), path.Clean(dst)
	if fsutil.Within(dst, src) || fsutil.Within(src, dst) {
		return nil, errs.Validation("cannot vendor %s into %s: directories overlap", src, dst)
	}
	ok, err := fsutil.IsDir(fsys, src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("components directory", src, "nothing to vendor")
	}
	tr, err := ReadTree(fsys, src)
	if err != nil {
		return nil, err
	}
	if err := WriteTree(fsys, dst, tr); err != nil {
		return nil, err
	}
	return tr.Files(), nil
}
