package variant

import (
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
	"github.com/seitarof/poris-gen/internal/naming"
)

// BuildEnvName is the environment file inside a variant build directory.
const BuildEnvName = "config.env"

// EnsureBuildEnv copies <outDir>/<id>.env into build_<slug>/config.env. When
// the variant has not been resolved yet an empty config.env is written and
// copied is false.
func EnsureBuildEnv(fsys billy.Filesystem, w FileWriter, outDir, id string) (dst string, copied bool, err error) {
	if strings.TrimSpace(id) == "" {
		return "", false, errs.Validation("variant id is required")
	}
	if outDir == "" {
		outDir = DefaultOutDir
	}
	dst = path.Join(strings.TrimPrefix(naming.BuildDir(id), "./"), BuildEnvName)

	data, err := fsutil.ReadFile(fsys, path.Join(outDir, EnvName(id)))
	switch {
	case err == nil:
		copied = true
	case errs.Is(err, errs.KindNotFound):
		data = nil
	default:
		return "", false, err
	}
	if err := w.Write(dst, data); err != nil {
		return "", false, err
	}
	return dst, copied, nil
}
