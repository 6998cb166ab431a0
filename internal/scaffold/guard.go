package scaffold

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
	"github.com/seitarof/poris-gen/internal/naming"
)

// GuardFile is the build file that carries the enable guard.
const GuardFile = "CMakeLists.txt"

func guardBlock(name, flag string) string {
	return fmt.Sprintf(`if(NOT DEFINED ENV{%[2]s})
  message(STATUS "[ %[1]s ] disabled by variant (%[2]s not set)")
  return()
endif()
`, name, flag)
}

// DefaultCMake is the guard file written for a component that has none.
func DefaultCMake(name string) string {
	up := naming.UpperSanitized(name)
	flag := naming.EnablePrefix + up
	return "# Auto-generated CMakeLists for " + name + "\n" +
		guardBlock(name, flag) + "\n" +
		"idf_component_register(\n" +
		`  SRCS "` + name + `.c"` + "\n" +
		`  INCLUDE_DIRS "include"` + "\n" +
		")\n\n" +
		"if(CONFIG_" + flag + ")\n" +
		`  target_compile_definitions(${COMPONENT_LIB} PRIVATE "PORIS_` + up + `_ENABLED=1")` + "\n" +
		"endif()\n"
}

// Guard prepends the enable guard to an existing guard file unless the
// component's enable flag is already referenced. It reports whether the
// content changed.
func Guard(existing, name string) (string, bool) {
	flag := naming.EnablePrefix + naming.UpperSanitized(name)
	if strings.Contains(existing, flag) {
		return existing, false
	}
	return "# Variant guard: skip this component unless it is enabled\n" +
		guardBlock(name, flag) + "\n" + existing, true
}

// EnsureGuard creates or guards <dir>/CMakeLists.txt for component name.
func EnsureGuard(fsys billy.Filesystem, dir, name string) (bool, error) {
	p := path.Join(dir, GuardFile)
	data, err := fsutil.ReadFile(fsys, p)
	switch {
	case errs.Is(err, errs.KindNotFound):
		return true, fsutil.WriteFileAtomic(fsys, p, []byte(DefaultCMake(name)))
	case err != nil:
		return false, err
	}
	out, changed := Guard(string(data), name)
	if !changed {
		return false, nil
	}
	return true, fsutil.WriteFileAtomic(fsys, p, []byte(out))
}
