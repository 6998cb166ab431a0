package variant

import (
	"path"
	"strings"
	"unicode"

	"github.com/seitarof/poris-gen/internal/naming"
)

// Artifact file names for variant id inside out_dir.
func DefaultsName(id string) string   { return "sdkconfig." + id + ".defaults" }
func CacheHintName(id string) string  { return id + ".cmakecache.cmake" }
func EnvName(id string) string        { return id + ".env" }
func ComponentsName(id string) string { return id + ".components.cmake" }

// DefaultsPath is the merged defaults artifact of id under outDir.
func DefaultsPath(outDir, id string) string {
	return path.Join(outDir, DefaultsName(id))
}

// MergeDefaults concatenates blocks in order. Each block is trailing-trimmed
// and terminated with exactly one newline.
func MergeDefaults(blocks []string) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(strings.TrimRightFunc(blk, unicode.IsSpace))
		b.WriteByte('\n')
	}
	return b.String()
}

// TargetHint is the CMake cache preload selecting the IDF target.
func TargetHint(r Record) string {
	if r.Target == "" {
		return "# no target in YAML\n"
	}
	return "set(IDF_TARGET " + r.Target + ")\n"
}

// EnvFile lists one PORIS_ENABLE_<C>=1 line per component followed by the
// raw extra_env entries.
func EnvFile(r Record) string {
	lines := make([]string, 0, len(r.Components)+len(r.ExtraEnv))
	for _, c := range r.Components {
		lines = append(lines, naming.EnableFlag(c)+"=1")
	}
	for _, e := range r.ExtraEnv {
		lines = append(lines, e.Key+"="+e.Value)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// ComponentsCMake renders the component list as a plain list, a cached
// semicolon list with its environment mirror, one forced cache flag per
// component and the extra_env mirrors.
func ComponentsCMake(r Record) string {
	list := strings.Join(r.Components, ";")
	lines := []string{
		"set(PORIS_COMPONENTS " + strings.Join(r.Components, " ") + ")",
		`set(PORIS_COMPONENTS_LIST "` + list + `" CACHE STRING "PORIS components" FORCE)`,
		`set(ENV{PORIS_COMPONENTS_LIST} "` + list + `")`,
	}
	for _, c := range r.Components {
		flag := naming.EnableFlag(c)
		up := strings.TrimPrefix(flag, naming.EnablePrefix)
		lines = append(lines, "set("+flag+` ON CACHE BOOL "Enable `+up+`" FORCE)`)
	}
	for _, e := range r.ExtraEnv {
		lines = append(lines,
			"set(ENV{"+e.Key+`} "`+e.Value+`")`,
			"set(PORIS_EXTRA_"+e.Key+` "`+e.Value+`")`,
		)
	}
	return strings.Join(lines, "\n") + "\n"
}
