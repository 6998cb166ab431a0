// Package netvars compiles a module's tabular field descriptors (netvars.csv)
// into two C fragments: the struct members of the module's DRE record and
// the runtime descriptor table that points into it.
package netvars

import (
	"fmt"
	"strings"

	"github.com/seitarof/poris-gen/internal/errs"
)

// Fragments holds the generated lines of both outputs, without banner.
type Fragments struct {
	Fields      []string
	Descriptors []string
}

// Instance is the C struct instance the descriptor table points into.
func Instance(module string) string {
	return module + "_dre"
}

// Compile validates rows and renders both fragments. Nothing is rendered when
// any row is invalid.
func Compile(rows []Row, module, source string) (*Fragments, error) {
	if strings.TrimSpace(module) == "" {
		return nil, errs.Validation("module name is required")
	}
	table, err := Validate(rows, source)
	if err != nil {
		return nil, err
	}
	frags := Render(table, module)
	return &frags, nil
}

// Render is a pure function of table order and content.
func Render(table Table, module string) Fragments {
	inst := Instance(module)
	fields := guarded(table, func(f Field) string {
		return "    " + f.Type.Decl(f.Name)
	})
	descs := guarded(table, func(f Field) string {
		return descriptorEntry(f, inst)
	})
	return Fragments{Fields: fields, Descriptors: descs}
}

// guarded emits one line per field and wraps maximal runs of the same
// non-empty guard in #ifdef/#endif. Runs are never merged across rows with a
// different guard.
func guarded(table Table, line func(Field) string) []string {
	out := make([]string, 0, len(table)+2)
	current := ""
	for _, f := range table {
		if f.Guard != current {
			if current != "" {
				out = append(out, "#endif")
			}
			if f.Guard != "" {
				out = append(out, "#ifdef "+f.Guard)
			}
			current = f.Guard
		}
		out = append(out, line(f))
	}
	if current != "" {
		out = append(out, "#endif")
	}
	return out
}

func cString(s string) string {
	if s == "" {
		return "NULL"
	}
	return `"` + s + `"`
}

func pointerExpr(f Field, inst string) string {
	if f.Storage == StorageString {
		return fmt.Sprintf("(void*)(%s.%s)", inst, f.Name)
	}
	return fmt.Sprintf("(void*)&(%s.%s)", inst, f.Name)
}

func descriptorEntry(f Field, inst string) string {
	return fmt.Sprintf(`    { "%s", %s, %s, %s, %s, %s, %s, %t, %s, %s, %s, %s, %d },`,
		f.Name,
		cString(f.NVSKey),
		cString(f.JSONKey),
		cString(f.Group),
		cString(f.Module),
		f.Storage.Enumerator(),
		f.Persist.Enumerator(),
		f.OnWire,
		f.Direction.Enumerator(),
		f.Repr.Enumerator(),
		f.Type.LengthExpr(),
		pointerExpr(f, inst),
		f.Scale,
	)
}
