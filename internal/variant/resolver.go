package variant

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

// DefaultBaseDefaults is the project-wide defaults file merged first.
const DefaultBaseDefaults = "sdkconfig.defaults"

// UnknownVariantError reports a variant id missing from the graph.
type UnknownVariantError struct {
	ID        string
	Source    string
	Available []string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("variant %q is not defined in %s (available: %s)",
		e.ID, e.Source, strings.Join(e.Available, ", "))
}

func (e *UnknownVariantError) Kind() errs.Kind { return errs.KindNotFound }

// Output is one file the resolver writes.
type Output struct {
	Path    string
	Content string
	// Placeholder marks an auto-created base defaults or overlay file.
	Placeholder bool
}

// Result describes one resolved variant.
type Result struct {
	Variant      Record
	DefaultsPath string
	Outputs      []Output
}

// Resolver expands one variant of a graph into its artifacts.
type Resolver interface {
	Resolve(doc *Document, id string) (*Result, error)
}

// Config configures the resolver.
type Config struct {
	BaseDefaults string
}

type resolverImpl struct {
	fs     billy.Filesystem
	writer FileWriter
	cfg    Config
}

// New creates a resolver reading overlays from fsys and writing through w.
func New(fsys billy.Filesystem, w FileWriter, cfg Config) Resolver {
	if cfg.BaseDefaults == "" {
		cfg.BaseDefaults = DefaultBaseDefaults
	}
	return &resolverImpl{fs: fsys, writer: w, cfg: cfg}
}

// Resolve computes every artifact of variant id before writing any of them.
// Missing base defaults and overlay files are created with a single comment
// line.
func (r *resolverImpl) Resolve(doc *Document, id string) (*Result, error) {
	rec, ok := doc.Graph.Find(id)
	if !ok {
		return nil, &UnknownVariantError{ID: id, Source: doc.Path, Available: doc.Graph.IDs()}
	}

	var placeholders []Output
	blocks := make([]string, 0, len(rec.Overlays)+1)

	base, created, err := r.readOrPlaceholder(r.cfg.BaseDefaults, "base defaults (auto-created empty)")
	if err != nil {
		return nil, err
	}
	if created {
		placeholders = append(placeholders, Output{Path: r.cfg.BaseDefaults, Content: base, Placeholder: true})
	}
	blocks = append(blocks, base)

	for _, ov := range rec.Overlays {
		p := path.Join(doc.Graph.Defaults(), ov)
		content, created, err := r.readOrPlaceholder(p, "auto-created empty overlay: "+ov)
		if err != nil {
			return nil, err
		}
		if created {
			placeholders = append(placeholders, Output{Path: p, Content: content, Placeholder: true})
		}
		blocks = append(blocks, content)
	}

	out := doc.Graph.Out()
	res := &Result{
		Variant:      rec,
		DefaultsPath: DefaultsPath(out, rec.ID),
	}
	res.Outputs = append(placeholders,
		Output{Path: res.DefaultsPath, Content: MergeDefaults(blocks)},
		Output{Path: path.Join(out, CacheHintName(rec.ID)), Content: TargetHint(rec)},
		Output{Path: path.Join(out, EnvName(rec.ID)), Content: EnvFile(rec)},
		Output{Path: path.Join(out, ComponentsName(rec.ID)), Content: ComponentsCMake(rec)},
	)

	for _, o := range res.Outputs {
		if err := r.writer.Write(o.Path, []byte(o.Content)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *resolverImpl) readOrPlaceholder(name, comment string) (string, bool, error) {
	data, err := fsutil.ReadFile(r.fs, name)
	if err == nil {
		return string(data), false, nil
	}
	if errs.Is(err, errs.KindNotFound) {
		return "# " + comment + "\n", true, nil
	}
	return "", false, err
}
