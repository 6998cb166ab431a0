package variant

import (
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/fsutil"
)

// DefaultCandidates are the places a variant graph is looked up, in order.
var DefaultCandidates = []string{"variants/variants.yml", "variants.yml"}

// FileWriter persists a generated file.
type FileWriter interface {
	Write(name string, data []byte) error
}

type fileWriter struct {
	fs billy.Filesystem
}

// NewFileWriter creates a writer that replaces files atomically in fsys.
func NewFileWriter(fsys billy.Filesystem) FileWriter {
	return &fileWriter{fs: fsys}
}

func (w *fileWriter) Write(name string, data []byte) error {
	return fsutil.WriteFileAtomic(w.fs, name, data)
}

// Document is a loaded variant graph together with where it lives.
type Document struct {
	Path  string
	Graph *Graph
	// Synthesized is set when the implicit variant was written back.
	Synthesized bool
}

// Loader finds and loads the variant graph, synthesizing it when needed.
type Loader struct {
	FS            billy.Filesystem
	Writer        FileWriter
	ComponentsDir string
	// Override is tried before DefaultCandidates when set.
	Override string
}

// Candidates lists the lookup paths in order, without duplicates.
func (l *Loader) Candidates() []string {
	var out []string
	if l.Override != "" {
		out = append(out, path.Clean(strings.TrimPrefix(l.Override, "/")))
	}
	for _, c := range DefaultCandidates {
		if len(out) == 0 || out[0] != c {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first existing candidate.
func (l *Loader) Find() (string, bool, error) {
	for _, c := range l.Candidates() {
		ok, err := fsutil.Exists(l.FS, c)
		if err != nil {
			return "", false, err
		}
		if ok {
			return c, true, nil
		}
	}
	return "", false, nil
}

// Load reads the graph. When no document exists, or the existing one lists no
// variants, a graph with the single variant "main" enabling every component
// directory is synthesized and persisted through the writer.
func (l *Loader) Load() (*Document, error) {
	p, found, err := l.Find()
	if err != nil {
		return nil, err
	}
	if !found {
		p = l.Candidates()[0]
		return l.synthesize(p, nil)
	}

	data, err := fsutil.ReadFile(l.FS, p)
	if err != nil {
		return nil, err
	}
	g, err := Parse(data, p)
	if err != nil {
		return nil, err
	}
	if len(g.Variants) == 0 {
		return l.synthesize(p, g)
	}
	if err := Validate(g, p); err != nil {
		return nil, err
	}
	return &Document{Path: p, Graph: g}, nil
}

func (l *Loader) synthesize(p string, existing *Graph) (*Document, error) {
	comps, err := fsutil.ListDirs(l.FS, l.componentsDir())
	if err != nil {
		return nil, err
	}
	g := Synthesize(comps)
	if existing != nil {
		if existing.DefaultsDir != "" {
			g.DefaultsDir = existing.DefaultsDir
		}
		if existing.OutDir != "" {
			g.OutDir = existing.OutDir
		}
	}
	if err := Validate(g, p); err != nil {
		return nil, err
	}
	data, err := Encode(g)
	if err != nil {
		return nil, err
	}
	if err := l.Writer.Write(p, data); err != nil {
		return nil, err
	}
	return &Document{Path: p, Graph: g, Synthesized: true}, nil
}

func (l *Loader) componentsDir() string {
	if l.ComponentsDir == "" {
		return "components"
	}
	return l.ComponentsDir
}

