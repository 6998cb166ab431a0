package netvars

import (
	"bytes"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

// DefaultDescriptor is the descriptor file name inside a component.
const DefaultDescriptor = "netvars.csv"

// FileWriter persists generated fragment files.
type FileWriter interface {
	Write(name string, data []byte) error
}

// Generator locates a module's descriptor, compiles it and writes both
// fragment files.
type Generator interface {
	Generate(module string) ([]Output, error)
}

// Output is one generated fragment file.
type Output struct {
	Path    string
	Content string
}

// Config tells the generator where components live.
type Config struct {
	SearchDirs []string
	Descriptor string
}

type generatorImpl struct {
	fs     billy.Filesystem
	writer FileWriter
	cfg    Config
}

type fileWriter struct {
	fs billy.Filesystem
}

// New creates a generator reading from fsys and writing through w.
func New(fsys billy.Filesystem, w FileWriter, cfg Config) Generator {
	if cfg.Descriptor == "" {
		cfg.Descriptor = DefaultDescriptor
	}
	if len(cfg.SearchDirs) == 0 {
		cfg.SearchDirs = []string{"components", "poris/components"}
	}
	return &generatorImpl{fs: fsys, writer: w, cfg: cfg}
}

// NewFileWriter creates a writer that replaces files atomically in fsys.
func NewFileWriter(fsys billy.Filesystem) FileWriter {
	return &fileWriter{fs: fsys}
}

func (w *fileWriter) Write(name string, data []byte) error {
	return fsutil.WriteFileAtomic(w.fs, name, data)
}

// ComponentDir returns the first search directory holding module.
func (g *generatorImpl) ComponentDir(module string) (string, error) {
	candidates := make([]string, 0, len(g.cfg.SearchDirs))
	for _, dir := range g.cfg.SearchDirs {
		c := path.Join(dir, module)
		ok, err := fsutil.IsDir(g.fs, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
		candidates = append(candidates, c)
	}
	return "", errs.NotFound("component", module, "searched: "+strings.Join(candidates, ", "))
}

func (g *generatorImpl) Generate(module string) ([]Output, error) {
	if module == "" || strings.ContainsAny(module, "/\\") || module == "." || module == ".." {
		return nil, errs.Validation("invalid module name %q", module)
	}
	compDir, err := g.ComponentDir(module)
	if err != nil {
		return nil, err
	}

	csvPath := path.Join(compDir, g.cfg.Descriptor)
	data, err := fsutil.ReadFile(g.fs, csvPath)
	if err != nil {
		return nil, err
	}
	rows, err := ReadRows(bytes.NewReader(data), csvPath)
	if err != nil {
		return nil, err
	}
	frags, err := Compile(rows, module, csvPath)
	if err != nil {
		return nil, err
	}

	typesPath := TypesPath(compDir, module)
	descPath := DescriptorsPath(compDir, module)
	typesOld, err := g.readExisting(typesPath)
	if err != nil {
		return nil, err
	}
	descOld, err := g.readExisting(descPath)
	if err != nil {
		return nil, err
	}

	outs := []Output{
		{Path: typesPath, Content: Splice(typesOld, typesBanner(module, g.cfg.Descriptor), frags.Fields)},
		{Path: descPath, Content: Splice(descOld, descriptorsBanner(module, g.cfg.Descriptor), frags.Descriptors)},
	}
	for _, o := range outs {
		if err := g.writer.Write(o.Path, []byte(o.Content)); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

func (g *generatorImpl) readExisting(name string) (string, error) {
	data, err := fsutil.ReadFile(g.fs, name)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
