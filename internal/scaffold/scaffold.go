package scaffold

import (
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
	"github.com/seitarof/poris-gen/internal/naming"
)

// Template directory names under the templates root.
const (
	ComponentTemplate = NameToken
	LibraryTemplate   = NameToken + "lib"
)

// Request describes one component to create.
type Request struct {
	Name string
	// Template is an explicit template directory. When empty the project
	// templates are tried, then the embedded defaults.
	Template string
	Library  bool
	// DestParent is the directory the component is created in.
	DestParent string
}

// Result describes a created component.
type Result struct {
	Dir        string
	EnableFlag string
	// Template is the template directory used, or "builtin:<kind>".
	Template string
	Files    []string
}

// Scaffolder creates components from templates.
type Scaffolder interface {
	Scaffold(req Request) (*Result, error)
}

// Config holds the project layout the scaffolder works in.
type Config struct {
	TemplatesDir  string
	ComponentsDir string
}

type scaffolderImpl struct {
	fs  billy.Filesystem
	cfg Config
}

// New creates a scaffolder over fsys.
func New(fsys billy.Filesystem, cfg Config) Scaffolder {
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "poris/templates"
	}
	if cfg.ComponentsDir == "" {
		cfg.ComponentsDir = "components"
	}
	return &scaffolderImpl{fs: fsys, cfg: cfg}
}

// ValidateName rejects names that are not a single path element.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Validation("component name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errs.Validation("invalid component name %q: must be a single path element", name)
	}
	return nil
}

func (s *scaffolderImpl) Scaffold(req Request) (*Result, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	parent := req.DestParent
	if parent == "" {
		parent = s.cfg.ComponentsDir
	}
	parent = path.Clean(parent)
	dest := path.Join(parent, req.Name)

	exists, err := fsutil.Exists(s.fs, dest)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.AlreadyExists(dest)
	}

	tmpl, source, err := s.template(req, parent)
	if err != nil {
		return nil, err
	}

	tok := NewTokens(req.Name)
	tree := tmpl.Substitute(tok)
	tree, _ = tree.Rename(path.Join("include", NameToken+".h"), path.Join("include", req.Name+".h"))

	if err := WriteTree(s.fs, dest, tree); err != nil {
		return nil, err
	}
	if _, err := EnsureGuard(s.fs, dest, req.Name); err != nil {
		return nil, err
	}

	files := tree.Files()
	if !containsPath(files, GuardFile) {
		files = append(files, GuardFile)
	}
	return &Result{
		Dir:        dest,
		EnableFlag: naming.EnablePrefix + tok.Upper,
		Template:   source,
		Files:      files,
	}, nil
}

func (s *scaffolderImpl) template(req Request, parent string) (Tree, string, error) {
	if req.Template != "" {
		dir := path.Clean(req.Template)
		if fsutil.Within(dir, parent) {
			return nil, "", errs.Validation("template %s must not be inside the destination %s", dir, parent)
		}
		tr, err := ReadTree(s.fs, dir)
		return tr, dir, err
	}

	name := ComponentTemplate
	kind := "component"
	if req.Library {
		name = LibraryTemplate
		kind = "library"
	}
	dir := path.Join(s.cfg.TemplatesDir, name)
	ok, err := fsutil.IsDir(s.fs, dir)
	if err != nil {
		return nil, "", err
	}
	if ok {
		if fsutil.Within(dir, parent) {
			return nil, "", errs.Validation("template %s must not be inside the destination %s", dir, parent)
		}
		tr, err := ReadTree(s.fs, dir)
		return tr, dir, err
	}
	tr, err := Builtin(req.Library)
	return tr, "builtin:" + kind, err
}

func containsPath(list []string, p string) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}
