package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/config"
	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
	"github.com/seitarof/poris-gen/internal/inject"
	"github.com/seitarof/poris-gen/internal/integration"
	"github.com/seitarof/poris-gen/internal/netvars"
	"github.com/seitarof/poris-gen/internal/scaffold"
	"github.com/seitarof/poris-gen/internal/variant"
)

// Runner orchestrates the generators against one project file system.
// Generated paths are printed to out, progress goes to the logger.
type Runner interface {
	ResolveVariant(o VariantOptions) error
	WriteProjectConfig(o VariantOptions) error
	EnsureVariant(o VariantOptions) error
	GenerateNetvars(o NetvarsOptions) error
	Integrate(o IntegrateOptions) error
	NewComponent(o ComponentOptions) error
	Vendor(o VendorOptions) error
	InitConfig(o InitOptions) error
}

type runnerImpl struct {
	fs  billy.Filesystem
	cfg config.Config
	log *slog.Logger
	out io.Writer
}

// NewRunner creates a runner over the project rooted at fsys.
func NewRunner(fsys billy.Filesystem, cfg config.Config, logger *slog.Logger, out io.Writer) Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &runnerImpl{fs: fsys, cfg: cfg, log: logger, out: out}
}

// fileWriter satisfies the FileWriter interface of every generator package.
type fileWriter interface {
	Write(name string, data []byte) error
}

// printWriter prints files instead of writing them.
type printWriter struct {
	out io.Writer
}

func (w *printWriter) Write(name string, data []byte) error {
	_, err := fmt.Fprintf(w.out, "=== %s ===\n%s", name, data)
	if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = fmt.Fprintln(w.out)
	}
	return err
}

type atomicWriter struct {
	fs billy.Filesystem
}

func (w *atomicWriter) Write(name string, data []byte) error {
	return fsutil.WriteFileAtomic(w.fs, name, data)
}

func (r *runnerImpl) writer(dryRun bool) fileWriter {
	if dryRun {
		return &printWriter{out: r.out}
	}
	return &atomicWriter{fs: r.fs}
}

func (r *runnerImpl) loadVariants(override string, w fileWriter) (*variant.Document, error) {
	if override == "" {
		override = r.cfg.Paths.Variants
	}
	l := &variant.Loader{
		FS:            r.fs,
		Writer:        w,
		ComponentsDir: r.cfg.Paths.Components,
		Override:      override,
	}
	doc, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	if doc.Synthesized {
		r.log.Warn("no variants defined; wrote default variant",
			"path", doc.Path, "variant", variant.ImplicitID, "components", doc.Graph.Variants[0].Components)
	}
	return doc, nil
}

// ResolveVariant writes the build artifacts of one variant.
func (r *runnerImpl) ResolveVariant(o VariantOptions) error {
	if strings.TrimSpace(o.ID) == "" {
		return errs.Usage("--variant is required")
	}
	w := r.writer(o.DryRun)
	doc, err := r.loadVariants(o.VariantsYML, w)
	if err != nil {
		return err
	}
	res, err := variant.New(r.fs, w, variant.Config{BaseDefaults: r.cfg.Paths.BaseDefaults}).Resolve(doc, o.ID)
	if err != nil {
		return fmt.Errorf("resolve variant %s: %w", o.ID, err)
	}
	for _, out := range res.Outputs {
		if out.Placeholder {
			r.log.Info("created placeholder", "path", out.Path)
		}
	}
	r.log.Info("resolved variant", "variant", o.ID, "components", len(res.Variant.Components), "source", doc.Path)
	if !o.DryRun {
		fmt.Fprintln(r.out, res.DefaultsPath)
	}
	return nil
}

// WriteProjectConfig writes the IDE build description of every variant.
func (r *runnerImpl) WriteProjectConfig(o VariantOptions) error {
	w := r.writer(o.DryRun)
	doc, err := r.loadVariants(o.VariantsYML, w)
	if err != nil {
		return err
	}
	data, err := variant.ProjectConfig(doc.Graph)
	if err != nil {
		return err
	}
	dst := o.Out
	if dst == "" {
		dst = r.cfg.Paths.ProjectConfig
	}
	if err := w.Write(dst, data); err != nil {
		return err
	}
	r.log.Info("wrote project configuration", "path", dst, "variants", len(doc.Graph.Variants))
	if !o.DryRun {
		fmt.Fprintln(r.out, dst)
	}
	return nil
}

// EnsureVariant seeds the variant build directory with its environment.
func (r *runnerImpl) EnsureVariant(o VariantOptions) error {
	if strings.TrimSpace(o.ID) == "" {
		return errs.Usage("--variant is required")
	}
	outDir := variant.DefaultOutDir
	p, found, err := (&variant.Loader{FS: r.fs, Override: r.override(o.VariantsYML)}).Find()
	if err != nil {
		return err
	}
	if found {
		data, err := fsutil.ReadFile(r.fs, p)
		if err != nil {
			return err
		}
		g, err := variant.Parse(data, p)
		if err != nil {
			return err
		}
		outDir = g.Out()
	}
	dst, copied, err := variant.EnsureBuildEnv(r.fs, r.writer(false), outDir, o.ID)
	if err != nil {
		return err
	}
	if copied {
		r.log.Info("applied variant environment", "variant", o.ID, "path", dst)
	} else {
		r.log.Info("no environment for variant yet; wrote empty file", "variant", o.ID, "path", dst)
	}
	fmt.Fprintln(r.out, dst)
	return nil
}

func (r *runnerImpl) override(flag string) string {
	if flag != "" {
		return flag
	}
	return r.cfg.Paths.Variants
}

// GenerateNetvars compiles a module's descriptor table into its fragments.
func (r *runnerImpl) GenerateNetvars(o NetvarsOptions) error {
	if strings.TrimSpace(o.Module) == "" {
		return errs.Usage("--module is required")
	}
	g := netvars.New(r.fs, r.writer(o.DryRun), netvars.Config{
		SearchDirs: r.cfg.Netvars.SearchDirs,
		Descriptor: r.cfg.Netvars.Descriptor,
	})
	outs, err := g.Generate(o.Module)
	if err != nil {
		return fmt.Errorf("netvars %s: %w", o.Module, err)
	}
	if o.DryRun {
		return nil
	}
	for _, out := range outs {
		fmt.Fprintln(r.out, out.Path)
	}
	return nil
}

// Integrate prints or applies the host file snippets of a component.
func (r *runnerImpl) Integrate(o IntegrateOptions) error {
	if strings.TrimSpace(o.Name) == "" {
		return errs.Usage("--name is required")
	}
	snippets, err := integration.Build(integration.Options{
		Name:           o.Name,
		EnableMacro:    o.EnableMacro,
		Include:        o.Include,
		NetvarsInclude: o.NetvarsInclude,
		UseThreadMacro: o.UseThreadMacro,
		SpinPeriodMS:   o.SpinPeriodMS,
		PeriodMacro:    o.PeriodMacro,
		CounterName:    o.CounterName,
		NoSpin:         o.NoSpin,
		Library:        o.Library,
	})
	if err != nil {
		return err
	}
	if !o.Apply {
		_, err := io.WriteString(r.out, integration.Render(snippets))
		return err
	}

	target := o.AppMain
	if target == "" {
		target = r.cfg.Paths.AppMain
	}
	changed, err := inject.ApplyFile(r.fs, target, integration.Requests(snippets))
	if err != nil {
		return fmt.Errorf("integrate %s: %w", o.Name, err)
	}
	if changed {
		r.log.Info("integrated component", "component", o.Name, "path", target)
	} else {
		r.log.Info("component already integrated", "component", o.Name, "path", target)
	}
	fmt.Fprintln(r.out, target)
	return nil
}

// NewComponent scaffolds a component from a template.
func (r *runnerImpl) NewComponent(o ComponentOptions) error {
	if strings.TrimSpace(o.Name) == "" {
		return errs.Usage("--name is required")
	}
	s := scaffold.New(r.fs, scaffold.Config{
		TemplatesDir:  r.cfg.Paths.Templates,
		ComponentsDir: r.cfg.Paths.Components,
	})
	res, err := s.Scaffold(scaffold.Request{
		Name:       o.Name,
		Template:   o.Template,
		Library:    o.Library,
		DestParent: o.Dest,
	})
	if err != nil {
		return fmt.Errorf("new component %s: %w", o.Name, err)
	}
	r.log.Info("created component", "path", res.Dir, "template", res.Template, "files", len(res.Files))
	fmt.Fprintln(r.out, res.Dir)
	fmt.Fprintf(r.out, "%s=1\n", res.EnableFlag)
	return nil
}

// Vendor copies the shared components into the project tree.
func (r *runnerImpl) Vendor(o VendorOptions) error {
	src, dst := o.Source, o.Dest
	if src == "" {
		src = r.cfg.Paths.VendorSource
	}
	if dst == "" {
		dst = r.cfg.Paths.VendorDest
	}
	files, err := scaffold.Vendor(r.fs, src, dst)
	if err != nil {
		return fmt.Errorf("vendor: %w", err)
	}
	r.log.Info("vendored components", "from", src, "to", dst, "files", len(files))
	fmt.Fprintf(r.out, "%s -> %s\n", src, dst)
	return nil
}

// InitConfig writes a poris.toml holding the defaults.
func (r *runnerImpl) InitConfig(o InitOptions) error {
	dst := o.Output
	if dst == "" {
		dst = config.FileName
	}
	dst = path.Clean(dst)
	if !o.Force {
		ok, err := fsutil.Exists(r.fs, dst)
		if err != nil {
			return err
		}
		if ok {
			return &errs.Error{Class: errs.KindAlreadyExists, Op: "already exists:", Path: dst, Hint: "use --force to overwrite"}
		}
	}
	data, err := config.Encode(config.Default())
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(r.fs, dst, data); err != nil {
		return err
	}
	fmt.Fprintln(r.out, dst)
	return nil
}
