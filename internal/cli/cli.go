// Package cli wires the generators into the poris-gen command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/seitarof/poris-gen/internal/config"
	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/integration"
	plog "github.com/seitarof/poris-gen/internal/log"
)

const skipConfig = "poris-gen/skip-config"

type app struct {
	opts    Options
	stdout  io.Writer
	stderr  io.Writer
	openFS  func(root string) billy.Filesystem
	runner  Runner
	closers []io.Closer
	started bool
}

// Execute runs the command line with args and returns the first error.
// Errors raised before a command starts are classified as usage errors.
func Execute(args []string, stdout, stderr io.Writer, version string) error {
	return execute(args, stdout, stderr, version, func(root string) billy.Filesystem {
		return osfs.New(root)
	})
}

func execute(args []string, stdout, stderr io.Writer, version string, openFS func(string) billy.Filesystem) error {
	a := &app{stdout: stdout, stderr: stderr, openFS: openFS}
	root := a.command(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	_, err := root.ExecuteC()
	for _, c := range a.closers {
		_ = c.Close()
	}
	if err == nil {
		return nil
	}
	var k errs.Kinded
	if !a.started && !errors.As(err, &k) {
		return &errs.Error{Class: errs.KindUsage, Err: err, Hint: "see poris-gen --help"}
	}
	return err
}

func (a *app) command(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "poris-gen",
		Short:         "Code generation for PORIS firmware projects",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.Usage("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.Root, "root", ".", "project root directory")
	pf.StringVar(&a.opts.ConfigPath, "config", "", "configuration file (default poris.toml, optional)")
	pf.StringVar(&a.opts.LogLevel, "log-level", "warn", "log level: "+strings.Join(plog.Levels, ", "))
	pf.StringVar(&a.opts.LogFile, "log-file", "", "also write logs to this file")

	root.AddCommand(
		a.variantCommand(),
		a.configsCommand(),
		a.ensureVariantCommand(),
		a.netvarsCommand(),
		a.integrateCommand(),
		a.newComponentCommand(),
		a.vendorCommand(),
		a.configCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, closers, err := plog.SetupLogger(plog.Options{
		Level:   a.opts.LogLevel,
		File:    a.opts.LogFile,
		Console: a.stderr,
		Errors:  a.stderr,
	})
	if err != nil {
		return errs.IO("open log file", a.opts.LogFile, err)
	}
	a.closers = append(a.closers, closers...)

	fsys := a.openFS(a.opts.Root)
	cfg := config.Default()
	if cmd.Annotations[skipConfig] == "" {
		name, required := a.opts.configFile()
		cfg, err = config.Load(fsys, name, required)
		if err != nil {
			return err
		}
	}
	logger.Debug("loaded configuration", "root", a.opts.Root, "command", cmd.Name())
	a.runner = NewRunner(fsys, cfg, logger.With(slog.String("command", cmd.Name())), a.stdout)
	return nil
}

// run marks the command as started so later failures keep their own class.
func (a *app) run(f func() error) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		a.started = true
		return f()
	}
}

func bindVariantFile(fs *pflag.FlagSet, o *VariantOptions) {
	fs.StringVar(&o.VariantsYML, "variants-yml", "", "variant document (default variants/variants.yml, then variants.yml)")
}

func bindDryRun(fs *pflag.FlagSet, p *bool) {
	fs.BoolVar(p, "dry-run", false, "print the generated files instead of writing them")
}

func (a *app) variantCommand() *cobra.Command {
	var o VariantOptions
	cmd := &cobra.Command{
		Use:   "variant",
		Short: "Resolve a variant into its build artifacts",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.ResolveVariant(o) }),
	}
	cmd.Flags().StringVar(&o.ID, "variant", "", "variant id")
	bindVariantFile(cmd.Flags(), &o)
	bindDryRun(cmd.Flags(), &o.DryRun)
	_ = cmd.MarkFlagRequired("variant")
	return cmd
}

func (a *app) configsCommand() *cobra.Command {
	var o VariantOptions
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Write the IDE project configuration for every variant",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.WriteProjectConfig(o) }),
	}
	bindVariantFile(cmd.Flags(), &o)
	cmd.Flags().StringVar(&o.Out, "out", "", "output file (default esp_idf_project_configuration.json)")
	bindDryRun(cmd.Flags(), &o.DryRun)
	return cmd
}

func (a *app) ensureVariantCommand() *cobra.Command {
	var o VariantOptions
	cmd := &cobra.Command{
		Use:   "ensure-variant",
		Short: "Copy a variant environment into its build directory",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.EnsureVariant(o) }),
	}
	cmd.Flags().StringVar(&o.ID, "variant", "", "variant id")
	bindVariantFile(cmd.Flags(), &o)
	_ = cmd.MarkFlagRequired("variant")
	return cmd
}

func (a *app) netvarsCommand() *cobra.Command {
	var o NetvarsOptions
	cmd := &cobra.Command{
		Use:   "netvars",
		Short: "Compile a module's netvars.csv into its C fragments",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.GenerateNetvars(o) }),
	}
	cmd.Flags().StringVar(&o.Module, "module", "", "module (component directory) name")
	bindDryRun(cmd.Flags(), &o.DryRun)
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func (a *app) integrateCommand() *cobra.Command {
	var o IntegrateOptions
	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Print or inject the app_main snippets of a component",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.Integrate(o) }),
	}
	fs := cmd.Flags()
	fs.StringVar(&o.Name, "name", "", "component name")
	fs.BoolVar(&o.Apply, "apply", false, "inject the snippets into the host file")
	fs.StringVar(&o.AppMain, "app-main", "", "host file (default main/app_main.c)")
	fs.BoolVar(&o.Library, "library", false, "component has no task loop")
	fs.StringVar(&o.EnableMacro, "enable-macro", "", "enable macro (default CONFIG_PORIS_ENABLE_<NAME>)")
	fs.StringVar(&o.Include, "include", "", "component header (default <name.h>)")
	fs.StringVar(&o.NetvarsInclude, "netvars-include", "", "netvars header (default <name_netvars.h>)")
	fs.StringVar(&o.UseThreadMacro, "use-thread-macro", "", "thread macro (default CONFIG_<NAME>_USE_THREAD)")
	fs.IntVar(&o.SpinPeriodMS, "spin-period-ms", integration.DefaultSpinPeriodMS, "fallback spin period in milliseconds")
	fs.StringVar(&o.PeriodMacro, "period-macro", "", "period macro (default <NAME>_CYCLE_PERIOD_MS)")
	fs.StringVar(&o.CounterName, "counter-name", "", "spin counter variable")
	fs.BoolVar(&o.NoSpin, "no-spin", false, "omit the spin snippets")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) newComponentCommand() *cobra.Command {
	var o ComponentOptions
	cmd := &cobra.Command{
		Use:   "new-component",
		Short: "Scaffold a component from a template",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.NewComponent(o) }),
	}
	fs := cmd.Flags()
	fs.StringVar(&o.Name, "name", "", "component name")
	fs.BoolVar(&o.Library, "library", false, "use the library template")
	fs.StringVar(&o.Template, "template", "", "template directory")
	fs.StringVar(&o.Dest, "dest", "", "parent directory (default components)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) vendorCommand() *cobra.Command {
	var o VendorOptions
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Copy the shared components into the project",
		Args:  cobra.NoArgs,
		RunE:  a.run(func() error { return a.runner.Vendor(o) }),
	}
	cmd.Flags().StringVar(&o.Source, "src", "", "source directory (default poris/components)")
	cmd.Flags().StringVar(&o.Dest, "dst", "", "destination directory (default poris_components)")
	return cmd
}

func (a *app) configCommand() *cobra.Command {
	parent := &cobra.Command{
		Use:   "config",
		Short: "Manage poris.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errs.Usage("%s requires a subcommand", cmd.CommandPath())
		},
	}
	var o InitOptions
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a poris.toml holding the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE:        a.run(func() error { return a.runner.InitConfig(o) }),
	}
	initCmd.Flags().StringVar(&o.Output, "output", "", fmt.Sprintf("output file (default %s)", config.FileName))
	initCmd.Flags().BoolVar(&o.Force, "force", false, "overwrite an existing file")
	parent.AddCommand(initCmd)
	return parent
}
