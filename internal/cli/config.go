package cli

import (
	"path"

	"github.com/seitarof/poris-gen/internal/config"
)

// Options stores the global flags shared by every subcommand.
type Options struct {
	Root       string
	ConfigPath string
	LogLevel   string
	LogFile    string
}

// configFile returns the configuration path and whether it must exist.
func (o *Options) configFile() (string, bool) {
	if o.ConfigPath != "" {
		return path.Clean(o.ConfigPath), true
	}
	return config.FileName, false
}

// VariantOptions stores flags of the variant, configs and ensure-variant
// commands.
type VariantOptions struct {
	ID          string
	VariantsYML string
	Out         string
	DryRun      bool
}

// NetvarsOptions stores flags of the netvars command.
type NetvarsOptions struct {
	Module string
	DryRun bool
}

// IntegrateOptions stores flags of the integrate command.
type IntegrateOptions struct {
	Name           string
	AppMain        string
	Apply          bool
	EnableMacro    string
	Include        string
	NetvarsInclude string
	UseThreadMacro string
	SpinPeriodMS   int
	PeriodMacro    string
	CounterName    string
	NoSpin         bool
	Library        bool
}

// ComponentOptions stores flags of the new-component command.
type ComponentOptions struct {
	Name     string
	Library  bool
	Template string
	Dest     string
}

// VendorOptions stores flags of the vendor command.
type VendorOptions struct {
	Source string
	Dest   string
}

// InitOptions stores flags of the config init command.
type InitOptions struct {
	Output string
	Force  bool
}
