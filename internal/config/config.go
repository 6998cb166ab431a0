// Package config loads the optional poris.toml project configuration.
package config

import (
	"bytes"
	"fmt"

	"github.com/go-git/go-billy/v5"
	toml "github.com/pelletier/go-toml"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

// FileName is the configuration file looked up at the project root.
const FileName = "poris.toml"

// Paths locates the project's inputs and outputs, relative to the root.
type Paths struct {
	Components    string `toml:"components"`
	Templates     string `toml:"templates"`
	AppMain       string `toml:"app_main"`
	Variants      string `toml:"variants"`
	ProjectConfig string `toml:"project_config"`
	BaseDefaults  string `toml:"base_defaults"`
	VendorSource  string `toml:"vendor_source"`
	VendorDest    string `toml:"vendor_dest"`
}

// Netvars configures descriptor lookup.
type Netvars struct {
	Descriptor string   `toml:"descriptor"`
	SearchDirs []string `toml:"search_dirs"`
}

// Config is the whole project configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Netvars Netvars `toml:"netvars"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			Components:    "components",
			Templates:     "poris/templates",
			AppMain:       "main/app_main.c",
			Variants:      "variants/variants.yml",
			ProjectConfig: "esp_idf_project_configuration.json",
			BaseDefaults:  "sdkconfig.defaults",
			VendorSource:  "poris/components",
			VendorDest:    "poris_components",
		},
		Netvars: Netvars{
			Descriptor: "netvars.csv",
			SearchDirs: []string{"components", "poris/components"},
		},
	}
}

// Load reads name from fsys and fills unset keys from Default. A missing
// file yields the defaults unless required is set.
func Load(fsys billy.Filesystem, name string, required bool) (Config, error) {
	cfg := Default()
	data, err := fsutil.ReadFile(fsys, name)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) && !required {
			return cfg, nil
		}
		return cfg, err
	}

	var file Config
	dec := toml.NewDecoder(bytes.NewReader(data)).Strict(true)
	if err := dec.Decode(&file); err != nil {
		return cfg, &errs.Error{Class: errs.KindValidation, Op: "parse", Path: name, Err: err}
	}
	cfg.merge(file)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Paths.Components, o.Paths.Components)
	set(&c.Paths.Templates, o.Paths.Templates)
	set(&c.Paths.AppMain, o.Paths.AppMain)
	set(&c.Paths.Variants, o.Paths.Variants)
	set(&c.Paths.ProjectConfig, o.Paths.ProjectConfig)
	set(&c.Paths.BaseDefaults, o.Paths.BaseDefaults)
	set(&c.Paths.VendorSource, o.Paths.VendorSource)
	set(&c.Paths.VendorDest, o.Paths.VendorDest)
	set(&c.Netvars.Descriptor, o.Netvars.Descriptor)
	if len(o.Netvars.SearchDirs) > 0 {
		c.Netvars.SearchDirs = o.Netvars.SearchDirs
	}
}

// Encode renders c as TOML in field order.
func Encode(c Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Order(toml.OrderPreserve).Encode(c); err != nil {
		return nil, fmt.Errorf("encode %s: %w", FileName, err)
	}
	return buf.Bytes(), nil
}
