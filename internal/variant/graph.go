// Package variant expands a build-variant graph (variants.yml) into the
// per-variant build artifacts consumed by the firmware build: merged
// configuration defaults, a target hint, an enable-flag environment file and
// a CMake component list. It also renders the IDE build description for every
// variant and seeds a variant's build directory with its environment.
package variant

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/naming"
)

const (
	DefaultDefaultsDir = "sdkcfg"
	DefaultOutDir      = "buildcfg"
	// ImplicitID names the variant synthesized for an empty graph.
	ImplicitID = "main"
)

// EnvVar is one extra_env entry.
type EnvVar struct {
	Key   string
	Value string
}

// EnvMap is an extra_env mapping that keeps document order.
type EnvMap []EnvVar

// UnmarshalYAML decodes a mapping of scalars, preserving key order.
func (m *EnvMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*m = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: extra_env must be a mapping", value.Line)
	}
	out := make(EnvMap, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: extra_env entries must be scalar", k.Line)
		}
		val := v.Value
		if v.Tag == "!!null" {
			val = ""
		}
		out = append(out, EnvVar{Key: k.Value, Value: val})
	}
	*m = out
	return nil
}

// MarshalYAML encodes the mapping in order; an empty map renders as {}.
func (m EnvMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}
	if len(m) == 0 {
		node.Style = yaml.FlowStyle
	}
	return node, nil
}

// Record is one variant.
type Record struct {
	ID         string   `yaml:"id"`
	Target     string   `yaml:"target"`
	Overlays   []string `yaml:"overlays"`
	Components []string `yaml:"components"`
	ExtraEnv   EnvMap   `yaml:"extra_env"`
}

// Graph is the variants.yml document.
type Graph struct {
	DefaultsDir string   `yaml:"defaults_dir"`
	OutDir      string   `yaml:"out_dir"`
	Variants    []Record `yaml:"variants"`
}

// Defaults is the overlay directory, falling back to DefaultDefaultsDir.
func (g *Graph) Defaults() string {
	if g.DefaultsDir == "" {
		return DefaultDefaultsDir
	}
	return g.DefaultsDir
}

// Out is the artifact directory, falling back to DefaultOutDir.
func (g *Graph) Out() string {
	if g.OutDir == "" {
		return DefaultOutDir
	}
	return g.OutDir
}

// IDs lists variant ids in graph order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.Variants))
	for _, v := range g.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// Find returns the variant with id.
func (g *Graph) Find(id string) (Record, bool) {
	for _, v := range g.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Record{}, false
}

// Synthesize returns the implicit graph enabling every component.
func Synthesize(components []string) *Graph {
	return &Graph{
		DefaultsDir: DefaultDefaultsDir,
		OutDir:      DefaultOutDir,
		Variants: []Record{{
			ID:         ImplicitID,
			Overlays:   []string{},
			Components: append([]string{}, components...),
		}},
	}
}

// Parse decodes a variant graph document. An empty document yields an empty
// graph.
func Parse(data []byte, source string) (*Graph, error) {
	g := &Graph{}
	if len(bytes.TrimSpace(data)) == 0 {
		return g, nil
	}
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, &errs.Error{Class: errs.KindValidation, Op: "parse", Path: source, Err: err}
	}
	return g, nil
}

// Encode renders g as YAML with two-space indentation.
func Encode(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return nil, fmt.Errorf("encode variant graph: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode variant graph: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the whole graph before any artifact is derived from it.
func Validate(g *Graph, source string) error {
	seen := make(map[string]int, len(g.Variants))
	slugs := make(map[string]int, len(g.Variants))
	for i, v := range g.Variants {
		if strings.TrimSpace(v.ID) == "" {
			return errs.Validation("%s: variant #%d has no id", source, i+1)
		}
		if prev, dup := seen[v.ID]; dup {
			return errs.Validation("%s: duplicate variant id %q (variants #%d and #%d)", source, v.ID, prev+1, i+1)
		}
		seen[v.ID] = i
		if v.ID == "." || v.ID == ".." || strings.ContainsAny(v.ID, `/\`) {
			return errs.Validation("%s: variant id %q must be a single file name", source, v.ID)
		}
		slug := naming.Slug(v.ID)
		if slug == "" {
			return errs.Validation("%s: variant id %q has no letters or digits", source, v.ID)
		}
		if prev, dup := slugs[slug]; dup {
			return errs.Validation("%s: variant ids %q and %q share the build directory %s",
				source, g.Variants[prev].ID, v.ID, naming.BuildDir(v.ID))
		}
		slugs[slug] = i
		for _, c := range v.Components {
			if naming.EnableFlag(c) == "" {
				return errs.Validation("%s: variant %q: invalid component name %q", source, v.ID, c)
			}
		}
		for _, e := range v.ExtraEnv {
			if e.Key == "" || strings.ContainsRune(e.Key, '=') || strings.IndexFunc(e.Key, unicode.IsSpace) >= 0 {
				return errs.Validation("%s: variant %q: invalid extra_env key %q", source, v.ID, e.Key)
			}
		}
	}
	return nil
}
