// Package integration builds the snippets that wire a component into the
// shared application entry point (main/app_main.c) through the
// PORIS_INTEGRATION markers.
package integration

import (
	"fmt"
	"strings"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/inject"
	"github.com/seitarof/poris-gen/internal/naming"
)

// Key names one integration point in the host file.
type Key string

const (
	KeyInclude        Key = "include"
	KeyInit           Key = "init"
	KeyStart          Key = "start"
	KeyDefines        Key = "defines"
	KeyCounters       Key = "counters"
	KeyRun            Key = "run"
	KeyNetvarsInclude Key = "netvars_include"
	KeyNetvarsParse   Key = "netvars_parse"
	KeyNetvarsAppend  Key = "netvars_append"
)

// Keys lists every integration point in the order snippets are applied.
var Keys = []Key{
	KeyInclude,
	KeyInit,
	KeyStart,
	KeyDefines,
	KeyCounters,
	KeyRun,
	KeyNetvarsInclude,
	KeyNetvarsParse,
	KeyNetvarsAppend,
}

// Marker returns the anchor token for k, e.g. "// [PORIS_INTEGRATION_INIT]".
func (k Key) Marker() string {
	return "// [PORIS_INTEGRATION_" + strings.ToUpper(string(k)) + "]"
}

// DefaultSpinPeriodMS is the spin period used when none is given.
const DefaultSpinPeriodMS = 100

// Options describes the component being integrated. Empty fields are
// derived from Name.
type Options struct {
	Name           string
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

// Snippet is the generated text for one integration point.
type Snippet struct {
	Key  Key
	Text string
}

func (o Options) withDefaults() Options {
	up := naming.UpperSanitized(o.Name)
	if o.EnableMacro == "" {
		o.EnableMacro = "CONFIG_" + naming.EnablePrefix + up
	}
	if o.Include == "" {
		o.Include = "<" + o.Name + ".h>"
	}
	if o.NetvarsInclude == "" {
		o.NetvarsInclude = "<" + o.Name + "_netvars.h>"
	}
	if o.UseThreadMacro == "" {
		o.UseThreadMacro = "CONFIG_" + up + "_USE_THREAD"
	}
	if o.PeriodMacro == "" {
		o.PeriodMacro = up + "_CYCLE_PERIOD_MS"
	}
	if o.CounterName == "" {
		o.CounterName = strings.ToLower(o.Name) + "_cycle_counter"
	}
	return o
}

func (o Options) validate() error {
	name := strings.TrimSpace(o.Name)
	if name == "" {
		return errs.Validation("component name is required")
	}
	if naming.UpperToken(name) == "" {
		return errs.Validation("component name %q has no alphanumeric characters", o.Name)
	}
	if strings.ContainsAny(name, " /\\") {
		return errs.Validation("component name %q must be a C identifier prefix", o.Name)
	}
	if o.SpinPeriodMS < 0 {
		return errs.Validation("spin period must not be negative, got %d", o.SpinPeriodMS)
	}
	return nil
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

// Build renders every integration point, in Keys order. Points that do not
// apply to the component carry empty text.
func Build(opts Options) ([]Snippet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	o := opts.withDefaults()
	name := o.Name
	en := o.EnableMacro
	ok := name + "_ret_ok"

	text := map[Key]string{
		KeyInclude: lines(
			"#ifdef "+en,
			"#include "+o.Include,
			"#endif",
		),
		KeyInit: lines(
			"#ifdef "+en,
			fmt.Sprintf("    error_occurred = (%s_setup() != %s);", name, ok),
			"    error_accumulator |= error_occurred;",
			"#endif",
		),
		KeyStart: lines(
			"#ifdef "+en,
			fmt.Sprintf("    error_occurred = (%s_enable() != %s);", name, ok),
			"#ifdef "+o.UseThreadMacro,
			"    if (!error_occurred)",
			"    {",
			fmt.Sprintf("        error_occurred |= (%s_start() != %s);", name, ok),
			"    }",
			"#endif",
			"    error_accumulator |= error_occurred;",
			"#endif",
		),
		KeyNetvarsInclude: lines(
			"#ifdef "+en,
			"#include "+o.NetvarsInclude,
			"#endif",
		),
		KeyNetvarsParse: lines(
			"#ifdef "+en,
			fmt.Sprintf("    %s_config_parse_json(data);", name),
			"#endif",
		),
		KeyNetvarsAppend: lines(
			"#ifdef "+en,
			fmt.Sprintf("    %s_netvars_append_json(root);", name),
			"#endif",
		),
	}

	if !o.NoSpin && o.SpinPeriodMS > 0 {
		limit := strings.Replace(o.PeriodMacro, "PERIOD", "LIMIT", 1)
		text[KeyDefines] = lines(
			"#ifndef "+o.UseThreadMacro,
			fmt.Sprintf("#define %s %d", o.PeriodMacro, o.SpinPeriodMS),
			fmt.Sprintf("#define %s ((%s / MAIN_CYCLE_PERIOD_MS) - 1)", limit, o.PeriodMacro),
			"#endif",
		)
		text[KeyCounters] = lines(
			"#ifndef "+o.UseThreadMacro,
			fmt.Sprintf("static uint8_t %s = 0;", o.CounterName),
			"#endif",
		)
		text[KeyRun] = lines(
			"#ifdef "+en,
			"#ifndef "+o.UseThreadMacro,
			fmt.Sprintf("    if (%s <= 0)", o.CounterName),
			"    {",
			fmt.Sprintf("        error_accumulator |= (%s_spin() != %s);", name, ok),
			fmt.Sprintf("        %s = %s;", o.CounterName, limit),
			"    }",
			"    else",
			"    {",
			fmt.Sprintf("        %s--;", o.CounterName),
			"    }",
			"#endif",
			"#endif",
		)
	}

	if o.Library {
		for _, k := range Keys {
			if k != KeyInclude && k != KeyInit {
				delete(text, k)
			}
		}
	}

	out := make([]Snippet, 0, len(Keys))
	for _, k := range Keys {
		out = append(out, Snippet{Key: k, Text: text[k]})
	}
	return out, nil
}

// Requests converts snippets into injector requests, dropping the empty
// ones so a host file only needs the markers the component actually uses.
func Requests(snippets []Snippet) []inject.Request {
	reqs := make([]inject.Request, 0, len(snippets))
	for _, s := range snippets {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		reqs = append(reqs, inject.Request{Marker: s.Key.Marker(), Snippet: s.Text})
	}
	return reqs
}

// Render formats the non-empty snippets for printing.
func Render(snippets []Snippet) string {
	var b strings.Builder
	for _, s := range snippets {
		if s.Text == "" {
			continue
		}
		fmt.Fprintf(&b, "=== %s ===\n%s\n", s.Key, s.Text)
	}
	return b.String()
}
