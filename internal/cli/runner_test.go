package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/seitarof/poris-gen/internal/config"
	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/integration"
)

const appMain = `#include <stdio.h>
// [PORIS_INTEGRATION_INCLUDE]
// [PORIS_INTEGRATION_DEFINES]
// [PORIS_INTEGRATION_COUNTERS]
// [PORIS_INTEGRATION_NETVARS_INCLUDE]

void netvars_parse(cJSON *data)
{
    // [PORIS_INTEGRATION_NETVARS_PARSE]
}

void netvars_append(cJSON *root)
{
    // [PORIS_INTEGRATION_NETVARS_APPEND]
}

void app_main(void)
{
    // [PORIS_INTEGRATION_INIT]
    // [PORIS_INTEGRATION_START]
    for (;;)
    {
        // [PORIS_INTEGRATION_RUN]
    }
}
`

var _ Runner = (*runnerImpl)(nil)

func newTestRunner(t *testing.T, fs billy.Filesystem) (Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewRunner(fs, config.Default(), nil, &out), &out
}

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	if err := util.WriteFile(fs, name, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", name, err)
	}
	return string(data)
}

func TestRunner_ResolveVariant_PrintsDefaultsPath(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "variants/variants.yml", "variants:\n  - id: Demo\n    components: [LED]\n")
	r, out := newTestRunner(t, fs)

	if err := r.ResolveVariant(VariantOptions{ID: "Demo"}); err != nil {
		t.Fatalf("ResolveVariant() error = %v", err)
	}
	if out.String() != "buildcfg/sdkconfig.Demo.defaults\n" {
		t.Fatalf("output = %q", out.String())
	}
	if got := readFile(t, fs, "buildcfg/Demo.env"); got != "PORIS_ENABLE_LED=1\n" {
		t.Fatalf("env = %q", got)
	}
}

func TestRunner_ResolveVariant_DryRunWritesNothing(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "variants.yml", "variants:\n  - id: Demo\n    components: [LED]\n")
	r, out := newTestRunner(t, fs)

	if err := r.ResolveVariant(VariantOptions{ID: "Demo", DryRun: true}); err != nil {
		t.Fatalf("ResolveVariant() error = %v", err)
	}
	if !strings.Contains(out.String(), "=== buildcfg/Demo.env ===\nPORIS_ENABLE_LED=1\n") {
		t.Fatalf("dry run output = %q", out.String())
	}
	if _, err := fs.Stat("buildcfg"); err == nil {
		t.Fatal("dry run created buildcfg")
	}
	if _, err := fs.Stat("sdkconfig.defaults"); err == nil {
		t.Fatal("dry run created the base defaults")
	}
}

func TestRunner_ResolveVariant_Errors(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "variants.yml", "variants:\n  - id: Demo\n")
	r, _ := newTestRunner(t, fs)

	if err := r.ResolveVariant(VariantOptions{ID: "Nope"}); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("unknown variant error = %v, want not found", err)
	}
	if err := r.ResolveVariant(VariantOptions{ID: " "}); !errs.Is(err, errs.KindUsage) {
		t.Fatalf("blank variant error = %v, want usage", err)
	}
}

func TestRunner_ResolveVariant_SynthesizesMain(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "components/LED/CMakeLists.txt", "")
	writeFile(t, fs, "components/Wifi/CMakeLists.txt", "")
	r, _ := newTestRunner(t, fs)

	if err := r.ResolveVariant(VariantOptions{ID: "main"}); err != nil {
		t.Fatalf("ResolveVariant() error = %v", err)
	}
	doc := readFile(t, fs, "variants/variants.yml")
	if !strings.Contains(doc, "id: main") {
		t.Fatalf("synthesized document = %q", doc)
	}
	if got := readFile(t, fs, "buildcfg/main.env"); got != "PORIS_ENABLE_LED=1\nPORIS_ENABLE_WIFI=1\n" {
		t.Fatalf("env = %q", got)
	}
}

func TestRunner_WriteProjectConfig(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "variants.yml", "variants:\n  - id: Demo\n    target: esp32s3\n  - id: Lite\n")
	r, out := newTestRunner(t, fs)

	if err := r.WriteProjectConfig(VariantOptions{}); err != nil {
		t.Fatalf("WriteProjectConfig() error = %v", err)
	}
	if out.String() != "esp_idf_project_configuration.json\n" {
		t.Fatalf("output = %q", out.String())
	}
	got := readFile(t, fs, "esp_idf_project_configuration.json")
	if strings.Index(got, `"Demo"`) > strings.Index(got, `"Lite"`) {
		t.Fatalf("variants out of order:\n%s", got)
	}

	if err := r.WriteProjectConfig(VariantOptions{Out: "ide/project.json"}); err != nil {
		t.Fatalf("WriteProjectConfig() error = %v", err)
	}
	if readFile(t, fs, "ide/project.json") != got {
		t.Fatal("--out content differs from the default output")
	}
}

func TestRunner_EnsureVariant(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "variants.yml", "out_dir: gen\nvariants:\n  - id: S3 Wifi\n")
	writeFile(t, fs, "gen/S3 Wifi.env", "PORIS_ENABLE_WIFI=1\n")
	r, out := newTestRunner(t, fs)

	if err := r.EnsureVariant(VariantOptions{ID: "S3 Wifi"}); err != nil {
		t.Fatalf("EnsureVariant() error = %v", err)
	}
	if out.String() != "build_s3wifi/config.env\n" {
		t.Fatalf("output = %q", out.String())
	}
	if got := readFile(t, fs, "build_s3wifi/config.env"); got != "PORIS_ENABLE_WIFI=1\n" {
		t.Fatalf("config.env = %q", got)
	}
}

func TestRunner_EnsureVariant_NotResolvedYet(t *testing.T) {
	fs := memfs.New()
	r, _ := newTestRunner(t, fs)

	if err := r.EnsureVariant(VariantOptions{ID: "Demo"}); err != nil {
		t.Fatalf("EnsureVariant() error = %v", err)
	}
	if got := readFile(t, fs, "build_demo/config.env"); got != "" {
		t.Fatalf("config.env = %q, want empty", got)
	}
}

func TestRunner_GenerateNetvars(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "components/PrjCfg/netvars.csv", "name,c_type,storage_type\ntemp,float,FLOAT\n")
	r, out := newTestRunner(t, fs)

	if err := r.GenerateNetvars(NetvarsOptions{Module: "PrjCfg"}); err != nil {
		t.Fatalf("GenerateNetvars() error = %v", err)
	}
	want := "components/PrjCfg/include/PrjCfg_netvar_types_fragment.h_\ncomponents/PrjCfg/PrjCfg_netvars_fragment.c_\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if got := readFile(t, fs, "components/PrjCfg/include/PrjCfg_netvar_types_fragment.h_"); !strings.Contains(got, "float temp;\n") {
		t.Fatalf("types fragment = %q", got)
	}
}

func TestRunner_GenerateNetvars_DryRun(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "components/PrjCfg/netvars.csv", "name,c_type,storage_type\ntemp,float,FLOAT\n")
	r, out := newTestRunner(t, fs)

	if err := r.GenerateNetvars(NetvarsOptions{Module: "PrjCfg", DryRun: true}); err != nil {
		t.Fatalf("GenerateNetvars() error = %v", err)
	}
	if !strings.Contains(out.String(), "=== components/PrjCfg/PrjCfg_netvars_fragment.c_ ===\n") {
		t.Fatalf("output = %q", out.String())
	}
	if _, err := fs.Stat("components/PrjCfg/PrjCfg_netvars_fragment.c_"); err == nil {
		t.Fatal("dry run wrote the descriptor fragment")
	}
}

func TestRunner_GenerateNetvars_UnknownModule(t *testing.T) {
	r, _ := newTestRunner(t, memfs.New())
	err := r.GenerateNetvars(NetvarsOptions{Module: "Nope"})
	if !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("GenerateNetvars() error = %v, want not found", err)
	}
}

func TestRunner_Integrate_PrintsSnippets(t *testing.T) {
	r, out := newTestRunner(t, memfs.New())
	if err := r.Integrate(IntegrateOptions{Name: "LED", SpinPeriodMS: integration.DefaultSpinPeriodMS}); err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"=== include ===\n#ifdef CONFIG_PORIS_ENABLE_LED\n#include <LED.h>\n#endif\n",
		"#define LED_CYCLE_PERIOD_MS 100\n",
		"=== netvars_append ===\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output does not contain %q\n%s", want, got)
		}
	}
}

func TestRunner_Integrate_ApplyIsIdempotent(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "main/app_main.c", appMain)
	r, _ := newTestRunner(t, fs)
	opts := IntegrateOptions{Name: "LED", Apply: true, SpinPeriodMS: integration.DefaultSpinPeriodMS}

	if err := r.Integrate(opts); err != nil {
		t.Fatalf("Integrate() error = %v", err)
	}
	first := readFile(t, fs, "main/app_main.c")
	if !strings.Contains(first, "#include <LED.h>\n#endif\n// [PORIS_INTEGRATION_INCLUDE]") {
		t.Fatalf("include not injected:\n%s", first)
	}
	if !strings.Contains(first, "LED_setup()") {
		t.Fatalf("init not injected:\n%s", first)
	}

	if err := r.Integrate(opts); err != nil {
		t.Fatalf("second Integrate() error = %v", err)
	}
	if second := readFile(t, fs, "main/app_main.c"); second != first {
		t.Fatalf("second apply changed the file:\n%s", second)
	}
}

func TestRunner_Integrate_MissingMarker(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "main/app_main.c", "void app_main(void) {}\n")
	r, _ := newTestRunner(t, fs)

	err := r.Integrate(IntegrateOptions{Name: "LED", Apply: true, Library: true})
	if !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("Integrate() error = %v, want not found", err)
	}
	if got := readFile(t, fs, "main/app_main.c"); got != "void app_main(void) {}\n" {
		t.Fatalf("host file modified: %q", got)
	}
}

func TestRunner_NewComponent(t *testing.T) {
	fs := memfs.New()
	r, out := newTestRunner(t, fs)

	if err := r.NewComponent(ComponentOptions{Name: "Wifi-Mgr"}); err != nil {
		t.Fatalf("NewComponent() error = %v", err)
	}
	if out.String() != "components/Wifi-Mgr\nPORIS_ENABLE_WIFI_MGR=1\n" {
		t.Fatalf("output = %q", out.String())
	}
	if got := readFile(t, fs, "components/Wifi-Mgr/CMakeLists.txt"); !strings.Contains(got, "PORIS_ENABLE_WIFI_MGR") {
		t.Fatalf("CMakeLists.txt has no guard:\n%s", got)
	}

	err := r.NewComponent(ComponentOptions{Name: "Wifi-Mgr"})
	if !errs.Is(err, errs.KindAlreadyExists) {
		t.Fatalf("second NewComponent() error = %v, want already exists", err)
	}
}

func TestRunner_Vendor(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "poris/components/PrjCfg/PrjCfg.c", "int x;\n")
	r, out := newTestRunner(t, fs)

	if err := r.Vendor(VendorOptions{}); err != nil {
		t.Fatalf("Vendor() error = %v", err)
	}
	if out.String() != "poris/components -> poris_components\n" {
		t.Fatalf("output = %q", out.String())
	}
	if got := readFile(t, fs, "poris_components/PrjCfg/PrjCfg.c"); got != "int x;\n" {
		t.Fatalf("vendored file = %q", got)
	}

	if err := r.Vendor(VendorOptions{Source: "poris", Dest: "poris/copy"}); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("overlapping Vendor() error = %v, want validation", err)
	}
}

func TestPrintWriter_TerminatesContent(t *testing.T) {
	var out bytes.Buffer
	w := &printWriter{out: &out}
	if err := w.Write("a.txt", []byte("no newline")); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("b.txt", nil); err != nil {
		t.Fatal(err)
	}
	want := "=== a.txt ===\nno newline\n=== b.txt ===\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}
