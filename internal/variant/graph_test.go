package variant

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/poris-gen/internal/errs"
)

func TestParse(t *testing.T) {
	doc := `
defaults_dir: cfg
variants:
  - id: Demo
    target: esp32s3
    overlays: [wifi.defaults, lcd.defaults]
    components: [LED, TouchScreen]
    extra_env:
      ZETA: "1"
      ALPHA: two
      EMPTY:
`
	g, err := Parse([]byte(doc), "variants.yml")
	require.NoError(t, err)

	assert.Equal(t, "cfg", g.Defaults())
	assert.Equal(t, DefaultOutDir, g.Out())
	require.Len(t, g.Variants, 1)

	want := Record{
		ID:         "Demo",
		Target:     "esp32s3",
		Overlays:   []string{"wifi.defaults", "lcd.defaults"},
		Components: []string{"LED", "TouchScreen"},
		ExtraEnv:   EnvMap{{"ZETA", "1"}, {"ALPHA", "two"}, {"EMPTY", ""}},
	}
	if diff := cmp.Diff(want, g.Variants[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	g, err := Parse([]byte("  \n"), "variants.yml")
	require.NoError(t, err)
	assert.Empty(t, g.Variants)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed yaml", doc: "variants: [\n"},
		{name: "extra_env not a mapping", doc: "variants:\n  - id: A\n    extra_env: [a, b]\n"},
		{name: "nested extra_env value", doc: "variants:\n  - id: A\n    extra_env:\n      K: {x: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "variants/variants.yml")
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
			assert.Contains(t, err.Error(), "variants/variants.yml")
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	g := Synthesize([]string{"A", "B"})
	data, err := Encode(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extra_env: {}")
	assert.Contains(t, string(data), "overlays: []")

	back, err := Parse(data, "x")
	require.NoError(t, err)
	if diff := cmp.Diff(g, back, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_KeepsExtraEnvOrder(t *testing.T) {
	g := &Graph{Variants: []Record{{ID: "A", ExtraEnv: EnvMap{{"Z", "1"}, {"A", "2"}}}}}
	data, err := Encode(g)
	require.NoError(t, err)
	back, err := Parse(data, "x")
	require.NoError(t, err)
	assert.Equal(t, EnvMap{{"Z", "1"}, {"A", "2"}}, back.Variants[0].ExtraEnv)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		graph   Graph
		wantMsg string
	}{
		{name: "empty id", graph: Graph{Variants: []Record{{ID: "A"}, {ID: " "}}}, wantMsg: "variant #2 has no id"},
		{name: "duplicate id", graph: Graph{Variants: []Record{{ID: "A"}, {ID: "A"}}}, wantMsg: `duplicate variant id "A"`},
		{name: "bad component", graph: Graph{Variants: []Record{{ID: "A", Components: []string{"--"}}}}, wantMsg: `invalid component name "--"`},
		{name: "bad env key", graph: Graph{Variants: []Record{{ID: "A", ExtraEnv: EnvMap{{"A B", "x"}}}}}, wantMsg: "invalid extra_env key"},
		{name: "slash in id", graph: Graph{Variants: []Record{{ID: "a/b"}}}, wantMsg: `variant id "a/b" must be a single file name`},
		{name: "backslash in id", graph: Graph{Variants: []Record{{ID: `a\b`}}}, wantMsg: "must be a single file name"},
		{name: "dot id", graph: Graph{Variants: []Record{{ID: ".."}}}, wantMsg: "must be a single file name"},
		{name: "empty slug", graph: Graph{Variants: []Record{{ID: "---"}}}, wantMsg: `variant id "---" has no letters or digits`},
		{name: "slug collision", graph: Graph{Variants: []Record{{ID: "Demo"}, {ID: "demo"}}}, wantMsg: `variant ids "Demo" and "demo" share the build directory ./build_demo`},
		{name: "env key with equals", graph: Graph{Variants: []Record{{ID: "A", ExtraEnv: EnvMap{{"A=B", "x"}}}}}, wantMsg: "invalid extra_env key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.graph, "variants.yml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}

	ok := Graph{Variants: []Record{{ID: "A", Components: []string{"LED"}, ExtraEnv: EnvMap{{"K", "v v"}}}}}
	assert.NoError(t, Validate(&ok, "variants.yml"))
}
