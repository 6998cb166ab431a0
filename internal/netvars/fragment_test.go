package netvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplice_FreshFile(t *testing.T) {
	got := Splice("", []string{"// banner", ""}, []string{"float temp;"})
	assert.Equal(t, "// banner\n\n"+Marker+"\nfloat temp;\n", got)
}

func TestSplice_KeepsHeadAndIndent(t *testing.T) {
	existing := "// custom header kept by hand\n" +
		"    " + Marker + "\n" +
		"    float stale;\n"
	got := Splice(existing, []string{"// ignored"}, []string{"float temp;", "#ifdef CONFIG_X", "char buf[16];", "#endif"})
	want := "// custom header kept by hand\n" +
		"    " + Marker + "\n" +
		"    float temp;\n" +
		"    #ifdef CONFIG_X\n" +
		"    char buf[16];\n" +
		"    #endif\n"
	assert.Equal(t, want, got)
}

func TestSplice_Idempotent(t *testing.T) {
	gen := []string{"int a;", "int b;"}
	once := Splice("", []string{"// b"}, gen)
	twice := Splice(once, []string{"// b"}, gen)
	assert.Equal(t, once, twice)
}

func TestSplice_MarkerAfterCode(t *testing.T) {
	existing := "int keep; " + Marker + "\nold\n"
	got := Splice(existing, nil, []string{"int x;"})
	assert.Equal(t, "int keep; "+Marker+"\nint x;\n", got)
}

func TestFragmentPaths(t *testing.T) {
	assert.Equal(t, "components/PrjCfg/include/PrjCfg_netvar_types_fragment.h_", TypesPath("components/PrjCfg", "PrjCfg"))
	assert.Equal(t, "components/PrjCfg/PrjCfg_netvars_fragment.c_", DescriptorsPath("components/PrjCfg", "PrjCfg"))
}

func TestSplice_KeepsTextAfterMarker(t *testing.T) {
	existing := "// head\n" + Marker + " keep this\nfloat stale;\n"
	got := Splice(existing, nil, []string{"float temp;"})
	assert.Equal(t, "// head\n"+Marker+" keep this\nfloat temp;\n", got)

	assert.Equal(t, got, Splice(got, nil, []string{"float temp;"}))
}

func TestSplice_MarkerOnLastLine(t *testing.T) {
	got := Splice("// head\n"+Marker, nil, []string{"int x;"})
	assert.Equal(t, "// head\n"+Marker+"\nint x;\n", got)
}
