package scaffold

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/seitarof/poris-gen/internal/errs"
)

// project builds a memfs from a txtar archive.
func project(t *testing.T, archive string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		require.NoError(t, util.WriteFile(fs, f.Name, f.Data, 0o644))
	}
	return fs
}

func readString(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

const projectTemplates = `
-- poris/templates/$$1/$$1.c --
#include "$$1.h"
static const char *TAG = "$$1";
-- poris/templates/$$1/include/$$1.h --
#if CONFIG_$#1_USE_THREAD
#endif
-- poris/templates/$$1/CMakeLists.txt --
idf_component_register(SRCS "$$1.c")
-- poris/templates/$$1lib/$$1.c --
int $$1_setup(void);
`

func TestScaffold_ProjectTemplate(t *testing.T) {
	fs := project(t, projectTemplates)

	res, err := New(fs, Config{}).Scaffold(Request{Name: "Wifi-Mgr"})
	require.NoError(t, err)

	assert.Equal(t, "components/Wifi-Mgr", res.Dir)
	assert.Equal(t, "PORIS_ENABLE_WIFI_MGR", res.EnableFlag)
	assert.Equal(t, "poris/templates/$$1", res.Template)
	assert.Equal(t, []string{"CMakeLists.txt", "Wifi-Mgr.c", "include/Wifi-Mgr.h"}, res.Files)

	assert.Equal(t, "#include \"Wifi-Mgr.h\"\nstatic const char *TAG = \"Wifi-Mgr\";\n", readString(t, fs, "components/Wifi-Mgr/Wifi-Mgr.c"))
	assert.Equal(t, "#if CONFIG_WIFI_MGR_USE_THREAD\n#endif\n", readString(t, fs, "components/Wifi-Mgr/include/Wifi-Mgr.h"))

	cmake := readString(t, fs, "components/Wifi-Mgr/CMakeLists.txt")
	assert.True(t, strings.HasPrefix(cmake, "# Variant guard"), cmake)
	assert.Contains(t, cmake, "if(NOT DEFINED ENV{PORIS_ENABLE_WIFI_MGR})")
	assert.True(t, strings.HasSuffix(cmake, "idf_component_register(SRCS \"Wifi-Mgr.c\")\n"), cmake)
}

func TestScaffold_LibraryTemplate(t *testing.T) {
	fs := project(t, projectTemplates)

	res, err := New(fs, Config{}).Scaffold(Request{Name: "Crc", Library: true})
	require.NoError(t, err)
	assert.Equal(t, "poris/templates/$$1lib", res.Template)
	assert.Equal(t, "int Crc_setup(void);\n", readString(t, fs, "components/Crc/Crc.c"))
	assert.Equal(t, DefaultCMake("Crc"), readString(t, fs, "components/Crc/CMakeLists.txt"))
}

func TestScaffold_BuiltinTemplate(t *testing.T) {
	fs := memfs.New()

	res, err := New(fs, Config{}).Scaffold(Request{Name: "Led"})
	require.NoError(t, err)
	assert.Equal(t, "builtin:component", res.Template)
	assert.Contains(t, res.Files, "include/Led.h")
	assert.Contains(t, res.Files, "Led_netvars_fragment.c_")
	assert.Contains(t, res.Files, GuardFile)

	for _, f := range res.Files {
		content := readString(t, fs, "components/Led/"+f)
		assert.NotContains(t, content, NameToken, f)
		assert.NotContains(t, content, UpperToken, f)
	}
	assert.Contains(t, readString(t, fs, "components/Led/Kconfig"), "config LED_USE_THREAD")
	assert.Contains(t, readString(t, fs, "components/Led/CMakeLists.txt"), `SRCS "Led.c"`)
}

func TestScaffold_ExplicitTemplateAndDest(t *testing.T) {
	fs := project(t, `
-- tmpl/x/$$1.txt --
$$1/$#1
`)
	res, err := New(fs, Config{}).Scaffold(Request{Name: "a.b", Template: "tmpl/x", DestParent: "poris_components"})
	require.NoError(t, err)
	assert.Equal(t, "poris_components/a.b", res.Dir)
	assert.Equal(t, "a.b/A_B\n", readString(t, fs, "poris_components/a.b/a.b.txt"))
}

func TestScaffold_Errors(t *testing.T) {
	t.Run("destination exists", func(t *testing.T) {
		fs := project(t, projectTemplates+"-- components/Led/Led.c --\nkeep\n")
		_, err := New(fs, Config{}).Scaffold(Request{Name: "Led"})
		require.Error(t, err)
		assert.Equal(t, errs.KindAlreadyExists, errs.KindOf(err))
		assert.Equal(t, "keep\n", readString(t, fs, "components/Led/Led.c"))
	})

	t.Run("missing template", func(t *testing.T) {
		fs := memfs.New()
		_, err := New(fs, Config{}).Scaffold(Request{Name: "Led", Template: "nope"})
		require.Error(t, err)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
		_, statErr := fs.Stat("components/Led")
		assert.Error(t, statErr)
	})

	t.Run("template inside destination", func(t *testing.T) {
		fs := project(t, "-- components/tmpl/$$1.c --\nx\n")
		_, err := New(fs, Config{}).Scaffold(Request{Name: "Led", Template: "components/tmpl"})
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	for _, name := range []string{"", "  ", "a/b", `a\b`, ".."} {
		t.Run("invalid name "+name, func(t *testing.T) {
			_, err := New(memfs.New(), Config{}).Scaffold(Request{Name: name})
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}
