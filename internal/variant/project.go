package variant

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/seitarof/poris-gen/internal/naming"
)

// DefaultProjectConfig is the IDE build description written by ProjectConfig.
const DefaultProjectConfig = "esp_idf_project_configuration.json"

// BuildDescription is the IDE configuration entry of one variant.
type BuildDescription struct {
	Build           BuildSection `json:"build"`
	Env             EnvSection   `json:"env"`
	IDFTarget       string       `json:"idfTarget"`
	FlashBaudRate   string       `json:"flashBaudRate"`
	MonitorBaudRate string       `json:"monitorBaudRate"`
	OpenOCD         OpenOCD      `json:"openOCD"`
	Tasks           Tasks        `json:"tasks"`
}

type BuildSection struct {
	CompileArgs        []string `json:"compileArgs"`
	NinjaArgs          []string `json:"ninjaArgs"`
	BuildDirectoryPath string   `json:"buildDirectoryPath"`
	SdkconfigDefaults  []string `json:"sdkconfigDefaults"`
	SdkconfigFilePath  string   `json:"sdkconfigFilePath"`
}

type EnvSection struct {
	Variant   string `json:"VARIANT"`
	VarSuffix string `json:"VAR_SUFFIX"`
}

type OpenOCD struct {
	DebugLevel int      `json:"debugLevel"`
	Configs    []string `json:"configs"`
	Args       []string `json:"args"`
}

type Tasks struct {
	PreBuild  string `json:"preBuild"`
	PreFlash  string `json:"preFlash"`
	PostBuild string `json:"postBuild"`
	PostFlash string `json:"postFlash"`
}

// Describe builds the IDE entry of r; defaults live under outDir.
func Describe(r Record, outDir string) BuildDescription {
	buildDir := naming.BuildDir(r.ID)
	return BuildDescription{
		Build: BuildSection{
			CompileArgs:        []string{},
			NinjaArgs:          []string{},
			BuildDirectoryPath: buildDir,
			SdkconfigDefaults:  []string{DefaultsPath(outDir, r.ID)},
			SdkconfigFilePath:  buildDir + "/sdkconfig",
		},
		Env:       EnvSection{Variant: r.ID, VarSuffix: naming.Slug(r.ID)},
		IDFTarget: r.Target,
		OpenOCD:   OpenOCD{Configs: []string{}, Args: []string{}},
		Tasks:     Tasks{PreBuild: "bash poris/prebuild.sh " + r.ID},
	}
}

// ProjectConfig renders one JSON object keyed by variant id, in graph order,
// indented by two spaces and newline terminated.
func ProjectConfig(g *Graph) ([]byte, error) {
	if len(g.Variants) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, v := range g.Variants {
		key, err := marshal(v.ID, "")
		if err != nil {
			return nil, err
		}
		val, err := marshal(Describe(v, g.Out()), "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(g.Variants)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshal(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode project configuration: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
