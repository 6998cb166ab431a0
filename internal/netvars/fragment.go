package netvars

import (
	"path"
	"strings"
)

// Marker separates the hand-editable head of a fragment file from the
// generated region below it.
const Marker = "// [PORIS_INTEGRATION_NETVARS]"

// TypesPath is the struct-member fragment of module inside compDir.
func TypesPath(compDir, module string) string {
	return path.Join(compDir, "include", module+"_netvar_types_fragment.h_")
}

// DescriptorsPath is the descriptor-table fragment of module inside compDir.
func DescriptorsPath(compDir, module string) string {
	return path.Join(compDir, module+"_netvars_fragment.c_")
}

func typesBanner(module, descriptor string) []string {
	return []string{
		"// Auto-generated fragment for " + module + " netvars",
		"// Include this inside the definition of struct " + module + "_dre_t",
		"// DO NOT EDIT MANUALLY; edit " + descriptor + " and regenerate.",
		"",
	}
}

func descriptorsBanner(module, descriptor string) []string {
	return []string{
		"// Auto-generated fragment for " + module + " netvars",
		"// Included from " + module + "_netvars.c",
		"// DO NOT EDIT MANUALLY; edit " + descriptor + " and regenerate.",
		"",
	}
}

// Splice returns the fragment file content for generated. When existing
// holds the marker, everything up to the end of the marker line is kept
// and the rest is regenerated with the marker's indentation; otherwise a
// fresh file is built from banner.
func Splice(existing string, banner, generated []string) string {
	head, indent, ok := headThroughMarker(existing)
	if !ok {
		head = strings.Join(banner, "\n") + "\n" + Marker + "\n"
		indent = ""
	}
	var b strings.Builder
	b.WriteString(head)
	for _, ln := range generated {
		b.WriteString(indent)
		b.WriteString(ln)
		b.WriteString("\n")
	}
	return b.String()
}

func headThroughMarker(doc string) (head, indent string, ok bool) {
	idx := strings.Index(doc, Marker)
	if idx < 0 {
		return "", "", false
	}
	lineStart := strings.LastIndexByte(doc[:idx], '\n') + 1
	indent = doc[lineStart:idx]
	if strings.TrimSpace(indent) != "" {
		indent = ""
	}
	end := strings.IndexByte(doc[idx:], '\n')
	if end < 0 {
		return doc + "\n", indent, true
	}
	return doc[:idx+end+1], indent, true
}
