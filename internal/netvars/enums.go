package netvars

import (
	"strings"

	"github.com/seitarof/poris-gen/internal/errs"
)

// StorageKind is the runtime storage type of a field.
type StorageKind int

const (
	StorageBool StorageKind = iota + 1
	StorageU8
	StorageI8
	StorageU16
	StorageI16
	StorageI32
	StorageU32
	StorageFloat
	StorageFloatInt
	StorageString
)

var storageTokens = map[string]StorageKind{
	"BOOL":     StorageBool,
	"U8":       StorageU8,
	"I8":       StorageI8,
	"U16":      StorageU16,
	"I16":      StorageI16,
	"I32":      StorageI32,
	"U32":      StorageU32,
	"FLOAT":    StorageFloat,
	"FLOATINT": StorageFloatInt,
	"STRING":   StorageString,
}

var storageNames = map[StorageKind]string{
	StorageBool:     "BOOL",
	StorageU8:       "U8",
	StorageI8:       "I8",
	StorageU16:      "U16",
	StorageI16:      "I16",
	StorageI32:      "I32",
	StorageU32:      "U32",
	StorageFloat:    "FLOAT",
	StorageFloatInt: "FLOATINT",
	StorageString:   "STRING",
}

// ParseStorageKind resolves a storage_type cell. There is no default: an
// empty cell is rejected like any unknown token.
func ParseStorageKind(s string) (StorageKind, error) {
	tok := normalize(s)
	if k, ok := storageTokens[tok]; ok {
		return k, nil
	}
	return 0, errs.Validation("unknown storage_type %q", s)
}

func (k StorageKind) String() string { return storageNames[k] }

// Enumerator is the C enumerator for k.
func (k StorageKind) Enumerator() string { return "NETVARS_TYPE_" + storageNames[k] }

// PersistenceMode controls NVS load/save of a field.
type PersistenceMode int

const (
	PersistNone PersistenceMode = iota
	PersistLoad
	PersistSave
	PersistLoadSave
)

var persistTokens = map[string]PersistenceMode{
	"":         PersistNone,
	"NONE":     PersistNone,
	"LOAD":     PersistLoad,
	"SAVE":     PersistSave,
	"LOADSAVE": PersistLoadSave,
}

var persistNames = map[PersistenceMode]string{
	PersistNone:     "NONE",
	PersistLoad:     "LOAD",
	PersistSave:     "SAVE",
	PersistLoadSave: "LOADSAVE",
}

// ParsePersistenceMode resolves an nvs_mode cell; empty means NONE.
func ParsePersistenceMode(s string) (PersistenceMode, error) {
	if m, ok := persistTokens[normalize(s)]; ok {
		return m, nil
	}
	return 0, errs.Validation("unknown nvs_mode %q", s)
}

func (m PersistenceMode) String() string { return persistNames[m] }

func (m PersistenceMode) Enumerator() string { return "PRJCFG_NVS_" + persistNames[m] }

// WireDirection controls whether a field is appended to and/or parsed from
// the JSON wire format.
type WireDirection int

const (
	WireInOut WireDirection = iota
	WireNone
	WireOut
	WireIn
)

var directionTokens = map[string]WireDirection{
	"":       WireInOut,
	"INOUT":  WireInOut,
	"NONE":   WireNone,
	"OUT":    WireOut,
	"IN":     WireIn,
	"APPEND": WireOut,
	"PARSE":  WireIn,
}

var directionNames = map[WireDirection]string{
	WireInOut: "INOUT",
	WireNone:  "NONE",
	WireOut:   "OUT",
	WireIn:    "IN",
}

// ParseWireDirection resolves a json_mode cell; empty means INOUT and
// APPEND/PARSE are accepted as aliases of OUT/IN.
func ParseWireDirection(s string) (WireDirection, error) {
	if d, ok := directionTokens[normalize(s)]; ok {
		return d, nil
	}
	return 0, errs.Validation("unknown json_mode %q", s)
}

func (d WireDirection) String() string { return directionNames[d] }

func (d WireDirection) Enumerator() string { return "NETVARS_JSON_MODE_" + directionNames[d] }

// WireRepr is the JSON representation of a field value.
type WireRepr int

const (
	ReprAuto WireRepr = iota
	ReprArray
	ReprHex
	ReprInvHex
	ReprDec
	ReprBase64
)

var reprTokens = map[string]WireRepr{
	"":       ReprAuto,
	"AUTO":   ReprAuto,
	"ARRAY":  ReprArray,
	"HEX":    ReprHex,
	"INVHEX": ReprInvHex,
	"DEC":    ReprDec,
	"BASE64": ReprBase64,
}

var reprNames = map[WireRepr]string{
	ReprAuto:   "AUTO",
	ReprArray:  "ARRAY",
	ReprHex:    "HEX",
	ReprInvHex: "INVHEX",
	ReprDec:    "DEC",
	ReprBase64: "BASE64",
}

// ParseWireRepr resolves a json_repr cell; empty means AUTO.
func ParseWireRepr(s string) (WireRepr, error) {
	if r, ok := reprTokens[normalize(s)]; ok {
		return r, nil
	}
	return 0, errs.Validation("unknown json_repr %q", s)
}

func (r WireRepr) String() string { return reprNames[r] }

func (r WireRepr) Enumerator() string { return "NETVARS_JSON_REPR_" + reprNames[r] }

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
