package netvars

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seitarof/poris-gen/internal/errs"
)

// Columns of a descriptor table, in their canonical order.
var Columns = []string{
	"name", "c_type", "storage_type", "nvs_key", "json_key", "group", "module",
	"nvs_mode", "json", "enabler", "json_mode", "json_repr", "scale",
}

var requiredColumns = []string{"name", "c_type", "storage_type"}

// Row is one raw, trimmed descriptor row as read from the table.
type Row struct {
	Line        int
	Name        string
	CType       string
	StorageType string
	NVSKey      string
	JSONKey     string
	Group       string
	Module      string
	NVSMode     string
	JSON        string
	Enabler     string
	JSONMode    string
	JSONRepr    string
	Scale       string
}

// Field is a validated descriptor row with every enumerator resolved.
type Field struct {
	Name      string
	Type      CType
	Storage   StorageKind
	NVSKey    string
	JSONKey   string
	Group     string
	Module    string
	Persist   PersistenceMode
	OnWire    bool
	Direction WireDirection
	Repr      WireRepr
	Guard     string
	Scale     int
}

// Table is the ordered, validated field list of one module.
type Table []Field

// RowError ties a validation failure to a table row.
type RowError struct {
	Source string
	Line   int
	Name   string
	Err    error
}

func (e *RowError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: field %q: %v", loc, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Kind() errs.Kind { return errs.KindValidation }

// ReadRows decodes a CSV descriptor table. source names the document in
// error messages. Rows whose cells are all blank are skipped.
func ReadRows(r io.Reader, source string) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &RowError{Source: source, Err: errors.New("missing header row")}
		}
		return nil, &RowError{Source: source, Err: fmt.Errorf("parse: %w", err)}
	}
	index := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, &RowError{Source: source, Line: 1, Err: fmt.Errorf("missing required column %q", c)}
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Source: source, Err: fmt.Errorf("parse: %w", err)}
		}
		line, _ := cr.FieldPos(0)
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, Row{
			Line:        line,
			Name:        cell("name"),
			CType:       cell("c_type"),
			StorageType: cell("storage_type"),
			NVSKey:      cell("nvs_key"),
			JSONKey:     cell("json_key"),
			Group:       cell("group"),
			Module:      cell("module"),
			NVSMode:     cell("nvs_mode"),
			JSON:        cell("json"),
			Enabler:     cell("enabler"),
			JSONMode:    cell("json_mode"),
			JSONRepr:    cell("json_repr"),
			Scale:       cell("scale"),
		})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Validate resolves every row. The first invalid row fails the whole table
// so no fragment is ever generated from a partially valid table.
func Validate(rows []Row, source string) (Table, error) {
	seen := make(map[string]int, len(rows))
	table := make(Table, 0, len(rows))
	for _, r := range rows {
		f, err := validateRow(r)
		if err != nil {
			return nil, &RowError{Source: source, Line: r.Line, Name: r.Name, Err: err}
		}
		if prev, dup := seen[f.Name]; dup {
			return nil, &RowError{Source: source, Line: r.Line, Name: r.Name, Err: fmt.Errorf("duplicate field name (first defined on line %d)", prev)}
		}
		seen[f.Name] = r.Line
		table = append(table, f)
	}
	return table, nil
}

func validateRow(r Row) (Field, error) {
	if r.Name == "" {
		return Field{}, errors.New("empty name")
	}
	ct, err := ParseCType(r.CType)
	if err != nil {
		return Field{}, err
	}
	storage, err := ParseStorageKind(r.StorageType)
	if err != nil {
		return Field{}, err
	}
	persist, err := ParsePersistenceMode(r.NVSMode)
	if err != nil {
		return Field{}, err
	}
	dir, err := ParseWireDirection(r.JSONMode)
	if err != nil {
		return Field{}, err
	}
	repr, err := ParseWireRepr(r.JSONRepr)
	if err != nil {
		return Field{}, err
	}
	var onWire bool
	switch r.JSON {
	case "", "0":
	case "1":
		onWire = true
	default:
		return Field{}, errs.Validation("json must be 0 or 1, got %q", r.JSON)
	}

	scale := 1
	if r.Scale != "" {
		scale, err = strconv.Atoi(r.Scale)
		if err != nil {
			return Field{}, errs.Validation("scale %q is not an integer", r.Scale)
		}
	}
	if storage == StorageFloatInt {
		if r.Scale == "" {
			return Field{}, errs.Validation("missing scale for FLOATINT")
		}
		if scale <= 0 {
			return Field{}, errs.Validation("invalid scale for FLOATINT: %d", scale)
		}
	}

	return Field{
		Name:      r.Name,
		Type:      ct,
		Storage:   storage,
		NVSKey:    r.NVSKey,
		JSONKey:   r.JSONKey,
		Group:     r.Group,
		Module:    r.Module,
		Persist:   persist,
		OnWire:    onWire,
		Direction: dir,
		Repr:      repr,
		Guard:     r.Enabler,
		Scale:     scale,
	}, nil
}
