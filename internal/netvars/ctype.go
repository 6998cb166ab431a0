package netvars

import (
	"strings"

	"github.com/seitarof/poris-gen/internal/errs"
)

// CType is a parsed c_type cell. "char [LEN]" becomes
// {Base: "char", Length: "LEN", IsArray: true}.
type CType struct {
	Base    string
	Length  string
	IsArray bool
}

// ParseCType splits a native type into its base and bracketed length
// expression. Everything between the first '[' and the trailing ']' is the
// length expression, so "uint8_t[N * 2]" keeps "N * 2" verbatim.
func ParseCType(s string) (CType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CType{}, errs.Validation("empty c_type")
	}
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if strings.ContainsRune(s, ']') {
			return CType{}, errs.Validation("unbalanced brackets in c_type %q", s)
		}
		return CType{Base: s}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return CType{}, errs.Validation("c_type %q must end with ']'", s)
	}
	base := strings.TrimSpace(s[:open])
	length := strings.TrimSpace(s[open+1 : len(s)-1])
	if base == "" {
		return CType{}, errs.Validation("c_type %q has no base type", s)
	}
	if length == "" {
		return CType{}, errs.Validation("c_type %q has an empty array length", s)
	}
	return CType{Base: base, Length: length, IsArray: true}, nil
}

// Decl renders the struct member declaration for name.
func (c CType) Decl(name string) string {
	if c.IsArray {
		return c.Base + " " + name + "[" + c.Length + "];"
	}
	return c.Base + " " + name + ";"
}

// LengthExpr is the array length for the descriptor table, "0" for scalars.
func (c CType) LengthExpr() string {
	if c.IsArray {
		return c.Length
	}
	return "0"
}
