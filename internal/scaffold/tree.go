// Package scaffold stamps out a new component from a template tree,
// substituting the component name into paths and text contents, and keeps
// the component's build guard in place.
package scaffold

import (
	"bytes"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/seitarof/poris-gen/internal/naming"
)

// Placeholder tokens understood in template paths and contents.
const (
	NameToken  = "$$1"
	UpperToken = "$#1"
)

// Entry is one node of a template tree. Path is slash separated and relative
// to the tree root.
type Entry struct {
	Path string
	Dir  bool
	Data []byte
}

// Text reports whether the entry is a UTF-8 text file.
func (e Entry) Text() bool {
	return !e.Dir && utf8.Valid(e.Data)
}

// Tree is a template or component file tree ordered by path.
type Tree []Entry

// Tokens holds the substitution values for one component.
type Tokens struct {
	Name  string
	Upper string
}

// NewTokens derives both substitution values from a component name.
func NewTokens(name string) Tokens {
	return Tokens{Name: name, Upper: naming.UpperSanitized(name)}
}

// Replace substitutes both tokens in s.
func (t Tokens) Replace(s string) string {
	return strings.NewReplacer(NameToken, t.Name, UpperToken, t.Upper).Replace(s)
}

// Substitute returns a new tree with both tokens replaced in every path and
// in the contents of text files. Binary files are copied unchanged.
func (tr Tree) Substitute(tok Tokens) Tree {
	out := make(Tree, 0, len(tr))
	for _, e := range tr {
		n := Entry{Path: tok.Replace(e.Path), Dir: e.Dir}
		switch {
		case e.Dir:
		case e.Text():
			n.Data = []byte(tok.Replace(string(e.Data)))
		default:
			n.Data = bytes.Clone(e.Data)
		}
		out = append(out, n)
	}
	out.sort()
	return out
}

// Rename moves the entry at from to to, reporting whether it was present.
func (tr Tree) Rename(from, to string) (Tree, bool) {
	out := make(Tree, len(tr))
	copy(out, tr)
	for i, e := range out {
		if e.Path == from {
			out[i].Path = to
			out.sort()
			return out, true
		}
	}
	return out, false
}

// Files lists the file paths of the tree.
func (tr Tree) Files() []string {
	var out []string
	for _, e := range tr {
		if !e.Dir {
			out = append(out, e.Path)
		}
	}
	return out
}

func (tr Tree) sort() {
	sort.SliceStable(tr, func(i, j int) bool { return tr[i].Path < tr[j].Path })
}
