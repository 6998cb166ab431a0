// Package inject splices generated snippets into a hand-written host file in
// front of fixed anchor markers. The marker itself is never consumed, so the
// same file can be processed again by later runs.
package inject

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/seitarof/poris-gen/internal/errs"
	"github.com/seitarof/poris-gen/internal/fsutil"
)

// Request asks for Snippet to be placed immediately before Marker.
type Request struct {
	Marker  string
	Snippet string
}

// MarkerNotFoundError is returned when a requested marker does not occur in
// the document.
type MarkerNotFoundError struct {
	Marker string
	Path   string
}

func (e *MarkerNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("marker not found in %s: %s", e.Path, e.Marker)
	}
	return "marker not found: " + e.Marker
}

func (e *MarkerNotFoundError) Kind() errs.Kind { return errs.KindNotFound }

// Outcome describes what happened to one request.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeBlank
	OutcomeAlreadyPresent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeBlank:
		return "blank"
	case OutcomeAlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// Insert applies a single request to doc.
func Insert(doc string, req Request) (string, Outcome, error) {
	if req.Marker == "" || !strings.Contains(doc, req.Marker) {
		return doc, 0, &MarkerNotFoundError{Marker: req.Marker}
	}
	if strings.TrimSpace(req.Snippet) == "" {
		return doc, OutcomeBlank, nil
	}
	if strings.Contains(doc, strings.TrimSpace(req.Snippet)) {
		return doc, OutcomeAlreadyPresent, nil
	}
	return strings.Replace(doc, req.Marker, req.Snippet+req.Marker, 1), OutcomeInserted, nil
}

// Inject applies reqs in order, each one seeing the document produced by the
// previous ones. It fails on the first missing marker and then returns the
// original document untouched.
func Inject(doc string, reqs []Request) (string, []Outcome, error) {
	out := doc
	outcomes := make([]Outcome, 0, len(reqs))
	for _, req := range reqs {
		next, outcome, err := Insert(out, req)
		if err != nil {
			return doc, nil, err
		}
		out = next
		outcomes = append(outcomes, outcome)
	}
	return out, outcomes, nil
}

// ApplyFile reads name, injects reqs and writes the result back once. The
// file is left untouched when a marker is missing or nothing changed. It
// reports whether the file was rewritten.
func ApplyFile(fsys billy.Filesystem, name string, reqs []Request) (bool, error) {
	data, err := fsutil.ReadFile(fsys, name)
	if err != nil {
		return false, err
	}
	doc := string(data)

	out, _, err := Inject(doc, reqs)
	if err != nil {
		if mnf, ok := err.(*MarkerNotFoundError); ok {
			mnf.Path = name
		}
		return false, err
	}
	if out == doc {
		return false, nil
	}
	if err := fsutil.WriteFileAtomic(fsys, name, []byte(out)); err != nil {
		return false, err
	}
	return true, nil
}
