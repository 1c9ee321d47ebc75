package source

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
)

// PartialError is returned together with the usable mappings when some
// entries of a document could not be mapped. Positions[i] is the document
// index of the i-th returned mapping. Each problem is a
// *domain.InvalidRecordError carrying its own document index.
type PartialError struct {
	Positions []int
	Problems  []error
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d document entr(ies) could not be read", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *PartialError) Unwrap() []error { return e.Problems }

// Merge combines the outcome of adding the usable mappings with the entries
// that never reached the collection. Indices in the returned error refer to
// the document, and the unread entries count as rejected.
func (e *PartialError) Merge(res records.AddResult, err error, label string) (records.AddResult, error) {
	var added []error
	if err != nil {
		var ae *records.AddError
		if !errors.As(err, &ae) {
			return res, err
		}
		added = ae.Problems
	}

	problems := make([]error, 0, len(added)+len(e.Problems))
	for _, p := range added {
		problems = append(problems, e.reindex(p, label))
	}
	for _, p := range e.Problems {
		problems = append(problems, relabel(p, label))
	}
	sort.SliceStable(problems, func(i, j int) bool {
		return recordIndex(problems[i]) < recordIndex(problems[j])
	})

	res.Rejected += len(e.Problems)
	return res, &records.AddError{Source: label, Problems: problems}
}

func (e *PartialError) reindex(err error, label string) error {
	var ire *domain.InvalidRecordError
	if !errors.As(err, &ire) {
		return err
	}
	out := *ire
	out.Source = label
	if out.Index >= 0 && out.Index < len(e.Positions) {
		out.Index = e.Positions[out.Index]
	}
	return &out
}

func relabel(err error, label string) error {
	var ire *domain.InvalidRecordError
	if !errors.As(err, &ire) {
		return &domain.InvalidRecordError{Source: label, Index: -1, Err: err}
	}
	out := *ire
	out.Source = label
	return &out
}

func recordIndex(err error) int {
	var ire *domain.InvalidRecordError
	if errors.As(err, &ire) {
		return ire.Index
	}
	return -1
}
