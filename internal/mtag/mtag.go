package mtag

import "fmt"

// FunctionTag is one function definition recovered from MATLAB source.
// Start and End are half-open offsets into the scanned text. A builtin
// tag (doc-only file under a system root) carries the sentinel 0,0 and
// never has children.
type FunctionTag struct {
	Name        string         `json:"name"`
	ReturnNames []string       `json:"return_names,omitempty"`
	ArgNames    []string       `json:"arg_names,omitempty"`
	Docstring   string         `json:"docstring,omitempty"`
	Builtin     bool           `json:"builtin,omitempty"`
	Start       int            `json:"start"`
	End         int            `json:"end"`
	Line        int            `json:"line,omitempty"` // 1-based line of Start
	Children    []*FunctionTag `json:"children,omitempty"`
}

// Walk visits tags in pre-order (a parent before its subfunctions).
func Walk(tags []*FunctionTag, fn func(t *FunctionTag, depth int)) {
	var visit func(tags []*FunctionTag, depth int)
	visit = func(tags []*FunctionTag, depth int) {
		for _, t := range tags {
			fn(t, depth)
			visit(t.Children, depth+1)
		}
	}
	visit(tags, 0)
}

// Flatten returns all tags in pre-order as a single slice.
func Flatten(tags []*FunctionTag) []*FunctionTag {
	var out []*FunctionTag
	Walk(tags, func(t *FunctionTag, _ int) {
		out = append(out, t)
	})
	return out
}

// Count returns the total number of tags in the forest.
func Count(tags []*FunctionTag) int {
	n := 0
	Walk(tags, func(*FunctionTag, int) { n++ })
	return n
}

// Validate checks the structural invariants of a tag forest against the
// length of the source it was scanned from: ranges are well-formed and
// bounded, children are contained in their parent, and siblings appear
// in ascending start order. A violation means a scanner bug, not bad
// input — malformed input must still produce a valid (possibly empty)
// forest.
func Validate(tags []*FunctionTag, srcLen int) error {
	return validateLevel(tags, 0, srcLen)
}

func validateLevel(tags []*FunctionTag, lo, hi int) error {
	prev := -1
	for _, t := range tags {
		if t.Builtin {
			if t.Start != 0 || t.End != 0 {
				return fmt.Errorf("builtin tag %q has non-sentinel range [%d,%d)", t.Name, t.Start, t.End)
			}
			if len(t.Children) != 0 {
				return fmt.Errorf("builtin tag %q has children", t.Name)
			}
			continue
		}
		if t.Start < 0 || t.Start >= t.End || t.End > hi || t.Start < lo {
			return fmt.Errorf("tag %q range [%d,%d) outside [%d,%d)", t.Name, t.Start, t.End, lo, hi)
		}
		if t.Start <= prev {
			return fmt.Errorf("tag %q start %d not after previous sibling start %d", t.Name, t.Start, prev)
		}
		prev = t.Start
		if err := validateLevel(t.Children, t.Start, t.End); err != nil {
			return err
		}
	}
	return nil
}
