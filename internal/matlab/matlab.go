// Package matlab recovers a hierarchical outline of function definitions
// from MATLAB source text. It deliberately avoids a real grammar: headers
// are found by pattern matching, extents by a best-effort balanced skip,
// and nesting is purely positional (a function whose range lies inside
// another's becomes its subfunction). Malformed input degrades the result
// but never fails the scan.
package matlab

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mtags/internal/mtag"
)

// Dialect selects how function bodies are terminated.
type Dialect int

const (
	// DialectFunctionEnd is for sources whose function bodies close with
	// an explicit `end` keyword. Extents are resolved with a balanced
	// block skip, which is what makes subfunction nesting observable.
	DialectFunctionEnd Dialect = iota

	// DialectNoEnd is for classic sources without function-terminating
	// `end`: a definition runs until the next header or end of text, so
	// every function is a sibling.
	DialectNoEnd
)

// ParseDialect maps a config/CLI string to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "end", "function-end":
		return DialectFunctionEnd, nil
	case "no-end", "noend":
		return DialectNoEnd, nil
	}
	return DialectFunctionEnd, fmt.Errorf("unknown dialect: %q", s)
}

func (d Dialect) String() string {
	if d == DialectNoEnd {
		return "no-end"
	}
	return "end"
}

// Options configures a single parse. SystemRoots is consumed, not owned:
// it only gates whether a doc-only file may be treated as a builtin.
type Options struct {
	SystemRoots []string
	Dialect     Dialect
}

// Parse scans src and returns the ordered forest of function tags. path
// is used only for the builtin (doc-only file under a system root)
// check. Parse fails soft: any internal scanning failure yields an empty
// forest, never a panic surfaced to the caller.
func Parse(src, path string, opts Options) (tags []*mtag.FunctionTag) {
	defer func() {
		if r := recover(); r != nil {
			tags = nil
		}
	}()
	recs := scanAll(src, path, opts)
	tags, _ = nest(recs, len(src))
	return tags
}
